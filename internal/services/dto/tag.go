package dto

import "filemanager/internal/models"

type NewTag struct {
	Name  string  `form:"name" json:"name" validate:"max=255"`
	Color *string `form:"color" json:"color" validate:"omitempty,max=32"`
}

// UpdateTagsRequest - tags_id: существующие теги, tags_new: создать/переиспользовать по имени
type UpdateTagsRequest struct {
	TagsID  []uint   `json:"tags_id"`
	TagsNew []NewTag `json:"tags_new" validate:"dive"`
}

type UpdateTagsResult struct {
	Module models.TagModule `json:"module"`
	ID     uint             `json:"id"`
	Tags   []models.Tag     `json:"tags"`
}
