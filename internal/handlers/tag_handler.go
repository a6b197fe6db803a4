package handlers

import (
	"net/http"

	"filemanager/internal/models"
	"filemanager/internal/services"
	"filemanager/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// updateTags - общий обработчик POST /<module>/tags/:id
func updateTags(h *BaseHandler, tagService services.TagService, module models.TagModule) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ParseParamID(c, "id")
		if !ok {
			return
		}

		var req dto.UpdateTagsRequest
		if !h.BindAndValidate_JSON(c, &req) {
			return
		}

		result, err := tagService.UpdateTags(c.Request.Context(), h.GetDB(c), string(module), id, &req)
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}

		respond(c, http.StatusOK, "Tags are updated successfully", gin.H{
			"module": result.Module,
			"id":     result.ID,
			"tags":   result.Tags,
		})
	}
}

// ============================================
// TASK HANDLER (только теги)
// ============================================

type TaskHandler struct {
	*BaseHandler
	tagService services.TagService
}

func NewTaskHandler(base *BaseHandler, tagService services.TagService) *TaskHandler {
	return &TaskHandler{
		BaseHandler: base,
		tagService:  tagService,
	}
}

func (h *TaskHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/tasks/tags/:id", updateTags(h.BaseHandler, h.tagService, models.TagModuleTasks))
}
