package handlers

import (
	"net/http"

	"filemanager/internal/models"
	"filemanager/internal/services"
	"filemanager/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// ============================================
// FOLDER HANDLER
// ============================================

type FolderHandler struct {
	*BaseHandler
	folderService services.FolderService
	tagService    services.TagService
}

func NewFolderHandler(base *BaseHandler, folderService services.FolderService, tagService services.TagService) *FolderHandler {
	return &FolderHandler{
		BaseHandler:   base,
		folderService: folderService,
		tagService:    tagService,
	}
}

// ============================================
// ROUTES
// ============================================

func (h *FolderHandler) RegisterRoutes(r *gin.RouterGroup) {
	folders := r.Group("/folders")
	{
		// Просмотр дерева
		folders.GET("/index", h.Index)
		folders.POST("/index", h.Index)
		folders.GET("/index/:folder_id", h.Index)
		folders.POST("/index/:folder_id", h.Index)

		// CRUD
		folders.POST("", h.Create)
		folders.POST("/:parent_id", h.Create)
		folders.GET("/:id", h.Show)
		folders.POST("/general/:id", h.Update)
		folders.POST("/tags/:id", h.UpdateTags)

		// Корзина
		folders.DELETE("/:id", h.Destroy)
		folders.POST("/massDelete", h.MassDestroy)
		folders.GET("/retrieve/all", h.Retrieve)
		folders.POST("/restore/:id", h.Restore)
		folders.POST("/massRestore", h.MassRestore)
		folders.POST("/forceDelete/:id", h.ForceDelete)
		folders.POST("/massForceDelete", h.MassForceDelete)
	}
}

// ============================================
// HANDLERS
// ============================================

// Index - содержимое папки (или корня) с хлебными крошками
func (h *FolderHandler) Index(c *gin.Context) {
	folderID, ok := ParseOptionalParamID(c, "folder_id")
	if !ok {
		return
	}

	var query dto.BrowseQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	result, err := h.folderService.Browse(c.Request.Context(), h.GetDB(c), folderID, query.MaxLevels)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, "Success", gin.H{
		"current_folder": result.Folder,
		"breadcrumbs":    result.Breadcrumbs,
		"folders":        result.Folders,
		"files":          result.Files,
	})
}

func (h *FolderHandler) Create(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}
	parentID, ok := ParseOptionalParamID(c, "parent_id")
	if !ok {
		return
	}

	var req dto.CreateFolderRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	folder, err := h.folderService.CreateFolder(c.Request.Context(), h.GetDB(c), parentID, &req, actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, "Folder is created successfully", gin.H{"data": folder})
}

func (h *FolderHandler) Show(c *gin.Context) {
	id, ok := ParseParamID(c, "id")
	if !ok {
		return
	}

	folder, err := h.folderService.GetFolder(c.Request.Context(), h.GetDB(c), id)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, "Success", gin.H{"data": folder})
}

func (h *FolderHandler) Update(c *gin.Context) {
	id, ok := ParseParamID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateFolderRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	folder, err := h.folderService.UpdateFolder(c.Request.Context(), h.GetDB(c), id, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, "Folder is updated successfully", gin.H{"data": folder})
}

func (h *FolderHandler) UpdateTags(c *gin.Context) {
	updateTags(h.BaseHandler, h.tagService, models.TagModuleFolders)(c)
}

func (h *FolderHandler) Destroy(c *gin.Context) {
	id, ok := ParseParamID(c, "id")
	if !ok {
		return
	}

	if err := h.folderService.DeleteFolder(c.Request.Context(), h.GetDB(c), id); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	respondOK(c, "Folder and subfolders deleted successfully")
}

func (h *FolderHandler) MassDestroy(c *gin.Context) {
	var req dto.MassFoldersRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.folderService.MassDeleteFolders(c.Request.Context(), h.GetDB(c), req.FoldersID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	respondOK(c, "Folders and subfolders deleted successfully")
}

func (h *FolderHandler) Retrieve(c *gin.Context) {
	folders, err := h.folderService.ListTrashed(c.Request.Context(), h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, "Success", gin.H{"data": folders})
}

func (h *FolderHandler) Restore(c *gin.Context) {
	id, ok := ParseParamID(c, "id")
	if !ok {
		return
	}

	if err := h.folderService.RestoreFolder(c.Request.Context(), h.GetDB(c), id); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	respondOK(c, "Folder and subfolders restored successfully")
}

func (h *FolderHandler) MassRestore(c *gin.Context) {
	var req dto.MassFoldersRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.folderService.MassRestoreFolders(c.Request.Context(), h.GetDB(c), req.FoldersID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	respondOK(c, "Folders and subfolders restored successfully")
}

func (h *FolderHandler) ForceDelete(c *gin.Context) {
	id, ok := ParseParamID(c, "id")
	if !ok {
		return
	}

	if err := h.folderService.ForceDeleteFolder(c.Request.Context(), h.GetDB(c), id); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	respondOK(c, "Folder and subfolders permanently deleted")
}

func (h *FolderHandler) MassForceDelete(c *gin.Context) {
	var req dto.MassFoldersRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.folderService.MassForceDeleteFolders(c.Request.Context(), h.GetDB(c), req.FoldersID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	respondOK(c, "Folders and subfolders permanently deleted")
}
