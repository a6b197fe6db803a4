package handlers

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"filemanager/internal/models"
	"filemanager/internal/services"
	"filemanager/internal/services/dto"
	"filemanager/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// ============================================
// FILE HANDLER
// ============================================

type FileHandler struct {
	*BaseHandler
	fileService   services.FileService
	tagService    services.TagService
	maxUploadSize int64
}

func NewFileHandler(base *BaseHandler, fileService services.FileService, tagService services.TagService, maxUploadSize int64) *FileHandler {
	return &FileHandler{
		BaseHandler:   base,
		fileService:   fileService,
		tagService:    tagService,
		maxUploadSize: maxUploadSize,
	}
}

// ============================================
// ROUTES
// ============================================

func (h *FileHandler) RegisterRoutes(r *gin.RouterGroup) {
	files := r.Group("/files")
	{
		// Загрузка
		files.POST("", h.Store)
		files.POST("/:folder_id", h.Store)

		// Метаданные и теги
		files.POST("/general/:id", h.Update)
		files.POST("/tags/:id", h.UpdateTags)

		// Доступ к содержимому
		files.GET("/download/:id", h.Download)
		files.POST("/download/:id", h.Download)
		files.GET("/url/:id", h.URL)

		// Корзина
		files.DELETE("/:id", h.Destroy)
		files.POST("/massDelete", h.MassDestroy)
		files.GET("/retrieve/all", h.Retrieve)
		files.POST("/restore/:id", h.Restore)
		files.POST("/massRestore", h.MassRestore)
		files.POST("/forceDelete/:id", h.ForceDelete)
		files.POST("/massForceDelete", h.MassForceDelete)
	}
}

// ============================================
// HANDLERS
// ============================================

// Store - multipart-загрузка одного или нескольких файлов (поле "files")
func (h *FileHandler) Store(c *gin.Context) {
	folderID, ok := ParseOptionalParamID(c, "folder_id")
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("failed to parse form: "+err.Error()))
		return
	}

	var req dto.UploadMetaRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		headers = form.File["files[]"]
	}
	if len(headers) == 0 {
		apperrors.HandleError(c, apperrors.FieldError("files", "This field is required"))
		return
	}

	uploads := make([]dto.Upload, 0, len(headers))
	for i, fh := range headers {
		if h.maxUploadSize > 0 && fh.Size > h.maxUploadSize {
			apperrors.HandleError(c, apperrors.FieldError(fmt.Sprintf("files[%d]", i),
				fmt.Sprintf("File exceeds the maximum size of %d bytes", h.maxUploadSize)))
			return
		}
		uploads = append(uploads, multipartUpload(fh))
	}

	visibility, _ := models.ParseVisibility(req.Visibility)
	meta := dto.UploadMeta{
		FolderID:   folderID,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		IsEntity:   req.IsEntity,
		Visibility: visibility,
	}

	result, err := h.fileService.StoreMany(c.Request.Context(), h.GetDB(c), uploads, meta)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Files are uploaded successfully", gin.H{
		"count": result.Count,
		"files": result.Files,
	})
}

func multipartUpload(fh *multipart.FileHeader) dto.Upload {
	return dto.Upload{
		Filename:    fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func (h *FileHandler) Update(c *gin.Context) {
	id, ok := ParseParamID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateFileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	file, err := h.fileService.UpdateFile(c.Request.Context(), h.GetDB(c), id, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, "File Details are updated successfully", gin.H{"data": file})
}

func (h *FileHandler) UpdateTags(c *gin.Context) {
	updateTags(h.BaseHandler, h.tagService, models.TagModuleFiles)(c)
}

// Download отдает содержимое как вложение
func (h *FileHandler) Download(c *gin.Context) {
	id, ok := ParseParamID(c, "id")
	if !ok {
		return
	}

	download, err := h.fileService.Download(c.Request.Context(), h.GetDB(c), id)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	defer download.Body.Close()

	contentType := download.Mime
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": download.Filename})

	c.DataFromReader(http.StatusOK, download.Size, contentType, download.Body, map[string]string{
		"Content-Disposition": disposition,
	})
}

// URL - ссылка доступа (публичная или подписанная из кэша)
func (h *FileHandler) URL(c *gin.Context) {
	id, ok := ParseParamID(c, "id")
	if !ok {
		return
	}

	access, err := h.fileService.GetURL(c.Request.Context(), h.GetDB(c), id)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, "Success", gin.H{
		"url":        access.URL,
		"expires_at": access.ExpiresAt,
	})
}

func (h *FileHandler) Destroy(c *gin.Context) {
	id, ok := ParseParamID(c, "id")
	if !ok {
		return
	}

	if err := h.fileService.DeleteFile(c.Request.Context(), h.GetDB(c), id); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	respondOK(c, "File deleted successfully")
}

func (h *FileHandler) MassDestroy(c *gin.Context) {
	var req dto.MassFilesRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.fileService.MassDeleteFiles(c.Request.Context(), h.GetDB(c), req.FilesID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	respondOK(c, "Files deleted successfully")
}

func (h *FileHandler) Retrieve(c *gin.Context) {
	files, err := h.fileService.ListTrashed(c.Request.Context(), h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, "Success", gin.H{"data": files})
}

func (h *FileHandler) Restore(c *gin.Context) {
	id, ok := ParseParamID(c, "id")
	if !ok {
		return
	}

	if err := h.fileService.RestoreFile(c.Request.Context(), h.GetDB(c), id); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	respondOK(c, "File restored successfully")
}

func (h *FileHandler) MassRestore(c *gin.Context) {
	var req dto.MassFilesRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.fileService.MassRestoreFiles(c.Request.Context(), h.GetDB(c), req.FilesID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	respondOK(c, "Files restored successfully")
}

func (h *FileHandler) ForceDelete(c *gin.Context) {
	id, ok := ParseParamID(c, "id")
	if !ok {
		return
	}

	if err := h.fileService.ForceDeleteFile(c.Request.Context(), h.GetDB(c), id); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	respondOK(c, "File permanently deleted")
}

func (h *FileHandler) MassForceDelete(c *gin.Context) {
	var req dto.MassFilesRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.fileService.MassForceDeleteFiles(c.Request.Context(), h.GetDB(c), req.FilesID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	respondOK(c, "Files permanently deleted")
}
