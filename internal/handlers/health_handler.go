package handlers

import (
	"filemanager/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// HealthHandler - проверка живости сервиса и доступности БД
type HealthHandler struct {
	*BaseHandler
}

func NewHealthHandler(base *BaseHandler) *HealthHandler {
	return &HealthHandler{BaseHandler: base}
}

func (h *HealthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/health", h.Health)
}

func (h *HealthHandler) Health(c *gin.Context) {
	sqlDB, err := h.GetDB(c).DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		h.HandleServiceError(c, apperrors.InternalError(err))
		return
	}

	respondOK(c, "OK")
}
