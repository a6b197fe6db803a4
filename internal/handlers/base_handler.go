package handlers

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"filemanager/internal/logger"
	"filemanager/internal/middleware"
	"filemanager/internal/models"
	"filemanager/internal/validator"
	"filemanager/pkg/apperrors"
	"filemanager/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ============================================================================
// 1. Базовая структура обработчика
// ============================================================================

type BaseHandler struct {
	validator *validator.Validator
}

func NewBaseHandler(v *validator.Validator) *BaseHandler {
	return &BaseHandler{
		validator: v,
	}
}

// ============================================================================
// 2. DB из контекста
// ============================================================================

// GetDB извлекает *gorm.DB (пул или транзакцию) из gin.Context.
// Ключ кладет DBMiddleware; без него приложение собрано неверно.
func (h *BaseHandler) GetDB(c *gin.Context) *gorm.DB {
	dbKey := string(contextkeys.DBContextKey)

	val, ok := c.Get(dbKey)
	if !ok {
		logger.CtxError(c.Request.Context(), "critical error: db key not found in context", "key", dbKey)
		panic("critical error: DBMiddleware did not set the db key")
	}

	db, ok := val.(*gorm.DB)
	if !ok {
		logger.CtxError(c.Request.Context(), "critical error: db in context is not *gorm.DB", "key", dbKey, "type", fmt.Sprintf("%T", val))
		panic("critical error: db in context has incorrect type")
	}

	return db
}

// ============================================================================
// 3. Привязка и валидация
// ============================================================================

// BindAndValidate_JSON привязывает тело (JSON или форма). Пустое тело
// допустимо: тогда проверяются только правила валидации.
func (h *BaseHandler) BindAndValidate_JSON(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := c.ShouldBind(obj); err != nil && !errors.Is(err, io.EOF) {
		logger.CtxWithError(ctx, "Failed to bind request body", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid request body: "+err.Error()))
		return false
	}

	return h.validate(c, obj)
}

func (h *BaseHandler) BindAndValidate_Query(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := c.ShouldBindQuery(obj); err != nil {
		logger.CtxWithError(ctx, "Failed to bind query params", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid query parameters: "+err.Error()))
		return false
	}

	return h.validate(c, obj)
}

func (h *BaseHandler) validate(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := h.validator.Validate(obj); err != nil {
		if vErr, ok := err.(*validator.ValidationError); ok {
			logger.CtxWarn(ctx, "Validation failed", "errors", vErr.Errors, "path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.ValidationError(vErr.Errors))
		} else {
			logger.CtxWithError(ctx, "Internal validator error", err, "path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.InternalError(err))
		}
		return false
	}
	return true
}

// ============================================================================
// 4. Ошибки сервисов
// ============================================================================

func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	var appErr *apperrors.AppError
	if apperrors.As(err, &appErr) {
		logger.CtxWarn(ctx, "Service error",
			"error", appErr.Message,
			"details", appErr.Details,
			"path", c.Request.URL.Path,
		)
		apperrors.HandleError(c, appErr)
	} else {
		logger.CtxWithError(ctx, "Internal server error", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.InternalError(err))
	}
}

// ============================================================================
// 5. Актор запроса
// ============================================================================

// GetActor возвращает актора из AuthMiddleware; без него ответ 401
func (h *BaseHandler) GetActor(c *gin.Context) (*models.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		logger.CtxWarn(c.Request.Context(), "Unauthorized access: actor not found in context",
			"path", c.Request.URL.Path,
			"ip", c.ClientIP(),
		)
		apperrors.HandleError(c, apperrors.NewUnauthorizedError("User not authenticated"))
		return nil, false
	}
	return actor, true
}

// ============================================================================
// 6. Параметры пути
// ============================================================================

// ParseParamID читает обязательный положительный id из пути.
// При ошибке ответ уже отправлен.
func ParseParamID(c *gin.Context, key string) (uint, bool) {
	id, err := parseUint(c.Param(key), key)
	if err != nil {
		apperrors.HandleError(c, err)
		return 0, false
	}
	return id, true
}

// ParseOptionalParamID - как ParseParamID, но пустой параметр дает nil
func ParseOptionalParamID(c *gin.Context, key string) (*uint, bool) {
	if c.Param(key) == "" {
		return nil, true
	}
	id, ok := ParseParamID(c, key)
	if !ok {
		return nil, false
	}
	return &id, true
}

func parseUint(raw, key string) (uint, error) {
	if raw == "" {
		return 0, apperrors.NewBadRequestError("Missing required path parameter: " + key)
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		return 0, apperrors.FieldError(key, "must be a positive integer")
	}
	return uint(value), nil
}
