package apperrors

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GinErrorHandler - обработчик ошибок для Gin
type GinErrorHandler struct {
	Debug bool
}

// HandleGinError переводит ошибку в конверт {status, message, ...}.
// Не найдено -> 210 "No Content", валидация -> 422, остальное -> 500.
func (h *GinErrorHandler) HandleGinError(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = InternalError(err)
	}

	httpCode := appErr.HTTPCode
	if httpCode == 0 {
		httpCode = http.StatusInternalServerError
	}

	if httpCode >= http.StatusInternalServerError {
		slog.Default().Error("server error", "code", appErr.Code, "error", err)
	}

	switch appErr.Code {
	case CodeNotFound:
		c.JSON(StatusNotFoundSoft, gin.H{
			"status":  StatusNoContent,
			"message": NoContentMessage,
		})
		return
	case CodeValidationFailed, CodeEmptySelection:
		body := gin.H{
			"status":  StatusError,
			"message": appErr.Message,
		}
		if appErr.Details != nil {
			body["errors"] = appErr.Details
		}
		c.JSON(httpCode, body)
		return
	}

	message := appErr.Message
	if h.Debug && appErr.Err != nil {
		message = appErr.Err.Error()
	}
	c.JSON(httpCode, gin.H{
		"status":  StatusError,
		"message": message,
	})
}

// HandleError - быстрая функция-помощник для Gin
func HandleError(c *gin.Context, err error) {
	handler := &GinErrorHandler{Debug: gin.Mode() != gin.ReleaseMode}
	handler.HandleGinError(c, err)
}

// AsAppError - пытается преобразовать error в *AppError
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
