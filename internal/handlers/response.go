package handlers

import (
	"net/http"

	"filemanager/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// respond отправляет успешный конверт {status: "Success", message, ...payload}
func respond(c *gin.Context, code int, message string, payload gin.H) {
	body := gin.H{
		"status":  apperrors.StatusSuccess,
		"message": message,
	}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(code, body)
}

func respondOK(c *gin.Context, message string) {
	respond(c, http.StatusOK, message, nil)
}
