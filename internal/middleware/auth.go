package middleware

import (
	"strconv"
	"strings"

	"filemanager/internal/auth"
	"filemanager/internal/logger"
	"filemanager/internal/models"
	"filemanager/pkg/apperrors"
	"filemanager/pkg/contextkeys"

	"github.com/gin-gonic/gin"
)

const defaultActorType = "user"

// AuthMiddleware - проверка JWT. Актор запроса сохраняется в gin.Context
// и в context логгера.
func AuthMiddleware(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authorization header missing or invalid"))
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			logger.CtxWarn(c.Request.Context(), "rejected token", "path", c.Request.URL.Path, "ip", c.ClientIP())
			apperrors.HandleError(c, apperrors.ErrInvalidToken)
			c.Abort()
			return
		}

		actor := &models.Actor{ID: claims.UserID, Type: claims.Role}
		if actor.Type == "" {
			actor.Type = defaultActorType
		}

		c.Set(string(contextkeys.ActorContextKey), actor)
		ctx := logger.WithActorID(c.Request.Context(), strconv.FormatInt(actor.ID, 10))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetActor возвращает актора, сохраненного AuthMiddleware
func GetActor(c *gin.Context) (*models.Actor, bool) {
	val, exists := c.Get(string(contextkeys.ActorContextKey))
	if !exists {
		return nil, false
	}
	actor, ok := val.(*models.Actor)
	return actor, ok && actor != nil
}
