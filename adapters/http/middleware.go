package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/linkforge/profile-hub/pkg/apperror"
	"github.com/linkforge/profile-hub/pkg/auth"
	"github.com/linkforge/profile-hub/pkg/logger"
)

const (
	GinContextKeyUsername  = "username"
	GinContextKeyRequestID = "requestID"

	HeaderRequestID = "X-Request-ID"
)

// AuthMiddleware resolves the trusted username from the bearer token. The
// core never authenticates beyond this; whatever username the token
// carries is taken as the acting identity.
func AuthMiddleware(jwtSvc *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authorization header is required"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token format"})
			return
		}

		claims, err := jwtSvc.ValidateToken(tokenString)
		if err != nil || claims.Username == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		c.Set(GinContextKeyUsername, claims.Username)

		c.Next()
	}
}

func GetUsernameFromGinContext(c *gin.Context) (string, bool) {
	value, ok := c.Get(GinContextKeyUsername)
	if !ok {
		return "", false
	}
	username, ok := value.(string)
	if !ok || username == "" {
		return "", false
	}
	return username, true
}

// RequestIDMiddleware tags every request so log lines can be correlated.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(GinContextKeyRequestID, requestID)
		c.Writer.Header().Set(HeaderRequestID, requestID)
		c.Next()
	}
}

// ErrorMiddleware turns errors recorded via c.Error into the response
// contract: validation failures expose a field map, everything else a
// flat message. Store internals are logged here, never returned.
func ErrorMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		username, _ := GetUsernameFromGinContext(c)
		requestID := c.GetString(GinContextKeyRequestID)

		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			appErr = apperror.NewInternal("unexpected handler error", err)
		}

		status := apperror.ToHTTPStatus(appErr)
		if status >= http.StatusInternalServerError {
			log.Error("request failed", appErr,
				zap.String("username", username),
				zap.String("request_id", requestID),
				zap.String("path", c.FullPath()),
			)
		}

		c.JSON(status, appErr.ToJSON())
	}
}
