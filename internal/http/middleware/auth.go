package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/dentest-backend/internal/platform/ctxutil"
	"github.com/yungbote/dentest-backend/internal/platform/logger"
	"github.com/yungbote/dentest-backend/internal/services"
)

const SessionCookie = "session"

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	middlewareLogger := log.With("middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLogger, authService: authService}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, viaCookie := extractToken(c)
		if tokenString == "" {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		ctx, err := am.authenticate(c, tokenString, viaCookie)
		if err != nil {
			am.log.Debug("Rejected token", "path", c.FullPath(), "error", err)
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token")
			return
		}
		rd := ctxutil.GetRequestData(ctx)
		if rd == nil || rd.UserID == uuid.Nil {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// OptionalAuth attaches the caller when a valid token is present and lets
// guests through otherwise.
func (am *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, viaCookie := extractToken(c)
		if tokenString != "" {
			if ctx, err := am.authenticate(c, tokenString, viaCookie); err == nil {
				c.Request = c.Request.WithContext(ctx)
			}
		}
		c.Next()
	}
}

func (am *AuthMiddleware) authenticate(c *gin.Context, tokenString string, viaCookie bool) (context.Context, error) {
	ctx := c.Request.Context()
	if viaCookie {
		ctx = ctxutil.WithRequestData(ctx, &ctxutil.RequestData{ViaCookie: true})
	}
	return am.authService.SetContextFromToken(ctx, tokenString)
}

func extractToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:]), false
	}
	if qToken := c.Query("token"); qToken != "" {
		return qToken, false
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie, true
	}
	return "", false
}

func abortJSON(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{"message": msg, "code": code},
	})
}
