package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/dentest-backend/internal/platform/ctxutil"
	"github.com/yungbote/dentest-backend/internal/platform/logger"
	"github.com/yungbote/dentest-backend/internal/services"
)

// RequireActiveSubscription answers 402 when the caller's subscription has
// lapsed. It must run after RequireAuth.
func RequireActiveSubscription(log *logger.Logger, userService services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := ctxutil.UserID(c.Request.Context())
		if userID == uuid.Nil {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		active, err := userService.HasActiveSubscription(c.Request.Context(), userID)
		if err != nil {
			log.Error("Subscription lookup failed", "user_id", userID, "error", err)
			abortJSON(c, http.StatusInternalServerError, "internal_error", "internal server error")
			return
		}
		if !active {
			abortJSON(c, http.StatusPaymentRequired, "subscription_required", "an active subscription is required")
			return
		}
		c.Next()
	}
}
