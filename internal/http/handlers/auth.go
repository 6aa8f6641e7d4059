package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/dentest-backend/internal/http/middleware"
	"github.com/yungbote/dentest-backend/internal/http/response"
	"github.com/yungbote/dentest-backend/internal/services"
)

type CookieConfig struct {
	Secure bool
	Domain string
}

type AuthHandler struct {
	authService services.AuthService
	cookies     CookieConfig
}

func NewAuthHandler(authService services.AuthService, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	Username     string `json:"username,omitempty"`
}

func (ah *AuthHandler) Signup(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(c, err)
		return
	}
	user, tokens, err := ah.authService.Signup(c.Request.Context(), services.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	ah.setSessionCookie(c, tokens)
	response.RespondCreated(c, ah.tokenBody(tokens, user.Username))
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(c, err)
		return
	}
	user, tokens, err := ah.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	ah.setSessionCookie(c, tokens)
	response.RespondOK(c, ah.tokenBody(tokens, user.Username))
}

func (ah *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(c, err)
		return
	}
	tokens, err := ah.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	ah.setSessionCookie(c, tokens)
	response.RespondOK(c, ah.tokenBody(tokens, ""))
}

func (ah *AuthHandler) Logout(c *gin.Context) {
	if err := ah.authService.Logout(c.Request.Context()); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	ah.clearCookie(c, middleware.SessionCookie, true)
	response.RespondOK(c, gin.H{"detail": "Logged out"})
}

func (ah *AuthHandler) CurrentUser(c *gin.Context) {
	user, err := ah.authService.CurrentUser(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"username": user.Username})
}

// CSRF issues a double-submit token. The cookie is readable by scripts so the
// client can echo it in the X-CSRFToken header.
func (ah *AuthHandler) CSRF(c *gin.Context) {
	token, err := middleware.NewCSRFToken()
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	ah.setCookie(c, middleware.CSRFCookie, token, int((365 * 24 * time.Hour).Seconds()), false)
	response.RespondOK(c, gin.H{"csrftoken": token})
}

func (ah *AuthHandler) tokenBody(tokens *services.Tokens, username string) tokenResponse {
	return tokenResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    int(ah.authService.GetAccessTTL().Seconds()),
		Username:     username,
	}
}

func (ah *AuthHandler) setSessionCookie(c *gin.Context, tokens *services.Tokens) {
	ah.setCookie(c, middleware.SessionCookie, tokens.AccessToken, int(ah.authService.GetAccessTTL().Seconds()), true)
}

func (ah *AuthHandler) setCookie(c *gin.Context, name, value string, maxAge int, httpOnly bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", ah.cookies.Domain, ah.cookies.Secure, httpOnly)
}

func (ah *AuthHandler) clearCookie(c *gin.Context, name string, httpOnly bool) {
	ah.setCookie(c, name, "", -1, httpOnly)
}
