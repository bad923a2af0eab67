package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stocktrack/internal/core/apperror"
	"stocktrack/internal/domain/auth"
	"stocktrack/internal/infrastructure/http/v1/dto"
	"stocktrack/internal/infrastructure/http/v1/middleware"
)

// RefreshTokenCookie holds the refresh token for browser clients.
const RefreshTokenCookie = "refresh_token"

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service *auth.Service) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.Register(ctx, req.ToAuthRequest())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromUser(user))
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tokens, user, err := h.service.Login(ctx, req.ToCredentials())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.setTokenCookies(c, tokens)

	c.JSON(http.StatusOK, dto.LoginResponse{
		Tokens: dto.FromTokenPair(tokens),
		User:   dto.FromUser(user),
	})
}

// Refresh handles POST /auth/refresh
// The refresh token is taken from the request body, falling back to the
// refresh_token cookie.
func (h *AuthHandler) Refresh(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RefreshTokenRequest
	_ = c.ShouldBindJSON(&req)

	refreshToken := req.RefreshToken
	if refreshToken == "" {
		if cookie, err := c.Cookie(RefreshTokenCookie); err == nil {
			refreshToken = cookie
		}
	}
	if refreshToken == "" {
		h.Error(c, apperror.NewValidation("refresh token is required"))
		return
	}

	tokens, err := h.service.RefreshToken(ctx, refreshToken)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.setTokenCookies(c, tokens)

	c.JSON(http.StatusOK, dto.FromTokenPair(tokens))
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.OwnerID(c)
	if !ok {
		return
	}

	if err := h.service.Logout(ctx, userID); err != nil {
		h.Error(c, err)
		return
	}

	h.clearTokenCookies(c)
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) setTokenCookies(c *gin.Context, tokens *auth.TokenPair) {
	c.SetSameSite(http.SameSiteLaxMode)

	accessMaxAge := int(time.Until(tokens.ExpiresAt).Seconds())
	c.SetCookie(middleware.AccessTokenCookie, tokens.AccessToken, accessMaxAge, "/", "", false, true)

	refreshMaxAge := int((7 * 24 * time.Hour).Seconds())
	c.SetCookie(RefreshTokenCookie, tokens.RefreshToken, refreshMaxAge, "/api/v1/auth", "", false, true)
}

func (h *AuthHandler) clearTokenCookies(c *gin.Context) {
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", false, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/api/v1/auth", "", false, true)
}

// RegisterRoutes registers auth routes.
func (h *AuthHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/register", h.Register)
	public.POST("/login", h.Login)
	public.POST("/refresh", h.Refresh)

	protected.POST("/logout", h.Logout)
}
