package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stocktrack/internal/domain/auth"
	"stocktrack/internal/infrastructure/http/v1/dto"
)

// ProfileHandler handles the authenticated user's account.
type ProfileHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(base *BaseHandler, service *auth.Service) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Get handles GET /profile
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, ok := h.OwnerID(c)
	if !ok {
		return
	}

	user, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromUser(user))
}

// Update handles PATCH /profile
func (h *ProfileHandler) Update(c *gin.Context) {
	userID, ok := h.OwnerID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), userID, req.ToProfileUpdate())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromUser(user))
}

// Delete handles DELETE /profile
func (h *ProfileHandler) Delete(c *gin.Context) {
	userID, ok := h.OwnerID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteAccount(c.Request.Context(), userID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RegisterRoutes registers profile routes.
func (h *ProfileHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Get)
	rg.PATCH("", h.Update)
	rg.DELETE("", h.Delete)
}
