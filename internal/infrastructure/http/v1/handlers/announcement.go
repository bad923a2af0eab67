package handlers

import (
	"github.com/gin-gonic/gin"

	"stocktrack/internal/domain/announcement"
)

// AnnouncementHandler handles stock alert endpoints.
type AnnouncementHandler struct {
	*BaseHandler
	service *announcement.Service
}

// NewAnnouncementHandler creates a new announcement handler.
func NewAnnouncementHandler(base *BaseHandler, service *announcement.Service) *AnnouncementHandler {
	return &AnnouncementHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /announcement
func (h *AnnouncementHandler) List(c *gin.Context) {
	ownerID, ok := h.OwnerID(c)
	if !ok {
		return
	}

	items, err := h.service.ListActive(c.Request.Context(), ownerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if items == nil {
		items = []*announcement.Announcement{}
	}
	h.OK(c, gin.H{"items": items})
}

// Check handles POST /announcement/check
// Runs the low-stock and expiry scan and returns per-condition outcomes.
func (h *AnnouncementHandler) Check(c *gin.Context) {
	ownerID, ok := h.OwnerID(c)
	if !ok {
		return
	}

	outcomes, err := h.service.Scan(c.Request.Context(), ownerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if outcomes == nil {
		outcomes = []announcement.ScanOutcome{}
	}
	h.OK(c, gin.H{"outcomes": outcomes})
}

// Dismiss handles PATCH /announcement/:id/dismiss
func (h *AnnouncementHandler) Dismiss(c *gin.Context) {
	ownerID, ok := h.OwnerID(c)
	if !ok {
		return
	}

	announcementID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Dismiss(c.Request.Context(), ownerID, announcementID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "announcement dismissed")
}

// RegisterRoutes registers announcement routes.
func (h *AnnouncementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("/check", h.Check)
	rg.PATCH("/:id/dismiss", h.Dismiss)
}
