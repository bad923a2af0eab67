package handlers

import (
	"github.com/gin-gonic/gin"

	"stocktrack/internal/domain/dashboard"
)

// DashboardHandler handles the inventory summary endpoint.
type DashboardHandler struct {
	*BaseHandler
	service *dashboard.Service
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(base *BaseHandler, service *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Summary handles GET /dashboard
func (h *DashboardHandler) Summary(c *gin.Context) {
	ownerID, ok := h.OwnerID(c)
	if !ok {
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), ownerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, summary)
}

// RegisterRoutes registers dashboard routes.
func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Summary)
}
