package handlers

import (
	"github.com/gin-gonic/gin"

	"stocktrack/internal/domain/market"
)

// MarketHandler handles cross-user price comparison and trend endpoints.
type MarketHandler struct {
	*BaseHandler
	service *market.Service
}

// NewMarketHandler creates a new market handler.
func NewMarketHandler(base *BaseHandler, service *market.Service) *MarketHandler {
	return &MarketHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Comparison handles GET /market
// Returns the caller's products next to every other user's price for the
// same product name.
func (h *MarketHandler) Comparison(c *gin.Context) {
	ownerID, ok := h.OwnerID(c)
	if !ok {
		return
	}

	items, err := h.service.Comparison(c.Request.Context(), ownerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if items == nil {
		items = []market.Comparison{}
	}
	h.OK(c, gin.H{"items": items})
}

// DailyChanges handles GET /market/daily-product
func (h *MarketHandler) DailyChanges(c *gin.Context) {
	ownerID, ok := h.OwnerID(c)
	if !ok {
		return
	}

	changes, err := h.service.DailyChanges(c.Request.Context(), ownerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if changes == nil {
		changes = []market.ProductChange{}
	}
	h.OK(c, gin.H{"items": changes})
}

// WeeklyChanges handles GET /market/weekly-product
func (h *MarketHandler) WeeklyChanges(c *gin.Context) {
	ownerID, ok := h.OwnerID(c)
	if !ok {
		return
	}

	changes, err := h.service.WeeklyChanges(c.Request.Context(), ownerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if changes == nil {
		changes = []market.WeeklyProductChange{}
	}
	h.OK(c, gin.H{"items": changes})
}

// Dashboard handles GET /market/dashboard/:productId
func (h *MarketHandler) Dashboard(c *gin.Context) {
	ownerID, ok := h.OwnerID(c)
	if !ok {
		return
	}

	productID, ok := h.ParamID(c, "productId")
	if !ok {
		return
	}

	view, err := h.service.Dashboard(c.Request.Context(), ownerID, productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, view)
}

// RegisterRoutes registers market routes.
func (h *MarketHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Comparison)
	rg.GET("/daily-product", h.DailyChanges)
	rg.GET("/weekly-product", h.WeeklyChanges)
	rg.GET("/dashboard/:productId", h.Dashboard)
}
