package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stocktrack/internal/domain/ledger"
	"stocktrack/internal/domain/stock"
	"stocktrack/internal/infrastructure/http/v1/dto"
	"stocktrack/internal/infrastructure/storage/postgres"
)

// productHistoryLimit caps the change-history page.
const productHistoryLimit = 50

// StockHandler handles product endpoints. Creation goes through the
// ledger service so the product, its initial batch and the first price
// point are written atomically.
type StockHandler struct {
	*BaseHandler
	products *stock.Service
	ledger   *ledger.Service
	audit    *postgres.AuditService
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, products *stock.Service, ledgerSvc *ledger.Service, audit *postgres.AuditService) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		products:    products,
		ledger:      ledgerSvc,
		audit:       audit,
	}
}

// Create handles POST /stock
func (h *StockHandler) Create(c *gin.Context) {
	ownerID, ok := h.OwnerID(c)
	if !ok {
		return
	}

	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.ledger.CreateProductWithInitialBatch(c.Request.Context(), ownerID, req.ToCreateInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.CreateProductResponse{
		Product: result.Product,
		Batch:   result.Batch,
	})
}

// List handles GET /stock
func (h *StockHandler) List(c *gin.Context) {
	ownerID, ok := h.OwnerID(c)
	if !ok {
		return
	}

	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	result, err := h.products.List(c.Request.Context(), ownerID, q.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromListResult(result))
}

// Get handles GET /stock/:id
func (h *StockHandler) Get(c *gin.Context) {
	ownerID, ok := h.OwnerID(c)
	if !ok {
		return
	}

	productID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	product, err := h.products.GetByID(c.Request.Context(), ownerID, productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, product)
}

// Update handles PUT /stock/:id
func (h *StockHandler) Update(c *gin.Context) {
	ownerID, ok := h.OwnerID(c)
	if !ok {
		return
	}

	productID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	product, err := h.products.Update(c.Request.Context(), ownerID, productID, req.ToUpdateInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, product)
}

// Delete handles DELETE /stock/:id
func (h *StockHandler) Delete(c *gin.Context) {
	ownerID, ok := h.OwnerID(c)
	if !ok {
		return
	}

	productID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.products.Delete(c.Request.Context(), ownerID, productID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// History handles GET /stock/:id/history
// Returns the product's audit trail, newest first. The product lookup
// doubles as the ownership check.
func (h *StockHandler) History(c *gin.Context) {
	ownerID, ok := h.OwnerID(c)
	if !ok {
		return
	}

	productID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	if _, err := h.products.GetByID(c.Request.Context(), ownerID, productID); err != nil {
		h.Error(c, err)
		return
	}

	entries, err := h.audit.GetEntityHistory(c.Request.Context(), "stock", productID, productHistoryLimit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": dto.FromAuditEntries(entries)})
}

// RegisterRoutes registers stock routes.
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.GET("/:id/history", h.History)
}
