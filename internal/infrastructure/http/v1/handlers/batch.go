package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stocktrack/internal/core/id"
	"stocktrack/internal/domain/batch"
	"stocktrack/internal/domain/ledger"
	"stocktrack/internal/domain/movement"
	"stocktrack/internal/infrastructure/http/v1/dto"
)

// BatchHandler handles batch endpoints, including the per-batch stock
// adjustment and movement listing.
type BatchHandler struct {
	*BaseHandler
	batches   *batch.Service
	ledger    *ledger.Service
	movements *movement.Service
}

// NewBatchHandler creates a new batch handler.
func NewBatchHandler(base *BaseHandler, batches *batch.Service, ledgerSvc *ledger.Service, movements *movement.Service) *BatchHandler {
	return &BatchHandler{
		BaseHandler: base,
		batches:     batches,
		ledger:      ledgerSvc,
		movements:   movements,
	}
}

// Create handles POST /batches
func (h *BatchHandler) Create(c *gin.Context) {
	ownerID, ok := h.OwnerID(c)
	if !ok {
		return
	}

	var req dto.CreateBatchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	productID, err := id.Parse(req.ProductID)
	if err != nil {
		h.Error(c, err)
		return
	}

	created, err := h.batches.Create(c.Request.Context(), ownerID, batch.CreateInput{
		ProductID:   productID,
		Quantity:    req.Quantity,
		ExpiredDate: req.ExpiredDate,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// List handles GET /batches
func (h *BatchHandler) List(c *gin.Context) {
	ownerID, ok := h.OwnerID(c)
	if !ok {
		return
	}

	var q dto.BatchListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	filter := batch.ListFilter{
		ListFilter:  q.ToFilter(),
		ExpiredOnly: q.ExpiredOnly,
	}
	if q.ProductID != "" {
		productID, err := id.Parse(q.ProductID)
		if err != nil {
			h.Error(c, err)
			return
		}
		filter.ProductID = &productID
	}

	result, err := h.batches.List(c.Request.Context(), ownerID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromListResult(result))
}

// Get handles GET /batches/:id
func (h *BatchHandler) Get(c *gin.Context) {
	ownerID, ok := h.OwnerID(c)
	if !ok {
		return
	}

	batchID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	b, err := h.batches.GetByID(c.Request.Context(), ownerID, batchID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, b)
}

// Update handles PUT /batches/:id
func (h *BatchHandler) Update(c *gin.Context) {
	ownerID, ok := h.OwnerID(c)
	if !ok {
		return
	}

	batchID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateBatchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	b, err := h.batches.Update(c.Request.Context(), ownerID, batchID, batch.UpdateInput{
		Quantity:    req.Quantity,
		ExpiredDate: req.ExpiredDate,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, b)
}

// Delete handles DELETE /batches/:id
func (h *BatchHandler) Delete(c *gin.Context) {
	ownerID, ok := h.OwnerID(c)
	if !ok {
		return
	}

	batchID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.batches.Delete(c.Request.Context(), ownerID, batchID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// Adjust handles POST /batches/:id/adjust
func (h *BatchHandler) Adjust(c *gin.Context) {
	ownerID, ok := h.OwnerID(c)
	if !ok {
		return
	}

	batchID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.BatchAdjustRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m, err := h.ledger.AdjustStock(c.Request.Context(), ownerID, ledger.AdjustInput{
		BatchID:  batchID,
		Type:     req.MovementType,
		Quantity: req.Quantity,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, m)
}

// Movements handles GET /batches/:id/movements
func (h *BatchHandler) Movements(c *gin.Context) {
	ownerID, ok := h.OwnerID(c)
	if !ok {
		return
	}

	batchID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	result, err := h.movements.List(c.Request.Context(), ownerID, movement.ListFilter{
		BatchID: &batchID,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromListResult(result))
}

// RegisterRoutes registers batch routes.
func (h *BatchHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/adjust", h.Adjust)
	rg.GET("/:id/movements", h.Movements)
}
