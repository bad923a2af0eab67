package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stocktrack/internal/core/id"
	"stocktrack/internal/domain/ledger"
	"stocktrack/internal/domain/movement"
	"stocktrack/internal/infrastructure/http/v1/dto"
)

// MovementHandler handles the movement ledger endpoints.
type MovementHandler struct {
	*BaseHandler
	movements *movement.Service
	ledger    *ledger.Service
}

// NewMovementHandler creates a new movement handler.
func NewMovementHandler(base *BaseHandler, movements *movement.Service, ledgerSvc *ledger.Service) *MovementHandler {
	return &MovementHandler{
		BaseHandler: base,
		movements:   movements,
		ledger:      ledgerSvc,
	}
}

// Create handles POST /movement
// Records an IN/OUT adjustment against a batch through the ledger.
func (h *MovementHandler) Create(c *gin.Context) {
	ownerID, ok := h.OwnerID(c)
	if !ok {
		return
	}

	var req dto.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	batchID, err := id.Parse(req.BatchID)
	if err != nil {
		h.Error(c, err)
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

// List handles GET /movement
func (h *MovementHandler) List(c *gin.Context) {
	ownerID, ok := h.OwnerID(c)
	if !ok {
		return
	}

	var q dto.MovementListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	filter := movement.ListFilter{
		From:   q.From,
		To:     q.To,
		Limit:  q.Limit,
		Offset: q.Offset,
	}
	if q.Type != "" {
		typ := movement.Type(q.Type)
		filter.Type = &typ
	}
	if q.BatchID != "" {
		batchID, err := id.Parse(q.BatchID)
		if err != nil {
			h.Error(c, err)
			return
		}
		filter.BatchID = &batchID
	}
	if q.ProductID != "" {
		productID, err := id.Parse(q.ProductID)
		if err != nil {
			h.Error(c, err)
			return
		}
		filter.ProductID = &productID
	}

	result, err := h.movements.List(c.Request.Context(), ownerID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromListResult(result))
}

// Get handles GET /movement/:id
func (h *MovementHandler) Get(c *gin.Context) {
	ownerID, ok := h.OwnerID(c)
	if !ok {
		return
	}

	movementID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	m, err := h.movements.GetByID(c.Request.Context(), ownerID, movementID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, m)
}

// RegisterRoutes registers movement routes.
func (h *MovementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
}
