package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	invapp "github.com/horyco/backend/internal/application/inventory"
	"github.com/horyco/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// CountHandler handles inventory count API endpoints
type CountHandler struct {
	BaseHandler
	countService *invapp.CountService
}

// NewCountHandler creates a new CountHandler
func NewCountHandler(countService *invapp.CountService) *CountHandler {
	return &CountHandler{countService: countService}
}

// CountResponse represents an inventory count document in API responses
type CountResponse struct {
	ID          uuid.UUID           `json:"id"`
	CountNumber string              `json:"count_number"`
	WarehouseID uuid.UUID           `json:"warehouse_id"`
	Status      string              `json:"status"`
	Notes       string              `json:"notes,omitempty"`
	Lines       []CountLineResponse `json:"lines"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
	ApprovedAt  *time.Time          `json:"approved_at,omitempty"`
	ApprovedBy  *uuid.UUID          `json:"approved_by,omitempty"`
	CancelledAt *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// CountLineResponse is one line of a count response
type CountLineResponse struct {
	ID               uuid.UUID        `json:"id"`
	ItemID           uuid.UUID        `json:"item_id"`
	ExpectedQuantity decimal.Decimal  `json:"expected_quantity"`
	CountedQuantity  *decimal.Decimal `json:"counted_quantity,omitempty"`
	UnitCost         decimal.Decimal  `json:"unit_cost"`
	QuantityVariance decimal.Decimal  `json:"quantity_variance"`
	ValueVariance    decimal.Decimal  `json:"value_variance"`
}

func toCountResponse(count *inventory.InventoryCount) CountResponse {
	lines := make([]CountLineResponse, 0, len(count.Lines))
	for _, line := range count.Lines {
		lines = append(lines, CountLineResponse{
			ID:               line.ID,
			ItemID:           line.ItemID,
			ExpectedQuantity: line.ExpectedQuantity,
			CountedQuantity:  line.CountedQuantity,
			UnitCost:         line.UnitCost,
			QuantityVariance: line.QuantityVariance,
			ValueVariance:    line.ValueVariance,
		})
	}
	return CountResponse{
		ID:          count.ID,
		CountNumber: count.CountNumber,
		WarehouseID: count.WarehouseID,
		Status:      string(count.Status),
		Notes:       count.Notes,
		Lines:       lines,
		CompletedAt: count.CompletedAt,
		ApprovedAt:  count.ApprovedAt,
		ApprovedBy:  count.ApprovedBy,
		CancelledAt: count.CancelledAt,
		CreatedAt:   count.CreatedAt,
		UpdatedAt:   count.UpdatedAt,
	}
}

// AddCountLineRequest adds one item to a count
type AddCountLineRequest struct {
	ItemID uuid.UUID `json:"item_id" binding:"required"`
}

// RegisterRoutes registers inventory count routes on the given group
func (h *CountHandler) RegisterRoutes(rg *gin.RouterGroup) {
	counts := rg.Group("/counts")
	counts.POST("", h.Create)
	counts.GET("", h.List)
	counts.GET("/:id", h.Get)
	counts.GET("/:id/variances", h.Variances)
	counts.POST("/:id/lines", h.AddLine)
	counts.PUT("/:id/lines/:line_id", h.RecordCount)
	counts.DELETE("/:id/lines/:line_id", h.RemoveLine)
	counts.POST("/:id/complete", h.Complete)
	counts.POST("/:id/approve", h.Approve)
	counts.POST("/:id/cancel", h.Cancel)
}

// Create starts an inventory count
func (h *CountHandler) Create(c *gin.Context) {
	var req invapp.CreateCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.CreatedBy = getOperatorID(c)

	count, err := h.countService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toCountResponse(count))
}

// List returns counts matching the filter
func (h *CountHandler) List(c *gin.Context) {
	filter, ok := bindFilter(c)
	if !ok {
		h.BadRequest(c, "invalid list parameters")
		return
	}
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}
	if warehouseID := c.Query("warehouse_id"); warehouseID != "" {
		filter.Filters["warehouse_id"] = warehouseID
	}

	page, err := h.countService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]CountResponse, 0, len(page.Items))
	for _, count := range page.Items {
		responses = append(responses, toCountResponse(count))
	}
	h.SuccessWithMeta(c, responses, page.Total, page.Page, page.PageSize)
}

// Get returns a count by id
func (h *CountHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	count, err := h.countService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCountResponse(count))
}

// Variances returns the per-line variances and their rollup for a count
func (h *CountHandler) Variances(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	variances, summary, err := h.countService.Variances(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{
		"variances": variances,
		"summary":   summary,
	})
}

// AddLine adds an item to a count in progress, snapshotting its expected
// quantity from the stock line
func (h *CountHandler) AddLine(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	var req AddCountLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	count, err := h.countService.AddLine(c.Request.Context(), id, req.ItemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCountResponse(count))
}

// RecordCount enters the physically counted quantity for a line
func (h *CountHandler) RecordCount(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}
	lineID, ok := parseUUIDParam(c, "line_id")
	if !ok {
		h.BadRequest(c, "line_id must be a valid UUID")
		return
	}

	var req invapp.RecordCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	count, err := h.countService.RecordCount(c.Request.Context(), id, lineID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCountResponse(count))
}

// RemoveLine removes a line from a count in progress
func (h *CountHandler) RemoveLine(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}
	lineID, ok := parseUUIDParam(c, "line_id")
	if !ok {
		h.BadRequest(c, "line_id must be a valid UUID")
		return
	}

	count, err := h.countService.RemoveLine(c.Request.Context(), id, lineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCountResponse(count))
}

// Complete freezes the count and computes variances without touching stock
func (h *CountHandler) Complete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	count, err := h.countService.Complete(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCountResponse(count))
}

// Approve posts the count's adjustment movements to the ledger
func (h *CountHandler) Approve(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	count, err := h.countService.Approve(c.Request.Context(), id, getOperatorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCountResponse(count))
}

// Cancel abandons a count in progress
func (h *CountHandler) Cancel(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	count, err := h.countService.Cancel(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCountResponse(count))
}
