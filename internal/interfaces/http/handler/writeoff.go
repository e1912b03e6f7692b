package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	invapp "github.com/horyco/backend/internal/application/inventory"
	"github.com/horyco/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// WriteoffHandler handles writeoff document API endpoints
type WriteoffHandler struct {
	BaseHandler
	writeoffService *invapp.WriteoffService
}

// NewWriteoffHandler creates a new WriteoffHandler
func NewWriteoffHandler(writeoffService *invapp.WriteoffService) *WriteoffHandler {
	return &WriteoffHandler{writeoffService: writeoffService}
}

// WriteoffResponse represents a writeoff document in API responses
type WriteoffResponse struct {
	ID              uuid.UUID              `json:"id"`
	WriteoffNumber  string                 `json:"writeoff_number"`
	WarehouseID     uuid.UUID              `json:"warehouse_id"`
	Status          string                 `json:"status"`
	Reason          string                 `json:"reason"`
	Notes           string                 `json:"notes,omitempty"`
	Lines           []WriteoffLineResponse `json:"lines"`
	TotalCost       decimal.Decimal        `json:"total_cost"`
	SubmittedAt     *time.Time             `json:"submitted_at,omitempty"`
	ApprovedAt      *time.Time             `json:"approved_at,omitempty"`
	ApprovedBy      *uuid.UUID             `json:"approved_by,omitempty"`
	RejectedAt      *time.Time             `json:"rejected_at,omitempty"`
	RejectionReason string                 `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// WriteoffLineResponse is one line of a writeoff response
type WriteoffLineResponse struct {
	ID       uuid.UUID       `json:"id"`
	ItemID   uuid.UUID       `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
	UnitCost decimal.Decimal `json:"unit_cost"`
	LineCost decimal.Decimal `json:"line_cost"`
	Notes    string          `json:"notes,omitempty"`
}

func toWriteoffResponse(w *inventory.Writeoff) WriteoffResponse {
	lines := make([]WriteoffLineResponse, 0, len(w.Lines))
	for _, line := range w.Lines {
		lines = append(lines, WriteoffLineResponse{
			ID:       line.ID,
			ItemID:   line.ItemID,
			Quantity: line.Quantity,
			UnitCost: line.UnitCost,
			LineCost: line.LineCost,
			Notes:    line.Notes,
		})
	}
	return WriteoffResponse{
		ID:              w.ID,
		WriteoffNumber:  w.WriteoffNumber,
		WarehouseID:     w.WarehouseID,
		Status:          string(w.Status),
		Reason:          string(w.Reason),
		Notes:           w.Notes,
		Lines:           lines,
		TotalCost:       w.TotalCost,
		SubmittedAt:     w.SubmittedAt,
		ApprovedAt:      w.ApprovedAt,
		ApprovedBy:      w.ApprovedBy,
		RejectedAt:      w.RejectedAt,
		RejectionReason: w.RejectionReason,
		CreatedAt:       w.CreatedAt,
		UpdatedAt:       w.UpdatedAt,
	}
}

// RejectWriteoffRequest carries the rejection reason
type RejectWriteoffRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RegisterRoutes registers writeoff routes on the given group
func (h *WriteoffHandler) RegisterRoutes(rg *gin.RouterGroup) {
	writeoffs := rg.Group("/writeoffs")
	writeoffs.POST("", h.Create)
	writeoffs.GET("", h.List)
	writeoffs.GET("/:id", h.Get)
	writeoffs.DELETE("/:id", h.Delete)
	writeoffs.POST("/:id/lines", h.AddLine)
	writeoffs.PUT("/:id/lines/:line_id", h.UpdateLine)
	writeoffs.DELETE("/:id/lines/:line_id", h.RemoveLine)
	writeoffs.POST("/:id/submit", h.Submit)
	writeoffs.POST("/:id/approve", h.Approve)
	writeoffs.POST("/:id/reject", h.Reject)
}

// Create creates a draft writeoff
func (h *WriteoffHandler) Create(c *gin.Context) {
	var req invapp.CreateWriteoffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.CreatedBy = getOperatorID(c)

	w, err := h.writeoffService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toWriteoffResponse(w))
}

// List returns writeoffs matching the filter
func (h *WriteoffHandler) List(c *gin.Context) {
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

	page, err := h.writeoffService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]WriteoffResponse, 0, len(page.Items))
	for _, w := range page.Items {
		responses = append(responses, toWriteoffResponse(w))
	}
	h.SuccessWithMeta(c, responses, page.Total, page.Page, page.PageSize)
}

// Get returns a writeoff by id
func (h *WriteoffHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	w, err := h.writeoffService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toWriteoffResponse(w))
}

// Delete removes a draft writeoff
func (h *WriteoffHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	if err := h.writeoffService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddLine adds a line to a draft writeoff
func (h *WriteoffHandler) AddLine(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	var req invapp.WriteoffLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	w, err := h.writeoffService.AddLine(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toWriteoffResponse(w))
}

// UpdateLine updates a line on a draft writeoff
func (h *WriteoffHandler) UpdateLine(c *gin.Context) {
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

	var req invapp.WriteoffLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	w, err := h.writeoffService.UpdateLine(c.Request.Context(), id, lineID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toWriteoffResponse(w))
}

// RemoveLine removes a line from a draft writeoff
func (h *WriteoffHandler) RemoveLine(c *gin.Context) {
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

	w, err := h.writeoffService.RemoveLine(c.Request.Context(), id, lineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toWriteoffResponse(w))
}

// Submit submits a draft writeoff for approval
func (h *WriteoffHandler) Submit(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	w, err := h.writeoffService.Submit(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toWriteoffResponse(w))
}

// Approve approves a submitted writeoff and posts its stock movements
func (h *WriteoffHandler) Approve(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	w, err := h.writeoffService.Approve(c.Request.Context(), id, getOperatorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toWriteoffResponse(w))
}

// Reject rejects a submitted writeoff
func (h *WriteoffHandler) Reject(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	var req RejectWriteoffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	w, err := h.writeoffService.Reject(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toWriteoffResponse(w))
}
