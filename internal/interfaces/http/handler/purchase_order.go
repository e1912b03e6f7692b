package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	tradeapp "github.com/horyco/backend/internal/application/trade"
	"github.com/horyco/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// PurchaseOrderHandler handles purchase order API endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	orderService *tradeapp.PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(orderService *tradeapp.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{orderService: orderService}
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID          uuid.UUID                   `json:"id"`
	OrderNumber string                      `json:"order_number"`
	SupplierID  uuid.UUID                   `json:"supplier_id"`
	WarehouseID uuid.UUID                   `json:"warehouse_id"`
	Status      string                      `json:"status"`
	Notes       string                      `json:"notes,omitempty"`
	Lines       []PurchaseOrderLineResponse `json:"lines"`
	TotalAmount decimal.Decimal             `json:"total_amount"`
	SubmittedAt *time.Time                  `json:"submitted_at,omitempty"`
	ClosedAt    *time.Time                  `json:"closed_at,omitempty"`
	CancelledAt *time.Time                  `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

// PurchaseOrderLineResponse is one line of a purchase order response
type PurchaseOrderLineResponse struct {
	ID                uuid.UUID       `json:"id"`
	ItemID            uuid.UUID       `json:"item_id"`
	QuantityOrdered   decimal.Decimal `json:"quantity_ordered"`
	QuantityReceived  decimal.Decimal `json:"quantity_received"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
}

func toPurchaseOrderResponse(o *trade.PurchaseOrder) PurchaseOrderResponse {
	lines := make([]PurchaseOrderLineResponse, 0, len(o.Lines))
	for i := range o.Lines {
		line := &o.Lines[i]
		lines = append(lines, PurchaseOrderLineResponse{
			ID:                line.ID,
			ItemID:            line.ItemID,
			QuantityOrdered:   line.QuantityOrdered,
			QuantityReceived:  line.QuantityReceived,
			RemainingQuantity: line.RemainingQuantity(),
			UnitCost:          line.UnitCost,
		})
	}
	return PurchaseOrderResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		SupplierID:  o.SupplierID,
		WarehouseID: o.WarehouseID,
		Status:      string(o.Status),
		Notes:       o.Notes,
		Lines:       lines,
		TotalAmount: o.TotalAmount,
		SubmittedAt: o.SubmittedAt,
		ClosedAt:    o.ClosedAt,
		CancelledAt: o.CancelledAt,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

// RegisterRoutes registers purchase order routes on the given group
func (h *PurchaseOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/purchase-orders")
	orders.POST("", h.Create)
	orders.GET("", h.List)
	orders.GET("/:id", h.Get)
	orders.DELETE("/:id", h.Delete)
	orders.POST("/:id/lines", h.AddLine)
	orders.PUT("/:id/lines/:line_id", h.UpdateLine)
	orders.DELETE("/:id/lines/:line_id", h.RemoveLine)
	orders.POST("/:id/submit", h.Submit)
	orders.POST("/:id/receive", h.Receive)
	orders.POST("/:id/close", h.Close)
	orders.POST("/:id/cancel", h.Cancel)
}

// Create creates a draft purchase order
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req tradeapp.CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.CreatedBy = getOperatorID(c)

	order, err := h.orderService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toPurchaseOrderResponse(order))
}

// List returns purchase orders matching the filter
func (h *PurchaseOrderHandler) List(c *gin.Context) {
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
	if supplierID := c.Query("supplier_id"); supplierID != "" {
		filter.Filters["supplier_id"] = supplierID
	}

	page, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]PurchaseOrderResponse, 0, len(page.Items))
	for _, order := range page.Items {
		responses = append(responses, toPurchaseOrderResponse(order))
	}
	h.SuccessWithMeta(c, responses, page.Total, page.Page, page.PageSize)
}

// Get returns a purchase order by id
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	order, err := h.orderService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPurchaseOrderResponse(order))
}

// Delete removes a draft purchase order
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	if err := h.orderService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddLine adds a line to a draft purchase order
func (h *PurchaseOrderHandler) AddLine(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	var req tradeapp.PurchaseOrderLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.AddLine(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPurchaseOrderResponse(order))
}

// UpdateLine updates a line on a draft purchase order
func (h *PurchaseOrderHandler) UpdateLine(c *gin.Context) {
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

	var req tradeapp.PurchaseOrderLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.UpdateLine(c.Request.Context(), id, lineID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPurchaseOrderResponse(order))
}

// RemoveLine removes a line from a draft purchase order
func (h *PurchaseOrderHandler) RemoveLine(c *gin.Context) {
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

	order, err := h.orderService.RemoveLine(c.Request.Context(), id, lineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPurchaseOrderResponse(order))
}

// Submit submits a draft purchase order
func (h *PurchaseOrderHandler) Submit(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	order, err := h.orderService.Submit(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPurchaseOrderResponse(order))
}

// Receive books a delivery against a submitted order and posts the receipt
// movements
func (h *PurchaseOrderHandler) Receive(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	var req tradeapp.ReceiveGoodsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.OperatorID == nil {
		if operatorID := getOperatorID(c); operatorID != uuid.Nil {
			req.OperatorID = &operatorID
		}
	}

	order, err := h.orderService.Receive(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPurchaseOrderResponse(order))
}

// Close closes a partially received order, waiving the outstanding quantity
func (h *PurchaseOrderHandler) Close(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	order, err := h.orderService.Close(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPurchaseOrderResponse(order))
}

// Cancel cancels an order that has not received any goods
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	order, err := h.orderService.Cancel(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPurchaseOrderResponse(order))
}
