package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	invapp "github.com/horyco/backend/internal/application/inventory"
	"github.com/horyco/backend/internal/domain/inventory"
)

// StockHandler handles stock ledger API endpoints
type StockHandler struct {
	BaseHandler
	ledger *invapp.LedgerService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(ledger *invapp.LedgerService) *StockHandler {
	return &StockHandler{ledger: ledger}
}

// RegisterRoutes registers stock ledger routes on the given group
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stock := rg.Group("/stock")
	stock.GET("/lines/lookup", h.GetLine)
	stock.GET("/movements", h.History)
	stock.POST("/adjustments", h.Adjust)
	stock.POST("/opening-balances", h.OpeningBalance)
	stock.GET("/audit", h.AuditLine)
	rg.GET("/warehouses/:warehouse_id/summary", h.WarehouseSummary)
	rg.GET("/warehouses/:warehouse_id/low-stock", h.LowStock)
}

// LowStock lists the lines in a warehouse at or below their item's minimum
func (h *StockHandler) LowStock(c *gin.Context) {
	warehouseID, ok := parseUUIDParam(c, "warehouse_id")
	if !ok {
		h.BadRequest(c, "warehouse_id must be a valid UUID")
		return
	}

	alerts, err := h.ledger.LowStock(c.Request.Context(), warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, alerts)
}

// GetLine returns the stock line for a warehouse-item combination
func (h *StockHandler) GetLine(c *gin.Context) {
	warehouseID, ok := parseUUIDQuery(c, "warehouse_id")
	if !ok {
		h.BadRequest(c, "warehouse_id must be a valid UUID")
		return
	}
	itemID, ok := parseUUIDQuery(c, "item_id")
	if !ok {
		h.BadRequest(c, "item_id must be a valid UUID")
		return
	}

	line, err := h.ledger.GetLine(c.Request.Context(), warehouseID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invapp.ToStockLineResponse(line))
}

// History returns the movement journal for a warehouse, optionally narrowed
// to one item, movement type or time window
func (h *StockHandler) History(c *gin.Context) {
	warehouseID, ok := parseUUIDQuery(c, "warehouse_id")
	if !ok {
		h.BadRequest(c, "warehouse_id must be a valid UUID")
		return
	}

	filter := inventory.MovementHistoryFilter{WarehouseID: warehouseID}
	if raw := c.Query("item_id"); raw != "" {
		itemID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "item_id must be a valid UUID")
			return
		}
		filter.ItemID = &itemID
	}
	if raw := c.Query("type"); raw != "" {
		movementType := inventory.MovementType(raw)
		if !movementType.IsValid() {
			h.BadRequest(c, "unknown movement type")
			return
		}
		filter.Type = &movementType
	}
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.BadRequest(c, "from must be an RFC3339 timestamp")
			return
		}
		filter.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.BadRequest(c, "to must be an RFC3339 timestamp")
			return
		}
		filter.To = &to
	}
	if listFilter, ok := bindFilter(c); ok {
		filter.Page = listFilter.Page
		filter.PageSize = listFilter.PageSize
	}

	page, err := h.ledger.History(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]invapp.MovementResponse, 0, len(page.Items))
	for _, m := range page.Items {
		responses = append(responses, invapp.ToMovementResponse(m))
	}
	h.SuccessWithMeta(c, responses, page.Total, page.Page, page.PageSize)
}

// Adjust posts a manual stock adjustment
func (h *StockHandler) Adjust(c *gin.Context) {
	var req invapp.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.OperatorID == nil {
		if operatorID := getOperatorID(c); operatorID != uuid.Nil {
			req.OperatorID = &operatorID
		}
	}

	movement, err := h.ledger.ApplyMovement(c.Request.Context(), req.ToIntent())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invapp.ToMovementResponse(movement))
}

// OpeningBalance seeds a stock line's initial quantity and cost
func (h *StockHandler) OpeningBalance(c *gin.Context) {
	var req invapp.OpeningBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.OperatorID == nil {
		if operatorID := getOperatorID(c); operatorID != uuid.Nil {
			req.OperatorID = &operatorID
		}
	}

	movement, err := h.ledger.ApplyMovement(c.Request.Context(), req.ToIntent())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invapp.ToMovementResponse(movement))
}

// WarehouseSummary returns the aggregated valuation of one warehouse
func (h *StockHandler) WarehouseSummary(c *gin.Context) {
	warehouseID, ok := parseUUIDParam(c, "warehouse_id")
	if !ok {
		h.BadRequest(c, "warehouse_id must be a valid UUID")
		return
	}

	summary, err := h.ledger.WarehouseSummary(c.Request.Context(), warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// AuditLine reports whether a line's journal sums to its quantity on hand
func (h *StockHandler) AuditLine(c *gin.Context) {
	warehouseID, ok := parseUUIDQuery(c, "warehouse_id")
	if !ok {
		h.BadRequest(c, "warehouse_id must be a valid UUID")
		return
	}
	itemID, ok := parseUUIDQuery(c, "item_id")
	if !ok {
		h.BadRequest(c, "item_id must be a valid UUID")
		return
	}

	consistent, err := h.ledger.AuditLine(c.Request.Context(), warehouseID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{
		"warehouse_id": warehouseID,
		"item_id":      itemID,
		"consistent":   consistent,
	})
}
