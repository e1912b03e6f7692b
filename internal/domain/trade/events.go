package trade

import (
	"github.com/google/uuid"
	"github.com/horyco/backend/internal/domain/inventory"
	"github.com/horyco/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types for the trade domain
const (
	EventTypeGoodsReceived = "trade.goods_received"
)

// GoodsReceivedEvent is raised when a delivery is booked against a purchase order
type GoodsReceivedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string          `json:"order_number"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	LineCount   int             `json:"line_count"`
	TotalValue  decimal.Decimal `json:"total_value"`
}

// NewGoodsReceivedEvent creates a goods received event
func NewGoodsReceivedEvent(o *PurchaseOrder, intents []inventory.MovementIntent) *GoodsReceivedEvent {
	total := decimal.Zero
	for _, intent := range intents {
		if intent.UnitCost != nil {
			total = total.Add(intent.QuantityDelta.Mul(*intent.UnitCost))
		}
	}
	return &GoodsReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGoodsReceived, "PurchaseOrder", o.ID),
		OrderNumber:     o.OrderNumber,
		WarehouseID:     o.WarehouseID,
		LineCount:       len(intents),
		TotalValue:      total.Round(inventory.CostScale),
	}
}
