package production

import (
	"github.com/google/uuid"
	"github.com/horyco/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types for the production domain
const (
	EventTypeProductionCompleted = "production.completed"
)

// ProductionCompletedEvent is raised when a production order yields its output
type ProductionCompletedEvent struct {
	shared.BaseDomainEvent
	OrderNumber    string          `json:"order_number"`
	WarehouseID    uuid.UUID       `json:"warehouse_id"`
	OutputItemID   uuid.UUID       `json:"output_item_id"`
	ActualQuantity decimal.Decimal `json:"actual_quantity"`
	YieldUnitCost  decimal.Decimal `json:"yield_unit_cost"`
}

// NewProductionCompletedEvent creates a production completed event
func NewProductionCompletedEvent(o *ProductionOrder) *ProductionCompletedEvent {
	actual := decimal.Zero
	if o.ActualQuantity != nil {
		actual = *o.ActualQuantity
	}
	return &ProductionCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductionCompleted, "ProductionOrder", o.ID),
		OrderNumber:     o.OrderNumber,
		WarehouseID:     o.WarehouseID,
		OutputItemID:    o.OutputItemID,
		ActualQuantity:  actual,
		YieldUnitCost:   o.YieldUnitCost,
	}
}
