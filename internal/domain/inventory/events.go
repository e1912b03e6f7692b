package inventory

import (
	"github.com/google/uuid"
	"github.com/horyco/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types for the inventory domain
const (
	EventTypeStockReceived      = "inventory.stock_received"
	EventTypeStockIssued        = "inventory.stock_issued"
	EventTypeAverageCostChanged = "inventory.average_cost_changed"
	EventTypeStockBelowMinimum  = "inventory.stock_below_minimum"
	EventTypeWriteoffApproved   = "inventory.writeoff_approved"
	EventTypeCountApproved      = "inventory.count_approved"
)

// StockReceivedEvent is raised when a movement increases a stock line
type StockReceivedEvent struct {
	shared.BaseDomainEvent
	WarehouseID  uuid.UUID       `json:"warehouse_id"`
	ItemID       uuid.UUID       `json:"item_id"`
	MovementID   uuid.UUID       `json:"movement_id"`
	MovementType MovementType    `json:"movement_type"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	NewQuantity  decimal.Decimal `json:"new_quantity"`
}

// NewStockReceivedEvent creates a stock received event
func NewStockReceivedEvent(line *StockLine, movement *Movement) *StockReceivedEvent {
	return &StockReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReceived, "StockLine", line.ID),
		WarehouseID:     line.WarehouseID,
		ItemID:          line.ItemID,
		MovementID:      movement.ID,
		MovementType:    movement.Type,
		Quantity:        movement.QuantityDelta,
		UnitCost:        movement.UnitCostAtMovement,
		NewQuantity:     movement.NewQuantity,
	}
}

// StockIssuedEvent is raised when a movement decreases a stock line
type StockIssuedEvent struct {
	shared.BaseDomainEvent
	WarehouseID  uuid.UUID       `json:"warehouse_id"`
	ItemID       uuid.UUID       `json:"item_id"`
	MovementID   uuid.UUID       `json:"movement_id"`
	MovementType MovementType    `json:"movement_type"`
	Quantity     decimal.Decimal `json:"quantity"` // absolute quantity issued
	UnitCost     decimal.Decimal `json:"unit_cost"`
	NewQuantity  decimal.Decimal `json:"new_quantity"`
}

// NewStockIssuedEvent creates a stock issued event
func NewStockIssuedEvent(line *StockLine, movement *Movement) *StockIssuedEvent {
	return &StockIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockIssued, "StockLine", line.ID),
		WarehouseID:     line.WarehouseID,
		ItemID:          line.ItemID,
		MovementID:      movement.ID,
		MovementType:    movement.Type,
		Quantity:        movement.QuantityDelta.Abs(),
		UnitCost:        movement.UnitCostAtMovement,
		NewQuantity:     movement.NewQuantity,
	}
}

// AverageCostChangedEvent is raised when an incoming costed movement moves the
// weighted average cost of a line
type AverageCostChangedEvent struct {
	shared.BaseDomainEvent
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	ItemID      uuid.UUID       `json:"item_id"`
	OldCost     decimal.Decimal `json:"old_cost"`
	NewCost     decimal.Decimal `json:"new_cost"`
}

// NewAverageCostChangedEvent creates an average cost changed event
func NewAverageCostChangedEvent(line *StockLine, oldCost, newCost decimal.Decimal) *AverageCostChangedEvent {
	return &AverageCostChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAverageCostChanged, "StockLine", line.ID),
		WarehouseID:     line.WarehouseID,
		ItemID:          line.ItemID,
		OldCost:         oldCost,
		NewCost:         newCost,
	}
}

// StockBelowMinimumEvent is raised when a line drops under the item's minimum
type StockBelowMinimumEvent struct {
	shared.BaseDomainEvent
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	ItemID      uuid.UUID       `json:"item_id"`
	OnHand      decimal.Decimal `json:"on_hand"`
	MinQuantity decimal.Decimal `json:"min_quantity"`
}

// NewStockBelowMinimumEvent creates a stock below minimum event
func NewStockBelowMinimumEvent(line *StockLine, minQuantity decimal.Decimal) *StockBelowMinimumEvent {
	return &StockBelowMinimumEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowMinimum, "StockLine", line.ID),
		WarehouseID:     line.WarehouseID,
		ItemID:          line.ItemID,
		OnHand:          line.QuantityOnHand,
		MinQuantity:     minQuantity,
	}
}

// WriteoffApprovedEvent is raised when a writeoff document is approved and its
// stock deductions posted
type WriteoffApprovedEvent struct {
	shared.BaseDomainEvent
	WriteoffNumber string          `json:"writeoff_number"`
	WarehouseID    uuid.UUID       `json:"warehouse_id"`
	TotalCost      decimal.Decimal `json:"total_cost"`
	LineCount      int             `json:"line_count"`
}

// NewWriteoffApprovedEvent creates a writeoff approved event
func NewWriteoffApprovedEvent(w *Writeoff) *WriteoffApprovedEvent {
	return &WriteoffApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWriteoffApproved, "Writeoff", w.ID),
		WriteoffNumber:  w.WriteoffNumber,
		WarehouseID:     w.WarehouseID,
		TotalCost:       w.TotalCost,
		LineCount:       len(w.Lines),
	}
}

// CountApprovedEvent is raised when an inventory count is approved and its
// adjustments posted
type CountApprovedEvent struct {
	shared.BaseDomainEvent
	CountNumber   string          `json:"count_number"`
	WarehouseID   uuid.UUID       `json:"warehouse_id"`
	TotalVariance decimal.Decimal `json:"total_variance"`
	LineCount     int             `json:"line_count"`
}

// NewCountApprovedEvent creates a count approved event
func NewCountApprovedEvent(c *InventoryCount) *CountApprovedEvent {
	return &CountApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCountApproved, "InventoryCount", c.ID),
		CountNumber:     c.CountNumber,
		WarehouseID:     c.WarehouseID,
		TotalVariance:   c.TotalVarianceValue(),
		LineCount:       len(c.Lines),
	}
}
