package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/horyco/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StockLine is the mutable quantity/cost record for one item in one warehouse.
// It is the aggregate root for ledger operations and the single source of truth
// for stock on hand. The composite identifier is WarehouseID + ItemID.
//
// StockLine state is mutated only through Apply (driven by movement intents)
// and the reservation methods; documents and services never write the fields
// directly.
type StockLine struct {
	shared.BaseAggregateRoot
	WarehouseID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_line_warehouse_item,priority:1"`
	ItemID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_line_warehouse_item,priority:2"`
	QuantityOnHand   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReservedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Held for pending orders
	AverageCost      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Moving weighted average
	LastCost         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Most recent incoming unit cost
}

// TableName returns the table name for GORM
func (StockLine) TableName() string {
	return "stock_lines"
}

// NewStockLine creates a zero-valued stock line for a warehouse-item combination
func NewStockLine(warehouseID, itemID uuid.UUID) (*StockLine, error) {
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}

	return &StockLine{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		WarehouseID:       warehouseID,
		ItemID:            itemID,
		QuantityOnHand:    decimal.Zero,
		ReservedQuantity:  decimal.Zero,
		AverageCost:       decimal.Zero,
		LastCost:          decimal.Zero,
	}, nil
}

// Key returns the composite identifier of the line
func (l *StockLine) Key() LineKey {
	return LineKey{WarehouseID: l.WarehouseID, ItemID: l.ItemID}
}

// AvailableQuantity returns the quantity not held by reservations
func (l *StockLine) AvailableQuantity() decimal.Decimal {
	return l.QuantityOnHand.Sub(l.ReservedQuantity)
}

// TotalValue returns quantity on hand valued at the average cost
func (l *StockLine) TotalValue() decimal.Decimal {
	return l.QuantityOnHand.Mul(l.AverageCost).Round(CostScale)
}

// Apply applies a movement intent to the line and returns the resulting
// movement record. The intent's delta is added to the quantity on hand; the
// movement's previous/new quantities are captured from the line at the moment
// of application, which is what makes the journal chain verifiable.
//
// Outgoing deltas that would drive the quantity below the reservation floor
// fail with INSUFFICIENT_STOCK unless the policy allows the movement type to
// record negative stock. Incoming costed deltas recompute the weighted average
// cost; outgoing deltas are valued at the current average without changing it.
func (l *StockLine) Apply(intent MovementIntent, policy NegativeStockPolicy) (*Movement, error) {
	if err := intent.Validate(); err != nil {
		return nil, err
	}
	if intent.WarehouseID != l.WarehouseID || intent.ItemID != l.ItemID {
		return nil, shared.NewDomainError("WRONG_LINE", "Movement intent does not target this stock line")
	}

	previous := l.QuantityOnHand
	next := previous.Add(intent.QuantityDelta)

	if intent.QuantityDelta.IsNegative() && next.LessThan(l.ReservedQuantity) {
		if !policy.AllowsNegative(intent.Type) {
			return nil, shared.NewDomainError("INSUFFICIENT_STOCK",
				fmt.Sprintf("Movement of %s would leave %s on hand with %s reserved",
					intent.QuantityDelta, next, l.ReservedQuantity))
		}
		// Recorded discrepancy: drop the reservation floor so the
		// reserved-within-on-hand invariant keeps holding.
		floor := next
		if floor.IsNegative() {
			floor = decimal.Zero
		}
		if l.ReservedQuantity.GreaterThan(floor) {
			l.ReservedQuantity = floor
		}
	}

	unitCost := l.AverageCost
	if intent.QuantityDelta.IsPositive() && intent.UnitCost != nil {
		oldAverage := l.AverageCost
		l.AverageCost = WeightedAverageCost(previous, oldAverage, intent.QuantityDelta, *intent.UnitCost)
		l.LastCost = *intent.UnitCost
		unitCost = *intent.UnitCost

		if !oldAverage.Equal(l.AverageCost) {
			l.AddDomainEvent(NewAverageCostChangedEvent(l, oldAverage, l.AverageCost))
		}
	}

	l.QuantityOnHand = next
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	movement := NewMovement(intent, previous, unitCost)

	if movement.IsInbound() {
		l.AddDomainEvent(NewStockReceivedEvent(l, movement))
	} else {
		l.AddDomainEvent(NewStockIssuedEvent(l, movement))
	}

	return movement, nil
}

// Reserve holds a quantity for a pending order. The reservation can never
// exceed the quantity on hand.
func (l *StockLine) Reserve(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Reservation quantity must be positive")
	}
	newReserved := l.ReservedQuantity.Add(quantity)
	if newReserved.GreaterThan(l.QuantityOnHand) {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Cannot reserve %s, only %s available", quantity, l.AvailableQuantity()))
	}

	l.ReservedQuantity = newReserved
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	return nil
}

// Release returns a previously reserved quantity to the available pool
func (l *StockLine) Release(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Release quantity must be positive")
	}
	if quantity.GreaterThan(l.ReservedQuantity) {
		return shared.NewDomainError("INVALID_QUANTITY",
			fmt.Sprintf("Cannot release %s, only %s reserved", quantity, l.ReservedQuantity))
	}

	l.ReservedQuantity = l.ReservedQuantity.Sub(quantity)
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	return nil
}

// HasStock returns true if any quantity is on hand
func (l *StockLine) HasStock() bool {
	return l.QuantityOnHand.GreaterThan(decimal.Zero)
}

// CanIssue returns true if an outgoing movement of the given quantity would
// not breach the reservation floor
func (l *StockLine) CanIssue(quantity decimal.Decimal) bool {
	return l.QuantityOnHand.Sub(quantity).GreaterThanOrEqual(l.ReservedQuantity)
}
