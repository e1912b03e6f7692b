package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/horyco/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MovementType classifies the cause of a stock movement
type MovementType string

const (
	// MovementTypePurchaseReceipt is goods received against a purchase order
	MovementTypePurchaseReceipt MovementType = "PURCHASE_RECEIPT"
	// MovementTypeWriteoff is stock written off (spoilage, breakage, loss)
	MovementTypeWriteoff MovementType = "WRITEOFF"
	// MovementTypeCountAdjustment reconciles recorded stock to a physical count
	MovementTypeCountAdjustment MovementType = "COUNT_ADJUSTMENT"
	// MovementTypeProductionConsume is ingredients consumed by a production order
	MovementTypeProductionConsume MovementType = "PRODUCTION_CONSUME"
	// MovementTypeProductionYield is finished goods produced by a production order
	MovementTypeProductionYield MovementType = "PRODUCTION_YIELD"
	// MovementTypeManualAdjustment is an ad-hoc correction entered by an operator
	MovementTypeManualAdjustment MovementType = "MANUAL_ADJUSTMENT"
	// MovementTypeSale is stock consumed by a point-of-sale transaction
	MovementTypeSale MovementType = "SALE"
	// MovementTypeSaleReversal compensates an earlier sale (refund, void)
	MovementTypeSaleReversal MovementType = "SALE_REVERSAL"
	// MovementTypeOpeningBalance seeds a line's initial quantity and cost
	MovementTypeOpeningBalance MovementType = "OPENING_BALANCE"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypePurchaseReceipt,
		MovementTypeWriteoff,
		MovementTypeCountAdjustment,
		MovementTypeProductionConsume,
		MovementTypeProductionYield,
		MovementTypeManualAdjustment,
		MovementTypeSale,
		MovementTypeSaleReversal,
		MovementTypeOpeningBalance:
		return true
	}
	return false
}

// CarriesCost returns true if positive movements of this type normally carry a
// unit cost and therefore feed the weighted average cost calculation
func (t MovementType) CarriesCost() bool {
	switch t {
	case MovementTypePurchaseReceipt,
		MovementTypeProductionYield,
		MovementTypeOpeningBalance,
		MovementTypeProductionConsume, // reversal of consumption restores cost
		MovementTypeSaleReversal:
		return true
	}
	return false
}

// ReferenceType identifies the kind of document that originated a movement
type ReferenceType string

const (
	ReferenceTypePurchaseOrder   ReferenceType = "PURCHASE_ORDER"
	ReferenceTypeWriteoff        ReferenceType = "WRITEOFF"
	ReferenceTypeInventoryCount  ReferenceType = "INVENTORY_COUNT"
	ReferenceTypeProductionOrder ReferenceType = "PRODUCTION_ORDER"
	ReferenceTypePOSSale         ReferenceType = "POS_SALE"
	ReferenceTypeManual          ReferenceType = "MANUAL"
	ReferenceTypeOpening         ReferenceType = "OPENING"
)

// String returns the string representation of ReferenceType
func (r ReferenceType) String() string {
	return string(r)
}

// LineKey identifies the stock line a movement applies to
type LineKey struct {
	WarehouseID uuid.UUID
	ItemID      uuid.UUID
}

// String returns a stable textual form usable as a lock key
func (k LineKey) String() string {
	return k.WarehouseID.String() + "/" + k.ItemID.String()
}

// MovementIntent describes a stock change before it is applied to the ledger.
// The ledger computes previous/new quantities and the effective unit cost when
// the intent is applied; intents themselves carry no derived state.
type MovementIntent struct {
	WarehouseID   uuid.UUID
	ItemID        uuid.UUID
	QuantityDelta decimal.Decimal
	UnitCost      *decimal.Decimal // required for costed inbound types
	Type          MovementType
	ReferenceType ReferenceType
	ReferenceID   string
	ReferenceLine string
	Reason        string
	OperatorID    *uuid.UUID
}

// Key returns the stock line key this intent targets
func (i MovementIntent) Key() LineKey {
	return LineKey{WarehouseID: i.WarehouseID, ItemID: i.ItemID}
}

// Validate checks the intent is structurally sound before application
func (i MovementIntent) Validate() error {
	if i.WarehouseID == uuid.Nil {
		return shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if i.ItemID == uuid.Nil {
		return shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if !i.Type.IsValid() {
		return shared.NewDomainError("INVALID_MOVEMENT_TYPE", fmt.Sprintf("Unknown movement type %q", i.Type))
	}
	if i.QuantityDelta.IsZero() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity delta cannot be zero")
	}
	if i.UnitCost != nil && i.UnitCost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	if i.QuantityDelta.IsPositive() && i.UnitCost == nil && i.Type.CarriesCost() {
		return shared.NewDomainError("MISSING_COST", fmt.Sprintf("Movement type %s requires a unit cost for incoming stock", i.Type))
	}
	return nil
}

// Movement is an immutable ledger entry recording one applied stock change.
// Movements are append-only; corrections are made with compensating movements
// (e.g. SALE_REVERSAL), never by editing history.
type Movement struct {
	shared.BaseEntity
	WarehouseID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_line_time,priority:1"`
	ItemID             uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_line_time,priority:2"`
	Type               MovementType    `gorm:"type:varchar(30);not null;index:idx_movement_type"`
	QuantityDelta      decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Signed; positive is inbound
	UnitCostAtMovement decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Incoming cost, or WAC at issue time
	PreviousQuantity   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	NewQuantity        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReferenceType      ReferenceType   `gorm:"type:varchar(30);index:idx_movement_reference,priority:1"`
	ReferenceID        string          `gorm:"type:varchar(50);index:idx_movement_reference,priority:2"`
	ReferenceLine      string          `gorm:"type:varchar(50)"`
	Reason             string          `gorm:"type:varchar(255)"`
	OperatorID         *uuid.UUID      `gorm:"type:uuid"`
	OccurredAt         time.Time       `gorm:"not null;index:idx_movement_line_time,priority:3"`
}

// TableName returns the table name for GORM
func (Movement) TableName() string {
	return "stock_movements"
}

// NewMovement creates a movement record for an applied intent.
// NewQuantity is always computed as previous + delta so the chaining invariant
// cannot be violated by construction.
func NewMovement(intent MovementIntent, previousQuantity decimal.Decimal, unitCost decimal.Decimal) *Movement {
	return &Movement{
		BaseEntity:         shared.NewBaseEntity(),
		WarehouseID:        intent.WarehouseID,
		ItemID:             intent.ItemID,
		Type:               intent.Type,
		QuantityDelta:      intent.QuantityDelta,
		UnitCostAtMovement: unitCost,
		PreviousQuantity:   previousQuantity,
		NewQuantity:        previousQuantity.Add(intent.QuantityDelta),
		ReferenceType:      intent.ReferenceType,
		ReferenceID:        intent.ReferenceID,
		ReferenceLine:      intent.ReferenceLine,
		Reason:             intent.Reason,
		OperatorID:         intent.OperatorID,
		OccurredAt:         time.Now(),
	}
}

// Key returns the stock line key of this movement
func (m *Movement) Key() LineKey {
	return LineKey{WarehouseID: m.WarehouseID, ItemID: m.ItemID}
}

// IsInbound returns true if the movement increased stock
func (m *Movement) IsInbound() bool {
	return m.QuantityDelta.IsPositive()
}

// IsOutbound returns true if the movement decreased stock
func (m *Movement) IsOutbound() bool {
	return m.QuantityDelta.IsNegative()
}

// TotalCost returns the absolute value moved at the recorded unit cost
func (m *Movement) TotalCost() decimal.Decimal {
	return m.QuantityDelta.Abs().Mul(m.UnitCostAtMovement)
}

// NegativeStockPolicy decides which movement types may drive a stock line below
// its reservation floor, recording the shortfall as a discrepancy instead of
// rejecting the movement.
type NegativeStockPolicy struct {
	allowNegative map[MovementType]bool
}

// NewNegativeStockPolicy creates a policy allowing the given types to go negative
func NewNegativeStockPolicy(types ...MovementType) NegativeStockPolicy {
	allow := make(map[MovementType]bool, len(types))
	for _, t := range types {
		allow[t] = true
	}
	return NegativeStockPolicy{allowNegative: allow}
}

// DefaultNegativeStockPolicy allows manual adjustments and count adjustments to
// record negative stock; every other outgoing type is floored at the
// reservation level.
func DefaultNegativeStockPolicy() NegativeStockPolicy {
	return NewNegativeStockPolicy(MovementTypeManualAdjustment, MovementTypeCountAdjustment)
}

// AllowsNegative returns true if the movement type may bypass the stock floor
func (p NegativeStockPolicy) AllowsNegative(t MovementType) bool {
	return p.allowNegative[t]
}
