package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/horyco/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// StockLineResponse represents a stock line in API responses
type StockLineResponse struct {
	ID                uuid.UUID       `json:"id"`
	WarehouseID       uuid.UUID       `json:"warehouse_id"`
	ItemID            uuid.UUID       `json:"item_id"`
	QuantityOnHand    decimal.Decimal `json:"quantity_on_hand"`
	ReservedQuantity  decimal.Decimal `json:"reserved_quantity"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	AverageCost       decimal.Decimal `json:"average_cost"`
	LastCost          decimal.Decimal `json:"last_cost"`
	TotalValue        decimal.Decimal `json:"total_value"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Version           int             `json:"version"`
}

// ToStockLineResponse converts a stock line to its response shape
func ToStockLineResponse(line *inventory.StockLine) StockLineResponse {
	return StockLineResponse{
		ID:                line.ID,
		WarehouseID:       line.WarehouseID,
		ItemID:            line.ItemID,
		QuantityOnHand:    line.QuantityOnHand,
		ReservedQuantity:  line.ReservedQuantity,
		AvailableQuantity: line.AvailableQuantity(),
		AverageCost:       line.AverageCost,
		LastCost:          line.LastCost,
		TotalValue:        line.TotalValue(),
		UpdatedAt:         line.UpdatedAt,
		Version:           line.GetVersion(),
	}
}

// MovementResponse represents a ledger movement in API responses
type MovementResponse struct {
	ID                 uuid.UUID       `json:"id"`
	WarehouseID        uuid.UUID       `json:"warehouse_id"`
	ItemID             uuid.UUID       `json:"item_id"`
	Type               string          `json:"type"`
	QuantityDelta      decimal.Decimal `json:"quantity_delta"`
	UnitCostAtMovement decimal.Decimal `json:"unit_cost_at_movement"`
	PreviousQuantity   decimal.Decimal `json:"previous_quantity"`
	NewQuantity        decimal.Decimal `json:"new_quantity"`
	ReferenceType      string          `json:"reference_type,omitempty"`
	ReferenceID        string          `json:"reference_id,omitempty"`
	Reason             string          `json:"reason,omitempty"`
	OccurredAt         time.Time       `json:"occurred_at"`
}

// ToMovementResponse converts a movement to its response shape
func ToMovementResponse(m *inventory.Movement) MovementResponse {
	return MovementResponse{
		ID:                 m.ID,
		WarehouseID:        m.WarehouseID,
		ItemID:             m.ItemID,
		Type:               m.Type.String(),
		QuantityDelta:      m.QuantityDelta,
		UnitCostAtMovement: m.UnitCostAtMovement,
		PreviousQuantity:   m.PreviousQuantity,
		NewQuantity:        m.NewQuantity,
		ReferenceType:      m.ReferenceType.String(),
		ReferenceID:        m.ReferenceID,
		Reason:             m.Reason,
		OccurredAt:         m.OccurredAt,
	}
}

// AdjustStockRequest represents a manual stock adjustment
type AdjustStockRequest struct {
	WarehouseID   uuid.UUID        `json:"warehouse_id" binding:"required"`
	ItemID        uuid.UUID        `json:"item_id" binding:"required"`
	QuantityDelta decimal.Decimal  `json:"quantity_delta" binding:"required"`
	UnitCost      *decimal.Decimal `json:"unit_cost"`
	Reason        string           `json:"reason" binding:"required"`
	OperatorID    *uuid.UUID       `json:"operator_id"`
}

// ToIntent converts the adjustment request into a movement intent
func (r AdjustStockRequest) ToIntent() inventory.MovementIntent {
	return inventory.MovementIntent{
		WarehouseID:   r.WarehouseID,
		ItemID:        r.ItemID,
		QuantityDelta: r.QuantityDelta,
		UnitCost:      r.UnitCost,
		Type:          inventory.MovementTypeManualAdjustment,
		ReferenceType: inventory.ReferenceTypeManual,
		Reason:        r.Reason,
		OperatorID:    r.OperatorID,
	}
}

// OpeningBalanceRequest seeds a line's initial quantity and cost
type OpeningBalanceRequest struct {
	WarehouseID uuid.UUID       `json:"warehouse_id" binding:"required"`
	ItemID      uuid.UUID       `json:"item_id" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitCost    decimal.Decimal `json:"unit_cost" binding:"required"`
	OperatorID  *uuid.UUID      `json:"operator_id"`
}

// ToIntent converts the opening balance request into a movement intent
func (r OpeningBalanceRequest) ToIntent() inventory.MovementIntent {
	cost := r.UnitCost
	return inventory.MovementIntent{
		WarehouseID:   r.WarehouseID,
		ItemID:        r.ItemID,
		QuantityDelta: r.Quantity,
		UnitCost:      &cost,
		Type:          inventory.MovementTypeOpeningBalance,
		ReferenceType: inventory.ReferenceTypeOpening,
		ReferenceID:   "OPENING",
		OperatorID:    r.OperatorID,
	}
}

// CreateWriteoffRequest creates a draft writeoff
type CreateWriteoffRequest struct {
	WriteoffNumber string                   `json:"writeoff_number"`
	WarehouseID    uuid.UUID                `json:"warehouse_id" binding:"required"`
	Reason         inventory.WriteoffReason `json:"reason" binding:"required"`
	Notes          string                   `json:"notes"`
	Lines          []WriteoffLineRequest    `json:"lines"`
	CreatedBy      uuid.UUID                `json:"-"`
}

// WriteoffLineRequest is one line of a writeoff request
type WriteoffLineRequest struct {
	ItemID   uuid.UUID       `json:"item_id" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
	Notes    string          `json:"notes"`
}

// CreateCountRequest starts an inventory count
type CreateCountRequest struct {
	CountNumber string      `json:"count_number"`
	WarehouseID uuid.UUID   `json:"warehouse_id" binding:"required"`
	Notes       string      `json:"notes"`
	ItemIDs     []uuid.UUID `json:"item_ids"`
	CreatedBy   uuid.UUID   `json:"-"`
}

// RecordCountRequest enters a counted quantity for a count line
type RecordCountRequest struct {
	CountedQuantity decimal.Decimal `json:"counted_quantity" binding:"required"`
}

// CreateItemRequest creates a catalog item
type CreateItemRequest struct {
	SKU             string             `json:"sku" binding:"required"`
	Name            string             `json:"name" binding:"required"`
	Type            inventory.ItemType `json:"type" binding:"required"`
	Unit            string             `json:"unit" binding:"required"`
	MinQuantity     decimal.Decimal    `json:"min_quantity"`
	MaxQuantity     decimal.Decimal    `json:"max_quantity"`
	ReorderQuantity decimal.Decimal    `json:"reorder_quantity"`
	CreatedBy       uuid.UUID          `json:"-"`
}

// UpdateItemRequest updates a catalog item
type UpdateItemRequest struct {
	Name            *string          `json:"name"`
	MinQuantity     *decimal.Decimal `json:"min_quantity"`
	MaxQuantity     *decimal.Decimal `json:"max_quantity"`
	ReorderQuantity *decimal.Decimal `json:"reorder_quantity"`
	IsActive        *bool            `json:"is_active"`
}
