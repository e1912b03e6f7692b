package inventory

import (
	"strings"

	"github.com/horyco/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ItemType classifies what an inventory item is used for
type ItemType string

const (
	// ItemTypeIngredient is a raw material consumed by recipes
	ItemTypeIngredient ItemType = "INGREDIENT"
	// ItemTypeSemiFinished is an intermediate good produced and consumed in house
	ItemTypeSemiFinished ItemType = "SEMI_FINISHED"
	// ItemTypeFinished is a sellable good
	ItemTypeFinished ItemType = "FINISHED"
	// ItemTypeConsumable is packaging and other non-recipe supplies
	ItemTypeConsumable ItemType = "CONSUMABLE"
)

// IsValid returns true if the item type is valid
func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeIngredient, ItemTypeSemiFinished, ItemTypeFinished, ItemTypeConsumable:
		return true
	}
	return false
}

// Item is the catalog record for something tracked in stock.
// Quantity and cost live on StockLine; Item carries identity, unit and
// replenishment thresholds.
type Item struct {
	shared.AuditedAggregateRoot
	SKU             string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name            string          `gorm:"type:varchar(255);not null"`
	Type            ItemType        `gorm:"type:varchar(20);not null;index"`
	Unit            string          `gorm:"type:varchar(20);not null"` // kg, l, pcs
	MinQuantity     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MaxQuantity     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // zero means no cap
	ReorderQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	IsActive        bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "inventory_items"
}

// NewItem creates a new inventory item
func NewItem(sku, name string, itemType ItemType, unit string) (*Item, error) {
	sku = strings.TrimSpace(sku)
	name = strings.TrimSpace(name)
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Item name cannot be empty")
	}
	if !itemType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ITEM_TYPE", "Unknown item type")
	}
	if strings.TrimSpace(unit) == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit cannot be empty")
	}

	return &Item{
		AuditedAggregateRoot: shared.AuditedAggregateRoot{BaseAggregateRoot: shared.NewBaseAggregateRoot()},
		SKU:                  sku,
		Name:                 name,
		Type:                 itemType,
		Unit:                 unit,
		MinQuantity:          decimal.Zero,
		MaxQuantity:          decimal.Zero,
		ReorderQuantity:      decimal.Zero,
		IsActive:             true,
	}, nil
}

// SetThresholds sets the replenishment thresholds
func (i *Item) SetThresholds(min, max, reorder decimal.Decimal) error {
	if min.IsNegative() || max.IsNegative() || reorder.IsNegative() {
		return shared.NewDomainError("INVALID_THRESHOLD", "Thresholds cannot be negative")
	}
	if !max.IsZero() && max.LessThan(min) {
		return shared.NewDomainError("INVALID_THRESHOLD", "Max quantity cannot be below min quantity")
	}

	i.MinQuantity = min
	i.MaxQuantity = max
	i.ReorderQuantity = reorder
	i.IncrementVersion()

	return nil
}

// Rename updates the display name
func (i *Item) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Item name cannot be empty")
	}
	i.Name = name
	i.IncrementVersion()
	return nil
}

// Deactivate marks the item inactive. Inactive items keep their stock lines and
// history but reject new documents.
func (i *Item) Deactivate() {
	i.IsActive = false
	i.IncrementVersion()
}

// Activate marks the item active again
func (i *Item) Activate() {
	i.IsActive = true
	i.IncrementVersion()
}

// IsBelowMinimum returns true if the given on-hand quantity is under the
// item's minimum threshold
func (i *Item) IsBelowMinimum(onHand decimal.Decimal) bool {
	return i.MinQuantity.GreaterThan(decimal.Zero) && onHand.LessThan(i.MinQuantity)
}
