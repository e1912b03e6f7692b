package production

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/horyco/backend/internal/domain/inventory"
	"github.com/horyco/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductionOrderStatus represents the status of a production order
type ProductionOrderStatus string

const (
	ProductionOrderStatusPlanned    ProductionOrderStatus = "PLANNED"
	ProductionOrderStatusInProgress ProductionOrderStatus = "IN_PROGRESS"
	ProductionOrderStatusCompleted  ProductionOrderStatus = "COMPLETED"
	ProductionOrderStatusCancelled  ProductionOrderStatus = "CANCELLED"
)

var productionOrderWorkflow = shared.NewWorkflow("ProductionOrder", map[ProductionOrderStatus][]ProductionOrderStatus{
	ProductionOrderStatusPlanned:    {ProductionOrderStatusInProgress, ProductionOrderStatusCancelled},
	ProductionOrderStatusInProgress: {ProductionOrderStatusCompleted, ProductionOrderStatusCancelled},
})

// ProductionOrder turns ingredients into an output item. Starting the order
// consumes the ingredients from stock; completing it yields the output valued
// at the total consumed cost divided by the actual yield. Cancelling an order
// in progress puts every consumed ingredient back exactly.
type ProductionOrder struct {
	shared.AuditedAggregateRoot
	OrderNumber     string                 `gorm:"type:varchar(50);not null;uniqueIndex"`
	WarehouseID     uuid.UUID              `gorm:"type:uuid;not null;index"`
	OutputItemID    uuid.UUID              `gorm:"type:uuid;not null;index"`
	RecipeID        *uuid.UUID             `gorm:"type:uuid"` // set when planned from a recipe
	Status          ProductionOrderStatus  `gorm:"type:varchar(20);not null;index"`
	PlannedQuantity decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	ActualQuantity  *decimal.Decimal       `gorm:"type:decimal(18,4)"` // set at completion
	YieldUnitCost   decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	Notes           string                 `gorm:"type:text"`
	Ingredients     []ProductionIngredient `gorm:"foreignKey:ProductionOrderID;constraint:OnDelete:CASCADE"`
	StartedAt       *time.Time
	CompletedAt     *time.Time
	CancelledAt     *time.Time
}

// TableName returns the table name for GORM
func (ProductionOrder) TableName() string {
	return "production_orders"
}

// ProductionIngredient is one ingredient line of a production order
type ProductionIngredient struct {
	shared.BaseEntity
	ProductionOrderID uuid.UUID        `gorm:"type:uuid;not null;index"`
	ItemID            uuid.UUID        `gorm:"type:uuid;not null"`
	PlannedQuantity   decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	ActualQuantity    *decimal.Decimal `gorm:"type:decimal(18,4)"` // overrides planned when supplied at start
	ConsumedQuantity  decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	ConsumedUnitCost  decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"` // average cost at consumption
}

// TableName returns the table name for GORM
func (ProductionIngredient) TableName() string {
	return "production_ingredients"
}

// ConsumptionQuantity returns the quantity the ingredient will consume at
// start: the actual quantity when one was entered, the planned one otherwise
func (i *ProductionIngredient) ConsumptionQuantity() decimal.Decimal {
	if i.ActualQuantity != nil {
		return *i.ActualQuantity
	}
	return i.PlannedQuantity
}

// ConsumedCost returns the value of what this ingredient consumed
func (i *ProductionIngredient) ConsumedCost() decimal.Decimal {
	return i.ConsumedQuantity.Mul(i.ConsumedUnitCost)
}

// NewProductionOrder creates a new planned production order
func NewProductionOrder(orderNumber string, warehouseID, outputItemID uuid.UUID, plannedQuantity decimal.Decimal, createdBy uuid.UUID) (*ProductionOrder, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Order number cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if outputItemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Output item ID cannot be empty")
	}
	if plannedQuantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Planned quantity must be positive")
	}

	return &ProductionOrder{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(createdBy),
		OrderNumber:          orderNumber,
		WarehouseID:          warehouseID,
		OutputItemID:         outputItemID,
		Status:               ProductionOrderStatusPlanned,
		PlannedQuantity:      plannedQuantity,
		YieldUnitCost:        decimal.Zero,
		Ingredients:          make([]ProductionIngredient, 0),
	}, nil
}

// IsEditable returns true while ingredient edits are still allowed
func (o *ProductionOrder) IsEditable() bool {
	return o.Status == ProductionOrderStatusPlanned
}

// AddIngredient adds an ingredient to the planned order
func (o *ProductionOrder) AddIngredient(itemID uuid.UUID, plannedQuantity decimal.Decimal) error {
	if !o.IsEditable() {
		return shared.NewDomainError("INVALID_TRANSITION", "Only planned orders can be edited")
	}
	if itemID == uuid.Nil {
		return shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if itemID == o.OutputItemID {
		return shared.NewDomainError("INVALID_ITEM", "Output item cannot be its own ingredient")
	}
	if plannedQuantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Planned quantity must be positive")
	}
	for _, ing := range o.Ingredients {
		if ing.ItemID == itemID {
			return shared.NewDomainError("DUPLICATE_LINE", "Ingredient already present on this order")
		}
	}

	o.Ingredients = append(o.Ingredients, ProductionIngredient{
		BaseEntity:        shared.NewBaseEntity(),
		ProductionOrderID: o.ID,
		ItemID:            itemID,
		PlannedQuantity:   plannedQuantity,
	})
	o.IncrementVersion()

	return nil
}

// RemoveIngredient removes an ingredient from the planned order
func (o *ProductionOrder) RemoveIngredient(ingredientID uuid.UUID) error {
	if !o.IsEditable() {
		return shared.NewDomainError("INVALID_TRANSITION", "Only planned orders can be edited")
	}

	for i := range o.Ingredients {
		if o.Ingredients[i].ID == ingredientID {
			o.Ingredients = append(o.Ingredients[:i], o.Ingredients[i+1:]...)
			o.IncrementVersion()
			return nil
		}
	}
	return shared.NewDomainError("LINE_NOT_FOUND", "Ingredient not found")
}

// ActualIngredientQuantity records the quantity actually used for an
// ingredient, overriding the planned quantity at start
type ActualIngredientQuantity struct {
	IngredientID uuid.UUID
	Quantity     decimal.Decimal
}

// Start begins production and returns the consumption intents to post, one
// negative movement per ingredient. Actual quantities override planned ones
// where supplied. The caller applies the intents and then records the posted
// movements with RecordConsumption so the consumed costs are kept for
// completion and cancellation.
func (o *ProductionOrder) Start(actuals []ActualIngredientQuantity, operatorID *uuid.UUID) ([]inventory.MovementIntent, error) {
	if err := productionOrderWorkflow.Transition(o.Status, ProductionOrderStatusInProgress); err != nil {
		return nil, err
	}
	if len(o.Ingredients) == 0 {
		return nil, shared.NewDomainError("EMPTY_DOCUMENT", "Cannot start an order without ingredients")
	}

	byID := make(map[uuid.UUID]*ProductionIngredient, len(o.Ingredients))
	for i := range o.Ingredients {
		byID[o.Ingredients[i].ID] = &o.Ingredients[i]
	}
	for _, a := range actuals {
		ing, ok := byID[a.IngredientID]
		if !ok {
			return nil, shared.NewDomainError("LINE_NOT_FOUND", "Ingredient not found")
		}
		if a.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Actual quantity must be positive")
		}
		q := a.Quantity
		ing.ActualQuantity = &q
	}

	intents := make([]inventory.MovementIntent, 0, len(o.Ingredients))
	for i := range o.Ingredients {
		ing := &o.Ingredients[i]
		qty := ing.ConsumptionQuantity()
		ing.ConsumedQuantity = qty

		intents = append(intents, inventory.MovementIntent{
			WarehouseID:   o.WarehouseID,
			ItemID:        ing.ItemID,
			QuantityDelta: qty.Neg(),
			Type:          inventory.MovementTypeProductionConsume,
			ReferenceType: inventory.ReferenceTypeProductionOrder,
			ReferenceID:   o.OrderNumber,
			ReferenceLine: ing.ID.String(),
			OperatorID:    operatorID,
		})
	}

	now := time.Now()
	o.Status = ProductionOrderStatusInProgress
	o.StartedAt = &now
	o.IncrementVersion()

	return intents, nil
}

// RecordConsumption copies the unit costs of the posted consumption movements
// back onto the ingredient lines. Completion and cancellation both depend on
// these costs.
func (o *ProductionOrder) RecordConsumption(movements []*inventory.Movement) {
	byLine := make(map[string]*inventory.Movement, len(movements))
	for _, m := range movements {
		byLine[m.ReferenceLine] = m
	}

	for i := range o.Ingredients {
		if m, ok := byLine[o.Ingredients[i].ID.String()]; ok {
			o.Ingredients[i].ConsumedUnitCost = m.UnitCostAtMovement
		}
	}
}

// TotalConsumedCost returns the value of everything consumed at start
func (o *ProductionOrder) TotalConsumedCost() decimal.Decimal {
	total := decimal.Zero
	for _, ing := range o.Ingredients {
		total = total.Add(ing.ConsumedCost())
	}
	return total
}

// Complete finishes production and returns the yield intent: one positive
// movement for the output item at the actual quantity, valued at the total
// consumed ingredient cost divided by the yield.
func (o *ProductionOrder) Complete(actualQuantity decimal.Decimal, operatorID *uuid.UUID) (inventory.MovementIntent, error) {
	if err := productionOrderWorkflow.Transition(o.Status, ProductionOrderStatusCompleted); err != nil {
		return inventory.MovementIntent{}, err
	}
	if actualQuantity.LessThanOrEqual(decimal.Zero) {
		return inventory.MovementIntent{}, shared.NewDomainError("INVALID_QUANTITY", "Actual yield must be positive")
	}

	unitCost := o.TotalConsumedCost().Div(actualQuantity).Round(inventory.CostScale)

	now := time.Now()
	o.Status = ProductionOrderStatusCompleted
	o.ActualQuantity = &actualQuantity
	o.YieldUnitCost = unitCost
	o.CompletedAt = &now
	o.IncrementVersion()
	o.AddDomainEvent(NewProductionCompletedEvent(o))

	return inventory.MovementIntent{
		WarehouseID:   o.WarehouseID,
		ItemID:        o.OutputItemID,
		QuantityDelta: actualQuantity,
		UnitCost:      &unitCost,
		Type:          inventory.MovementTypeProductionYield,
		ReferenceType: inventory.ReferenceTypeProductionOrder,
		ReferenceID:   o.OrderNumber,
		OperatorID:    operatorID,
	}, nil
}

// Cancel abandons the order. Cancelling an order in progress returns the
// compensating intents: positive movements with the same absolute quantities
// and the consumed unit costs, restoring every ingredient line to its
// pre-start state.
func (o *ProductionOrder) Cancel(operatorID *uuid.UUID) ([]inventory.MovementIntent, error) {
	if err := productionOrderWorkflow.Transition(o.Status, ProductionOrderStatusCancelled); err != nil {
		return nil, err
	}

	var intents []inventory.MovementIntent
	if o.Status == ProductionOrderStatusInProgress {
		intents = make([]inventory.MovementIntent, 0, len(o.Ingredients))
		for i := range o.Ingredients {
			ing := &o.Ingredients[i]
			if ing.ConsumedQuantity.IsZero() {
				continue
			}
			cost := ing.ConsumedUnitCost
			intents = append(intents, inventory.MovementIntent{
				WarehouseID:   o.WarehouseID,
				ItemID:        ing.ItemID,
				QuantityDelta: ing.ConsumedQuantity,
				UnitCost:      &cost,
				Type:          inventory.MovementTypeProductionConsume,
				ReferenceType: inventory.ReferenceTypeProductionOrder,
				ReferenceID:   o.OrderNumber,
				ReferenceLine: ing.ID.String(),
				Reason:        "production cancelled, consumption reversed",
				OperatorID:    operatorID,
			})
		}
	}

	now := time.Now()
	o.Status = ProductionOrderStatusCancelled
	o.CancelledAt = &now
	o.IncrementVersion()

	return intents, nil
}
