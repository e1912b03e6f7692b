package production

import (
	"strings"

	"github.com/google/uuid"
	"github.com/horyco/backend/internal/domain/inventory"
	"github.com/horyco/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Recipe describes how an output item is produced from ingredients. Recipes
// are owned by catalog management; this engine reads them to plan production
// orders and to derive recipe costs from current average ingredient costs.
type Recipe struct {
	shared.BaseAggregateRoot
	Name          string          `gorm:"type:varchar(255);not null"`
	OutputItemID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	OutputQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null"` // yield of one batch
	Lines         []RecipeLine    `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	IsActive      bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Recipe) TableName() string {
	return "recipes"
}

// RecipeLine is one ingredient of a recipe. WasteFactor scales the nominal
// quantity for trim and preparation loss; a factor of 1.1 means ten percent
// extra is consumed per batch.
type RecipeLine struct {
	shared.BaseEntity
	RecipeID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID      uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	WasteFactor decimal.Decimal `gorm:"type:decimal(8,4);not null;default:1"`
}

// TableName returns the table name for GORM
func (RecipeLine) TableName() string {
	return "recipe_lines"
}

// EffectiveQuantity returns the quantity actually consumed per batch
func (l *RecipeLine) EffectiveQuantity() decimal.Decimal {
	return l.Quantity.Mul(l.WasteFactor)
}

// NewRecipe creates a new recipe
func NewRecipe(name string, outputItemID uuid.UUID, outputQuantity decimal.Decimal) (*Recipe, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Recipe name cannot be empty")
	}
	if outputItemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Output item ID cannot be empty")
	}
	if outputQuantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Output quantity must be positive")
	}

	return &Recipe{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		OutputItemID:      outputItemID,
		OutputQuantity:    outputQuantity,
		Lines:             make([]RecipeLine, 0),
		IsActive:          true,
	}, nil
}

// AddLine adds an ingredient to the recipe
func (r *Recipe) AddLine(itemID uuid.UUID, quantity, wasteFactor decimal.Decimal) error {
	if itemID == uuid.Nil {
		return shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if itemID == r.OutputItemID {
		return shared.NewDomainError("INVALID_ITEM", "Output item cannot be its own ingredient")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Ingredient quantity must be positive")
	}
	if wasteFactor.LessThan(decimal.NewFromInt(1)) {
		return shared.NewDomainError("INVALID_WASTE_FACTOR", "Waste factor cannot be below 1")
	}
	for _, line := range r.Lines {
		if line.ItemID == itemID {
			return shared.NewDomainError("DUPLICATE_LINE", "Ingredient already present on this recipe")
		}
	}

	r.Lines = append(r.Lines, RecipeLine{
		BaseEntity:  shared.NewBaseEntity(),
		RecipeID:    r.ID,
		ItemID:      itemID,
		Quantity:    quantity,
		WasteFactor: wasteFactor,
	})
	r.IncrementVersion()

	return nil
}

// RecipeLineCost is one line of a recipe cost breakdown
type RecipeLineCost struct {
	ItemID            uuid.UUID       `json:"item_id"`
	EffectiveQuantity decimal.Decimal `json:"effective_quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	LineCost          decimal.Decimal `json:"line_cost"`
}

// RecipeCost is the derived cost of one recipe batch at current ingredient
// costs. It is recomputed on demand, never stored authoritatively.
type RecipeCost struct {
	RecipeID  uuid.UUID        `json:"recipe_id"`
	Lines     []RecipeLineCost `json:"lines"`
	TotalCost decimal.Decimal  `json:"total_cost"`
	UnitCost  decimal.Decimal  `json:"unit_cost"` // per output unit
}

// CalculateCost derives the batch cost of the recipe from per-ingredient unit
// costs, each line costed as quantity times waste factor times unit cost.
// Ingredients without a known cost are costed at zero.
func (r *Recipe) CalculateCost(unitCosts map[uuid.UUID]decimal.Decimal) RecipeCost {
	cost := RecipeCost{
		RecipeID:  r.ID,
		Lines:     make([]RecipeLineCost, 0, len(r.Lines)),
		TotalCost: decimal.Zero,
	}
	for _, line := range r.Lines {
		unitCost := unitCosts[line.ItemID]
		lineCost := line.EffectiveQuantity().Mul(unitCost).Round(inventory.CostScale)
		cost.Lines = append(cost.Lines, RecipeLineCost{
			ItemID:            line.ItemID,
			EffectiveQuantity: line.EffectiveQuantity(),
			UnitCost:          unitCost,
			LineCost:          lineCost,
		})
		cost.TotalCost = cost.TotalCost.Add(lineCost)
	}
	if r.OutputQuantity.IsPositive() {
		cost.UnitCost = cost.TotalCost.Div(r.OutputQuantity).Round(inventory.CostScale)
	}
	return cost
}

// PlanOrder builds a production order for the given number of batches from
// this recipe, scaling every ingredient line.
func (r *Recipe) PlanOrder(orderNumber string, warehouseID uuid.UUID, batches decimal.Decimal, createdBy uuid.UUID) (*ProductionOrder, error) {
	if !r.IsActive {
		return nil, shared.NewDomainError("INVALID_INPUT", "Recipe is inactive")
	}
	if batches.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Batch count must be positive")
	}

	order, err := NewProductionOrder(orderNumber, warehouseID, r.OutputItemID, r.OutputQuantity.Mul(batches), createdBy)
	if err != nil {
		return nil, err
	}
	recipeID := r.ID
	order.RecipeID = &recipeID

	for _, line := range r.Lines {
		if err := order.AddIngredient(line.ItemID, line.EffectiveQuantity().Mul(batches)); err != nil {
			return nil, err
		}
	}
	return order, nil
}
