package production

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductionOrderRequest creates a planned production order with
// explicit ingredients
type CreateProductionOrderRequest struct {
	OrderNumber     string              `json:"order_number"`
	WarehouseID     uuid.UUID           `json:"warehouse_id" binding:"required"`
	OutputItemID    uuid.UUID           `json:"output_item_id" binding:"required"`
	PlannedQuantity decimal.Decimal     `json:"planned_quantity" binding:"required"`
	Notes           string              `json:"notes"`
	Ingredients     []IngredientRequest `json:"ingredients"`
	CreatedBy       uuid.UUID           `json:"-"`
}

// IngredientRequest is one planned ingredient line
type IngredientRequest struct {
	ItemID   uuid.UUID       `json:"item_id" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

// CreateFromRecipeRequest plans a production order from a recipe
type CreateFromRecipeRequest struct {
	RecipeID    uuid.UUID       `json:"recipe_id" binding:"required"`
	OrderNumber string          `json:"order_number"`
	WarehouseID uuid.UUID       `json:"warehouse_id" binding:"required"`
	Batches     decimal.Decimal `json:"batches" binding:"required"`
	Notes       string          `json:"notes"`
	CreatedBy   uuid.UUID       `json:"-"`
}

// StartProductionRequest begins production, optionally overriding planned
// ingredient quantities with the amounts actually taken
type StartProductionRequest struct {
	Actuals    []ActualQuantityRequest `json:"actuals"`
	OperatorID *uuid.UUID              `json:"operator_id"`
}

// ActualQuantityRequest overrides one ingredient's planned quantity
type ActualQuantityRequest struct {
	IngredientID uuid.UUID       `json:"ingredient_id" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required"`
}

// CompleteProductionRequest finishes production with the actual yield
type CompleteProductionRequest struct {
	ActualQuantity decimal.Decimal `json:"actual_quantity" binding:"required"`
	OperatorID     *uuid.UUID      `json:"operator_id"`
}

// CancelProductionRequest abandons a production order
type CancelProductionRequest struct {
	OperatorID *uuid.UUID `json:"operator_id"`
}

// CreateRecipeRequest creates a recipe for a produced item
type CreateRecipeRequest struct {
	Name           string              `json:"name" binding:"required"`
	OutputItemID   uuid.UUID           `json:"output_item_id" binding:"required"`
	OutputQuantity decimal.Decimal     `json:"output_quantity" binding:"required"`
	Lines          []RecipeLineRequest `json:"lines"`
}

// RecipeLineRequest is one ingredient line of a recipe request
type RecipeLineRequest struct {
	ItemID      uuid.UUID       `json:"item_id" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	WasteFactor decimal.Decimal `json:"waste_factor"`
}
