package production

import (
	"testing"

	"github.com/google/uuid"
	"github.com/horyco/backend/internal/domain/inventory"
	"github.com/horyco/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stockFixture holds real stock lines so the tests drive production through
// the same ledger arithmetic the services use.
type stockFixture struct {
	warehouseID uuid.UUID
	lines       map[uuid.UUID]*inventory.StockLine
	policy      inventory.NegativeStockPolicy
}

func newStockFixture(t *testing.T) *stockFixture {
	t.Helper()
	return &stockFixture{
		warehouseID: uuid.New(),
		lines:       make(map[uuid.UUID]*inventory.StockLine),
		policy:      inventory.DefaultNegativeStockPolicy(),
	}
}

func (f *stockFixture) stock(t *testing.T, itemID uuid.UUID, qty, cost int64) {
	t.Helper()
	line, err := inventory.NewStockLine(f.warehouseID, itemID)
	require.NoError(t, err)
	c := decimal.NewFromInt(cost)
	_, err = line.Apply(inventory.MovementIntent{
		WarehouseID:   f.warehouseID,
		ItemID:        itemID,
		QuantityDelta: decimal.NewFromInt(qty),
		UnitCost:      &c,
		Type:          inventory.MovementTypeOpeningBalance,
		ReferenceType: inventory.ReferenceTypeOpening,
		ReferenceID:   "OPEN",
	}, f.policy)
	require.NoError(t, err)
	f.lines[itemID] = line
}

func (f *stockFixture) apply(t *testing.T, intents []inventory.MovementIntent) []*inventory.Movement {
	t.Helper()
	movements := make([]*inventory.Movement, 0, len(intents))
	for _, intent := range intents {
		line, ok := f.lines[intent.ItemID]
		require.True(t, ok, "no stock line for item")
		m, err := line.Apply(intent, f.policy)
		require.NoError(t, err)
		movements = append(movements, m)
	}
	return movements
}

func newPlannedOrder(t *testing.T, f *stockFixture) (*ProductionOrder, uuid.UUID, uuid.UUID) {
	t.Helper()
	flour := uuid.New()
	butter := uuid.New()
	f.stock(t, flour, 20, 2)  // 20 kg at 2
	f.stock(t, butter, 10, 8) // 10 kg at 8

	output := uuid.New()
	line, err := inventory.NewStockLine(f.warehouseID, output)
	require.NoError(t, err)
	f.lines[output] = line

	o, err := NewProductionOrder("PR-2026-001", f.warehouseID, output, decimal.NewFromInt(10), uuid.New())
	require.NoError(t, err)
	require.NoError(t, o.AddIngredient(flour, decimal.NewFromInt(5)))
	require.NoError(t, o.AddIngredient(butter, decimal.NewFromInt(2)))
	return o, flour, butter
}

func TestProductionOrder_StartConsumesIngredients(t *testing.T) {
	f := newStockFixture(t)
	o, flour, butter := newPlannedOrder(t, f)

	intents, err := o.Start(nil, nil)
	require.NoError(t, err)
	require.Len(t, intents, 2)
	assert.Equal(t, ProductionOrderStatusInProgress, o.Status)

	movements := f.apply(t, intents)
	o.RecordConsumption(movements)

	assert.True(t, f.lines[flour].QuantityOnHand.Equal(decimal.NewFromInt(15)))
	assert.True(t, f.lines[butter].QuantityOnHand.Equal(decimal.NewFromInt(8)))
	// 5 kg flour at 2 plus 2 kg butter at 8
	assert.True(t, o.TotalConsumedCost().Equal(decimal.NewFromInt(26)))
}

func TestProductionOrder_StartWithActualOverrides(t *testing.T) {
	f := newStockFixture(t)
	o, flour, _ := newPlannedOrder(t, f)

	var flourIngredient *ProductionIngredient
	for i := range o.Ingredients {
		if o.Ingredients[i].ItemID == flour {
			flourIngredient = &o.Ingredients[i]
		}
	}
	require.NotNil(t, flourIngredient)

	intents, err := o.Start([]ActualIngredientQuantity{
		{IngredientID: flourIngredient.ID, Quantity: decimal.NewFromInt(6)},
	}, nil)
	require.NoError(t, err)

	f.apply(t, intents)
	assert.True(t, f.lines[flour].QuantityOnHand.Equal(decimal.NewFromInt(14)),
		"actual quantity overrides the planned one")
	assert.True(t, flourIngredient.ConsumedQuantity.Equal(decimal.NewFromInt(6)))
}

func TestProductionOrder_CompleteYieldsAtDerivedCost(t *testing.T) {
	f := newStockFixture(t)
	o, _, _ := newPlannedOrder(t, f)

	intents, err := o.Start(nil, nil)
	require.NoError(t, err)
	o.RecordConsumption(f.apply(t, intents))

	yield, err := o.Complete(decimal.NewFromInt(8), nil)
	require.NoError(t, err)
	assert.Equal(t, ProductionOrderStatusCompleted, o.Status)

	// 26 of consumed cost over a yield of 8
	require.NotNil(t, yield.UnitCost)
	assert.True(t, yield.UnitCost.Equal(decimal.NewFromFloat(3.25)))
	assert.True(t, yield.QuantityDelta.Equal(decimal.NewFromInt(8)))
	assert.Equal(t, inventory.MovementTypeProductionYield, yield.Type)
	assert.True(t, o.YieldUnitCost.Equal(decimal.NewFromFloat(3.25)))

	movements := f.apply(t, []inventory.MovementIntent{yield})
	assert.True(t, movements[0].NewQuantity.Equal(decimal.NewFromInt(8)))
	assert.True(t, f.lines[o.OutputItemID].AverageCost.Equal(decimal.NewFromFloat(3.25)))
}

func TestProductionOrder_CancelInProgressRestoresStockExactly(t *testing.T) {
	f := newStockFixture(t)
	o, flour, butter := newPlannedOrder(t, f)

	flourBefore := f.lines[flour].QuantityOnHand
	butterBefore := f.lines[butter].QuantityOnHand
	flourCostBefore := f.lines[flour].AverageCost

	intents, err := o.Start(nil, nil)
	require.NoError(t, err)
	o.RecordConsumption(f.apply(t, intents))

	compensating, err := o.Cancel(nil)
	require.NoError(t, err)
	require.Len(t, compensating, 2)
	assert.Equal(t, ProductionOrderStatusCancelled, o.Status)

	f.apply(t, compensating)

	assert.True(t, f.lines[flour].QuantityOnHand.Equal(flourBefore),
		"cancellation must restore the exact pre-start quantity")
	assert.True(t, f.lines[butter].QuantityOnHand.Equal(butterBefore))
	assert.True(t, f.lines[flour].AverageCost.Equal(flourCostBefore),
		"reversal at the consumed cost must not move the average")
}

func TestProductionOrder_CancelPlannedEmitsNothing(t *testing.T) {
	f := newStockFixture(t)
	o, _, _ := newPlannedOrder(t, f)

	intents, err := o.Cancel(nil)
	require.NoError(t, err)
	assert.Empty(t, intents)
	assert.Equal(t, ProductionOrderStatusCancelled, o.Status)
}

func TestProductionOrder_Transitions(t *testing.T) {
	f := newStockFixture(t)
	o, _, _ := newPlannedOrder(t, f)

	t.Run("cannot complete before start", func(t *testing.T) {
		_, err := o.Complete(decimal.NewFromInt(5), nil)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_TRANSITION", domainErr.Code)
	})

	intents, err := o.Start(nil, nil)
	require.NoError(t, err)
	o.RecordConsumption(f.apply(t, intents))

	t.Run("in progress locks ingredient edits", func(t *testing.T) {
		require.Error(t, o.AddIngredient(uuid.New(), decimal.NewFromInt(1)))
	})

	_, err = o.Complete(decimal.NewFromInt(8), nil)
	require.NoError(t, err)

	t.Run("completed is terminal", func(t *testing.T) {
		_, err := o.Cancel(nil)
		require.Error(t, err)
	})
}

func TestRecipe_CalculateCost(t *testing.T) {
	output := uuid.New()
	flour := uuid.New()
	butter := uuid.New()

	r, err := NewRecipe("Shortcrust base", output, decimal.NewFromInt(10))
	require.NoError(t, err)
	require.NoError(t, r.AddLine(flour, decimal.NewFromInt(5), decimal.NewFromFloat(1.1)))
	require.NoError(t, r.AddLine(butter, decimal.NewFromInt(2), decimal.NewFromInt(1)))

	cost := r.CalculateCost(map[uuid.UUID]decimal.Decimal{
		flour:  decimal.NewFromInt(2),
		butter: decimal.NewFromInt(8),
	})

	// flour 5 * 1.1 * 2 = 11, butter 2 * 1 * 8 = 16
	assert.True(t, cost.TotalCost.Equal(decimal.NewFromInt(27)))
	assert.True(t, cost.UnitCost.Equal(decimal.NewFromFloat(2.7)))
	require.Len(t, cost.Lines, 2)
	assert.True(t, cost.Lines[0].EffectiveQuantity.Equal(decimal.NewFromFloat(5.5)))
}

func TestRecipe_PlanOrder(t *testing.T) {
	output := uuid.New()
	flour := uuid.New()

	r, err := NewRecipe("Shortcrust base", output, decimal.NewFromInt(10))
	require.NoError(t, err)
	require.NoError(t, r.AddLine(flour, decimal.NewFromInt(5), decimal.NewFromFloat(1.1)))

	o, err := r.PlanOrder("PR-2026-010", uuid.New(), decimal.NewFromInt(2), uuid.New())
	require.NoError(t, err)
	assert.True(t, o.PlannedQuantity.Equal(decimal.NewFromInt(20)))
	require.Len(t, o.Ingredients, 1)
	assert.True(t, o.Ingredients[0].PlannedQuantity.Equal(decimal.NewFromInt(11)))
	assert.Equal(t, r.ID, *o.RecipeID)

	t.Run("inactive recipe cannot plan", func(t *testing.T) {
		r.IsActive = false
		_, err := r.PlanOrder("PR-2026-011", uuid.New(), decimal.NewFromInt(1), uuid.New())
		require.Error(t, err)
	})
}
