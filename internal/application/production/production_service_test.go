package production

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	invapp "github.com/horyco/backend/internal/application/inventory"
	"github.com/horyco/backend/internal/domain/inventory"
	"github.com/horyco/backend/internal/domain/production"
	"github.com/horyco/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStockLineRepo struct {
	mu    sync.Mutex
	lines map[inventory.LineKey]inventory.StockLine
}

func (r *memStockLineRepo) FindByKey(_ context.Context, key inventory.LineKey) (*inventory.StockLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	line, ok := r.lines[key]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := line
	return &copied, nil
}

func (r *memStockLineRepo) FindByWarehouse(_ context.Context, _ uuid.UUID, _ shared.Filter) (*shared.Paginated[*inventory.StockLine], error) {
	return shared.NewPaginated([]*inventory.StockLine{}, 0, 1, 100), nil
}

func (r *memStockLineRepo) FindByItem(_ context.Context, _ uuid.UUID) ([]*inventory.StockLine, error) {
	return nil, nil
}

func (r *memStockLineRepo) Save(_ context.Context, line *inventory.StockLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines[line.Key()] = *line
	return nil
}

func (r *memStockLineRepo) SaveWithLock(_ context.Context, line *inventory.StockLine, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.lines[line.Key()]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.GetVersion() != expectedVersion {
		return shared.ErrConcurrencyConflict
	}
	r.lines[line.Key()] = *line
	return nil
}

type memMovementRepo struct {
	mu        sync.Mutex
	movements []inventory.Movement
}

func (r *memMovementRepo) Append(_ context.Context, m *inventory.Movement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *memMovementRepo) AppendBatch(_ context.Context, movements []*inventory.Movement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range movements {
		r.movements = append(r.movements, *m)
	}
	return nil
}

func (r *memMovementRepo) History(_ context.Context, _ inventory.MovementHistoryFilter) (*shared.Paginated[*inventory.Movement], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]*inventory.Movement, 0, len(r.movements))
	for i := range r.movements {
		copied := r.movements[i]
		items = append(items, &copied)
	}
	return shared.NewPaginated(items, int64(len(items)), 1, 100), nil
}

func (r *memMovementRepo) FindByReference(_ context.Context, refType inventory.ReferenceType, refID string) ([]*inventory.Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]*inventory.Movement, 0)
	for i := range r.movements {
		if r.movements[i].ReferenceType == refType && r.movements[i].ReferenceID == refID {
			copied := r.movements[i]
			items = append(items, &copied)
		}
	}
	return items, nil
}

func (r *memMovementRepo) SumDeltas(_ context.Context, key inventory.LineKey) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for i := range r.movements {
		if r.movements[i].Key() == key {
			sum = sum.Add(r.movements[i].QuantityDelta)
		}
	}
	return sum, nil
}

type memItemRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]inventory.Item
}

func (r *memItemRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := item
	return &copied, nil
}

func (r *memItemRepo) FindBySKU(_ context.Context, _ string) (*inventory.Item, error) {
	return nil, shared.ErrNotFound
}

func (r *memItemRepo) FindByIDs(_ context.Context, _ []uuid.UUID) ([]*inventory.Item, error) {
	return nil, nil
}

func (r *memItemRepo) List(_ context.Context, _ shared.Filter) (*shared.Paginated[*inventory.Item], error) {
	return shared.NewPaginated([]*inventory.Item{}, 0, 1, 100), nil
}

func (r *memItemRepo) Save(_ context.Context, item *inventory.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = *item
	return nil
}

func (r *memItemRepo) Update(_ context.Context, item *inventory.Item) error {
	return r.Save(context.Background(), item)
}

func (r *memItemRepo) ExistsBySKU(_ context.Context, _ string) (bool, error) {
	return false, nil
}

type memProductionOrderRepo struct {
	mu   sync.Mutex
	docs map[uuid.UUID]*production.ProductionOrder
	seq  int
}

func (r *memProductionOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*production.ProductionOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.docs[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return o, nil
}

func (r *memProductionOrderRepo) FindByNumber(_ context.Context, number string) (*production.ProductionOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.docs {
		if o.OrderNumber == number {
			return o, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memProductionOrderRepo) List(_ context.Context, _ shared.Filter) (*shared.Paginated[*production.ProductionOrder], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]*production.ProductionOrder, 0, len(r.docs))
	for _, o := range r.docs {
		items = append(items, o)
	}
	return shared.NewPaginated(items, int64(len(items)), 1, 100), nil
}

func (r *memProductionOrderRepo) Save(_ context.Context, o *production.ProductionOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[o.ID] = o
	return nil
}

func (r *memProductionOrderRepo) Update(_ context.Context, o *production.ProductionOrder) error {
	return r.Save(context.Background(), o)
}

func (r *memProductionOrderRepo) NextNumber(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return fmt.Sprintf("PRD-%04d", r.seq), nil
}

type memRecipeRepo struct {
	mu      sync.Mutex
	recipes map[uuid.UUID]*production.Recipe
}

func (r *memRecipeRepo) FindByID(_ context.Context, id uuid.UUID) (*production.Recipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	recipe, ok := r.recipes[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return recipe, nil
}

func (r *memRecipeRepo) FindByOutputItem(_ context.Context, outputItemID uuid.UUID) ([]*production.Recipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]*production.Recipe, 0)
	for _, recipe := range r.recipes {
		if recipe.OutputItemID == outputItemID {
			items = append(items, recipe)
		}
	}
	return items, nil
}

func (r *memRecipeRepo) List(_ context.Context, _ shared.Filter) (*shared.Paginated[*production.Recipe], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]*production.Recipe, 0, len(r.recipes))
	for _, recipe := range r.recipes {
		items = append(items, recipe)
	}
	return shared.NewPaginated(items, int64(len(items)), 1, 100), nil
}

func (r *memRecipeRepo) Save(_ context.Context, recipe *production.Recipe) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recipes[recipe.ID] = recipe
	return nil
}

type fixture struct {
	stockLines *memStockLineRepo
	movements  *memMovementRepo
	items      *memItemRepo
	orders     *memProductionOrderRepo
	recipes    *memRecipeRepo
	ledger     *invapp.LedgerService
	service    *ProductionService
}

func newFixture() *fixture {
	f := &fixture{
		stockLines: &memStockLineRepo{lines: make(map[inventory.LineKey]inventory.StockLine)},
		movements:  &memMovementRepo{},
		items:      &memItemRepo{items: make(map[uuid.UUID]inventory.Item)},
		orders:     &memProductionOrderRepo{docs: make(map[uuid.UUID]*production.ProductionOrder)},
		recipes:    &memRecipeRepo{recipes: make(map[uuid.UUID]*production.Recipe)},
	}
	scope := NewNoOpTransactionScope(f.stockLines, f.movements, f.items, f.orders, f.recipes)
	// The ledger gets its own scope over the same repositories.
	ledgerScope := invapp.NewNoOpTransactionScope(f.stockLines, f.movements, f.items, nil, nil)
	f.ledger = invapp.NewLedgerService(ledgerScope, inventory.DefaultNegativeStockPolicy())
	f.service = NewProductionService(scope, f.ledger)
	return f
}

func (f *fixture) createItem(t *testing.T, sku string, itemType inventory.ItemType) *inventory.Item {
	t.Helper()
	item, err := inventory.NewItem(sku, "Item "+sku, itemType, "kg")
	require.NoError(t, err)
	require.NoError(t, f.items.Save(context.Background(), item))
	return item
}

func (f *fixture) seedStock(t *testing.T, warehouseID, itemID uuid.UUID, qty, cost int64) {
	t.Helper()
	unitCost := decimal.NewFromInt(cost)
	_, err := f.ledger.ApplyMovement(context.Background(), inventory.MovementIntent{
		WarehouseID:   warehouseID,
		ItemID:        itemID,
		QuantityDelta: decimal.NewFromInt(qty),
		UnitCost:      &unitCost,
		Type:          inventory.MovementTypeOpeningBalance,
		ReferenceType: inventory.ReferenceTypeOpening,
		ReferenceID:   "opening",
	})
	require.NoError(t, err)
}

func TestProductionService_StartConsumesIngredients(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	warehouseID := uuid.New()
	flour := f.createItem(t, "FLOUR-20", inventory.ItemTypeIngredient)
	butter := f.createItem(t, "BUTTER-20", inventory.ItemTypeIngredient)
	croissant := f.createItem(t, "CROISSANT-20", inventory.ItemTypeFinished)
	f.seedStock(t, warehouseID, flour.ID, 10, 2)
	f.seedStock(t, warehouseID, butter.ID, 5, 5)

	o, err := f.service.Create(ctx, CreateProductionOrderRequest{
		WarehouseID:     warehouseID,
		OutputItemID:    croissant.ID,
		PlannedQuantity: decimal.NewFromInt(10),
		Ingredients: []IngredientRequest{
			{ItemID: flour.ID, Quantity: decimal.NewFromInt(4)},
			{ItemID: butter.ID, Quantity: decimal.NewFromInt(2)},
		},
		CreatedBy: uuid.New(),
	})
	require.NoError(t, err)

	started, err := f.service.Start(ctx, o.ID, StartProductionRequest{})
	require.NoError(t, err)
	assert.Equal(t, production.ProductionOrderStatusInProgress, started.Status)

	flourLine, err := f.ledger.GetLine(ctx, warehouseID, flour.ID)
	require.NoError(t, err)
	assert.True(t, flourLine.QuantityOnHand.Equal(decimal.NewFromInt(6)))
	assert.True(t, flourLine.AverageCost.Equal(decimal.NewFromInt(2)), "consumption must not move the average")

	butterLine, err := f.ledger.GetLine(ctx, warehouseID, butter.ID)
	require.NoError(t, err)
	assert.True(t, butterLine.QuantityOnHand.Equal(decimal.NewFromInt(3)))

	// consumed costs recorded at the average at consumption time
	assert.True(t, started.TotalConsumedCost().Equal(decimal.NewFromInt(18)), "4*2 + 2*5")
}

func TestProductionService_CompleteYieldsAtDerivedCost(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	warehouseID := uuid.New()
	flour := f.createItem(t, "FLOUR-21", inventory.ItemTypeIngredient)
	croissant := f.createItem(t, "CROISSANT-21", inventory.ItemTypeFinished)
	f.seedStock(t, warehouseID, flour.ID, 10, 3)

	o, err := f.service.Create(ctx, CreateProductionOrderRequest{
		WarehouseID:     warehouseID,
		OutputItemID:    croissant.ID,
		PlannedQuantity: decimal.NewFromInt(8),
		Ingredients: []IngredientRequest{
			{ItemID: flour.ID, Quantity: decimal.NewFromInt(6)},
		},
		CreatedBy: uuid.New(),
	})
	require.NoError(t, err)
	_, err = f.service.Start(ctx, o.ID, StartProductionRequest{})
	require.NoError(t, err)

	// yield 8 units from 18 worth of flour
	completed, err := f.service.Complete(ctx, o.ID, CompleteProductionRequest{
		ActualQuantity: decimal.NewFromInt(8),
	})
	require.NoError(t, err)
	assert.Equal(t, production.ProductionOrderStatusCompleted, completed.Status)
	assert.True(t, completed.YieldUnitCost.Equal(decimal.NewFromFloat(2.25)))

	outputLine, err := f.ledger.GetLine(ctx, warehouseID, croissant.ID)
	require.NoError(t, err)
	assert.True(t, outputLine.QuantityOnHand.Equal(decimal.NewFromInt(8)))
	assert.True(t, outputLine.AverageCost.Equal(decimal.NewFromFloat(2.25)))
}

func TestProductionService_StartActualOverridesPlanned(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	warehouseID := uuid.New()
	flour := f.createItem(t, "FLOUR-22", inventory.ItemTypeIngredient)
	croissant := f.createItem(t, "CROISSANT-22", inventory.ItemTypeFinished)
	f.seedStock(t, warehouseID, flour.ID, 10, 2)

	o, err := f.service.Create(ctx, CreateProductionOrderRequest{
		WarehouseID:     warehouseID,
		OutputItemID:    croissant.ID,
		PlannedQuantity: decimal.NewFromInt(5),
		Ingredients: []IngredientRequest{
			{ItemID: flour.ID, Quantity: decimal.NewFromInt(4)},
		},
		CreatedBy: uuid.New(),
	})
	require.NoError(t, err)

	started, err := f.service.Start(ctx, o.ID, StartProductionRequest{
		Actuals: []ActualQuantityRequest{
			{IngredientID: o.Ingredients[0].ID, Quantity: decimal.NewFromInt(5)},
		},
	})
	require.NoError(t, err)
	assert.True(t, started.Ingredients[0].ConsumedQuantity.Equal(decimal.NewFromInt(5)))

	line, err := f.ledger.GetLine(ctx, warehouseID, flour.ID)
	require.NoError(t, err)
	assert.True(t, line.QuantityOnHand.Equal(decimal.NewFromInt(5)))
}

func TestProductionService_CancelInProgressReversesExactly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	warehouseID := uuid.New()
	flour := f.createItem(t, "FLOUR-23", inventory.ItemTypeIngredient)
	croissant := f.createItem(t, "CROISSANT-23", inventory.ItemTypeFinished)
	f.seedStock(t, warehouseID, flour.ID, 10, 2)

	o, err := f.service.Create(ctx, CreateProductionOrderRequest{
		WarehouseID:     warehouseID,
		OutputItemID:    croissant.ID,
		PlannedQuantity: decimal.NewFromInt(5),
		Ingredients: []IngredientRequest{
			{ItemID: flour.ID, Quantity: decimal.NewFromInt(4)},
		},
		CreatedBy: uuid.New(),
	})
	require.NoError(t, err)
	_, err = f.service.Start(ctx, o.ID, StartProductionRequest{})
	require.NoError(t, err)

	cancelled, err := f.service.Cancel(ctx, o.ID, CancelProductionRequest{})
	require.NoError(t, err)
	assert.Equal(t, production.ProductionOrderStatusCancelled, cancelled.Status)

	line, err := f.ledger.GetLine(ctx, warehouseID, flour.ID)
	require.NoError(t, err)
	assert.True(t, line.QuantityOnHand.Equal(decimal.NewFromInt(10)), "cancellation must restore the consumed quantity")
	assert.True(t, line.AverageCost.Equal(decimal.NewFromInt(2)), "cancellation must not move the average")

	movements, err := f.movements.FindByReference(ctx, inventory.ReferenceTypeProductionOrder, cancelled.OrderNumber)
	require.NoError(t, err)
	assert.Len(t, movements, 2, "one consumption and one reversal")
}

func TestProductionService_CancelPlannedPostsNothing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	warehouseID := uuid.New()
	flour := f.createItem(t, "FLOUR-24", inventory.ItemTypeIngredient)
	croissant := f.createItem(t, "CROISSANT-24", inventory.ItemTypeFinished)

	o, err := f.service.Create(ctx, CreateProductionOrderRequest{
		WarehouseID:     warehouseID,
		OutputItemID:    croissant.ID,
		PlannedQuantity: decimal.NewFromInt(5),
		Ingredients: []IngredientRequest{
			{ItemID: flour.ID, Quantity: decimal.NewFromInt(4)},
		},
		CreatedBy: uuid.New(),
	})
	require.NoError(t, err)

	cancelled, err := f.service.Cancel(ctx, o.ID, CancelProductionRequest{})
	require.NoError(t, err)
	assert.Equal(t, production.ProductionOrderStatusCancelled, cancelled.Status)

	movements, err := f.movements.FindByReference(ctx, inventory.ReferenceTypeProductionOrder, cancelled.OrderNumber)
	require.NoError(t, err)
	assert.Empty(t, movements)
}

func TestProductionService_CreateFromRecipeScalesIngredients(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	warehouseID := uuid.New()
	flour := f.createItem(t, "FLOUR-25", inventory.ItemTypeIngredient)
	croissant := f.createItem(t, "CROISSANT-25", inventory.ItemTypeFinished)

	recipe, err := production.NewRecipe("Croissant batch", croissant.ID, decimal.NewFromInt(10))
	require.NoError(t, err)
	require.NoError(t, recipe.AddLine(flour.ID, decimal.NewFromInt(4), decimal.NewFromFloat(1.1)))
	require.NoError(t, f.recipes.Save(ctx, recipe))

	o, err := f.service.CreateFromRecipe(ctx, CreateFromRecipeRequest{
		RecipeID:    recipe.ID,
		WarehouseID: warehouseID,
		Batches:     decimal.NewFromInt(2),
		CreatedBy:   uuid.New(),
	})
	require.NoError(t, err)
	assert.True(t, o.PlannedQuantity.Equal(decimal.NewFromInt(20)))
	require.Len(t, o.Ingredients, 1)
	assert.True(t, o.Ingredients[0].PlannedQuantity.Equal(decimal.NewFromFloat(8.8)), "4 * 1.1 waste * 2 batches")
	require.NotNil(t, o.RecipeID)
	assert.Equal(t, recipe.ID, *o.RecipeID)
}

func TestProductionService_CreateFromRecipeRejectsUnknownRecipe(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.service.CreateFromRecipe(ctx, CreateFromRecipeRequest{
		RecipeID:    uuid.New(),
		WarehouseID: uuid.New(),
		Batches:     decimal.NewFromInt(1),
		CreatedBy:   uuid.New(),
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "REFERENCE_INTEGRITY", domainErr.Code)
}

func TestProductionService_RecipeCostUsesCurrentAverages(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	warehouseID := uuid.New()
	flour := f.createItem(t, "FLOUR-26", inventory.ItemTypeIngredient)
	butter := f.createItem(t, "BUTTER-26", inventory.ItemTypeIngredient)
	croissant := f.createItem(t, "CROISSANT-26", inventory.ItemTypeFinished)
	f.seedStock(t, warehouseID, flour.ID, 10, 2)
	f.seedStock(t, warehouseID, butter.ID, 10, 5)

	recipe, err := production.NewRecipe("Croissant batch", croissant.ID, decimal.NewFromInt(10))
	require.NoError(t, err)
	require.NoError(t, recipe.AddLine(flour.ID, decimal.NewFromInt(4), decimal.NewFromInt(1)))
	require.NoError(t, recipe.AddLine(butter.ID, decimal.NewFromInt(2), decimal.NewFromInt(1)))
	require.NoError(t, f.recipes.Save(ctx, recipe))

	cost, err := f.service.RecipeCost(ctx, recipe.ID, warehouseID)
	require.NoError(t, err)
	assert.True(t, cost.TotalCost.Equal(decimal.NewFromInt(18)), "4*2 + 2*5")
	assert.True(t, cost.UnitCost.Equal(decimal.NewFromFloat(1.8)))
	require.Len(t, cost.Lines, 2)
}

func TestProductionService_StartRejectsDoubleStart(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	warehouseID := uuid.New()
	flour := f.createItem(t, "FLOUR-27", inventory.ItemTypeIngredient)
	croissant := f.createItem(t, "CROISSANT-27", inventory.ItemTypeFinished)
	f.seedStock(t, warehouseID, flour.ID, 10, 2)

	o, err := f.service.Create(ctx, CreateProductionOrderRequest{
		WarehouseID:     warehouseID,
		OutputItemID:    croissant.ID,
		PlannedQuantity: decimal.NewFromInt(5),
		Ingredients: []IngredientRequest{
			{ItemID: flour.ID, Quantity: decimal.NewFromInt(4)},
		},
		CreatedBy: uuid.New(),
	})
	require.NoError(t, err)
	_, err = f.service.Start(ctx, o.ID, StartProductionRequest{})
	require.NoError(t, err)

	_, err = f.service.Start(ctx, o.ID, StartProductionRequest{})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_TRANSITION", domainErr.Code)

	line, err := f.ledger.GetLine(ctx, warehouseID, flour.ID)
	require.NoError(t, err)
	assert.True(t, line.QuantityOnHand.Equal(decimal.NewFromInt(6)), "failed restart must not consume again")
}
