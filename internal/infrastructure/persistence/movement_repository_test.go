package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/horyco/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMovement(warehouseID, itemID uuid.UUID, prev, delta int64) *inventory.Movement {
	cost := decimal.NewFromInt(2)
	intent := inventory.MovementIntent{
		WarehouseID:   warehouseID,
		ItemID:        itemID,
		QuantityDelta: decimal.NewFromInt(delta),
		UnitCost:      &cost,
		Type:          inventory.MovementTypePurchaseReceipt,
		ReferenceType: inventory.ReferenceTypePurchaseOrder,
		ReferenceID:   "PO-TEST-0001",
	}
	return inventory.NewMovement(intent, decimal.NewFromInt(prev), cost)
}

func TestGormMovementRepository_AppendBatchAndHistory(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormMovementRepository(db)
	ctx := context.Background()
	warehouseID := uuid.New()
	itemID := uuid.New()

	movements := []*inventory.Movement{
		newTestMovement(warehouseID, itemID, 0, 5),
		newTestMovement(warehouseID, itemID, 5, 3),
	}
	require.NoError(t, repo.AppendBatch(ctx, movements))

	page, err := repo.History(ctx, inventory.MovementHistoryFilter{WarehouseID: warehouseID})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	// chained: each entry starts where the previous ended
	assert.True(t, page.Items[0].NewQuantity.Equal(page.Items[1].PreviousQuantity))
}

func TestGormMovementRepository_HistoryFiltersByItem(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormMovementRepository(db)
	ctx := context.Background()
	warehouseID := uuid.New()
	itemA := uuid.New()
	itemB := uuid.New()

	require.NoError(t, repo.Append(ctx, newTestMovement(warehouseID, itemA, 0, 5)))
	require.NoError(t, repo.Append(ctx, newTestMovement(warehouseID, itemB, 0, 2)))

	page, err := repo.History(ctx, inventory.MovementHistoryFilter{WarehouseID: warehouseID, ItemID: &itemA})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, itemA, page.Items[0].ItemID)
}

func TestGormMovementRepository_FindByReference(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormMovementRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, newTestMovement(uuid.New(), uuid.New(), 0, 5)))

	movements, err := repo.FindByReference(ctx, inventory.ReferenceTypePurchaseOrder, "PO-TEST-0001")
	require.NoError(t, err)
	assert.Len(t, movements, 1)

	none, err := repo.FindByReference(ctx, inventory.ReferenceTypeWriteoff, "WO-MISSING")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGormMovementRepository_SumDeltas(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormMovementRepository(db)
	ctx := context.Background()
	warehouseID := uuid.New()
	itemID := uuid.New()

	require.NoError(t, repo.Append(ctx, newTestMovement(warehouseID, itemID, 0, 5)))
	require.NoError(t, repo.Append(ctx, newTestMovement(warehouseID, itemID, 5, 3)))

	sum, err := repo.SumDeltas(ctx, inventory.LineKey{WarehouseID: warehouseID, ItemID: itemID})
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(8)))
}
