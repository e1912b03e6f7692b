package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/horyco/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogItem(t *testing.T, f *fixture, sku string, min int64) *inventory.Item {
	t.Helper()
	item, err := inventory.NewItem(sku, "Item "+sku, inventory.ItemTypeIngredient, "kg")
	require.NoError(t, err)
	require.NoError(t, item.SetThresholds(decimal.NewFromInt(min), decimal.Zero, decimal.NewFromInt(min*2)))
	require.NoError(t, f.items.Save(context.Background(), item))
	return item
}

func TestLedgerService_LowStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	warehouseID := uuid.New()

	short := catalogItem(t, f, "FLOUR-01", 5)
	healthy := catalogItem(t, f, "SUGAR-01", 5)
	untracked := catalogItem(t, f, "SALT-01", 0)

	_, err := f.ledger.ApplyMovement(ctx, receipt(warehouseID, short.ID, 3, 100))
	require.NoError(t, err)
	_, err = f.ledger.ApplyMovement(ctx, receipt(warehouseID, healthy.ID, 50, 100))
	require.NoError(t, err)
	_, err = f.ledger.ApplyMovement(ctx, receipt(warehouseID, untracked.ID, 1, 100))
	require.NoError(t, err)

	alerts, err := f.ledger.LowStock(ctx, warehouseID)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, short.ID, alerts[0].ItemID)
	assert.Equal(t, "FLOUR-01", alerts[0].SKU)
	assert.True(t, alerts[0].QuantityOnHand.Equal(decimal.NewFromInt(3)))
	assert.True(t, alerts[0].MinQuantity.Equal(decimal.NewFromInt(5)))
}

func TestLedgerService_LowStock_EmptyWarehouse(t *testing.T) {
	f := newFixture()

	alerts, err := f.ledger.LowStock(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, alerts)
}
