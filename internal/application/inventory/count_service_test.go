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

func TestCountService_FullCycleReconcilesStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	service := NewCountService(f.scope, f.ledger)
	warehouseID := uuid.New()
	item := f.createItem(t, "RICE-01")

	_, err := f.ledger.ApplyMovement(ctx, receipt(warehouseID, item.ID, 15, 150))
	require.NoError(t, err)

	c, err := service.Create(ctx, CreateCountRequest{
		WarehouseID: warehouseID,
		ItemIDs:     []uuid.UUID{item.ID},
		CreatedBy:   uuid.New(),
	})
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	assert.True(t, c.Lines[0].ExpectedQuantity.Equal(decimal.NewFromInt(15)),
		"expectation must be snapshotted from the ledger")
	assert.True(t, c.Lines[0].UnitCost.Equal(decimal.NewFromInt(150)))

	_, err = service.RecordCount(ctx, c.ID, c.Lines[0].ID, RecordCountRequest{CountedQuantity: decimal.NewFromInt(12)})
	require.NoError(t, err)

	completed, err := service.Complete(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, completed.Lines[0].QuantityVariance.Equal(decimal.NewFromInt(-3)))

	variances, summary, err := service.Variances(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, variances, 1)
	assert.True(t, summary.TotalShortageValue.Equal(decimal.NewFromInt(450)))

	// Stock must be untouched until approval.
	line, err := f.ledger.GetLine(ctx, warehouseID, item.ID)
	require.NoError(t, err)
	assert.True(t, line.QuantityOnHand.Equal(decimal.NewFromInt(15)))

	approved, err := service.Approve(ctx, c.ID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, inventory.CountStatusApproved, approved.Status)

	line, err = f.ledger.GetLine(ctx, warehouseID, item.ID)
	require.NoError(t, err)
	assert.True(t, line.QuantityOnHand.Equal(decimal.NewFromInt(12)),
		"approval must reconcile stock to the counted quantity")

	movements, err := f.movements.FindByReference(ctx, inventory.ReferenceTypeInventoryCount, approved.CountNumber)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, inventory.MovementTypeCountAdjustment, movements[0].Type)
	assert.True(t, movements[0].QuantityDelta.Equal(decimal.NewFromInt(-3)))
}

func TestCountService_NeverMovedItemCountsAgainstZero(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	service := NewCountService(f.scope, f.ledger)
	warehouseID := uuid.New()
	item := f.createItem(t, "RICE-02")

	c, err := service.Create(ctx, CreateCountRequest{
		WarehouseID: warehouseID,
		ItemIDs:     []uuid.UUID{item.ID},
		CreatedBy:   uuid.New(),
	})
	require.NoError(t, err)
	assert.True(t, c.Lines[0].ExpectedQuantity.IsZero())

	_, err = service.RecordCount(ctx, c.ID, c.Lines[0].ID, RecordCountRequest{CountedQuantity: decimal.NewFromInt(4)})
	require.NoError(t, err)
	_, err = service.Complete(ctx, c.ID)
	require.NoError(t, err)
	_, err = service.Approve(ctx, c.ID, uuid.New())
	require.NoError(t, err)

	line, err := f.ledger.GetLine(ctx, warehouseID, item.ID)
	require.NoError(t, err)
	assert.True(t, line.QuantityOnHand.Equal(decimal.NewFromInt(4)),
		"a surplus on a fresh line creates the line")
}

func TestCountService_ExactCountPostsNothing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	service := NewCountService(f.scope, f.ledger)
	warehouseID := uuid.New()
	item := f.createItem(t, "RICE-03")

	_, err := f.ledger.ApplyMovement(ctx, receipt(warehouseID, item.ID, 8, 20))
	require.NoError(t, err)

	c, err := service.Create(ctx, CreateCountRequest{
		WarehouseID: warehouseID,
		ItemIDs:     []uuid.UUID{item.ID},
		CreatedBy:   uuid.New(),
	})
	require.NoError(t, err)
	_, err = service.RecordCount(ctx, c.ID, c.Lines[0].ID, RecordCountRequest{CountedQuantity: decimal.NewFromInt(8)})
	require.NoError(t, err)
	_, err = service.Complete(ctx, c.ID)
	require.NoError(t, err)

	approved, err := service.Approve(ctx, c.ID, uuid.New())
	require.NoError(t, err)

	movements, err := f.movements.FindByReference(ctx, inventory.ReferenceTypeInventoryCount, approved.CountNumber)
	require.NoError(t, err)
	assert.Empty(t, movements, "zero variance posts no adjustment")
}

func TestCountService_CancelLeavesStockAlone(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	service := NewCountService(f.scope, f.ledger)
	warehouseID := uuid.New()
	item := f.createItem(t, "RICE-04")

	_, err := f.ledger.ApplyMovement(ctx, receipt(warehouseID, item.ID, 8, 20))
	require.NoError(t, err)

	c, err := service.Create(ctx, CreateCountRequest{
		WarehouseID: warehouseID,
		ItemIDs:     []uuid.UUID{item.ID},
		CreatedBy:   uuid.New(),
	})
	require.NoError(t, err)

	cancelled, err := service.Cancel(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, inventory.CountStatusCancelled, cancelled.Status)

	line, err := f.ledger.GetLine(ctx, warehouseID, item.ID)
	require.NoError(t, err)
	assert.True(t, line.QuantityOnHand.Equal(decimal.NewFromInt(8)))
}
