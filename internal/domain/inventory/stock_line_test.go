package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/horyco/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLine(t *testing.T) *StockLine {
	t.Helper()
	line, err := NewStockLine(uuid.New(), uuid.New())
	require.NoError(t, err)
	return line
}

func receiptIntent(line *StockLine, qty, cost int64) MovementIntent {
	c := decimal.NewFromInt(cost)
	return MovementIntent{
		WarehouseID:   line.WarehouseID,
		ItemID:        line.ItemID,
		QuantityDelta: decimal.NewFromInt(qty),
		UnitCost:      &c,
		Type:          MovementTypePurchaseReceipt,
		ReferenceType: ReferenceTypePurchaseOrder,
		ReferenceID:   "PO-001",
	}
}

func TestStockLine_Apply_ReceiptsRecomputeAverage(t *testing.T) {
	line := newTestLine(t)
	policy := DefaultNegativeStockPolicy()

	m1, err := line.Apply(receiptIntent(line, 10, 100), policy)
	require.NoError(t, err)
	assert.True(t, line.QuantityOnHand.Equal(decimal.NewFromInt(10)))
	assert.True(t, line.AverageCost.Equal(decimal.NewFromInt(100)))
	assert.True(t, m1.PreviousQuantity.IsZero())
	assert.True(t, m1.NewQuantity.Equal(decimal.NewFromInt(10)))

	m2, err := line.Apply(receiptIntent(line, 10, 200), policy)
	require.NoError(t, err)
	assert.True(t, line.QuantityOnHand.Equal(decimal.NewFromInt(20)))
	assert.True(t, line.AverageCost.Equal(decimal.NewFromInt(150)))
	assert.True(t, line.LastCost.Equal(decimal.NewFromInt(200)))
	assert.True(t, m2.PreviousQuantity.Equal(m1.NewQuantity), "movements must chain")
}

func TestStockLine_Apply_OutgoingUsesAverageWithoutChangingIt(t *testing.T) {
	line := newTestLine(t)
	policy := DefaultNegativeStockPolicy()

	_, err := line.Apply(receiptIntent(line, 10, 100), policy)
	require.NoError(t, err)
	_, err = line.Apply(receiptIntent(line, 10, 200), policy)
	require.NoError(t, err)

	m, err := line.Apply(MovementIntent{
		WarehouseID:   line.WarehouseID,
		ItemID:        line.ItemID,
		QuantityDelta: decimal.NewFromInt(-5),
		Type:          MovementTypeWriteoff,
		ReferenceType: ReferenceTypeWriteoff,
		ReferenceID:   "WO-001",
	}, policy)
	require.NoError(t, err)

	assert.True(t, line.QuantityOnHand.Equal(decimal.NewFromInt(15)))
	assert.True(t, line.AverageCost.Equal(decimal.NewFromInt(150)), "issue must not move the average")
	assert.True(t, m.UnitCostAtMovement.Equal(decimal.NewFromInt(150)))
	assert.True(t, m.PreviousQuantity.Equal(decimal.NewFromInt(20)))
	assert.True(t, m.NewQuantity.Equal(decimal.NewFromInt(15)))
}

func TestStockLine_Apply_InsufficientStock(t *testing.T) {
	line := newTestLine(t)
	policy := DefaultNegativeStockPolicy()

	_, err := line.Apply(receiptIntent(line, 10, 100), policy)
	require.NoError(t, err)
	require.NoError(t, line.Reserve(decimal.NewFromInt(4)))

	_, err = line.Apply(MovementIntent{
		WarehouseID:   line.WarehouseID,
		ItemID:        line.ItemID,
		QuantityDelta: decimal.NewFromInt(-8),
		Type:          MovementTypeWriteoff,
		ReferenceType: ReferenceTypeWriteoff,
		ReferenceID:   "WO-002",
	}, policy)

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)
	assert.True(t, line.QuantityOnHand.Equal(decimal.NewFromInt(10)), "failed movement must not change the line")
}

func TestStockLine_Apply_PolicyAllowsNegative(t *testing.T) {
	line := newTestLine(t)
	policy := DefaultNegativeStockPolicy()

	_, err := line.Apply(receiptIntent(line, 3, 50), policy)
	require.NoError(t, err)

	m, err := line.Apply(MovementIntent{
		WarehouseID:   line.WarehouseID,
		ItemID:        line.ItemID,
		QuantityDelta: decimal.NewFromInt(-5),
		Type:          MovementTypeManualAdjustment,
		ReferenceType: ReferenceTypeManual,
		ReferenceID:   "ADJ-001",
		Reason:        "shrinkage correction",
	}, policy)

	require.NoError(t, err)
	assert.True(t, line.QuantityOnHand.Equal(decimal.NewFromInt(-2)))
	assert.True(t, line.ReservedQuantity.IsZero())
	assert.True(t, m.NewQuantity.Equal(decimal.NewFromInt(-2)))
}

func TestStockLine_Apply_NegativeClampsReservation(t *testing.T) {
	line := newTestLine(t)
	policy := DefaultNegativeStockPolicy()

	_, err := line.Apply(receiptIntent(line, 10, 50), policy)
	require.NoError(t, err)
	require.NoError(t, line.Reserve(decimal.NewFromInt(6)))

	_, err = line.Apply(MovementIntent{
		WarehouseID:   line.WarehouseID,
		ItemID:        line.ItemID,
		QuantityDelta: decimal.NewFromInt(-7),
		Type:          MovementTypeCountAdjustment,
		ReferenceType: ReferenceTypeInventoryCount,
		ReferenceID:   "IC-001",
	}, policy)

	require.NoError(t, err)
	assert.True(t, line.QuantityOnHand.Equal(decimal.NewFromInt(3)))
	assert.True(t, line.ReservedQuantity.Equal(decimal.NewFromInt(3)),
		"reservation must shrink to keep reserved within on hand")
}

func TestStockLine_Apply_ValidatesIntent(t *testing.T) {
	line := newTestLine(t)
	policy := DefaultNegativeStockPolicy()

	t.Run("zero delta", func(t *testing.T) {
		_, err := line.Apply(MovementIntent{
			WarehouseID:   line.WarehouseID,
			ItemID:        line.ItemID,
			QuantityDelta: decimal.Zero,
			Type:          MovementTypeManualAdjustment,
		}, policy)
		require.Error(t, err)
	})

	t.Run("missing cost on costed inbound", func(t *testing.T) {
		_, err := line.Apply(MovementIntent{
			WarehouseID:   line.WarehouseID,
			ItemID:        line.ItemID,
			QuantityDelta: decimal.NewFromInt(5),
			Type:          MovementTypePurchaseReceipt,
		}, policy)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "MISSING_COST", domainErr.Code)
	})

	t.Run("wrong line", func(t *testing.T) {
		other := newTestLine(t)
		_, err := line.Apply(receiptIntent(other, 5, 10), policy)
		require.Error(t, err)
	})
}

func TestStockLine_Apply_RaisesDomainEvents(t *testing.T) {
	line := newTestLine(t)
	policy := DefaultNegativeStockPolicy()

	_, err := line.Apply(receiptIntent(line, 10, 100), policy)
	require.NoError(t, err)

	events := line.GetDomainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, EventTypeAverageCostChanged, events[0].EventType())
	assert.Equal(t, EventTypeStockReceived, events[1].EventType())
}

func TestStockLine_ReserveAndRelease(t *testing.T) {
	line := newTestLine(t)
	policy := DefaultNegativeStockPolicy()

	_, err := line.Apply(receiptIntent(line, 10, 100), policy)
	require.NoError(t, err)

	require.NoError(t, line.Reserve(decimal.NewFromInt(6)))
	assert.True(t, line.AvailableQuantity().Equal(decimal.NewFromInt(4)))

	err = line.Reserve(decimal.NewFromInt(5))
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)

	require.NoError(t, line.Release(decimal.NewFromInt(2)))
	assert.True(t, line.ReservedQuantity.Equal(decimal.NewFromInt(4)))

	err = line.Release(decimal.NewFromInt(10))
	require.Error(t, err)
}

func TestStockLine_TotalValue(t *testing.T) {
	line := newTestLine(t)
	policy := DefaultNegativeStockPolicy()

	_, err := line.Apply(receiptIntent(line, 10, 100), policy)
	require.NoError(t, err)
	_, err = line.Apply(receiptIntent(line, 10, 200), policy)
	require.NoError(t, err)

	assert.True(t, line.TotalValue().Equal(decimal.NewFromInt(3000)))
}
