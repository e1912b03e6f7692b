package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/horyco/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCount(t *testing.T) *InventoryCount {
	t.Helper()
	c, err := NewInventoryCount("IC-2026-001", uuid.New(), uuid.New())
	require.NoError(t, err)
	return c
}

func TestInventoryCount_CompleteComputesVariances(t *testing.T) {
	c := newTestCount(t)
	itemID := uuid.New()

	require.NoError(t, c.AddLine(itemID, decimal.NewFromInt(15), decimal.NewFromInt(150)))
	require.NoError(t, c.RecordCount(c.Lines[0].ID, decimal.NewFromInt(12)))
	require.NoError(t, c.Complete())

	assert.Equal(t, CountStatusCompleted, c.Status)
	assert.NotNil(t, c.CompletedAt)
	assert.True(t, c.Lines[0].QuantityVariance.Equal(decimal.NewFromInt(-3)))
	assert.True(t, c.Lines[0].ValueVariance.Equal(decimal.NewFromInt(-450)))
	assert.True(t, c.TotalVarianceValue().Equal(decimal.NewFromInt(-450)))
}

func TestInventoryCount_CompleteRequiresAllLinesCounted(t *testing.T) {
	c := newTestCount(t)
	require.NoError(t, c.AddLine(uuid.New(), decimal.NewFromInt(10), decimal.NewFromInt(5)))

	err := c.Complete()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "LINE_NOT_COUNTED", domainErr.Code)
	assert.Equal(t, CountStatusInProgress, c.Status)
}

func TestInventoryCount_AdjustmentIntents(t *testing.T) {
	c := newTestCount(t)
	shortItem := uuid.New()
	exactItem := uuid.New()
	surplusItem := uuid.New()

	require.NoError(t, c.AddLine(shortItem, decimal.NewFromInt(15), decimal.NewFromInt(150)))
	require.NoError(t, c.AddLine(exactItem, decimal.NewFromInt(8), decimal.NewFromInt(20)))
	require.NoError(t, c.AddLine(surplusItem, decimal.NewFromInt(4), decimal.NewFromInt(10)))

	require.NoError(t, c.RecordCount(c.Lines[0].ID, decimal.NewFromInt(12)))
	require.NoError(t, c.RecordCount(c.Lines[1].ID, decimal.NewFromInt(8)))
	require.NoError(t, c.RecordCount(c.Lines[2].ID, decimal.NewFromInt(6)))
	require.NoError(t, c.Complete())

	operator := uuid.New()
	intents := c.AdjustmentIntents(&operator)
	require.Len(t, intents, 2, "exact lines post no adjustment")

	assert.True(t, intents[0].QuantityDelta.Equal(decimal.NewFromInt(-3)))
	assert.Equal(t, MovementTypeCountAdjustment, intents[0].Type)
	assert.Nil(t, intents[0].UnitCost)

	assert.True(t, intents[1].QuantityDelta.Equal(decimal.NewFromInt(2)))
	require.NotNil(t, intents[1].UnitCost, "surplus enters at the snapshotted average")
	assert.True(t, intents[1].UnitCost.Equal(decimal.NewFromInt(10)))
}

func TestInventoryCount_ApproveReconcilesToCounted(t *testing.T) {
	// Scenario: expected 15, counted 12. Approving the count and applying its
	// adjustment must land the stock line exactly on the counted quantity.
	line := newTestLine(t)
	policy := DefaultNegativeStockPolicy()
	_, err := line.Apply(receiptIntent(line, 15, 150), policy)
	require.NoError(t, err)

	c, err := NewInventoryCount("IC-2026-002", line.WarehouseID, uuid.New())
	require.NoError(t, err)
	require.NoError(t, c.AddLine(line.ItemID, line.QuantityOnHand, line.AverageCost))
	require.NoError(t, c.RecordCount(c.Lines[0].ID, decimal.NewFromInt(12)))
	require.NoError(t, c.Complete())
	require.NoError(t, c.Approve(uuid.New()))

	for _, intent := range c.AdjustmentIntents(nil) {
		_, err := line.Apply(intent, policy)
		require.NoError(t, err)
	}

	assert.True(t, line.QuantityOnHand.Equal(decimal.NewFromInt(12)))
}

func TestInventoryCount_Lifecycle(t *testing.T) {
	c := newTestCount(t)
	require.NoError(t, c.AddLine(uuid.New(), decimal.NewFromInt(10), decimal.NewFromInt(5)))
	require.NoError(t, c.RecordCount(c.Lines[0].ID, decimal.NewFromInt(10)))

	t.Run("cannot approve before completion", func(t *testing.T) {
		err := c.Approve(uuid.New())
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_TRANSITION", domainErr.Code)
	})

	require.NoError(t, c.Complete())

	t.Run("completed locks line edits", func(t *testing.T) {
		err := c.RecordCount(c.Lines[0].ID, decimal.NewFromInt(9))
		require.Error(t, err)
	})

	t.Run("completed cannot be cancelled", func(t *testing.T) {
		require.Error(t, c.Cancel())
	})

	require.NoError(t, c.Approve(uuid.New()))
	assert.Equal(t, CountStatusApproved, c.Status)

	events := c.GetDomainEvents()
	require.NotEmpty(t, events)
	assert.Equal(t, EventTypeCountApproved, events[len(events)-1].EventType())
}

func TestInventoryCount_Cancel(t *testing.T) {
	c := newTestCount(t)
	require.NoError(t, c.Cancel())
	assert.Equal(t, CountStatusCancelled, c.Status)
	assert.NotNil(t, c.CancelledAt)

	require.Error(t, c.Complete())
}

func TestCalculateVariance(t *testing.T) {
	wid, iid := uuid.New(), uuid.New()

	t.Run("shortage", func(t *testing.T) {
		v := CalculateVariance(wid, iid, decimal.NewFromInt(15), decimal.NewFromInt(12), decimal.NewFromInt(150))
		assert.True(t, v.QuantityVariance.Equal(decimal.NewFromInt(-3)))
		assert.True(t, v.ValueVariance.Equal(decimal.NewFromInt(-450)))
		assert.Equal(t, VarianceDirectionShortage, v.Direction())
	})

	t.Run("surplus", func(t *testing.T) {
		v := CalculateVariance(wid, iid, decimal.NewFromInt(4), decimal.NewFromInt(6), decimal.NewFromInt(10))
		assert.True(t, v.QuantityVariance.Equal(decimal.NewFromInt(2)))
		assert.Equal(t, VarianceDirectionSurplus, v.Direction())
	})

	t.Run("exact", func(t *testing.T) {
		v := CalculateVariance(wid, iid, decimal.NewFromInt(8), decimal.NewFromInt(8), decimal.NewFromInt(20))
		assert.True(t, v.IsZero())
		assert.Equal(t, VarianceDirectionNone, v.Direction())
	})
}

func TestSummarizeVariances(t *testing.T) {
	wid := uuid.New()
	variances := []Variance{
		CalculateVariance(wid, uuid.New(), decimal.NewFromInt(15), decimal.NewFromInt(12), decimal.NewFromInt(150)),
		CalculateVariance(wid, uuid.New(), decimal.NewFromInt(4), decimal.NewFromInt(6), decimal.NewFromInt(10)),
		CalculateVariance(wid, uuid.New(), decimal.NewFromInt(8), decimal.NewFromInt(8), decimal.NewFromInt(20)),
	}

	summary := SummarizeVariances(variances)
	assert.Equal(t, 2, summary.LinesWithVariance)
	assert.True(t, summary.TotalSurplusValue.Equal(decimal.NewFromInt(20)))
	assert.True(t, summary.TotalShortageValue.Equal(decimal.NewFromInt(450)))
	assert.True(t, summary.NetValue.Equal(decimal.NewFromInt(-430)))
}
