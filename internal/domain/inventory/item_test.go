package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItem(t *testing.T) {
	item, err := NewItem("FLOUR-01", "Wheat flour", ItemTypeIngredient, "kg")
	require.NoError(t, err)
	assert.Equal(t, "FLOUR-01", item.SKU)
	assert.True(t, item.IsActive)

	t.Run("rejects empty sku", func(t *testing.T) {
		_, err := NewItem("  ", "Flour", ItemTypeIngredient, "kg")
		require.Error(t, err)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := NewItem("X-01", "X", ItemType("WEIRD"), "kg")
		require.Error(t, err)
	})
}

func TestItem_SetThresholds(t *testing.T) {
	item, err := NewItem("FLOUR-01", "Wheat flour", ItemTypeIngredient, "kg")
	require.NoError(t, err)

	require.NoError(t, item.SetThresholds(decimal.NewFromInt(5), decimal.NewFromInt(50), decimal.NewFromInt(20)))
	assert.True(t, item.IsBelowMinimum(decimal.NewFromInt(3)))
	assert.False(t, item.IsBelowMinimum(decimal.NewFromInt(5)))

	t.Run("rejects max below min", func(t *testing.T) {
		err := item.SetThresholds(decimal.NewFromInt(10), decimal.NewFromInt(5), decimal.Zero)
		require.Error(t, err)
	})

	t.Run("rejects negative", func(t *testing.T) {
		err := item.SetThresholds(decimal.NewFromInt(-1), decimal.Zero, decimal.Zero)
		require.Error(t, err)
	})
}

func TestItem_ActivateDeactivate(t *testing.T) {
	item, err := NewItem("FLOUR-01", "Wheat flour", ItemTypeIngredient, "kg")
	require.NoError(t, err)

	item.Deactivate()
	assert.False(t, item.IsActive)
	item.Activate()
	assert.True(t, item.IsActive)
}
