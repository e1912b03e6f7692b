package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestWeightedAverageCost(t *testing.T) {
	d := decimal.NewFromInt

	t.Run("first receipt sets the average to the incoming cost", func(t *testing.T) {
		avg := WeightedAverageCost(d(0), d(0), d(10), d(100))
		assert.True(t, avg.Equal(d(100)), "got %s", avg)
	})

	t.Run("second receipt blends costs by quantity", func(t *testing.T) {
		avg := WeightedAverageCost(d(10), d(100), d(10), d(200))
		assert.True(t, avg.Equal(d(150)), "got %s", avg)
	})

	t.Run("uneven quantities weight accordingly", func(t *testing.T) {
		avg := WeightedAverageCost(d(30), d(10), d(10), d(30))
		assert.True(t, avg.Equal(d(15)), "got %s", avg)
	})

	t.Run("retains prior cost when combined quantity is zero", func(t *testing.T) {
		avg := WeightedAverageCost(d(-5), decimal.NewFromFloat(12.5), d(5), d(99))
		assert.True(t, avg.Equal(decimal.NewFromFloat(12.5)), "got %s", avg)
	})

	t.Run("rounds to cost scale", func(t *testing.T) {
		avg := WeightedAverageCost(d(3), d(10), d(3), d(11))
		assert.True(t, avg.Equal(decimal.NewFromFloat(10.5)), "got %s", avg)

		avg = WeightedAverageCost(d(1), d(10), d(2), d(11))
		// (10 + 22) / 3 = 10.6667 at four decimal places
		assert.True(t, avg.Equal(decimal.NewFromFloat(10.6667)), "got %s", avg)
	})
}
