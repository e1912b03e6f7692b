package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VarianceDirection classifies a count variance
type VarianceDirection string

const (
	VarianceDirectionNone     VarianceDirection = "NONE"
	VarianceDirectionSurplus  VarianceDirection = "SURPLUS"
	VarianceDirectionShortage VarianceDirection = "SHORTAGE"
)

// Variance is the difference between the recorded and the physically counted
// quantity for one stock line, valued at the line's average cost at the time
// of comparison.
type Variance struct {
	WarehouseID      uuid.UUID       `json:"warehouse_id"`
	ItemID           uuid.UUID       `json:"item_id"`
	ExpectedQuantity decimal.Decimal `json:"expected_quantity"`
	CountedQuantity  decimal.Decimal `json:"counted_quantity"`
	QuantityVariance decimal.Decimal `json:"quantity_variance"` // counted - expected
	UnitCost         decimal.Decimal `json:"unit_cost"`
	ValueVariance    decimal.Decimal `json:"value_variance"`
}

// CalculateVariance compares an expected quantity against a physical count.
// The quantity variance is signed: positive means surplus, negative shortage.
func CalculateVariance(warehouseID, itemID uuid.UUID, expected, counted, unitCost decimal.Decimal) Variance {
	diff := counted.Sub(expected)
	return Variance{
		WarehouseID:      warehouseID,
		ItemID:           itemID,
		ExpectedQuantity: expected,
		CountedQuantity:  counted,
		QuantityVariance: diff,
		UnitCost:         unitCost,
		ValueVariance:    diff.Mul(unitCost).Round(CostScale),
	}
}

// Direction classifies the variance
func (v Variance) Direction() VarianceDirection {
	switch {
	case v.QuantityVariance.IsPositive():
		return VarianceDirectionSurplus
	case v.QuantityVariance.IsNegative():
		return VarianceDirectionShortage
	default:
		return VarianceDirectionNone
	}
}

// IsZero returns true if the counted quantity matched the expectation
func (v Variance) IsZero() bool {
	return v.QuantityVariance.IsZero()
}

// AdjustmentIntent builds the movement intent that reconciles the stock line to
// the counted quantity. Returns false when no adjustment is needed.
func (v Variance) AdjustmentIntent(referenceID, referenceLine string, operatorID *uuid.UUID) (MovementIntent, bool) {
	if v.IsZero() {
		return MovementIntent{}, false
	}

	intent := MovementIntent{
		WarehouseID:   v.WarehouseID,
		ItemID:        v.ItemID,
		QuantityDelta: v.QuantityVariance,
		Type:          MovementTypeCountAdjustment,
		ReferenceType: ReferenceTypeInventoryCount,
		ReferenceID:   referenceID,
		ReferenceLine: referenceLine,
		OperatorID:    operatorID,
	}
	if v.QuantityVariance.IsPositive() {
		// Surplus enters stock at the line's current average so the
		// adjustment does not move the average cost.
		cost := v.UnitCost
		intent.UnitCost = &cost
	}
	return intent, true
}

// VarianceSummary aggregates variances for a whole count
type VarianceSummary struct {
	TotalSurplusValue  decimal.Decimal `json:"total_surplus_value"`
	TotalShortageValue decimal.Decimal `json:"total_shortage_value"`
	NetValue           decimal.Decimal `json:"net_value"`
	LinesWithVariance  int             `json:"lines_with_variance"`
}

// SummarizeVariances rolls individual variances up into totals
func SummarizeVariances(variances []Variance) VarianceSummary {
	summary := VarianceSummary{
		TotalSurplusValue:  decimal.Zero,
		TotalShortageValue: decimal.Zero,
		NetValue:           decimal.Zero,
	}
	for _, v := range variances {
		if v.IsZero() {
			continue
		}
		summary.LinesWithVariance++
		summary.NetValue = summary.NetValue.Add(v.ValueVariance)
		if v.ValueVariance.IsPositive() {
			summary.TotalSurplusValue = summary.TotalSurplusValue.Add(v.ValueVariance)
		} else {
			summary.TotalShortageValue = summary.TotalShortageValue.Add(v.ValueVariance.Abs())
		}
	}
	return summary
}
