package inventory

import "github.com/shopspring/decimal"

// CostScale is the decimal precision costs are carried at, matching the
// decimal(18,4) column definitions.
const CostScale = 4

// QuantityScale is the decimal precision quantities are carried at.
const QuantityScale = 4

// WeightedAverageCost recomputes the moving weighted average unit cost for an
// incoming costed movement:
//
//	newAverage = (onHand*average + incomingQty*incomingCost) / (onHand + incomingQty)
//
// When the combined quantity is zero the prior average is retained, so a line
// restocked exactly to zero keeps its last known cost. Outgoing movements never
// call this; they are valued at the current average without changing it.
func WeightedAverageCost(onHand, averageCost, incomingQty, incomingCost decimal.Decimal) decimal.Decimal {
	total := onHand.Add(incomingQty)
	if total.IsZero() {
		return averageCost
	}
	value := onHand.Mul(averageCost).Add(incomingQty.Mul(incomingCost))
	return value.Div(total).Round(CostScale)
}
