/*
indicator.go - Business Indicator aggregation

PURPOSE:
  Reduces per-period ILDC/SC/FC triples into the current Business Indicator
  and the trailing multi-year average the rest of the calculation runs on.

THE MAX/MIN/ABS RULE:
  Each component is clamped to [-1e15, 1e15] and taken absolute before
  summing. Outlier components therefore cannot make the BI total negative
  or unbounded, which keeps the downstream piecewise formula well defined.

AVERAGING:
  The average is taken over however many of the (at most 3) periods are
  actually present - 1, 2 or 3. A newly reporting entity with a single
  period gets that period's total as its average.
*/
package sma

import "github.com/shopspring/decimal"

// componentBound caps each BI component before the absolute value is taken.
var componentBound = decimal.New(1, 15) // 1e15

// Aggregator reduces Business Indicator records into current and average
// figures. Stateless; safe for concurrent use.
type Aggregator struct{}

// Aggregate computes the BI aggregate from up to the most recent 3 records,
// ordered by period descending (most recent first). The input must already
// have passed validation (see calculator.go); Aggregate assumes a non-empty
// slice.
func (Aggregator) Aggregate(records []BusinessIndicatorRecord) BIAggregate {
	use := records
	if len(use) > 3 {
		use = use[:3]
	}

	sum := ZeroMoney()
	var current Money
	for i, r := range use {
		total := BITotal(r)
		if i == 0 {
			current = total
		}
		sum = sum.Add(total)
	}

	avg := sum.Div(decimal.NewFromInt(int64(len(use))))
	return BIAggregate{Current: current, Average: avg, Periods: len(use)}
}

// BITotal applies the max/min/abs rule to one record. Any layer that
// presents a per-period total must use this, so displayed totals always
// match what the average is built from.
func BITotal(r BusinessIndicatorRecord) Money {
	return clampAbs(r.ILDC).Add(clampAbs(r.SC)).Add(clampAbs(r.FC))
}

func clampAbs(m Money) Money {
	v := m.Value
	if v.GreaterThan(componentBound) {
		v = componentBound
	} else if v.LessThan(componentBound.Neg()) {
		v = componentBound.Neg()
	}
	return Money{Value: v.Abs()}
}
