/*
loss.go - Loss Component calculation

PURPOSE:
  Filters and aggregates the historical loss-event record into an average
  annual loss figure and the Loss Component (LC).

QUALIFYING LOSSES:
  An event qualifies when all of:
    - it is not excluded (exclusion is a one-way, approved transition)
    - net amount >= ParameterSet.MinLossThreshold
    - accounting date falls within the 10-year lookback window ending at
      the calculation date (inclusive on both ends)

YEARS WITH DATA:
  The divisor is the number of DISTINCT calendar years of accounting dates
  among qualifying losses, not the window length. A bank with losses in only
  5 of the 10 years divides by 5. This is also the data-quality year count
  the ILM gating consumes.

RECOVERIES:
  Net amounts arrive already netted (net = gross - sum of recoveries); the
  storage layer enforces that recoveries never exceed gross. ApplyRecovery
  is provided for callers that net in memory.
*/
package sma

import "github.com/shopspring/decimal"

// lookbackYears is the fixed regulatory loss window.
const lookbackYears = 10

// LossCalculator computes the Loss Component.
type LossCalculator struct {
	Params ParameterSet
}

// Calculate aggregates qualifying losses into the LossAggregate.
// Inputs must already have passed validation (see calculator.go).
// With no qualifying losses, everything is zero and LC is zero.
func (c LossCalculator) Calculate(events []LossEventRecord, calculationDate Date) LossAggregate {
	windowStart := calculationDate.AddYears(-lookbackYears)

	total := ZeroMoney()
	years := make(map[int]struct{})
	qualifying := 0

	for _, e := range events {
		if !c.qualifies(e, windowStart, calculationDate) {
			continue
		}
		total = total.Add(e.NetAmount)
		years[e.AccountingDate.Year()] = struct{}{}
		qualifying++
	}

	if qualifying == 0 {
		return LossAggregate{LC: ZeroMoney(), AverageAnnualLoss: ZeroMoney()}
	}

	avg := total.Div(decimal.NewFromInt(int64(len(years))))
	lc := avg.Mul(c.Params.LCMultiplier)

	return LossAggregate{
		LC:                lc,
		AverageAnnualLoss: avg,
		YearsWithData:     len(years),
		QualifyingEvents:  qualifying,
	}
}

func (c LossCalculator) qualifies(e LossEventRecord, windowStart, windowEnd Date) bool {
	if e.IsExcluded {
		return false
	}
	if e.NetAmount.LessThan(c.Params.MinLossThreshold) {
		return false
	}
	return e.AccountingDate.AfterOrEqual(windowStart) && e.AccountingDate.BeforeOrEqual(windowEnd)
}

// ApplyRecovery nets a recovery against a loss event, returning the updated
// event. Returns ErrRecoveryExceedsGross if the recovery would push the net
// amount below zero; the event is unchanged in that case.
func ApplyRecovery(e LossEventRecord, r RecoveryRecord) (LossEventRecord, error) {
	updated := e.NetAmount.Sub(r.Amount)
	if updated.IsNegative() {
		return e, ErrRecoveryExceedsGross
	}
	e.NetAmount = updated
	return e, nil
}

// Exclude marks a loss event excluded. Exclusion is one-way and requires a
// regulatory approval reference; re-excluding is an error.
func Exclude(e LossEventRecord, reason, approvalReference string) (LossEventRecord, error) {
	if e.IsExcluded {
		return e, ErrAlreadyExcluded
	}
	if approvalReference == "" {
		return e, ErrApprovalReferenceRequired
	}
	e.IsExcluded = true
	e.ExclusionReason = reason
	e.RBIApprovalReference = approvalReference
	return e, nil
}
