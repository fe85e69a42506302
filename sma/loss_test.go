package sma_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/capital-engine/sma"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func lossEvent(id string, year int, net string) sma.LossEventRecord {
	amount := sma.MustParseMoney(net)
	return sma.LossEventRecord{
		EventID:        sma.EventID(id),
		EntityID:       "BANK001",
		OccurrenceDate: sma.NewDate(year, time.March, 15),
		DiscoveryDate:  sma.NewDate(year, time.April, 1),
		AccountingDate: sma.NewDate(year, time.June, 30),
		GrossAmount:    amount,
		NetAmount:      amount,
	}
}

var calcDate = sma.NewDate(2023, time.December, 31)

// =============================================================================
// LOSS COMPONENT TESTS
// =============================================================================

func TestLossComponent_AverageOverDistinctYears(t *testing.T) {
	// GIVEN: Losses of 30m, 33m, 36m in three distinct years
	// WHEN: Computing the Loss Component
	// THEN: Average annual loss is 33m, LC is 495m (15x)

	calc := sma.LossCalculator{Params: sma.DefaultParameters()}
	agg := calc.Calculate([]sma.LossEventRecord{
		lossEvent("L1", 2021, "30000000"),
		lossEvent("L2", 2022, "33000000"),
		lossEvent("L3", 2023, "36000000"),
	}, calcDate)

	if got := agg.AverageAnnualLoss.String(); got != "33000000" {
		t.Errorf("AverageAnnualLoss = %s, want 33000000", got)
	}
	if got := agg.LC.String(); got != "495000000" {
		t.Errorf("LC = %s, want 495000000", got)
	}
	if agg.YearsWithData != 3 {
		t.Errorf("YearsWithData = %d, want 3", agg.YearsWithData)
	}
	if agg.QualifyingEvents != 3 {
		t.Errorf("QualifyingEvents = %d, want 3", agg.QualifyingEvents)
	}
}

func TestLossComponent_DistinctYearDivisor(t *testing.T) {
	// GIVEN: Three losses but only two distinct accounting years
	// WHEN: Computing the Loss Component
	// THEN: The divisor is 2, not 3 and not the window length

	calc := sma.LossCalculator{Params: sma.DefaultParameters()}
	agg := calc.Calculate([]sma.LossEventRecord{
		lossEvent("L1", 2022, "20000000"),
		lossEvent("L2", 2022, "20000000"),
		lossEvent("L3", 2023, "20000000"),
	}, calcDate)

	if got := agg.AverageAnnualLoss.String(); got != "30000000" {
		t.Errorf("AverageAnnualLoss = %s, want 30000000 (60m over 2 years)", got)
	}
	if agg.YearsWithData != 2 {
		t.Errorf("YearsWithData = %d, want 2", agg.YearsWithData)
	}
}

func TestLossComponent_ThresholdFiltering(t *testing.T) {
	// GIVEN: One loss exactly at the 10m threshold, one just below
	// WHEN: Computing the Loss Component
	// THEN: The at-threshold loss qualifies, the other does not

	calc := sma.LossCalculator{Params: sma.DefaultParameters()}
	agg := calc.Calculate([]sma.LossEventRecord{
		lossEvent("L1", 2022, "10000000"),
		lossEvent("L2", 2023, "9999999"),
	}, calcDate)

	if agg.QualifyingEvents != 1 {
		t.Fatalf("QualifyingEvents = %d, want 1", agg.QualifyingEvents)
	}
	if got := agg.AverageAnnualLoss.String(); got != "10000000" {
		t.Errorf("AverageAnnualLoss = %s, want 10000000", got)
	}
}

func TestLossComponent_LookbackWindowInclusive(t *testing.T) {
	// GIVEN: Calculation date 2023-12-31; the window starts 2013-12-31
	// WHEN: One loss on the window start, one the day before
	// THEN: Only the on-boundary loss qualifies

	calc := sma.LossCalculator{Params: sma.DefaultParameters()}

	inWindow := lossEvent("L1", 2013, "20000000")
	inWindow.AccountingDate = sma.NewDate(2013, time.December, 31)
	outOfWindow := lossEvent("L2", 2013, "20000000")
	outOfWindow.AccountingDate = sma.NewDate(2013, time.December, 30)

	agg := calc.Calculate([]sma.LossEventRecord{inWindow, outOfWindow}, calcDate)

	if agg.QualifyingEvents != 1 {
		t.Errorf("QualifyingEvents = %d, want 1", agg.QualifyingEvents)
	}
}

func TestLossComponent_ExcludedEventsIgnored(t *testing.T) {
	// GIVEN: Two equal losses, one excluded
	// WHEN: Computing the Loss Component
	// THEN: Only the non-excluded loss contributes

	calc := sma.LossCalculator{Params: sma.DefaultParameters()}

	excluded := lossEvent("L1", 2022, "50000000")
	excluded.IsExcluded = true

	agg := calc.Calculate([]sma.LossEventRecord{
		excluded,
		lossEvent("L2", 2023, "50000000"),
	}, calcDate)

	if agg.QualifyingEvents != 1 {
		t.Errorf("QualifyingEvents = %d, want 1", agg.QualifyingEvents)
	}
	if got := agg.LC.String(); got != "750000000" {
		t.Errorf("LC = %s, want 750000000", got)
	}
}

func TestLossComponent_LinearInLossAmounts(t *testing.T) {
	// GIVEN: A loss history and the same history with every amount doubled
	// WHEN: Computing the Loss Component for both
	// THEN: The LC exactly doubles

	calc := sma.LossCalculator{Params: sma.DefaultParameters()}

	base := []sma.LossEventRecord{
		lossEvent("L1", 2019, "12000000"),
		lossEvent("L2", 2021, "30000000"),
		lossEvent("L3", 2021, "45000000"),
		lossEvent("L4", 2023, "33000000"),
	}
	doubled := make([]sma.LossEventRecord, len(base))
	for i, e := range base {
		e.NetAmount = e.NetAmount.Mul(decimal.NewFromInt(2))
		e.GrossAmount = e.GrossAmount.Mul(decimal.NewFromInt(2))
		doubled[i] = e
	}

	lc := calc.Calculate(base, calcDate).LC
	lc2 := calc.Calculate(doubled, calcDate).LC

	if !lc2.Equal(lc.Mul(decimal.NewFromInt(2))) {
		t.Errorf("LC not linear: base %s, doubled %s", lc, lc2)
	}
}

func TestLossComponent_NoQualifyingLosses_ZeroAggregate(t *testing.T) {
	// GIVEN: No losses at all
	// WHEN: Computing the Loss Component
	// THEN: Everything is zero, nothing panics

	calc := sma.LossCalculator{Params: sma.DefaultParameters()}
	agg := calc.Calculate(nil, calcDate)

	if !agg.LC.IsZero() {
		t.Errorf("LC = %s, want 0", agg.LC)
	}
	if agg.YearsWithData != 0 {
		t.Errorf("YearsWithData = %d, want 0", agg.YearsWithData)
	}
}

// =============================================================================
// RECOVERY AND EXCLUSION TESTS
// =============================================================================

func TestApplyRecovery_NetsAgainstEvent(t *testing.T) {
	// GIVEN: A 50m loss
	// WHEN: Applying a 20m recovery
	// THEN: Net drops to 30m, gross is untouched

	event := lossEvent("L1", 2023, "50000000")
	updated, err := sma.ApplyRecovery(event, sma.RecoveryRecord{
		LossEventID: "L1",
		Amount:      sma.MustParseMoney("20000000"),
		ReceiptDate: sma.NewDate(2023, time.August, 1),
	})
	if err != nil {
		t.Fatalf("ApplyRecovery failed: %v", err)
	}

	if got := updated.NetAmount.String(); got != "30000000" {
		t.Errorf("NetAmount = %s, want 30000000", got)
	}
	if got := updated.GrossAmount.String(); got != "50000000" {
		t.Errorf("GrossAmount = %s, want 50000000", got)
	}
}

func TestApplyRecovery_ExceedingGross_Rejected(t *testing.T) {
	// GIVEN: A 50m loss with 40m already recovered
	// WHEN: Applying another 20m recovery
	// THEN: Rejected; the event is unchanged

	event := lossEvent("L1", 2023, "50000000")
	event.NetAmount = sma.MustParseMoney("10000000")

	unchanged, err := sma.ApplyRecovery(event, sma.RecoveryRecord{
		LossEventID: "L1",
		Amount:      sma.MustParseMoney("20000000"),
	})

	if !errors.Is(err, sma.ErrRecoveryExceedsGross) {
		t.Fatalf("err = %v, want ErrRecoveryExceedsGross", err)
	}
	if got := unchanged.NetAmount.String(); got != "10000000" {
		t.Errorf("NetAmount = %s, want unchanged 10000000", got)
	}
}

func TestExclude_OneWayWithApproval(t *testing.T) {
	// GIVEN: A loss event
	// WHEN: Excluding it with an approval reference, then again
	// THEN: First exclusion sticks; the second is rejected

	event := lossEvent("L1", 2023, "50000000")

	excluded, err := sma.Exclude(event, "divested business line", "APPROVAL-2023-017")
	if err != nil {
		t.Fatalf("Exclude failed: %v", err)
	}
	if !excluded.IsExcluded {
		t.Fatal("event should be excluded")
	}

	_, err = sma.Exclude(excluded, "again", "APPROVAL-2023-018")
	if !errors.Is(err, sma.ErrAlreadyExcluded) {
		t.Errorf("err = %v, want ErrAlreadyExcluded", err)
	}
}

func TestExclude_WithoutApproval_Rejected(t *testing.T) {
	// GIVEN: A loss event
	// WHEN: Excluding without an approval reference
	// THEN: Rejected

	_, err := sma.Exclude(lossEvent("L1", 2023, "50000000"), "reason", "")
	if !errors.Is(err, sma.ErrApprovalReferenceRequired) {
		t.Errorf("err = %v, want ErrApprovalReferenceRequired", err)
	}
}
