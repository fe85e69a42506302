package sma_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/warp/capital-engine/sma"
)

func baseResult(t *testing.T) *sma.CalculationResult {
	t.Helper()
	calc, err := sma.NewCalculator(sma.DefaultParameters())
	if err != nil {
		t.Fatalf("NewCalculator failed: %v", err)
	}
	result, err := calc.Calculate(regionalBankInput())
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	return result
}

func TestApplyOverride_CapitalAdjustment(t *testing.T) {
	// GIVEN: A completed calculation with ORC 9.36bn
	// WHEN: A supervisor imposes an absolute ORC of 5bn
	// THEN: The derived result carries the new ORC, a recomputed RWA and
	//       full provenance; the original is untouched

	original := baseResult(t)
	adjustment := sma.MustParseMoney("5000000000")

	derived, err := sma.ApplyOverride(original, sma.OverrideSpec{
		Type:              sma.OverrideCapitalAdjustment,
		CapitalAdjustment: &adjustment,
		NewRunID:          "run-002",
		Approver:          "supervisor-a",
		Reason:            "pending legal settlement not yet booked",
	}, sma.DefaultParameters().RWAMultiplier)
	if err != nil {
		t.Fatalf("ApplyOverride failed: %v", err)
	}

	if got := derived.ORC.String(); got != "5000000000" {
		t.Errorf("ORC = %s, want 5000000000", got)
	}
	if got := derived.RWA.String(); got != "62500000000" {
		t.Errorf("RWA = %s, want 62500000000", got)
	}
	if derived.RunID != "run-002" {
		t.Errorf("RunID = %s, want run-002", derived.RunID)
	}

	ov := derived.Override
	if ov == nil {
		t.Fatal("derived result has no provenance")
	}
	if ov.Type != sma.OverrideCapitalAdjustment || ov.OriginalRunID != original.RunID {
		t.Errorf("provenance = %+v", ov)
	}
	if ov.Approver != "supervisor-a" || ov.Reason == "" {
		t.Errorf("provenance approver/reason = %q / %q", ov.Approver, ov.Reason)
	}

	// Original remains as calculated.
	if got := original.ORC.String(); got != "9360000000" {
		t.Errorf("original ORC mutated: %s", got)
	}
	if original.Override != nil {
		t.Error("original result gained provenance")
	}
}

func TestApplyOverride_ILMRecompute(t *testing.T) {
	// GIVEN: A completed calculation with BIC 9.36bn and a gated ILM
	// WHEN: A supervisor overrides the ILM to 1.2
	// THEN: ORC = round(BIC * 1.2, 2) and the gate flags are cleared

	original := baseResult(t)
	ilm := decimal.NewFromFloat(1.2)

	derived, err := sma.ApplyOverride(original, sma.OverrideSpec{
		Type:        sma.OverrideILM,
		ILMOverride: &ilm,
		NewRunID:    "run-003",
		Approver:    "supervisor-b",
		Reason:      "peer-group ILM benchmark",
	}, sma.DefaultParameters().RWAMultiplier)
	if err != nil {
		t.Fatalf("ApplyOverride failed: %v", err)
	}

	// 9360000000 * 1.2 = 11232000000
	if got := derived.ORC.String(); got != "11232000000" {
		t.Errorf("ORC = %s, want 11232000000", got)
	}
	if got := derived.RWA.String(); got != "140400000000" {
		t.Errorf("RWA = %s, want 140400000000", got)
	}
	if derived.ILMGated || derived.ILMGateReason != "" {
		t.Errorf("gate flags not cleared: %v %q", derived.ILMGated, derived.ILMGateReason)
	}
	if !derived.ILM.Equal(ilm) {
		t.Errorf("ILM = %s, want 1.2", derived.ILM)
	}
}

func TestApplyOverride_BreakdownIsCopied(t *testing.T) {
	// GIVEN: A derived result
	// WHEN: Mutating its BIC breakdown
	// THEN: The original's breakdown is unaffected

	original := baseResult(t)
	adjustment := sma.MustParseMoney("5000000000")

	derived, err := sma.ApplyOverride(original, sma.OverrideSpec{
		Type:              sma.OverrideCapitalAdjustment,
		CapitalAdjustment: &adjustment,
		NewRunID:          "run-004",
		Approver:          "supervisor-a",
		Reason:            "adjustment",
	}, sma.DefaultParameters().RWAMultiplier)
	if err != nil {
		t.Fatalf("ApplyOverride failed: %v", err)
	}

	want := original.BICBreakdown[sma.Bucket1].String()
	derived.BICBreakdown[sma.Bucket1] = sma.ZeroMoney()

	if got := original.BICBreakdown[sma.Bucket1].String(); got != want {
		t.Errorf("original breakdown mutated through derived copy: %s", got)
	}
}

func TestApplyOverride_ValidationCollected(t *testing.T) {
	// GIVEN: An override spec missing everything and reusing the run id
	// WHEN: Applying
	// THEN: All problems come back at once

	original := baseResult(t)

	_, err := sma.ApplyOverride(original, sma.OverrideSpec{
		Type:     sma.OverrideCapitalAdjustment,
		NewRunID: original.RunID,
	}, sma.DefaultParameters().RWAMultiplier)

	var verrs sma.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("err = %v, want ValidationErrors", err)
	}

	got := make(map[string]bool, len(verrs))
	for _, ve := range verrs {
		got[ve.Code] = true
	}
	for _, code := range []string{"run_id_reused", "approver_missing", "reason_missing", "adjustment_missing"} {
		if !got[code] {
			t.Errorf("missing validation code %q in %v", code, verrs)
		}
	}
}

func TestApplyOverride_UnknownType_Rejected(t *testing.T) {
	// GIVEN: An override type outside the closed set
	// WHEN: Applying
	// THEN: Rejected with override_type_unknown

	_, err := sma.ApplyOverride(baseResult(t), sma.OverrideSpec{
		Type:     "haircut",
		NewRunID: "run-005",
		Approver: "supervisor-a",
		Reason:   "r",
	}, sma.DefaultParameters().RWAMultiplier)

	var verrs sma.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("err = %v, want ValidationErrors", err)
	}
	found := false
	for _, ve := range verrs {
		if ve.Code == "override_type_unknown" {
			found = true
		}
	}
	if !found {
		t.Errorf("verrs = %v, want override_type_unknown", verrs)
	}
}
