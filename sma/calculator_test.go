package sma_test

import (
	"errors"
	"testing"
	"time"

	"github.com/warp/capital-engine/sma"
)

// regionalBankInput is a complete bucket 1 profile: 78bn average BI and
// 33m average annual losses.
func regionalBankInput() sma.CalculationInput {
	return sma.CalculationInput{
		EntityID:        "BANK001",
		CalculationDate: sma.NewDate(2023, time.December, 31),
		RunID:           "run-001",
		BIData: []sma.BusinessIndicatorRecord{
			biRecord("2023", "54000000000", "20000000000", "6000000000"),
			biRecord("2022", "52000000000", "20000000000", "6000000000"),
			biRecord("2021", "50000000000", "20000000000", "6000000000"),
		},
		LossData: []sma.LossEventRecord{
			lossEvent("L1", 2021, "30000000"),
			lossEvent("L2", 2022, "33000000"),
			lossEvent("L3", 2023, "36000000"),
		},
	}
}

func TestCalculate_RegionalBank_EndToEnd(t *testing.T) {
	// GIVEN: A bucket 1 bank averaging a 78bn BI and 33m annual losses
	// WHEN: Running the full calculation
	// THEN: BIC 9.36bn, LC 495m, gated ILM of 1, ORC 9.36bn, RWA 117bn

	calc, err := sma.NewCalculator(sma.DefaultParameters())
	if err != nil {
		t.Fatalf("NewCalculator failed: %v", err)
	}

	result, err := calc.Calculate(regionalBankInput())
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	if got := result.BIAverage.String(); got != "78000000000" {
		t.Errorf("BIAverage = %s, want 78000000000", got)
	}
	if result.Bucket != sma.Bucket1 {
		t.Errorf("Bucket = %s, want bucket_1", result.Bucket)
	}
	if got := result.BIC.String(); got != "9360000000" {
		t.Errorf("BIC = %s, want 9360000000", got)
	}
	if got := result.LC.String(); got != "495000000" {
		t.Errorf("LC = %s, want 495000000", got)
	}
	if !result.ILMGated {
		t.Error("bucket 1 ILM should be gated")
	}
	if got := result.ORC.String(); got != "9360000000" {
		t.Errorf("ORC = %s, want 9360000000", got)
	}
	if got := result.RWA.String(); got != "117000000000" {
		t.Errorf("RWA = %s, want 117000000000", got)
	}
	if result.ParameterVersion != "1.0.0" || result.ModelVersion != sma.ModelVersion {
		t.Errorf("version pins = %s / %s", result.ParameterVersion, result.ModelVersion)
	}
}

func TestCalculate_Deterministic(t *testing.T) {
	// GIVEN: The same input twice
	// WHEN: Calculating
	// THEN: Every numeric output is bit-identical

	calc, _ := sma.NewCalculator(sma.DefaultParameters())

	first, err := calc.Calculate(regionalBankInput())
	if err != nil {
		t.Fatalf("first Calculate failed: %v", err)
	}
	second, err := calc.Calculate(regionalBankInput())
	if err != nil {
		t.Fatalf("second Calculate failed: %v", err)
	}

	pairs := []struct {
		name string
		a, b string
	}{
		{"BIAverage", first.BIAverage.String(), second.BIAverage.String()},
		{"BIC", first.BIC.String(), second.BIC.String()},
		{"LC", first.LC.String(), second.LC.String()},
		{"ILM", first.ILM.String(), second.ILM.String()},
		{"ORC", first.ORC.String(), second.ORC.String()},
		{"RWA", first.RWA.String(), second.RWA.String()},
	}
	for _, p := range pairs {
		if p.a != p.b {
			t.Errorf("%s differs between runs: %s vs %s", p.name, p.a, p.b)
		}
	}
}

func TestCalculate_ValidationCollectsAllProblems(t *testing.T) {
	// GIVEN: An input with several independent problems
	// WHEN: Calculating
	// THEN: ALL problems come back in one list; nothing executed

	calc, _ := sma.NewCalculator(sma.DefaultParameters())

	badLoss := lossEvent("", 2022, "20000000")
	badLoss.NetAmount = sma.MustParseMoney("-5")

	_, err := calc.Calculate(sma.CalculationInput{
		// RunID, EntityID, CalculationDate all missing; no BI data
		LossData: []sma.LossEventRecord{badLoss},
	})

	var verrs sma.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("err = %v, want ValidationErrors", err)
	}

	wantCodes := []string{
		"run_id_missing", "entity_id_missing", "calculation_date_missing",
		"bi_data_empty", "loss_event_id_missing", "loss_amount_negative",
	}
	got := make(map[string]bool, len(verrs))
	for _, ve := range verrs {
		got[ve.Code] = true
	}
	for _, code := range wantCodes {
		if !got[code] {
			t.Errorf("missing validation code %q in %v", code, verrs)
		}
	}
}

func TestCalculate_EmptyBIData_Message(t *testing.T) {
	// GIVEN: An otherwise valid input with no BI records
	// WHEN: Validating
	// THEN: The bi_data problem carries the documented message

	calc, _ := sma.NewCalculator(sma.DefaultParameters())
	input := regionalBankInput()
	input.BIData = nil

	_, err := calc.Calculate(input)
	var verrs sma.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("err = %v, want ValidationErrors", err)
	}
	if len(verrs) != 1 || verrs[0].Message != "Business Indicator data cannot be empty" {
		t.Errorf("verrs = %v", verrs)
	}
}

func TestNewCalculator_InconsistentParameters_Rejected(t *testing.T) {
	// GIVEN: Thresholds in the wrong order
	// WHEN: Constructing the calculator
	// THEN: A ConfigurationError names the offending parameter

	params := sma.DefaultParameters()
	params.BucketThreshold1 = params.BucketThreshold2

	_, err := sma.NewCalculator(params)
	var cerr *sma.ConfigurationError
	if !errors.As(err, &cerr) {
		t.Fatalf("err = %v, want *ConfigurationError", err)
	}
	if cerr.Parameter != "bucket_threshold_1" {
		t.Errorf("Parameter = %q, want bucket_threshold_1", cerr.Parameter)
	}
}

func TestCalculate_RoundingOnlyAtFinalFigures(t *testing.T) {
	// GIVEN: Parameters producing a fractional ORC
	// WHEN: Calculating
	// THEN: ORC and RWA carry at most 2 decimal places while the BIC keeps
	//       its full precision

	params := sma.DefaultParameters()
	calc, _ := sma.NewCalculator(params)

	input := regionalBankInput()
	// A BI average with cents: 78000000000.125
	input.BIData = []sma.BusinessIndicatorRecord{
		biRecord("2023", "78000000000.125", "0", "0"),
	}

	result, err := calc.Calculate(input)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	// BIC = 78000000000.125 * 0.12 = 9360000000.015 (unrounded)
	if got := result.BIC.String(); got != "9360000000.015" {
		t.Errorf("BIC = %s, want unrounded 9360000000.015", got)
	}
	// ORC = round(9360000000.015, 2) = 9360000000.02 (half-up)
	if got := result.ORC.String(); got != "9360000000.02" {
		t.Errorf("ORC = %s, want 9360000000.02", got)
	}
	// RWA = round(9360000000.02 * 12.5, 2) = 117000000000.25
	if got := result.RWA.String(); got != "117000000000.25" {
		t.Errorf("RWA = %s, want 117000000000.25", got)
	}
}
