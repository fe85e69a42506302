/*
calculator.go - Calculation orchestration

PURPOSE:
  Wires the component calculators into the single entry point:

    validate -> aggregate BI -> classify -> BIC || LC -> ILM -> compose

  A calculation is a pure function of (BI records, loss records,
  ParameterSet, calculation date, run id). No I/O happens inside; the
  caller supplies already-fetched data and decides threading and timeouts.

FAILURE MODEL:
  - ValidationErrors: every input problem, collected; nothing executes
  - *ConfigurationError: inconsistent parameters; immediate
  - Gated ILM is NOT a failure - it is a flagged outcome in the result

ROUNDING:
  Half-up to 2 decimal places happens exactly twice, both here in the
  composer: ORC = round(BIC * ILM, 2) and RWA = round(ORC * multiplier, 2).
  Intermediates are never rounded.
*/
package sma

import (
	"fmt"
	"time"
)

// ModelVersion identifies the calculation methodology implementation.
// Pinned into every result for reproducibility.
const ModelVersion = "1.0.0"

// CalculationInput bundles everything one run consumes.
type CalculationInput struct {
	EntityID        EntityID
	CalculationDate Date
	RunID           RunID

	// Most recent first; the aggregator uses at most the first 3.
	BIData []BusinessIndicatorRecord

	// Unordered; the loss calculator applies the window itself.
	LossData []LossEventRecord
}

// Calculator is the SMA engine. Construct once per parameter set and share
// freely: it holds no mutable state.
type Calculator struct {
	params     ParameterSet
	aggregator Aggregator
	classifier Classifier
	bic        BICCalculator
	loss       LossCalculator
	ilm        ILMCalculator
}

// NewCalculator builds a Calculator around one resolved parameter set.
// Returns a *ConfigurationError if the set is internally inconsistent.
func NewCalculator(params ParameterSet) (*Calculator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{
		params:     params,
		classifier: Classifier{Params: params},
		bic:        BICCalculator{Params: params},
		loss:       LossCalculator{Params: params},
		ilm:        ILMCalculator{Params: params},
	}, nil
}

// Params returns the parameter set this calculator is pinned to.
func (c *Calculator) Params() ParameterSet { return c.params }

// Calculate runs the full SMA calculation. On validation failure it returns
// the complete list of problems and no partial work is performed.
func (c *Calculator) Calculate(input CalculationInput) (*CalculationResult, error) {
	if errs := c.ValidateInputs(input); len(errs) > 0 {
		return nil, errs
	}

	bi := c.aggregator.Aggregate(input.BIData)

	// Loss aggregation runs before classification so the distinct-year count
	// can feed the data-quality flag.
	losses := c.loss.Calculate(input.LossData, input.CalculationDate)

	classification := c.classifier.Classify(bi.Average, losses.YearsWithData)
	bicResult := c.bic.Calculate(bi.Average, classification.Bucket)
	ilmResult := c.ilm.Calculate(losses.LC, bicResult.BIC, classification.Bucket, losses.YearsWithData)

	orc := bicResult.BIC.Mul(ilmResult.ILM).Round2()
	rwa := orc.Mul(c.params.RWAMultiplier).Round2()

	return &CalculationResult{
		RunID:             input.RunID,
		EntityID:          input.EntityID,
		CalculationDate:   input.CalculationDate,
		BICurrent:         bi.Current,
		BIAverage:         bi.Average,
		Bucket:            classification.Bucket,
		BIC:               bicResult.BIC,
		BICBreakdown:      bicResult.Breakdown,
		LC:                losses.LC,
		AverageAnnualLoss: losses.AverageAnnualLoss,
		LossDataYears:     losses.YearsWithData,
		ILM:               ilmResult.ILM,
		ILMGated:          ilmResult.Gated,
		ILMGateReason:     ilmResult.GateReason,
		ORC:               orc,
		RWA:               rwa,
		ParameterVersion:  c.params.Version,
		ModelVersion:      ModelVersion,
		Timestamp:         time.Now().UTC(),
	}, nil
}

// ILMChecks re-evaluates the gating metadata for a completed calculation.
// Used by the lineage layer, which records every check and its outcome.
func (c *Calculator) ILMChecks(result *CalculationResult) []GateCheck {
	return c.ilm.Calculate(result.LC, result.BIC, result.Bucket, result.LossDataYears).Checks
}

// =============================================================================
// INPUT VALIDATION - All problems collected, never fail-fast
// =============================================================================

// ValidateInputs checks the calculation input and returns EVERY problem
// found. An empty return means the calculation may proceed.
func (c *Calculator) ValidateInputs(input CalculationInput) ValidationErrors {
	var errs ValidationErrors

	if input.RunID == "" {
		errs = append(errs, ValidationError{
			Code: "run_id_missing", Message: "run_id is required", Field: "run_id",
		})
	}
	if input.EntityID == "" {
		errs = append(errs, ValidationError{
			Code: "entity_id_missing", Message: "entity_id is required", Field: "entity_id",
		})
	}
	if input.CalculationDate.IsZero() {
		errs = append(errs, ValidationError{
			Code: "calculation_date_missing", Message: "calculation_date is required", Field: "calculation_date",
		})
	}

	if len(input.BIData) == 0 {
		errs = append(errs, ValidationError{
			Code: "bi_data_empty", Message: "Business Indicator data cannot be empty", Field: "bi_data",
		})
	}
	for i, r := range input.BIData {
		if r.EntityID == "" {
			errs = append(errs, ValidationError{
				Code:    "bi_entity_id_missing",
				Message: "Business Indicator record has no entity_id",
				Field:   fmt.Sprintf("bi_data[%d].entity_id", i),
			})
		}
		if r.Period == "" {
			errs = append(errs, ValidationError{
				Code:    "bi_period_missing",
				Message: "Business Indicator record has no period",
				Field:   fmt.Sprintf("bi_data[%d].period", i),
			})
		}
	}

	for i, e := range input.LossData {
		if e.EventID == "" {
			errs = append(errs, ValidationError{
				Code:    "loss_event_id_missing",
				Message: "loss event has no event_id",
				Field:   fmt.Sprintf("loss_data[%d].event_id", i),
			})
		}
		if e.EntityID == "" {
			errs = append(errs, ValidationError{
				Code:    "loss_entity_id_missing",
				Message: "loss event has no entity_id",
				Field:   fmt.Sprintf("loss_data[%d].entity_id", i),
			})
		}
		if e.NetAmount.IsNegative() {
			errs = append(errs, ValidationError{
				Code:    "loss_amount_negative",
				Message: "loss event net amount cannot be negative",
				Field:   fmt.Sprintf("loss_data[%d].net_amount", i),
			})
		}
	}

	return errs
}
