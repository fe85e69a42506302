/*
override.go - Supervisor overrides

PURPOSE:
  Lets the governance collaborator derive a corrected result from an
  existing calculation without ever touching the original. Two override
  shapes exist:

    capital_adjustment: ORC is replaced with an absolute supervisor value
    ilm_override:       ORC is recomputed as round(BIC * override_ilm, 2)

  Either way RWA is recomputed from the new ORC and the result carries full
  provenance (type, original run, approver, reason). Results remain
  append-only: the derived result gets its OWN run id.
*/
package sma

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OverrideType is the closed set of supported override shapes.
type OverrideType string

const (
	OverrideCapitalAdjustment OverrideType = "capital_adjustment"
	OverrideILM               OverrideType = "ilm_override"
)

// OverrideSpec describes the correction a supervisor wants applied.
type OverrideSpec struct {
	Type OverrideType

	// For OverrideCapitalAdjustment: the absolute ORC to impose.
	CapitalAdjustment *Money

	// For OverrideILM: the multiplier to recompute ORC with.
	ILMOverride *decimal.Decimal

	NewRunID RunID
	Approver string
	Reason   string
}

// ApplyOverride derives a new result from original according to spec.
// The original is copied, never mutated.
func ApplyOverride(original *CalculationResult, spec OverrideSpec, rwaMultiplier decimal.Decimal) (*CalculationResult, error) {
	if errs := validateOverride(original, spec); len(errs) > 0 {
		return nil, errs
	}

	derived := *original
	derived.RunID = spec.NewRunID
	derived.Timestamp = time.Now().UTC()

	switch spec.Type {
	case OverrideCapitalAdjustment:
		derived.ORC = spec.CapitalAdjustment.Round2()
	case OverrideILM:
		derived.ILM = *spec.ILMOverride
		derived.ILMGated = false
		derived.ILMGateReason = ""
		derived.ORC = original.BIC.Mul(*spec.ILMOverride).Round2()
	}

	derived.RWA = derived.ORC.Mul(rwaMultiplier).Round2()
	derived.Override = &OverrideProvenance{
		Type:          spec.Type,
		OriginalRunID: original.RunID,
		Approver:      spec.Approver,
		Reason:        spec.Reason,
		AppliedAt:     derived.Timestamp,
	}

	// Breakdown maps are shared structure; copy so the derived result owns
	// its own.
	derived.BICBreakdown = make(BICBreakdown, len(original.BICBreakdown))
	for k, v := range original.BICBreakdown {
		derived.BICBreakdown[k] = v
	}

	return &derived, nil
}

func validateOverride(original *CalculationResult, spec OverrideSpec) ValidationErrors {
	var errs ValidationErrors

	if original == nil {
		errs = append(errs, ValidationError{
			Code: "original_missing", Message: "original result is required", Field: "original",
		})
		return errs
	}
	if spec.NewRunID == "" {
		errs = append(errs, ValidationError{
			Code: "run_id_missing", Message: "new run_id is required", Field: "new_run_id",
		})
	}
	if spec.NewRunID == original.RunID {
		errs = append(errs, ValidationError{
			Code: "run_id_reused", Message: "derived result must have its own run_id", Field: "new_run_id",
		})
	}
	if spec.Approver == "" {
		errs = append(errs, ValidationError{
			Code: "approver_missing", Message: "override approver is required", Field: "approver",
		})
	}
	if spec.Reason == "" {
		errs = append(errs, ValidationError{
			Code: "reason_missing", Message: "override reason is required", Field: "reason",
		})
	}

	switch spec.Type {
	case OverrideCapitalAdjustment:
		if spec.CapitalAdjustment == nil {
			errs = append(errs, ValidationError{
				Code: "adjustment_missing", Message: "capital_adjustment value is required", Field: "capital_adjustment",
			})
		} else if spec.CapitalAdjustment.IsNegative() {
			errs = append(errs, ValidationError{
				Code: "adjustment_negative", Message: "capital_adjustment cannot be negative", Field: "capital_adjustment",
			})
		}
	case OverrideILM:
		if spec.ILMOverride == nil {
			errs = append(errs, ValidationError{
				Code: "ilm_missing", Message: "ilm_override value is required", Field: "ilm_override",
			})
		} else if spec.ILMOverride.IsNegative() {
			errs = append(errs, ValidationError{
				Code: "ilm_negative", Message: "ilm_override cannot be negative", Field: "ilm_override",
			})
		}
	default:
		errs = append(errs, ValidationError{
			Code:    "override_type_unknown",
			Message: fmt.Sprintf("unknown override type %q", spec.Type),
			Field:   "type",
		})
	}

	return errs
}
