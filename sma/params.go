/*
params.go - The ParameterSet contract

PURPOSE:
  Defines the immutable, versioned bag of coefficients and thresholds every
  downstream component consumes. The engine is handed exactly ONE resolved
  ParameterSet per calculation and uses it consistently: the thresholds that
  classify the bucket are the same values that bound the BIC tiers.

GOVERNANCE:
  Parameter versions are produced by an external maker-checker-approver
  workflow. This package only consumes the resolved outcome; the factory
  package resolves which version is effective at a calculation date.

CONSISTENCY RULES (ConfigurationError if violated):
  - threshold_1 < threshold_2, both positive
  - all marginal coefficients non-negative
  - lc_multiplier, rwa_multiplier positive
  - min_loss_threshold non-negative
  - min_data_quality_years non-negative

SEE ALSO:
  - ../factory/parameters.go: JSON definitions and version resolution
  - bucket.go, bic.go, loss.go, ilm.go: Consumers
*/
package sma

import "github.com/shopspring/decimal"

// =============================================================================
// PARAMETER SET - Immutable once activated
// =============================================================================

// ParameterSet is one resolved, version-pinned set of SMA parameters.
// Read-only after construction; safe to share across concurrent calculations.
type ParameterSet struct {
	Version ParameterVersion

	// Bucket thresholds on the averaged Business Indicator. Inclusive on the
	// lower bound only: BI average exactly at a threshold belongs to the
	// HIGHER bucket.
	BucketThreshold1 Money
	BucketThreshold2 Money

	// Marginal coefficients per tier, applied to the slice of BI average
	// falling inside each tier.
	MarginalCoefficient1 decimal.Decimal
	MarginalCoefficient2 decimal.Decimal
	MarginalCoefficient3 decimal.Decimal

	// Loss component scaling factor (nominally 15).
	LCMultiplier decimal.Decimal

	// RWA scaling factor (nominally 12.5).
	RWAMultiplier decimal.Decimal

	// Losses with net amount below this threshold are ignored.
	MinLossThreshold Money

	// Minimum distinct years of qualifying loss data required before the ILM
	// may deviate from 1.
	MinDataQualityYears int

	// National discretion: when set, the ILM is always 1.
	NationalDiscretionILMOne bool
}

// DefaultParameters returns the built-in regulatory parameter set:
// thresholds of 80,000,000,000 and 2,400,000,000,000, coefficients
// 0.12/0.15/0.18, LC multiplier 15, RWA multiplier 12.5, minimum loss
// threshold 10,000,000 and a 5-year data quality requirement.
func DefaultParameters() ParameterSet {
	return ParameterSet{
		Version:              "1.0.0",
		BucketThreshold1:     NewMoneyFromInt(80_000_000_000),
		BucketThreshold2:     NewMoneyFromInt(2_400_000_000_000),
		MarginalCoefficient1: decimal.NewFromFloat(0.12),
		MarginalCoefficient2: decimal.NewFromFloat(0.15),
		MarginalCoefficient3: decimal.NewFromFloat(0.18),
		LCMultiplier:         decimal.NewFromInt(15),
		RWAMultiplier:        decimal.NewFromFloat(12.5),
		MinLossThreshold:     NewMoneyFromInt(10_000_000),
		MinDataQualityYears:  5,
	}
}

// Validate checks the internal consistency of the parameter set.
// Returns a *ConfigurationError on the first inconsistency found:
// configuration errors are fatal, so there is nothing to collect.
func (p ParameterSet) Validate() error {
	if !p.BucketThreshold1.IsPositive() {
		return &ConfigurationError{Parameter: "bucket_threshold_1", Message: "must be positive"}
	}
	if !p.BucketThreshold2.IsPositive() {
		return &ConfigurationError{Parameter: "bucket_threshold_2", Message: "must be positive"}
	}
	if p.BucketThreshold1.GreaterOrEqual(p.BucketThreshold2) {
		return &ConfigurationError{Parameter: "bucket_threshold_1", Message: "must be below bucket_threshold_2"}
	}
	for _, c := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"marginal_coefficient_1", p.MarginalCoefficient1},
		{"marginal_coefficient_2", p.MarginalCoefficient2},
		{"marginal_coefficient_3", p.MarginalCoefficient3},
	} {
		if c.value.IsNegative() {
			return &ConfigurationError{Parameter: c.name, Message: "must not be negative"}
		}
	}
	if !p.LCMultiplier.IsPositive() {
		return &ConfigurationError{Parameter: "lc_multiplier", Message: "must be positive"}
	}
	if !p.RWAMultiplier.IsPositive() {
		return &ConfigurationError{Parameter: "rwa_multiplier", Message: "must be positive"}
	}
	if p.MinLossThreshold.IsNegative() {
		return &ConfigurationError{Parameter: "min_loss_threshold", Message: "must not be negative"}
	}
	if p.MinDataQualityYears < 0 {
		return &ConfigurationError{Parameter: "min_data_quality_years", Message: "must not be negative"}
	}
	return nil
}
