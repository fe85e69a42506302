/*
bic.go - Business Indicator Component

PURPOSE:
  Applies the marginal coefficients tier by tier to the averaged Business
  Indicator. The formula is piecewise-linear and strictly non-decreasing in
  the BI average:

    tier 1: min(BI, t1) * c1
    tier 2: max(0, min(BI, t2) - t1) * c2
    tier 3: max(0, BI - t2) * c3

  Only tiers up to the entity's bucket contribute. Because the same
  ParameterSet supplies both the classification thresholds and the tier
  boundaries, a bucket-1 entity's BI never reaches tier 2 anyway; the bucket
  cap exists so the breakdown mirrors the regulatory presentation.

MONOTONICITY:
  Each tier's contribution is non-decreasing in the BI average and
  coefficients are non-negative, so the sum is non-decreasing. Covered by
  tests in bic_test.go.
*/
package sma

// BICResult is the component total plus the per-tier slices of BI that
// produced it, kept for the audit record.
type BICResult struct {
	BIC       Money
	Breakdown BICBreakdown
}

// BICCalculator computes the Business Indicator Component.
type BICCalculator struct {
	Params ParameterSet
}

// Calculate computes the BIC for the given BI average and bucket.
// The breakdown records the marginal BI slice per tier (not the weighted
// contribution), matching how supervisors present the tiering.
func (c BICCalculator) Calculate(biAverage Money, bucket Bucket) BICResult {
	p := c.Params
	breakdown := make(BICBreakdown, 3)

	tier1 := biAverage.Min(p.BucketThreshold1)
	bic := tier1.Mul(p.MarginalCoefficient1)
	breakdown[Bucket1] = tier1

	if bucket >= Bucket2 {
		tier2 := biAverage.Min(p.BucketThreshold2).Sub(p.BucketThreshold1).Max(ZeroMoney())
		if !tier2.IsZero() || bucket == Bucket2 {
			bic = bic.Add(tier2.Mul(p.MarginalCoefficient2))
			breakdown[Bucket2] = tier2
		}
	}

	if bucket == Bucket3 {
		tier3 := biAverage.Sub(p.BucketThreshold2).Max(ZeroMoney())
		bic = bic.Add(tier3.Mul(p.MarginalCoefficient3))
		breakdown[Bucket3] = tier3
	}

	return BICResult{BIC: bic, Breakdown: breakdown}
}
