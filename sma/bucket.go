/*
bucket.go - Bucket classification

PURPOSE:
  Maps the averaged Business Indicator to a discrete size tier using the
  ParameterSet thresholds. The bucket drives which marginal tiers apply in
  the BIC and whether the ILM is gated (bucket 1 always is).

BOUNDARY RULE:
  Thresholds are inclusive on the lower bound only. A BI average exactly
  equal to threshold_1 is bucket 2; exactly equal to threshold_2 is
  bucket 3.
*/
package sma

// Classification is the bucket decision plus the data-quality flag the ILM
// gating consumes later.
type Classification struct {
	Bucket           Bucket
	DataQualityYears int
	DataQualityMet   bool
}

// Classifier assigns buckets from the averaged BI. Stateless.
type Classifier struct {
	Params ParameterSet
}

// Classify returns the bucket for the given BI average. dataQualityYears is
// informational here; the classifier only records whether it meets the
// parameter set's minimum.
func (c Classifier) Classify(biAverage Money, dataQualityYears int) Classification {
	bucket := Bucket3
	switch {
	case biAverage.LessThan(c.Params.BucketThreshold1):
		bucket = Bucket1
	case biAverage.LessThan(c.Params.BucketThreshold2):
		bucket = Bucket2
	}

	return Classification{
		Bucket:           bucket,
		DataQualityYears: dataQualityYears,
		DataQualityMet:   dataQualityYears >= c.Params.MinDataQualityYears,
	}
}
