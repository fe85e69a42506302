/*
Package factory provides JSON to Go parameter-set conversion.

PURPOSE:
  Converts JSON parameter definitions into validated sma.ParameterSet
  values. Parameter versions are authored and approved outside this system
  (maker-checker-approver); what arrives here is the already-resolved
  outcome - a named version with an effective date. The factory parses it,
  validates it, and resolves which version applies at a calculation date.

JSON SCHEMA:
  {
    "version": "2024.1",
    "effective_date": "2024-04-01",
    "bucket_threshold_1": "80000000000",
    "bucket_threshold_2": "2400000000000",
    "marginal_coefficient_1": "0.12",
    "marginal_coefficient_2": "0.15",
    "marginal_coefficient_3": "0.18",
    "lc_multiplier": "15",
    "rwa_multiplier": "12.5",
    "min_loss_threshold": "10000000",
    "min_data_quality_years": 5,
    "national_discretion_ilm_one": false
  }

  All monetary and coefficient values are JSON strings so that no precision
  is lost in transit - they parse straight into exact decimals.

USAGE:
  f := factory.NewParameterFactory()
  params, err := f.ParseParameters(jsonString)

  // Resolve the version effective at a calculation date
  resolved, err := factory.ResolveEffective(versions, calcDate)

SEE ALSO:
  - ../sma/params.go: ParameterSet contract and consistency validation
  - ../store/sqlite: Persistence of parameter versions
*/
package factory

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/capital-engine/sma"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ParameterJSON is the JSON representation of one parameter version.
type ParameterJSON struct {
	Version                  string `json:"version"`
	EffectiveDate            string `json:"effective_date"`
	BucketThreshold1         string `json:"bucket_threshold_1"`
	BucketThreshold2         string `json:"bucket_threshold_2"`
	MarginalCoefficient1     string `json:"marginal_coefficient_1"`
	MarginalCoefficient2     string `json:"marginal_coefficient_2"`
	MarginalCoefficient3     string `json:"marginal_coefficient_3"`
	LCMultiplier             string `json:"lc_multiplier"`
	RWAMultiplier            string `json:"rwa_multiplier"`
	MinLossThreshold         string `json:"min_loss_threshold"`
	MinDataQualityYears      int    `json:"min_data_quality_years"`
	NationalDiscretionILMOne bool   `json:"national_discretion_ilm_one"`
}

// ParameterVersionRecord couples a parsed set with its effective date.
type ParameterVersionRecord struct {
	Params        sma.ParameterSet
	EffectiveDate sma.Date
}

// =============================================================================
// PARAMETER FACTORY
// =============================================================================

// ParameterFactory converts JSON parameter definitions to Go structs.
type ParameterFactory struct{}

func NewParameterFactory() *ParameterFactory {
	return &ParameterFactory{}
}

// ParseParameters parses a JSON string into a validated ParameterSet plus
// its effective date.
func (f *ParameterFactory) ParseParameters(jsonStr string) (*ParameterVersionRecord, error) {
	var pj ParameterJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return nil, fmt.Errorf("failed to parse parameter JSON: %w", err)
	}
	return f.FromJSON(pj)
}

// FromJSON converts ParameterJSON into a validated ParameterVersionRecord.
func (f *ParameterFactory) FromJSON(pj ParameterJSON) (*ParameterVersionRecord, error) {
	if pj.Version == "" {
		return nil, fmt.Errorf("parameter version is required")
	}

	effective, err := time.Parse("2006-01-02", pj.EffectiveDate)
	if err != nil {
		return nil, fmt.Errorf("invalid effective_date %q (use YYYY-MM-DD): %w", pj.EffectiveDate, err)
	}

	params := sma.ParameterSet{
		Version:                  sma.ParameterVersion(pj.Version),
		MinDataQualityYears:      pj.MinDataQualityYears,
		NationalDiscretionILMOne: pj.NationalDiscretionILMOne,
	}

	fields := []struct {
		name  string
		raw   string
		money *sma.Money
		coeff *decimal.Decimal
	}{
		{name: "bucket_threshold_1", raw: pj.BucketThreshold1, money: &params.BucketThreshold1},
		{name: "bucket_threshold_2", raw: pj.BucketThreshold2, money: &params.BucketThreshold2},
		{name: "min_loss_threshold", raw: pj.MinLossThreshold, money: &params.MinLossThreshold},
		{name: "marginal_coefficient_1", raw: pj.MarginalCoefficient1, coeff: &params.MarginalCoefficient1},
		{name: "marginal_coefficient_2", raw: pj.MarginalCoefficient2, coeff: &params.MarginalCoefficient2},
		{name: "marginal_coefficient_3", raw: pj.MarginalCoefficient3, coeff: &params.MarginalCoefficient3},
		{name: "lc_multiplier", raw: pj.LCMultiplier, coeff: &params.LCMultiplier},
		{name: "rwa_multiplier", raw: pj.RWAMultiplier, coeff: &params.RWAMultiplier},
	}
	for _, field := range fields {
		d, err := decimal.NewFromString(field.raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", field.name, field.raw, err)
		}
		if field.money != nil {
			*field.money = sma.MoneyFromDecimal(d)
		} else {
			*field.coeff = d
		}
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}

	return &ParameterVersionRecord{
		Params:        params,
		EffectiveDate: sma.DateFromTime(effective),
	}, nil
}

// ToJSON renders a parameter set back into its JSON definition.
func ToJSON(record ParameterVersionRecord) ParameterJSON {
	p := record.Params
	return ParameterJSON{
		Version:                  string(p.Version),
		EffectiveDate:            record.EffectiveDate.String(),
		BucketThreshold1:         p.BucketThreshold1.String(),
		BucketThreshold2:         p.BucketThreshold2.String(),
		MarginalCoefficient1:     p.MarginalCoefficient1.String(),
		MarginalCoefficient2:     p.MarginalCoefficient2.String(),
		MarginalCoefficient3:     p.MarginalCoefficient3.String(),
		LCMultiplier:             p.LCMultiplier.String(),
		RWAMultiplier:            p.RWAMultiplier.String(),
		MinLossThreshold:         p.MinLossThreshold.String(),
		MinDataQualityYears:      p.MinDataQualityYears,
		NationalDiscretionILMOne: p.NationalDiscretionILMOne,
	}
}

// =============================================================================
// VERSION RESOLUTION
// =============================================================================

// ResolveEffective picks the version effective at the calculation date: the
// latest effective date that is on or before it. Returns
// sma.ErrParameterVersionNotFound when nothing applies.
func ResolveEffective(versions []ParameterVersionRecord, calculationDate sma.Date) (*ParameterVersionRecord, error) {
	candidates := make([]ParameterVersionRecord, 0, len(versions))
	for _, v := range versions {
		if v.EffectiveDate.BeforeOrEqual(calculationDate) {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return nil, sma.ErrParameterVersionNotFound
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].EffectiveDate.After(candidates[j].EffectiveDate)
	})
	resolved := candidates[0]
	return &resolved, nil
}

// DefaultParameterJSON is the built-in regulatory default set, used to seed
// a fresh database.
func DefaultParameterJSON() string {
	record := ParameterVersionRecord{
		Params:        sma.DefaultParameters(),
		EffectiveDate: sma.NewDate(2023, time.April, 1),
	}
	b, _ := json.Marshal(ToJSON(record))
	return string(b)
}
