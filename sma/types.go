/*
Package sma implements the Basel III Standardized Measurement Approach (SMA)
capital calculation engine.

PURPOSE:
  This package contains the core types and algorithms that turn business-size
  indicators and historical loss data into a regulatory capital figure. Given
  up to three years of Business Indicator records, a loss-event history, and a
  resolved ParameterSet, it produces Operational Risk Capital (ORC) and
  Risk-Weighted Assets (RWA) along with every intermediate value.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: An exact decimal monetary amount (never float64)
  - BusinessIndicatorRecord: One period of ILDC/SC/FC size data
  - LossEventRecord / RecoveryRecord: The operational loss history
  - Bucket: The discrete size tier (1-3) an entity falls into
  - CalculationResult: The complete, immutable output of one run

DESIGN PRINCIPLES:
  1. Purity: A calculation is a pure function of its inputs - no I/O inside
  2. Precision: decimal.Decimal everywhere; rounding only at ORC and RWA
  3. Determinism: Identical inputs produce bit-identical results
  4. Immutability: Results are created once per run_id and never edited

USAGE:
  calc := sma.NewCalculator(sma.DefaultParameters())
  result, err := calc.Calculate(sma.CalculationInput{
      EntityID:        "BANK001",
      CalculationDate: sma.NewDate(2023, time.December, 31),
      RunID:           "run-001",
      BIData:          biRecords,
      LossData:        lossRecords,
  })

SEE ALSO:
  - params.go: ParameterSet contract and validation
  - calculator.go: Orchestration of the component calculators
  - ../lineage: Audit record construction and tamper evidence
*/
package sma

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Exact decimal monetary amount
// =============================================================================

// Money is an arbitrary-precision monetary amount. All intermediate values in
// the calculation stay unrounded; only ORC and RWA are quantized (2dp,
// half-up) by the composer.
type Money struct {
	Value decimal.Decimal
}

func NewMoney(value float64) Money          { return Money{Value: decimal.NewFromFloat(value)} }
func NewMoneyFromInt(value int64) Money     { return Money{Value: decimal.NewFromInt(value)} }
func MoneyFromDecimal(d decimal.Decimal) Money { return Money{Value: d} }

func MustParseMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{Value: decimal.Zero}
	}
	return Money{Value: d}
}

func ZeroMoney() Money { return Money{Value: decimal.Zero} }

func (m Money) Add(o Money) Money              { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money              { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) Mul(s decimal.Decimal) Money    { return Money{Value: m.Value.Mul(s)} }
func (m Money) Div(s decimal.Decimal) Money    { return Money{Value: m.Value.Div(s)} }
func (m Money) Neg() Money                     { return Money{Value: m.Value.Neg()} }
func (m Money) Abs() Money                     { return Money{Value: m.Value.Abs()} }
func (m Money) IsNegative() bool               { return m.Value.IsNegative() }
func (m Money) IsZero() bool                   { return m.Value.IsZero() }
func (m Money) IsPositive() bool               { return m.Value.IsPositive() }
func (m Money) GreaterThan(o Money) bool       { return m.Value.GreaterThan(o.Value) }
func (m Money) GreaterOrEqual(o Money) bool    { return m.Value.GreaterThanOrEqual(o.Value) }
func (m Money) LessThan(o Money) bool          { return m.Value.LessThan(o.Value) }
func (m Money) Min(o Money) Money              { if m.LessThan(o) { return m }; return o }
func (m Money) Max(o Money) Money              { if m.GreaterThan(o) { return m }; return o }
func (m Money) Equal(o Money) bool             { return m.Value.Equal(o.Value) }
func (m Money) String() string                 { return m.Value.String() }

// Round2 quantizes to 2 decimal places. Used exactly twice in the whole
// engine: for ORC and for RWA. decimal.Round is half-away-from-zero, which
// matches the regulatory half-up rule for the non-negative amounts this
// engine produces.
func (m Money) Round2() Money { return Money{Value: m.Value.Round(2)} }

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EntityID string
type RunID string
type EventID string
type ParameterVersion string

// =============================================================================
// DATE - Calendar-day precision timestamps
// =============================================================================

// Date is a calendar day in UTC. Calculation dates, accounting dates and
// period boundaries all use day precision.
type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateFromTime(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), now.Month(), now.Day())
}

func (d Date) Before(o Date) bool        { return d.normalize().Before(o.normalize()) }
func (d Date) After(o Date) bool         { return d.normalize().After(o.normalize()) }
func (d Date) Equal(o Date) bool         { return d.normalize().Equal(o.normalize()) }
func (d Date) BeforeOrEqual(o Date) bool { return d.Before(o) || d.Equal(o) }
func (d Date) AfterOrEqual(o Date) bool  { return d.After(o) || d.Equal(o) }
func (d Date) IsZero() bool              { return d.Time.IsZero() }
func (d Date) Year() int                 { return d.Time.Year() }

func (d Date) AddYears(n int) Date { return Date{Time: d.Time.AddDate(n, 0, 0)} }
func (d Date) AddDays(n int) Date  { return Date{Time: d.Time.AddDate(0, 0, n)} }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string { return d.Time.Format("2006-01-02") }

// =============================================================================
// BUSINESS INDICATOR - Size proxy per reporting period
// =============================================================================

// BusinessIndicatorRecord holds one period of Business Indicator data.
// ILDC (interest/lease/dividend/commission), SC (services) and FC (financial)
// are the three regulatory components. Records are append-only per
// entity/period; the ingestion layer never mutates them.
type BusinessIndicatorRecord struct {
	EntityID        EntityID
	Period          string // e.g. "2023" or "2023-Q4"
	ILDC            Money
	SC              Money
	FC              Money
	CalculationDate Date
}

// BIAggregate is the output of the BusinessIndicatorAggregator.
type BIAggregate struct {
	Current Money // most recent period's BI total
	Average Money // mean over the (up to 3) periods present
	Periods int   // how many periods contributed to the average
}

// =============================================================================
// LOSS EVENTS - Historical operational losses
// =============================================================================

// LossEventRecord is one operational loss event. Gross amount and the three
// dates are immutable once recorded; net amount changes only through recovery
// additions, and exclusion is a one-way transition that requires a regulatory
// approval reference.
type LossEventRecord struct {
	EventID              EventID
	EntityID             EntityID
	OccurrenceDate       Date
	DiscoveryDate        Date
	AccountingDate       Date
	GrossAmount          Money
	NetAmount            Money // gross - sum(recoveries)
	IsExcluded           bool
	ExclusionReason      string
	RBIApprovalReference string
}

// RecoveryRecord is a recovery received against a loss event.
// Invariant: the running sum of recoveries never exceeds the gross amount.
type RecoveryRecord struct {
	LossEventID EventID
	Amount      Money
	ReceiptDate Date
}

// LossAggregate is the output of the LossComponentCalculator.
type LossAggregate struct {
	LC                Money
	AverageAnnualLoss Money
	YearsWithData     int
	QualifyingEvents  int
}

// =============================================================================
// BUCKET - Discrete size tier
// =============================================================================

// Bucket is the size tier an entity falls into based on its averaged
// Business Indicator. The zero value is invalid; the classifier always
// returns one of the three constants.
type Bucket int

const (
	Bucket1 Bucket = 1
	Bucket2 Bucket = 2
	Bucket3 Bucket = 3
)

func (b Bucket) String() string {
	switch b {
	case Bucket1:
		return "bucket_1"
	case Bucket2:
		return "bucket_2"
	case Bucket3:
		return "bucket_3"
	default:
		return "bucket_invalid"
	}
}

// Valid reports whether b is one of the three defined tiers.
func (b Bucket) Valid() bool { return b >= Bucket1 && b <= Bucket3 }

// =============================================================================
// CALCULATION RESULT - Immutable output of one run
// =============================================================================

// BICBreakdown maps each tier to the marginal slice of BI it contributed.
// Kept for the audit record so a reviewer can re-derive the BIC by hand.
type BICBreakdown map[Bucket]Money

// CalculationResult is the complete output of one SMA calculation. Created
// exactly once per RunID and never edited: a supervisor correction produces a
// NEW derived result referencing the original (see override.go).
type CalculationResult struct {
	RunID           RunID
	EntityID        EntityID
	CalculationDate Date

	// Business indicator
	BICurrent Money
	BIAverage Money
	Bucket    Bucket

	// Components
	BIC          Money
	BICBreakdown BICBreakdown
	LC           Money

	// Loss data quality
	AverageAnnualLoss Money
	LossDataYears     int

	// Internal loss multiplier
	ILM           decimal.Decimal
	ILMGated      bool
	ILMGateReason string

	// Final figures (the only rounded values in the result)
	ORC Money
	RWA Money

	// Reproducibility pins
	ParameterVersion ParameterVersion
	ModelVersion     string
	Timestamp        time.Time

	// Override provenance; empty for primary results
	Override *OverrideProvenance
}

// OverrideProvenance records why and how a derived result diverges from the
// calculation it was derived from.
type OverrideProvenance struct {
	Type          OverrideType
	OriginalRunID RunID
	Approver      string
	Reason        string
	AppliedAt     time.Time
}
