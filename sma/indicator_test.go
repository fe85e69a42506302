package sma_test

import (
	"testing"

	"github.com/warp/capital-engine/sma"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func biRecord(period string, ildc, sc, fc string) sma.BusinessIndicatorRecord {
	return sma.BusinessIndicatorRecord{
		EntityID: "BANK001",
		Period:   period,
		ILDC:     sma.MustParseMoney(ildc),
		SC:       sma.MustParseMoney(sc),
		FC:       sma.MustParseMoney(fc),
	}
}

// =============================================================================
// AGGREGATION TESTS
// =============================================================================

func TestAggregate_SinglePeriod_AverageEqualsCurrent(t *testing.T) {
	// GIVEN: One period of BI data
	// WHEN: Aggregating
	// THEN: Current and average both equal that period's total

	agg := sma.Aggregator{}
	result := agg.Aggregate([]sma.BusinessIndicatorRecord{
		biRecord("2023", "50000000000", "20000000000", "6000000000"),
	})

	if got := result.Current.String(); got != "76000000000" {
		t.Errorf("Current = %s, want 76000000000", got)
	}
	if got := result.Average.String(); got != "76000000000" {
		t.Errorf("Average = %s, want 76000000000", got)
	}
	if result.Periods != 1 {
		t.Errorf("Periods = %d, want 1", result.Periods)
	}
}

func TestAggregate_ThreePeriods_AverageOverAll(t *testing.T) {
	// GIVEN: Three periods totalling 80bn, 78bn, 76bn (most recent first)
	// WHEN: Aggregating
	// THEN: Current is the most recent total, average is 78bn

	agg := sma.Aggregator{}
	result := agg.Aggregate([]sma.BusinessIndicatorRecord{
		biRecord("2023", "54000000000", "20000000000", "6000000000"),
		biRecord("2022", "52000000000", "20000000000", "6000000000"),
		biRecord("2021", "50000000000", "20000000000", "6000000000"),
	})

	if got := result.Current.String(); got != "80000000000" {
		t.Errorf("Current = %s, want 80000000000", got)
	}
	if got := result.Average.String(); got != "78000000000" {
		t.Errorf("Average = %s, want 78000000000", got)
	}
	if result.Periods != 3 {
		t.Errorf("Periods = %d, want 3", result.Periods)
	}
}

func TestAggregate_MoreThanThreePeriods_OnlyMostRecentThreeCount(t *testing.T) {
	// GIVEN: Five periods, the older two wildly different
	// WHEN: Aggregating
	// THEN: Only the first three shape the average

	agg := sma.Aggregator{}
	result := agg.Aggregate([]sma.BusinessIndicatorRecord{
		biRecord("2023", "100", "0", "0"),
		biRecord("2022", "200", "0", "0"),
		biRecord("2021", "300", "0", "0"),
		biRecord("2020", "999999999", "0", "0"),
		biRecord("2019", "999999999", "0", "0"),
	})

	if got := result.Average.String(); got != "200" {
		t.Errorf("Average = %s, want 200", got)
	}
	if result.Periods != 3 {
		t.Errorf("Periods = %d, want 3", result.Periods)
	}
}

func TestAggregate_NegativeComponent_AbsoluteValueCounts(t *testing.T) {
	// GIVEN: A period with a negative services component
	// WHEN: Aggregating
	// THEN: The component contributes its absolute value to the total

	agg := sma.Aggregator{}
	result := agg.Aggregate([]sma.BusinessIndicatorRecord{
		biRecord("2023", "1000", "-500", "300"),
	})

	if got := result.Current.String(); got != "1800" {
		t.Errorf("Current = %s, want 1800 (|-500| counts as 500)", got)
	}
}

func TestAggregate_OutlierComponent_ClampedAtBound(t *testing.T) {
	// GIVEN: A component beyond the 1e15 bound, positive and negative
	// WHEN: Aggregating
	// THEN: Each is clamped to 1e15 before the absolute value

	agg := sma.Aggregator{}
	result := agg.Aggregate([]sma.BusinessIndicatorRecord{
		biRecord("2023", "9000000000000000", "-9000000000000000", "0"),
	})

	// 1e15 + 1e15
	if got := result.Current.String(); got != "2000000000000000" {
		t.Errorf("Current = %s, want 2000000000000000", got)
	}
}

func TestBITotal_MatchesAggregatedTotal(t *testing.T) {
	// GIVEN: A record with an outlier and a negative component
	// WHEN: Computing the per-record total and aggregating the record
	// THEN: Both yield the same clamped abs-sum

	record := biRecord("2023", "9000000000000000", "-500", "300")

	total := sma.BITotal(record)
	if got := total.String(); got != "1000000000000800" {
		t.Errorf("BITotal = %s, want 1000000000000800", got)
	}

	agg := sma.Aggregator{}.Aggregate([]sma.BusinessIndicatorRecord{record})
	if !agg.Current.Equal(total) {
		t.Errorf("aggregated current %s differs from BITotal %s", agg.Current, total)
	}
}
