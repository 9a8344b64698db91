package results

import (
	"testing"

	"github.com/Bergam0t/ciw-example-animation/internal/model"
)

func metricsFromWaits(waits []float64) []model.Metrics {
	out := make([]model.Metrics, len(waits))
	for i, w := range waits {
		out[i] = model.Metrics{MeanWaitingTime: w}
	}
	return out
}

func TestDescribeRowsAndNames(t *testing.T) {
	rows := Describe(metricsFromWaits([]float64{1, 2, 3}))

	if len(rows) != 4 {
		t.Fatalf("Describe() returned %d rows, want 4", len(rows))
	}
	if rows[0].Metric != "Time waiting for operator (mins)" {
		t.Errorf("row 0 metric = %q", rows[0].Metric)
	}
	if rows[1].Metric != "Operator utilisation (%)" {
		t.Errorf("row 1 metric = %q", rows[1].Metric)
	}
	if rows[2].Metric != "Time waiting for nurse (mins)" {
		t.Errorf("row 2 metric = %q", rows[2].Metric)
	}
	if rows[3].Metric != "Nurse utilisation (%)" {
		t.Errorf("row 3 metric = %q", rows[3].Metric)
	}
}

func TestDescribeStatistics(t *testing.T) {
	// Five replications of the operator wait: 1..5.
	rows := Describe(metricsFromWaits([]float64{5, 3, 1, 2, 4}))
	got := rows[0]

	if got.Mean != 3 {
		t.Errorf("mean = %v, want 3", got.Mean)
	}
	// Sample std of 1..5 is sqrt(2.5) = 1.5811 -> 1.58.
	if got.Std != 1.58 {
		t.Errorf("std = %v, want 1.58", got.Std)
	}
	if got.Min != 1 || got.Max != 5 {
		t.Errorf("min/max = %v/%v, want 1/5", got.Min, got.Max)
	}
	if got.Q25 != 2 || got.Median != 3 || got.Q75 != 4 {
		t.Errorf("quartiles = %v/%v/%v, want 2/3/4", got.Q25, got.Median, got.Q75)
	}
}

func TestDescribeInterpolatedQuartiles(t *testing.T) {
	// Four values: pandas-style linear interpolation gives
	// 25% = 1.75, 50% = 2.5, 75% = 3.25.
	rows := Describe(metricsFromWaits([]float64{1, 2, 3, 4}))
	got := rows[0]

	if got.Q25 != 1.75 {
		t.Errorf("Q25 = %v, want 1.75", got.Q25)
	}
	if got.Median != 2.5 {
		t.Errorf("median = %v, want 2.5", got.Median)
	}
	if got.Q75 != 3.25 {
		t.Errorf("Q75 = %v, want 3.25", got.Q75)
	}
}

func TestDescribeSingleReplication(t *testing.T) {
	rows := Describe(metricsFromWaits([]float64{2.5}))
	got := rows[0]

	if got.Mean != 2.5 || got.Min != 2.5 || got.Max != 2.5 || got.Median != 2.5 {
		t.Errorf("single replication summary = %+v, all stats should be 2.5", got)
	}
	if got.Std != 0 {
		t.Errorf("std of single replication = %v, want 0", got.Std)
	}
}

func TestDescribeEmpty(t *testing.T) {
	rows := Describe(nil)
	if len(rows) != 4 {
		t.Fatalf("Describe(nil) returned %d rows, want 4", len(rows))
	}
	if rows[0].Mean != 0 {
		t.Errorf("empty summary mean = %v, want 0", rows[0].Mean)
	}
}
