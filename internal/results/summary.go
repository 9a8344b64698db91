// Package results summarises replication metrics into the table the
// dashboard displays: mean, standard deviation, minimum, quartiles and
// maximum per performance measure.
package results

import (
	"math"
	"sort"

	"github.com/Bergam0t/ciw-example-animation/internal/model"
)

// Summary is one row of the results table.
type Summary struct {
	Metric string  `json:"metric"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"25%"`
	Median float64 `json:"50%"`
	Q75    float64 `json:"75%"`
	Max    float64 `json:"max"`
}

// Describe summarises replication metrics, one row per performance
// measure under its display name. Values are rounded to 2 decimal
// places. The replication count is omitted: it is implicit in the
// user's chosen number of replications.
func Describe(metrics []model.Metrics) []Summary {
	cols := make([][]float64, len(model.MetricNames))
	for _, m := range metrics {
		for i, v := range m.Values() {
			cols[i] = append(cols[i], v)
		}
	}

	out := make([]Summary, len(model.MetricNames))
	for i, mn := range model.MetricNames {
		out[i] = describeColumn(mn.Name, cols[i])
	}
	return out
}

func describeColumn(name string, values []float64) Summary {
	s := Summary{Metric: name}
	if len(values) == 0 {
		return s
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	s.Mean = round2(mean(values))
	s.Std = round2(std(values))
	s.Min = round2(sorted[0])
	s.Q25 = round2(quantile(sorted, 0.25))
	s.Median = round2(quantile(sorted, 0.5))
	s.Q75 = round2(quantile(sorted, 0.75))
	s.Max = round2(sorted[len(sorted)-1])
	return s
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// std is the sample standard deviation (n-1 denominator), matching the
// dashboard's tabulated output.
func std(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

// quantile computes the q-quantile of sorted values with linear
// interpolation between closest ranks.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
