// Package model wires the urgent care call centre experiment onto the
// simulation core and computes its performance measures.
package model

import (
	"fmt"
	"math/rand"

	"github.com/Bergam0t/ciw-example-animation/internal/sim"
)

// Model constants. Times are in minutes.
const (
	// ResultsCollectionPeriod is how long each replication runs.
	ResultsCollectionPeriod = 1000.0

	// DefaultNOperators is the default number of call operators on duty.
	DefaultNOperators = 13

	// DefaultNNurses is the default number of nurse practitioners on duty.
	DefaultNNurses = 9

	// DefaultChanceCallback is the default probability a caller needs a
	// nurse callback after speaking to an operator.
	DefaultChanceCallback = 0.4

	// DefaultSeed seeds replication 0; replication i uses DefaultSeed + i.
	DefaultSeed = 42
)

// Node names in visit order, shared with the event log and animation.
var NodeNames = []string{"operator", "nurse"}

// Experiment holds the user-adjustable parameters of the call centre model.
type Experiment struct {
	NOperators     int     `json:"n_operators" yaml:"n_operators"`
	NNurses        int     `json:"n_nurses" yaml:"n_nurses"`
	ChanceCallback float64 `json:"chance_callback" yaml:"chance_callback"`

	// Distribution parameters. Zero values fall back to the published
	// model: Exponential(0.6) arrivals, Triangular(5, 7, 10) operator
	// calls, Uniform(10, 20) nurse consultations.
	MeanInterArrival float64 `json:"mean_iat,omitempty" yaml:"mean_iat,omitempty"`
	CallLow          float64 `json:"call_low,omitempty" yaml:"call_low,omitempty"`
	CallMode         float64 `json:"call_mode,omitempty" yaml:"call_mode,omitempty"`
	CallHigh         float64 `json:"call_high,omitempty" yaml:"call_high,omitempty"`
	NurseLow         float64 `json:"nurse_low,omitempty" yaml:"nurse_low,omitempty"`
	NurseHigh        float64 `json:"nurse_high,omitempty" yaml:"nurse_high,omitempty"`
}

// Default returns the experiment with the published default parameters.
func Default() Experiment {
	return Experiment{
		NOperators:       DefaultNOperators,
		NNurses:          DefaultNNurses,
		ChanceCallback:   DefaultChanceCallback,
		MeanInterArrival: 0.6,
		CallLow:          5,
		CallMode:         7,
		CallHigh:         10,
		NurseLow:         10,
		NurseHigh:        20,
	}
}

// withDefaults fills zero-valued distribution parameters.
func (e Experiment) withDefaults() Experiment {
	d := Default()
	if e.MeanInterArrival == 0 {
		e.MeanInterArrival = d.MeanInterArrival
	}
	if e.CallLow == 0 && e.CallMode == 0 && e.CallHigh == 0 {
		e.CallLow, e.CallMode, e.CallHigh = d.CallLow, d.CallMode, d.CallHigh
	}
	if e.NurseLow == 0 && e.NurseHigh == 0 {
		e.NurseLow, e.NurseHigh = d.NurseLow, d.NurseHigh
	}
	return e
}

// Validate checks the experiment parameters.
func (e Experiment) Validate() error {
	if e.NOperators < 1 {
		return fmt.Errorf("n_operators must be >= 1, got %d", e.NOperators)
	}
	if e.NNurses < 1 {
		return fmt.Errorf("n_nurses must be >= 1, got %d", e.NNurses)
	}
	if e.ChanceCallback < 0 || e.ChanceCallback > 1 {
		return fmt.Errorf("chance_callback must be within [0, 1], got %v", e.ChanceCallback)
	}
	f := e.withDefaults()
	if f.MeanInterArrival <= 0 {
		return fmt.Errorf("mean_iat must be positive, got %v", f.MeanInterArrival)
	}
	if err := sim.ValidateTriangular(sim.Triangular{Low: f.CallLow, Mode: f.CallMode, High: f.CallHigh}); err != nil {
		return fmt.Errorf("call duration: %w", err)
	}
	if f.NurseLow > f.NurseHigh {
		return fmt.Errorf("nurse consultation: low %v above high %v", f.NurseLow, f.NurseHigh)
	}
	return nil
}

// network builds the two-node call centre: callers queue for an
// operator, then a proportion wait for a nurse callback.
func (e Experiment) network() sim.Network {
	f := e.withDefaults()
	return sim.Network{
		Arrival: sim.Exponential{Mean: f.MeanInterArrival},
		Nodes: []sim.NodeConfig{
			{Name: NodeNames[0], Servers: f.NOperators, Service: sim.Triangular{Low: f.CallLow, Mode: f.CallMode, High: f.CallHigh}},
			{Name: NodeNames[1], Servers: f.NNurses, Service: sim.Uniform{Low: f.NurseLow, High: f.NurseHigh}},
		},
		Route: func(r *rand.Rand, idx int) int {
			if idx == 0 && r.Float64() < f.ChanceCallback {
				return 1
			}
			return -1
		},
	}
}

// Metrics are one replication's performance measures. Keys match the
// metric identifiers the results table renames for display.
type Metrics struct {
	MeanWaitingTime      float64 `json:"01_mean_waiting_time"`
	OperatorUtil         float64 `json:"02_operator_util"`
	MeanNurseWaitingTime float64 `json:"03_mean_nurse_waiting_time"`
	NurseUtil            float64 `json:"04_nurse_util"`
}

// MetricNames maps metric identifiers to their display names, in
// results-table order.
var MetricNames = []struct {
	Key  string
	Name string
}{
	{"01_mean_waiting_time", "Time waiting for operator (mins)"},
	{"02_operator_util", "Operator utilisation (%)"},
	{"03_mean_nurse_waiting_time", "Time waiting for nurse (mins)"},
	{"04_nurse_util", "Nurse utilisation (%)"},
}

// Values returns the metrics in MetricNames order.
func (m Metrics) Values() []float64 {
	return []float64{m.MeanWaitingTime, m.OperatorUtil, m.MeanNurseWaitingTime, m.NurseUtil}
}

// Run executes a single replication and returns its metrics together
// with the raw visit records (the input to event logs and animations).
func Run(exp Experiment, seed int64) (Metrics, []sim.Record, error) {
	if err := exp.Validate(); err != nil {
		return Metrics{}, nil, err
	}

	s, err := sim.New(exp.network(), seed)
	if err != nil {
		return Metrics{}, nil, err
	}
	recs := s.Run(ResultsCollectionPeriod)

	var m Metrics
	m.MeanWaitingTime = meanWait(recs, 1)
	m.MeanNurseWaitingTime = meanWait(recs, 2)
	m.OperatorUtil = s.Utilisation(0, ResultsCollectionPeriod) * 100
	m.NurseUtil = s.Utilisation(1, ResultsCollectionPeriod) * 100
	return m, recs, nil
}

// meanWait averages waiting time over completed visits to a node.
func meanWait(recs []sim.Record, node int) float64 {
	var sum float64
	var n int
	for _, rec := range recs {
		if rec.Node == node {
			sum += rec.WaitingTime
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
