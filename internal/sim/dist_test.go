package sim

import (
	"math"
	"math/rand"
	"testing"
)

func TestExponentialMean(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	d := Exponential{Mean: 0.6}

	n := 200000
	var sum float64
	for i := 0; i < n; i++ {
		sum += d.Sample(r)
	}
	mean := sum / float64(n)

	if math.Abs(mean-0.6) > 0.01 {
		t.Errorf("Exponential{0.6} sample mean = %v, want ~0.6", mean)
	}
}

func TestTriangularBoundsAndMean(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	d := Triangular{Low: 5, Mode: 7, High: 10}

	n := 200000
	var sum float64
	for i := 0; i < n; i++ {
		v := d.Sample(r)
		if v < 5 || v > 10 {
			t.Fatalf("Triangular sample %v outside [5, 10]", v)
		}
		sum += v
	}

	// Theoretical mean is (low + mode + high) / 3.
	want := (5.0 + 7.0 + 10.0) / 3.0
	mean := sum / float64(n)
	if math.Abs(mean-want) > 0.02 {
		t.Errorf("Triangular sample mean = %v, want ~%v", mean, want)
	}
}

func TestTriangularDegenerate(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	d := Triangular{Low: 4, Mode: 4, High: 4}
	if got := d.Sample(r); got != 4 {
		t.Errorf("degenerate Triangular sample = %v, want 4", got)
	}
}

func TestUniformBounds(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	d := Uniform{Low: 10, High: 20}

	for i := 0; i < 10000; i++ {
		v := d.Sample(r)
		if v < 10 || v >= 20 {
			t.Fatalf("Uniform sample %v outside [10, 20)", v)
		}
	}
}

func TestDeterministic(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	d := Deterministic{Value: 3.5}
	if got := d.Sample(r); got != 3.5 {
		t.Errorf("Deterministic sample = %v, want 3.5", got)
	}
}

func TestValidateTriangular(t *testing.T) {
	if err := ValidateTriangular(Triangular{Low: 5, Mode: 7, High: 10}); err != nil {
		t.Errorf("valid parameters rejected: %v", err)
	}
	if err := ValidateTriangular(Triangular{Low: 7, Mode: 5, High: 10}); err == nil {
		t.Error("mode below low should be rejected")
	}
}
