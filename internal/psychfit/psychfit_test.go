package psychfit_test

import (
	"math"
	"testing"

	"github.com/sloria/stimulus/internal/psychfit"
)

// cumNorm generates response probabilities from a cumulative normal with
// the given noise and threshold, scaled to run from chance to 1.
func cumNorm(xs []float64, noise, thresh, chance float64) []float64 {
	ys := make([]float64, len(xs))
	for i, x := range xs {
		y := math.Erf((x-thresh)/noise)/2.0 + 0.5
		ys[i] = y*(1-chance) + chance
	}
	return ys
}

func linspace(lo, hi float64, n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return xs
}

const (
	genThresh = 0.2
	genNoise  = 0.1
	chance    = 0.5
)

func testData() (contrasts, responses []float64) {
	contrasts = linspace(0.0, 0.5, 10)
	responses = cumNorm(contrasts, genNoise, genThresh, chance)
	return contrasts, responses
}

func closeTo(t *testing.T, got, want, tol float64, what string) {
	t.Helper()
	if math.IsNaN(got) || math.Abs(got-want) > tol {
		t.Errorf("%s = %g, want %g (tol %g)", what, got, want, tol)
	}
}

func TestFitCumNormal(t *testing.T) {
	contrasts, responses := testData()

	// The data come from a cumulative normal, so the generative
	// parameters should be recovered almost exactly.
	fit, err := psychfit.FitCumNormal(contrasts, responses, chance)
	if err != nil {
		t.Fatalf("FitCumNormal: %v", err)
	}
	closeTo(t, fit.Params[0], genThresh, 1e-3, "threshold")
	closeTo(t, fit.Params[1], genNoise, 1e-3, "sd")

	// The inverse should map the responses back to the contrasts.
	invs := fit.InverseAll(responses)
	for i := range contrasts {
		closeTo(t, invs[i], contrasts[i], 1e-3, "inverse")
	}
}

func TestFitWeibull(t *testing.T) {
	contrasts, responses := testData()

	fit, err := psychfit.FitWeibull(contrasts, responses, chance)
	if err != nil {
		t.Fatalf("FitWeibull: %v", err)
	}

	// Not the generative function, but the 75% threshold should land
	// close to the generative threshold.
	closeTo(t, fit.Inverse(0.75), genThresh, 0.01, "75% threshold")

	// The inverse must match the forwards function on the model's own
	// outputs.
	model := fit.EvalAll(contrasts)
	invs := fit.InverseAll(model)
	for i := range contrasts {
		closeTo(t, invs[i], contrasts[i], 1e-6, "inverse round-trip")
	}
}

func TestFitLogistic(t *testing.T) {
	contrasts, responses := testData()

	fit, err := psychfit.FitLogistic(contrasts, responses, chance)
	if err != nil {
		t.Fatalf("FitLogistic: %v", err)
	}

	closeTo(t, fit.Inverse(0.75), genThresh, 0.01, "75% threshold")

	model := fit.EvalAll(contrasts)
	invs := fit.InverseAll(model)
	for i := range contrasts {
		closeTo(t, invs[i], contrasts[i], 1e-6, "inverse round-trip")
	}
}

func TestThresholdMatchesInverse(t *testing.T) {
	contrasts, responses := testData()
	fit, err := psychfit.FitCumNormal(contrasts, responses, chance)
	if err != nil {
		t.Fatalf("FitCumNormal: %v", err)
	}
	if fit.Threshold(0.75) != fit.Inverse(0.75) {
		t.Errorf("Threshold(0.75) = %g, Inverse(0.75) = %g", fit.Threshold(0.75), fit.Inverse(0.75))
	}
}

func TestFitErrors(t *testing.T) {
	contrasts, responses := testData()

	tests := []struct {
		name      string
		levels    []float64
		responses []float64
		chance    float64
	}{
		{"mismatched lengths", contrasts, responses[:5], chance},
		{"too few points", contrasts[:2], responses[:2], chance},
		{"chance too high", contrasts, responses, 1.0},
		{"negative chance", contrasts, responses, -0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := psychfit.FitCumNormal(tt.levels, tt.responses, tt.chance); err == nil {
				t.Error("want error, got nil")
			}
		})
	}
}

func TestInverseOutOfRange(t *testing.T) {
	contrasts, responses := testData()
	fit, err := psychfit.FitCumNormal(contrasts, responses, chance)
	if err != nil {
		t.Fatalf("FitCumNormal: %v", err)
	}
	if v := fit.Inverse(0.2); !math.IsNaN(v) {
		t.Errorf("Inverse below chance = %g, want NaN", v)
	}
	if v := fit.Inverse(1.0); !math.IsNaN(v) {
		t.Errorf("Inverse at 1.0 = %g, want NaN", v)
	}
}
