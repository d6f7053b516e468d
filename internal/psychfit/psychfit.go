// Package psychfit estimates perceptual thresholds by fitting psychometric
// functions to behavioral response data. Three models are provided:
// cumulative normal, Weibull and logistic. Each maps stimulus intensity to
// the probability of a positive (or correct) response, floored at the task's
// chance level. The nonlinear least-squares search is delegated to
// gonum/optimize; this package owns the model definitions, their analytic
// inverses and the initial parameter guesses.
package psychfit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
)

type evalFunc func(params []float64, chance, x float64) float64
type inverseFunc func(params []float64, chance, y float64) float64

// Fit is a fitted psychometric function.
type Fit struct {
	// Model is the model name: "cumnormal", "weibull" or "logistic".
	Model string
	// Params holds the two fitted parameters. For the cumulative normal
	// these are (threshold, sd); for the Weibull (alpha, beta); for the
	// logistic (PSE, slope).
	Params []float64
	// Chance is the fixed lower asymptote of the response range.
	Chance float64
	// SSE is the residual sum of squares at the fitted parameters.
	SSE float64

	eval    evalFunc
	inverse inverseFunc
}

// Eval returns the modeled response probability at intensity x.
func (f *Fit) Eval(x float64) float64 {
	return f.eval(f.Params, f.Chance, x)
}

// EvalAll evaluates the model at each intensity.
func (f *Fit) EvalAll(xs []float64) []float64 {
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = f.Eval(x)
	}
	return ys
}

// Inverse returns the intensity at which the model predicts response
// probability y. Values of y below chance or at 1 and above yield NaN.
func (f *Fit) Inverse(y float64) float64 {
	if y < f.Chance || y >= 1 {
		return math.NaN()
	}
	return f.inverse(f.Params, f.Chance, y)
}

// InverseAll inverts the model at each response probability.
func (f *Fit) InverseAll(ys []float64) []float64 {
	xs := make([]float64, len(ys))
	for i, y := range ys {
		xs[i] = f.Inverse(y)
	}
	return xs
}

// Threshold returns the intensity producing response probability p,
// e.g. 0.75 for the conventional 2AFC threshold.
func (f *Fit) Threshold(p float64) float64 { return f.Inverse(p) }

// Cumulative normal: y = chance + (1-chance) * (0.5 + 0.5*erf((x-m)/s)).
// Params are (m, s): the 50%-point and the spread.
func cumNormalEval(p []float64, chance, x float64) float64 {
	m, s := p[0], math.Abs(p[1])
	return chance + (1-chance)*(0.5+0.5*math.Erf((x-m)/s))
}

func cumNormalInverse(p []float64, chance, y float64) float64 {
	m, s := p[0], math.Abs(p[1])
	u := (y - chance) / (1 - chance)
	return m + s*math.Erfinv(2*u-1)
}

// Weibull: y = chance + (1-chance) * (1 - exp(-(x/alpha)^beta)).
func weibullEval(p []float64, chance, x float64) float64 {
	alpha, beta := math.Abs(p[0]), math.Abs(p[1])
	if x <= 0 {
		return chance
	}
	return chance + (1-chance)*(1-math.Exp(-math.Pow(x/alpha, beta)))
}

func weibullInverse(p []float64, chance, y float64) float64 {
	alpha, beta := math.Abs(p[0]), math.Abs(p[1])
	u := (y - chance) / (1 - chance)
	return alpha * math.Pow(-math.Log(1-u), 1/beta)
}

// Logistic: y = chance + (1-chance) / (1 + exp(-k*(x-m))).
// Params are (m, k): the point of subjective equality and the slope.
func logisticEval(p []float64, chance, x float64) float64 {
	m, k := p[0], math.Abs(p[1])
	return chance + (1-chance)/(1+math.Exp(-k*(x-m)))
}

func logisticInverse(p []float64, chance, y float64) float64 {
	m, k := p[0], math.Abs(p[1])
	u := (y - chance) / (1 - chance)
	return m - math.Log(1/u-1)/k
}

// FitCumNormal fits a cumulative normal to (intensity, response) pairs.
func FitCumNormal(levels, responses []float64, chance float64) (*Fit, error) {
	guess := []float64{midpointCrossing(levels, responses, chance), spread(levels)}
	return fitCurve("cumnormal", cumNormalEval, cumNormalInverse, guess, levels, responses, chance)
}

// FitWeibull fits a Weibull function to (intensity, response) pairs.
// Intensities must be non-negative.
func FitWeibull(levels, responses []float64, chance float64) (*Fit, error) {
	alpha := midpointCrossing(levels, responses, chance)
	if alpha <= 0 {
		alpha = spread(levels)
	}
	guess := []float64{alpha, 3.0}
	return fitCurve("weibull", weibullEval, weibullInverse, guess, levels, responses, chance)
}

// FitLogistic fits a logistic function to (intensity, response) pairs.
func FitLogistic(levels, responses []float64, chance float64) (*Fit, error) {
	guess := []float64{midpointCrossing(levels, responses, chance), 2 / spread(levels)}
	return fitCurve("logistic", logisticEval, logisticInverse, guess, levels, responses, chance)
}

func fitCurve(model string, eval evalFunc, inverse inverseFunc, guess, levels, responses []float64, chance float64) (*Fit, error) {
	if len(levels) != len(responses) {
		return nil, fmt.Errorf("psychfit: %d intensities but %d responses", len(levels), len(responses))
	}
	if len(levels) < 3 {
		return nil, fmt.Errorf("psychfit: need at least 3 data points, got %d", len(levels))
	}
	if chance < 0 || chance >= 1 {
		return nil, fmt.Errorf("psychfit: chance level %g out of range [0, 1)", chance)
	}

	sse := func(p []float64) float64 {
		var sum float64
		for i, x := range levels {
			r := eval(p, chance, x) - responses[i]
			sum += r * r
		}
		return sum
	}

	problem := optimize.Problem{Func: sse}
	settings := &optimize.Settings{
		Converger: &optimize.FunctionConverge{Absolute: 1e-14, Iterations: 200},
	}
	result, err := optimize.Minimize(problem, guess, settings, &optimize.NelderMead{})
	if err != nil {
		return nil, fmt.Errorf("psychfit: %s fit failed: %w", model, err)
	}

	params := []float64{result.X[0], math.Abs(result.X[1])}
	if model == "weibull" {
		params[0] = math.Abs(params[0])
	}
	return &Fit{
		Model:   model,
		Params:  params,
		Chance:  chance,
		SSE:     result.F,
		eval:    eval,
		inverse: inverse,
	}, nil
}

// midpointCrossing estimates the intensity at which the responses cross the
// midpoint between chance and 1, used as the initial threshold guess.
func midpointCrossing(levels, responses []float64, chance float64) float64 {
	if len(levels) == 0 {
		return 0
	}
	target := (chance + 1) / 2
	best := levels[0]
	bestDist := math.Abs(responses[0] - target)
	for i := 1; i < len(levels) && i < len(responses); i++ {
		if d := math.Abs(responses[i] - target); d < bestDist {
			best, bestDist = levels[i], d
		}
	}
	return best
}

// spread is a scale estimate for the intensity axis.
func spread(levels []float64) float64 {
	if len(levels) < 2 {
		return 1
	}
	min, max := levels[0], levels[0]
	for _, x := range levels[1:] {
		if x < min {
			min = x
		}
		if x > max {
			max = x
		}
	}
	if max == min {
		return 1
	}
	return (max - min) / 4
}
