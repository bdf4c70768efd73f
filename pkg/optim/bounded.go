package optim

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// Settings bounds the quasi-Newton search.
type Settings struct {
	MaxIterations     int
	GradientTolerance float64
}

// gradientNoise scales the stationarity tolerance applied at a stalled line
// search. Forward differences cannot resolve gradients below roughly this
// fraction of the loss magnitude.
const gradientNoise = 1e-6

// Result carries the best point found, whether the search converged within
// its iteration limit, and the loss recorded at each major iteration.
type Result struct {
	X          []float64
	Loss       float64
	Iterations int
	Converged  bool
	Trace      []float64
}

// Minimize runs a BFGS quasi-Newton search from x0 under elementwise lower
// bounds, which are enforced by projection. The objective only ever sees
// projected points and the returned X is projected as well, so bounded slots
// never escape their bounds. Gradients come from forward finite differences.
//
// A search that stops on its iteration limit returns the best point found so
// far, with Converged false. A line search that stalls because no step can
// move the location further reports Converged true when the gradient at the
// final point is stationary within finite-difference noise, and false
// otherwise.
//
// lower must have the same length as x0; use math.Inf(-1) for unbounded slots.
func Minimize(objective func([]float64) float64, x0, lower []float64, s Settings) Result {
	proj := func(x []float64) []float64 {
		out := append([]float64(nil), x...)
		for i, lo := range lower {
			if out[i] < lo {
				out[i] = lo
			}
		}
		return out
	}
	wrapped := func(x []float64) float64 {
		return objective(proj(x))
	}

	problem := optimize.Problem{
		Func: wrapped,
		Grad: func(grad, x []float64) {
			fd.Gradient(grad, wrapped, x, nil)
		},
	}

	rec := &lossRecorder{}
	settings := &optimize.Settings{Recorder: rec}
	if s.MaxIterations > 0 {
		settings.MajorIterations = s.MaxIterations
	}
	if s.GradientTolerance > 0 {
		settings.GradientThreshold = s.GradientTolerance
	}

	start := proj(x0)
	res, err := optimize.Minimize(problem, start, settings, &optimize.BFGS{})
	if res == nil {
		return Result{X: start, Loss: wrapped(start), Trace: rec.trace}
	}

	out := Result{
		X:          proj(res.X),
		Loss:       res.F,
		Iterations: res.Stats.MajorIterations,
		Converged:  err == nil,
		Trace:      rec.trace,
	}
	switch res.Status {
	case optimize.NotTerminated, optimize.Failure, optimize.IterationLimit,
		optimize.FunctionEvaluationLimit, optimize.GradientEvaluationLimit,
		optimize.RuntimeLimit:
		out.Converged = false
	}

	// A tolerance below finite-difference noise can never be measured, so the
	// line search ends up stalling at the optimum with a Failure status.
	// Reclassify that stop as converged when the final point is stationary
	// within the noise.
	stalled := errors.Is(err, optimize.ErrNoProgress) || errors.Is(err, optimize.ErrLinesearcherFailure)
	if !out.Converged && stalled {
		grad := make([]float64, len(out.X))
		fd.Gradient(grad, wrapped, out.X, nil)
		tol := gradientNoise * (1 + math.Abs(out.Loss))
		if s.GradientTolerance > tol {
			tol = s.GradientTolerance
		}
		if floats.Norm(grad, math.Inf(1)) <= tol {
			out.Converged = true
		}
	}
	return out
}

type lossRecorder struct {
	trace []float64
}

func (r *lossRecorder) Init() error { return nil }

func (r *lossRecorder) Record(loc *optimize.Location, op optimize.Operation, _ *optimize.Stats) error {
	if op == optimize.MajorIteration {
		r.trace = append(r.trace, loc.F)
	}
	return nil
}
