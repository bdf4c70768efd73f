package model

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"anfis/pkg/fuzzy"
)

// State tracks how far a model has moved through the training pipeline.
type State int

const (
	StateNew State = iota
	StateInitialized
	StateEstimated
	StateOptimizing
	StateTrained
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateInitialized:
		return "initialized"
	case StateEstimated:
		return "estimated"
	case StateOptimizing:
		return "optimizing"
	case StateTrained:
		return "trained"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ErrNotTrained gates prediction until training has completed.
var ErrNotTrained = errors.New("model: not trained")

// Consequent is the first-order output plane of one rule.
type Consequent struct {
	Weights []float64
	Bias    float64
}

// Evaluate computes the rule's linear output at the input point.
func (c Consequent) Evaluate(inputs []float64) float64 {
	y := c.Bias
	for i, w := range c.Weights {
		y += w * inputs[i]
	}
	return y
}

// Model is a first-order Sugeno fuzzy system over Gaussian input partitions.
// A trained model is read-only, so concurrent prediction is safe.
type Model struct {
	Sets        []fuzzy.MembershipSet
	Rules       []fuzzy.Rule
	Consequents []Consequent
	SigmaFloor  float64

	state State
}

// State reports the model's position in the training pipeline.
func (m *Model) State() State { return m.state }

// Predict returns the viscosity estimate for one operating point.
// It fails with ErrNotTrained until training has completed.
func (m *Model) Predict(temperature, pressure float64) (float64, error) {
	if m.state != StateTrained {
		return 0, ErrNotTrained
	}
	return m.evaluate([]float64{temperature, pressure}), nil
}

// PredictAll evaluates the model across many input rows, chunked over the
// available cores.
func (m *Model) PredictAll(inputs [][]float64) ([]float64, error) {
	if m.state != StateTrained {
		return nil, ErrNotTrained
	}
	for _, row := range inputs {
		if len(row) != len(m.Sets) {
			return nil, errors.New("model: input width does not match trained dimensions")
		}
	}

	n := len(inputs)
	preds := make([]float64, n)
	var wg sync.WaitGroup
	workers := runtime.GOMAXPROCS(0)
	rowsPerWorker := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * rowsPerWorker
		end := start + rowsPerWorker
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				preds[i] = m.evaluate(inputs[i])
			}
		}(start, end)
	}
	wg.Wait()
	return preds, nil
}

func (m *Model) evaluate(inputs []float64) float64 {
	weights := fuzzy.Normalize(fuzzy.FiringStrengths(inputs, m.Sets, m.Rules, m.SigmaFloor))
	return ruleOutput(inputs, weights, m.Consequents)
}

// ruleOutput blends the rule planes by their normalized weights.
func ruleOutput(inputs, weights []float64, consequents []Consequent) float64 {
	y := 0.0
	for r, c := range consequents {
		y += weights[r] * c.Evaluate(inputs)
	}
	return y
}
