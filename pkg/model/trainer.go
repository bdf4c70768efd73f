package model

import (
	"errors"

	"go.uber.org/zap"

	"anfis/pkg/data"
	"anfis/pkg/fuzzy"
	"anfis/pkg/optim"
)

// Fatal input errors. Degenerate geometry and singular estimation systems
// are recovered with fallbacks and warnings instead.
var (
	ErrEmptyDataset     = errors.New("model: empty dataset")
	ErrInvalidTermCount = errors.New("model: term counts must cover every input dimension and be positive")
)

// Config carries the training hyperparameters.
type Config struct {
	// NumTerms is the membership term count per input dimension.
	NumTerms []int
	// MaxIterations caps the premise optimization.
	MaxIterations int
	// SigmaFloor is the smallest width a membership term may take.
	SigmaFloor float64
	// GradientTolerance stops the premise optimization early.
	GradientTolerance float64
	// FreezeConsequents keeps the phase-two consequents fixed during premise
	// optimization instead of re-estimating them at every loss evaluation.
	FreezeConsequents bool
}

// DefaultConfig returns the training defaults: two terms per dimension and
// a bounded premise search with alternating consequent re-estimation.
func DefaultConfig() Config {
	return Config{
		NumTerms:          []int{2, 2},
		MaxIterations:     200,
		SigmaFloor:        fuzzy.DefaultSigmaFloor,
		GradientTolerance: 1e-8,
	}
}

// Validate reports the first fatal problem with the configuration.
func (c Config) Validate() error {
	if len(c.NumTerms) != data.NumInputs {
		return ErrInvalidTermCount
	}
	for _, n := range c.NumTerms {
		if n < 1 {
			return ErrInvalidTermCount
		}
	}
	if c.MaxIterations < 1 {
		return errors.New("model: iteration cap must be positive")
	}
	if c.SigmaFloor <= 0 {
		return errors.New("model: sigma floor must be positive")
	}
	return nil
}

// Trainer drives the three-phase fit: partition initialization, consequent
// estimation and premise refinement.
type Trainer struct {
	cfg Config
	log *zap.Logger
}

// NewTrainer returns a Trainer with the given configuration. A nil logger
// disables logging.
func NewTrainer(cfg Config, log *zap.Logger) *Trainer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Trainer{cfg: cfg, log: log}
}

// Fit trains a model on the dataset and returns it in the trained state.
// A premise search that stops on its iteration cap keeps the best parameters
// found and is reported as a warning, not an error.
func (t *Trainer) Fit(ds *data.Dataset) (*Model, error) {
	if err := t.cfg.Validate(); err != nil {
		return nil, err
	}
	if ds == nil || ds.Len() == 0 {
		return nil, ErrEmptyDataset
	}

	inputs := ds.Inputs()
	targets := ds.Targets()

	m := &Model{SigmaFloor: t.cfg.SigmaFloor}

	// Phase 1: cluster each input dimension into a Gaussian partition.
	m.Sets = make([]fuzzy.MembershipSet, data.NumInputs)
	for d := 0; d < data.NumInputs; d++ {
		set, degenerate := fuzzy.Partition(ds.Column(d), t.cfg.NumTerms[d], t.cfg.SigmaFloor)
		if degenerate {
			t.log.Warn("degenerate input dimension, spread terms evenly",
				zap.Int("dimension", d),
				zap.Int("terms", t.cfg.NumTerms[d]))
		}
		m.Sets[d] = set
	}
	m.Rules = fuzzy.BuildRules(t.cfg.NumTerms)
	m.state = StateInitialized
	t.log.Info("initialized fuzzy partitions",
		zap.Ints("terms", t.cfg.NumTerms),
		zap.Int("rules", len(m.Rules)))

	// Phase 2: one global least-squares estimate of the rule planes.
	weights := normalizedWeights(inputs, m.Sets, m.Rules, t.cfg.SigmaFloor)
	cons, minNorm := EstimateConsequents(inputs, targets, weights, len(m.Rules))
	if minNorm {
		t.log.Warn("singular design matrix, used minimum-norm solve")
	}
	m.Consequents = cons
	m.state = StateEstimated
	t.log.Info("estimated consequents",
		zap.Float64("mse", MSE(targets, predictRows(inputs, weights, cons))))

	// Phase 3: bounded quasi-Newton refinement of centers and widths.
	m.state = StateOptimizing
	res := t.refinePremises(m, inputs, targets)
	m.Sets = fuzzy.Unflatten(res.X, t.cfg.NumTerms)

	// Re-estimate the planes at the final premise parameters so the model
	// is consistent whether or not the search converged.
	weights = normalizedWeights(inputs, m.Sets, m.Rules, t.cfg.SigmaFloor)
	cons, minNorm = EstimateConsequents(inputs, targets, weights, len(m.Rules))
	if minNorm {
		t.log.Warn("singular design matrix at final parameters, used minimum-norm solve")
	}
	m.Consequents = cons
	m.state = StateTrained

	if !res.Converged {
		t.log.Warn("premise optimization stopped before convergence",
			zap.Int("iterations", res.Iterations),
			zap.Int("cap", t.cfg.MaxIterations))
	}
	t.log.Info("training complete",
		zap.Float64("mse", MSE(targets, predictRows(inputs, weights, cons))),
		zap.Int("iterations", res.Iterations),
		zap.Bool("converged", res.Converged))
	return m, nil
}

func (t *Trainer) refinePremises(m *Model, inputs [][]float64, targets []float64) optim.Result {
	counts := t.cfg.NumTerms
	frozen := m.Consequents

	objective := func(vec []float64) float64 {
		sets := fuzzy.Unflatten(vec, counts)
		weights := normalizedWeights(inputs, sets, m.Rules, t.cfg.SigmaFloor)
		cons := frozen
		if !t.cfg.FreezeConsequents {
			cons, _ = EstimateConsequents(inputs, targets, weights, len(m.Rules))
		}
		return MSE(targets, predictRows(inputs, weights, cons))
	}

	res := optim.Minimize(objective, fuzzy.Flatten(m.Sets),
		fuzzy.SigmaLowerBounds(counts, t.cfg.SigmaFloor),
		optim.Settings{
			MaxIterations:     t.cfg.MaxIterations,
			GradientTolerance: t.cfg.GradientTolerance,
		})
	for i, loss := range res.Trace {
		t.log.Debug("premise iteration", zap.Int("iteration", i), zap.Float64("mse", loss))
	}
	return res
}

// normalizedWeights evaluates every sample's normalized firing strengths.
func normalizedWeights(inputs [][]float64, sets []fuzzy.MembershipSet, rules []fuzzy.Rule, sigmaFloor float64) [][]float64 {
	weights := make([][]float64, len(inputs))
	for i, row := range inputs {
		weights[i] = fuzzy.Normalize(fuzzy.FiringStrengths(row, sets, rules, sigmaFloor))
	}
	return weights
}

// predictRows blends the rule planes at every sample given precomputed weights.
func predictRows(inputs [][]float64, weights [][]float64, consequents []Consequent) []float64 {
	preds := make([]float64, len(inputs))
	for i, row := range inputs {
		preds[i] = ruleOutput(row, weights[i], consequents)
	}
	return preds
}
