package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"anfis/pkg/data"
	"anfis/pkg/fuzzy"
)

func referenceDataset(t *testing.T) *data.Dataset {
	t.Helper()
	ds, err := data.FromColumns(
		[]float64{50, 60, 70, 80, 90},
		[]float64{1.0, 1.2, 1.5, 1.7, 2.0},
		[]float64{120, 125, 130, 135, 140},
	)
	require.NoError(t, err)
	return ds
}

func TestTrainerFitAndPredict(t *testing.T) {
	trainer := NewTrainer(DefaultConfig(), zap.NewNop())
	m, err := trainer.Fit(referenceDataset(t))
	require.NoError(t, err)
	require.Equal(t, StateTrained, m.State())

	got, err := m.Predict(70, 1.5)
	require.NoError(t, err)
	assert.InDelta(t, 130.0, got, 0.02*130.0)
}

func TestTrainerFitFitsTrainingPoints(t *testing.T) {
	ds := referenceDataset(t)
	trainer := NewTrainer(DefaultConfig(), nil)
	m, err := trainer.Fit(ds)
	require.NoError(t, err)

	for _, s := range ds.Samples {
		got, err := m.Predict(s.Temperature, s.Pressure)
		require.NoError(t, err)
		assert.InDelta(t, s.Viscosity, got, 0.02*s.Viscosity)
	}
}

func TestTrainerFitEmptyDataset(t *testing.T) {
	trainer := NewTrainer(DefaultConfig(), nil)

	_, err := trainer.Fit(data.New(nil))
	assert.ErrorIs(t, err, ErrEmptyDataset)

	_, err = trainer.Fit(nil)
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestTrainerFitInvalidTermCount(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumTerms = []int{2, 0}
	_, err := NewTrainer(cfg, nil).Fit(referenceDataset(t))
	assert.ErrorIs(t, err, ErrInvalidTermCount)

	cfg.NumTerms = []int{2}
	_, err = NewTrainer(cfg, nil).Fit(referenceDataset(t))
	assert.ErrorIs(t, err, ErrInvalidTermCount)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.MaxIterations = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.SigmaFloor = 0
	assert.Error(t, cfg.Validate())
}

func TestTrainerFitDegenerateDimension(t *testing.T) {
	// A constant temperature column cannot support two clusters. Training
	// must still complete through the even-spread fallback and predict
	// finite values.
	ds, err := data.FromColumns(
		[]float64{70, 70, 70, 70, 70},
		[]float64{1.0, 1.2, 1.5, 1.7, 2.0},
		[]float64{120, 125, 130, 135, 140},
	)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.MaxIterations = 20
	m, err := NewTrainer(cfg, zap.NewNop()).Fit(ds)
	require.NoError(t, err)
	require.Equal(t, StateTrained, m.State())

	got, err := m.Predict(70, 1.5)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(got))
	assert.False(t, math.IsInf(got, 0))
}

func TestTrainerFitIterationCap(t *testing.T) {
	// A cap of one iteration cannot converge on a curved surface, yet the
	// fit still hands back a usable trained model.
	ds := nonlinearDataset(t)
	cfg := DefaultConfig()
	cfg.MaxIterations = 1
	m, err := NewTrainer(cfg, zap.NewNop()).Fit(ds)
	require.NoError(t, err)
	require.Equal(t, StateTrained, m.State())

	got, err := m.Predict(5, 0.5)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(got))
}

func TestTrainerFitFrozenConsequents(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FreezeConsequents = true
	cfg.MaxIterations = 50
	m, err := NewTrainer(cfg, nil).Fit(referenceDataset(t))
	require.NoError(t, err)

	got, err := m.Predict(70, 1.5)
	require.NoError(t, err)
	assert.InDelta(t, 130.0, got, 0.02*130.0)
}

func nonlinearDataset(t *testing.T) *data.Dataset {
	t.Helper()
	var temperature, pressure, viscosity []float64
	for i := 0; i < 8; i++ {
		for _, p := range []float64{0.0, 1.0} {
			ti := float64(i)
			temperature = append(temperature, ti)
			pressure = append(pressure, p)
			viscosity = append(viscosity, ti*ti+5*p)
		}
	}
	ds, err := data.FromColumns(temperature, pressure, viscosity)
	require.NoError(t, err)
	return ds
}

func TestTrainerFitImprovesInitialLoss(t *testing.T) {
	ds := nonlinearDataset(t)
	cfg := DefaultConfig()
	cfg.MaxIterations = 60

	// Rebuild the phase-one and phase-two estimate to measure the loss the
	// premise refinement starts from.
	inputs := ds.Inputs()
	targets := ds.Targets()
	sets := make([]fuzzy.MembershipSet, data.NumInputs)
	for d := 0; d < data.NumInputs; d++ {
		sets[d], _ = fuzzy.Partition(ds.Column(d), cfg.NumTerms[d], cfg.SigmaFloor)
	}
	rules := fuzzy.BuildRules(cfg.NumTerms)
	weights := normalizedWeights(inputs, sets, rules, cfg.SigmaFloor)
	cons, _ := EstimateConsequents(inputs, targets, weights, len(rules))
	initialLoss := MSE(targets, predictRows(inputs, weights, cons))

	m, err := NewTrainer(cfg, zap.NewNop()).Fit(ds)
	require.NoError(t, err)

	preds, err := m.PredictAll(inputs)
	require.NoError(t, err)
	finalLoss := MSE(targets, preds)
	assert.LessOrEqual(t, finalLoss, initialLoss+1e-9)
}
