package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	log = zap.NewNop()
	os.Exit(m.Run())
}

func TestTrainConfigDefaults(t *testing.T) {
	mc := trainConfig(runConfig{})
	assert.Equal(t, []int{2, 2}, mc.NumTerms)
	assert.Equal(t, 200, mc.MaxIterations)
	assert.False(t, mc.FreezeConsequents)
}

func TestTrainConfigOverrides(t *testing.T) {
	mc := trainConfig(runConfig{
		NumTerms:          []int{3, 2},
		MaxIterations:     50,
		SigmaFloor:        1e-4,
		GradientTolerance: 1e-6,
		FreezeConsequents: true,
	})
	assert.Equal(t, []int{3, 2}, mc.NumTerms)
	assert.Equal(t, 50, mc.MaxIterations)
	assert.Equal(t, 1e-4, mc.SigmaFloor)
	assert.Equal(t, 1e-6, mc.GradientTolerance)
	assert.True(t, mc.FreezeConsequents)
}

func TestLoadConfig(t *testing.T) {
	assert.Equal(t, runConfig{}, loadConfig(""))

	path := filepath.Join(t.TempDir(), "anfis.toml")
	content := `dataset_file = "measurements.csv"
num_terms = [3, 2]
max_iterations = 120
test_ratio = 0.2
seed = 7
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := loadConfig(path)
	assert.Equal(t, "measurements.csv", cfg.DatasetFile)
	assert.Equal(t, []int{3, 2}, cfg.NumTerms)
	assert.Equal(t, 120, cfg.MaxIterations)
	assert.Equal(t, 0.2, cfg.TestRatio)
	assert.Equal(t, int64(7), cfg.Seed)
}
