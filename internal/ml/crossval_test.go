package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemporalFoldsLayout(t *testing.T) {
	folds := temporalFolds(100, 4)
	require.Len(t, folds, 4)

	// block = 100/5 = 20
	assert.Equal(t, fold{trainEnd: 20, valEnd: 40}, folds[0])
	assert.Equal(t, fold{trainEnd: 40, valEnd: 60}, folds[1])
	assert.Equal(t, fold{trainEnd: 60, valEnd: 80}, folds[2])
	// Last fold absorbs the remainder.
	assert.Equal(t, fold{trainEnd: 80, valEnd: 100}, folds[3])

	for _, f := range folds {
		assert.Less(t, f.trainEnd, f.valEnd)
	}
}

func TestTemporalFoldsTooFewSamples(t *testing.T) {
	assert.Nil(t, temporalFolds(3, 5))
	assert.Nil(t, temporalFolds(10, 0))
}

func TestCrossValidateReportsUsableFolds(t *testing.T) {
	x, y := syntheticData(300, 7)
	ds := &Dataset{X: x, Y: y}

	metrics := CrossValidate(ds, testModelConfig(), nil)
	assert.True(t, metrics.Available)
	assert.Equal(t, 4, metrics.FoldsTotal)
	assert.Equal(t, 4, metrics.FoldsUsed)

	// A real signal should beat coin-flip AUC and coin-flip log loss.
	assert.Greater(t, metrics.AUC, 0.5)
	assert.Less(t, metrics.LogLoss, 0.75)
}

func TestCrossValidateSkipsSingleClassTrainingBlock(t *testing.T) {
	// blocks of 3: the first training block [0,3) carries only wins, so
	// fold 0 must be excluded from the metric mean.
	x := make([][]float64, 12)
	y := make([]float64, 12)
	for i := range x {
		y[i] = float64(i % 2)
		x[i] = []float64{y[i]*2 - 1, 0, 0, 0}
	}
	for i := 0; i < 3; i++ {
		y[i] = 1
	}

	cfg := testModelConfig()
	cfg.NSplits = 3
	metrics := CrossValidate(&Dataset{X: x, Y: y}, cfg, nil)

	assert.Equal(t, 3, metrics.FoldsTotal)
	assert.Equal(t, 2, metrics.FoldsUsed)
	assert.True(t, metrics.Available)
}

func TestCrossValidateUnavailableWhenNoFolds(t *testing.T) {
	ds := &Dataset{X: [][]float64{{0, 0, 0, 0}}, Y: []float64{1}}
	metrics := CrossValidate(ds, testModelConfig(), nil)
	assert.False(t, metrics.Available)
	assert.Zero(t, metrics.FoldsUsed)
}

func TestRocAUCOrdersPerfectClassifier(t *testing.T) {
	probs := []float64{0.1, 0.2, 0.8, 0.9}
	labels := []float64{0, 0, 1, 1}
	assert.InDelta(t, 1.0, rocAUC(probs, labels), 1e-12)

	inverted := []float64{0.9, 0.8, 0.2, 0.1}
	assert.InDelta(t, 0.0, rocAUC(inverted, labels), 1e-12)
}

func TestLogLoss(t *testing.T) {
	assert.InDelta(t, 0.6931, logLoss([]float64{0.5, 0.5}, []float64{1, 0}), 1e-3)
	confident := logLoss([]float64{0.99, 0.01}, []float64{1, 0})
	assert.Less(t, confident, 0.05)
}

func TestTrainRefitsOnAllData(t *testing.T) {
	x, y := syntheticData(200, 8)
	ds := &Dataset{X: x, Y: y}

	artifact, err := Train(ds, testModelConfig(), "v1", nil)
	require.NoError(t, err)
	assert.Equal(t, "v1", artifact.Version)
	assert.Equal(t, KindSingle, artifact.Kind)
	assert.False(t, artifact.TrainedAt.IsZero())
	assert.True(t, artifact.Metrics.Available)
	require.NoError(t, artifact.Validate())
}

func TestTrainEmptyDataset(t *testing.T) {
	_, err := Train(&Dataset{}, testModelConfig(), "v1", nil)
	assert.Error(t, err)
}
