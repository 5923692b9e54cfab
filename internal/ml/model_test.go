package ml

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Custodio30/tennis-bot-tipster/internal/config"
)

// syntheticData builds mirrored samples where the first feature drives
// the outcome with some noise.
func syntheticData(n int, seed int64) ([][]float64, []float64) {
	rng := rand.New(rand.NewSource(seed))
	x := make([][]float64, 0, 2*n)
	y := make([]float64, 0, 2*n)
	for i := 0; i < n; i++ {
		v := []float64{rng.NormFloat64() * 100, rng.NormFloat64() * 50, rng.NormFloat64() * 0.3, rng.NormFloat64()}
		label := 0.0
		if sigmoid(v[0]/80) > rng.Float64() {
			label = 1.0
		}
		x = append(x, v, []float64{-v[0], -v[1], -v[2], -v[3]})
		y = append(y, label, 1.0-label)
	}
	return x, y
}

func testModelConfig() config.ModelConfig {
	return config.ModelConfig{
		Type:           KindSingle,
		Calibration:    CalibrationSigmoid,
		NSplits:        4,
		EnsembleWeight: 0.5,
		MaxIter:        200,
		L2:             1.0,
		Trees:          25,
		TreeDepth:      3,
		LearningRate:   0.1,
	}
}

func TestFitLogisticSeparatesClasses(t *testing.T) {
	x, y := syntheticData(400, 1)
	model, err := FitLogistic(x, y, LogisticOptions{MaxIter: 200, L2: 1.0})
	require.NoError(t, err)

	assert.Greater(t, model.PredictProba([]float64{200, 0, 0, 0}), 0.7)
	assert.Less(t, model.PredictProba([]float64{-200, 0, 0, 0}), 0.3)
}

func TestFitLogisticMirrorSymmetry(t *testing.T) {
	x, y := syntheticData(400, 2)
	model, err := FitLogistic(x, y, LogisticOptions{MaxIter: 200, L2: 1.0})
	require.NoError(t, err)

	// Mirror-augmented training keeps the model slot-agnostic.
	for _, v := range [][]float64{{50, 20, 0.1, 0.5}, {-120, 40, -0.2, 1}, {0, 0, 0, 0}} {
		mirrored := []float64{-v[0], -v[1], -v[2], -v[3]}
		assert.InDelta(t, 1.0, model.PredictProba(v)+model.PredictProba(mirrored), 0.02)
	}
}

func TestFitLogisticRejectsEmptyInput(t *testing.T) {
	_, err := FitLogistic(nil, nil, LogisticOptions{MaxIter: 10})
	assert.Error(t, err)
}

func TestPredictProbaClamped(t *testing.T) {
	model := &Logistic{Weights: []float64{1000, 0, 0, 0}, Bias: 0}
	assert.LessOrEqual(t, model.PredictProba([]float64{1000, 0, 0, 0}), 1-probEps)
	assert.GreaterOrEqual(t, model.PredictProba([]float64{-1000, 0, 0, 0}), probEps)
}

func TestFitBoostedTreesLearnsSignal(t *testing.T) {
	x, y := syntheticData(400, 3)
	model, err := FitBoostedTrees(x, y, TreeOptions{Trees: 25, Depth: 3, LearningRate: 0.1})
	require.NoError(t, err)
	require.Len(t, model.Trees, 25)

	assert.Greater(t, model.PredictProba([]float64{200, 0, 0, 0}), 0.6)
	assert.Less(t, model.PredictProba([]float64{-200, 0, 0, 0}), 0.4)
}

func TestFitBoostedTreesConstantFeatures(t *testing.T) {
	// No usable split anywhere: every tree collapses to a single leaf
	// and the prediction stays at the base rate.
	x := make([][]float64, 40)
	y := make([]float64, 40)
	for i := range x {
		x[i] = []float64{0, 0, 0, 0}
		if i%2 == 0 {
			y[i] = 1
		}
	}
	model, err := FitBoostedTrees(x, y, TreeOptions{Trees: 5, Depth: 3, LearningRate: 0.1})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, model.PredictProba([]float64{0, 0, 0, 0}), 1e-6)
}

func TestFitCalibrationSigmoidMonotonic(t *testing.T) {
	x, y := syntheticData(300, 4)
	base, err := FitLogistic(x, y, LogisticOptions{MaxIter: 200, L2: 1.0})
	require.NoError(t, err)

	scores := make([]float64, len(x))
	for i, row := range x {
		scores[i] = base.Score(row)
	}
	cal, err := FitCalibration(CalibrationSigmoid, scores, y, 200)
	require.NoError(t, err)

	assert.Less(t, cal.Apply(-3.0), cal.Apply(0.0))
	assert.Less(t, cal.Apply(0.0), cal.Apply(3.0))
}

func TestFitCalibrationIsotonic(t *testing.T) {
	scores := []float64{-2, -1.5, -1, -0.5, 0, 0.5, 1, 1.5, 2, 2.5}
	labels := []float64{0, 0, 1, 0, 0, 1, 1, 0, 1, 1}

	cal, err := FitCalibration(CalibrationIsotonic, scores, labels, 0)
	require.NoError(t, err)

	// Non-decreasing over the whole score range.
	prev := cal.Apply(-10)
	for s := -3.0; s <= 3.0; s += 0.25 {
		cur := cal.Apply(s)
		assert.GreaterOrEqual(t, cur+1e-12, prev)
		prev = cur
	}
}

func TestFitCalibrationUnknownMethod(t *testing.T) {
	_, err := FitCalibration("spline", []float64{0}, []float64{1}, 10)
	assert.Error(t, err)
}

func TestFitCalibratedSingleClassStaysUncalibrated(t *testing.T) {
	x := [][]float64{{1, 0, 0, 0}, {2, 0, 0, 0}, {3, 0, 0, 0}}
	y := []float64{1, 1, 1}

	model, err := fitCalibrated(x, y, BaseLogistic, testModelConfig())
	require.NoError(t, err)
	assert.False(t, model.Calibrated)
	assert.Nil(t, model.Calibration)

	// Still predicts through the raw sigmoid.
	p := model.PredictProba([]float64{1, 0, 0, 0})
	assert.Greater(t, p, 0.0)
	assert.Less(t, p, 1.0)
}

func TestFitVariantEnsemble(t *testing.T) {
	x, y := syntheticData(200, 5)
	cfg := testModelConfig()
	cfg.Type = KindEnsemble

	artifact, err := fitVariant(x, y, cfg)
	require.NoError(t, err)
	require.NoError(t, artifact.Validate())
	require.Equal(t, KindEnsemble, artifact.Kind)

	// The blend sits between its two members.
	v := []float64{80, 10, 0.2, 0.5}
	pl := artifact.Ensemble.Logistic.PredictProba(v)
	pt := artifact.Ensemble.Trees.PredictProba(v)
	p := artifact.PredictProba(v)
	assert.InDelta(t, 0.5*pl+0.5*pt, p, 1e-12)
}

func TestArtifactValidate(t *testing.T) {
	assert.Error(t, (&Artifact{Kind: KindSingle}).Validate())
	assert.Error(t, (&Artifact{Kind: KindEnsemble, Ensemble: &EnsembleModel{}}).Validate())
	assert.Error(t, (&Artifact{Kind: "mystery"}).Validate())

	ok := &Artifact{Kind: KindSingle, Single: &CalibratedModel{BaseKind: BaseLogistic, Logistic: &Logistic{Weights: []float64{0}}}}
	assert.NoError(t, ok.Validate())
}
