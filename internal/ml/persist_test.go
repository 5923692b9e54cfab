package ml

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadArtifactRoundTrip(t *testing.T) {
	x, y := syntheticData(150, 11)
	cfg := testModelConfig()
	cfg.Type = KindEnsemble

	artifact, err := Train(&Dataset{X: x, Y: y}, cfg, "rt-1", nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "models", "model.json")
	require.NoError(t, SaveArtifact(artifact, path))

	loaded, err := LoadArtifact(path)
	require.NoError(t, err)
	assert.Equal(t, artifact.Kind, loaded.Kind)
	assert.Equal(t, artifact.Version, loaded.Version)
	assert.Equal(t, artifact.Metrics, loaded.Metrics)

	// The reloaded model must predict identically.
	for _, v := range [][]float64{{0, 0, 0, 0}, {150, -30, 0.4, 1.2}, {-60, 80, -0.1, -2}} {
		assert.InDelta(t, artifact.PredictProba(v), loaded.PredictProba(v), 1e-12)
	}
}

func TestSaveArtifactRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	err := SaveArtifact(&Artifact{Kind: "mystery"}, path)
	assert.Error(t, err)
	assert.NoFileExists(t, path)
}

func TestLoadArtifactMissingFile(t *testing.T) {
	_, err := LoadArtifact(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadArtifactRejectsBadKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	artifact := &Artifact{Kind: KindSingle, Single: &CalibratedModel{BaseKind: BaseLogistic, Logistic: &Logistic{Weights: []float64{1}}}}
	require.NoError(t, SaveArtifact(artifact, path))

	loaded, err := LoadArtifact(path)
	require.NoError(t, err)
	loaded.Kind = KindEnsemble
	assert.Error(t, loaded.Validate())
}
