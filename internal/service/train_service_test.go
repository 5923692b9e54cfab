package service

import (
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Custodio30/tennis-bot-tipster/internal/ml"
	"github.com/Custodio30/tennis-bot-tipster/internal/models"
)

// leagueHistory simulates a small tour with a stable pecking order so
// the rating features carry real signal.
func leagueHistory(matches int, seed int64) []models.Match {
	players := []string{"Alice Ace", "Bob Baseline", "Carol Clay", "Dana Drop", "Eve Edge", "Fay Fair"}
	surfaces := []string{"Hard", "Clay", "Grass"}
	rng := rand.New(rand.NewSource(seed))

	var history []models.Match
	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < matches; i++ {
		a := rng.Intn(len(players))
		b := rng.Intn(len(players))
		if a == b {
			continue
		}
		// Lower index is the stronger player, with upsets.
		winner := players[min(a, b)]
		if rng.Float64() < 0.25 {
			winner = players[max(a, b)]
		}
		history = append(history, models.Match{
			Date:    base.AddDate(0, 0, i/2),
			Player1: players[a],
			Player2: players[b],
			Winner:  winner,
			Surface: surfaces[i%len(surfaces)],
			Level:   "ATP",
		})
	}
	return history
}

func TestTrainProducesEvaluatedArtifact(t *testing.T) {
	svc := NewTrainService(testConfig(), nil)

	artifact, err := svc.Train(leagueHistory(300, 1))
	require.NoError(t, err)
	require.NoError(t, artifact.Validate())

	assert.Equal(t, ml.KindSingle, artifact.Kind)
	assert.NotEmpty(t, artifact.Version)
	assert.True(t, artifact.Metrics.Available)
	assert.Greater(t, artifact.Metrics.AUC, 0.5)
}

func TestTrainEmptyHistory(t *testing.T) {
	svc := NewTrainService(testConfig(), nil)
	_, err := svc.Train(nil)
	assert.ErrorIs(t, err, models.ErrNoTrainingData)
}

func TestTrainAndSaveRoundTrip(t *testing.T) {
	cfg := testConfig()
	cfg.Model.ArtifactPath = filepath.Join(t.TempDir(), "model.json")
	svc := NewTrainService(cfg, nil)

	artifact, err := svc.TrainAndSave(leagueHistory(200, 2))
	require.NoError(t, err)

	loaded, err := ml.LoadArtifact(cfg.Model.ArtifactPath)
	require.NoError(t, err)
	assert.Equal(t, artifact.Version, loaded.Version)

	v := []float64{120, 50, 0.3, 1.0}
	assert.InDelta(t, artifact.PredictProba(v), loaded.PredictProba(v), 1e-12)
}

func TestTrainEnsembleVariant(t *testing.T) {
	cfg := testConfig()
	cfg.Model.Type = ml.KindEnsemble
	svc := NewTrainService(cfg, nil)

	artifact, err := svc.Train(leagueHistory(300, 3))
	require.NoError(t, err)
	assert.Equal(t, ml.KindEnsemble, artifact.Kind)
	require.NoError(t, artifact.Validate())
}

func TestEvaluateReportsFoldCounts(t *testing.T) {
	svc := NewTrainService(testConfig(), nil)

	metrics, err := svc.Evaluate(leagueHistory(300, 4))
	require.NoError(t, err)
	assert.Equal(t, 3, metrics.FoldsTotal)
	assert.True(t, metrics.Available)
	assert.LessOrEqual(t, metrics.FoldsUsed, metrics.FoldsTotal)
}
