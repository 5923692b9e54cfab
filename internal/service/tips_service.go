package service

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Custodio30/tennis-bot-tipster/internal/config"
	"github.com/Custodio30/tennis-bot-tipster/internal/engine"
	"github.com/Custodio30/tennis-bot-tipster/internal/features"
	"github.com/Custodio30/tennis-bot-tipster/internal/metrics"
	"github.com/Custodio30/tennis-bot-tipster/internal/ml"
	"github.com/Custodio30/tennis-bot-tipster/internal/models"
	"github.com/Custodio30/tennis-bot-tipster/internal/rating"
)

// TipsService scores fixtures against replayed rating state and emits
// the ranked tip slate.
type TipsService struct {
	cfg     *config.Config
	logger  *logrus.Logger
	cache   *ml.PredictionCache
	decider *engine.Engine
	fatigue *features.Fatigue
}

// NewTipsService creates a tips service with a prediction cache.
func NewTipsService(cfg *config.Config, logger *logrus.Logger) *TipsService {
	if logger == nil {
		logger = logrus.New()
	}
	ttl := time.Duration(cfg.Model.CacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	maxSize := cfg.Model.CacheMaxSize
	if maxSize <= 0 {
		maxSize = 10000
	}

	return &TipsService{
		cfg:     cfg,
		logger:  logger,
		cache:   ml.NewPredictionCache(ttl, maxSize),
		decider: engine.New(cfg.Selection),
		fatigue: features.NewFatigue(cfg.Fatigue),
	}
}

// GenerateTips replays the history, scores every fixture and returns the
// admitted tips ranked by best EV. A single bad fixture is skipped, never
// fatal; fixtures with unbackable odds are dropped before scoring.
func (s *TipsService) GenerateTips(history []models.Match, fixtures []models.Fixture, artifact *ml.Artifact) []*models.Tip {
	start := time.Now()
	now := start.UTC()

	store := rating.NewStore(ratingParams(s.cfg), s.logger)
	replayed := store.Replay(history)
	metrics.MatchesReplayedTotal.Add(float64(replayed))
	metrics.TrackedPlayers.Set(float64(store.Len()))

	builder := features.NewBuilder(store)

	var tips []*models.Tip
	scored, skipped := 0, 0
	for i := range fixtures {
		fixture := &fixtures[i]
		if !fixture.HasValidOdds() {
			skipped++
			s.logger.WithFields(logrus.Fields{
				"player1": fixture.Player1,
				"player2": fixture.Player2,
			}).Debug("Skipping fixture with unbackable odds")
			continue
		}

		probP1 := s.predict(builder, artifact, fixture)
		probP2 := 1 - probP1

		fixtureDate := fixture.Date
		if fixtureDate.IsZero() {
			fixtureDate = now
		}
		sig1 := s.fatigue.Signal(store.Get(fixture.Player1), fixtureDate)
		sig2 := s.fatigue.Signal(store.Get(fixture.Player2), fixtureDate)
		probP1, probP2 = s.fatigue.Adjust(probP1, probP2, sig1, sig2)

		scored++
		if tip := s.decider.Decide(fixture, probP1, probP2, now); tip != nil {
			tips = append(tips, tip)
		}
	}

	engine.Rank(tips)

	_, _, ratio := s.cache.Stats()
	metrics.PredictionCacheHitRatio.Set(ratio)
	metrics.RecordTipGeneration(time.Since(start).Seconds(), scored, skipped, len(tips))

	s.logger.WithFields(logrus.Fields{
		"fixtures": len(fixtures),
		"scored":   scored,
		"skipped":  skipped,
		"tips":     len(tips),
	}).Info("Tip slate generated")

	return tips
}

// predict returns the calibrated pre-fatigue probability for player 1,
// caching by matchup, surface and model version. Fatigue is date
// dependent and stays outside the cache.
func (s *TipsService) predict(builder *features.Builder, artifact *ml.Artifact, fixture *models.Fixture) float64 {
	surface := models.NormalizeSurface(fixture.Surface)
	key := ml.CacheKey{
		Player1:      fixture.Player1,
		Player2:      fixture.Player2,
		Surface:      surface,
		ModelVersion: artifact.Version,
	}

	if p, found := s.cache.Get(key); found {
		return p
	}

	v := builder.Vector(fixture.Player1, fixture.Player2, surface)
	p := artifact.PredictProba(v)
	s.cache.Set(key, p)
	return p
}
