// Package metrics provides the centralized Prometheus registry for the
// tipster pipeline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	MatchesReplayedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tennis_tipster",
		Name:      "matches_replayed_total",
		Help:      "Total number of history matches replayed into rating state",
	})
	FixturesScoredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tennis_tipster",
		Name:      "fixtures_scored_total",
		Help:      "Total number of fixtures scored by the model",
	})
	FixturesSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tennis_tipster",
		Name:      "fixtures_skipped_total",
		Help:      "Total number of fixtures skipped for invalid odds or data",
	})
	TipsGeneratedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tennis_tipster",
		Name:      "tips_generated_total",
		Help:      "Total number of tips that cleared the EV threshold",
	})
	SourceRefreshesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tennis_tipster",
		Name:      "source_refreshes_total",
		Help:      "Total number of successful remote source refreshes",
	})
	TrainingRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tennis_tipster",
		Name:      "training_runs_total",
		Help:      "Total number of model training runs",
	})
)

// Gauge metrics
var (
	ModelAUC = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tennis_tipster",
		Name:      "model_auc",
		Help:      "Cross-validated AUC of the most recently trained model",
	})
	ModelLogLoss = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tennis_tipster",
		Name:      "model_log_loss",
		Help:      "Cross-validated log loss of the most recently trained model",
	})
	TrainingFoldsUsed = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tennis_tipster",
		Name:      "training_folds_used",
		Help:      "Usable validation folds in the last training run",
	})
	PredictionCacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tennis_tipster",
		Name:      "prediction_cache_hit_ratio",
		Help:      "Hit ratio of the prediction cache",
	})
	TrackedPlayers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tennis_tipster",
		Name:      "tracked_players",
		Help:      "Players with rating state after the last replay",
	})
)

// Histogram metrics
var (
	TrainingDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tennis_tipster",
		Name:      "training_duration_seconds",
		Help:      "Duration of model training runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
	TipGenerationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tennis_tipster",
		Name:      "tip_generation_duration_seconds",
		Help:      "Duration of a full tip generation pass in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(MatchesReplayedTotal)
		registry.MustRegister(FixturesScoredTotal)
		registry.MustRegister(FixturesSkippedTotal)
		registry.MustRegister(TipsGeneratedTotal)
		registry.MustRegister(SourceRefreshesTotal)
		registry.MustRegister(TrainingRunsTotal)

		registry.MustRegister(ModelAUC)
		registry.MustRegister(ModelLogLoss)
		registry.MustRegister(TrainingFoldsUsed)
		registry.MustRegister(PredictionCacheHitRatio)
		registry.MustRegister(TrackedPlayers)

		registry.MustRegister(TrainingDuration)
		registry.MustRegister(TipGenerationDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordTraining records one training run with its CV outcome.
func RecordTraining(durationSeconds, auc, logLoss float64, foldsUsed int) {
	TrainingRunsTotal.Inc()
	TrainingDuration.Observe(durationSeconds)
	ModelAUC.Set(auc)
	ModelLogLoss.Set(logLoss)
	TrainingFoldsUsed.Set(float64(foldsUsed))
}

// RecordTipGeneration records one full tip generation pass.
func RecordTipGeneration(durationSeconds float64, scored, skipped, tips int) {
	TipGenerationDuration.Observe(durationSeconds)
	FixturesScoredTotal.Add(float64(scored))
	FixturesSkippedTotal.Add(float64(skipped))
	TipsGeneratedTotal.Add(float64(tips))
}
