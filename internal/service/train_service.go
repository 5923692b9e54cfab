// Package service wires the rating replay, model and decision engine
// into the operations the CLI and daemon expose.
package service

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Custodio30/tennis-bot-tipster/internal/config"
	"github.com/Custodio30/tennis-bot-tipster/internal/metrics"
	"github.com/Custodio30/tennis-bot-tipster/internal/ml"
	"github.com/Custodio30/tennis-bot-tipster/internal/models"
	"github.com/Custodio30/tennis-bot-tipster/internal/rating"
)

// ratingParams maps configuration onto replay parameters.
func ratingParams(cfg *config.Config) rating.Params {
	return rating.Params{
		Start:         cfg.Elo.Start,
		KBase:         cfg.Elo.KBase,
		SurfaceKBoost: cfg.Elo.SurfaceKBoost,
		H2HDecay:      cfg.Features.H2HDecay,
		FormWindow:    cfg.Features.FormWindow,
	}
}

// TrainService trains, evaluates and persists model artifacts.
type TrainService struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewTrainService creates a training service.
func NewTrainService(cfg *config.Config, logger *logrus.Logger) *TrainService {
	if logger == nil {
		logger = logrus.New()
	}
	return &TrainService{cfg: cfg, logger: logger}
}

// Train builds the dataset from history and trains the configured model
// variant, reporting temporal CV metrics on the returned artifact.
func (s *TrainService) Train(history []models.Match) (*ml.Artifact, error) {
	if len(history) == 0 {
		return nil, models.ErrNoTrainingData
	}

	start := time.Now()
	ds := ml.BuildDataset(history, ratingParams(s.cfg), s.logger)

	version := time.Now().UTC().Format("20060102T150405")
	artifact, err := ml.Train(ds, s.cfg.Model, version, s.logger)
	if err != nil {
		return nil, err
	}

	metrics.RecordTraining(
		time.Since(start).Seconds(),
		artifact.Metrics.AUC,
		artifact.Metrics.LogLoss,
		artifact.Metrics.FoldsUsed,
	)

	if !artifact.Metrics.Available {
		s.logger.Warn("Validation metrics not available: no usable folds")
	}

	return artifact, nil
}

// TrainAndSave trains and writes the artifact to the configured path.
func (s *TrainService) TrainAndSave(history []models.Match) (*ml.Artifact, error) {
	artifact, err := s.Train(history)
	if err != nil {
		return nil, err
	}
	if err := ml.SaveArtifact(artifact, s.cfg.Model.ArtifactPath); err != nil {
		return nil, fmt.Errorf("failed to persist artifact: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"path":    s.cfg.Model.ArtifactPath,
		"version": artifact.Version,
	}).Info("Model artifact saved")
	return artifact, nil
}

// Evaluate runs temporal cross validation without refitting or saving.
func (s *TrainService) Evaluate(history []models.Match) (ml.Metrics, error) {
	if len(history) == 0 {
		return ml.Metrics{}, models.ErrNoTrainingData
	}
	ds := ml.BuildDataset(history, ratingParams(s.cfg), s.logger)
	return ml.CrossValidate(ds, s.cfg.Model, s.logger), nil
}
