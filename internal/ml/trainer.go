package ml

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Custodio30/tennis-bot-tipster/internal/config"
)

// Train evaluates the configured variant with temporal cross validation,
// then refits it on the full dataset. The returned artifact carries the
// CV metrics, never metrics measured on its own training data.
func Train(ds *Dataset, cfg config.ModelConfig, version string, logger *logrus.Logger) (*Artifact, error) {
	if logger == nil {
		logger = logrus.New()
	}
	if ds.Len() == 0 {
		return nil, fmt.Errorf("train: empty dataset")
	}

	start := time.Now()
	metrics := CrossValidate(ds, cfg, logger)

	artifact, err := fitVariant(ds.X, ds.Y, cfg)
	if err != nil {
		return nil, fmt.Errorf("final refit failed: %w", err)
	}

	artifact.Version = version
	artifact.TrainedAt = time.Now().UTC()
	artifact.Metrics = metrics

	logger.WithFields(logrus.Fields{
		"kind":     artifact.Kind,
		"version":  version,
		"samples":  ds.Len(),
		"duration": time.Since(start).String(),
	}).Info("Model trained")

	return artifact, nil
}
