package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ModelRecord describes a trained model artifact for persistence. The
// artifact blob itself lives on disk at Path; the record carries the tag
// and the honest cross-validation metrics reported at training time.
type ModelRecord struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Version   string          `db:"version" json:"version"`
	Kind      string          `db:"kind" json:"kind"`
	Path      string          `db:"path" json:"path"`
	Metrics   json.RawMessage `db:"metrics" json:"metrics"`
	TrainedAt time.Time       `db:"trained_at" json:"trained_at"`
	Active    bool            `db:"active" json:"active"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// GetMetric retrieves a metric value from the Metrics JSON
func (m *ModelRecord) GetMetric(name string) (interface{}, error) {
	if m.Metrics == nil {
		return nil, nil
	}

	var metrics map[string]interface{}
	if err := json.Unmarshal(m.Metrics, &metrics); err != nil {
		return nil, err
	}

	return metrics[name], nil
}
