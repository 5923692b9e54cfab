package ml

import (
	"fmt"
	"time"

	"github.com/Custodio30/tennis-bot-tipster/internal/config"
)

// Classifier turns a feature vector into P(player1 wins).
type Classifier interface {
	PredictProba(v []float64) float64
}

// Artifact kinds and base classifier kinds as persisted in the JSON tag.
const (
	KindSingle   = "single"
	KindEnsemble = "ensemble"

	BaseLogistic = "logistic"
	BaseTree     = "tree"
)

// CalibratedModel wraps a base classifier with an optional calibration
// layer. Calibrated is false when the calibration data held a single
// class and the raw classifier had to serve as-is.
type CalibratedModel struct {
	BaseKind    string        `json:"base_kind"`
	Logistic    *Logistic     `json:"logistic,omitempty"`
	Trees       *BoostedTrees `json:"trees,omitempty"`
	Calibration *Calibration  `json:"calibration,omitempty"`
	Calibrated  bool          `json:"calibrated"`
}

// Score returns the base classifier's raw log-odds.
func (m *CalibratedModel) Score(v []float64) float64 {
	if m.BaseKind == BaseTree {
		return m.Trees.Score(v)
	}
	return m.Logistic.Score(v)
}

// PredictProba returns the calibrated probability, or the raw sigmoid
// when the model is uncalibrated.
func (m *CalibratedModel) PredictProba(v []float64) float64 {
	score := m.Score(v)
	if m.Calibrated && m.Calibration != nil {
		return m.Calibration.Apply(score)
	}
	return clampProb(sigmoid(score))
}

// EnsembleModel blends a calibrated logistic regression with calibrated
// boosted trees: p = weight*p_logistic + (1-weight)*p_trees.
type EnsembleModel struct {
	Logistic *CalibratedModel `json:"logistic"`
	Trees    *CalibratedModel `json:"trees"`
	Weight   float64          `json:"weight"`
}

// PredictProba returns the weighted blend, clamped away from 0 and 1.
func (e *EnsembleModel) PredictProba(v []float64) float64 {
	p := e.Weight*e.Logistic.PredictProba(v) + (1-e.Weight)*e.Trees.PredictProba(v)
	return clampProb(p)
}

// Metrics holds the temporal cross-validation summary. Available is false
// when no fold produced a usable validation block, in which case the
// score fields carry no meaning.
type Metrics struct {
	AUC        float64 `json:"auc"`
	LogLoss    float64 `json:"log_loss"`
	FoldsUsed  int     `json:"folds_used"`
	FoldsTotal int     `json:"folds_total"`
	Available  bool    `json:"available"`
}

// Artifact is the persisted model: a kind tag plus exactly one variant
// payload, with training provenance.
type Artifact struct {
	Kind      string           `json:"kind"`
	Version   string           `json:"version"`
	TrainedAt time.Time        `json:"trained_at"`
	Metrics   Metrics          `json:"metrics"`
	Single    *CalibratedModel `json:"single,omitempty"`
	Ensemble  *EnsembleModel   `json:"ensemble,omitempty"`
}

// PredictProba dispatches on the artifact kind.
func (a *Artifact) PredictProba(v []float64) float64 {
	if a.Kind == KindEnsemble {
		return a.Ensemble.PredictProba(v)
	}
	return a.Single.PredictProba(v)
}

// Validate checks that the kind tag and payload agree.
func (a *Artifact) Validate() error {
	switch a.Kind {
	case KindSingle:
		if a.Single == nil {
			return fmt.Errorf("artifact tagged %q has no single payload", a.Kind)
		}
	case KindEnsemble:
		if a.Ensemble == nil || a.Ensemble.Logistic == nil || a.Ensemble.Trees == nil {
			return fmt.Errorf("artifact tagged %q has an incomplete ensemble payload", a.Kind)
		}
	default:
		return fmt.Errorf("unknown artifact kind %q", a.Kind)
	}
	return nil
}

// fitCalibrated fits one base classifier and calibrates it on its own
// training scores. A single-class label set skips calibration and tags
// the model uncalibrated rather than failing the fold.
func fitCalibrated(x [][]float64, y []float64, baseKind string, cfg config.ModelConfig) (*CalibratedModel, error) {
	model := &CalibratedModel{BaseKind: baseKind}

	switch baseKind {
	case BaseLogistic:
		base, err := FitLogistic(x, y, LogisticOptions{MaxIter: cfg.MaxIter, L2: cfg.L2})
		if err != nil {
			return nil, err
		}
		model.Logistic = base
	case BaseTree:
		base, err := FitBoostedTrees(x, y, TreeOptions{
			Trees:        cfg.Trees,
			Depth:        cfg.TreeDepth,
			LearningRate: cfg.LearningRate,
		})
		if err != nil {
			return nil, err
		}
		model.Trees = base
	default:
		return nil, fmt.Errorf("unknown base classifier %q", baseKind)
	}

	if !hasBothClasses(y) {
		return model, nil
	}

	scores := make([]float64, len(x))
	for i, row := range x {
		scores[i] = model.Score(row)
	}
	cal, err := FitCalibration(cfg.Calibration, scores, y, cfg.MaxIter)
	if err != nil {
		return nil, err
	}
	model.Calibration = cal
	model.Calibrated = true
	return model, nil
}

// fitVariant fits the configured artifact variant on one training block.
func fitVariant(x [][]float64, y []float64, cfg config.ModelConfig) (*Artifact, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("no training samples")
	}

	if cfg.Type == KindEnsemble {
		logistic, err := fitCalibrated(x, y, BaseLogistic, cfg)
		if err != nil {
			return nil, err
		}
		trees, err := fitCalibrated(x, y, BaseTree, cfg)
		if err != nil {
			return nil, err
		}
		return &Artifact{
			Kind: KindEnsemble,
			Ensemble: &EnsembleModel{
				Logistic: logistic,
				Trees:    trees,
				Weight:   cfg.EnsembleWeight,
			},
		}, nil
	}

	single, err := fitCalibrated(x, y, BaseLogistic, cfg)
	if err != nil {
		return nil, err
	}
	return &Artifact{Kind: KindSingle, Single: single}, nil
}
