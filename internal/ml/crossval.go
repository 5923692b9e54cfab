package ml

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"

	"github.com/Custodio30/tennis-bot-tipster/internal/config"
)

// fold is one expanding-window split: train on everything before the
// validation block, validate on the block itself. Validation never
// precedes training in time.
type fold struct {
	trainEnd int
	valEnd   int
}

func temporalFolds(n, splits int) []fold {
	if splits < 1 {
		return nil
	}
	block := n / (splits + 1)
	if block == 0 {
		return nil
	}

	folds := make([]fold, 0, splits)
	for i := 0; i < splits; i++ {
		f := fold{trainEnd: (i + 1) * block, valEnd: (i + 2) * block}
		if i == splits-1 {
			f.valEnd = n
		}
		folds = append(folds, f)
	}
	return folds
}

// CrossValidate runs temporal k-fold evaluation of the configured model
// variant. Folds whose training or validation block holds a single
// class, or whose fit fails, are skipped; the summary averages over the
// usable folds and reports Available=false when none survive.
func CrossValidate(ds *Dataset, cfg config.ModelConfig, logger *logrus.Logger) Metrics {
	if logger == nil {
		logger = logrus.New()
	}

	folds := temporalFolds(ds.Len(), cfg.NSplits)
	metrics := Metrics{FoldsTotal: len(folds)}

	sumAUC, sumLogLoss := 0.0, 0.0
	for i, f := range folds {
		train := ds.Slice(0, f.trainEnd)
		val := ds.Slice(f.trainEnd, f.valEnd)

		if !hasBothClasses(train.Y) {
			logger.WithField("fold", i).Warn("Training block has a single class, skipping fold")
			continue
		}
		if !hasBothClasses(val.Y) {
			logger.WithField("fold", i).Warn("Validation block has a single class, skipping fold")
			continue
		}

		artifact, err := fitVariant(train.X, train.Y, cfg)
		if err != nil {
			logger.WithError(err).WithField("fold", i).Warn("Fold fit failed, skipping fold")
			continue
		}

		probs := make([]float64, val.Len())
		for j, row := range val.X {
			probs[j] = artifact.PredictProba(row)
		}

		sumAUC += rocAUC(probs, val.Y)
		sumLogLoss += logLoss(probs, val.Y)
		metrics.FoldsUsed++
	}

	if metrics.FoldsUsed > 0 {
		metrics.AUC = sumAUC / float64(metrics.FoldsUsed)
		metrics.LogLoss = sumLogLoss / float64(metrics.FoldsUsed)
		metrics.Available = true
	}

	logger.WithFields(logrus.Fields{
		"folds_total": metrics.FoldsTotal,
		"folds_used":  metrics.FoldsUsed,
		"auc":         metrics.AUC,
		"log_loss":    metrics.LogLoss,
	}).Info("Temporal cross validation complete")

	return metrics
}

// rocAUC computes the area under the ROC curve. Callers guarantee both
// classes are present.
func rocAUC(probs, labels []float64) float64 {
	idx := make([]int, len(probs))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return probs[idx[a]] < probs[idx[b]] })

	sorted := make([]float64, len(probs))
	classes := make([]bool, len(probs))
	for pos, i := range idx {
		sorted[pos] = probs[i]
		classes[pos] = labels[i] > 0.5
	}

	tpr, fpr, _ := stat.ROC(nil, sorted, classes, nil)
	return integrate.Trapezoidal(fpr, tpr)
}

// logLoss is the mean negative log likelihood with clamped probabilities.
func logLoss(probs, labels []float64) float64 {
	loss := 0.0
	for i, p := range probs {
		p = clampProb(p)
		if labels[i] > 0.5 {
			loss -= math.Log(p)
		} else {
			loss -= math.Log(1 - p)
		}
	}
	return loss / float64(len(probs))
}
