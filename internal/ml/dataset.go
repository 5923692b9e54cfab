// Package ml trains and serves the match outcome model: a logistic
// regression or a logistic/boosted-tree ensemble, probability calibrated
// and evaluated with temporal cross validation.
package ml

import (
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Custodio30/tennis-bot-tipster/internal/features"
	"github.com/Custodio30/tennis-bot-tipster/internal/models"
	"github.com/Custodio30/tennis-bot-tipster/internal/rating"
)

// Dataset holds training samples in chronological order. Rows come in
// mirrored pairs: each match contributes the winner-oriented sample and
// its negated, label-flipped twin, so the model cannot learn a slot bias.
type Dataset struct {
	X     [][]float64
	Y     []float64
	Dates []time.Time
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.Y)
}

// Slice returns the half-open sample range [lo, hi).
func (d *Dataset) Slice(lo, hi int) *Dataset {
	return &Dataset{X: d.X[lo:hi], Y: d.Y[lo:hi], Dates: d.Dates[lo:hi]}
}

// BuildDataset replays the history chronologically, capturing each
// match's pre-match feature vector before folding the result into the
// rating state. The first matches of every player yield near-zero
// vectors; that is the honest state of knowledge at that point in time.
func BuildDataset(history []models.Match, params rating.Params, logger *logrus.Logger) *Dataset {
	if logger == nil {
		logger = logrus.New()
	}

	ordered := make([]models.Match, len(history))
	copy(ordered, history)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	store := rating.NewStore(params, logger)
	builder := features.NewBuilder(store)

	ds := &Dataset{
		X:     make([][]float64, 0, 2*len(ordered)),
		Y:     make([]float64, 0, 2*len(ordered)),
		Dates: make([]time.Time, 0, 2*len(ordered)),
	}

	for i := range ordered {
		m := &ordered[i]
		surface := models.NormalizeSurface(m.Surface)
		v := builder.Vector(m.Player1, m.Player2, surface)

		label := 0.0
		if m.Player1Won() {
			label = 1.0
		}

		ds.X = append(ds.X, v, features.Mirror(v))
		ds.Y = append(ds.Y, label, 1.0-label)
		ds.Dates = append(ds.Dates, m.Date, m.Date)

		store.Apply(m)
	}

	logger.WithFields(logrus.Fields{
		"matches": len(ordered),
		"samples": ds.Len(),
	}).Info("Training dataset built")

	return ds
}
