// Package features turns replayed rating state into the model input
// vector and applies the post-model fatigue adjustment.
package features

import (
	"github.com/Custodio30/tennis-bot-tipster/internal/models"
	"github.com/Custodio30/tennis-bot-tipster/internal/rating"
)

// Dim is the length of the feature vector.
const Dim = 4

// Feature vector layout. Every entry is player1 minus player2.
const (
	IdxRatingDiff        = 0
	IdxSurfaceRatingDiff = 1
	IdxFormDiff          = 2
	IdxH2HDiff           = 3
)

// Names labels each feature slot, in vector order.
var Names = [Dim]string{"rating_diff", "surface_rating_diff", "form_diff", "h2h_diff"}

// Builder derives feature vectors from a rating store.
type Builder struct {
	store *rating.Store
}

// NewBuilder wraps a store that has already been (or is being) replayed.
func NewBuilder(store *rating.Store) *Builder {
	return &Builder{store: store}
}

// Vector computes the feature vector for a player1 vs player2 matchup on
// a surface, from the store's current state. Unknown players resolve to
// neutral state, so two strangers produce the zero vector.
func (b *Builder) Vector(player1, player2 string, surface models.Surface) []float64 {
	start := b.store.Params().Start
	p1 := b.store.Get(player1)
	p2 := b.store.Get(player2)

	v := make([]float64, Dim)
	v[IdxRatingDiff] = p1.Global - p2.Global
	v[IdxSurfaceRatingDiff] = p1.SurfaceRating(surface, start) - p2.SurfaceRating(surface, start)
	v[IdxFormDiff] = p1.Form() - p2.Form()
	v[IdxH2HDiff] = p1.H2HScore(p2.Key) - p2.H2HScore(p1.Key)
	return v
}

// Mirror returns the vector for the swapped matchup. With diff features
// this is exact negation.
func Mirror(v []float64) []float64 {
	m := make([]float64, len(v))
	for i, x := range v {
		m[i] = -x
	}
	return m
}
