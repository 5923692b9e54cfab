// Package engine turns calibrated probabilities and posted odds into
// staking decisions: expected value on both sides, pick selection,
// fractional Kelly sizing and threshold admission.
package engine

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Custodio30/tennis-bot-tipster/internal/config"
	"github.com/Custodio30/tennis-bot-tipster/internal/models"
)

// Engine applies the tip admission and staking rules.
type Engine struct {
	cfg config.SelectionConfig
}

// New builds an engine from the selection configuration.
func New(cfg config.SelectionConfig) *Engine {
	return &Engine{cfg: cfg}
}

// ExpectedValue is the per-unit return of backing a side at decimal odds:
// p*odds - (1-p).
func ExpectedValue(p, odds float64) float64 {
	return p*odds - (1 - p)
}

// KellyFraction is the full Kelly stake fraction for decimal odds, zero
// when the edge is negative.
func KellyFraction(p, odds float64) float64 {
	b := odds - 1
	if b <= 0 {
		return 0
	}
	f := (b*p - (1 - p)) / b
	if f < 0 {
		return 0
	}
	return f
}

// Stake returns the fractional Kelly stake, capped at the configured
// bankroll ceiling and rounded to four decimal places.
func (e *Engine) Stake(p, odds float64) float64 {
	raw := e.cfg.KellyFraction * KellyFraction(p, odds)
	if raw > e.cfg.KellyCap {
		raw = e.cfg.KellyCap
	}
	stake, _ := decimal.NewFromFloat(raw).Round(4).Float64()
	return stake
}

// Decide evaluates one fixture against the admission rules and returns a
// tip, or nil when neither side clears the EV threshold. An exact EV tie
// backs player 1.
func (e *Engine) Decide(f *models.Fixture, probP1, probP2 float64, now time.Time) *models.Tip {
	evP1 := ExpectedValue(probP1, f.OddsP1)
	evP2 := ExpectedValue(probP2, f.OddsP2)

	pick := models.PickPlayer1
	bestEV, bestProb, bestOdds := evP1, probP1, f.OddsP1
	if evP2 > evP1 {
		pick = models.PickPlayer2
		bestEV, bestProb, bestOdds = evP2, probP2, f.OddsP2
	}

	if bestEV < e.cfg.EVThreshold {
		return nil
	}

	return &models.Tip{
		ID:        uuid.New(),
		Player1:   f.Player1,
		Player2:   f.Player2,
		Surface:   models.NormalizeSurface(f.Surface),
		OddsP1:    f.OddsP1,
		OddsP2:    f.OddsP2,
		ProbP1:    probP1,
		ProbP2:    probP2,
		EVP1:      evP1,
		EVP2:      evP2,
		Pick:      pick,
		BestEV:    bestEV,
		Stake:     e.Stake(bestProb, bestOdds),
		CreatedAt: now,
	}
}

// Rank orders tips by best EV descending. The sort is stable, so tips
// with equal EV keep their fixture order.
func Rank(tips []*models.Tip) {
	sort.SliceStable(tips, func(i, j int) bool {
		return tips[i].BestEV > tips[j].BestEV
	})
}
