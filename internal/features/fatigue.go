package features

import (
	"time"

	"github.com/Custodio30/tennis-bot-tipster/internal/config"
	"github.com/Custodio30/tennis-bot-tipster/internal/rating"
)

// Signal summarizes a player's recent workload ahead of a fixture.
type Signal struct {
	Matches7d     int
	Matches14d    int
	Matches30d    int
	DaysSinceLast int
	BackToBack    bool
	ShortRest     bool
	Penalty       float64
}

// Fatigue computes penalties from match-density windows and rest days.
type Fatigue struct {
	cfg config.FatigueConfig
}

// NewFatigue builds the adjuster from configuration.
func NewFatigue(cfg config.FatigueConfig) *Fatigue {
	return &Fatigue{cfg: cfg}
}

// Signal derives the workload signal for a player at a fixture date.
// Matches up to and including the fixture date count: an earlier round
// played the same day is real workload. A player with no recorded
// matches carries zero penalty.
func (f *Fatigue) Signal(p *rating.PlayerState, fixtureDate time.Time) Signal {
	sig := Signal{DaysSinceLast: -1}
	if len(p.MatchDates) == 0 {
		return sig
	}

	sig.Matches7d = p.MatchesSince(fixtureDate.AddDate(0, 0, -7), fixtureDate)
	sig.Matches14d = p.MatchesSince(fixtureDate.AddDate(0, 0, -14), fixtureDate)
	sig.Matches30d = p.MatchesSince(fixtureDate.AddDate(0, 0, -30), fixtureDate)

	// Each band is charged once: the wider windows only count matches
	// outside the narrower ones.
	sig.Penalty = f.cfg.Weight7d*float64(sig.Matches7d) +
		f.cfg.Weight14d*float64(max(0, sig.Matches14d-sig.Matches7d)) +
		f.cfg.Weight30d*float64(max(0, sig.Matches30d-sig.Matches14d))

	last := p.MatchDates[len(p.MatchDates)-1]
	if !last.After(fixtureDate) {
		sig.DaysSinceLast = int(fixtureDate.Sub(last).Hours() / 24)
		switch {
		case sig.DaysSinceLast <= 1:
			sig.BackToBack = true
			sig.Penalty += f.cfg.BackToBack
		case sig.DaysSinceLast <= 2:
			sig.ShortRest = true
			sig.Penalty += f.cfg.ShortRest
		}
	}

	return sig
}

// Adjust subtracts each side's penalty from its calibrated probability,
// clamps into the configured band and renormalizes the pair so it sums
// to one again. Runs after calibration and before any value math.
func (f *Fatigue) Adjust(p1, p2 float64, sig1, sig2 Signal) (float64, float64) {
	a1 := clamp(p1-sig1.Penalty, f.cfg.MinProb, f.cfg.MaxProb)
	a2 := clamp(p2-sig2.Penalty, f.cfg.MinProb, f.cfg.MaxProb)

	sum := a1 + a2
	if sum <= 0 {
		return a1, a2
	}
	return a1 / sum, a2 / sum
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
