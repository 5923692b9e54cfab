// Package rating maintains per-player Elo state rebuilt by replaying match
// history in chronological order. The store is scoped to one
// replay-then-predict session and is never persisted; determinism comes
// from rebuilding it fresh from a given history snapshot.
package rating

import (
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Custodio30/tennis-bot-tipster/internal/models"
)

// H2H tracks one player's record against a single opponent. Score is
// exponentially decayed on every meeting: score = score*decay ± 1.
type H2H struct {
	Wins   int
	Losses int
	Score  float64
}

// PlayerState holds the mutable rating state for one player. It is only
// ever mutated by the store's replay loop, one match at a time, in
// non-decreasing date order.
type PlayerState struct {
	Key           string
	Name          string
	Global        float64
	BySurface     map[models.Surface]float64
	Recent        []int
	HeadToHead    map[string]H2H
	MatchesPlayed int
	LastMatch     time.Time
	MatchDates    []time.Time
}

// MatchesSince counts matches played on or after the cutoff, up to and
// including the reference date. MatchDates is append-only in replay
// order, so it is non-decreasing.
func (p *PlayerState) MatchesSince(cutoff, until time.Time) int {
	n := 0
	for i := len(p.MatchDates) - 1; i >= 0; i-- {
		d := p.MatchDates[i]
		if d.Before(cutoff) {
			break
		}
		if !d.After(until) {
			n++
		}
	}
	return n
}

// SurfaceRating returns the player's rating on a surface, falling back to
// the configured starting rating for surfaces never played.
func (p *PlayerState) SurfaceRating(surface models.Surface, start float64) float64 {
	if r, ok := p.BySurface[surface]; ok {
		return r
	}
	return start
}

// Form returns the mean of the recent-result window, or the neutral 0.5
// when the player has no recorded results.
func (p *PlayerState) Form() float64 {
	if len(p.Recent) == 0 {
		return 0.5
	}
	sum := 0
	for _, r := range p.Recent {
		sum += r
	}
	return float64(sum) / float64(len(p.Recent))
}

// H2HScore returns the decayed head-to-head score against an opponent,
// zero when the pair never met.
func (p *PlayerState) H2HScore(opponentKey string) float64 {
	return p.HeadToHead[opponentKey].Score
}

// Params configures the replay.
type Params struct {
	Start         float64
	KBase         float64
	SurfaceKBoost float64
	H2HDecay      float64
	FormWindow    int
}

// Store owns the player state map for one session. Build it fully with
// Replay before any concurrent read phase begins; the store takes no
// locks.
type Store struct {
	params  Params
	players map[string]*PlayerState
	logger  *logrus.Logger
}

// NewStore creates an empty store.
func NewStore(params Params, logger *logrus.Logger) *Store {
	if logger == nil {
		logger = logrus.New()
	}
	return &Store{
		params:  params,
		players: make(map[string]*PlayerState),
		logger:  logger,
	}
}

// ExpectedScore is the logistic Elo expectation for a player rated ra
// against one rated rb.
func ExpectedScore(ra, rb float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (rb-ra)/400.0))
}

// Replay applies every match in ascending date order (stable on ties) and
// returns the number of matches applied. Replaying the same history twice
// from a fresh store yields identical final states, and replaying a
// prefix followed by the remaining suffix matches a single full replay.
func (s *Store) Replay(history []models.Match) int {
	ordered := make([]models.Match, len(history))
	copy(ordered, history)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	for i := range ordered {
		s.apply(&ordered[i])
	}

	s.logger.WithFields(logrus.Fields{
		"matches": len(ordered),
		"players": len(s.players),
	}).Debug("Rating replay complete")

	return len(ordered)
}

// Apply folds a single match into the store. Callers that need pre-match
// state (feature extraction during a replay) drive the loop themselves
// and must feed matches in non-decreasing date order.
func (s *Store) Apply(m *models.Match) {
	s.apply(m)
}

// Get returns the state for a player, lazily creating a neutral state for
// players never seen in the history. Unknown players are never an error.
func (s *Store) Get(name string) *PlayerState {
	key := models.PlayerKey(name)
	if st, ok := s.players[key]; ok {
		return st
	}
	st := &PlayerState{
		Key:        key,
		Name:       name,
		Global:     s.params.Start,
		BySurface:  make(map[models.Surface]float64),
		HeadToHead: make(map[string]H2H),
	}
	s.players[key] = st
	return st
}

// Lookup returns the state for a player without creating one.
func (s *Store) Lookup(name string) (*PlayerState, bool) {
	st, ok := s.players[models.PlayerKey(name)]
	return st, ok
}

// Len returns the number of tracked players.
func (s *Store) Len() int {
	return len(s.players)
}

// Params returns the replay parameters the store was built with.
func (s *Store) Params() Params {
	return s.params
}

func (s *Store) apply(m *models.Match) {
	surface := models.NormalizeSurface(m.Surface)
	p1 := s.Get(m.Player1)
	p2 := s.Get(m.Player2)

	// Pre-match baselines; both updates use the state before this match.
	g1, g2 := p1.Global, p2.Global
	s1, s2 := p1.SurfaceRating(surface, s.params.Start), p2.SurfaceRating(surface, s.params.Start)

	score1 := 0.0
	if m.Player1Won() {
		score1 = 1.0
	}
	score2 := 1.0 - score1

	expGlobal := ExpectedScore(g1, g2)
	expSurface := ExpectedScore(s1, s2)

	kGlobal := s.kFactor(m.Level, false)
	kSurface := s.kFactor(m.Level, true)

	p1.Global = g1 + kGlobal*(score1-expGlobal)
	p2.Global = g2 + kGlobal*(score2-(1.0-expGlobal))
	p1.BySurface[surface] = s1 + kSurface*(score1-expSurface)
	p2.BySurface[surface] = s2 + kSurface*(score2-(1.0-expSurface))

	s.pushResult(p1, int(score1))
	s.pushResult(p2, int(score2))

	s.updateH2H(p1, p2.Key, score1 > 0)
	s.updateH2H(p2, p1.Key, score2 > 0)

	p1.MatchesPlayed++
	p2.MatchesPlayed++
	p1.MatchDates = append(p1.MatchDates, m.Date)
	p2.MatchDates = append(p2.MatchDates, m.Date)
	if !m.Date.Before(p1.LastMatch) {
		p1.LastMatch = m.Date
	}
	if !m.Date.Before(p2.LastMatch) {
		p2.LastMatch = m.Date
	}
}

// kFactor derives the update sensitivity for one rating update. Match
// level currently carries no differential weight.
// TODO: weight Challenger/ITF levels below tour level once the merged
// dataset tags them reliably.
func (s *Store) kFactor(level string, surfaceSpecific bool) float64 {
	k := s.params.KBase
	_ = level
	if surfaceSpecific {
		k *= s.params.SurfaceKBoost
	}
	return k
}

func (s *Store) pushResult(p *PlayerState, won int) {
	p.Recent = append(p.Recent, won)
	if s.params.FormWindow > 0 && len(p.Recent) > s.params.FormWindow {
		p.Recent = p.Recent[len(p.Recent)-s.params.FormWindow:]
	}
}

func (s *Store) updateH2H(p *PlayerState, opponentKey string, won bool) {
	entry := p.HeadToHead[opponentKey]
	if won {
		entry.Wins++
		entry.Score = entry.Score*s.params.H2HDecay + 1.0
	} else {
		entry.Losses++
		entry.Score = entry.Score*s.params.H2HDecay - 1.0
	}
	p.HeadToHead[opponentKey] = entry
}
