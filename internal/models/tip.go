package models

import (
	"time"

	"github.com/google/uuid"
)

// Pick identifies which side of a fixture a tip backs.
type Pick string

const (
	PickPlayer1 Pick = "P1"
	PickPlayer2 Pick = "P2"
)

// Tip is one admitted staking recommendation. It is created once per
// fixture that clears the EV threshold and never mutated afterwards.
type Tip struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Player1   string    `db:"player1" json:"player1"`
	Player2   string    `db:"player2" json:"player2"`
	Surface   Surface   `db:"surface" json:"surface"`
	OddsP1    float64   `db:"odds_p1" json:"odds_p1"`
	OddsP2    float64   `db:"odds_p2" json:"odds_p2"`
	ProbP1    float64   `db:"prob_p1" json:"p1_prob"`
	ProbP2    float64   `db:"prob_p2" json:"p2_prob"`
	EVP1      float64   `db:"ev_p1" json:"ev_p1"`
	EVP2      float64   `db:"ev_p2" json:"ev_p2"`
	Pick      Pick      `db:"pick" json:"pick"`
	BestEV    float64   `db:"best_ev" json:"best_ev"`
	Stake     float64   `db:"stake" json:"stake_suggest"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// PickedOdds returns the odds of the chosen side.
func (t *Tip) PickedOdds() float64 {
	if t.Pick == PickPlayer1 {
		return t.OddsP1
	}
	return t.OddsP2
}
