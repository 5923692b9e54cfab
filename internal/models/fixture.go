package models

import "time"

// Fixture is an upcoming match with posted decimal odds for both sides.
// Date is optional; a zero value means the fixture date is unknown and
// fatigue signals fall back to the evaluation time.
type Fixture struct {
	Date    time.Time `json:"date,omitempty"`
	Player1 string    `json:"player1"`
	Player2 string    `json:"player2"`
	Surface string    `json:"surface"`
	Level   string    `json:"level"`
	OddsP1  float64   `json:"odds_p1"`
	OddsP2  float64   `json:"odds_p2"`
}

// HasValidOdds reports whether both sides carry backable decimal odds.
// Odds at or below 1.0 cannot pay out and exclude the fixture upstream.
func (f *Fixture) HasValidOdds() bool {
	return f.OddsP1 > 1.0 && f.OddsP2 > 1.0
}
