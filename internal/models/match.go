// Package models defines the domain types shared across the tipster pipeline.
package models

import (
	"strings"
	"time"
)

// Surface identifies a court surface. The set is closed; anything else is
// normalized onto it before reaching the rating store.
type Surface string

const (
	SurfaceHard   Surface = "Hard"
	SurfaceClay   Surface = "Clay"
	SurfaceGrass  Surface = "Grass"
	SurfaceCarpet Surface = "Carpet"
)

// Surfaces lists every known surface.
var Surfaces = []Surface{SurfaceHard, SurfaceClay, SurfaceGrass, SurfaceCarpet}

// NormalizeSurface maps a raw surface string onto the closed surface set.
// Unrecognized values default to Hard, which dominates the tour calendar.
func NormalizeSurface(raw string) Surface {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(s, "clay"):
		return SurfaceClay
	case strings.Contains(s, "grass"):
		return SurfaceGrass
	case strings.Contains(s, "carpet"), strings.Contains(s, "indoor"):
		return SurfaceCarpet
	case strings.Contains(s, "hard"):
		return SurfaceHard
	default:
		return SurfaceHard
	}
}

// PlayerKey returns the canonical identity key for a player name:
// lower-cased with whitespace runs collapsed. Two spellings of the same
// name that differ only in case or spacing share one rating state.
func PlayerKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// Match is one historical match record. Player1/Player2 carry the raw
// names from the data feed; Winner names one of them.
type Match struct {
	Date    time.Time `json:"date"`
	Player1 string    `json:"player1"`
	Player2 string    `json:"player2"`
	Winner  string    `json:"winner"`
	Surface string    `json:"surface"`
	Level   string    `json:"level"`
}

// Player1Won reports whether Player1 is the recorded winner.
func (m *Match) Player1Won() bool {
	return PlayerKey(m.Winner) == PlayerKey(m.Player1)
}
