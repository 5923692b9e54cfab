package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSurface(t *testing.T) {
	cases := map[string]Surface{
		"Hard":         SurfaceHard,
		"hard":         SurfaceHard,
		"Clay":         SurfaceClay,
		"Red Clay":     SurfaceClay,
		"Grass":        SurfaceGrass,
		"Carpet":       SurfaceCarpet,
		"Indoor":       SurfaceCarpet,
		"":             SurfaceHard,
		"AstroTurf 3G": SurfaceHard,
	}
	for raw, want := range cases {
		assert.Equal(t, want, NormalizeSurface(raw), raw)
	}
}

func TestPlayerKey(t *testing.T) {
	assert.Equal(t, "novak djokovic", PlayerKey("Novak Djokovic"))
	assert.Equal(t, "novak djokovic", PlayerKey("  NOVAK   DJOKOVIC "))
	assert.Equal(t, PlayerKey("Alice Ace"), PlayerKey("alice ace"))
	assert.NotEqual(t, PlayerKey("Alice Ace"), PlayerKey("Alice Acer"))
}

func TestMatchPlayer1Won(t *testing.T) {
	m := Match{Player1: "Alice Ace", Player2: "Bob Baseline", Winner: "alice ace"}
	assert.True(t, m.Player1Won())

	m.Winner = "Bob Baseline"
	assert.False(t, m.Player1Won())
}

func TestFixtureHasValidOdds(t *testing.T) {
	assert.True(t, (&Fixture{OddsP1: 1.01, OddsP2: 5.0}).HasValidOdds())
	assert.False(t, (&Fixture{OddsP1: 1.0, OddsP2: 5.0}).HasValidOdds())
	assert.False(t, (&Fixture{OddsP1: 2.0, OddsP2: 0}).HasValidOdds())
}

func TestTipPickedOdds(t *testing.T) {
	tip := &Tip{OddsP1: 2.1, OddsP2: 1.8, Pick: PickPlayer1}
	assert.Equal(t, 2.1, tip.PickedOdds())
	tip.Pick = PickPlayer2
	assert.Equal(t, 1.8, tip.PickedOdds())
}
