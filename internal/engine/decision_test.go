package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Custodio30/tennis-bot-tipster/internal/config"
	"github.com/Custodio30/tennis-bot-tipster/internal/models"
)

func testSelection() config.SelectionConfig {
	return config.SelectionConfig{
		EVThreshold:   0.05,
		KellyFraction: 0.25,
		KellyCap:      0.05,
	}
}

func fixture(odds1, odds2 float64) *models.Fixture {
	return &models.Fixture{
		Player1: "Alice Ace",
		Player2: "Bob Baseline",
		Surface: "Hard",
		OddsP1:  odds1,
		OddsP2:  odds2,
	}
}

func TestExpectedValue(t *testing.T) {
	assert.InDelta(t, 0.705, ExpectedValue(0.55, 2.10), 1e-9)
	assert.InDelta(t, -0.19, ExpectedValue(0.45, 1.80), 1e-9)
	// Fair odds carry zero EV.
	assert.InDelta(t, 0.0, ExpectedValue(0.5, 2.0), 1e-12)
}

func TestKellyFractionBounds(t *testing.T) {
	cases := []struct{ p, odds float64 }{
		{0.0, 2.0},
		{1.0, 2.0},
		{0.5, 1.01},
		{0.9, 100.0},
		{0.01, 1.10},
	}
	for _, c := range cases {
		f := KellyFraction(c.p, c.odds)
		assert.GreaterOrEqual(t, f, 0.0)
		assert.LessOrEqual(t, f, 1.0)
	}

	// A sure thing stakes the whole fraction.
	assert.InDelta(t, 1.0, KellyFraction(1.0, 2.0), 1e-12)
	// No edge, no stake.
	assert.Zero(t, KellyFraction(0.5, 2.0))
	assert.Zero(t, KellyFraction(0.2, 1.0))
}

func TestStakeCapped(t *testing.T) {
	e := New(testSelection())

	// Full Kelly of 1.0, scaled by 0.25, capped at 0.05.
	assert.InDelta(t, 0.05, e.Stake(1.0, 2.0), 1e-12)

	// Small edge stays under the cap: f* = (1*0.55-0.45)/1 = 0.1.
	assert.InDelta(t, 0.025, e.Stake(0.55, 2.0), 1e-12)

	// Negative edge never stakes.
	assert.Zero(t, e.Stake(0.3, 2.0))
}

func TestDecidePicksBestEV(t *testing.T) {
	e := New(testSelection())
	now := time.Now()

	tip := e.Decide(fixture(2.10, 1.80), 0.55, 0.45, now)
	require.NotNil(t, tip)
	assert.Equal(t, models.PickPlayer1, tip.Pick)
	assert.InDelta(t, 0.705, tip.BestEV, 1e-9)
	assert.InDelta(t, 0.705, tip.EVP1, 1e-9)
	assert.InDelta(t, -0.19, tip.EVP2, 1e-9)
	assert.Equal(t, now, tip.CreatedAt)
	assert.NotEqual(t, tip.ID.String(), "00000000-0000-0000-0000-000000000000")
}

func TestDecideBelowThreshold(t *testing.T) {
	cfg := testSelection()
	cfg.EVThreshold = 1.0
	e := New(cfg)

	tip := e.Decide(fixture(2.10, 1.80), 0.55, 0.45, time.Now())
	assert.Nil(t, tip)
}

func TestDecideTiePrefersPlayer1(t *testing.T) {
	e := New(testSelection())

	// Symmetric fixture: identical EV on both sides.
	tip := e.Decide(fixture(2.40, 2.40), 0.5, 0.5, time.Now())
	require.NotNil(t, tip)
	assert.Equal(t, models.PickPlayer1, tip.Pick)
	assert.InDelta(t, tip.EVP1, tip.EVP2, 1e-12)
}

func TestDecideNegativeThresholdAdmitsLosers(t *testing.T) {
	cfg := testSelection()
	cfg.EVThreshold = -1.0
	e := New(cfg)

	// Both sides are bad value; the less bad one is picked and Kelly
	// stakes nothing on a negative edge.
	tip := e.Decide(fixture(1.50, 1.50), 0.30, 0.35, time.Now())
	require.NotNil(t, tip)
	assert.Equal(t, models.PickPlayer2, tip.Pick)
	assert.InDelta(t, -0.125, tip.BestEV, 1e-9)
	assert.Zero(t, tip.Stake)
}

func TestRankStableDescending(t *testing.T) {
	tips := []*models.Tip{
		{Player1: "first", BestEV: 0.10},
		{Player1: "second", BestEV: 0.30},
		{Player1: "third", BestEV: 0.10},
	}
	Rank(tips)

	assert.Equal(t, "second", tips[0].Player1)
	assert.Equal(t, "first", tips[1].Player1)
	assert.Equal(t, "third", tips[2].Player1)
}
