package ml

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Custodio30/tennis-bot-tipster/internal/models"
)

func cacheKey(version string) CacheKey {
	return CacheKey{
		Player1:      "Alice Ace",
		Player2:      "Bob Baseline",
		Surface:      models.SurfaceHard,
		ModelVersion: version,
	}
}

func TestPredictionCacheHitMiss(t *testing.T) {
	pc := NewPredictionCache(time.Minute, 100)

	_, found := pc.Get(cacheKey("v1"))
	assert.False(t, found)

	pc.Set(cacheKey("v1"), 0.61)
	p, found := pc.Get(cacheKey("v1"))
	assert.True(t, found)
	assert.Equal(t, 0.61, p)

	hits, misses, ratio := pc.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
	assert.Equal(t, 0.5, ratio)
}

func TestPredictionCacheVersionIsolation(t *testing.T) {
	pc := NewPredictionCache(time.Minute, 100)
	pc.Set(cacheKey("v1"), 0.61)

	_, found := pc.Get(cacheKey("v2"))
	assert.False(t, found)
}

func TestPredictionCacheKeyNormalizesNames(t *testing.T) {
	a := CacheKey{Player1: "Alice  Ace", Player2: "BOB baseline", Surface: models.SurfaceHard, ModelVersion: "v1"}
	b := CacheKey{Player1: "alice ace", Player2: "Bob Baseline", Surface: models.SurfaceHard, ModelVersion: "v1"}
	assert.Equal(t, a.String(), b.String())
}

func TestPredictionCacheClear(t *testing.T) {
	pc := NewPredictionCache(time.Minute, 100)
	pc.Set(cacheKey("v1"), 0.61)
	pc.Clear()

	_, found := pc.Get(cacheKey("v1"))
	assert.False(t, found)
	assert.Zero(t, pc.ItemCount())
}
