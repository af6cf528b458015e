package stablehash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndex_Deterministic(t *testing.T) {
	for _, seed := range []string{"", "a", "competitor-1", "competitor-1:dim"} {
		first := Index(seed, 7)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, Index(seed, 7), "seed %q", seed)
		}
		assert.GreaterOrEqual(t, first, 0)
		assert.Less(t, first, 7)
	}
}

func TestIndex_DifferentSeedsSpread(t *testing.T) {
	seen := map[int]bool{}
	for _, seed := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		seen[Index(seed, 5)] = true
	}
	// Ten distinct seeds over five buckets should hit more than one bucket.
	assert.Greater(t, len(seen), 1)
}

func TestIndex_NonPositiveN(t *testing.T) {
	assert.Equal(t, 0, Index("anything", 0))
	assert.Equal(t, 0, Index("anything", -3))
}

func TestSelect(t *testing.T) {
	pool := []string{"one", "two", "three"}

	picked := Select("seed", pool)
	assert.Contains(t, pool, picked)
	assert.Equal(t, picked, Select("seed", pool))

	assert.Equal(t, "", Select[string]("seed", nil))
	assert.Equal(t, 0, Select("seed", []int{}))
}

func TestKey(t *testing.T) {
	k := Key("example.com", "abc", "def")
	assert.Len(t, k, 16)
	assert.Equal(t, k, Key("example.com", "abc", "def"))

	// Part boundaries matter: ("ab","c") and ("a","bc") are distinct keys.
	assert.NotEqual(t, Key("ab", "c"), Key("a", "bc"))
	assert.NotEqual(t, k, Key("example.com", "abc", "xyz"))
}
