package quiz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapquiz/go-server/internal/quiz"
	"github.com/mapquiz/go-server/internal/rng"
)

func TestSelector_NoRepeatWithinSweep(t *testing.T) {
	pool := []string{"France", "Germany", "Italy", "Spain", "Portugal"}
	s := quiz.NewSelector(pool, rng.NewAmbient())

	seen := map[string]bool{}
	for i := 0; i < len(pool); i++ {
		target, ok := s.Next()
		require.True(t, ok)
		require.False(t, seen[target], "repeat within sweep: %s", target)
		seen[target] = true
	}
	assert.Len(t, seen, len(pool))
}

// Pool of 3, 7 draws: draws 1-3 and 4-6 are each a permutation of the pool,
// draw 7 opens a third sweep.
func TestSelector_SweepResets(t *testing.T) {
	pool := []string{"A", "B", "C"}
	s := quiz.NewSelector(pool, rng.NewLCG(123))

	var draws []string
	for i := 0; i < 7; i++ {
		target, ok := s.Next()
		require.True(t, ok)
		draws = append(draws, target)
	}
	assert.ElementsMatch(t, pool, draws[0:3], "first sweep")
	assert.ElementsMatch(t, pool, draws[3:6], "second sweep")
	assert.Contains(t, pool, draws[6])
}

func TestSelector_EmptyPool(t *testing.T) {
	s := quiz.NewSelector(nil, rng.NewAmbient())
	target, ok := s.Next()
	assert.False(t, ok)
	assert.Empty(t, target)
}

func TestSelector_SeededDeterminism(t *testing.T) {
	pool := []string{"A", "B", "C", "D", "E", "F"}
	s1 := quiz.NewSelector(pool, rng.NewLCG(20250115))
	s2 := quiz.NewSelector(pool, rng.NewLCG(20250115))

	for i := 0; i < 12; i++ {
		t1, _ := s1.Next()
		t2, _ := s2.Next()
		require.Equal(t, t1, t2, "diverged at draw %d", i)
	}
}

func TestSelector_ResetStartsFreshSweep(t *testing.T) {
	pool := []string{"A", "B"}
	s := quiz.NewSelector(pool, rng.NewAmbient())

	first, _ := s.Next()
	s.Reset()

	// After reset both elements are drawable again.
	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		target, ok := s.Next()
		require.True(t, ok)
		seen[target] = true
	}
	assert.Len(t, seen, 2)
	assert.Contains(t, seen, first)
}

func TestSelector_PoolCopiedOnConstruction(t *testing.T) {
	pool := []string{"A", "B", "C"}
	s := quiz.NewSelector(pool, rng.NewAmbient())
	pool[0] = "mutated"

	for i := 0; i < 3; i++ {
		target, ok := s.Next()
		require.True(t, ok)
		require.NotEqual(t, "mutated", target)
	}
}
