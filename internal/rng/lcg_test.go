package rng_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapquiz/go-server/internal/rng"
)

// Golden sequence for seed 20250115. These values pin the generator to the
// glibc LCG constants; any change to the arithmetic breaks daily challenge
// compatibility and must fail loudly here.
func TestLCG_GoldenSequence(t *testing.T) {
	g := rng.NewLCG(20250115)

	want := []float64{
		0.7677995562553406,
		0.4320091870613396,
		0.9022507658228278,
		0.8984212125651538,
		0.49703856371343136,
	}
	for i, w := range want {
		require.Equal(t, w, g.Next(), "output %d diverged", i)
	}
}

func TestLCG_SameSeedSameSequence(t *testing.T) {
	g1 := rng.NewLCG(42)
	g2 := rng.NewLCG(42)
	for i := 0; i < 100; i++ {
		require.Equal(t, g1.Next(), g2.Next(), "diverged at step %d", i)
	}
}

func TestLCG_DifferentSeedsDiverge(t *testing.T) {
	g1 := rng.NewLCG(20250115)
	g2 := rng.NewLCG(20250116)

	same := 0
	for i := 0; i < 20; i++ {
		if g1.Next() == g2.Next() {
			same++
		}
	}
	assert.Less(t, same, 20, "adjacent date seeds produced identical streams")
}

func TestLCG_NextIntRange(t *testing.T) {
	g := rng.NewLCG(7)
	for i := 0; i < 1000; i++ {
		v := g.NextInt(3, 9)
		require.GreaterOrEqual(t, v, 3)
		require.Less(t, v, 9)
	}
}

func TestLCG_NextIntGolden(t *testing.T) {
	g := rng.NewLCG(42)
	want := []int{5, 5, 4, 7, 4, 0, 4, 8}
	got := make([]int, len(want))
	for i := range got {
		got[i] = g.NextInt(0, 10)
	}
	assert.Equal(t, want, got)
}

func TestLCG_NegativeSeedNormalized(t *testing.T) {
	g := rng.NewLCG(-5)
	v := g.Next()
	require.GreaterOrEqual(t, v, 0.0)
	require.Less(t, v, 1.0)
}

func TestShuffle_Deterministic(t *testing.T) {
	items1 := []string{"a", "b", "c", "d", "e"}
	items2 := []string{"a", "b", "c", "d", "e"}
	rng.Shuffle(rng.NewLCG(99), items1)
	rng.Shuffle(rng.NewLCG(99), items2)
	assert.Equal(t, items1, items2)
	assert.ElementsMatch(t, []string{"a", "b", "c", "d", "e"}, items1)
}

func TestSample(t *testing.T) {
	pool := []string{"fr", "de", "it", "es", "pt", "nl"}

	t.Run("partial sample has n unique elements", func(t *testing.T) {
		got := rng.Sample(rng.NewLCG(1), pool, 3)
		require.Len(t, got, 3)
		seen := map[string]bool{}
		for _, v := range got {
			require.False(t, seen[v], "duplicate %s", v)
			require.Contains(t, pool, v)
			seen[v] = true
		}
	})

	t.Run("n >= len returns full shuffle", func(t *testing.T) {
		got := rng.Sample(rng.NewLCG(1), pool, 10)
		assert.ElementsMatch(t, pool, got)
	})

	t.Run("input is not mutated", func(t *testing.T) {
		before := append([]string(nil), pool...)
		_ = rng.Sample(rng.NewLCG(1), pool, 4)
		assert.Equal(t, before, pool)
	})

	t.Run("ambient source also yields unique elements", func(t *testing.T) {
		got := rng.Sample(rng.NewAmbient(), pool, 4)
		require.Len(t, got, 4)
		seen := map[string]bool{}
		for _, v := range got {
			require.False(t, seen[v])
			seen[v] = true
		}
	})
}
