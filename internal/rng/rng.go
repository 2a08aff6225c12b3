// internal/rng/rng.go
//
// Random sources for target sampling.
// Two implementations of the Source interface:
//   - LCG (lcg.go): deterministic, seedable; drives the daily challenge so
//     every player sees the same draw for a given date.
//   - ambient: math/rand seeded from the wall clock; used for free play.
//
// Shuffle and Sample are defined over the interface so both modes share one
// Fisher–Yates implementation and stay draw-compatible.

package rng

import (
	"math/rand"
	"time"
)

// Source produces a pseudo-random sequence. Implementations are not safe for
// concurrent use; each session owns its own Source.
type Source interface {
	// Next returns the next value in [0,1).
	Next() float64

	// NextInt returns floor(Next()*(max-min)) + min, i.e. a value in [min,max).
	NextInt(min, max int) int
}

// ambient wraps math/rand.Rand seeded from the wall clock.
type ambient struct {
	r *rand.Rand
}

// NewAmbient returns a non-deterministic Source for free-play sessions.
func NewAmbient() Source {
	return &ambient{r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (a *ambient) Next() float64 { return a.r.Float64() }

func (a *ambient) NextInt(min, max int) int {
	return int(a.Next()*float64(max-min)) + min
}

// Shuffle performs an in-place Fisher–Yates shuffle driven by src.
func Shuffle(src Source, items []string) {
	for i := len(items) - 1; i > 0; i-- {
		j := src.NextInt(0, i+1)
		items[i], items[j] = items[j], items[i]
	}
}

// Sample returns n distinct elements drawn from items via a full shuffle of a
// copy. If n >= len(items) the whole shuffled copy is returned. The input
// slice is never mutated.
func Sample(src Source, items []string, n int) []string {
	out := make([]string, len(items))
	copy(out, items)
	Shuffle(src, out)
	if n >= len(out) {
		return out
	}
	return out[:n]
}
