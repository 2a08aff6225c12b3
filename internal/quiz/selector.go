// internal/quiz/selector.go
//
// No-repeat target sampling.
// The selector partitions its pool into used/remaining and draws uniformly
// from remaining; once every element has appeared the partition resets and a
// new sweep begins. With a seeded rng.Source the draw order is deterministic.

package quiz

import "github.com/mapquiz/go-server/internal/rng"

// Selector draws unique targets from a fixed pool without replacement within
// one sweep. Not safe for concurrent use; each engine owns its own selector.
type Selector struct {
	pool []string
	used map[string]struct{}
	src  rng.Source
}

// NewSelector builds a selector over pool. The pool slice is copied so later
// caller mutations cannot affect sampling.
func NewSelector(pool []string, src rng.Source) *Selector {
	p := make([]string, len(pool))
	copy(p, pool)
	return &Selector{
		pool: p,
		used: make(map[string]struct{}),
		src:  src,
	}
}

// Next draws one target. Returns ("", false) when the pool is empty.
func (s *Selector) Next() (string, bool) {
	if len(s.pool) == 0 {
		return "", false
	}
	remaining := s.remaining()
	if len(remaining) == 0 {
		// Sweep complete: reset and sample from the full pool again.
		s.used = make(map[string]struct{})
		remaining = s.remaining()
	}
	target := remaining[s.src.NextInt(0, len(remaining))]
	s.used[target] = struct{}{}
	return target, true
}

// Reset clears the used partition, starting a fresh sweep.
func (s *Selector) Reset() {
	s.used = make(map[string]struct{})
}

// PoolSize returns the number of targets in the pool.
func (s *Selector) PoolSize() int { return len(s.pool) }

// remaining returns pool − used in pool order, so the draw index maps onto a
// stable ordering and seeded runs reproduce exactly.
func (s *Selector) remaining() []string {
	out := make([]string, 0, len(s.pool)-len(s.used))
	for _, t := range s.pool {
		if _, ok := s.used[t]; !ok {
			out = append(out, t)
		}
	}
	return out
}
