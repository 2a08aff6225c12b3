// internal/rng/lcg.go
//
// Deterministic linear congruential generator.
// Parameters: a=1103515245, c=12345, m=2^31 (the classic glibc constants).
// For a fixed seed the sequence of Next() values is bit-for-bit reproducible,
// which is what makes the daily challenge identical for every player.
//
// The multiply-and-mod step is done in int64: a*seed can reach ~2^61, past
// the exact-integer range of a float64, so floating-point math here would
// silently diverge between platforms.

package rng

const (
	lcgMultiplier int64 = 1103515245
	lcgIncrement  int64 = 12345
	lcgModulus    int64 = 1 << 31
)

// LCG is a seedable deterministic Source. Not safe for concurrent use.
type LCG struct {
	state int64
}

// NewLCG returns a generator for the given integer seed. Callers are expected
// to pass a finite non-negative integer (e.g. an 8-digit date); the state is
// reduced mod 2^31 so any int64 is accepted.
func NewLCG(seed int64) *LCG {
	s := seed % lcgModulus
	if s < 0 {
		s += lcgModulus
	}
	return &LCG{state: s}
}

// Next advances the generator and returns state/m in [0,1).
func (g *LCG) Next() float64 {
	g.state = (lcgMultiplier*g.state + lcgIncrement) % lcgModulus
	return float64(g.state) / float64(lcgModulus)
}

// NextInt returns floor(Next()*(max-min)) + min.
func (g *LCG) NextInt(min, max int) int {
	return int(g.Next()*float64(max-min)) + min
}
