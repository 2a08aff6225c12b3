// internal/quiz/scoring.go
//
// Attempt-weighted scoring policy.
// Fixed weight table: first try 4, second 2, third 1, failed/skipped 0.
// rawScorePercentage = 100 * Σ weight / (totalRounds * firstTryWeight), so it
// is 100 only for all first-try sessions and 0 only for all failed/skipped.
// The difficulty multiplier is applied exactly once, at session end, and the
// un-multiplied score is kept for cross-difficulty comparison.

package quiz

import "math"

const (
	weightFirstTry  = 4
	weightSecondTry = 2
	weightThirdTry  = 1
)

// outcomeWeight maps an outcome code to its point weight.
func outcomeWeight(c OutcomeCode) int {
	switch c {
	case OutcomeFirstTry:
		return weightFirstTry
	case OutcomeSecondTry:
		return weightSecondTry
	case OutcomeThirdTry:
		return weightThirdTry
	default:
		return 0
	}
}

// RawScorePercentage computes the full-precision weighted score for a ledger.
// Always within [0,100].
func RawScorePercentage(ledger map[string]OutcomeCode, totalRounds int) float64 {
	if totalRounds <= 0 {
		return 0
	}
	sum := 0
	for _, c := range ledger {
		sum += outcomeWeight(c)
	}
	return 100 * float64(sum) / float64(totalRounds*weightFirstTry)
}

// MultiplierFunc turns the un-multiplied weighted score into the final score
// for a difficulty mode. Kept pluggable because the exact shape is a product
// decision, not an engine invariant.
type MultiplierFunc func(baseScore int, mode Difficulty) int

// DefaultMultiplier applies the difficulty table's stepped multiplier and
// rounds half away from zero.
func DefaultMultiplier(baseScore int, mode Difficulty) int {
	return int(math.Round(float64(baseScore) * mode.Config().Multiplier))
}
