// internal/leaderboard/compare.go
//
// Ranking order for finished results:
//   1. higher floored score
//   2. higher raw score percentage (full precision tie-break)
//   3. lower completion time
//   4. equal (stable sort keeps input order)

package leaderboard

import "sort"

// Entry is a read-only result record to rank.
type Entry struct {
	Score              int     `json:"score"` // floored, 0-100
	RawScorePercentage float64 `json:"rawScorePercentage"`
	TimeInSeconds      int     `json:"timeInSeconds"`
}

// Compare returns a negative value if a outranks b, positive if b outranks a,
// and 0 when they rank equal. It is a total order suitable for a stable sort.
func Compare(a, b Entry) int {
	if a.Score != b.Score {
		return b.Score - a.Score
	}
	if a.RawScorePercentage != b.RawScorePercentage {
		if a.RawScorePercentage > b.RawScorePercentage {
			return -1
		}
		return 1
	}
	return a.TimeInSeconds - b.TimeInSeconds
}

// Sort orders entries best-first, keeping input order for equal entries.
func Sort(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return Compare(entries[i], entries[j]) < 0
	})
}
