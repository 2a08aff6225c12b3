package leaderboard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mapquiz/go-server/internal/leaderboard"
)

func TestCompare_TieBreakChain(t *testing.T) {
	a := leaderboard.Entry{Score: 85, RawScorePercentage: 85.69, TimeInSeconds: 110}
	b := leaderboard.Entry{Score: 85, RawScorePercentage: 85.69, TimeInSeconds: 115}
	c := leaderboard.Entry{Score: 85, RawScorePercentage: 85.42, TimeInSeconds: 120}

	// Tie on score, then raw percentage, then time.
	entries := []leaderboard.Entry{c, b, a}
	leaderboard.Sort(entries)
	assert.Equal(t, []leaderboard.Entry{a, b, c}, entries)
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b leaderboard.Entry
		sign int // -1: a first, 0: equal, 1: b first
	}{
		{
			name: "higher score wins regardless of time",
			a:    leaderboard.Entry{Score: 90, RawScorePercentage: 90.1, TimeInSeconds: 500},
			b:    leaderboard.Entry{Score: 85, RawScorePercentage: 85.9, TimeInSeconds: 10},
			sign: -1,
		},
		{
			name: "raw percentage breaks a floored-score tie",
			a:    leaderboard.Entry{Score: 85, RawScorePercentage: 85.69, TimeInSeconds: 300},
			b:    leaderboard.Entry{Score: 85, RawScorePercentage: 85.42, TimeInSeconds: 10},
			sign: -1,
		},
		{
			name: "lower time breaks a full tie",
			a:    leaderboard.Entry{Score: 85, RawScorePercentage: 85.69, TimeInSeconds: 110},
			b:    leaderboard.Entry{Score: 85, RawScorePercentage: 85.69, TimeInSeconds: 115},
			sign: -1,
		},
		{
			name: "identical entries rank equal",
			a:    leaderboard.Entry{Score: 85, RawScorePercentage: 85.69, TimeInSeconds: 110},
			b:    leaderboard.Entry{Score: 85, RawScorePercentage: 85.69, TimeInSeconds: 110},
			sign: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := leaderboard.Compare(tt.a, tt.b)
			switch tt.sign {
			case -1:
				assert.Negative(t, got)
				assert.Positive(t, leaderboard.Compare(tt.b, tt.a), "order must be antisymmetric")
			case 0:
				assert.Zero(t, got)
			case 1:
				assert.Positive(t, got)
			}
		})
	}
}

func TestSort_StableForEqualEntries(t *testing.T) {
	// Two equal entries and a marker between them in the input: the equal pair
	// must keep its relative input order after sorting.
	e := leaderboard.Entry{Score: 70, RawScorePercentage: 70.5, TimeInSeconds: 60}
	better := leaderboard.Entry{Score: 95, RawScorePercentage: 95.0, TimeInSeconds: 60}

	entries := []leaderboard.Entry{e, better, e}
	leaderboard.Sort(entries)

	assert.Equal(t, better, entries[0])
	assert.Equal(t, e, entries[1])
	assert.Equal(t, e, entries[2])
}

func TestCompare_Transitive(t *testing.T) {
	a := leaderboard.Entry{Score: 90, RawScorePercentage: 90.9, TimeInSeconds: 100}
	b := leaderboard.Entry{Score: 90, RawScorePercentage: 90.9, TimeInSeconds: 200}
	c := leaderboard.Entry{Score: 88, RawScorePercentage: 88.0, TimeInSeconds: 50}

	assert.Negative(t, leaderboard.Compare(a, b))
	assert.Negative(t, leaderboard.Compare(b, c))
	assert.Negative(t, leaderboard.Compare(a, c))
}
