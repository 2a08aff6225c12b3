// internal/challenge/challenge.go
//
// Daily challenge generation.
// A challenge is three rounds (territory, flag, capital) sampled from the
// country pool with an LCG seeded by the calendar date, so every player
// worldwide gets the same composition on the same day. All three samples are
// drawn from one generator instance in a fixed order; the whole sequence, not
// just each sample, is reproducible.

package challenge

import (
	"fmt"
	"strconv"
	"time"

	"github.com/mapquiz/go-server/internal/rng"
)

// RoundType identifies one of the three daily game modes.
type RoundType string

const (
	RoundTerritory RoundType = "territory"
	RoundFlag      RoundType = "flag"
	RoundCapital   RoundType = "capital"
)

// RoundTypes lists the three round types in play order.
var RoundTypes = []RoundType{RoundTerritory, RoundFlag, RoundCapital}

// Per-round sample sizes.
const (
	territoryCount = 10
	flagCount      = 5
	capitalCount   = 5
)

// Round is one of the challenge's three fixed games.
type Round struct {
	Type     RoundType `json:"type"`
	Title    string    `json:"title"`
	Entities []string  `json:"entities"`
	Count    int       `json:"count"`
}

// Challenge is the fixed, date-seeded 3-round composition shared by all
// players on a given calendar day.
type Challenge struct {
	Date        string  `json:"date"` // 8-digit YYYYMMDD
	Seed        int64   `json:"seed"`
	Rounds      []Round `json:"rounds"`
	TotalRounds int     `json:"totalRounds"`
}

// DateKey returns t as the 8-digit UTC challenge date.
func DateKey(t time.Time) string {
	return t.UTC().Format("20060102")
}

// Generate builds the challenge for an 8-digit date string. entities is the
// full country pool; withCapitals is the subset having a known capital, used
// for the capital round. Two calls with equal inputs yield identical values.
func Generate(date string, entities, withCapitals []string) (Challenge, error) {
	seed, err := parseSeed(date)
	if err != nil {
		return Challenge{}, err
	}

	// One generator, fixed sample order. Reordering these draws would change
	// every player's challenge, so treat the order as part of the format.
	g := rng.NewLCG(seed)
	territory := rng.Sample(g, entities, territoryCount)
	flags := rng.Sample(g, entities, flagCount)
	capitals := rng.Sample(g, withCapitals, capitalCount)

	rounds := []Round{
		{Type: RoundTerritory, Title: "Find the country", Entities: territory, Count: len(territory)},
		{Type: RoundFlag, Title: "Identify the flag", Entities: flags, Count: len(flags)},
		{Type: RoundCapital, Title: "Locate the capital", Entities: capitals, Count: len(capitals)},
	}
	return Challenge{
		Date:        date,
		Seed:        seed,
		Rounds:      rounds,
		TotalRounds: len(rounds),
	}, nil
}

// parseSeed validates the 8-digit date form and converts it to the seed.
func parseSeed(date string) (int64, error) {
	if len(date) != 8 {
		return 0, fmt.Errorf("challenge: date %q is not 8 digits", date)
	}
	seed, err := strconv.ParseInt(date, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("challenge: bad date %q: %w", date, err)
	}
	return seed, nil
}
