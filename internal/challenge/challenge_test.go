package challenge_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapquiz/go-server/internal/challenge"
)

var (
	testEntities = []string{
		"Austria", "Belgium", "Croatia", "Denmark", "Estonia", "Finland",
		"Greece", "Hungary", "Ireland", "Latvia", "Norway", "Poland",
	}
	testWithCapitals = []string{
		"Austria", "Belgium", "Denmark", "Finland", "Greece", "Hungary",
		"Norway", "Poland",
	}
)

func TestGenerate_Deterministic(t *testing.T) {
	a, err := challenge.Generate("20250115", testEntities, testWithCapitals)
	require.NoError(t, err)
	b, err := challenge.Generate("20250115", testEntities, testWithCapitals)
	require.NoError(t, err)

	assert.Equal(t, a, b, "same date must yield an identical challenge")
}

// Pinned composition for 2025-01-15. The sample order (territory, then flag,
// then capital, all from one generator) is part of the format: changing it
// breaks cross-player agreement and must fail here.
func TestGenerate_GoldenComposition(t *testing.T) {
	ch, err := challenge.Generate("20250115", testEntities, testWithCapitals)
	require.NoError(t, err)

	require.Len(t, ch.Rounds, 3)
	assert.Equal(t, int64(20250115), ch.Seed)
	assert.Equal(t, 3, ch.TotalRounds)

	assert.Equal(t, []string{
		"Greece", "Finland", "Belgium", "Austria", "Hungary",
		"Norway", "Croatia", "Denmark", "Ireland", "Poland",
	}, ch.Rounds[0].Entities)
	assert.Equal(t, []string{"Poland", "Denmark", "Greece", "Hungary", "Latvia"}, ch.Rounds[1].Entities)
	assert.Equal(t, []string{"Poland", "Austria", "Norway", "Greece", "Belgium"}, ch.Rounds[2].Entities)
}

func TestGenerate_DifferentDatesDiffer(t *testing.T) {
	a, err := challenge.Generate("20250115", testEntities, testWithCapitals)
	require.NoError(t, err)
	b, err := challenge.Generate("20250116", testEntities, testWithCapitals)
	require.NoError(t, err)

	assert.NotEqual(t, a.Rounds[0].Entities, b.Rounds[0].Entities)
}

func TestGenerate_RoundShape(t *testing.T) {
	ch, err := challenge.Generate("20250601", testEntities, testWithCapitals)
	require.NoError(t, err)

	require.Len(t, ch.Rounds, 3)
	assert.Equal(t, challenge.RoundTerritory, ch.Rounds[0].Type)
	assert.Equal(t, challenge.RoundFlag, ch.Rounds[1].Type)
	assert.Equal(t, challenge.RoundCapital, ch.Rounds[2].Type)

	assert.Len(t, ch.Rounds[0].Entities, 10)
	assert.Len(t, ch.Rounds[1].Entities, 5)
	assert.Len(t, ch.Rounds[2].Entities, 5)
	for _, r := range ch.Rounds {
		assert.Equal(t, len(r.Entities), r.Count)
		assert.NotEmpty(t, r.Title)
	}
}

func TestGenerate_EntitiesUniqueWithinRound(t *testing.T) {
	ch, err := challenge.Generate("20250115", testEntities, testWithCapitals)
	require.NoError(t, err)

	for _, r := range ch.Rounds {
		seen := map[string]bool{}
		for _, e := range r.Entities {
			require.False(t, seen[e], "round %s repeats %s", r.Type, e)
			seen[e] = true
		}
	}
}

func TestGenerate_CapitalRoundDrawsFromCapitalPool(t *testing.T) {
	ch, err := challenge.Generate("20250115", testEntities, testWithCapitals)
	require.NoError(t, err)

	for _, e := range ch.Rounds[2].Entities {
		assert.Contains(t, testWithCapitals, e)
	}
}

func TestGenerate_SmallPoolsReturnedWhole(t *testing.T) {
	small := []string{"Austria", "Belgium", "Croatia"}
	ch, err := challenge.Generate("20250115", small, small)
	require.NoError(t, err)

	assert.ElementsMatch(t, small, ch.Rounds[0].Entities)
	assert.Equal(t, 3, ch.Rounds[0].Count)
}

func TestGenerate_BadDates(t *testing.T) {
	for _, date := range []string{"", "2025", "2025-01-15", "abcdefgh", "202501150"} {
		_, err := challenge.Generate(date, testEntities, testWithCapitals)
		assert.Error(t, err, "date %q", date)
	}
}

func TestDateKey(t *testing.T) {
	ts := time.Date(2025, 1, 15, 23, 30, 0, 0, time.FixedZone("UTC+5", 5*3600))
	assert.Equal(t, "20250115", challenge.DateKey(ts), "key is the UTC date")
}

func TestProvider_CachesPerDate(t *testing.T) {
	p := challenge.NewProvider(pools{})
	a, err := p.For("20250115")
	require.NoError(t, err)
	b, err := p.For("20250115")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := p.Today(time.Date(2025, 1, 16, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "20250116", c.Date)
}

type pools struct{}

func (pools) Territories() []string  { return testEntities }
func (pools) WithCapitals() []string { return testWithCapitals }
