// internal/atlas/atlas.go
//
// Country dataset backing the quiz target pools.
//
// Responsibilities:
//   - Load the country list from an environment-provided file or fall back to
//     the embedded default dataset.
//   - Supply the per-mode pools: all territories, the subset with a known
//     capital, and continent-filtered views.
//   - Resolve display data (capital, flag code) per country identifier.
//
// Format: tab-separated lines `name<TAB>capital<TAB>continent<TAB>flagcode`.
// The capital column may be empty (disputed or uninhabited territories);
// such entries are excluded from the capital-mode pool.
//
// Environment variables:
//   COUNTRIES_FILE=/path/to/countries.tsv
//
// Initialization is run once (sync.Once), mirroring how the server loads all
// static pools at startup.

package atlas

import (
	"bufio"
	_ "embed"
	"errors"
	"os"
	"strings"
	"sync"
)

//go:embed countries.tsv
var embeddedCountries string

// Country is one row of the dataset.
type Country struct {
	Name      string
	Capital   string // empty when unknown
	Continent string
	FlagCode  string // lowercase ISO 3166-1 alpha-2
}

var (
	initOnce   sync.Once
	countries  []Country
	byName     map[string]Country
	initialErr error
)

// Init loads the dataset exactly once. Returns an error if the resulting
// country list is empty.
func Init() error {
	initOnce.Do(func() {
		var lines []string
		if path := os.Getenv("COUNTRIES_FILE"); path != "" {
			var err error
			lines, err = readLines(path)
			if err != nil {
				initialErr = err
				return
			}
		} else {
			lines = strings.Split(embeddedCountries, "\n")
		}

		byName = make(map[string]Country)
		for _, line := range lines {
			c, ok := parseLine(line)
			if !ok {
				continue
			}
			if _, dup := byName[c.Name]; dup {
				continue
			}
			countries = append(countries, c)
			byName[c.Name] = c
		}
		if len(countries) == 0 {
			initialErr = errors.New("atlas: country list is empty")
		}
	})
	return initialErr
}

// readLines loads a dataset file one line at a time.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	return out, sc.Err()
}

// parseLine parses one TSV row; blank lines and rows without a name are
// dropped.
func parseLine(line string) (Country, bool) {
	line = strings.TrimRight(line, "\r")
	if strings.TrimSpace(line) == "" {
		return Country{}, false
	}
	fields := strings.Split(line, "\t")
	if len(fields) < 4 || strings.TrimSpace(fields[0]) == "" {
		return Country{}, false
	}
	return Country{
		Name:      strings.TrimSpace(fields[0]),
		Capital:   strings.TrimSpace(fields[1]),
		Continent: strings.TrimSpace(fields[2]),
		FlagCode:  strings.ToLower(strings.TrimSpace(fields[3])),
	}, true
}

// Territories returns every country name, in dataset order. This is the pool
// for territory and flag modes.
func Territories() []string {
	out := make([]string, len(countries))
	for i, c := range countries {
		out[i] = c.Name
	}
	return out
}

// WithCapitals returns the names of countries that have a known capital: the
// pool for capital mode.
func WithCapitals() []string {
	var out []string
	for _, c := range countries {
		if c.Capital != "" {
			out = append(out, c.Name)
		}
	}
	return out
}

// ByContinent returns the names of countries on the given continent
// (case-insensitive). Unknown continents yield an empty pool.
func ByContinent(continent string) []string {
	var out []string
	for _, c := range countries {
		if strings.EqualFold(c.Continent, continent) {
			out = append(out, c.Name)
		}
	}
	return out
}

// Capital returns the capital for a country name.
func Capital(name string) (string, bool) {
	c, ok := byName[name]
	if !ok || c.Capital == "" {
		return "", false
	}
	return c.Capital, true
}

// FlagCode returns the ISO flag code for a country name.
func FlagCode(name string) (string, bool) {
	c, ok := byName[name]
	if !ok || c.FlagCode == "" {
		return "", false
	}
	return c.FlagCode, true
}

// IsCountry reports whether name is in the dataset.
func IsCountry(name string) bool {
	_, ok := byName[name]
	return ok
}

// Stats returns counts of loaded countries: (total, withCapital).
func Stats() (total int, withCapital int) {
	for _, c := range countries {
		if c.Capital != "" {
			withCapital++
		}
	}
	return len(countries), withCapital
}
