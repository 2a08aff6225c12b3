// internal/challenge/provider.go
//
// Caching front for Generate. The challenge for a date never changes, so the
// provider computes it once and serves every handler from a TTL cache keyed
// by the 8-digit date.

package challenge

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// PoolSource supplies the country pools the generator samples from.
type PoolSource interface {
	Territories() []string
	WithCapitals() []string
}

// Provider memoizes generated challenges per date.
type Provider struct {
	pools PoolSource
	cache *gocache.Cache
}

// NewProvider builds a provider over the given pool source. Entries outlive
// their day by a margin so late requests near midnight still resolve.
func NewProvider(pools PoolSource) *Provider {
	return &Provider{
		pools: pools,
		cache: gocache.New(36*time.Hour, time.Hour),
	}
}

// For returns the challenge for the given date, generating it on first use.
func (p *Provider) For(date string) (Challenge, error) {
	if v, ok := p.cache.Get(date); ok {
		return v.(Challenge), nil
	}
	ch, err := Generate(date, p.pools.Territories(), p.pools.WithCapitals())
	if err != nil {
		return Challenge{}, err
	}
	p.cache.Set(date, ch, gocache.DefaultExpiration)
	return ch, nil
}

// Today returns the challenge for the current UTC date.
func (p *Provider) Today(now time.Time) (Challenge, error) {
	return p.For(DateKey(now))
}
