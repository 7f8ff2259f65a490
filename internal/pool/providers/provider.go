// Package providers contains the pluggable proxy sources a pool aggregates.
// The registry handed to a pool is an explicitly constructed slice; there is
// no process-wide provider state.
package providers

import (
	"context"
	"slices"
	"strings"

	"tubetext/internal/domain"
)

// Provider fetches candidate proxies from one external feed. A provider must
// never be invoked for a protocol it does not list, or with a non-empty
// country filter when SupportsCountries is false; the pool enforces both.
type Provider interface {
	Name() string
	Protocols() []string
	SupportsCountries() bool
	Fetch(ctx context.Context, countries []string, protocol string) ([]domain.Proxy, error)
}

func SupportsProtocol(p Provider, protocol string) bool {
	return slices.Contains(p.Protocols(), protocol)
}

func matchesCountry(countries []string, code string) bool {
	if len(countries) == 0 {
		return true
	}
	for _, want := range countries {
		if strings.EqualFold(want, code) {
			return true
		}
	}
	return false
}
