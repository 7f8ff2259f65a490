package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"tubetext/internal/domain"
	"tubetext/internal/geolite"
	"tubetext/internal/pool/checker"
	"tubetext/internal/support"
)

const maxFeedBytes = 4 << 20

// PlainText scrapes newline-delimited ip:port feeds. The raw lists carry no
// liveness signal at all, so everything parsed goes through the validator
// before it is returned. Country filtering is only available when a GeoLite
// resolver is attached.
type PlainText struct {
	name    string
	feeds   map[string]string // protocol -> feed URL
	timeout time.Duration
	checker *checker.Checker
	geo     *geolite.Resolver
}

func NewPlainText(name string, feeds map[string]string, timeout time.Duration, chk *checker.Checker, geo *geolite.Resolver) *PlainText {
	return &PlainText{
		name:    name,
		feeds:   feeds,
		timeout: timeout,
		checker: chk,
		geo:     geo,
	}
}

func (p *PlainText) Name() string { return p.name }

func (p *PlainText) Protocols() []string {
	protocols := make([]string, 0, len(p.feeds))
	for protocol := range p.feeds {
		protocols = append(protocols, protocol)
	}
	return protocols
}

func (p *PlainText) SupportsCountries() bool { return p.geo != nil }

func (p *PlainText) Fetch(ctx context.Context, countries []string, protocol string) ([]domain.Proxy, error) {
	feedURL, ok := p.feeds[protocol]
	if !ok {
		return nil, fmt.Errorf("provider %s has no %s feed", p.name, protocol)
	}

	client := &http.Client{Timeout: p.timeout}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider %s: fetch feed: %w", p.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider %s: feed returned status %d", p.name, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, err
	}

	candidates := support.ParseProxyLines(string(body), protocol)
	if len(countries) > 0 && p.geo != nil {
		filtered := make([]domain.Proxy, 0, len(candidates))
		for _, candidate := range candidates {
			if matchesCountry(countries, p.geo.Country(candidate.IP)) {
				filtered = append(filtered, candidate)
			}
		}
		candidates = filtered
	}

	log.Debug("plaintext feed parsed", "provider", p.name, "candidates", len(candidates))
	return p.checker.Validate(ctx, candidates), nil
}
