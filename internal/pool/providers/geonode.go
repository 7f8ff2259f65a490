package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tubetext/internal/domain"
	"tubetext/internal/pool/checker"
)

const geonodeURL = "https://proxylist.geonode.com/api/proxy-list?limit=500&page=1&sort_by=lastChecked&sort_type=desc"

// GeoNode pulls the geonode JSON feed, which reports a country for every
// entry, so country filtering needs no external lookup. Output is validated
// before it is returned.
type GeoNode struct {
	baseURL string
	timeout time.Duration
	checker *checker.Checker
}

type geonodeEntry struct {
	IP        string   `json:"ip"`
	Port      string   `json:"port"`
	Country   string   `json:"country"`
	Protocols []string `json:"protocols"`
}

type geonodeResponse struct {
	Data []geonodeEntry `json:"data"`
}

func NewGeoNode(timeout time.Duration, chk *checker.Checker) *GeoNode {
	return &GeoNode{baseURL: geonodeURL, timeout: timeout, checker: chk}
}

func (p *GeoNode) Name() string { return "geonode" }

func (p *GeoNode) Protocols() []string {
	return []string{domain.ProtocolHTTP, domain.ProtocolHTTPS}
}

func (p *GeoNode) SupportsCountries() bool { return true }

func (p *GeoNode) Fetch(ctx context.Context, countries []string, protocol string) ([]domain.Proxy, error) {
	client := &http.Client{Timeout: p.timeout}

	url := p.baseURL + "&protocols=" + protocol
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geonode: fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geonode: feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, err
	}

	candidates, err := parseGeonodeFeed(body, countries, protocol)
	if err != nil {
		return nil, err
	}

	return p.checker.Validate(ctx, candidates), nil
}

func parseGeonodeFeed(body []byte, countries []string, protocol string) ([]domain.Proxy, error) {
	var feed geonodeResponse
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("geonode: decode feed: %w", err)
	}

	candidates := make([]domain.Proxy, 0, len(feed.Data))
	for _, entry := range feed.Data {
		if !entrySupportsProtocol(entry, protocol) {
			continue
		}
		if !matchesCountry(countries, entry.Country) {
			continue
		}

		port, err := strconv.Atoi(entry.Port)
		if err != nil {
			continue
		}

		proxy, err := domain.NewProxy(entry.IP, port, protocol)
		if err != nil {
			continue
		}
		candidates = append(candidates, proxy)
	}

	return candidates, nil
}

func entrySupportsProtocol(entry geonodeEntry, protocol string) bool {
	for _, p := range entry.Protocols {
		if strings.EqualFold(p, protocol) {
			return true
		}
	}
	return false
}
