package providers

import (
	"testing"

	"tubetext/internal/domain"
)

const geonodeFixture = `{
	"data": [
		{"ip": "1.2.3.4", "port": "8080", "country": "US", "protocols": ["http", "https"]},
		{"ip": "5.6.7.8", "port": "3128", "country": "DE", "protocols": ["socks5"]},
		{"ip": "9.9.9.9", "port": "80", "country": "FR", "protocols": ["http"]},
		{"ip": "bad", "port": "80", "country": "US", "protocols": ["http"]},
		{"ip": "4.4.4.4", "port": "oops", "country": "US", "protocols": ["http"]}
	]
}`

func TestParseGeonodeFeed(t *testing.T) {
	t.Run("filters by protocol and skips bad entries", func(t *testing.T) {
		got, err := parseGeonodeFeed([]byte(geonodeFixture), nil, domain.ProtocolHTTP)
		if err != nil {
			t.Fatalf("parseGeonodeFeed returned error %v, want nil", err)
		}
		if len(got) != 2 {
			t.Fatalf("parseGeonodeFeed returned %d proxies, want 2", len(got))
		}
		if got[0].Address() != "1.2.3.4:8080" || got[1].Address() != "9.9.9.9:80" {
			t.Fatalf("parseGeonodeFeed returned %v, want the two http entries", got)
		}
	})

	t.Run("country filter is case insensitive", func(t *testing.T) {
		got, err := parseGeonodeFeed([]byte(geonodeFixture), []string{"fr"}, domain.ProtocolHTTP)
		if err != nil {
			t.Fatalf("parseGeonodeFeed returned error %v, want nil", err)
		}
		if len(got) != 1 || got[0].Address() != "9.9.9.9:80" {
			t.Fatalf("parseGeonodeFeed returned %v, want only the FR entry", got)
		}
	})

	t.Run("https protocol", func(t *testing.T) {
		got, err := parseGeonodeFeed([]byte(geonodeFixture), nil, domain.ProtocolHTTPS)
		if err != nil {
			t.Fatalf("parseGeonodeFeed returned error %v, want nil", err)
		}
		if len(got) != 1 || got[0].Address() != "1.2.3.4:8080" {
			t.Fatalf("parseGeonodeFeed returned %v, want only the https entry", got)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		if _, err := parseGeonodeFeed([]byte("{oops"), nil, domain.ProtocolHTTP); err == nil {
			t.Fatal("parseGeonodeFeed accepted invalid JSON")
		}
	})
}
