package providers

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"tubetext/internal/domain"
)

// The table parsers are deliberately narrow: a markup change on a source site
// should only touch this file, never the aggregation logic.

var totalCountRE = regexp.MustCompile(`of\s+([0-9,]+)`)

// parseTotalCount scrapes the result counter ("Showing 1-64 of 1,234") from a
// listing page. Returns 0 when the counter is missing.
func parseTotalCount(doc *goquery.Document) int {
	text := doc.Find(".list-count, .results-count, caption").First().Text()

	match := totalCountRE.FindStringSubmatch(text)
	if len(match) < 2 {
		return 0
	}

	total, err := strconv.Atoi(strings.ReplaceAll(match[1], ",", ""))
	if err != nil {
		return 0
	}
	return total
}

// parseProxyTable extracts candidates from a listing table. Expected row
// layout: IP, Port, Country Code, Country, Anonymity, Google, Https, Last
// Checked. Rows that fail to parse are skipped.
func parseProxyTable(doc *goquery.Document, countries []string, protocol string) []domain.Proxy {
	var candidates []domain.Proxy

	doc.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 7 {
			return
		}

		ip := strings.TrimSpace(cells.Eq(0).Text())
		portText := strings.TrimSpace(cells.Eq(1).Text())
		code := strings.TrimSpace(cells.Eq(2).Text())
		https := strings.TrimSpace(cells.Eq(6).Text())

		if protocol == domain.ProtocolHTTPS && !strings.EqualFold(https, "yes") {
			return
		}
		if !matchesCountry(countries, code) {
			return
		}

		port, err := strconv.Atoi(portText)
		if err != nil {
			return
		}

		proxy, err := domain.NewProxy(ip, port, protocol)
		if err != nil {
			return
		}
		candidates = append(candidates, proxy)
	})

	return candidates
}
