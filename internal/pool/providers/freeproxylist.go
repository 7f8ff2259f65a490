package providers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"tubetext/internal/domain"
)

const (
	defaultPageSize = 64
	maxTablePages   = 10
)

// FreeProxyList scrapes a paginated HTML proxy table: the first page yields
// the total count, the remaining pages are fetched by a bounded worker pool.
// Parsed rows are country-filtered but not re-validated; the pool only
// deduplicates them. The raw lists behind the table are refreshed by the
// site itself, which is the asymmetry with the feed providers.
type FreeProxyList struct {
	baseURL  string
	pageSize int
	width    int
	timeout  time.Duration
}

func NewFreeProxyList(baseURL string, width int, timeout time.Duration) *FreeProxyList {
	if width <= 0 {
		width = 5
	}
	return &FreeProxyList{
		baseURL:  baseURL,
		pageSize: defaultPageSize,
		width:    width,
		timeout:  timeout,
	}
}

func (p *FreeProxyList) Name() string { return "freeproxylist" }

func (p *FreeProxyList) Protocols() []string {
	return []string{domain.ProtocolHTTP, domain.ProtocolHTTPS}
}

func (p *FreeProxyList) SupportsCountries() bool { return true }

func (p *FreeProxyList) Fetch(ctx context.Context, countries []string, protocol string) ([]domain.Proxy, error) {
	first, err := p.fetchPage(ctx, 1)
	if err != nil {
		return nil, err
	}

	total := parseTotalCount(first)
	pages := 1
	if p.pageSize > 0 && total > p.pageSize {
		pages = (total + p.pageSize - 1) / p.pageSize
	}
	if pages > maxTablePages {
		pages = maxTablePages
	}

	results := make([][]domain.Proxy, pages)
	results[0] = parseProxyTable(first, countries, protocol)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.width)

	for page := 2; page <= pages; page++ {
		group.Go(func() error {
			doc, err := p.fetchPage(groupCtx, page)
			if err != nil {
				// A missing page costs candidates, not the whole sweep.
				log.Warn("table page fetch failed", "provider", p.Name(), "page", page, "error", err)
				return nil
			}
			results[page-1] = parseProxyTable(doc, countries, protocol)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var candidates []domain.Proxy
	for _, pageProxies := range results {
		candidates = append(candidates, pageProxies...)
	}

	log.Debug("table sweep finished", "provider", p.Name(), "pages", pages, "candidates", len(candidates))
	return candidates, nil
}

func (p *FreeProxyList) fetchPage(ctx context.Context, page int) (*goquery.Document, error) {
	url := p.baseURL
	if page > 1 {
		url = fmt.Sprintf("%s?page=%d", p.baseURL, page)
	}

	client := &http.Client{Timeout: p.timeout}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page %d: %w", page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page %d returned status %d", page, resp.StatusCode)
	}

	return goquery.NewDocumentFromReader(resp.Body)
}
