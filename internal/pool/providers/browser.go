package providers

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"

	"tubetext/internal/domain"
)

// Browser renders a source page in headless Chrome before parsing it. A few
// list sites build their tables client-side, so the plain fetchers see an
// empty document. Pages come from a small recycled pool; the browser is
// launched lazily on the first fetch.
type Browser struct {
	url      string
	timeout  time.Duration
	poolSize int

	mu      sync.Mutex
	browser *rod.Browser
	pages   chan *rod.Page
}

func NewBrowser(url string, poolSize int, timeout time.Duration) *Browser {
	if poolSize <= 0 {
		poolSize = 2
	}
	return &Browser{
		url:      url,
		timeout:  timeout,
		poolSize: poolSize,
	}
}

func (p *Browser) Name() string { return "browser" }

func (p *Browser) Protocols() []string {
	return []string{domain.ProtocolHTTP, domain.ProtocolHTTPS}
}

func (p *Browser) SupportsCountries() bool { return true }

func (p *Browser) Fetch(ctx context.Context, countries []string, protocol string) ([]domain.Proxy, error) {
	html, err := p.render(ctx, p.url)
	if err != nil {
		return nil, fmt.Errorf("browser provider: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("browser provider: parse rendered page: %w", err)
	}

	candidates := parseProxyTable(doc, countries, protocol)
	log.Debug("browser page rendered", "url", p.url, "candidates", len(candidates))
	return candidates, nil
}

func (p *Browser) render(ctx context.Context, url string) (string, error) {
	page, err := p.acquirePage()
	if err != nil {
		return "", err
	}
	defer p.recyclePage(page)

	page = page.Context(ctx).Timeout(p.timeout)

	if err := page.Navigate(url); err != nil {
		return "", fmt.Errorf("navigate: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("wait load: %w", err)
	}

	return page.HTML()
}

func (p *Browser) acquirePage() (*rod.Page, error) {
	p.mu.Lock()
	if p.browser == nil {
		if err := p.launch(); err != nil {
			p.mu.Unlock()
			return nil, err
		}
	}
	browser := p.browser
	p.mu.Unlock()

	select {
	case page := <-p.pages:
		return page, nil
	default:
	}

	page, err := stealth.Page(browser)
	if err != nil {
		return nil, fmt.Errorf("stealth page: %w", err)
	}
	return page, nil
}

func (p *Browser) recyclePage(page *rod.Page) {
	select {
	case p.pages <- page:
	default:
		_ = rod.Try(func() { page.MustClose() })
	}
}

// launch is called with p.mu held.
func (p *Browser) launch() error {
	url, err := launcher.New().
		Leakless(true).
		Headless(true).
		Launch()
	if err != nil {
		return fmt.Errorf("launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("browser connect: %w", err)
	}

	p.browser = browser
	p.pages = make(chan *rod.Page, p.poolSize)
	return nil
}

// Close shuts the page pool and the browser down. Safe to call without a
// prior fetch.
func (p *Browser) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.browser == nil {
		return
	}

	for {
		select {
		case page := <-p.pages:
			_ = rod.Try(func() { page.MustClose() })
		default:
			_ = p.browser.Close()
			p.browser = nil
			return
		}
	}
}
