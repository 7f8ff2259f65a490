// Package pool maintains a deduplicated, size-bounded set of proxies plus a
// rotation policy, backed by providers, a liveness validator and a cache
// store. Callers only ever see the pool's current selection.
package pool

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"tubetext/internal/domain"
	"tubetext/internal/pool/providers"
)

type Options struct {
	Protocol    string
	Countries   []string
	MaxProxies  int
	CacheTTL    time.Duration
	AutoRefresh bool
	AutoRotate  bool

	// Static short-circuits providers and the cache entirely when it
	// contains at least one proxy of the configured protocol.
	Static []domain.Proxy

	Store     Store
	Providers []providers.Provider
}

type Pool struct {
	opts        Options
	fingerprint string

	group   singleflight.Group
	pending atomic.Bool

	readyOnce sync.Once
	ready     chan struct{}

	mu      sync.Mutex
	proxies []domain.Proxy
	current int
	expiry  time.Time
}

func New(opts Options) (*Pool, error) {
	if !domain.IsSupportedProtocol(opts.Protocol) {
		return nil, &UnsupportedProtocolError{Protocol: opts.Protocol}
	}
	if opts.MaxProxies <= 0 {
		opts.MaxProxies = 10
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}

	p := &Pool{
		opts:        opts,
		fingerprint: Fingerprint(opts.MaxProxies, opts.Protocol, opts.Countries),
		ready:       make(chan struct{}),
		current:     -1,
	}

	if opts.AutoRefresh {
		go func() {
			if err := p.Refresh(context.Background()); err != nil {
				log.Error("initial pool refresh failed", "error", err)
			}
		}()
	}

	return p, nil
}

// Fingerprint identifies a pool configuration. A cached record whose
// configString differs from the live fingerprint is discarded, never merged.
func Fingerprint(maxProxies int, protocol string, countries []string) string {
	sorted := append([]string(nil), countries...)
	sort.Strings(sorted)
	return fmt.Sprintf("%d|%s|%s", maxProxies, protocol, strings.Join(sorted, ","))
}

// Refresh (re)populates the pool. Concurrent callers share a single
// in-flight refresh instead of triggering duplicates.
func (p *Pool) Refresh(ctx context.Context) error {
	_, err, _ := p.group.Do("refresh", func() (any, error) {
		p.pending.Store(true)
		defer p.pending.Store(false)
		defer p.readyOnce.Do(func() { close(p.ready) })
		return nil, p.refresh(ctx)
	})
	return err
}

// Acquire returns the proxy a caller should use now. It blocks until the
// initial refresh completes; with auto-rotate enabled every acquisition
// reselects among the current members.
func (p *Pool) Acquire(ctx context.Context) (domain.Proxy, error) {
	if p.opts.AutoRefresh || p.pending.Load() {
		select {
		case <-p.ready:
		case <-ctx.Done():
			return domain.Proxy{}, ctx.Err()
		}
	}

	if p.opts.AutoRotate {
		return p.Rotate(ctx, true)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.proxies) == 0 || p.current < 0 {
		return domain.Proxy{}, ErrNoProxyAvailable
	}
	return p.proxies[p.current], nil
}

// Rotate reselects uniformly at random among current members. With
// validateCache it refreshes first, but only when the cache has actually
// expired or none exists; a missing cache over an empty pool is a hard
// error rather than a silent refresh. Random selection is a liveness and
// diversity control, not a fairness guarantee.
func (p *Pool) Rotate(ctx context.Context, validateCache bool) (domain.Proxy, error) {
	if validateCache && len(p.opts.Static) == 0 {
		if refresh, err := p.cacheNeedsRefresh(ctx); err != nil {
			return domain.Proxy{}, err
		} else if refresh {
			if err := p.Refresh(ctx); err != nil {
				return domain.Proxy{}, err
			}
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.proxies) == 0 {
		return domain.Proxy{}, ErrEmptyRotation
	}

	p.current = rand.IntN(len(p.proxies))
	return p.proxies[p.current], nil
}

func (p *Pool) cacheNeedsRefresh(ctx context.Context) (bool, error) {
	if p.opts.Store == nil {
		p.mu.Lock()
		expiry := p.expiry
		p.mu.Unlock()
		return !expiry.IsZero() && !time.Now().Before(expiry), nil
	}

	record, err := p.opts.Store.Load(ctx)
	if err != nil {
		return false, err
	}
	if record == nil {
		if p.Size() == 0 {
			return false, ErrNoProxyAvailable
		}
		return true, nil
	}
	return record.Expired(time.Now()), nil
}

// Proxies returns a copy of the current members.
func (p *Pool) Proxies() []domain.Proxy {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Proxy(nil), p.proxies...)
}

func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.proxies)
}

// ExportList persists the current pool to a list file in the wrapped form.
func (p *Pool) ExportList(path string) error {
	data, err := domain.EncodeProxyList(p.Proxies(), p.opts.Protocol)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("create export directory %s: %w", dir, err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func (p *Pool) refresh(ctx context.Context) error {
	// A supplied static list wins outright: no network calls, no cache write.
	if len(p.opts.Static) > 0 {
		kept := make([]domain.Proxy, 0, len(p.opts.Static))
		for _, proxy := range p.opts.Static {
			if proxy.Protocol == p.opts.Protocol {
				kept = append(kept, proxy)
			}
		}
		if len(kept) > 0 {
			p.install(truncate(domain.Dedup(kept), p.opts.MaxProxies), time.Time{})
			return nil
		}
	}

	if p.opts.Store != nil {
		record, err := p.opts.Store.Load(ctx)
		if err != nil {
			log.Warn("proxy cache unreadable, ignoring", "error", err)
		}
		if record != nil && record.ConfigString == p.fingerprint && !record.Expired(time.Now()) {
			cached := truncate(domain.Dedup(record.Proxies), p.opts.MaxProxies)
			if len(cached) > 0 {
				log.Debug("pool populated from cache", "proxies", len(cached), "expires", record.ExpiryIn)
				p.install(cached, record.ExpiryIn)
				return nil
			}
		}
	}

	var gathered []domain.Proxy
	for _, provider := range p.opts.Providers {
		if !providers.SupportsProtocol(provider, p.opts.Protocol) {
			continue
		}
		if len(p.opts.Countries) > 0 && !provider.SupportsCountries() {
			continue
		}

		found, err := provider.Fetch(ctx, p.opts.Countries, p.opts.Protocol)
		if err != nil {
			log.Warn("provider sweep failed", "provider", provider.Name(), "error", err)
			continue
		}
		log.Debug("provider sweep", "provider", provider.Name(), "proxies", len(found))

		gathered = append(gathered, found...)
		if len(gathered) >= p.opts.MaxProxies {
			break
		}
	}

	if len(gathered) == 0 {
		return &NoProxiesFoundError{Protocol: p.opts.Protocol}
	}

	gathered = truncate(domain.Dedup(gathered), p.opts.MaxProxies)
	expiry := time.Now().Add(p.opts.CacheTTL)

	if p.opts.Store != nil {
		record := domain.CacheRecord{
			ExpiryIn:     expiry,
			ConfigString: p.fingerprint,
			Proxies:      gathered,
		}
		if err := p.opts.Store.Save(ctx, record); err != nil {
			log.Warn("persist proxy cache failed", "error", err)
		}
	}

	p.install(gathered, expiry)
	return nil
}

func (p *Pool) install(proxies []domain.Proxy, expiry time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.proxies = proxies
	p.expiry = expiry
	if len(proxies) > 0 {
		p.current = 0
	} else {
		p.current = -1
	}
}

func truncate(proxies []domain.Proxy, max int) []domain.Proxy {
	if len(proxies) > max {
		return proxies[:max]
	}
	return proxies
}
