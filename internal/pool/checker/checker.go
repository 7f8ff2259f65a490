// Package checker validates that candidate proxies actually forward traffic.
// A candidate survives only when a probe through it reaches an IP-echo judge
// within the timeout and reports an egress address different from our own.
package checker

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/semaphore"

	"tubetext/internal/domain"
	"tubetext/internal/support"
)

const maxResponseBodyLength = 4096

type Checker struct {
	width   int64
	timeout time.Duration
	lookup  string
	judges  []string
}

func New(width int64, timeout time.Duration, lookup string, judges []string) *Checker {
	if width <= 0 {
		width = 100
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Checker{
		width:   width,
		timeout: timeout,
		lookup:  lookup,
		judges:  judges,
	}
}

// OwnIP resolves the caller's un-proxied public address. Best-effort: an
// empty result disables the distinct-egress check but never aborts
// validation.
func (c *Checker) OwnIP(ctx context.Context) string {
	if c.lookup == "" {
		return ""
	}

	client := &http.Client{Timeout: c.timeout}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.lookup, nil)
	if err != nil {
		return ""
	}

	resp, err := client.Do(req)
	if err != nil {
		log.Warn("ip lookup failed, skipping egress comparison", "url", c.lookup, "error", err)
		return ""
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyLength))
	if err != nil {
		return ""
	}

	return support.FindIP(string(body))
}

// Validate returns the subset of candidates that pass a liveness probe.
// Probes run through a bounded worker pool cycling through the judge list
// round-robin, one judge per candidate index, so no single third party takes
// the whole burst. Output order is not guaranteed.
func (c *Checker) Validate(ctx context.Context, candidates []domain.Proxy) []domain.Proxy {
	if len(candidates) == 0 || len(c.judges) == 0 {
		return nil
	}

	ownIP := c.OwnIP(ctx)

	alive := make([]bool, len(candidates))
	sem := semaphore.NewWeighted(c.width)
	var wg sync.WaitGroup

	for i := range candidates {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)
			alive[i] = c.probe(ctx, candidates[i], c.judges[i%len(c.judges)], ownIP)
		}(i)
	}
	wg.Wait()

	kept := make([]domain.Proxy, 0, len(candidates))
	for i, ok := range alive {
		if ok {
			kept = append(kept, candidates[i])
		}
	}

	log.Debug("proxy validation finished", "candidates", len(candidates), "alive", len(kept))
	return kept
}

func (c *Checker) probe(ctx context.Context, proxy domain.Proxy, judge, ownIP string) bool {
	transport := &http.Transport{
		Proxy:             http.ProxyURL(proxy.URL()),
		DisableKeepAlives: true,
	}
	defer transport.CloseIdleConnections() // Release resources immediately

	client := &http.Client{
		Transport: transport,
		Timeout:   c.timeout,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, judge, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Connection", "close")

	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyLength))
	if err != nil {
		return false
	}

	egress := support.FindIP(strings.TrimSpace(string(body)))
	if egress == "" {
		return false
	}
	if ownIP != "" && egress == ownIP {
		// Proxy failed open and exposed our real address.
		return false
	}
	return true
}
