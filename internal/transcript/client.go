// Package transcript turns a YouTube video id into structured caption text.
// The scrape runs as a fixed sequence of page and API requests; when YouTube
// blocks the source address the whole sequence restarts behind a freshly
// rotated proxy, up to the configured budget.
package transcript

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"tubetext/internal/domain"
	"tubetext/internal/httpclient"
	"tubetext/internal/pool"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

type Client struct {
	pool             *pool.Pool
	static           *domain.Proxy
	retries          int
	preventKeepAlive bool
	timeout          time.Duration
	proxyKind        string

	watchPage string
	playerAPI string
}

type Option func(*Client)

// WithPool routes requests through a rotating proxy pool. retriesWhenBlocked
// is the number of restart-with-rotation attempts after a block signal.
func WithPool(p *pool.Pool, retriesWhenBlocked int) Option {
	return func(c *Client) {
		c.pool = p
		c.retries = retriesWhenBlocked
		c.proxyKind = "rotating pool"
	}
}

// WithStaticProxy routes every request through one fixed proxy.
func WithStaticProxy(proxy domain.Proxy, retriesWhenBlocked int) Option {
	return func(c *Client) {
		c.static = &proxy
		c.retries = retriesWhenBlocked
		c.proxyKind = "static list"
	}
}

// WithPreventKeepAlive forces Connection: close on every request, needed by
// some sticky-session pool proxies.
func WithPreventKeepAlive() Option {
	return func(c *Client) { c.preventKeepAlive = true }
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.timeout = timeout }
}

// WithEndpoints points the scrape at alternative watch page and player API
// base URLs, e.g. a front-end mirror.
func WithEndpoints(watchPage, playerAPI string) Option {
	return func(c *Client) {
		c.watchPage = watchPage
		c.playerAPI = playerAPI
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		timeout:   15 * time.Second,
		watchPage: watchPageURL,
		playerAPI: innertubeAPIURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List fetches the caption-track catalog for a video.
func (c *Client) List(ctx context.Context, videoID string) (*TranscriptList, error) {
	return c.run(ctx, videoID)
}

// Fetch retrieves the transcript of a video in the first matching language.
func (c *Client) Fetch(ctx context.Context, videoID string, languages []string, preserveFormatting bool) (*FetchedTranscript, error) {
	list, err := c.run(ctx, videoID)
	if err != nil {
		return nil, err
	}

	track, err := list.FindTranscript(languages...)
	if err != nil {
		return nil, err
	}

	return track.Fetch(ctx, preserveFormatting)
}

// run executes the scrape with the block-retry policy: only block-related
// errors are retried, each attempt restarts from the watch page behind a
// newly rotated proxy, and the budget is the proxy configuration's
// retriesWhenBlocked (zero without a proxy).
func (c *Client) run(ctx context.Context, videoID string) (*TranscriptList, error) {
	retries := 0
	if c.pool != nil || c.static != nil {
		retries = c.retries
	}

	var lastBlock *VideoError

	for attempt := 0; attempt <= retries; attempt++ {
		client, err := c.newHTTPClient(ctx, attempt > 0)
		if err != nil {
			return nil, err
		}

		list, err := c.fetchTranscriptList(ctx, client, videoID)
		if err == nil {
			return list, nil
		}

		var videoErr *VideoError
		if errors.As(err, &videoErr) && videoErr.Retryable() {
			lastBlock = videoErr
			if attempt < retries {
				log.Debug("request blocked, rotating proxy", "video", videoID, "attempt", attempt+1)
			}
			continue
		}
		return nil, err
	}

	lastBlock.ProxyKind = c.proxyKind
	return nil, lastBlock
}

func (c *Client) newHTTPClient(ctx context.Context, rotate bool) (*httpclient.Client, error) {
	var cfg *httpclient.ProxyConfig

	switch {
	case c.pool != nil:
		var proxy domain.Proxy
		var err error
		if rotate {
			proxy, err = c.pool.Rotate(ctx, true)
		} else {
			proxy, err = c.pool.Acquire(ctx)
		}
		if err != nil {
			return nil, fmt.Errorf("transcript: obtain proxy: %w", err)
		}
		cfg = &httpclient.ProxyConfig{
			Proxy:              &proxy,
			PreventKeepAlive:   c.preventKeepAlive,
			RetriesWhenBlocked: c.retries,
			Kind:               c.proxyKind,
		}
	case c.static != nil:
		cfg = &httpclient.ProxyConfig{
			Proxy:              c.static,
			PreventKeepAlive:   c.preventKeepAlive,
			RetriesWhenBlocked: c.retries,
			Kind:               c.proxyKind,
		}
	}

	client := httpclient.New(cfg, c.timeout)
	client.SetHeader("User-Agent", defaultUserAgent)
	client.SetHeader("Accept-Language", "en-US")
	return client, nil
}
