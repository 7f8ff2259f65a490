// Package httpclient issues requests with a persistent header map, a domain
// matching cookie jar and optional proxy injection. The transcript pipeline
// builds one client per attempt so a rotated proxy gets a fresh transport.
package httpclient

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"tubetext/internal/domain"
)

// ProxyConfig describes how outbound requests are relayed. Kind is the
// human-readable configuration type carried into block-error annotations.
type ProxyConfig struct {
	Proxy              *domain.Proxy
	PreventKeepAlive   bool
	RetriesWhenBlocked int
	Kind               string
}

type Response struct {
	StatusCode int
	Body       []byte
}

type Client struct {
	headers map[string]string
	jar     *CookieJar
	cfg     *ProxyConfig
	inner   *http.Client
}

func New(cfg *ProxyConfig, timeout time.Duration) *Client {
	return &Client{
		headers: make(map[string]string),
		jar:     &CookieJar{},
		cfg:     cfg,
		inner: &http.Client{
			Transport: buildTransport(cfg, timeout),
			Timeout:   timeout,
		},
	}
}

// SetHeader adds a header merged into every subsequent request. Per-call
// headers take precedence over persistent ones.
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

func (c *Client) SetCookie(name, value, domain string) {
	c.jar.Set(name, value, domain)
}

func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	return c.do(ctx, http.MethodGet, url, nil, headers)
}

func (c *Client) Post(ctx context.Context, url string, body []byte, headers map[string]string) (*Response, error) {
	return c.do(ctx, http.MethodPost, url, body, headers)
}

func (c *Client) do(ctx context.Context, method, url string, body []byte, headers map[string]string) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	if cookie := c.jar.Header(req.URL.Hostname()); cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	if c.cfg != nil && c.cfg.PreventKeepAlive {
		req.Header.Set("Connection", "close")
	}

	resp, err := c.inner.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

func buildTransport(cfg *ProxyConfig, timeout time.Duration) *http.Transport {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: timeout,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	if cfg != nil && cfg.Proxy != nil {
		transport.Proxy = http.ProxyURL(cfg.Proxy.URL())
	}

	if cfg != nil && cfg.PreventKeepAlive {
		transport.DisableKeepAlives = true
		transport.MaxIdleConns = 0
		transport.MaxIdleConnsPerHost = 0
		transport.IdleConnTimeout = 0
	}

	return transport
}
