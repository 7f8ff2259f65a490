package domain

import (
	"errors"
	"fmt"
	"net"
	"net/url"
)

const (
	ProtocolHTTP  = "http"
	ProtocolHTTPS = "https"
)

// Proxy is one address usable as an HTTP(S) egress point. Values are
// immutable once built; the address string is the dedup key.
type Proxy struct {
	IP       string `json:"ip"`
	Port     uint16 `json:"port"`
	Protocol string `json:"protocol"`
}

func NewProxy(ip string, port int, protocol string) (Proxy, error) {
	if !IsSupportedProtocol(protocol) {
		return Proxy{}, fmt.Errorf("unsupported proxy protocol %q", protocol)
	}
	if port < 1 || port > 65535 {
		return Proxy{}, fmt.Errorf("invalid proxy port %d", port)
	}

	proxy := Proxy{Port: uint16(port), Protocol: protocol}
	if err := proxy.setIP(ip); err != nil {
		return Proxy{}, err
	}
	return proxy, nil
}

func IsSupportedProtocol(protocol string) bool {
	return protocol == ProtocolHTTP || protocol == ProtocolHTTPS
}

func (proxy *Proxy) setIP(ip string) error {
	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return errors.New("invalid IP address")
	}
	ipv4 := parsedIP.To4()
	if ipv4 == nil {
		return errors.New("only IPv4 addresses are supported")
	}
	proxy.IP = ipv4.String()
	return nil
}

// Address returns the ip:port form used for deduplication.
func (proxy Proxy) Address() string {
	return fmt.Sprintf("%s:%d", proxy.IP, proxy.Port)
}

// URL returns the proxy URL a transport dials. The proxy itself is always
// spoken to over plain http regardless of the tunneled protocol.
func (proxy Proxy) URL() *url.URL {
	return &url.URL{
		Scheme: "http",
		Host:   proxy.Address(),
	}
}

// Dedup removes duplicate proxies by address, keeping the first occurrence.
// Running it over an already-deduplicated list returns an equal list.
func Dedup(proxies []Proxy) []Proxy {
	seen := make(map[string]struct{}, len(proxies))
	result := make([]Proxy, 0, len(proxies))

	for _, proxy := range proxies {
		addr := proxy.Address()
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		result = append(result, proxy)
	}

	return result
}
