package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// ProxyListFile is the wrapped on-disk form of an exported proxy list.
// Readers also accept a bare JSON array of proxies for hand-written lists.
type ProxyListFile struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Protocol    string    `json:"protocol"`
	Proxies     []Proxy   `json:"proxies"`
}

// CacheRecord is the persisted snapshot of a pool's last successful refresh.
// It is only trusted when its ConfigString matches the live pool fingerprint
// and its expiry has not passed.
type CacheRecord struct {
	ExpiryIn     time.Time `json:"expiryIn"`
	ConfigString string    `json:"configString"`
	Proxies      []Proxy   `json:"proxies"`
}

func (record CacheRecord) Expired(now time.Time) bool {
	return !now.Before(record.ExpiryIn)
}

// ParseProxyList decodes either list-file shape: the wrapped object or a
// bare array of proxy records.
func ParseProxyList(data []byte) ([]Proxy, error) {
	var bare []Proxy
	if err := json.Unmarshal(data, &bare); err == nil {
		return bare, nil
	}

	var wrapped ProxyListFile
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("proxy list is neither a proxy array nor a list file: %w", err)
	}
	return wrapped.Proxies, nil
}

// EncodeProxyList always emits the wrapped form with a fresh timestamp.
func EncodeProxyList(proxies []Proxy, protocol string) ([]byte, error) {
	file := ProxyListFile{
		GeneratedAt: time.Now().UTC(),
		Protocol:    protocol,
		Proxies:     proxies,
	}
	return json.MarshalIndent(file, "", "  ")
}
