package pool

import (
	"errors"
	"fmt"

	"tubetext/internal/domain"
)

var (
	// ErrNoProxyAvailable is returned by Acquire when the pool is empty and
	// no refresh is pending.
	ErrNoProxyAvailable = errors.New("pool: no proxy available, refresh the pool first")

	// ErrEmptyRotation is returned when rotating a pool with no members.
	ErrEmptyRotation = errors.New("pool: cannot rotate an empty pool")
)

type UnsupportedProtocolError struct {
	Protocol string
}

func (e *UnsupportedProtocolError) Error() string {
	return fmt.Sprintf("pool: unsupported proxy protocol %q, must be %q or %q",
		e.Protocol, domain.ProtocolHTTP, domain.ProtocolHTTPS)
}

// NoProxiesFoundError reports a refresh that exhausted every provider without
// obtaining a single proxy.
type NoProxiesFoundError struct {
	Protocol string
}

func (e *NoProxiesFoundError) Error() string {
	msg := fmt.Sprintf("pool: no %s proxies found after trying all providers", e.Protocol)
	if e.Protocol == domain.ProtocolHTTPS {
		msg += "; working https proxies are rare in free feeds, consider the http protocol or a static list"
	}
	return msg
}
