// Package geolite resolves proxy countries from a local GeoLite2 database so
// country filters still apply to feeds that carry no geolocation data.
package geolite

import (
	"net"

	"github.com/charmbracelet/log"
	"github.com/oschwald/geoip2-golang"
)

type Resolver struct {
	db *geoip2.Reader
}

// Open loads a GeoLite2 country database. An empty path or a load failure
// yields a nil resolver, which disables annotation silently.
func Open(path string) *Resolver {
	if path == "" {
		return nil
	}

	db, err := geoip2.Open(path)
	if err != nil {
		log.Warn("geolite database unavailable, country annotation disabled", "path", path, "error", err)
		return nil
	}
	return &Resolver{db: db}
}

// Country returns the ISO country code for an IP, or "" when unknown.
func (r *Resolver) Country(ip string) string {
	if r == nil || r.db == nil {
		return ""
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ""
	}

	record, err := r.db.Country(parsed)
	if err != nil {
		return ""
	}
	return record.Country.IsoCode
}

func (r *Resolver) Close() {
	if r != nil && r.db != nil {
		_ = r.db.Close()
	}
}
