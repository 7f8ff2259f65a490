package support

import (
	"net"
	"regexp"
	"strconv"
	"strings"

	"tubetext/internal/domain"
)

// ParseProxyLines turns a newline-delimited ip:port feed into proxy values
// tagged with the given protocol. Malformed lines are skipped.
func ParseProxyLines(text, protocol string) []domain.Proxy {
	text = clearProxyString(text)

	lines := strings.Split(text, "\n")
	proxies := make([]domain.Proxy, 0, len(lines))

	for _, line := range lines {
		split := strings.Split(strings.TrimSpace(line), ":")
		if len(split) != 2 {
			continue
		}

		ip := split[0]
		if len(ip) > 0 && ip[0] == '0' {
			ip = ip[1:] // Fix proxy if it leads with 0
		}
		if net.ParseIP(ip) == nil {
			continue
		}

		port, err := strconv.Atoi(split[1])
		if err != nil {
			continue
		}

		proxy, err := domain.NewProxy(ip, port, protocol)
		if err != nil {
			continue
		}
		proxies = append(proxies, proxy)
	}

	return proxies
}

func clearProxyString(proxies string) string {
	proxies = strings.ReplaceAll(proxies, "\r", "")

	// Makes leading 0 proxies valid
	proxies = strings.ReplaceAll(proxies, ".0", ".")
	// Consecutive zero octets collapse into adjacent dots, so restore until
	// stable
	for strings.Contains(proxies, "..") {
		proxies = strings.ReplaceAll(proxies, "..", ".0.")
	}
	proxies = strings.ReplaceAll(proxies, ".:", ".0:")

	return proxies
}

var ipRegex = regexp.MustCompile(
	`\b(?:[0-9]{1,3}\.){3}[0-9]{1,3}\b|` + // IPv4
		`\b(?:[A-Fa-f0-9]{1,4}:){7}[A-Fa-f0-9]{1,4}\b`) // IPv6

// FindIP identifies the first IP address (IPv4 or IPv6) in a given string.
func FindIP(input string) string {
	return ipRegex.FindString(input)
}
