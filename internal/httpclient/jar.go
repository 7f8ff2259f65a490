package httpclient

import "strings"

type Cookie struct {
	Name   string
	Value  string
	Domain string
}

// CookieJar is a flat in-memory cookie list. The Cookie header is recomputed
// per request by matching the request host against stored cookie domains.
type CookieJar struct {
	cookies []Cookie
}

func (jar *CookieJar) Set(name, value, domain string) {
	for i, cookie := range jar.cookies {
		if cookie.Name == name && cookie.Domain == domain {
			jar.cookies[i].Value = value
			return
		}
	}
	jar.cookies = append(jar.cookies, Cookie{Name: name, Value: value, Domain: domain})
}

// Header builds the Cookie header value for the given request host. A cookie
// matches when its domain equals the host exactly, or when the host ends with
// the domain after stripping a leading dot. Plain string comparison on
// purpose: suffix matching against punycode/IDN hosts is ambiguous with
// regexes.
func (jar *CookieJar) Header(host string) string {
	var parts []string

	for _, cookie := range jar.cookies {
		if domainMatches(host, cookie.Domain) {
			parts = append(parts, cookie.Name+"="+cookie.Value)
		}
	}

	return strings.Join(parts, "; ")
}

func domainMatches(host, domain string) bool {
	if host == domain {
		return true
	}

	suffix := strings.TrimPrefix(domain, ".")
	if host == suffix {
		return true
	}
	return strings.HasSuffix(host, "."+suffix)
}
