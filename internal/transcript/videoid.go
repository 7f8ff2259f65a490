package transcript

import (
	"net/url"
	"regexp"
	"strings"
)

var videoIDRE = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

var knownHosts = map[string]struct{}{
	"youtube.com":              {},
	"www.youtube.com":          {},
	"m.youtube.com":            {},
	"music.youtube.com":        {},
	"youtube-nocookie.com":     {},
	"www.youtube-nocookie.com": {},
}

// ExtractVideoID accepts either a bare 11-character video id or a URL on a
// known YouTube host and returns the id, reporting whether one was found.
func ExtractVideoID(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if videoIDRE.MatchString(raw) {
		return raw, true
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	host := strings.ToLower(parsed.Hostname())
	segments := splitPath(parsed.Path)

	if host == "youtu.be" {
		if len(segments) > 0 && videoIDRE.MatchString(segments[0]) {
			return segments[0], true
		}
		return "", false
	}

	if _, ok := knownHosts[host]; !ok {
		return "", false
	}

	if id := parsed.Query().Get("v"); videoIDRE.MatchString(id) {
		return id, true
	}

	for i, segment := range segments {
		switch segment {
		case "shorts", "embed", "live":
			if i+1 < len(segments) && videoIDRE.MatchString(segments[i+1]) {
				return segments[i+1], true
			}
		}
	}

	return "", false
}

func splitPath(path string) []string {
	var segments []string
	for _, segment := range strings.Split(path, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}
