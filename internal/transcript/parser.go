package transcript

import (
	"html"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var (
	snippetTagRE = regexp.MustCompile(`(?s)<text([^>]*)>(.*?)</text>`)
	startAttrRE  = regexp.MustCompile(`start="([^"]*)"`)
	durAttrRE    = regexp.MustCompile(`dur="([^"]*)"`)
	htmlTagRE    = regexp.MustCompile(`</?([a-zA-Z0-9]+)[^>]*>`)
)

// Inline tags kept when the caller asks for formatting to be preserved.
var formattingTags = []string{
	"strong", "em", "b", "i", "mark", "small", "del", "ins", "sub", "sup",
}

// parseSnippets extracts the ordered snippet list from a caption document.
// Entities and numeric character references are decoded; start and duration
// default to 0 when absent or unparsable. Source order is preserved.
func parseSnippets(data []byte, preserveFormatting bool) []Snippet {
	matches := snippetTagRE.FindAllStringSubmatch(string(data), -1)
	snippets := make([]Snippet, 0, len(matches))

	for _, match := range matches {
		attrs, body := match[1], match[2]

		text := stripTags(html.UnescapeString(body), preserveFormatting)
		snippets = append(snippets, Snippet{
			Text:     text,
			Start:    parseFloatAttr(startAttrRE, attrs),
			Duration: parseFloatAttr(durAttrRE, attrs),
		})
	}

	return snippets
}

func parseFloatAttr(re *regexp.Regexp, attrs string) float64 {
	match := re.FindStringSubmatch(attrs)
	if match == nil {
		return 0
	}
	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0
	}
	return value
}

func stripTags(text string, preserveFormatting bool) string {
	if !preserveFormatting {
		return htmlTagRE.ReplaceAllString(text, "")
	}

	return htmlTagRE.ReplaceAllStringFunc(text, func(tag string) string {
		name := htmlTagRE.FindStringSubmatch(tag)
		if name != nil && slices.Contains(formattingTags, strings.ToLower(name[1])) {
			return tag
		}
		return ""
	})
}
