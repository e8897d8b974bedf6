package descriptor

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// linkPattern matches <scheme>://<body>; the body ends at whitespace or a quote.
var linkPattern = regexp.MustCompile("(?i)\\b(?:vmess|vless|trojan|ss|hysteria2|hy2|hysteria|tuic)://[^\\s\"'`]+")

// Extract returns the distinct links found in text, in first-seen order. Besides
// the text itself it scans base64 content: every base64-looking line, or the
// whole text when it is one blob wrapped across several lines.
func Extract(text string) []string {
	seen := make(map[string]struct{})
	var out []string

	add := func(s string) {
		for _, m := range linkPattern.FindAllString(s, -1) {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}

	add(text)

	if !independentLines(text) {
		if decoded, ok := decodeBlob(stripWhitespace(text)); ok {
			add(decoded)
			return out
		}
	}

	for _, line := range strings.Split(text, "\n") {
		if decoded, ok := decodeBlob(strings.TrimSpace(line)); ok {
			add(decoded)
		}
	}
	return out
}

// decodeBlob decodes s when it is a plausible base64 token whose plaintext
// mentions a known scheme.
func decodeBlob(s string) (string, bool) {
	if s == "" || strings.Contains(s, "://") || !LooksLikeBase64(s) {
		return "", false
	}
	b, err := DecodeBase64(s)
	if err != nil || !utf8.Valid(b) {
		return "", false
	}
	decoded := string(b)
	if !linkPattern.MatchString(decoded) {
		return "", false
	}
	return decoded, true
}

// independentLines reports whether text holds more than one base64 line and
// each of them decodes on its own to text that starts with a link. Lines of a
// wrapped blob split links mid-way, so they fail the check.
func independentLines(text string) bool {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		decoded, ok := decodeBlob(line)
		if !ok {
			return false
		}
		loc := linkPattern.FindStringIndex(strings.TrimLeft(decoded, " \t\r\n"))
		if loc == nil || loc[0] != 0 {
			return false
		}
		n++
	}
	return n > 1
}
