package tenon

import (
	"regexp"
	"strconv"
	"strings"
)

// urlPattern is deliberately loose: optional scheme, optional credentials,
// then localhost, a dotted quad, or a dotted name ending in a 2+ letter label,
// an optional port and an optional path.
// Public-range filtering for dotted quads happens in publicIPv4 since RE2 has
// no lookahead.
var urlPattern = regexp.MustCompile(`(?i)^(?:(?:https?|ftp)://)?` +
	`(?:\S+(?::\S*)?@)?` +
	`(localhost|` +
	`\d{1,3}(?:\.\d{1,3}){3}|` +
	`(?:(?:[a-z\x{00a1}-\x{ffff}0-9]-*)*[a-z\x{00a1}-\x{ffff}0-9]+)` +
	`(?:\.(?:[a-z\x{00a1}-\x{ffff}0-9]-*)*[a-z\x{00a1}-\x{ffff}0-9]+)*` +
	`\.[a-z\x{00a1}-\x{ffff}]{2,})` +
	`(?::\d{2,5})?` +
	`(?:/\S*)?$`)

var dottedQuad = regexp.MustCompile(`^\d{1,3}(?:\.\d{1,3}){3}$`)

// LooksLikeURL reports whether s is shaped like a URL or bare host name.
func LooksLikeURL(s string) bool {
	m := urlPattern.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	host := m[1]
	if dottedQuad.MatchString(host) {
		return publicIPv4(host)
	}
	return true
}

// publicIPv4 rejects private, link-local and network/broadcast addresses,
// and octets written with leading zeros.
// Loopback is accepted, matching the localhost branch.
func publicIPv4(host string) bool {
	parts := strings.Split(host, ".")
	var o [4]int
	for i, p := range parts {
		if len(p) > 1 && p[0] == '0' {
			return false
		}
		n, err := strconv.Atoi(p)
		if err != nil || n > 255 {
			return false
		}
		o[i] = n
	}
	switch {
	case o[0] < 1 || o[0] > 223:
		return false
	case o[0] == 10:
		return false
	case o[0] == 169 && o[1] == 254:
		return false
	case o[0] == 192 && o[1] == 168:
		return false
	case o[0] == 172 && o[1] >= 16 && o[1] <= 31:
		return false
	case o[3] < 1 || o[3] > 254:
		return false
	}
	return true
}

// LooksLikeFullPage reports whether s contains an <html tag, in any case.
func LooksLikeFullPage(s string) bool {
	return strings.Contains(strings.ToLower(s), "<html")
}

// Classify picks the check kind for target: URL first, then full page,
// falling back to fragment.
func Classify(target string) (Kind, error) {
	if target == "" {
		return KindAuto, invalidInput(msgNoTarget)
	}
	switch {
	case LooksLikeURL(target):
		return KindURL, nil
	case LooksLikeFullPage(target):
		return KindSrc, nil
	default:
		return KindFragment, nil
	}
}
