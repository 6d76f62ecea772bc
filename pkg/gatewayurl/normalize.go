// Package gatewayurl canonicalizes gateway base URLs.
//
// A normalized gateway has an explicit scheme, no trailing slash and no
// trailing "/ipfs" path segment, so that "{gateway}/ipfs/{cid}" is always
// the content URL. The normalized string is the gateway's identity.
package gatewayurl

import (
	"regexp"
	"strings"
)

var schemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// Normalize returns the canonical form of raw, or "" when nothing usable remains.
// It is idempotent.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	scheme := schemePattern.FindString(s)
	if scheme == "" {
		scheme = "https://"
	}
	rest := strings.TrimPrefix(s, scheme)

	// Only the part after the scheme is trimmed, so a host literally named
	// "ipfs" survives.
	for {
		trimmed := strings.TrimRight(rest, "/")
		if i := strings.LastIndex(trimmed, "/"); i >= 0 && trimmed[i:] == "/ipfs" {
			trimmed = trimmed[:i]
		}
		if trimmed == rest {
			break
		}
		rest = trimmed
	}

	if rest == "" {
		return ""
	}
	return scheme + rest
}

// NormalizeAll normalizes every entry, dropping empties and duplicates while
// keeping first-seen order.
func NormalizeAll(urls []string) []string {
	out := make([]string, 0, len(urls))
	seen := make(map[string]struct{}, len(urls))
	for _, raw := range urls {
		n := Normalize(raw)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// ContentURL returns the path-style URL of cid on gateway.
func ContentURL(gateway, cid string) string {
	return gateway + "/ipfs/" + strings.TrimLeft(cid, "/")
}

// Contains reports whether list holds the normalized gateway g.
func Contains(list []string, g string) bool {
	for _, item := range list {
		if item == g {
			return true
		}
	}
	return false
}
