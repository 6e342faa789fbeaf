// Package shared provides host-name helpers used across the domverify
// packages.
package shared

import (
	"sort"
	"strings"
)

const wildcardPrefix = "*."

// NormalizeDomain lowercases a host name and strips surrounding whitespace
// and a trailing dot. A leading "*." wildcard is preserved.
func NormalizeDomain(value string) string {
	lower := strings.ToLower(strings.TrimSpace(value))
	return strings.TrimSuffix(lower, ".")
}

// NormalizeDomains normalizes, deduplicates and sorts host names, dropping
// empty entries.
func NormalizeDomains(values []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(values))
	for _, value := range values {
		domain := NormalizeDomain(value)
		if domain == "" {
			continue
		}
		if _, ok := seen[domain]; ok {
			continue
		}
		seen[domain] = struct{}{}
		out = append(out, domain)
	}
	sort.Strings(out)
	return out
}

// IsWildcard reports whether declared is a "*.suffix" pattern.
func IsWildcard(declared string) bool {
	return strings.HasPrefix(declared, wildcardPrefix) && len(declared) > len(wildcardPrefix)
}

// MatchesDomain reports whether the declared host covers host. A wildcard
// "*.example.com" covers every sub-domain of example.com but not the apex.
func MatchesDomain(declared string, host string) bool {
	if declared == host {
		return true
	}
	if !IsWildcard(declared) {
		return false
	}
	suffix := declared[len(wildcardPrefix)-1:]
	return strings.HasSuffix(host, suffix) && len(host) > len(suffix)
}
