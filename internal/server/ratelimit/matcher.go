package ratelimit

import (
	"strings"
)

// MatchEndpoint returns the route class of a request, or nil when only the
// global default applies.
//
// A pattern segment "*" matches any single path segment, and a pattern ending
// in "/" matches every path below it, so "/sessions/*/saved/" matches
// "/sessions/{id}/saved/{record_id}". Exact patterns win over wildcard ones.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	// health checks are never limited
	if path == "/health" && method == "GET" {
		return &EndpointConfig{Path: path, Method: method}
	}

	for i := range configs {
		c := &configs[i]
		if c.Method == method && c.Path == path {
			return c
		}
	}
	for i := range configs {
		c := &configs[i]
		if c.Method == method && matchPath(c.Path, path) {
			return c
		}
	}
	return nil
}

func matchPath(pattern, path string) bool {
	prefix := strings.HasSuffix(pattern, "/")
	if !strings.Contains(pattern, "*") {
		return prefix && strings.HasPrefix(path, pattern)
	}

	want := strings.Split(strings.Trim(pattern, "/"), "/")
	got := strings.Split(strings.Trim(path, "/"), "/")
	if len(got) < len(want) || (!prefix && len(got) != len(want)) {
		return false
	}
	for i, seg := range want {
		if seg != "*" && seg != got[i] {
			return false
		}
	}
	return true
}
