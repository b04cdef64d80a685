package feed

import (
	"net/http"
	"strings"
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

func resolveHTTPClient(client httpDoer) httpDoer {
	if client != nil {
		return client
	}
	// Per-attempt deadlines come from the request context.
	return &http.Client{}
}

func normalizeBaseURL(raw string) string {
	return strings.TrimSuffix(strings.TrimSpace(raw), "/")
}
