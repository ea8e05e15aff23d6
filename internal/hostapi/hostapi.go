// Package hostapi is the complete capability surface visible to untrusted
// scripts: network fetch, JSON decoding, and the fallible-result helpers.
// Nothing here touches the filesystem, the process environment, or code
// loading — the functions in this package ARE the sandbox boundary, and both
// script engine variants register exactly this set.
package hostapi

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Surface exposes the host functions bound into each sandbox. One Surface
// may serve many invocations; it holds no per-invocation state.
type Surface struct {
	client *http.Client
	logger *slog.Logger
}

// New creates a Surface. A nil client gets a default with a generous timeout:
// script fetches are expected to block, the isolation controller keeps them
// off the serving path.
func New(client *http.Client, logger *slog.Logger) *Surface {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Surface{client: client, logger: logger}
}

// Fetch performs a blocking GET and returns the body text on HTTP success,
// or a sentinel error value on any failure. It never raises into the script.
func (s *Surface) Fetch(url string) string {
	resp, err := s.client.Get(url)
	if err != nil {
		return Errf("Request error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Errf("HTTP error: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Errf("Read error: %v", err)
	}
	return string(body)
}

// FetchValidatedJSON fetches like Fetch but additionally rejects empty
// bodies, bodies that do not look like JSON, and bodies that fail strict
// JSON parsing. On success it returns the original body text unchanged.
func (s *Surface) FetchValidatedJSON(url string) string {
	text := s.Fetch(url)
	if IsErrText(text) {
		return text
	}

	trimmed := strings.TrimSpace(text)
	s.logger.Debug("validated fetch response", slog.String("url", url), slog.String("preview", preview(trimmed)))

	if trimmed == "" {
		return Errf("Empty response from %s", url)
	}
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return Errf("Non-JSON response from %s: %s", url, preview(trimmed))
	}
	if _, err := DecodeJSON(trimmed); err != nil {
		return Errf("Invalid JSON from %s: %v", url, err)
	}
	return text
}

// FetchJSON fetches a URL and decodes the body into the sandbox's dynamic
// value representation in one step. Failures come back as sentinel error
// strings, which scripts can branch on with is_err.
func (s *Surface) FetchJSON(url string) any {
	text := s.Fetch(url)
	if IsErrText(text) {
		return text
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Errf("Empty response from %s", url)
	}
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return Errf("Non-JSON response from %s: %s", url, preview(trimmed))
	}

	v, err := DecodeJSON(trimmed)
	if err != nil {
		return Errf("Invalid JSON: %v", err)
	}
	return v
}

// ParseJSON decodes a JSON document from a plain string or from a
// fallible-operation value, unwrapping the latter first.
func (s *Surface) ParseJSON(v any) any {
	text := UnwrapText(v)
	if IsErrText(text) {
		return text
	}

	parsed, err := DecodeJSON(text)
	if err != nil {
		return Errf("%v", err)
	}
	return parsed
}

func preview(s string) string {
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
