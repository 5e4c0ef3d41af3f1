package relay

import (
	"fmt"
	"net/url"
	"strings"
)

func normalizeBaseURL(baseURL string) string {
	return strings.TrimRight(strings.TrimSpace(baseURL), "/")
}

// ValidateBaseURL checks that baseURL is a usable chat endpoint root.
// https is required except for loopback hosts (local relays, tests).
// When allowedHosts is non-empty the host must be listed.
func ValidateBaseURL(baseURL string, allowedHosts []string) error {
	baseURL = normalizeBaseURL(baseURL)
	if baseURL == "" {
		return fmt.Errorf("base URL is empty")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("invalid base URL %q: absolute URL with host is required", baseURL)
	}
	if u.User != nil {
		return fmt.Errorf("invalid base URL %q: userinfo is not allowed", baseURL)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("invalid base URL %q: query and fragment are not allowed", baseURL)
	}

	host := strings.ToLower(u.Hostname())
	switch strings.ToLower(u.Scheme) {
	case "https":
	case "http":
		if !isLoopback(host) {
			return fmt.Errorf("invalid base URL %q: https is required", baseURL)
		}
	default:
		return fmt.Errorf("invalid base URL %q: unsupported scheme %q", baseURL, u.Scheme)
	}

	if len(allowedHosts) == 0 {
		return nil
	}
	for _, h := range allowedHosts {
		if host == normalizeHost(h) {
			return nil
		}
	}
	return fmt.Errorf("invalid base URL %q: host %q is not allowed", baseURL, host)
}

func isLoopback(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

func normalizeHost(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.TrimPrefix(h, "http://")
	h = strings.TrimPrefix(h, "https://")
	h = strings.Trim(h, "/")
	if i := strings.Index(h, ":"); i >= 0 {
		h = h[:i]
	}
	return h
}
