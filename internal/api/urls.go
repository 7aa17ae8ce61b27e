package api

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// StreamURL returns the server-sent events endpoint for the given token.
func StreamURL(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") +
		"/api/notifications/stream?token=" + url.QueryEscape(token)
}

// SocketURL returns the websocket endpoint for userID, substituting the
// scheme (http to ws, https to wss).
func SocketURL(baseURL, userID string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("parsing backend url: %w", err)
	}

	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported backend scheme %q", u.Scheme)
	}

	prefix := strings.TrimRight(u.Path, "/")
	u.Path = prefix + "/ws/" + userID
	u.RawPath = prefix + "/ws/" + url.PathEscape(userID)
	u.RawQuery = ""
	return u.String(), nil
}

// IsLocalHost reports whether baseURL points at a local development host.
func IsLocalHost(baseURL string) bool {
	u, err := url.Parse(baseURL)
	if err != nil {
		return false
	}

	host := strings.ToLower(u.Hostname())
	switch host {
	case "localhost", "0.0.0.0":
		return true
	}
	if strings.HasSuffix(host, ".localhost") || strings.HasSuffix(host, ".local") {
		return true
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return true
	}
	return false
}
