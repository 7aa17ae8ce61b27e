package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// AuthError indicates that the backend rejected the session: the token is
// missing, invalid or expired, or the account's role changed after the
// token was issued.
type AuthError struct {
	Detail      string
	RoleChanged bool
}

func (e *AuthError) Error() string {
	if e.Detail == "" {
		return "auth error: unauthorized"
	}
	return fmt.Sprintf("auth error: %s", e.Detail)
}

// Message is the text shown to the user when the session is ended.
func (e *AuthError) Message() string {
	if e.RoleChanged {
		return "Your account has been updated! Please log in again to access new features."
	}
	return "Your session has expired. Please log in again."
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// StatusError is returned for non-2xx responses other than 401.
type StatusError struct {
	Code   int
	Method string
	Path   string
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("unexpected status %d on %s %s", e.Code, e.Method, e.Path)
	}
	return fmt.Sprintf("unexpected status %d on %s %s: %s", e.Code, e.Method, e.Path, e.Detail)
}

// errorBody is the FastAPI error envelope.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// decodeDetail extracts a readable detail from an error response body.
func decodeDetail(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && len(eb.Detail) > 0 {
		var s string
		if json.Unmarshal(eb.Detail, &s) == nil {
			return s
		}
		return string(eb.Detail)
	}
	return strings.TrimSpace(string(body))
}

// isRoleChange reports whether a 401 detail signals a role change.
func isRoleChange(detail string) bool {
	return strings.Contains(detail, "role has been updated") ||
		strings.Contains(detail, "log out and log back in")
}
