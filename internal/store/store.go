package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("store: key not found")

// Well-known keys held by the local store. They mirror the browser storage
// keys of the web client so a session can be reasoned about the same way.
const (
	KeyUser       = "raama-user"
	KeyTheme      = "raama-theme"
	KeyPermission = "raama-notification-permission"
	KeyLastSeen   = "lastNotificationTime"
)

// Store is the persistent key-value storage of the client. It holds the
// serialized user, the theme preference and small client flags; it never
// holds notifications.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
