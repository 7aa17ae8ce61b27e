// Package session holds the client's persistent session state: the bearer
// token in the system keyring and the user, theme and client flags in the
// local store.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/credential"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/model"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/store"
)

// DefaultTheme is used when no theme preference has been stored.
const DefaultTheme = "dark"

// Claims are the fields the client reads from the backend's JWT.
type Claims struct {
	UserID    string
	ExpiresAt time.Time
}

// ParseClaims decodes the token payload without verifying the signature;
// the client never holds the signing secret and only uses the claims to
// find the user id and skip tokens that have already expired.
func ParseClaims(token string) (Claims, error) {
	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &rc); err != nil {
		return Claims{}, fmt.Errorf("parsing token claims: %w", err)
	}

	c := Claims{UserID: rc.Subject}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	return c, nil
}

// Session is the set of storage accessors for the logged-in user. The
// token is read from the vault once and cached until SetToken or Clear.
type Session struct {
	vault credential.Vault
	store store.Store
	now   func() time.Time

	mu      sync.Mutex
	cached  bool
	token   string
	expires time.Time
}

// New creates a Session over the given credential vault and store.
func New(vault credential.Vault, s store.Store) *Session {
	return &Session{vault: vault, store: s, now: time.Now}
}

// Token returns the stored bearer token. A missing token, or a JWT whose
// expiry has passed, reports false.
func (s *Session) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.cached {
		token, err := s.vault.Get(credential.TokenKey)
		switch {
		case err == nil:
			s.cacheLocked(token)
		case errors.Is(err, credential.ErrNotFound):
			s.cacheLocked("")
		default:
			// Keyring failures are not cached; the next call retries.
			logrus.WithError(err).Warn("session: reading token failed")
			return "", false
		}
	}

	if s.token == "" {
		return "", false
	}
	if !s.expires.IsZero() && !s.now().Before(s.expires) {
		return "", false
	}
	return s.token, true
}

func (s *Session) cacheLocked(token string) {
	s.cached = true
	s.token = token
	s.expires = time.Time{}
	if token == "" {
		return
	}
	if claims, err := ParseClaims(token); err == nil {
		s.expires = claims.ExpiresAt
	}
}

func (s *Session) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = false
	s.token = ""
	s.expires = time.Time{}
}

// SetToken stores the bearer token.
func (s *Session) SetToken(token string) error {
	if token == "" {
		return errors.New("session: empty token")
	}
	defer s.invalidate()
	if err := s.vault.Set(credential.TokenKey, token); err != nil {
		return fmt.Errorf("session: saving token: %w", err)
	}
	return nil
}

// User returns the stored user, if any.
func (s *Session) User(ctx context.Context) (model.User, bool) {
	raw, err := s.store.Get(ctx, store.KeyUser)
	if err != nil {
		return model.User{}, false
	}

	var u model.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		logrus.WithError(err).Warn("session: stored user is unreadable")
		return model.User{}, false
	}
	return u, true
}

// SetUser stores the serialized user.
func (s *Session) SetUser(ctx context.Context, u model.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("session: marshaling user: %w", err)
	}
	if err := s.store.Set(ctx, store.KeyUser, string(data)); err != nil {
		return fmt.Errorf("session: saving user: %w", err)
	}
	return nil
}

// UserID returns the id of the stored user, falling back to the subject
// of the token. It returns "" when neither is known.
func (s *Session) UserID(ctx context.Context) string {
	if u, ok := s.User(ctx); ok && u.ID != "" {
		return u.ID
	}
	token, ok := s.Token()
	if !ok {
		return ""
	}
	claims, err := ParseClaims(token)
	if err != nil {
		return ""
	}
	return claims.UserID
}

// Theme returns the stored theme, or DefaultTheme.
func (s *Session) Theme(ctx context.Context) string {
	return s.ThemeOr(ctx, DefaultTheme)
}

// ThemeOr returns the stored theme, or fallback when none is stored.
func (s *Session) ThemeOr(ctx context.Context, fallback string) string {
	theme, err := s.store.Get(ctx, store.KeyTheme)
	if err != nil || theme == "" {
		return fallback
	}
	return theme
}

// SetTheme stores the theme preference.
func (s *Session) SetTheme(ctx context.Context, theme string) error {
	if err := s.store.Set(ctx, store.KeyTheme, theme); err != nil {
		return fmt.Errorf("session: saving theme: %w", err)
	}
	return nil
}

// Permission returns the stored desktop notification decision.
func (s *Session) Permission(ctx context.Context) model.Permission {
	v, err := s.store.Get(ctx, store.KeyPermission)
	if err != nil {
		return model.PermissionDefault
	}
	return model.ParsePermission(v)
}

// SetPermission stores the desktop notification decision.
func (s *Session) SetPermission(ctx context.Context, p model.Permission) error {
	if err := s.store.Set(ctx, store.KeyPermission, string(p)); err != nil {
		return fmt.Errorf("session: saving permission: %w", err)
	}
	return nil
}

// LastSeen returns the creation time of the newest notification already
// surfaced by the fallback poller, or the zero time.
func (s *Session) LastSeen(ctx context.Context) time.Time {
	v, err := s.store.Get(ctx, store.KeyLastSeen)
	if err != nil {
		return time.Time{}
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// SetLastSeen records t as the newest surfaced notification time.
func (s *Session) SetLastSeen(ctx context.Context, t time.Time) error {
	v := strconv.FormatInt(t.UnixMilli(), 10)
	if err := s.store.Set(ctx, store.KeyLastSeen, v); err != nil {
		return fmt.Errorf("session: saving last seen: %w", err)
	}
	return nil
}

// Clear removes the token and the stored user. Theme and permission
// survive a logout, as they do in the browser.
func (s *Session) Clear(ctx context.Context) error {
	defer s.invalidate()
	var errs []error
	if err := s.vault.Delete(credential.TokenKey); err != nil {
		errs = append(errs, err)
	}
	if err := s.store.Delete(ctx, store.KeyUser); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("session: clearing: %w", errors.Join(errs...))
	}
	return nil
}
