package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// staticToken is a TokenSource returning a fixed token.
type staticToken string

func (s staticToken) Token() (string, bool) { return string(s), s != "" }

// newTestClient starts srv and returns a client pointed at it.
func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, staticToken("tok-123"), opts...)
}

func Test_ListNotifications_DecodesAndAuthenticates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/notifications" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"notifications": [
				{"id": "n1", "type": "like", "senderName": "Asha", "isRead": false, "createdAt": "2025-01-02T03:04:05Z"},
				{"id": "n2", "type": "follow", "senderName": "Ravi", "isRead": true, "createdAt": "2025-01-01T03:04:05Z"}
			],
			"unreadCount": 1
		}`))
	})

	list, err := c.ListNotifications(context.Background())
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if len(list.Notifications) != 2 || list.UnreadCount != 1 {
		t.Fatalf("got %d items, unread %d", len(list.Notifications), list.UnreadCount)
	}
	if list.Notifications[0].Compose() != "Asha liked your shayari" {
		t.Errorf("first item = %q", list.Notifications[0].Compose())
	}
}

func Test_ListNotifications_NullListBecomesEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"notifications": null, "unreadCount": 0}`))
	})

	list, err := c.ListNotifications(context.Background())
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if list.Notifications == nil {
		t.Error("Notifications is nil, want empty slice")
	}
}

func Test_NoToken_OmitsAuthorization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want empty", got)
		}
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticToken(""))
	if h := c.Health(context.Background()); !h.Healthy() {
		t.Errorf("Health = %+v", h)
	}
}

func Test_Unauthorized_Cases(t *testing.T) {
	tests := []struct {
		name        string
		detail      string
		wantRole    bool
		wantMessage string
	}{
		{
			name:        "expired token",
			detail:      "Token expired",
			wantMessage: "Your session has expired. Please log in again.",
		},
		{
			name:        "role changed",
			detail:      "Your account role has been updated. Please log out and log back in to access new features.",
			wantRole:    true,
			wantMessage: "Your account has been updated! Please log in again to access new features.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			var seen *AuthError
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"detail": tt.detail})
			}, WithUnauthorizedHandler(func(e *AuthError) {
				atomic.AddInt32(&calls, 1)
				seen = e
			}))

			err := c.MarkAllRead(context.Background())
			if !IsAuthError(err) {
				t.Fatalf("err = %v, want AuthError", err)
			}
			if n := atomic.LoadInt32(&calls); n != 1 {
				t.Fatalf("unauthorized handler called %d times, want 1", n)
			}
			if seen.RoleChanged != tt.wantRole {
				t.Errorf("RoleChanged = %v, want %v", seen.RoleChanged, tt.wantRole)
			}
			if seen.Message() != tt.wantMessage {
				t.Errorf("Message() = %q", seen.Message())
			}
		})
	}
}

func Test_StatusError_CarriesDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Notification not found"}`))
	})

	err := c.MarkRead(context.Background(), "missing")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want StatusError", err)
	}
	if se.Code != http.StatusNotFound || se.Detail != "Notification not found" {
		t.Errorf("StatusError = %+v", se)
	}
	if IsAuthError(err) {
		t.Error("404 must not be an auth error")
	}
}

func Test_Mutations_UseDocumentedRoutes(t *testing.T) {
	tests := []struct {
		name       string
		call       func(c *Client) error
		wantMethod string
		wantPath   string
	}{
		{
			name:       "mark read",
			call:       func(c *Client) error { return c.MarkRead(context.Background(), "n1") },
			wantMethod: http.MethodPut,
			wantPath:   "/api/notifications/n1/read",
		},
		{
			name:       "mark all read",
			call:       func(c *Client) error { return c.MarkAllRead(context.Background()) },
			wantMethod: http.MethodPut,
			wantPath:   "/api/notifications/mark-all-read",
		},
		{
			name:       "delete",
			call:       func(c *Client) error { return c.DeleteNotification(context.Background(), "n2") },
			wantMethod: http.MethodDelete,
			wantPath:   "/api/notifications/n2",
		},
		{
			name: "send test",
			call: func(c *Client) error {
				_, err := c.SendTestNotification(context.Background())
				return err
			},
			wantMethod: http.MethodPost,
			wantPath:   "/api/notifications/test",
		},
		{
			name: "send",
			call: func(c *Client) error {
				_, err := c.SendNotification(context.Background(), Outgoing{RecipientID: "u2", Type: "like", Message: "hi"})
				return err
			},
			wantMethod: http.MethodPost,
			wantPath:   "/api/notifications",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != tt.wantMethod || r.URL.Path != tt.wantPath {
					t.Errorf("got %s %s, want %s %s", r.Method, r.URL.Path, tt.wantMethod, tt.wantPath)
				}
				_, _ = w.Write([]byte(`{"message":"ok"}`))
			})
			if err := tt.call(c); err != nil {
				t.Fatalf("call: %v", err)
			}
		})
	}
}

func Test_EmptyIDs_Rejected(t *testing.T) {
	c := NewClient("http://unused.invalid", staticToken("t"))
	if err := c.MarkRead(context.Background(), ""); err == nil {
		t.Error("MarkRead(\"\") should fail")
	}
	if err := c.DeleteNotification(context.Background(), ""); err == nil {
		t.Error("DeleteNotification(\"\") should fail")
	}
	if _, err := c.SendNotification(context.Background(), Outgoing{}); err == nil {
		t.Error("SendNotification without recipient should fail")
	}
}

func Test_RateLimited_Retries(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"notifications":[],"unreadCount":0}`))
	})

	if _, err := c.ListNotifications(context.Background()); err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("server saw %d calls, want 2", got)
	}
}

func Test_Health_TransportFailureIsUnhealthy(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	h := NewClient(url, staticToken("")).Health(context.Background())
	if h.Healthy() {
		t.Fatal("closed server reported healthy")
	}
	if h.Error == "" {
		t.Error("unhealthy result should carry the error")
	}
}

func Test_Me(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/me" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"id":"u1","username":"asha","firstName":"Asha","lastName":"K","role":"writer"}`))
	})

	u, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if u.ID != "u1" || u.DisplayName() != "asha" {
		t.Errorf("user = %+v", u)
	}
}

func Test_ForbiddenRoleChange_EndsSession(t *testing.T) {
	var called bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail":"Your account role has been updated. Please log out and log back in to access new features."}`))
	}, WithUnauthorizedHandler(func(*AuthError) { called = true }))

	err := c.MarkAllRead(context.Background())
	if !IsAuthError(err) || !called {
		t.Fatalf("err = %v, handler called = %v", err, called)
	}
}

func Test_ForbiddenOther_IsStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail":"Not enough permissions"}`))
	}, WithUnauthorizedHandler(func(*AuthError) { t.Error("handler must not run") }))

	err := c.MarkAllRead(context.Background())
	if IsAuthError(err) {
		t.Fatalf("err = %v, want plain status error", err)
	}
}
