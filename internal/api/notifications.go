package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/model"
)

// Health is the body of GET /api/notifications/health.
type Health struct {
	Status    string `json:"status"`
	Database  string `json:"database,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Healthy reports whether the backend declared itself healthy.
func (h Health) Healthy() bool {
	return h.Status == "healthy"
}

// TestResult is the body of POST /api/notifications/test.
type TestResult struct {
	Message      string             `json:"message"`
	Notification model.Notification `json:"notification"`
}

// Outgoing is the payload of POST /api/notifications.
type Outgoing struct {
	RecipientID  string `json:"recipientId"`
	Type         string `json:"type"`
	Message      string `json:"message"`
	SenderName   string `json:"senderName,omitempty"`
	ShayariID    string `json:"shayariId,omitempty"`
	ShayariTitle string `json:"shayariTitle,omitempty"`
	Title        string `json:"title,omitempty"`
	ViewCount    *int   `json:"viewCount,omitempty"`
}

// messageResponse is the generic {"message": ...} acknowledgement.
type messageResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

func notificationPath(id string) string {
	return "/api/notifications/" + url.PathEscape(id)
}

// ListNotifications fetches the authoritative notification list and the
// unread count.
func (c *Client) ListNotifications(ctx context.Context) (model.NotificationList, error) {
	var list model.NotificationList
	if err := c.Get(ctx, "/api/notifications", &list); err != nil {
		return model.NotificationList{}, fmt.Errorf("notifications list: %w", err)
	}
	if list.Notifications == nil {
		list.Notifications = []model.Notification{}
	}
	return list, nil
}

// MarkRead marks a single notification as read.
func (c *Client) MarkRead(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("notifications mark read: empty id")
	}
	if err := c.Put(ctx, notificationPath(id)+"/read", struct{}{}, nil); err != nil {
		return fmt.Errorf("notifications mark read: %w", err)
	}
	return nil
}

// MarkAllRead marks every notification of the user as read.
func (c *Client) MarkAllRead(ctx context.Context) error {
	if err := c.Put(ctx, "/api/notifications/mark-all-read", struct{}{}, nil); err != nil {
		return fmt.Errorf("notifications mark all read: %w", err)
	}
	return nil
}

// DeleteNotification permanently deletes a notification.
func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("notifications delete: empty id")
	}
	if err := c.Delete(ctx, notificationPath(id), nil); err != nil {
		return fmt.Errorf("notifications delete: %w", err)
	}
	return nil
}

// SendTestNotification asks the backend to create a test notification for
// the current user.
func (c *Client) SendTestNotification(ctx context.Context) (TestResult, error) {
	var res TestResult
	if err := c.Post(ctx, "/api/notifications/test", struct{}{}, &res); err != nil {
		return TestResult{}, fmt.Errorf("notifications test: %w", err)
	}
	return res, nil
}

// SendNotification creates a notification for another user and returns
// its id.
func (c *Client) SendNotification(ctx context.Context, n Outgoing) (string, error) {
	if n.RecipientID == "" {
		return "", fmt.Errorf("notifications send: empty recipient")
	}
	var res messageResponse
	if err := c.Post(ctx, "/api/notifications", n, &res); err != nil {
		return "", fmt.Errorf("notifications send: %w", err)
	}
	return res.ID, nil
}

// Health checks the notification subsystem. It needs no session. A
// transport failure is reported as an unhealthy status rather than an error.
func (c *Client) Health(ctx context.Context) Health {
	var h Health
	if err := c.Get(ctx, "/api/notifications/health", &h); err != nil {
		return Health{Status: "unhealthy", Error: err.Error()}
	}
	return h
}

// Me returns the profile of the logged-in user.
func (c *Client) Me(ctx context.Context) (model.User, error) {
	var u model.User
	if err := c.Get(ctx, "/api/auth/me", &u); err != nil {
		return model.User{}, fmt.Errorf("auth me: %w", err)
	}
	return u, nil
}
