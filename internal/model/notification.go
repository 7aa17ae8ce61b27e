package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Kind identifies the category of a notification. The set is closed;
// anything the client does not recognize decodes to KindUnknown.
type Kind int

const (
	KindUnknown Kind = iota
	KindLike
	KindComment
	KindFollow
	KindFeature
	KindSpotlight
	KindViewMilestone
)

// HeartbeatType is the reserved frame type the push channel sends to keep
// the connection alive. It never represents a notification.
const HeartbeatType = "heartbeat"

var kindNames = map[string]Kind{
	"like":           KindLike,
	"comment":        KindComment,
	"follow":         KindFollow,
	"feature":        KindFeature,
	"spotlight":      KindSpotlight,
	"view_milestone": KindViewMilestone,
}

// ParseKind maps a wire type string to a Kind.
func ParseKind(s string) Kind {
	if k, ok := kindNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return k
	}
	return KindUnknown
}

// String returns the wire name of the kind, or "other" for KindUnknown.
func (k Kind) String() string {
	for name, kind := range kindNames {
		if kind == k {
			return name
		}
	}
	return "other"
}

// Title returns the short heading shown above a toast for this kind.
func (k Kind) Title() string {
	switch k {
	case KindLike:
		return "New Like"
	case KindComment:
		return "New Comment"
	case KindFollow:
		return "New Follower"
	case KindFeature:
		return "Shayari Featured"
	case KindSpotlight:
		return "Writer Spotlight"
	case KindViewMilestone:
		return "View Milestone"
	default:
		return "Notification"
	}
}

// Icon returns a single glyph used in place of the web client's icons.
func (k Kind) Icon() string {
	switch k {
	case KindLike:
		return "♥"
	case KindComment:
		return "✎"
	case KindFollow:
		return "+"
	case KindFeature:
		return "★"
	case KindSpotlight:
		return "✦"
	case KindViewMilestone:
		return "◉"
	default:
		return "•"
	}
}

// Timestamp accepts both RFC 3339 and the zone-less ISO form the backend
// emits for naive datetimes. Zone-less values are read as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognized format %q", s)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// Notification is a single activity record addressed to the logged-in
// user, as served by the notification list endpoint and the push channel.
type Notification struct {
	// ID is the server-assigned key used for read and delete calls.
	ID string `json:"id"`

	// Type is the raw wire type. Use Kind for dispatch.
	Type string `json:"type"`

	SenderName   string `json:"senderName,omitempty"`
	ShayariTitle string `json:"shayariTitle,omitempty"`

	// Message is the server-prepared fallback text.
	Message string `json:"message,omitempty"`

	// Title carries the spotlight name for spotlight notifications.
	Title string `json:"title,omitempty"`

	// ViewCount is set for view milestone notifications.
	ViewCount *int `json:"viewCount,omitempty"`

	IsRead    bool      `json:"isRead"`
	CreatedAt Timestamp `json:"createdAt"`
}

// UnmarshalJSON accepts the legacy "read" flag alongside "isRead".
func (n *Notification) UnmarshalJSON(b []byte) error {
	type plain Notification
	aux := struct {
		*plain
		Read *bool `json:"read"`
	}{plain: (*plain)(n)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if aux.Read != nil && *aux.Read {
		n.IsRead = true
	}
	return nil
}

// Kind returns the closed kind for the notification's wire type.
func (n Notification) Kind() Kind {
	return ParseKind(n.Type)
}

// Compose returns the one-line message shown in toasts and desktop
// notifications.
func (n Notification) Compose() string {
	switch n.Kind() {
	case KindLike:
		return fmt.Sprintf("%s liked your shayari", n.SenderName)
	case KindComment:
		return fmt.Sprintf("%s commented on your shayari", n.SenderName)
	case KindFollow:
		return fmt.Sprintf("%s started following you", n.SenderName)
	case KindFeature:
		return "Your shayari has been featured!"
	case KindSpotlight:
		return "You've been featured in Writer Spotlight!"
	case KindViewMilestone:
		return fmt.Sprintf("Your shayari reached %d views!", n.views())
	default:
		if n.Message != "" {
			return n.Message
		}
		return "New notification"
	}
}

// Detail returns the longer line used by the notification center, which
// quotes the referenced shayari or spotlight when the payload carries one.
func (n Notification) Detail() string {
	switch n.Kind() {
	case KindLike, KindComment, KindFeature, KindViewMilestone:
		if n.ShayariTitle == "" {
			return n.Compose()
		}
	case KindSpotlight:
		if n.Title == "" {
			return n.Compose()
		}
	}

	switch n.Kind() {
	case KindLike:
		return fmt.Sprintf("%s liked your shayari %q", n.SenderName, n.ShayariTitle)
	case KindComment:
		return fmt.Sprintf("%s commented on your shayari %q", n.SenderName, n.ShayariTitle)
	case KindFeature:
		return fmt.Sprintf("Your shayari %q has been featured!", n.ShayariTitle)
	case KindSpotlight:
		return fmt.Sprintf("You've been featured in Writer Spotlight: %q", n.Title)
	case KindViewMilestone:
		return fmt.Sprintf("Your shayari %q reached %d views!", n.ShayariTitle, n.views())
	default:
		return n.Compose()
	}
}

func (n Notification) views() int {
	if n.ViewCount == nil {
		return 0
	}
	return *n.ViewCount
}

// NotificationList is the response body of GET /api/notifications.
type NotificationList struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unreadCount"`
}

// Clone returns a deep copy of the list.
func (l NotificationList) Clone() NotificationList {
	out := NotificationList{UnreadCount: l.UnreadCount}
	if l.Notifications != nil {
		out.Notifications = make([]Notification, len(l.Notifications))
		copy(out.Notifications, l.Notifications)
	}
	return out
}
