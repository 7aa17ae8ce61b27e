package toast

import (
	"strings"
	"testing"
	"time"

	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/model"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/notify"
)

func Test_Toast_ShowAndExpire(t *testing.T) {
	m := New(120)

	m, cmd := m.Update(ShowMsg{Toast: notify.Toast{
		ID:       "t1",
		Kind:     model.KindLike,
		Title:    "New Like",
		Message:  "Asha liked your shayari",
		Duration: time.Millisecond,
	}})
	if cmd == nil {
		t.Fatal("no expiry command")
	}
	if m.Len() != 1 {
		t.Fatalf("Len = %d, want 1", m.Len())
	}
	if !strings.Contains(m.View(), "Asha liked your shayari") {
		t.Error("toast message not rendered")
	}

	m, _ = m.Update(cmd())
	if m.Len() != 0 {
		t.Errorf("Len after expiry = %d, want 0", m.Len())
	}
	if m.View() != "" {
		t.Error("empty stack should render nothing")
	}
}

func Test_Toast_NewestFirstAndExpiryById(t *testing.T) {
	m := New(120)
	m, _ = m.Update(ShowMsg{Toast: notify.Toast{ID: "a", Message: "first", Duration: time.Hour}})
	m, _ = m.Update(ShowMsg{Toast: notify.Toast{ID: "b", Message: "second", Duration: time.Hour}})

	if got := m.Toasts(); got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("order = %v", got)
	}

	m, _ = m.Update(expireMsg{id: "a"})
	if got := m.Toasts(); len(got) != 1 || got[0].ID != "b" {
		t.Errorf("after expiring a: %v", got)
	}

	m, _ = m.Update(expireMsg{id: "missing"})
	if m.Len() != 1 {
		t.Error("unknown id removed a toast")
	}
}

func Test_Toast_VisibleBound(t *testing.T) {
	m := New(120)
	for i := 0; i < 5; i++ {
		m.Push(notify.Toast{ID: string(rune('a' + i)), Message: "msg-" + string(rune('a'+i)), Duration: time.Hour})
	}

	view := m.View()
	if strings.Contains(view, "msg-a") || strings.Contains(view, "msg-b") {
		t.Error("older toasts beyond the visible bound were rendered")
	}
	if !strings.Contains(view, "msg-e") {
		t.Error("newest toast missing")
	}
}

func Test_Toast_ErrorRendersMessage(t *testing.T) {
	m := New(120)
	m.Push(notify.NewErrorToast("Could not mark as read", 0))

	if !strings.Contains(m.View(), "Could not mark as read") {
		t.Error("error toast not rendered")
	}
}
