package command

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func Test_Parse_Cases(t *testing.T) {
	tests := []struct {
		in     string
		want   CommandMsg
		wantOK bool
	}{
		{"refresh", CommandMsg{Name: Refresh}, true},
		{"sync", CommandMsg{Name: Refresh}, true},
		{"  Read   All ", CommandMsg{Name: ReadAll}, true},
		{"mark all read", CommandMsg{Name: ReadAll}, true},
		{"test", CommandMsg{Name: Test}, true},
		{"status", CommandMsg{Name: Health}, true},
		{"theme light", CommandMsg{Name: Theme, Arg: "light"}, true},
		{"theme", CommandMsg{Name: Theme}, true},
		{"themes", CommandMsg{Name: "themes"}, false},
		{"logout", CommandMsg{Name: Logout}, true},
		{"q", CommandMsg{Name: Quit}, true},
		{"dance", CommandMsg{Name: "dance"}, false},
		{"permission reset", CommandMsg{Name: PermissionReset}, true},
		{"Reset  Permission", CommandMsg{Name: PermissionReset}, true},
		{"send u42 Wah, kya baat hai!", CommandMsg{Name: Send, Arg: "u42", Text: "Wah, kya baat hai!"}, true},
		{"SEND AbC  hello", CommandMsg{Name: Send, Arg: "AbC", Text: "hello"}, true},
		{"send u42", CommandMsg{Name: Send}, false},
		{"send", CommandMsg{Name: Send}, false},
		{"sender", CommandMsg{Name: "sender"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Parse(tt.in)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Parse(%q) = %+v, %v; want %+v, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func Test_Model_EnterEmitsCommand(t *testing.T) {
	m := New(80, 24)
	for _, r := range "health" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter produced no command")
	}
	if got, ok := cmd().(CommandMsg); !ok || got.Name != Health {
		t.Errorf("msg = %#v", cmd())
	}
	if m.input.Value() != "" {
		t.Error("input not cleared")
	}
}

func Test_Model_UnknownShowsError(t *testing.T) {
	m := New(80, 24)
	for _, r := range "xyz" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("unknown command should not emit a message")
	}
	if m.err == "" {
		t.Error("no error recorded")
	}
}

func Test_Model_SendWithoutMessageShowsUsage(t *testing.T) {
	m := New(80, 24)
	for _, r := range "send u42" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("incomplete send should not emit a message")
	}
	if m.err != SendUsage {
		t.Errorf("err = %q, want %q", m.err, SendUsage)
	}
}
