package theme

import (
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/model"
)

func Test_Use_Cases(t *testing.T) {
	defer Use(Dark)

	tests := []struct {
		in   string
		want string
	}{
		{"light", Light},
		{" Dark ", Dark},
		{"LIGHT", Light},
		{"solarized", Dark},
		{"", Dark},
	}
	for _, tt := range tests {
		if got := Use(tt.in); got != tt.want {
			t.Errorf("Use(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if Current() != tt.want {
			t.Errorf("Current() = %q after Use(%q)", Current(), tt.in)
		}
	}
}

func Test_Use_RebuildsStyles(t *testing.T) {
	defer Use(Dark)

	Use(Dark)
	dark := HeaderStyle.GetBackground()
	Use(Light)
	light := HeaderStyle.GetBackground()

	if dark == light {
		t.Error("header background did not change with the theme")
	}
}

func Test_KindStyle_DistinctPerKind(t *testing.T) {
	kinds := []model.Kind{
		model.KindLike, model.KindComment, model.KindFollow,
		model.KindFeature, model.KindSpotlight, model.KindViewMilestone,
		model.KindUnknown,
	}
	seen := map[lipgloss.TerminalColor]model.Kind{}
	for _, k := range kinds {
		c := KindStyle(k).GetForeground()
		if prev, dup := seen[c]; dup {
			t.Errorf("kind %v shares color %v with %v", k, c, prev)
		}
		seen[c] = k
	}
}
