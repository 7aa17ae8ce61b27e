package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/model"
)

// Palette is the set of colors a theme is built from.
type Palette struct {
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Subtle    lipgloss.Color
	Border    lipgloss.Color
	Badge     lipgloss.Color
	Like      lipgloss.Color
	Comment   lipgloss.Color
	Follow    lipgloss.Color
	Feature   lipgloss.Color
	Spotlight lipgloss.Color
	Milestone lipgloss.Color
	Error     lipgloss.Color
}

// Theme names.
const (
	Dark  = "dark"
	Light = "light"
)

var palettes = map[string]Palette{
	Dark: {
		Accent:    "#F97316",
		Text:      "#F8F9FA",
		Muted:     "#868E96",
		Subtle:    "#343A40",
		Border:    "#495057",
		Badge:     "#EF4444",
		Like:      "#EF4444",
		Comment:   "#3B82F6",
		Follow:    "#22C55E",
		Feature:   "#EAB308",
		Spotlight: "#A855F7",
		Milestone: "#9CA3AF",
		Error:     "#FF6B6B",
	},
	Light: {
		Accent:    "#C2410C",
		Text:      "#1A202C",
		Muted:     "#718096",
		Subtle:    "#E2E8F0",
		Border:    "#CBD5E0",
		Badge:     "#DC2626",
		Like:      "#DC2626",
		Comment:   "#2563EB",
		Follow:    "#16A34A",
		Feature:   "#A16207",
		Spotlight: "#7E22CE",
		Milestone: "#4B5563",
		Error:     "#C53030",
	},
}

var (
	current = Dark
	colors  = palettes[Dark]
)

// Styles rebuilt by Use.
var (
	// HeaderStyle is used for the application title bar.
	HeaderStyle lipgloss.Style
	// StatusBarStyle is used for the bottom status bar.
	StatusBarStyle lipgloss.Style
	// PanelStyle wraps overlays such as help and the command palette.
	PanelStyle lipgloss.Style
	// ListItemStyle is the base style for items in a list.
	ListItemStyle lipgloss.Style
	// SelectedItemStyle highlights the focused list item.
	SelectedItemStyle lipgloss.Style
	// UnreadStyle renders unread notification text.
	UnreadStyle lipgloss.Style
	// ReadStyle renders read notification text.
	ReadStyle lipgloss.Style
	// TimestampStyle renders notification dates.
	TimestampStyle lipgloss.Style
	// BadgeStyle renders the unread count badge.
	BadgeStyle lipgloss.Style
	// HelpStyle is used for keyboard hints and help text.
	HelpStyle lipgloss.Style
	// TitleStyle is used for panel titles.
	TitleStyle lipgloss.Style
	// ToastStyle frames a notification toast.
	ToastStyle lipgloss.Style
	// ErrorToastStyle frames a toast reporting a failure.
	ErrorToastStyle lipgloss.Style
)

func init() {
	build()
}

// Names returns the available theme names.
func Names() []string {
	return []string{Dark, Light}
}

// Use switches to the named theme and returns the name in effect.
// Unknown names fall back to dark.
func Use(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	p, ok := palettes[name]
	if !ok {
		name, p = Dark, palettes[Dark]
	}
	current, colors = name, p
	build()
	return name
}

// Current returns the active theme name.
func Current() string {
	return current
}

// Colors returns the active palette.
func Colors() Palette {
	return colors
}

func build() {
	HeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(colors.Accent).
		Padding(0, 1)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(colors.Text).
		Background(colors.Subtle).
		Padding(0, 1)

	PanelStyle = lipgloss.NewStyle().
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colors.Border)

	ListItemStyle = lipgloss.NewStyle().
		PaddingLeft(2)

	SelectedItemStyle = lipgloss.NewStyle().
		PaddingLeft(1).
		Bold(true).
		Foreground(colors.Accent).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(colors.Accent)

	UnreadStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colors.Text)

	ReadStyle = lipgloss.NewStyle().
		Foreground(colors.Muted)

	TimestampStyle = lipgloss.NewStyle().
		Foreground(colors.Muted).
		Faint(true)

	BadgeStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(colors.Badge).
		Padding(0, 1)

	HelpStyle = lipgloss.NewStyle().
		Foreground(colors.Muted).
		Italic(true)

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colors.Text).
		MarginBottom(1)

	ToastStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colors.Accent)

	ErrorToastStyle = ToastStyle.
		BorderForeground(colors.Error).
		Foreground(colors.Error)
}

// KindStyle returns the icon color for a notification kind.
func KindStyle(k model.Kind) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch k {
	case model.KindLike:
		return base.Foreground(colors.Like)
	case model.KindComment:
		return base.Foreground(colors.Comment)
	case model.KindFollow:
		return base.Foreground(colors.Follow)
	case model.KindFeature:
		return base.Foreground(colors.Feature)
	case model.KindSpotlight:
		return base.Foreground(colors.Spotlight)
	case model.KindViewMilestone:
		return base.Foreground(colors.Milestone)
	default:
		return base.Foreground(colors.Accent)
	}
}
