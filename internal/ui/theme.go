package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/circle/internal/model"
)

// Palette is the set of colors a theme paints with.
type Palette struct {
	Base       string // screen background, badge text
	Panel      string // header bar
	Cursor     string // selected row and active tab
	CursorText string
	Text       string
	Dim        string
	Faint      string
	Accent     string
	Warn       string
	Error      string
	Live       string // loading indicator
}

// Theme pairs a palette with badge colors keyed by membership status or role.
type Theme struct {
	Name string
	Palette
	Badges map[string]string
}

// badgeAccepted labels an invitation whose accept call already succeeded.
const badgeAccepted = "accepted"

// Styles are the lipgloss styles the circle views render with.
type Styles struct {
	// Header bar
	Header  lipgloss.Style
	Brand   lipgloss.Style
	Viewer  lipgloss.Style
	Updated lipgloss.Style

	// Tabs
	Tab       lipgloss.Style
	TabActive lipgloss.Style

	// Slice state and status line
	Loading     lipgloss.Style
	SliceError  lipgloss.Style
	Notice      lipgloss.Style
	NoticeError lipgloss.Style
	Empty       lipgloss.Style

	// Rows
	Cursor      lipgloss.Style
	Placeholder lipgloss.Style
	Username    lipgloss.Style
	Since       lipgloss.Style

	// Community header
	Title  lipgloss.Style
	Slug   lipgloss.Style
	Events lipgloss.Style

	// Log view
	LogWarn  lipgloss.Style
	LogError lipgloss.Style
	LogDebug lipgloss.Style

	// Help overlay
	HelpTitle   lipgloss.Style
	HelpRule    lipgloss.Style
	HelpSection lipgloss.Style
	HelpKey     lipgloss.Style
	HelpText    lipgloss.Style
	HelpFrame   lipgloss.Style

	badges    map[string]string
	badgeText string
	fallback  string
}

// Styles builds the styles for t.
func (t Theme) Styles() Styles {
	fg := func(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }
	return Styles{
		Header:  lipgloss.NewStyle().Background(lipgloss.Color(t.Panel)).Foreground(lipgloss.Color(t.Text)).Padding(0, 1),
		Brand:   fg(t.Warn).Bold(true),
		Viewer:  fg(t.Dim),
		Updated: fg(t.Faint),

		Tab:       fg(t.Dim),
		TabActive: lipgloss.NewStyle().Background(lipgloss.Color(t.Cursor)).Foreground(lipgloss.Color(t.CursorText)).Bold(true),

		Loading:     fg(t.Live),
		SliceError:  fg(t.Error).Bold(true),
		Notice:      fg(t.Dim),
		NoticeError: fg(t.Error).Bold(true),
		Empty:       fg(t.Faint).Italic(true),

		Cursor:      lipgloss.NewStyle().Background(lipgloss.Color(t.Cursor)).Foreground(lipgloss.Color(t.CursorText)),
		Placeholder: fg(t.Faint).Italic(true),
		Username:    fg(t.Text),
		Since:       fg(t.Faint),

		Title:  fg(t.Accent).Bold(true),
		Slug:   fg(t.Dim),
		Events: fg(t.Faint),

		LogWarn:  fg(t.Warn),
		LogError: fg(t.Error).Bold(true),
		LogDebug: fg(t.Faint),

		HelpTitle:   fg(t.Text).Bold(true),
		HelpRule:    fg(t.Faint),
		HelpSection: fg(t.Accent).Bold(true),
		HelpKey:     fg(t.Warn).Width(12),
		HelpText:    fg(t.Text),
		HelpFrame:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(t.Accent)).Padding(1, 2).Width(48),

		badges:    t.Badges,
		badgeText: t.Base,
		fallback:  t.Dim,
	}
}

// Badge returns the pill style for a status or role name.
func (s Styles) Badge(name string) lipgloss.Style {
	color := s.badges[name]
	if color == "" {
		color = s.fallback
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.badgeText)).
		Background(lipgloss.Color(color)).
		Padding(0, 1)
}

// InvitationBadge renders invited, or accepted once the accept call went through.
func (s Styles) InvitationBadge(inv model.Invitation) string {
	name := string(model.StatusInvited)
	if inv.Accepted {
		name = badgeAccepted
	}
	return s.Badge(name).Render(name)
}

// InvitationName renders the display name, or the raw id while only a
// realtime placeholder is known.
func (s Styles) InvitationName(inv model.Invitation) string {
	if inv.IsPlaceholder() {
		return s.Placeholder.Render(inv.ID + " (pending details)")
	}
	return inv.Name
}

// MemberRow renders role and status badges followed by the username.
func (s Styles) MemberRow(m model.Membership) string {
	role := string(m.Role)
	status := string(m.Status)
	return s.Badge(role).Render(role) + " " + s.Badge(status).Render(status) + " " + s.Username.Render(m.Username)
}

var themeOrder = []string{"Nightfox", "Kanagawa", "Slate"}

var themes = map[string]Theme{
	// https://github.com/EdenEast/nightfox.nvim
	"Nightfox": {
		Name: "Nightfox",
		Palette: Palette{
			Base: "#131a24", Panel: "#192330", Cursor: "#2b3b51", CursorText: "#cdcecf",
			Text: "#cdcecf", Dim: "#738091", Faint: "#71839b", Accent: "#719cd6",
			Warn: "#dbc074", Error: "#c94f6d", Live: "#63cdcf",
		},
		Badges: map[string]string{
			"invited": "#dbc074", "joined": "#81b29a", "left": "#738091", "kicked": "#c94f6d",
			badgeAccepted: "#63cdcf", "owner": "#9d79d6", "admin": "#719cd6", "member": "#71839b",
		},
	},
	// https://github.com/rebelot/kanagawa.nvim
	"Kanagawa": {
		Name: "Kanagawa",
		Palette: Palette{
			Base: "#16161D", Panel: "#1F1F28", Cursor: "#2D4F67", CursorText: "#DCD7BA",
			Text: "#DCD7BA", Dim: "#C8C093", Faint: "#727169", Accent: "#7E9CD8",
			Warn: "#E6C384", Error: "#E46876", Live: "#7FB4CA",
		},
		Badges: map[string]string{
			"invited": "#E6C384", "joined": "#98BB6C", "left": "#727169", "kicked": "#E46876",
			badgeAccepted: "#7FB4CA", "owner": "#957FB8", "admin": "#7E9CD8", "member": "#727169",
		},
	},
	// Tailwind slate scale
	"Slate": {
		Name: "Slate",
		Palette: Palette{
			Base: "#0f172a", Panel: "#1e293b", Cursor: "#334155", CursorText: "#f1f5f9",
			Text: "#e2e8f0", Dim: "#94a3b8", Faint: "#64748b", Accent: "#38bdf8",
			Warn: "#fbbf24", Error: "#f87171", Live: "#22d3ee",
		},
		Badges: map[string]string{
			"invited": "#fbbf24", "joined": "#4ade80", "left": "#64748b", "kicked": "#f87171",
			badgeAccepted: "#22d3ee", "owner": "#c084fc", "admin": "#38bdf8", "member": "#64748b",
		},
	},
}

// GetTheme returns a theme by name, Nightfox when unknown.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes["Nightfox"]
}

// NextTheme returns the theme after current in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames lists the themes in cycle order.
func ThemeNames() []string {
	return themeOrder
}
