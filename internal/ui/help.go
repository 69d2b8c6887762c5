package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	sections := []helpSection{
		{
			title: "Views",
			items: []helpItem{
				{"tab", "Cycle views"},
				{"i/m/f/l", "Invitations/Members/Following/Log"},
				{"j/k", "Move up/down"},
				{"g/G", "Go to top/bottom"},
			},
		},
		{
			title: "Invitations",
			items: []helpItem{
				{"a", "Accept"},
				{"d", "Decline"},
			},
		},
		{
			title: "Community",
			items: []helpItem{
				{"o", "Open by slug"},
				{"x", "Kick member"},
			},
		},
		{
			title: "Following",
			items: []helpItem{
				{"u", "Unfollow (and drop their items)"},
			},
		},
		{
			title: "General",
			items: []helpItem{
				{"r", "Refetch everything"},
				{"T", "Cycle theme"},
				{"h/?", "Toggle help"},
				{"e/ctrl+c", "Quit"},
			},
		},
	}

	var b strings.Builder
	b.WriteString(styles.HelpTitle.Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.HelpRule.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	for i, section := range sections {
		b.WriteString(styles.HelpSection.Render(section.title))
		b.WriteString("\n")
		for _, item := range section.items {
			b.WriteString(styles.HelpKey.Render(item.key))
			b.WriteString(styles.HelpText.Render(item.desc))
			b.WriteString("\n")
		}
		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		styles.HelpFrame.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Base)),
	)
}

type helpSection struct {
	title string
	items []helpItem
}

type helpItem struct {
	key  string
	desc string
}
