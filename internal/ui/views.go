package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/circle/internal/model"
)

// Selection

func (m Model) rowCount() int {
	switch m.currentView {
	case ViewInvitations:
		return len(m.invitations())
	case ViewMembers:
		return len(m.snapshot.Communities.Members)
	case ViewLibrary:
		return len(m.snapshot.Library.Entries)
	case ViewLogs:
		return len(m.logs)
	}
	return 0
}

func (m *Model) moveSelection(step int) {
	m.selected[m.currentView] += step
	m.clampSelection()
}

func (m *Model) clampSelection() {
	for _, v := range viewOrder {
		saved := m.currentView
		m.currentView = v
		n := m.rowCount()
		m.currentView = saved
		switch {
		case n == 0:
			m.selected[v] = 0
		case m.selected[v] >= n:
			m.selected[v] = n - 1
		case m.selected[v] < 0:
			m.selected[v] = 0
		}
	}
}

// invitations lists community invitations before event invitations.
func (m Model) invitations() []model.Invitation {
	inv := m.snapshot.Invitations
	out := make([]model.Invitation, 0, len(inv.Communities)+len(inv.Events))
	out = append(out, inv.Communities...)
	return append(out, inv.Events...)
}

func (m Model) selectedInvitation() (model.Invitation, bool) {
	all := m.invitations()
	idx := m.selected[ViewInvitations]
	if idx < 0 || idx >= len(all) {
		return model.Invitation{}, false
	}
	return all[idx], true
}

func (m Model) selectedMember() (model.Membership, bool) {
	members := m.snapshot.Communities.Members
	idx := m.selected[ViewMembers]
	if idx < 0 || idx >= len(members) {
		return model.Membership{}, false
	}
	return members[idx], true
}

func (m Model) selectedEntry() (model.LibraryEntry, bool) {
	entries := m.snapshot.Library.Entries
	idx := m.selected[ViewLibrary]
	if idx < 0 || idx >= len(entries) {
		return model.LibraryEntry{}, false
	}
	return entries[idx], true
}

// Rendering

func (m Model) renderMain() string {
	styles := m.theme.Styles()
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")
	b.WriteString(m.renderContent())
	b.WriteString("\n")
	if m.prompting {
		b.WriteString(m.slugInput.View())
		b.WriteString("\n")
	} else if m.status != "" {
		if m.statusErr {
			b.WriteString(styles.NoticeError.Render(m.status))
		} else {
			b.WriteString(styles.Notice.Render(m.status))
		}
		b.WriteString("\n")
	}
	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	left := styles.Brand.Render("circle")
	if m.sess != nil {
		left += styles.Viewer.Render("  " + m.sess.ViewerID())
	}
	right := ""
	if !m.lastUpdated.IsZero() {
		right = styles.Updated.Render("updated " + m.lastUpdated.Format("15:04:05"))
	}
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return styles.Header.Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderTabs() string {
	styles := m.theme.Styles()
	tabs := make([]string, 0, len(viewOrder))
	for _, v := range viewOrder {
		label := " " + v.String() + " "
		if v == m.currentView {
			tabs = append(tabs, styles.TabActive.Render(label))
			continue
		}
		tabs = append(tabs, styles.Tab.Render(label))
	}
	return strings.Join(tabs, " ")
}

func (m Model) renderContent() string {
	switch m.currentView {
	case ViewMembers:
		return m.renderMembers()
	case ViewLibrary:
		return m.renderLibrary()
	case ViewLogs:
		return m.renderLogs()
	default:
		return m.renderInvitations()
	}
}

// domainLine renders the loading and error state of one slice.
func (m Model) domainLine(loading bool, errMsg string) string {
	styles := m.theme.Styles()
	switch {
	case errMsg != "":
		return styles.SliceError.Render(errMsg) + "\n"
	case loading:
		return styles.Loading.Render("loading…") + "\n"
	}
	return ""
}

func (m Model) renderInvitations() string {
	styles := m.theme.Styles()
	snap := m.snapshot.Invitations
	var b strings.Builder
	b.WriteString(m.domainLine(snap.Loading, snap.Error))

	all := m.invitations()
	if len(all) == 0 {
		b.WriteString(styles.Empty.Render("No pending invitations"))
		return b.String()
	}
	rows := make([]string, 0, len(all))
	for _, inv := range all {
		rows = append(rows, fmt.Sprintf("%-9s %s %s",
			string(inv.Kind), styles.InvitationBadge(inv), styles.InvitationName(inv)))
	}
	b.WriteString(m.renderRows(rows, m.selected[ViewInvitations]))
	return b.String()
}

func (m Model) renderMembers() string {
	styles := m.theme.Styles()
	snap := m.snapshot.Communities
	var b strings.Builder
	b.WriteString(m.domainLine(snap.Loading, snap.Error))

	if snap.Detail == nil {
		b.WriteString(styles.Empty.Render("No community open. Press o to open one by slug."))
		return b.String()
	}
	title := styles.Title.Render(snap.Detail.Name)
	b.WriteString(title + styles.Slug.Render("  /"+snap.Detail.Slug))
	if snap.Detail.Description != nil {
		b.WriteString("\n" + styles.Slug.Render(*snap.Detail.Description))
	}
	if len(snap.Events) > 0 {
		names := make([]string, 0, len(snap.Events))
		for _, ev := range snap.Events {
			names = append(names, ev.EventName)
		}
		b.WriteString("\n" + styles.Events.Render("events: "+strings.Join(names, ", ")))
	}
	b.WriteString("\n\n")

	if len(snap.Members) == 0 {
		b.WriteString(styles.Empty.Render("No members"))
		return b.String()
	}
	rows := make([]string, 0, len(snap.Members))
	for _, member := range snap.Members {
		rows = append(rows, styles.MemberRow(member))
	}
	b.WriteString(m.renderRows(rows, m.selected[ViewMembers]))
	return b.String()
}

func (m Model) renderLibrary() string {
	styles := m.theme.Styles()
	snap := m.snapshot.Library
	var b strings.Builder
	b.WriteString(m.domainLine(snap.Loading, snap.Error))

	if len(snap.Entries) == 0 {
		b.WriteString(styles.Empty.Render("Not following anyone"))
		return b.String()
	}
	rows := make([]string, 0, len(snap.Entries))
	for _, e := range snap.Entries {
		since := ""
		if !e.CreatedAt.IsZero() {
			since = styles.Since.Render("  since " + e.CreatedAt.Format("2006-01-02"))
		}
		rows = append(rows, styles.Username.Render(e.Username)+since)
	}
	b.WriteString(m.renderRows(rows, m.selected[ViewLibrary]))
	return b.String()
}

func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	if len(m.logs) == 0 {
		return styles.Empty.Render("Log is empty")
	}
	rows := make([]string, 0, len(m.logs))
	for _, e := range m.logs {
		line := e.String()
		switch e.Level {
		case "warn":
			line = styles.LogWarn.Render(line)
		case "error", "fatal", "panic":
			line = styles.LogError.Render(line)
		case "debug":
			line = styles.LogDebug.Render(line)
		}
		rows = append(rows, line)
	}
	return m.renderRows(rows, len(rows)-1)
}

// renderRows shows the window of rows around selected that fits the screen.
func (m Model) renderRows(rows []string, selected int) string {
	styles := m.theme.Styles()
	height := m.height - 8
	if height < 3 {
		height = 3
	}
	start := 0
	if selected >= height {
		start = selected - height + 1
	}
	end := start + height
	if end > len(rows) {
		end = len(rows)
	}
	var b strings.Builder
	for i := start; i < end; i++ {
		if i == selected && m.currentView != ViewLogs {
			b.WriteString(styles.Cursor.Render("› " + rows[i]))
		} else {
			b.WriteString("  " + rows[i])
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
