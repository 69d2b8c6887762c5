package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Refresh    key.Binding

	// View switching
	ViewInvitations key.Binding
	ViewMembers     key.Binding
	ViewLibrary     key.Binding
	ViewLogs        key.Binding

	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Actions
	Accept        key.Binding
	Decline       key.Binding
	Kick          key.Binding
	Unfollow      key.Binding
	OpenCommunity key.Binding

	// Input
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "e"),
			key.WithHelp("e", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Cycle views"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Cycle views (reverse)"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refetch everything"),
		),

		ViewInvitations: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "Invitations"),
		),
		ViewMembers: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "Community members"),
		),
		ViewLibrary: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Followed users"),
		),
		ViewLogs: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Sync log"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),

		Accept: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Accept invitation"),
		),
		Decline: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Decline invitation"),
		),
		Kick: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Kick member"),
		),
		Unfollow: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "Unfollow user"),
		),
		OpenCommunity: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Open community by slug"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Refresh, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ViewInvitations, k.ViewMembers, k.ViewLibrary, k.ViewLogs},
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Accept, k.Decline, k.OpenCommunity, k.Kick, k.Unfollow},
		{k.Refresh, k.CycleTheme, k.Help, k.Quit},
	}
}
