// Package ui provides the terminal user interface for Circle.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. It never owns state: every tick it asks the
// session for a Snapshot and renders that. User actions run as tea.Cmd
// functions so the blocking session calls stay off the update loop; each
// reports back with an actionDoneMsg and the next snapshot shows the result.
//
// # Package Structure
//
//   - app.go: Model, Init/Update/View and key handling
//   - commands.go: messages and the commands wrapping session calls
//   - views.go: selection helpers and per-view rendering
//   - keys.go: key bindings (bubbles/key) for the short help footer
//   - help.go: full help overlay
//   - theme.go: color themes and Lipgloss styles
//
// # Views
//
//   - Invitations: pending community and event invitations. Entries created by
//     realtime events show their raw id until the next fetch fills in names.
//   - Members: the community opened with "o", its events and members.
//   - Following: the users in the viewer's library.
//   - Log: the tail of circle.log, parsed from zerolog JSON.
//
// Each view shows its domain's loading flag and error message above the rows.
//
// # Preferences
//
// The theme and the last opened community slug persist to prefs.toml. The
// last community is reopened on start.
package ui
