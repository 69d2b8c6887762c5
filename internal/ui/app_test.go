package ui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/circle/internal/model"
	"github.com/five82/circle/internal/prefs"
	"github.com/five82/circle/internal/session"
	"github.com/five82/circle/internal/state"
)

func testModel(t *testing.T) Model {
	t.Helper()
	m := New(Options{
		Context:   context.Background(),
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
		Prefs:     prefs.Prefs{Theme: "Slate"},
	})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(Model)
}

func withSnapshot(m Model, snap session.Snapshot) Model {
	updated, _ := m.Update(snapshotMsg(snap))
	return updated.(Model)
}

func press(m Model, keys string) Model {
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)})
	return updated.(Model)
}

func TestViewSwitching(t *testing.T) {
	m := testModel(t)
	if m.currentView != ViewInvitations {
		t.Fatalf("currentView = %v, want Invitations", m.currentView)
	}
	m = press(m, "m")
	if m.currentView != ViewMembers {
		t.Fatalf("currentView = %v, want Members", m.currentView)
	}
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if got := updated.(Model).currentView; got != ViewLibrary {
		t.Fatalf("after tab currentView = %v, want Following", got)
	}
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if got := updated.(Model).currentView; got != ViewInvitations {
		t.Fatalf("after shift+tab currentView = %v, want Invitations", got)
	}
}

func TestSelectionClampsToRows(t *testing.T) {
	m := withSnapshot(testModel(t), session.Snapshot{
		Invitations: state.InvitationSnapshot{
			Communities: []model.Invitation{{ID: "c1", Name: "One", Slug: "one"}},
			Events:      []model.Invitation{{ID: "e1", Kind: model.InvitationEvent, Name: "Gig", Slug: "gig"}},
		},
	})
	m = press(m, "j")
	m = press(m, "j")
	m = press(m, "j")
	inv, ok := m.selectedInvitation()
	if !ok || inv.ID != "e1" {
		t.Fatalf("selected = %+v, %v, want e1", inv, ok)
	}
	m = press(m, "g")
	if inv, _ := m.selectedInvitation(); inv.ID != "c1" {
		t.Fatalf("selected = %+v, want c1", inv)
	}
}

func TestInvitationViewShowsPlaceholderAndError(t *testing.T) {
	m := withSnapshot(testModel(t), session.Snapshot{
		Invitations: state.InvitationSnapshot{
			Communities: []model.Invitation{model.PlaceholderInvitation(model.InvitationCommunity, "c9")},
			Error:       "Failed to fetch invitations: boom",
		},
	})
	out := m.View()
	if !strings.Contains(out, "c9 (pending details)") {
		t.Fatalf("view missing placeholder row:\n%s", out)
	}
	if !strings.Contains(out, "Failed to fetch invitations: boom") {
		t.Fatalf("view missing error:\n%s", out)
	}
}

func TestMembersViewWithoutCommunity(t *testing.T) {
	m := press(testModel(t), "m")
	if out := m.View(); !strings.Contains(out, "No community open") {
		t.Fatalf("view = %q, want no community hint", out)
	}
}

func TestActionDoneSetsStatus(t *testing.T) {
	m := testModel(t)
	updated, _ := m.Update(actionDoneMsg{label: "decline One", err: errors.New("not allowed")})
	m = updated.(Model)
	if !m.statusErr || m.status != "decline One: not allowed" {
		t.Fatalf("status = %q (err %v)", m.status, m.statusErr)
	}
}

func TestCommunityOpenedSavesPrefs(t *testing.T) {
	m := testModel(t)
	updated, _ := m.Update(communityOpenedMsg{slug: "rock", found: true})
	m = updated.(Model)
	if m.currentView != ViewMembers {
		t.Fatalf("currentView = %v, want Members", m.currentView)
	}
	saved, err := prefs.Load(m.prefsPath)
	if err != nil {
		t.Fatalf("prefs.Load: %v", err)
	}
	if saved.LastCommunity != "rock" || saved.Theme != "Slate" {
		t.Fatalf("saved prefs = %+v, want rock/Slate", saved)
	}
}

func TestSlugPrompt(t *testing.T) {
	m := press(testModel(t), "o")
	if !m.prompting {
		t.Fatalf("prompting = false after o")
	}
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if updated.(Model).prompting {
		t.Fatalf("prompting = true after esc")
	}
}

func TestHelpOverlay(t *testing.T) {
	m := press(testModel(t), "?")
	if !m.showHelp || !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatalf("help overlay not shown")
	}
	m = press(m, "x")
	if m.showHelp {
		t.Fatalf("help overlay still shown after a key")
	}
}
