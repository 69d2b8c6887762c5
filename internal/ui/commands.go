package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/circle/internal/logtail"
	"github.com/five82/circle/internal/model"
	"github.com/five82/circle/internal/session"
)

// Messages

type tickMsg time.Time

type snapshotMsg session.Snapshot

type logsMsg []logtail.Entry

type actionDoneMsg struct {
	label string
	err   error
}

type communityOpenedMsg struct {
	slug  string
	found bool
	err   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func snapshotCmd(sess *session.Session) tea.Cmd {
	if sess == nil {
		return nil
	}
	return func() tea.Msg {
		return snapshotMsg(sess.Snapshot())
	}
}

func logsCmd(path string) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		entries, err := logtail.ReadEntries(path, logFetchLimit)
		if err != nil {
			return logsMsg{{Message: err.Error(), Raw: err.Error()}}
		}
		return logsMsg(entries)
	}
}

// actionCmd runs one session action off the update loop.
func actionCmd(label string, run func() error) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{label: label, err: run()}
	}
}

func refreshCmd(ctx context.Context, sess *session.Session) tea.Cmd {
	if sess == nil {
		return nil
	}
	return actionCmd("refresh", func() error {
		if err := sess.Hydrate(ctx); err != nil {
			return err
		}
		if detail := sess.Communities.Snapshot().Detail; detail != nil {
			_, err := sess.Communities.FetchBySlug(ctx, detail.Slug)
			return err
		}
		return nil
	})
}

func acceptCmd(ctx context.Context, sess *session.Session, inv model.Invitation) tea.Cmd {
	return actionCmd("accept "+inv.Name, func() error {
		if inv.Kind == model.InvitationEvent {
			return sess.Invitations.AcceptEvent(ctx, inv.ID)
		}
		return sess.Invitations.AcceptCommunity(ctx, inv.ID)
	})
}

func declineCmd(ctx context.Context, sess *session.Session, inv model.Invitation) tea.Cmd {
	return actionCmd("decline "+inv.Name, func() error {
		if inv.Kind == model.InvitationEvent {
			return sess.Invitations.DeclineEvent(ctx, inv.ID)
		}
		return sess.Invitations.DeclineCommunity(ctx, inv.ID)
	})
}

func kickCmd(ctx context.Context, sess *session.Session, m model.Membership) tea.Cmd {
	return actionCmd("kick "+m.Username, func() error {
		return sess.Communities.Kick(ctx, m.CommunityID, m.UserID)
	})
}

func unfollowCmd(ctx context.Context, sess *session.Session, e model.LibraryEntry) tea.Cmd {
	return actionCmd("unfollow "+e.Username, func() error {
		owned, err := sess.Library.Owned(ctx, e.FollowedUserID)
		if err != nil {
			return err
		}
		return sess.Library.Unfollow(ctx, e.FollowedUserID, owned)
	})
}

func openCommunityCmd(ctx context.Context, sess *session.Session, slug string) tea.Cmd {
	if sess == nil {
		return nil
	}
	return func() tea.Msg {
		community, err := sess.Communities.FetchBySlug(ctx, slug)
		if err != nil {
			return communityOpenedMsg{slug: slug, err: err}
		}
		if community == nil {
			return communityOpenedMsg{slug: slug}
		}
		if err := sess.Communities.WatchMembers(ctx); err != nil {
			return communityOpenedMsg{slug: slug, found: true, err: err}
		}
		return communityOpenedMsg{slug: slug, found: true}
	}
}
