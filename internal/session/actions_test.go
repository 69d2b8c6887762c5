package session

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/five82/circle/internal/apperr"
	"github.com/five82/circle/internal/model"
	"github.com/five82/circle/internal/rows"
)

func seedInvitations(s *Session) {
	s.Invitations.store.Communities.SetAll([]model.Invitation{
		{ID: "c1", Kind: model.InvitationCommunity, Name: "One", Slug: "one"},
		{ID: "c2", Kind: model.InvitationCommunity, Name: "Two", Slug: "two"},
	})
	s.Invitations.store.Events.SetAll([]model.Invitation{
		{ID: "e1", Kind: model.InvitationEvent, Name: "Gig", Slug: "gig"},
	})
}

func TestAcceptCommunityKeepsInvitation(t *testing.T) {
	b := newFakeBackend()
	s := newTestSession(t, newFakeRows(), b, nil)
	seedInvitations(s)

	if err := s.Invitations.AcceptCommunity(context.Background(), "c1"); err != nil {
		t.Fatalf("AcceptCommunity() error = %v", err)
	}
	inv, ok := s.Invitations.store.Communities.Get("c1")
	if !ok || !inv.Accepted {
		t.Fatalf("invitation = %+v, ok = %v, want accepted and present", inv, ok)
	}
	if n := b.count("JoinCommunity"); n != 1 {
		t.Fatalf("JoinCommunity calls = %d, want 1", n)
	}
	if got := s.Invitations.store.Communities.Len(); got != 2 {
		t.Fatalf("len = %d, want 2", got)
	}
}

func TestAcceptEventKeepsInvitation(t *testing.T) {
	s := newTestSession(t, newFakeRows(), newFakeBackend(), nil)
	seedInvitations(s)

	if err := s.Invitations.AcceptEvent(context.Background(), "e1"); err != nil {
		t.Fatalf("AcceptEvent() error = %v", err)
	}
	if inv, _ := s.Invitations.store.Events.Get("e1"); !inv.Accepted {
		t.Fatalf("event invitation not accepted")
	}
}

func TestDeclineRemovesInvitation(t *testing.T) {
	for _, size := range []int{1, 2, 5} {
		b := newFakeBackend()
		s := newTestSession(t, newFakeRows(), b, nil)
		var invs []model.Invitation
		for i := 0; i < size; i++ {
			invs = append(invs, model.Invitation{ID: string(rune('a' + i)), Kind: model.InvitationCommunity})
		}
		s.Invitations.store.Communities.SetAll(invs)

		if err := s.Invitations.DeclineCommunity(context.Background(), "a"); err != nil {
			t.Fatalf("DeclineCommunity() error = %v", err)
		}
		if _, ok := s.Invitations.store.Communities.Get("a"); ok {
			t.Fatalf("size %d: invitation still present", size)
		}
		if got := s.Invitations.store.Communities.Len(); got != size-1 {
			t.Fatalf("size %d: len = %d, want %d", size, got, size-1)
		}
	}
}

func TestDeclineEventSendsViewer(t *testing.T) {
	b := newFakeBackend()
	s := newTestSession(t, newFakeRows(), b, nil)
	seedInvitations(s)

	if err := s.Invitations.DeclineEvent(context.Background(), "e1"); err != nil {
		t.Fatalf("DeclineEvent() error = %v", err)
	}
	want := []backendCall{{method: "LeaveEvent", args: []string{"e1", "viewer"}}}
	if !reflect.DeepEqual(b.calls, want) {
		t.Fatalf("calls = %+v, want %+v", b.calls, want)
	}
	if s.Invitations.store.Events.Len() != 0 {
		t.Fatalf("event invitation still present")
	}
}

func TestFailedActionLeavesStateUnchanged(t *testing.T) {
	b := newFakeBackend()
	b.fail["LeaveCommunity"] = errRejected
	b.fail["KickCommunityMember"] = errRejected
	s := newTestSession(t, newFakeRows(), b, nil)
	seedInvitations(s)
	s.Communities.store.Members.UpsertOne(model.Membership{CommunityID: "c1", UserID: "u1", Status: model.StatusJoined})

	before := s.Snapshot()
	err := s.Invitations.DeclineCommunity(context.Background(), "c1")
	if !errors.Is(err, apperr.ErrRejected) {
		t.Fatalf("DeclineCommunity() error = %v, want ErrRejected", err)
	}
	err = s.Communities.Kick(context.Background(), "c1", "u1")
	if !errors.Is(err, apperr.ErrRejected) {
		t.Fatalf("Kick() error = %v, want ErrRejected", err)
	}
	after := s.Snapshot()

	if !reflect.DeepEqual(before.Invitations.Communities, after.Invitations.Communities) {
		t.Fatalf("invitations changed: %+v -> %+v", before.Invitations.Communities, after.Invitations.Communities)
	}
	if !reflect.DeepEqual(before.Communities.Members, after.Communities.Members) {
		t.Fatalf("members changed: %+v -> %+v", before.Communities.Members, after.Communities.Members)
	}
	if after.Invitations.Loading || after.Communities.Loading {
		t.Fatalf("loading still set after failure")
	}
	if after.Invitations.Error != "not allowed" || after.Communities.Error != "not allowed" {
		t.Fatalf("errors = %q/%q, want rejection message", after.Invitations.Error, after.Communities.Error)
	}
}

func TestActionClearsPreviousError(t *testing.T) {
	b := newFakeBackend()
	b.fail["JoinCommunity"] = errRejected
	s := newTestSession(t, newFakeRows(), b, nil)

	_ = s.Communities.Join(context.Background(), "c1")
	if s.Communities.Snapshot().Error == "" {
		t.Fatalf("error not recorded")
	}
	delete(b.fail, "JoinCommunity")
	if err := s.Communities.Join(context.Background(), "c1"); err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	if got := s.Communities.Snapshot().Error; got != "" {
		t.Fatalf("error = %q, want cleared", got)
	}
}

func TestActionValidatesIDs(t *testing.T) {
	b := newFakeBackend()
	s := newTestSession(t, newFakeRows(), b, nil)
	ctx := context.Background()

	checks := map[string]func() error{
		"join":      func() error { return s.Communities.Join(ctx, "") },
		"leave":     func() error { return s.Communities.Leave(ctx, "  ") },
		"add":       func() error { return s.Communities.AddMember(ctx, "c1", "", model.RoleMember) },
		"add-role":  func() error { return s.Communities.AddMember(ctx, "c1", "u1", model.Role("boss")) },
		"kick":      func() error { return s.Communities.Kick(ctx, "", "u1") },
		"save":      func() error { return s.Communities.Save(ctx, model.Community{Slug: "ok"}) },
		"save-slug": func() error { return s.Communities.Save(ctx, model.Community{ID: "c1", Slug: "Not OK"}) },
		"accept":    func() error { return s.Invitations.AcceptCommunity(ctx, "") },
		"event":     func() error { return s.Invitations.DeclineEvent(ctx, "") },
		"follow":    func() error { return s.Library.Follow(ctx, "") },
		"unfollow":  func() error { return s.Library.Unfollow(ctx, "", nil) },
	}
	for name, check := range checks {
		t.Run(name, func(t *testing.T) {
			if err := check(); !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("error = %v, want ErrValidation", err)
			}
		})
	}
	if len(b.calls) != 0 {
		t.Fatalf("backend calls = %+v, want none", b.calls)
	}
}

func TestKickRemovesMember(t *testing.T) {
	s := newTestSession(t, newFakeRows(), newFakeBackend(), nil)
	s.Communities.store.Members.SetAll([]model.Membership{
		{CommunityID: "c1", UserID: "u1", Status: model.StatusJoined},
		{CommunityID: "c1", UserID: "u2", Status: model.StatusJoined},
	})
	if err := s.Communities.Kick(context.Background(), "c1", "u1"); err != nil {
		t.Fatalf("Kick() error = %v", err)
	}
	members := s.Communities.Snapshot().Members
	if len(members) != 1 || members[0].UserID != "u2" {
		t.Fatalf("members = %+v, want only u2", members)
	}
}

func TestAddMemberSendsRole(t *testing.T) {
	b := newFakeBackend()
	s := newTestSession(t, newFakeRows(), b, nil)
	if err := s.Communities.AddMember(context.Background(), "c1", "u1", model.RoleAdmin); err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}
	want := []backendCall{{method: "AddCommunityMember", args: []string{"c1", "u1", "admin"}}}
	if !reflect.DeepEqual(b.calls, want) {
		t.Fatalf("calls = %+v, want %+v", b.calls, want)
	}
}

func TestSaveStoresServerCopy(t *testing.T) {
	b := newFakeBackend()
	b.saved = model.Community{ID: "c1", Slug: "rock", Name: "Rock (saved)"}
	s := newTestSession(t, newFakeRows(), b, nil)
	s.Communities.store.SetDetail(&model.Community{ID: "c1", Slug: "rock", Name: "Rock"})

	if err := s.Communities.Save(context.Background(), model.Community{ID: "c1", Slug: "rock", Name: "Rock 2"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	snap := s.Communities.Snapshot()
	if snap.Detail == nil || snap.Detail.Name != "Rock (saved)" {
		t.Fatalf("detail = %+v, want server copy", snap.Detail)
	}
	if len(snap.Communities) != 1 || snap.Communities[0].Name != "Rock (saved)" {
		t.Fatalf("communities = %+v, want server copy", snap.Communities)
	}
}

func TestUnfollowCascadePartialFailure(t *testing.T) {
	b := newFakeBackend()
	b.fail["RemoveSong:s2"] = errBoom
	s := newTestSession(t, newFakeRows(), b, nil)
	s.Library.store.Entries.UpsertOne(model.LibraryEntry{UserID: "viewer", FollowedUserID: "u1", Username: "alice"})

	owned := []model.OwnedItem{
		{Kind: model.OwnedSong, ID: "s1"},
		{Kind: model.OwnedSong, ID: "s2"},
		{Kind: model.OwnedPlaylist, ID: "p1"},
	}
	if err := s.Library.Unfollow(context.Background(), "u1", owned); err != nil {
		t.Fatalf("Unfollow() error = %v", err)
	}
	if n := b.count("UnfollowUser"); n != 1 {
		t.Fatalf("UnfollowUser calls = %d, want 1", n)
	}
	for _, key := range []string{"RemoveSong:s1", "RemoveSong:s2", "RemovePlaylist:p1"} {
		if n := b.count(key); n != 1 {
			t.Fatalf("%s calls = %d, want 1", key, n)
		}
	}
	if s.Library.store.Entries.Len() != 0 {
		t.Fatalf("entry still present")
	}
	if got := s.Library.Snapshot().Error; got != "" {
		t.Fatalf("error = %q, want none", got)
	}
}

func TestUnfollowPrimaryFailureSkipsCascade(t *testing.T) {
	b := newFakeBackend()
	b.fail["UnfollowUser"] = errRejected
	s := newTestSession(t, newFakeRows(), b, nil)
	s.Library.store.Entries.UpsertOne(model.LibraryEntry{UserID: "viewer", FollowedUserID: "u1"})

	err := s.Library.Unfollow(context.Background(), "u1", []model.OwnedItem{{Kind: model.OwnedPlaylist, ID: "p1"}})
	if !errors.Is(err, apperr.ErrRejected) {
		t.Fatalf("Unfollow() error = %v, want ErrRejected", err)
	}
	if n := b.count("RemovePlaylist"); n != 0 {
		t.Fatalf("RemovePlaylist calls = %d, want 0", n)
	}
	if s.Library.store.Entries.Len() != 1 {
		t.Fatalf("entry removed after failure")
	}
}

func TestOwnedListsSongsAndPlaylists(t *testing.T) {
	q := newFakeRows()
	q.tables[model.TableSong] = []rows.Row{{"song_id": "s1", "user_id": "u1"}, {"song_id": "s9", "user_id": "u9"}}
	q.tables[model.TablePlaylist] = []rows.Row{{"playlist_id": "p1", "user_id": "u1"}}
	s := newTestSession(t, q, newFakeBackend(), nil)

	got, err := s.Library.Owned(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Owned() error = %v", err)
	}
	want := []model.OwnedItem{{Kind: model.OwnedSong, ID: "s1"}, {Kind: model.OwnedPlaylist, ID: "p1"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Owned() = %+v, want %+v", got, want)
	}
}
