package session

import (
	"context"
	"errors"
	"testing"

	"github.com/five82/circle/internal/model"
	"github.com/five82/circle/internal/realtime"
	"github.com/five82/circle/internal/rows"
)

func watchedSession(t *testing.T, q *fakeRows) (*Session, *fakeFeed) {
	t.Helper()
	feed := &fakeFeed{}
	s := newTestSession(t, q, newFakeBackend(), feed)
	if err := s.Watch(context.Background()); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	return s, feed
}

func TestInvitationInsertIsIdempotent(t *testing.T) {
	s, feed := watchedSession(t, newFakeRows())
	ev := realtime.Insert{New: rows.Row{"community_id": "c9", "user_id": "viewer", "status": "invited"}}

	feed.emit(model.TableCommunityUser, ev)
	feed.emit(model.TableCommunityUser, ev)

	invs := s.Invitations.Snapshot().Communities
	if len(invs) != 1 {
		t.Fatalf("invitations = %+v, want 1", invs)
	}
	// Placeholder display fields are the raw id until the next fetch.
	if invs[0].Name != "c9" || invs[0].Slug != "c9" || !invs[0].IsPlaceholder() {
		t.Fatalf("invitation = %+v, want placeholder for c9", invs[0])
	}
}

func TestInvitationInsertKeepsExisting(t *testing.T) {
	s, feed := watchedSession(t, newFakeRows())
	s.Invitations.store.Events.UpsertOne(model.Invitation{ID: "e1", Kind: model.InvitationEvent, Name: "Gig", Slug: "gig"})

	feed.emit(model.TableEventUser, realtime.Update{New: rows.Row{"event_id": "e1", "user_id": "viewer", "status": "invited"}})

	inv, _ := s.Invitations.store.Events.Get("e1")
	if inv.Name != "Gig" {
		t.Fatalf("invitation = %+v, want existing entry untouched", inv)
	}
}

func TestAcceptedInvitationSurvivesStatusChange(t *testing.T) {
	s, feed := watchedSession(t, newFakeRows())
	seedInvitations(s)

	if err := s.Invitations.AcceptCommunity(context.Background(), "c1"); err != nil {
		t.Fatalf("AcceptCommunity() error = %v", err)
	}
	feed.emit(model.TableCommunityUser, realtime.Update{New: rows.Row{"community_id": "c1", "user_id": "viewer", "status": "joined"}})
	feed.emit(model.TableCommunityUser, realtime.Update{New: rows.Row{"community_id": "c2", "user_id": "viewer", "status": "left"}})

	if inv, ok := s.Invitations.store.Communities.Get("c1"); !ok || !inv.Accepted {
		t.Fatalf("accepted invitation removed: %+v, %v", inv, ok)
	}
	if _, ok := s.Invitations.store.Communities.Get("c2"); ok {
		t.Fatalf("unaccepted invitation kept after status change")
	}
}

func TestStaleInvitedEventAfterDeclineRelists(t *testing.T) {
	s, feed := watchedSession(t, newFakeRows())
	seedInvitations(s)

	if err := s.Invitations.DeclineCommunity(context.Background(), "c1"); err != nil {
		t.Fatalf("DeclineCommunity() error = %v", err)
	}
	if _, ok := s.Invitations.store.Communities.Get("c1"); ok {
		t.Fatalf("declined invitation still listed")
	}

	feed.emit(model.TableCommunityUser, realtime.Update{New: rows.Row{"community_id": "c1", "user_id": "viewer", "status": "invited"}})

	inv, ok := s.Invitations.store.Communities.Get("c1")
	if !ok || !inv.IsPlaceholder() || inv.Accepted {
		t.Fatalf("after stale invited event c1 = %+v, %v, want unaccepted placeholder", inv, ok)
	}
}

func TestInvitationDeleteRemovesAccepted(t *testing.T) {
	s, feed := watchedSession(t, newFakeRows())
	s.Invitations.store.Communities.UpsertOne(model.Invitation{ID: "c1", Accepted: true})

	feed.emit(model.TableCommunityUser, realtime.Delete{Old: rows.Row{"community_id": "c1"}})

	if s.Invitations.store.Communities.Len() != 0 {
		t.Fatalf("invitation kept after delete")
	}
}

func TestInvitationIgnoresOtherUsers(t *testing.T) {
	s, feed := watchedSession(t, newFakeRows())
	feed.emit(model.TableCommunityUser, realtime.Insert{New: rows.Row{"community_id": "c1", "user_id": "someone", "status": "invited"}})
	if s.Invitations.store.Communities.Len() != 0 {
		t.Fatalf("invitation stored for another user")
	}
}

func viewingSession(t *testing.T, q *fakeRows) (*Session, *fakeFeed) {
	t.Helper()
	s, feed := watchedSession(t, q)
	s.Communities.store.SetDetail(&model.Community{ID: "c1", Slug: "rock", OwnerID: "owner"})
	if err := s.Communities.WatchMembers(context.Background()); err != nil {
		t.Fatalf("WatchMembers() error = %v", err)
	}
	return s, feed
}

func TestMemberInsertEnrichesUsername(t *testing.T) {
	q := newFakeRows()
	q.tables[model.TablePublicProfile] = []rows.Row{{"user_id": "u1", "username": "alice"}}
	s, feed := viewingSession(t, q)

	feed.emit(model.TableCommunityUser, realtime.Insert{New: rows.Row{"community_id": "c1", "user_id": "u1", "role": "member", "status": "invited"}})

	m, ok := s.Communities.store.Members.Get(model.MembershipKey("c1", "u1"))
	if !ok || m.Username != "alice" || m.Status != model.StatusInvited {
		t.Fatalf("member = %+v, %v, want invited alice", m, ok)
	}
	if n := q.callsTo(model.TablePublicProfile); n != 1 {
		t.Fatalf("profile lookups = %d, want 1", n)
	}
}

func TestMemberNeverRevertsToInvited(t *testing.T) {
	q := newFakeRows()
	s, feed := viewingSession(t, q)
	s.Communities.store.Members.UpsertOne(model.Membership{CommunityID: "c1", UserID: "u1", Status: model.StatusJoined, Role: model.RoleMember, Username: "alice"})

	feed.emit(model.TableCommunityUser, realtime.Update{New: rows.Row{"community_id": "c1", "user_id": "u1", "role": "admin", "status": "invited"}})

	m, _ := s.Communities.store.Members.Get(model.MembershipKey("c1", "u1"))
	if m.Status != model.StatusJoined || m.Role != model.RoleAdmin || m.Username != "alice" {
		t.Fatalf("member = %+v, want joined admin alice", m)
	}
	if n := q.callsTo(model.TablePublicProfile); n != 0 {
		t.Fatalf("profile lookups = %d, want 0 for a known username", n)
	}
}

func TestMemberLeaveAndOtherCommunity(t *testing.T) {
	s, feed := viewingSession(t, newFakeRows())
	s.Communities.store.Members.UpsertOne(model.Membership{CommunityID: "c1", UserID: "u1", Status: model.StatusJoined, Username: "alice"})

	feed.emit(model.TableCommunityUser, realtime.Update{New: rows.Row{"community_id": "c2", "user_id": "u1", "status": "kicked"}})
	if s.Communities.store.Members.Len() != 1 {
		t.Fatalf("member removed by another community's event")
	}
	feed.emit(model.TableCommunityUser, realtime.Update{New: rows.Row{"community_id": "c1", "user_id": "u1", "status": "left"}})
	if s.Communities.store.Members.Len() != 0 {
		t.Fatalf("member kept after leaving")
	}
}

func TestMemberEnrichmentFailureDropsEvent(t *testing.T) {
	q := newFakeRows()
	q.failures[model.TablePublicProfile] = errBoom
	s, feed := viewingSession(t, q)

	feed.emit(model.TableCommunityUser, realtime.Insert{New: rows.Row{"community_id": "c1", "user_id": "u1", "status": "joined"}})

	if s.Communities.store.Members.Len() != 0 {
		t.Fatalf("member stored without enrichment")
	}
}

func TestLibraryInsertLooksUpOnce(t *testing.T) {
	q := newFakeRows()
	q.tables[model.TablePublicProfile] = []rows.Row{{"user_id": "u1", "username": "alice"}}
	s, feed := watchedSession(t, q)

	feed.emit(model.TableUserLibrary, realtime.Insert{New: rows.Row{"user_id": "viewer", "followed_user_id": "u1"}})

	entry, ok := s.Library.store.Entries.Get("u1")
	if !ok || entry.Username != "alice" {
		t.Fatalf("entry = %+v, %v, want alice", entry, ok)
	}
	if n := q.callsTo(model.TablePublicProfile); n != 1 {
		t.Fatalf("profile lookups = %d, want 1", n)
	}

	feed.emit(model.TableUserLibrary, realtime.Delete{Old: rows.Row{"followed_user_id": "u1"}})
	if s.Library.store.Entries.Len() != 0 {
		t.Fatalf("entry kept after delete")
	}
}

func TestLibraryUnknownProfileDropsEvent(t *testing.T) {
	s, feed := watchedSession(t, newFakeRows())
	feed.emit(model.TableUserLibrary, realtime.Insert{New: rows.Row{"user_id": "viewer", "followed_user_id": "ghost"}})
	if s.Library.store.Entries.Len() != 0 {
		t.Fatalf("entry stored without a profile")
	}
}

func TestLookupProfileErrors(t *testing.T) {
	_, err := lookupProfile(context.Background(), newFakeRows(), "ghost")
	if err == nil {
		t.Fatalf("lookupProfile() error = nil")
	}
	q := newFakeRows()
	q.failures[model.TablePublicProfile] = errBoom
	_, err = lookupProfile(context.Background(), q, "u1")
	if !errors.Is(err, errBoom) {
		t.Fatalf("lookupProfile() error = %v, want boom", err)
	}
}

func TestProfileUpdateRewritesUsernames(t *testing.T) {
	s, feed := viewingSession(t, newFakeRows())
	s.Library.store.Entries.UpsertOne(model.LibraryEntry{UserID: "viewer", FollowedUserID: "u1", Username: "alice"})
	s.Communities.store.Members.UpsertOne(model.Membership{CommunityID: "c1", UserID: "u1", Username: "alice"})
	s.Communities.store.Members.UpsertOne(model.Membership{CommunityID: "c1", UserID: "u2", Username: "bob"})

	feed.emit(model.TablePublicProfile, realtime.Update{New: rows.Row{"user_id": "u1", "username": "alicia"}})
	feed.emit(model.TablePublicProfile, realtime.Update{New: rows.Row{"user_id": "u9", "username": "nobody"}})

	if e, _ := s.Library.store.Entries.Get("u1"); e.Username != "alicia" {
		t.Fatalf("library username = %q, want alicia", e.Username)
	}
	if m, _ := s.Communities.store.Members.Get(model.MembershipKey("c1", "u1")); m.Username != "alicia" {
		t.Fatalf("member username = %q, want alicia", m.Username)
	}
	if m, _ := s.Communities.store.Members.Get(model.MembershipKey("c1", "u2")); m.Username != "bob" {
		t.Fatalf("other member username = %q, want bob", m.Username)
	}
	if s.Library.store.Entries.Len() != 1 {
		t.Fatalf("untracked profile created an entry")
	}
}

func TestWatchFailureTearsDown(t *testing.T) {
	feed := &fakeFeed{fail: errBoom}
	s := newTestSession(t, newFakeRows(), newFakeBackend(), feed)
	if err := s.Watch(context.Background()); !errors.Is(err, errBoom) {
		t.Fatalf("Watch() error = %v, want boom", err)
	}
	if feed.live() != 0 {
		t.Fatalf("live subscriptions = %d, want 0", feed.live())
	}
}

func TestSignOutResetsEverySlice(t *testing.T) {
	s, feed := viewingSession(t, newFakeRows())
	seedInvitations(s)
	s.Library.store.Entries.UpsertOne(model.LibraryEntry{FollowedUserID: "u1"})
	s.Communities.store.Communities.UpsertOne(model.Community{ID: "c1"})
	s.Communities.store.Members.UpsertOne(model.Membership{CommunityID: "c1", UserID: "u1"})
	s.Library.store.Status.SetError("stale")
	s.Invitations.store.Status.SetLoading(true)

	s.SignOut()

	snap := s.Snapshot()
	if len(snap.Communities.Communities) != 0 || snap.Communities.Detail != nil || len(snap.Communities.Members) != 0 {
		t.Fatalf("communities not reset: %+v", snap.Communities)
	}
	if len(snap.Invitations.Communities) != 0 || len(snap.Invitations.Events) != 0 || snap.Invitations.Loading {
		t.Fatalf("invitations not reset: %+v", snap.Invitations)
	}
	if len(snap.Library.Entries) != 0 || snap.Library.Error != "" {
		t.Fatalf("library not reset: %+v", snap.Library)
	}
	if feed.live() != 0 {
		t.Fatalf("live subscriptions = %d, want 0", feed.live())
	}
}
