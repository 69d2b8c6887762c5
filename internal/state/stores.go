package state

import (
	"sync"

	"github.com/five82/circle/internal/model"
)

// Domain names one independently loading/erroring slice.
type Domain string

const (
	DomainCommunity   Domain = "community"
	DomainInvitation  Domain = "invitation"
	DomainUserLibrary Domain = "user-library"
)

// CommunityStore holds the viewer's communities and the community being viewed.
type CommunityStore struct {
	Communities Table[model.Community]
	Members     Table[model.Membership]
	Events      Table[model.CommunityEvent]
	Status      Status

	mu     sync.RWMutex
	detail *model.Community
}

// SetDetail replaces the viewed community; nil clears it.
func (s *CommunityStore) SetDetail(c *model.Community) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c == nil {
		s.detail = nil
		return
	}
	dup := *c
	s.detail = &dup
}

// Detail returns a copy of the viewed community.
func (s *CommunityStore) Detail() (model.Community, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.detail == nil {
		return model.Community{}, false
	}
	return *s.detail, true
}

// CommunitySnapshot is a point-in-time copy of a CommunityStore.
type CommunitySnapshot struct {
	Communities []model.Community      `json:"communities"`
	Detail      *model.Community       `json:"detail,omitempty"`
	Members     []model.Membership     `json:"members"`
	Events      []model.CommunityEvent `json:"events"`
	Loading     bool                   `json:"loading"`
	Error       string                 `json:"error,omitempty"`
}

// Snapshot copies the store.
func (s *CommunityStore) Snapshot() CommunitySnapshot {
	snap := CommunitySnapshot{
		Communities: s.Communities.All(),
		Members:     s.Members.All(),
		Events:      s.Events.All(),
		Loading:     s.Status.Loading(),
		Error:       s.Status.Err(),
	}
	if detail, ok := s.Detail(); ok {
		snap.Detail = &detail
	}
	return snap
}

// Reset returns the store to its initial empty state.
func (s *CommunityStore) Reset() {
	s.Communities.Clear()
	s.Members.Clear()
	s.Events.Clear()
	s.SetDetail(nil)
	s.Status.Reset()
}

// InvitationStore holds the viewer's pending invitations.
type InvitationStore struct {
	Communities Table[model.Invitation]
	Events      Table[model.Invitation]
	Status      Status
}

// Pending returns the table for kind.
func (s *InvitationStore) Pending(kind model.InvitationKind) *Table[model.Invitation] {
	if kind == model.InvitationEvent {
		return &s.Events
	}
	return &s.Communities
}

// InvitationSnapshot is a point-in-time copy of an InvitationStore.
type InvitationSnapshot struct {
	Communities []model.Invitation `json:"communities"`
	Events      []model.Invitation `json:"events"`
	Loading     bool               `json:"loading"`
	Error       string             `json:"error,omitempty"`
}

// Snapshot copies the store.
func (s *InvitationStore) Snapshot() InvitationSnapshot {
	return InvitationSnapshot{
		Communities: s.Communities.All(),
		Events:      s.Events.All(),
		Loading:     s.Status.Loading(),
		Error:       s.Status.Err(),
	}
}

// Reset returns the store to its initial empty state.
func (s *InvitationStore) Reset() {
	s.Communities.Clear()
	s.Events.Clear()
	s.Status.Reset()
}

// LibraryStore holds the users the viewer follows.
type LibraryStore struct {
	Entries Table[model.LibraryEntry]
	Status  Status
}

// LibrarySnapshot is a point-in-time copy of a LibraryStore.
type LibrarySnapshot struct {
	Entries []model.LibraryEntry `json:"entries"`
	Loading bool                 `json:"loading"`
	Error   string               `json:"error,omitempty"`
}

// Snapshot copies the store.
func (s *LibraryStore) Snapshot() LibrarySnapshot {
	return LibrarySnapshot{
		Entries: s.Entries.All(),
		Loading: s.Status.Loading(),
		Error:   s.Status.Err(),
	}
}

// Reset returns the store to its initial empty state.
func (s *LibraryStore) Reset() {
	s.Entries.Clear()
	s.Status.Reset()
}
