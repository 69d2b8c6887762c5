// Package model defines the entities tracked by the sync layer and the row
// decoders that validate their shape.
package model

import (
	"regexp"
	"time"
)

// Role is a member's role in a community.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// Status is a membership or invitation state.
type Status string

const (
	StatusInvited Status = "invited"
	StatusJoined  Status = "joined"
	StatusLeft    Status = "left"
	StatusKicked  Status = "kicked"
)

// Active reports whether the status keeps the member listed.
func (s Status) Active() bool {
	return s == StatusInvited || s == StatusJoined
}

// Community is a community record.
type Community struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  *string   `json:"description"`
	Public       bool      `json:"public"`
	PublicNotes  string    `json:"public_notes"`
	PrivateNotes string    `json:"private_notes"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Key returns the community id.
func (c Community) Key() string { return c.ID }

var slugRE = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidSlug reports whether slug is lowercase, URL-safe and hyphen separated.
func ValidSlug(slug string) bool {
	return slugRE.MatchString(slug)
}

// Membership links a user to a community.
type Membership struct {
	CommunityID string    `json:"community_id"`
	UserID      string    `json:"user_id"`
	Role        Role      `json:"role"`
	Status      Status    `json:"status"`
	JoinedAt    time.Time `json:"joined_at"`
	// Username is filled in client-side from the public profile table.
	Username string `json:"username"`
}

// MembershipKey builds the composite key of a membership.
func MembershipKey(communityID, userID string) string {
	return communityID + "/" + userID
}

// Key returns community_id/user_id.
func (m Membership) Key() string { return MembershipKey(m.CommunityID, m.UserID) }

// NormalizeRole forces the owner role for the community owner.
func (m Membership) NormalizeRole(ownerID string) Membership {
	if ownerID != "" && m.UserID == ownerID {
		m.Role = RoleOwner
	}
	return m
}

// CommunityEvent links an event to a community.
type CommunityEvent struct {
	CommunityID string `json:"community_id"`
	EventID     string `json:"event_id"`
	EventName   string `json:"event_name"`
	EventSlug   string `json:"event_slug"`
}

// Key returns community_id/event_id.
func (e CommunityEvent) Key() string { return e.CommunityID + "/" + e.EventID }

// InvitationKind distinguishes community and event invitations.
type InvitationKind string

const (
	InvitationCommunity InvitationKind = "community"
	InvitationEvent     InvitationKind = "event"
)

// Invitation is a pending invitation for the viewer.
type Invitation struct {
	ID   string         `json:"id"`
	Kind InvitationKind `json:"kind"`
	Name string         `json:"name"`
	Slug string         `json:"slug"`
	// Accepted is set locally once the accept call succeeds, before the
	// authoritative removal arrives.
	Accepted bool `json:"accepted,omitempty"`
}

// Key returns the community or event id.
func (i Invitation) Key() string { return i.ID }

// PlaceholderInvitation builds an invitation known only by id. Name and Slug
// hold the id until the next full fetch replaces them.
func PlaceholderInvitation(kind InvitationKind, id string) Invitation {
	return Invitation{ID: id, Kind: kind, Name: id, Slug: id}
}

// IsPlaceholder reports whether the display fields are still the raw id.
func (i Invitation) IsPlaceholder() bool {
	return i.Name == i.ID && i.Slug == i.ID
}

// LibraryEntry is a follows edge from the viewer to another user.
type LibraryEntry struct {
	UserID         string    `json:"user_id"`
	FollowedUserID string    `json:"followed_user_id"`
	CreatedAt      time.Time `json:"created_at"`
	Username       string    `json:"username"`
}

// Key returns the followed user id.
func (e LibraryEntry) Key() string { return e.FollowedUserID }

// Profile is a public profile row.
type Profile struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// OwnedKind is the kind of library item a followed user can own.
type OwnedKind string

const (
	OwnedSong     OwnedKind = "song"
	OwnedPlaylist OwnedKind = "playlist"
)

// OwnedItem is a song or playlist owned by a followed user.
type OwnedItem struct {
	Kind OwnedKind `json:"kind"`
	ID   string    `json:"id"`
}
