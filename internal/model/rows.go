package model

import (
	"github.com/five82/circle/internal/apperr"
	"github.com/five82/circle/internal/rows"
)

// Table names used by the hydration queries and realtime feeds. Every table
// keys its rows by <entity>_id (community_id, event_id, user_id).
const (
	TableCommunity      = "community"
	TableCommunityUser  = "community_user"
	TableCommunityEvent = "community_event"
	TableEvent          = "event"
	TableEventUser      = "event_user"
	TableUserLibrary    = "user_library"
	TablePublicProfile  = "public_profile"
	TableSong           = "song"
	TablePlaylist       = "playlist"
)

// CommunityCols lists the community columns read during hydration.
var CommunityCols = []string{
	"community_id", "owner_id", "name", "slug", "description", "public",
	"public_notes", "private_notes", "created_at", "updated_at",
}

// CommunityFromRow decodes a community row.
func CommunityFromRow(r rows.Row) (Community, error) {
	id, err := r.ID("community_id")
	if err != nil {
		return Community{}, err
	}
	slug, ok := r.String("slug")
	if !ok {
		return Community{}, apperr.Shape("community %s has no slug", id)
	}
	return Community{
		ID:           id,
		OwnerID:      r.Text("owner_id"),
		Name:         r.Text("name"),
		Slug:         slug,
		Description:  r.NullableText("description"),
		Public:       r.Bool("public"),
		PublicNotes:  r.Text("public_notes"),
		PrivateNotes: r.Text("private_notes"),
		CreatedAt:    r.Time("created_at"),
		UpdatedAt:    r.Time("updated_at"),
	}, nil
}

// MembershipCols lists the community_user columns read during hydration.
var MembershipCols = []string{"community_id", "user_id", "role", "status", "joined_at"}

// LibraryCols lists the user_library columns read during hydration.
var LibraryCols = []string{"user_id", "followed_user_id", "created_at"}

// ProfileCols lists the public_profile columns read during hydration.
var ProfileCols = []string{"user_id", "username"}

// MembershipFromRow decodes a community_user row. Username is left empty.
func MembershipFromRow(r rows.Row) (Membership, error) {
	communityID, err := r.ID("community_id")
	if err != nil {
		return Membership{}, err
	}
	userID, err := r.ID("user_id")
	if err != nil {
		return Membership{}, err
	}
	status := Status(r.Text("status"))
	switch status {
	case StatusInvited, StatusJoined, StatusLeft, StatusKicked:
	default:
		return Membership{}, apperr.Shape("membership %s has status %q", MembershipKey(communityID, userID), status)
	}
	role := Role(r.Text("role"))
	if role == "" {
		role = RoleMember
	}
	if !role.Valid() {
		return Membership{}, apperr.Shape("membership %s has role %q", MembershipKey(communityID, userID), role)
	}
	return Membership{
		CommunityID: communityID,
		UserID:      userID,
		Role:        role,
		Status:      status,
		JoinedAt:    r.Time("joined_at"),
	}, nil
}

// LibraryEntryFromRow decodes a user_library row. Username is left empty.
func LibraryEntryFromRow(r rows.Row) (LibraryEntry, error) {
	userID, err := r.ID("user_id")
	if err != nil {
		return LibraryEntry{}, err
	}
	followed, err := r.ID("followed_user_id")
	if err != nil {
		return LibraryEntry{}, err
	}
	return LibraryEntry{
		UserID:         userID,
		FollowedUserID: followed,
		CreatedAt:      r.Time("created_at"),
	}, nil
}

// ProfileFromRow decodes a public_profile row.
func ProfileFromRow(r rows.Row) (Profile, error) {
	id, err := r.ID("user_id")
	if err != nil {
		return Profile{}, err
	}
	username, ok := r.String("username")
	if !ok {
		return Profile{}, apperr.Shape("profile %s has no username", id)
	}
	return Profile{UserID: id, Username: username}, nil
}
