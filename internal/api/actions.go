package api

import (
	"context"

	"github.com/five82/circle/internal/apperr"
	"github.com/five82/circle/internal/model"
)

// Action paths, relative to the API prefix.
const (
	PathCommunityJoin  = "community/user/join"
	PathCommunityLeave = "community/user/remove"
	PathCommunityAdd   = "community/user/add"
	PathCommunityKick  = "community/user/kick"
	PathCommunitySave  = "community/save"
	PathEventJoin      = "event/user/join"
	PathEventLeave     = "event/user/remove"
	PathLibraryAdd     = "user-library/add"
	PathLibraryRemove  = "user-library/remove"
	PathSongRemove     = "song-library/remove"
	PathPlaylistRemove = "playlist-library/remove"
)

type communityBody struct {
	CommunityID string `json:"community_id"`
}

type memberBody struct {
	CommunityID string       `json:"community_id"`
	UserID      string       `json:"user_id"`
	Role        model.Role   `json:"role,omitempty"`
	Status      model.Status `json:"status,omitempty"`
}

type eventBody struct {
	EventID string `json:"event_id"`
	UserID  string `json:"user_id,omitempty"`
}

type followBody struct {
	FollowedUserID string `json:"followed_user_id"`
}

// JoinCommunity joins (or accepts an invitation to) a community.
func (c *Client) JoinCommunity(ctx context.Context, communityID string) error {
	return c.post(ctx, PathCommunityJoin, communityBody{CommunityID: communityID}, nil)
}

// LeaveCommunity leaves a community or declines its invitation.
func (c *Client) LeaveCommunity(ctx context.Context, communityID string) error {
	return c.post(ctx, PathCommunityLeave, communityBody{CommunityID: communityID}, nil)
}

// AddCommunityMember invites userID into a community with role.
func (c *Client) AddCommunityMember(ctx context.Context, communityID, userID string, role model.Role) error {
	return c.post(ctx, PathCommunityAdd, memberBody{
		CommunityID: communityID,
		UserID:      userID,
		Role:        role,
		Status:      model.StatusInvited,
	}, nil)
}

// KickCommunityMember removes userID from a community.
func (c *Client) KickCommunityMember(ctx context.Context, communityID, userID string) error {
	return c.post(ctx, PathCommunityKick, memberBody{CommunityID: communityID, UserID: userID}, nil)
}

// SaveCommunity stores c and returns the server's copy.
func (c *Client) SaveCommunity(ctx context.Context, community model.Community) (model.Community, error) {
	var saved model.Community
	if err := c.post(ctx, PathCommunitySave, community, &saved); err != nil {
		return model.Community{}, err
	}
	if saved.ID == "" || saved.Slug == "" {
		return model.Community{}, apperr.Shape("saved community is missing id or slug")
	}
	return saved, nil
}

// JoinEvent accepts an event invitation.
func (c *Client) JoinEvent(ctx context.Context, eventID string) error {
	return c.post(ctx, PathEventJoin, eventBody{EventID: eventID}, nil)
}

// LeaveEvent declines an event invitation for userID.
func (c *Client) LeaveEvent(ctx context.Context, eventID, userID string) error {
	return c.post(ctx, PathEventLeave, eventBody{EventID: eventID, UserID: userID}, nil)
}

// FollowUser adds a user to the viewer's library.
func (c *Client) FollowUser(ctx context.Context, followedUserID string) error {
	return c.post(ctx, PathLibraryAdd, followBody{FollowedUserID: followedUserID}, nil)
}

// UnfollowUser removes a user from the viewer's library.
func (c *Client) UnfollowUser(ctx context.Context, followedUserID string) error {
	return c.post(ctx, PathLibraryRemove, followBody{FollowedUserID: followedUserID}, nil)
}

// RemoveSong removes a song from the viewer's library.
func (c *Client) RemoveSong(ctx context.Context, songID string) error {
	return c.post(ctx, PathSongRemove, map[string]string{"song_id": songID}, nil)
}

// RemovePlaylist removes a playlist from the viewer's library.
func (c *Client) RemovePlaylist(ctx context.Context, playlistID string) error {
	return c.post(ctx, PathPlaylistRemove, map[string]string{"playlist_id": playlistID}, nil)
}
