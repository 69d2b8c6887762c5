package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/five82/circle/internal/lifecycle"
	"github.com/five82/circle/internal/model"
	"github.com/five82/circle/internal/realtime"
	"github.com/five82/circle/internal/rows"
	"github.com/five82/circle/internal/state"
)

// Backend performs the remote side of every user action. *api.Client
// implements it.
type Backend interface {
	JoinCommunity(ctx context.Context, communityID string) error
	LeaveCommunity(ctx context.Context, communityID string) error
	AddCommunityMember(ctx context.Context, communityID, userID string, role model.Role) error
	KickCommunityMember(ctx context.Context, communityID, userID string) error
	SaveCommunity(ctx context.Context, c model.Community) (model.Community, error)
	JoinEvent(ctx context.Context, eventID string) error
	LeaveEvent(ctx context.Context, eventID, userID string) error
	FollowUser(ctx context.Context, followedUserID string) error
	UnfollowUser(ctx context.Context, followedUserID string) error
	RemoveSong(ctx context.Context, songID string) error
	RemovePlaylist(ctx context.Context, playlistID string) error
}

// Options configure a Session.
type Options struct {
	// ViewerID is the signed-in user.
	ViewerID string
	Backend  Backend
	Rows     rows.Querier
	// Feed is optional; without it Watch is a no-op and state only changes
	// through fetches and actions.
	Feed   realtime.Feed
	Logger zerolog.Logger
	// Registry is optional; New creates one when nil.
	Registry *lifecycle.Registry
}

// Session owns the domain slices of one signed-in user and the registry that
// resets them on sign-out.
type Session struct {
	viewer   string
	feed     realtime.Feed
	registry *lifecycle.Registry
	log      zerolog.Logger
	profiles subscriptions

	Communities *Communities
	Invitations *Invitations
	Library     *Library
}

// New builds a Session and registers every slice's reset callback.
func New(opts Options) (*Session, error) {
	viewer := strings.TrimSpace(opts.ViewerID)
	if viewer == "" {
		return nil, fmt.Errorf("session requires a viewer id")
	}
	if opts.Backend == nil {
		return nil, fmt.Errorf("session requires a backend")
	}
	if opts.Rows == nil {
		return nil, fmt.Errorf("session requires a row querier")
	}
	registry := opts.Registry
	if registry == nil {
		registry = lifecycle.NewRegistry()
	}

	d := deps{
		viewer:  viewer,
		backend: opts.Backend,
		rows:    opts.Rows,
		feed:    opts.Feed,
	}
	s := &Session{
		viewer:   viewer,
		feed:     opts.Feed,
		registry: registry,
		log:      opts.Logger.With().Str("component", "session").Logger(),
	}
	s.Communities = newCommunities(d, registry, opts.Logger)
	s.Invitations = newInvitations(d, registry, opts.Logger)
	s.Library = newLibrary(d, registry, opts.Logger)
	registry.Register("public-profile", s.profiles.stop)
	return s, nil
}

// ViewerID returns the signed-in user.
func (s *Session) ViewerID() string {
	return s.viewer
}

// Registry returns the session's lifecycle registry.
func (s *Session) Registry() *lifecycle.Registry {
	return s.registry
}

// Hydrate runs every list fetch concurrently. Each domain records its own
// error; the joined error is returned for the caller's convenience.
func (s *Session) Hydrate(ctx context.Context) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	fetches := []func(context.Context) error{
		func(ctx context.Context) error { _, err := s.Communities.FetchMine(ctx); return err },
		func(ctx context.Context) error { _, err := s.Invitations.Fetch(ctx); return err },
		func(ctx context.Context) error { _, err := s.Library.Fetch(ctx); return err },
	}
	for _, fetch := range fetches {
		g.Go(func() error {
			if err := fetch(ctx); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// Watch subscribes the invitation, library and profile feeds. Subscriptions
// started before a failure are torn down again.
func (s *Session) Watch(ctx context.Context) error {
	if s.feed == nil {
		return nil
	}
	if err := s.Invitations.Watch(ctx); err != nil {
		return err
	}
	if err := s.Library.Watch(ctx); err != nil {
		s.Invitations.Unwatch()
		return err
	}
	if err := s.watchProfiles(ctx); err != nil {
		s.Invitations.Unwatch()
		s.Library.Unwatch()
		return err
	}
	return nil
}

// SignOut resets every slice to its initial empty state and tears down all
// subscriptions.
func (s *Session) SignOut() {
	s.log.Info().Msg("resetting session state")
	s.registry.ResetAll()
}

func (s *Session) watchProfiles(ctx context.Context) error {
	s.profiles.stop()
	unsubscribe, err := s.feed.Subscribe(ctx, model.TablePublicProfile, "", func(ev realtime.Event) {
		s.applyProfile(ev)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", model.TablePublicProfile, err)
	}
	s.profiles.add(unsubscribe)
	return nil
}

// deps are the collaborators shared by every slice.
type deps struct {
	viewer  string
	backend Backend
	rows    rows.Querier
	feed    realtime.Feed
}

// subscriptions tracks the teardown functions a slice owns.
type subscriptions struct {
	mu      sync.Mutex
	cancels []func()
}

func (s *subscriptions) add(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancels = append(s.cancels, fn)
}

func (s *subscriptions) stop() {
	s.mu.Lock()
	cancels := s.cancels
	s.cancels = nil
	s.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
}

// Snapshot is a point-in-time copy of every slice.
type Snapshot struct {
	Communities state.CommunitySnapshot `json:"communities"`
	Invitations state.InvitationSnapshot `json:"invitations"`
	Library     state.LibrarySnapshot    `json:"library"`
}

// Snapshot copies every slice.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Communities: s.Communities.Snapshot(),
		Invitations: s.Invitations.Snapshot(),
		Library:     s.Library.Snapshot(),
	}
}
