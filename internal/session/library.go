package session

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/five82/circle/internal/apperr"
	"github.com/five82/circle/internal/lifecycle"
	"github.com/five82/circle/internal/model"
	"github.com/five82/circle/internal/realtime"
	"github.com/five82/circle/internal/rows"
	"github.com/five82/circle/internal/state"
)

// Library is the set of users the viewer follows.
type Library struct {
	deps
	store state.LibraryStore
	run   runner
	log   zerolog.Logger
	subs  subscriptions
}

func newLibrary(d deps, registry *lifecycle.Registry, logger zerolog.Logger) *Library {
	l := &Library{deps: d}
	l.log = logger.With().Str("domain", string(state.DomainUserLibrary)).Logger()
	l.run = runner{status: &l.store.Status, log: l.log}
	registry.Register(string(state.DomainUserLibrary), func() {
		l.subs.stop()
		l.store.Reset()
	})
	return l
}

// Snapshot copies the library slice.
func (l *Library) Snapshot() state.LibrarySnapshot {
	return l.store.Snapshot()
}

// Fetch reloads the followed users with their usernames.
func (l *Library) Fetch(ctx context.Context) ([]model.LibraryEntry, error) {
	err := l.run.fetch(ctx, "user library", func(ctx context.Context) error {
		recs, err := l.rows.Select(ctx, model.TableUserLibrary, rows.Select(model.LibraryCols...).Where("user_id", l.viewer))
		if err != nil {
			return fmt.Errorf("%s: %w", model.TableUserLibrary, err)
		}
		if len(recs) == 0 {
			l.store.Entries.SetAll(nil)
			return nil
		}
		usernames, err := fetchUsernames(ctx, l.rows, collectIDs(recs, "followed_user_id"))
		if err != nil {
			return fmt.Errorf("%s: %w", model.TablePublicProfile, err)
		}
		out := make([]model.LibraryEntry, 0, len(recs))
		for _, rec := range recs {
			entry, err := model.LibraryEntryFromRow(rec)
			if err != nil {
				l.log.Warn().Err(err).Msg("skipping library row")
				continue
			}
			username, ok := usernames[entry.FollowedUserID]
			if !ok {
				continue
			}
			entry.Username = username
			out = append(out, entry)
		}
		l.store.Entries.SetAll(out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return l.store.Entries.All(), nil
}

// Follow adds a user to the library. The entry arrives through realtime.
func (l *Library) Follow(ctx context.Context, followedUserID string) error {
	return l.run.act(ctx, "follow", []field{{"followed_user_id", followedUserID}},
		func(ctx context.Context) error { return l.backend.FollowUser(ctx, followedUserID) }, nil)
}

// Unfollow removes a user from the library, then removes every song and
// playlist of theirs the viewer holds. Cascade failures are logged and do not
// fail the unfollow.
func (l *Library) Unfollow(ctx context.Context, followedUserID string, owned []model.OwnedItem) error {
	return l.run.act(ctx, "unfollow", []field{{"followed_user_id", followedUserID}},
		func(ctx context.Context) error { return l.backend.UnfollowUser(ctx, followedUserID) },
		func() {
			l.store.Entries.RemoveOne(followedUserID)
			l.cascade(ctx, followedUserID, owned)
		})
}

func (l *Library) cascade(ctx context.Context, followedUserID string, owned []model.OwnedItem) {
	var g errgroup.Group
	for _, item := range owned {
		g.Go(func() error {
			var err error
			switch item.Kind {
			case model.OwnedSong:
				err = l.backend.RemoveSong(ctx, item.ID)
			case model.OwnedPlaylist:
				err = l.backend.RemovePlaylist(ctx, item.ID)
			default:
				err = fmt.Errorf("unknown owned kind %q", item.Kind)
			}
			if err != nil {
				l.log.Warn().Err(err).
					Str("followed_user_id", followedUserID).
					Str("kind", string(item.Kind)).
					Str("id", item.ID).
					Msg("cascade removal failed")
			}
			return nil
		})
	}
	_ = g.Wait()
}

// Watch subscribes to the viewer's user_library rows.
func (l *Library) Watch(ctx context.Context) error {
	l.subs.stop()
	if l.feed == nil {
		return nil
	}
	unsubscribe, err := l.feed.Subscribe(ctx, model.TableUserLibrary, realtime.Eq("user_id", l.viewer), func(ev realtime.Event) {
		l.apply(ctx, ev)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", model.TableUserLibrary, err)
	}
	l.subs.add(unsubscribe)
	return nil
}

// Unwatch tears down the library subscription.
func (l *Library) Unwatch() {
	l.subs.stop()
}

// Owned lists the songs and playlists followedUserID owns, for Unfollow's
// cascade.
func (l *Library) Owned(ctx context.Context, followedUserID string) ([]model.OwnedItem, error) {
	if err := apperr.RequireID("followed_user_id", followedUserID); err != nil {
		return nil, err
	}
	sources := []struct {
		kind  model.OwnedKind
		table string
		idCol string
	}{
		{model.OwnedSong, model.TableSong, "song_id"},
		{model.OwnedPlaylist, model.TablePlaylist, "playlist_id"},
	}
	found := make([][]model.OwnedItem, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			recs, err := l.rows.Select(gctx, src.table, rows.Select(src.idCol).Where("user_id", followedUserID))
			if err != nil {
				return fmt.Errorf("%s: %w", src.table, err)
			}
			for _, id := range collectIDs(recs, src.idCol) {
				found[i] = append(found[i], model.OwnedItem{Kind: src.kind, ID: id})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return append(found[0], found[1]...), nil
}
