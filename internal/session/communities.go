package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/five82/circle/internal/apperr"
	"github.com/five82/circle/internal/lifecycle"
	"github.com/five82/circle/internal/model"
	"github.com/five82/circle/internal/realtime"
	"github.com/five82/circle/internal/rows"
	"github.com/five82/circle/internal/state"
)

// Communities is the viewer's joined communities and the community detail
// currently on screen.
type Communities struct {
	deps
	store state.CommunityStore
	run   runner
	log   zerolog.Logger
	subs  subscriptions
}

func newCommunities(d deps, registry *lifecycle.Registry, logger zerolog.Logger) *Communities {
	c := &Communities{deps: d}
	c.log = logger.With().Str("domain", string(state.DomainCommunity)).Logger()
	c.run = runner{status: &c.store.Status, log: c.log}
	registry.Register(string(state.DomainCommunity), func() {
		c.subs.stop()
		c.store.Reset()
	})
	return c
}

// Snapshot copies the community slice.
func (c *Communities) Snapshot() state.CommunitySnapshot {
	return c.store.Snapshot()
}

// FetchMine reloads the communities the viewer has joined.
func (c *Communities) FetchMine(ctx context.Context) ([]model.Community, error) {
	err := c.run.fetch(ctx, "communities", func(ctx context.Context) error {
		edges, err := c.rows.Select(ctx, model.TableCommunityUser, rows.Select("community_id").
			Where("user_id", c.viewer).
			Where("status", string(model.StatusJoined)))
		if err != nil {
			return fmt.Errorf("%s: %w", model.TableCommunityUser, err)
		}
		if len(edges) == 0 {
			c.store.Communities.SetAll(nil)
			return nil
		}
		recs, err := c.rows.Select(ctx, model.TableCommunity, rows.Select(model.CommunityCols...).
			WhereIn("community_id", collectIDs(edges, "community_id")))
		if err != nil {
			return fmt.Errorf("%s: %w", model.TableCommunity, err)
		}
		byID := make(map[string]model.Community, len(recs))
		for _, rec := range recs {
			community, err := model.CommunityFromRow(rec)
			if err != nil {
				c.log.Warn().Err(err).Msg("skipping community row")
				continue
			}
			byID[community.ID] = community
		}
		out := make([]model.Community, 0, len(edges))
		for _, id := range collectIDs(edges, "community_id") {
			if community, ok := byID[id]; ok {
				out = append(out, community)
			}
		}
		c.store.Communities.SetAll(out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.store.Communities.All(), nil
}

// FetchBySlug loads one community with its members and events. A slug that
// matches nothing clears the detail and returns nil.
func (c *Communities) FetchBySlug(ctx context.Context, slug string) (*model.Community, error) {
	var found *model.Community
	err := c.run.fetch(ctx, "community", func(ctx context.Context) error {
		slug = strings.TrimSpace(slug)
		if !model.ValidSlug(slug) {
			return fmt.Errorf("%w: slug %q", apperr.ErrValidation, slug)
		}
		recs, err := c.rows.Select(ctx, model.TableCommunity, rows.Select(model.CommunityCols...).Where("slug", slug))
		if err != nil {
			return fmt.Errorf("%s: %w", model.TableCommunity, err)
		}
		if len(recs) == 0 {
			c.store.SetDetail(nil)
			c.store.Members.SetAll(nil)
			c.store.Events.SetAll(nil)
			return nil
		}
		community, err := model.CommunityFromRow(recs[0])
		if err != nil {
			return err
		}

		var (
			members []model.Membership
			events  []model.CommunityEvent
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			members, err = c.loadMembers(gctx, community)
			return err
		})
		g.Go(func() error {
			var err error
			events, err = c.loadEvents(gctx, community.ID)
			return err
		})
		if err := g.Wait(); err != nil {
			return err
		}

		c.store.SetDetail(&community)
		c.store.Members.SetAll(members)
		c.store.Events.SetAll(events)
		found = &community
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (c *Communities) loadMembers(ctx context.Context, community model.Community) ([]model.Membership, error) {
	recs, err := c.rows.Select(ctx, model.TableCommunityUser, rows.Select(model.MembershipCols...).
		Where("community_id", community.ID).
		WhereIn("status", []string{string(model.StatusJoined), string(model.StatusInvited)}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", model.TableCommunityUser, err)
	}
	if len(recs) == 0 {
		return nil, nil
	}
	usernames, err := fetchUsernames(ctx, c.rows, collectIDs(recs, "user_id"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", model.TablePublicProfile, err)
	}
	out := make([]model.Membership, 0, len(recs))
	for _, rec := range recs {
		m, err := membershipFromRow(rec, community.ID)
		if err != nil {
			c.log.Warn().Err(err).Msg("skipping membership row")
			continue
		}
		username, ok := usernames[m.UserID]
		if !ok {
			continue
		}
		m.Username = username
		out = append(out, m.NormalizeRole(community.OwnerID))
	}
	return out, nil
}

func (c *Communities) loadEvents(ctx context.Context, communityID string) ([]model.CommunityEvent, error) {
	edges, err := c.rows.Select(ctx, model.TableCommunityEvent, rows.Select("community_id", "event_id").
		Where("community_id", communityID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", model.TableCommunityEvent, err)
	}
	if len(edges) == 0 {
		return nil, nil
	}
	public, err := c.rows.Select(ctx, model.TableEvent, rows.Select("event_id", "name", "slug").
		WhereIn("event_id", collectIDs(edges, "event_id")))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", model.TableEvent, err)
	}
	byID := indexDisplay(public, "event_id")
	out := make([]model.CommunityEvent, 0, len(edges))
	for _, id := range collectIDs(edges, "event_id") {
		d, ok := byID[id]
		if !ok {
			continue
		}
		out = append(out, model.CommunityEvent{CommunityID: communityID, EventID: id, EventName: d.name, EventSlug: d.slug})
	}
	return out, nil
}

// membershipFromRow decodes rec, filling community_id when the row omits it.
func membershipFromRow(rec rows.Row, communityID string) (model.Membership, error) {
	if _, ok := rec.String("community_id"); !ok && communityID != "" {
		rec = rec.Clone()
		rec["community_id"] = communityID
	}
	return model.MembershipFromRow(rec)
}

// Join asks to join a community. State follows through realtime or refetch.
func (c *Communities) Join(ctx context.Context, communityID string) error {
	return c.run.act(ctx, "join-community", []field{{"community_id", communityID}},
		func(ctx context.Context) error { return c.backend.JoinCommunity(ctx, communityID) }, nil)
}

// Leave leaves a community.
func (c *Communities) Leave(ctx context.Context, communityID string) error {
	return c.run.act(ctx, "leave-community", []field{{"community_id", communityID}},
		func(ctx context.Context) error { return c.backend.LeaveCommunity(ctx, communityID) }, nil)
}

// AddMember invites userID into a community with role.
func (c *Communities) AddMember(ctx context.Context, communityID, userID string, role model.Role) error {
	return c.run.act(ctx, "add-member", []field{{"community_id", communityID}, {"user_id", userID}},
		func(ctx context.Context) error {
			if !role.Valid() {
				return fmt.Errorf("%w: role %q", apperr.ErrValidation, role)
			}
			return c.backend.AddCommunityMember(ctx, communityID, userID, role)
		}, nil)
}

// Kick removes a member and drops them from the member list.
func (c *Communities) Kick(ctx context.Context, communityID, userID string) error {
	return c.run.act(ctx, "kick-member", []field{{"community_id", communityID}, {"user_id", userID}},
		func(ctx context.Context) error { return c.backend.KickCommunityMember(ctx, communityID, userID) },
		func() { c.store.Members.RemoveOne(model.MembershipKey(communityID, userID)) })
}

// Save persists community settings and stores the server's copy.
func (c *Communities) Save(ctx context.Context, community model.Community) error {
	var saved model.Community
	return c.run.act(ctx, "save-community", []field{{"community_id", community.ID}},
		func(ctx context.Context) error {
			if !model.ValidSlug(community.Slug) {
				return fmt.Errorf("%w: slug %q", apperr.ErrValidation, community.Slug)
			}
			var err error
			saved, err = c.backend.SaveCommunity(ctx, community)
			return err
		},
		func() {
			if detail, ok := c.store.Detail(); ok && detail.ID == saved.ID {
				c.store.SetDetail(&saved)
			}
			c.store.Communities.UpsertOne(saved)
		})
}

// WatchMembers subscribes to membership changes of the current detail. It
// replaces any earlier member subscription.
func (c *Communities) WatchMembers(ctx context.Context) error {
	c.subs.stop()
	if c.feed == nil {
		return nil
	}
	detail, ok := c.store.Detail()
	if !ok {
		return nil
	}
	unsubscribe, err := c.feed.Subscribe(ctx, model.TableCommunityUser, realtime.Eq("community_id", detail.ID), func(ev realtime.Event) {
		c.applyMember(ctx, ev)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", model.TableCommunityUser, err)
	}
	c.subs.add(unsubscribe)
	return nil
}

// Unwatch tears down the member subscription.
func (c *Communities) Unwatch() {
	c.subs.stop()
}
