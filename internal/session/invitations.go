package session

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/five82/circle/internal/lifecycle"
	"github.com/five82/circle/internal/model"
	"github.com/five82/circle/internal/realtime"
	"github.com/five82/circle/internal/rows"
	"github.com/five82/circle/internal/state"
)

// invitationSource describes where one kind of invitation is read from.
type invitationSource struct {
	kind      model.InvitationKind
	edgeTable string
	idCol     string
	pubTable  string
}

var invitationSources = []invitationSource{
	{kind: model.InvitationCommunity, edgeTable: model.TableCommunityUser, idCol: "community_id", pubTable: model.TableCommunity},
	{kind: model.InvitationEvent, edgeTable: model.TableEventUser, idCol: "event_id", pubTable: model.TableEvent},
}

// Invitations is the viewer's pending community and event invitations.
type Invitations struct {
	deps
	store state.InvitationStore
	run   runner
	log   zerolog.Logger
	subs  subscriptions
}

func newInvitations(d deps, registry *lifecycle.Registry, logger zerolog.Logger) *Invitations {
	i := &Invitations{deps: d}
	i.log = logger.With().Str("domain", string(state.DomainInvitation)).Logger()
	i.run = runner{status: &i.store.Status, log: i.log}
	registry.Register(string(state.DomainInvitation), func() {
		i.subs.stop()
		i.store.Reset()
	})
	return i
}

// Snapshot copies the invitation slice.
func (i *Invitations) Snapshot() state.InvitationSnapshot {
	return i.store.Snapshot()
}

// Fetch reloads both invitation kinds and returns them community-first.
func (i *Invitations) Fetch(ctx context.Context) ([]model.Invitation, error) {
	err := i.run.fetch(ctx, "invitations", func(ctx context.Context) error {
		g, gctx := errgroup.WithContext(ctx)
		for _, src := range invitationSources {
			g.Go(func() error {
				return i.fetchKind(gctx, src)
			})
		}
		return g.Wait()
	})
	if err != nil {
		return nil, err
	}
	snap := i.store.Snapshot()
	return append(snap.Communities, snap.Events...), nil
}

func (i *Invitations) fetchKind(ctx context.Context, src invitationSource) error {
	table := i.store.Pending(src.kind)
	edges, err := i.rows.Select(ctx, src.edgeTable, rows.Select(src.idCol, "user_id", "status").
		Where("user_id", i.viewer).
		Where("status", string(model.StatusInvited)))
	if err != nil {
		return fmt.Errorf("%s: %w", src.edgeTable, err)
	}
	if len(edges) == 0 {
		table.SetAll(nil)
		return nil
	}
	public, err := i.rows.Select(ctx, src.pubTable, rows.Select(src.idCol, "name", "slug").
		WhereIn(src.idCol, collectIDs(edges, src.idCol)))
	if err != nil {
		return fmt.Errorf("%s: %w", src.pubTable, err)
	}
	table.SetAll(mapInvitations(src.kind, src.idCol, edges, indexDisplay(public, src.idCol)))
	return nil
}

// AcceptCommunity joins the community and marks the invitation accepted. The
// entry stays in the list so the status change that follows is not mistaken
// for a withdrawn invite.
func (i *Invitations) AcceptCommunity(ctx context.Context, communityID string) error {
	return i.run.act(ctx, "accept-community-invite", []field{{"community_id", communityID}},
		func(ctx context.Context) error { return i.backend.JoinCommunity(ctx, communityID) },
		func() { i.store.Communities.Patch(communityID, markAccepted) })
}

// DeclineCommunity leaves the community and drops the invitation.
func (i *Invitations) DeclineCommunity(ctx context.Context, communityID string) error {
	return i.run.act(ctx, "decline-community-invite", []field{{"community_id", communityID}},
		func(ctx context.Context) error { return i.backend.LeaveCommunity(ctx, communityID) },
		func() { i.store.Communities.RemoveOne(communityID) })
}

// AcceptEvent joins the event and marks the invitation accepted.
func (i *Invitations) AcceptEvent(ctx context.Context, eventID string) error {
	return i.run.act(ctx, "accept-event-invite", []field{{"event_id", eventID}},
		func(ctx context.Context) error { return i.backend.JoinEvent(ctx, eventID) },
		func() { i.store.Events.Patch(eventID, markAccepted) })
}

// DeclineEvent removes the viewer from the event and drops the invitation.
func (i *Invitations) DeclineEvent(ctx context.Context, eventID string) error {
	return i.run.act(ctx, "decline-event-invite", []field{{"event_id", eventID}},
		func(ctx context.Context) error { return i.backend.LeaveEvent(ctx, eventID, i.viewer) },
		func() { i.store.Events.RemoveOne(eventID) })
}

func markAccepted(inv *model.Invitation) {
	inv.Accepted = true
}

// Watch subscribes to the viewer's community_user and event_user rows.
func (i *Invitations) Watch(ctx context.Context) error {
	if i.feed == nil {
		return nil
	}
	i.subs.stop()
	for _, src := range invitationSources {
		unsubscribe, err := i.feed.Subscribe(ctx, src.edgeTable, realtime.Eq("user_id", i.viewer), func(ev realtime.Event) {
			i.apply(src, ev)
		})
		if err != nil {
			i.subs.stop()
			return fmt.Errorf("subscribe %s: %w", src.edgeTable, err)
		}
		i.subs.add(unsubscribe)
	}
	return nil
}

// Unwatch tears down the invitation subscriptions.
func (i *Invitations) Unwatch() {
	i.subs.stop()
}
