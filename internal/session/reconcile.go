package session

import (
	"context"

	"github.com/five82/circle/internal/model"
	"github.com/five82/circle/internal/realtime"
	"github.com/five82/circle/internal/rows"
)

// apply merges a community_user or event_user change into the pending
// invitations. A new invitation is stored as a placeholder whose Name and
// Slug are the raw id; the next Fetch replaces it with the real values.
func (i *Invitations) apply(src invitationSource, ev realtime.Event) {
	rec := ev.Record()
	if userID, ok := rec.String("user_id"); ok && userID != i.viewer {
		return
	}
	id, err := rec.ID(src.idCol)
	if err != nil {
		i.log.Warn().Err(err).Str("table", src.edgeTable).Msg("dropping invitation event")
		return
	}
	table := i.store.Pending(src.kind)

	if _, ok := ev.(realtime.Delete); ok {
		table.RemoveOne(id)
		return
	}

	// Last writer wins: a stale invited event after a decline lists the
	// invitation again.
	if model.Status(rec.Text("status")) == model.StatusInvited {
		table.InsertIfAbsent(model.PlaceholderInvitation(src.kind, id))
		return
	}
	if _, ok := ev.(realtime.Update); ok {
		// Accepted invitations stay until the next fetch.
		table.RemoveIf(id, func(inv model.Invitation) bool { return !inv.Accepted })
	}
}

// applyMember merges a community_user change for the community on screen.
func (c *Communities) applyMember(ctx context.Context, ev realtime.Event) {
	detail, ok := c.store.Detail()
	if !ok {
		return
	}
	rec := ev.Record()
	if communityID, ok := rec.String("community_id"); ok && communityID != detail.ID {
		return
	}

	if _, ok := ev.(realtime.Delete); ok {
		userID, err := rec.ID("user_id")
		if err != nil {
			c.log.Warn().Err(err).Msg("dropping member event")
			return
		}
		c.store.Members.RemoveOne(model.MembershipKey(detail.ID, userID))
		return
	}

	m, err := membershipFromRow(rec, detail.ID)
	if err != nil {
		c.log.Warn().Err(err).Msg("dropping member event")
		return
	}
	if !m.Status.Active() {
		c.store.Members.RemoveOne(m.Key())
		return
	}
	m = m.NormalizeRole(detail.OwnerID)

	if existing, ok := c.store.Members.Get(m.Key()); ok && existing.Username != "" {
		m.Username = existing.Username
	} else {
		username, err := lookupProfile(ctx, c.rows, m.UserID)
		if err != nil {
			c.log.Warn().Err(err).Str("user_id", m.UserID).Msg("dropping member event")
			return
		}
		m.Username = username
	}
	c.store.Members.Merge(m, func(existing model.Membership) model.Membership {
		return mergeMember(existing, m)
	})
}

// mergeMember folds an incoming membership into the stored one. A joined
// member is never moved back to invited.
func mergeMember(existing, incoming model.Membership) model.Membership {
	out := incoming
	if existing.Status == model.StatusJoined && incoming.Status == model.StatusInvited {
		out.Status = model.StatusJoined
		if !existing.JoinedAt.IsZero() {
			out.JoinedAt = existing.JoinedAt
		}
	}
	if out.Username == "" {
		out.Username = existing.Username
	}
	return out
}

// apply merges a user_library change. Inserts and updates carry no username,
// so each costs one profile lookup; a failed lookup drops the event.
func (l *Library) apply(ctx context.Context, ev realtime.Event) {
	rec := ev.Record()
	if userID, ok := rec.String("user_id"); ok && userID != l.viewer {
		return
	}
	if _, ok := ev.(realtime.Delete); ok {
		followed, err := rec.ID("followed_user_id")
		if err != nil {
			l.log.Warn().Err(err).Msg("dropping library event")
			return
		}
		l.store.Entries.RemoveOne(followed)
		return
	}

	entry, err := libraryEntryFromRow(rec, l.viewer)
	if err != nil {
		l.log.Warn().Err(err).Msg("dropping library event")
		return
	}
	username, err := lookupProfile(ctx, l.rows, entry.FollowedUserID)
	if err != nil {
		l.log.Warn().Err(err).Str("followed_user_id", entry.FollowedUserID).Msg("dropping library event")
		return
	}
	entry.Username = username
	l.store.Entries.UpsertOne(entry)
}

func libraryEntryFromRow(rec rows.Row, viewer string) (model.LibraryEntry, error) {
	if _, ok := rec.String("user_id"); !ok {
		rec = rec.Clone()
		rec["user_id"] = viewer
	}
	return model.LibraryEntryFromRow(rec)
}

// applyProfile rewrites a changed username in every tracked library entry and
// member. Users that are not tracked are ignored.
func (s *Session) applyProfile(ev realtime.Event) {
	if _, ok := ev.(realtime.Update); !ok {
		return
	}
	p, err := model.ProfileFromRow(ev.Record())
	if err != nil {
		s.log.Warn().Err(err).Msg("dropping profile event")
		return
	}
	s.Library.store.Entries.Patch(p.UserID, func(e *model.LibraryEntry) {
		e.Username = p.Username
	})
	s.Communities.store.Members.PatchWhere(func(m *model.Membership) bool {
		if m.UserID != p.UserID {
			return false
		}
		m.Username = p.Username
		return true
	})
}
