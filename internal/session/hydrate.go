package session

import (
	"context"
	"fmt"

	"github.com/five82/circle/internal/apperr"
	"github.com/five82/circle/internal/model"
	"github.com/five82/circle/internal/rows"
)

// display holds the denormalized name and slug joined onto edge rows.
type display struct {
	name string
	slug string
}

// collectIDs returns the distinct non-blank values of col in row order.
func collectIDs(recs []rows.Row, col string) []string {
	seen := make(map[string]struct{}, len(recs))
	ids := make([]string, 0, len(recs))
	for _, rec := range recs {
		id, err := rec.ID(col)
		if err != nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// indexDisplay builds id -> display from rows carrying idCol, name and slug.
func indexDisplay(recs []rows.Row, idCol string) map[string]display {
	out := make(map[string]display, len(recs))
	for _, rec := range recs {
		id, err := rec.ID(idCol)
		if err != nil {
			continue
		}
		out[id] = display{name: rec.Text("name"), slug: rec.Text("slug")}
	}
	return out
}

// indexUsernames builds user id -> username from public_profile rows.
func indexUsernames(recs []rows.Row) map[string]string {
	out := make(map[string]string, len(recs))
	for _, rec := range recs {
		p, err := model.ProfileFromRow(rec)
		if err != nil {
			continue
		}
		out[p.UserID] = p.Username
	}
	return out
}

// mapInvitations projects edge rows over the public display records. Rows
// whose id has no public record are skipped.
func mapInvitations(kind model.InvitationKind, idCol string, edges []rows.Row, public map[string]display) []model.Invitation {
	out := make([]model.Invitation, 0, len(edges))
	for _, edge := range edges {
		id, err := edge.ID(idCol)
		if err != nil {
			continue
		}
		d, ok := public[id]
		if !ok {
			continue
		}
		out = append(out, model.Invitation{ID: id, Kind: kind, Name: d.name, Slug: d.slug})
	}
	return out
}

// fetchUsernames looks up usernames for ids. An empty ids slice issues no query.
func fetchUsernames(ctx context.Context, q rows.Querier, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}
	recs, err := q.Select(ctx, model.TablePublicProfile, rows.Select(model.ProfileCols...).WhereIn("user_id", ids))
	if err != nil {
		return nil, err
	}
	return indexUsernames(recs), nil
}

// lookupProfile resolves the username of one user for a realtime event.
func lookupProfile(ctx context.Context, q rows.Querier, userID string) (string, error) {
	recs, err := q.Select(ctx, model.TablePublicProfile, rows.Select(model.ProfileCols...).Where("user_id", userID))
	if err != nil {
		return "", fmt.Errorf("%w: profile %s: %w", apperr.ErrEnrichment, userID, err)
	}
	for _, rec := range recs {
		p, err := model.ProfileFromRow(rec)
		if err == nil && p.UserID == userID {
			return p.Username, nil
		}
	}
	return "", fmt.Errorf("%w: profile %s: %w", apperr.ErrEnrichment, userID, apperr.ErrNotFound)
}
