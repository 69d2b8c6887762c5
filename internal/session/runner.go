package session

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/five82/circle/internal/apperr"
	"github.com/five82/circle/internal/state"
)

// field is one identifier an action validates before any network call.
type field struct {
	name  string
	value string
}

// runner drives one domain's actions and fetches against its Status.
type runner struct {
	status *state.Status
	log    zerolog.Logger
}

// act validates ids, performs the remote call and applies patch on success.
// The returned error is the one stored in the status.
func (r runner) act(ctx context.Context, name string, ids []field, call func(context.Context) error, patch func()) error {
	r.status.SetLoading(true)
	r.status.SetError("")
	defer r.status.SetLoading(false)

	for _, id := range ids {
		if err := apperr.RequireID(id.name, id.value); err != nil {
			return r.fail(name, err)
		}
	}
	if err := call(ctx); err != nil {
		return r.fail(name, err)
	}
	if patch != nil {
		patch()
	}
	r.log.Debug().Str("action", name).Msg("action applied")
	return nil
}

func (r runner) fail(name string, err error) error {
	r.status.SetError(err.Error())
	r.log.Warn().Err(err).Str("action", name).Msg("action failed")
	return err
}

// fetch runs load with the loading flag raised and records a failure as
// "Failed to fetch <entity>: <cause>".
func (r runner) fetch(ctx context.Context, entity string, load func(context.Context) error) error {
	r.status.SetLoading(true)
	r.status.SetError("")
	defer r.status.SetLoading(false)

	if err := load(ctx); err != nil {
		wrapped := fmt.Errorf("Failed to fetch %s: %w", entity, err)
		r.status.SetError(wrapped.Error())
		r.log.Warn().Err(err).Str("entity", entity).Msg("fetch failed")
		return wrapped
	}
	return nil
}
