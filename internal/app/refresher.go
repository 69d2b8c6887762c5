package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultRefreshInterval = 30 * time.Second
	maxBackoff             = 5 * time.Minute
)

// hydrator is the part of *session.Session the refresher drives.
type hydrator interface {
	Hydrate(ctx context.Context) error
}

// StartRefresher re-hydrates the session in the background while live reports
// false, i.e. while no realtime feed is keeping state current. Failed rounds
// back off exponentially. It returns immediately.
func StartRefresher(ctx context.Context, h hydrator, interval time.Duration, live func() bool, logger zerolog.Logger) {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	log := logger.With().Str("component", "refresher").Logger()
	go func() {
		failures := 0
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			if live != nil && live() {
				failures = 0
				timer.Reset(interval)
				continue
			}
			if err := h.Hydrate(ctx); err != nil {
				failures++
				wait := calculateBackoff(failures, interval)
				log.Warn().Err(err).Int("failures", failures).Dur("next", wait).Msg("refresh failed")
				timer.Reset(wait)
				continue
			}
			failures = 0
			log.Debug().Msg("refreshed")
			timer.Reset(interval)
		}
	}()
}

// calculateBackoff doubles base once per consecutive failure, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
