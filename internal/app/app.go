package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/circle/internal/api"
	"github.com/five82/circle/internal/config"
	"github.com/five82/circle/internal/logging"
	"github.com/five82/circle/internal/prefs"
	"github.com/five82/circle/internal/realtime"
	"github.com/five82/circle/internal/rows"
	"github.com/five82/circle/internal/rows/mongorows"
	"github.com/five82/circle/internal/rows/pgrows"
	"github.com/five82/circle/internal/session"
	"github.com/five82/circle/internal/ui"
)

var _ session.Backend = (*api.Client)(nil)

// Options configure the Circle application.
type Options struct {
	ConfigPath   string
	PrefsPath    string // empty uses default ~/.config/circle/prefs.toml
	RefreshEvery int    // seconds; zero uses default
	// Dump hydrates once, writes the snapshot as JSON to Out and exits
	// without starting the UI.
	Dump bool
	Out  io.Writer
}

// Run boots Circle until the context is cancelled or the UI quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load circle config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	logFile, err := logging.OpenFile(cfg.LogPath())
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()
	logger := logging.New(logging.Config{Level: cfg.LogLevel, Output: logFile})
	log := logger.With().Str("component", "app").Logger()

	client, err := api.NewClient(api.Options{
		APIURL:  cfg.APIURL,
		RestURL: cfg.RestURL,
		Token:   cfg.Token,
	})
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	querier, closeRows, err := openRows(ctx, cfg, client)
	if err != nil {
		return err
	}
	defer closeRows()
	log.Info().Str("rows_backend", cfg.RowsBackend).Msg("row backend ready")

	var feed realtime.Feed
	var socket *realtime.Socket
	if cfg.RealtimeURL != "" && !opts.Dump {
		socket, err = realtime.Dial(ctx, cfg.RealtimeURL, cfg.Token, logger)
		if err != nil {
			log.Warn().Err(err).Msg("realtime unavailable; falling back to periodic refresh")
		} else {
			defer func() { _ = socket.Close() }()
			feed = socket
		}
	}

	sess, err := session.New(session.Options{
		ViewerID: cfg.UserID,
		Backend:  client,
		Rows:     querier,
		Feed:     feed,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	defer sess.SignOut()

	if err := sess.Hydrate(ctx); err != nil {
		if opts.Dump {
			return err
		}
		log.Warn().Err(err).Msg("initial hydrate incomplete")
	}

	if opts.Dump {
		return dump(opts.Out, sess.Snapshot())
	}

	live := socketLive(socket)
	if err := sess.Watch(ctx); err != nil {
		log.Warn().Err(err).Msg("realtime subscribe failed; falling back to periodic refresh")
		live = socketLive(nil)
	}

	interval := defaultRefreshInterval
	if opts.RefreshEvery > 0 {
		interval = time.Duration(opts.RefreshEvery) * time.Second
	}
	StartRefresher(ctx, sess, interval, live, logger)

	err = ui.Run(ui.Options{
		Context:   ctx,
		Session:   sess,
		LogPath:   cfg.LogPath(),
		Tick:      time.Second,
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
	})
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// openRows picks the row backend named in cfg and returns a close func.
func openRows(ctx context.Context, cfg config.Config, client *api.Client) (rows.Querier, func(), error) {
	switch cfg.RowsBackend {
	case config.BackendPostgres:
		pool, err := pgrows.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		return pgrows.New(pool), pool.Close, nil
	case config.BackendMongo:
		mc, err := mongorows.Connect(ctx, cfg.Mongo.URI)
		if err != nil {
			return nil, nil, fmt.Errorf("open mongo: %w", err)
		}
		closeFn := func() { _ = mc.Disconnect(context.Background()) }
		return mongorows.New(mc.Database(cfg.Mongo.Database)), closeFn, nil
	default:
		return client, func() {}, nil
	}
}

// socketLive reports whether the realtime socket is still connected. A nil
// socket is never live.
func socketLive(socket *realtime.Socket) func() bool {
	if socket == nil {
		return func() bool { return false }
	}
	return func() bool {
		select {
		case <-socket.Done():
			return false
		default:
			return true
		}
	}
}

func dump(out io.Writer, snap session.Snapshot) error {
	if out == nil {
		out = os.Stdout
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = fmt.Fprintf(out, "%s\n", data)
	return err
}
