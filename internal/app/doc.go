// Package app is the composition root of Circle.
//
// # Overview
//
// Run wires configuration, logging, the backend client, the row backend, the
// realtime feed and the session together, hydrates once and hands the session
// to the Bubble Tea UI.
//
// # Startup
//
//  1. Load ~/.config/circle/config.toml (CIRCLE_TOKEN overrides the token)
//  2. Open the JSON log file under log_dir and build the zerolog logger
//  3. Build the api.Client (actions and, for rows_backend = "rest", row reads)
//  4. Open the Postgres pool or Mongo client when rows_backend selects one
//  5. Dial the realtime socket when realtime_url is set
//  6. Create the session, Hydrate, Watch
//  7. Start the refresher and run the UI until the user quits
//
// Sign-out runs on exit so every slice is reset before the process ends.
//
// # Data Flow
//
//	Run()
//	  ├─> config.Load()        read config
//	  ├─> logging.New()        JSON log file, read back by the logs view
//	  ├─> api.NewClient()      actions + REST rows
//	  ├─> openRows()           rest | postgres | mongo
//	  ├─> realtime.Dial()      optional
//	  ├─> session.Hydrate()    concurrent fetch of every slice
//	  ├─> session.Watch()      change subscriptions
//	  ├─> StartRefresher()     periodic Hydrate while realtime is down
//	  └─> ui.Run()             blocks
//
// # Refresh
//
// With a live realtime socket the refresher does nothing. Without one (no
// realtime_url, dial failure or a dropped socket) it re-hydrates every
// interval, doubling the wait after each failed round up to five minutes.
//
// # Error Handling
//
// Fatal (returned from Run): config errors, log file errors, client or row
// backend setup failures. Recoverable (logged): realtime dial or subscribe
// failures, an incomplete initial hydrate, refresh failures.
//
// # Dump Mode
//
// Options.Dump hydrates once, prints the session snapshot as indented JSON and
// returns. Realtime and the UI are skipped and hydrate errors are fatal.
package app
