// Package config loads Circle's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/circle/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// CIRCLE_TOKEN overrides the token from the file, so the secret can stay out
// of the config.
//
// # Default Values
//
//   - Config file: ~/.config/circle/config.toml
//   - Action API: http://127.0.0.1:54321/api/
//   - Row API: http://127.0.0.1:54321/rest/v1/
//   - Realtime: disabled (no realtime_url)
//   - Row backend: rest
//   - Log directory: ~/.local/share/circle/logs
//   - Log file: <log_dir>/circle.log
//
// # TOML Format
//
//	api_url = "http://127.0.0.1:54321/api/"
//	rest_url = "http://127.0.0.1:54321/rest/v1/"
//	realtime_url = "ws://127.0.0.1:54321/realtime/v1/websocket"
//	token = "..."
//	user_id = "..."
//	rows_backend = "rest"   # rest | postgres | mongo
//	log_level = "info"
//	log_dir = "~/.local/share/circle/logs"
//
//	[postgres]
//	dsn = "postgres://..."
//
//	[mongo]
//	uri = "mongodb://..."
//	database = "circle"
//
// Every value is trimmed. Tilde expansion is performed on the config path and
// log_dir.
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors other than
// os.ErrNotExist, and TOML parsing errors. Missing files are not an error.
// Validate is separate so tools that only need paths (the log viewer) can run
// without a user id.
package config
