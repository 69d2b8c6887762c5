package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Row backends accepted by rows_backend.
const (
	BackendREST     = "rest"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// Config captures everything Circle needs to reach the backend.
type Config struct {
	APIURL      string
	RestURL     string
	RealtimeURL string
	Token       string
	UserID      string
	RowsBackend string
	LogLevel    string
	LogDir      string
	Postgres    Postgres
	Mongo       Mongo
}

// Postgres configures the direct Postgres row backend.
type Postgres struct {
	DSN string
}

// Mongo configures the MongoDB row backend.
type Mongo struct {
	URI      string
	Database string
}

const (
	defaultConfigPath  = "~/.config/circle/config.toml"
	defaultLogDir      = "~/.local/share/circle/logs"
	defaultAPIURL      = "http://127.0.0.1:54321/api/"
	defaultRestURL     = "http://127.0.0.1:54321/rest/v1/"
	defaultLogLevel    = "info"
	defaultMongoDBName = "circle"

	tokenEnv = "CIRCLE_TOKEN"
)

// Load locates and parses the circle config, falling back to defaults when missing.
// CIRCLE_TOKEN, when set, overrides the token in the file.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := defaults()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.applyEnv()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL      string `toml:"api_url"`
		RestURL     string `toml:"rest_url"`
		RealtimeURL string `toml:"realtime_url"`
		Token       string `toml:"token"`
		UserID      string `toml:"user_id"`
		RowsBackend string `toml:"rows_backend"`
		LogLevel    string `toml:"log_level"`
		LogDir      string `toml:"log_dir"`
		Postgres    struct {
			DSN string `toml:"dsn"`
		} `toml:"postgres"`
		Mongo struct {
			URI      string `toml:"uri"`
			Database string `toml:"database"`
		} `toml:"mongo"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.APIURL = orDefault(raw.APIURL, defaultAPIURL)
	cfg.RestURL = orDefault(raw.RestURL, defaultRestURL)
	cfg.RealtimeURL = strings.TrimSpace(raw.RealtimeURL)
	cfg.Token = strings.TrimSpace(raw.Token)
	cfg.UserID = strings.TrimSpace(raw.UserID)
	cfg.RowsBackend = strings.ToLower(orDefault(raw.RowsBackend, BackendREST))
	cfg.LogLevel = orDefault(raw.LogLevel, defaultLogLevel)
	cfg.LogDir = mustExpand(orDefault(raw.LogDir, defaultLogDir))
	cfg.Postgres.DSN = strings.TrimSpace(raw.Postgres.DSN)
	cfg.Mongo.URI = strings.TrimSpace(raw.Mongo.URI)
	cfg.Mongo.Database = orDefault(raw.Mongo.Database, defaultMongoDBName)
	cfg.applyEnv()

	return cfg, nil
}

func defaults() Config {
	return Config{
		APIURL:      defaultAPIURL,
		RestURL:     defaultRestURL,
		RowsBackend: BackendREST,
		LogLevel:    defaultLogLevel,
		LogDir:      mustExpand(defaultLogDir),
		Mongo:       Mongo{Database: defaultMongoDBName},
	}
}

func (c *Config) applyEnv() {
	if token := strings.TrimSpace(os.Getenv(tokenEnv)); token != "" {
		c.Token = token
	}
}

// Validate reports settings that make a session impossible to start.
func (c Config) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("config: user_id is required")
	}
	switch c.RowsBackend {
	case BackendREST:
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("config: postgres.dsn is required for rows_backend %q", c.RowsBackend)
		}
	case BackendMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("config: mongo.uri is required for rows_backend %q", c.RowsBackend)
		}
	default:
		return fmt.Errorf("config: unknown rows_backend %q", c.RowsBackend)
	}
	return nil
}

// LogPath returns the path of the circle log file.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return mustExpand(defaultLogDir + "/circle.log")
	}
	return filepath.Join(c.LogDir, "circle.log")
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
