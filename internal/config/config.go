// Package config loads favnum settings from defaults, a TOML file and the
// environment, in that order of precedence (later wins). Command-line flags
// are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds effective settings.
type Config struct {
	// Driver selects the record store: sqlite, postgres or memory.
	Driver string `toml:"driver" env:"FAVNUM_DRIVER" json:"driver"`

	// DB is the SQLite file path or PostgreSQL DSN.
	DB string `toml:"db" env:"FAVNUM_DB" json:"db"`

	// Key is the signing key: a keyring alias or a path to a key file.
	Key string `toml:"key" env:"FAVNUM_KEY" json:"key"`

	// Keyring is the directory holding <alias>.key files.
	Keyring string `toml:"keyring" env:"FAVNUM_KEYRING" json:"keyring"`

	// NATSURL enables change events when non-empty.
	NATSURL string `toml:"nats_url" env:"FAVNUM_NATS_URL" json:"nats_url,omitempty"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `toml:"log_level" env:"FAVNUM_LOG_LEVEL" json:"log_level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Driver:   DriverSQLite,
		DB:       filepath.Join(dataDir(), "favnum.db"),
		Keyring:  filepath.Join(configDir(), "keys"),
		LogLevel: "warn",
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/favnum/config.toml.
func DefaultPath() string {
	return filepath.Join(configDir(), "config.toml")
}

// Load builds the effective config. A missing file at path is ignored
// unless explicit is set, in which case it is an error.
func Load(path string, explicit bool) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if !errors.Is(err, fs.ErrNotExist) || explicit {
				return Config{}, fmt.Errorf("load config %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the settings are usable.
func (c Config) Validate() error {
	switch c.Driver {
	case DriverSQLite, DriverPostgres:
		if strings.TrimSpace(c.DB) == "" {
			return fmt.Errorf("config: db is required for driver %q", c.Driver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: unknown driver %q (want %s, %s or %s)",
			c.Driver, DriverSQLite, DriverPostgres, DriverMemory)
	}

	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}
	return nil
}

// Write encodes cfg as TOML at path, creating parent directories.
func Write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

func configDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "favnum")
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "favnum")
	}
	return ".favnum"
}

func dataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "favnum")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "favnum")
	}
	return ".favnum"
}
