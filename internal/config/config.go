package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"boltdesk/internal/database"
)

const (
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

// Config is the application configuration, read from an optional TOML file
// and overridden by BOLTDESK_* environment variables.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Storage  StorageConfig  `toml:"storage"`
	Redis    RedisConfig    `toml:"redis"`
	Keyring  KeyringConfig  `toml:"keyring"`
	EnvProbe EnvProbeConfig `toml:"env_probe"`
	Log      LogConfig      `toml:"log"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

// StorageConfig picks where non-secret preference documents live.
type StorageConfig struct {
	Backend string `toml:"backend"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// KeyringConfig selects the OS keyring backend holding API keys.
// An empty Backend lets the keyring library choose.
type KeyringConfig struct {
	Service string `toml:"service"`
	Backend string `toml:"backend"`
	FileDir string `toml:"file_dir"`
	// FilePassword unlocks the encrypted file backend. Environment only.
	FilePassword string `toml:"-"`
}

// EnvProbeConfig points at the collaborator that reports environment-provided
// keys. With no URL the probe is answered in-process.
type EnvProbeConfig struct {
	URL     string   `toml:"url"`
	Timeout Duration `toml:"timeout"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Duration decodes TOML strings such as "5s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Database: DatabaseConfig{Path: database.GetDefaultDBPath()},
		Storage:  StorageConfig{Backend: StorageSQLite},
		Redis:    RedisConfig{Addr: "localhost:6379", Prefix: "boltdesk:pref:"},
		Keyring:  KeyringConfig{Service: "boltdesk"},
		EnvProbe: EnvProbeConfig{Timeout: Duration{5 * time.Second}},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds the configuration. path may be empty, in which case
// BOLTDESK_CONFIG and then the user config directory are tried; a missing
// file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("BOLTDESK_CONFIG")
	}
	if path == "" {
		path = defaultConfigPath()
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return cfg, fmt.Errorf("decode config %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations the app cannot start with.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case StorageSQLite:
		if strings.TrimSpace(c.Database.Path) == "" {
			return errors.New("database path is required for sqlite storage")
		}
	case StorageRedis:
		if strings.TrimSpace(c.Redis.Addr) == "" {
			return errors.New("redis addr is required for redis storage")
		}
	default:
		return fmt.Errorf("storage backend must be %q or %q, got %q", StorageSQLite, StorageRedis, c.Storage.Backend)
	}
	if strings.TrimSpace(c.Keyring.Service) == "" {
		return errors.New("keyring service is required")
	}
	if c.EnvProbe.Timeout.Duration < 0 {
		return errors.New("env probe timeout must not be negative")
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("BOLTDESK_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("BOLTDESK_STORAGE"); v != "" {
		cfg.Storage.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("BOLTDESK_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("BOLTDESK_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("BOLTDESK_REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BOLTDESK_REDIS_DB: %w", err)
		}
		cfg.Redis.DB = db
	}
	if v := os.Getenv("BOLTDESK_KEYRING_BACKEND"); v != "" {
		cfg.Keyring.Backend = v
	}
	if v := os.Getenv("BOLTDESK_KEYRING_PASSWORD"); v != "" {
		cfg.Keyring.FilePassword = v
	}
	if v := os.Getenv("BOLTDESK_ENV_PROBE_URL"); v != "" {
		cfg.EnvProbe.URL = v
	}
	if v := os.Getenv("BOLTDESK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("BOLTDESK_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	return nil
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "boltdesk", "config.toml")
}
