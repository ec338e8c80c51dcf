// Package config loads palete's configuration from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
	Movements MovementsConfig `yaml:"movements"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr              string        `yaml:"addr"                env:"PALETE_ADDR"                env-default:":8080"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"PALETE_READ_HEADER_TIMEOUT" env-default:"10s"`
	ReadTimeout       time.Duration `yaml:"read_timeout"        env:"PALETE_READ_TIMEOUT"        env-default:"30s"`
	WriteTimeout      time.Duration `yaml:"write_timeout"       env:"PALETE_WRITE_TIMEOUT"       env-default:"60s"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"        env:"PALETE_IDLE_TIMEOUT"        env-default:"120s"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"    env:"PALETE_SHUTDOWN_TIMEOUT"    env-default:"5s"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path        string        `yaml:"path"         env:"PALETE_DB"           env-default:"palete.sqlite3"`
	BusyTimeout time.Duration `yaml:"busy_timeout" env:"PALETE_BUSY_TIMEOUT" env-default:"5s"`
}

// AuthConfig holds token settings. An empty JWTSecret means the secret is
// generated once and kept in the database.
type AuthConfig struct {
	JWTSecret     string        `yaml:"jwt_secret"     env:"PALETE_JWT_SECRET"`
	TokenTTL      time.Duration `yaml:"token_ttl"      env:"PALETE_TOKEN_TTL"      env-default:"12h"`
	AdminUsername string        `yaml:"admin_username" env:"PALETE_ADMIN_USERNAME" env-default:"Admin"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"PALETE_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"PALETE_LOG_FORMAT" env-default:"text"`
	File   string `yaml:"file"   env:"PALETE_LOG_FILE"`
}

// MovementsConfig holds movement lifecycle settings. With SinglePending set,
// a pallet that already has a Pending movement cannot start another one.
type MovementsConfig struct {
	SinglePending bool `yaml:"single_pending" env:"PALETE_SINGLE_PENDING"`
}

// Load reads configuration from path (or PALETE_CONFIG when path is empty)
// and the environment. Priority: ENV > YAML > defaults. Without a file,
// configuration comes from the environment and defaults only.
func Load(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		path = os.Getenv("PALETE_CONFIG")
	}

	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

var (
	validLevels  = []string{"debug", "info", "warn", "error"}
	validFormats = []string{"text", "json"}
)

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if c.Database.BusyTimeout < 0 {
		errs = append(errs, errors.New("database.busy_timeout must not be negative"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < 32 {
		errs = append(errs, errors.New("auth.jwt_secret must be at least 32 characters"))
	}
	if strings.TrimSpace(c.Auth.AdminUsername) == "" {
		errs = append(errs, errors.New("auth.admin_username is required"))
	}
	if !slices.Contains(validLevels, strings.ToLower(c.Log.Level)) {
		errs = append(errs, fmt.Errorf("log.level must be one of %v", validLevels))
	}
	if !slices.Contains(validFormats, strings.ToLower(c.Log.Format)) {
		errs = append(errs, fmt.Errorf("log.format must be one of %v", validFormats))
	}

	return errors.Join(errs...)
}
