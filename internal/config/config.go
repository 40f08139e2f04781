// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file when
// one exists), loads them into structured Go types, and validates that
// required values are present so the data layer never starts against a
// half-configured database.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Fill in defaults for optional blocks (pool tuning, cache, observability).
//   - Validate required values so callers fail fast on bad/missing config.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists in the working directory it
	// is loaded into the process environment before LoadConfig reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using the prefix LIGHTBNB_.

	Keys are normalized: the prefix is removed, the rest is lowercased and a
	double underscore marks a nesting level, so single underscores survive
	inside field names:

	  LIGHTBNB_DATABASE__HOST      -> database.host      -> Config.Database.Host
	  LIGHTBNB_DATABASE__SSL_MODE  -> database.ssl_mode  -> Config.Database.SSLMode
*/

// EnvPrefix is the prefix every configuration variable must carry.
const EnvPrefix = "LIGHTBNB_"

// Config is the root configuration object for the data layer.
//
// The `koanf:"..."` tags tell koanf where to map values from.
// The `validate:"..."` tags are enforced by go-playground/validator.
//
// Observability is a pointer because it is optional. If not provided,
// defaults are injected at load time.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis"`
	Cache         CacheConfig          `koanf:"cache"`
	Auth          AuthConfig           `koanf:"auth"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
// Used to tag logs/traces and to switch on SQL query logging in "local".
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
//
// Host, User, Password and Name replace the credentials that used to be
// compiled into the binary; they must now be supplied by the environment.
type DatabaseConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"required,min=1,max=65535"`
	User            string        `koanf:"user" validate:"required"`
	Password        string        `koanf:"password"`
	Name            string        `koanf:"name" validate:"required"`
	SSLMode         string        `koanf:"ssl_mode" validate:"oneof=disable allow prefer require verify-ca verify-full"`
	MaxConns        int32         `koanf:"max_conns" validate:"min=1"`
	MinConns        int32         `koanf:"min_conns" validate:"min=0,ltefield=MaxConns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`

	// QueryTimeout bounds every single repository statement on top of
	// whatever deadline the caller's context already carries.
	QueryTimeout time.Duration `koanf:"query_timeout" validate:"min=0"`
}

// RedisConfig contains Redis connection details for the search cache.
// An empty Address disables Redis entirely.
type RedisConfig struct {
	Address  string `koanf:"address"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db" validate:"min=0"`
}

// CacheConfig controls the property search cache.
//
// TTL must be positive when the cache is enabled: invalidation only orphans
// old entries and relies on expiry to remove them.
type CacheConfig struct {
	Enabled bool          `koanf:"enabled"`
	TTL     time.Duration `koanf:"ttl" validate:"required_if=Enabled true,min=0"`
}

// AuthConfig holds password hashing settings.
//
// BcryptCost must stay inside bcrypt's accepted range (4..31).
type AuthConfig struct {
	BcryptCost int `koanf:"bcrypt_cost" validate:"min=4,max=31"`
}

// LoadConfig loads configuration from environment variables, unmarshals it
// into Config, applies defaults, validates it and returns the result.
//
// Behavior summary:
//   - Loads env vars with prefix LIGHTBNB_
//   - Converts env keys into koanf keys using "." nesting ("__" in the env name)
//   - Unmarshals into a Config pre-filled with defaults
//   - Validates struct tags and the observability block
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := defaultConfig()

	// "" means "unmarshal everything from the root".
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Service name is pinned so telemetry always lands under the same app,
	// environment follows the primary block.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

// defaultConfig returns a Config holding every optional default.
//
// LoadConfig unmarshals the environment on top of it, so anything the
// environment sets wins and everything it leaves out keeps its default.
// Observability is pre-populated too: setting a single observability variable
// must not wipe out the rest of that block.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			SSLMode:         "disable",
			MaxConns:        10,
			ConnMaxLifetime: 5 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			QueryTimeout:    3 * time.Second,
		},
		Cache: CacheConfig{
			TTL: time.Minute,
		},
		Auth: AuthConfig{
			BcryptCost: 10,
		},
		Observability: DefaultObservabilityConfig(),
	}
}

// IsLocal reports whether the process runs on a developer machine.
// SQL statements are only traced to the console in this environment.
func (c *Config) IsLocal() bool {
	return c.Primary.Env == "local"
}

// CacheEnabled reports whether the search cache can actually be used:
// it must be switched on and have a Redis address to talk to.
func (c *Config) CacheEnabled() bool {
	return c.Cache.Enabled && c.Redis.Address != ""
}
