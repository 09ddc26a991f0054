package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"trip-planner/internal/domain"
)

const (
	ModeProduction  = "production"
	ModeDevelopment = "development"
)

// Config holds all application configuration.
type Config struct {
	Mode      string          `mapstructure:"mode"`
	Optimizer OptimizerConfig `mapstructure:"optimizer"`
	Locations LocationsConfig `mapstructure:"locations"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Sqlite    SqliteConfig    `mapstructure:"sqlite"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	SeedPath  string          `mapstructure:"seed_path"`
}

type OptimizerConfig struct {
	ProdURL       string        `mapstructure:"prod_url"`
	DevURL        string        `mapstructure:"dev_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxAttempts   int           `mapstructure:"max_attempts"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
}

type LocationsConfig struct {
	Max              int  `mapstructure:"max"`
	WarningThreshold int  `mapstructure:"warning_threshold"`
	DesignatedEnd    bool `mapstructure:"designated_end"`
}

type CacheConfig struct {
	Driver string        `mapstructure:"driver"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type SqliteConfig struct {
	Path string `mapstructure:"path"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type ServerConfig struct {
	Port        int           `mapstructure:"port"`
	MaxSessions int           `mapstructure:"max_sessions"`
	SessionTTL  time.Duration `mapstructure:"session_ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Cache drivers accepted by cache.driver.
const (
	CacheNone     = "none"
	CacheSqlite   = "sqlite"
	CachePostgres = "postgres"
	CacheValkey   = "valkey"
)

// Load reads .env, an optional config.yaml, and TRIP_PLANNER_* environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("could not load .env", "err", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	// TRIP_PLANNER_OPTIMIZER_PROD_URL → optimizer.prod_url
	v.SetEnvPrefix("TRIP_PLANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return decode(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", ModeDevelopment)
	v.SetDefault("optimizer.prod_url", "")
	v.SetDefault("optimizer.dev_url", "http://localhost:5000/optimize")
	v.SetDefault("optimizer.timeout", 60*time.Second)
	v.SetDefault("optimizer.max_attempts", 3)
	v.SetDefault("optimizer.rate_per_second", 2.0)
	v.SetDefault("locations.max", domain.MaxLocations)
	v.SetDefault("locations.warning_threshold", domain.WarningThreshold)
	v.SetDefault("locations.designated_end", true)
	v.SetDefault("cache.driver", CacheNone)
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("sqlite.path", "data/trip-planner.db")
	v.SetDefault("database.url", "")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_sessions", 10000)
	v.SetDefault("server.session_ttl", 30*time.Minute)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("seed_path", "data/seeds/trips.json")
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Mode = strings.ToLower(strings.TrimSpace(cfg.Mode))
	cfg.Cache.Driver = strings.ToLower(strings.TrimSpace(cfg.Cache.Driver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Endpoint resolves the optimizer URL for the configured mode. It is read once
// at startup and injected into the optimizer client.
func (c *Config) Endpoint() string {
	if c.Mode == ModeProduction {
		return c.Optimizer.ProdURL
	}
	return c.Optimizer.DevURL
}

// ListConfig converts the locations section into the controller's parameters.
func (c *Config) ListConfig() domain.ListConfig {
	return domain.ListConfig{
		MaxLocations:          c.Locations.Max,
		WarningThreshold:      c.Locations.WarningThreshold,
		SupportsDesignatedEnd: c.Locations.DesignatedEnd,
	}
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	switch c.Mode {
	case ModeProduction, ModeDevelopment:
	default:
		errs = append(errs, fmt.Sprintf("mode must be %q or %q, got %q", ModeProduction, ModeDevelopment, c.Mode))
	}
	if strings.TrimSpace(c.Endpoint()) == "" {
		errs = append(errs, fmt.Sprintf("optimizer endpoint for mode %q is required", c.Mode))
	}
	if c.Optimizer.Timeout <= 0 {
		errs = append(errs, "optimizer.timeout must be positive")
	}
	if c.Optimizer.MaxAttempts < 1 {
		errs = append(errs, "optimizer.max_attempts must be at least 1")
	}
	if c.Optimizer.RatePerSecond < 0 {
		errs = append(errs, "optimizer.rate_per_second must not be negative")
	}
	if c.Locations.Max < domain.MinLocations {
		errs = append(errs, fmt.Sprintf("locations.max must be at least %d, got %d", domain.MinLocations, c.Locations.Max))
	}
	if c.Locations.WarningThreshold < 0 || c.Locations.WarningThreshold > c.Locations.Max {
		errs = append(errs, fmt.Sprintf("locations.warning_threshold must be 0-%d, got %d", c.Locations.Max, c.Locations.WarningThreshold))
	}

	switch c.Cache.Driver {
	case CacheNone:
	case CacheSqlite:
		if c.Sqlite.Path == "" {
			errs = append(errs, "sqlite.path is required for the sqlite cache")
		}
	case CachePostgres:
		if c.Database.URL == "" {
			errs = append(errs, "database.url is required for the postgres cache")
		}
	case CacheValkey:
		if c.Valkey.Addr == "" {
			errs = append(errs, "valkey.addr is required for the valkey cache")
		}
	default:
		errs = append(errs, fmt.Sprintf("cache.driver must be one of none, sqlite, postgres, valkey; got %q", c.Cache.Driver))
	}
	if c.Cache.Driver != CacheNone && c.Cache.TTL <= 0 {
		errs = append(errs, "cache.ttl must be positive")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.MaxSessions < 0 {
		errs = append(errs, "server.max_sessions must not be negative")
	}
	if c.Server.SessionTTL < 0 {
		errs = append(errs, "server.session_ttl must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
