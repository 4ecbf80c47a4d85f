// Package config loads the restgen configuration from restgen.yaml and
// RESTGEN_ environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/conduit-lang/restgen/internal/orm/schema"
)

// EnvPrefix prefixes every environment variable, e.g. RESTGEN_SERVER_PORT
const EnvPrefix = "RESTGEN"

// Config represents the restgen configuration
type Config struct {
	Server    ServerConfig     `mapstructure:"server"`
	Auth      AuthConfig       `mapstructure:"auth"`
	Database  DatabaseConfig   `mapstructure:"database"`
	RateLimit RateLimitConfig  `mapstructure:"ratelimit"`
	Query     QueryConfig      `mapstructure:"query"`
	Log       LogConfig        `mapstructure:"log"`
	Resources []ResourceConfig `mapstructure:"resources"`
	// References declare which child fields point at parent records. The
	// memory store refuses to delete referenced parents with them.
	References []ReferenceConfig `mapstructure:"references"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// RequestTimeout bounds each request context; zero disables it
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	CORSOrigins    []string      `mapstructure:"cors_origins"`
	// TLSCert and TLSKey enable HTTPS when both are set
	TLSCert string `mapstructure:"tls_cert"`
	TLSKey  string `mapstructure:"tls_key"`
	// ETag enables conditional GET on the read routes
	ETag         bool   `mapstructure:"etag"`
	CacheControl string `mapstructure:"cache_control"`
	// PprofAddr serves the profiling endpoints on a separate listener when set
	PprofAddr string `mapstructure:"pprof_addr"`
}

// Address returns host:port
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// AuthConfig configures login tokens
type AuthConfig struct {
	// WebTokenKey signs login tokens; empty disables token checks
	WebTokenKey string        `mapstructure:"webtoken_key"`
	TokenTTL    time.Duration `mapstructure:"token_ttl"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	// Driver is memory, pgx, postgres or sqlite3
	Driver          string        `mapstructure:"driver"`
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RateLimitConfig configures the request limiter
type RateLimitConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Backend is memory or redis
	Backend   string        `mapstructure:"backend"`
	Limit     int           `mapstructure:"limit"`
	Window    time.Duration `mapstructure:"window"`
	RedisAddr string        `mapstructure:"redis_addr"`
	FailOpen  bool          `mapstructure:"fail_open"`
}

// QueryConfig tunes the list routes
type QueryConfig struct {
	DefaultLimit      int  `mapstructure:"default_limit"`
	MaxLimit          int  `mapstructure:"max_limit"`
	AllowDerivedOrder bool `mapstructure:"allow_derived_order"`
}

// LogConfig configures the logger
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// ResourceConfig declares a resource and the routes generated for it
type ResourceConfig struct {
	schema.ResourceDefinition `mapstructure:",squash"`

	Prefix string       `mapstructure:"prefix"`
	Routes RoutesConfig `mapstructure:"routes"`
}

// RoutesConfig holds the access expression of each route. An empty
// expression leaves the route out.
type RoutesConfig struct {
	Get      string `mapstructure:"get"`
	GetByIDs string `mapstructure:"getbyids"`
	Post     string `mapstructure:"post"`
	Put      string `mapstructure:"put"`
	Delete   string `mapstructure:"delete"`
}

// ReferenceConfig declares that Field of Child holds the id of a Parent record
type ReferenceConfig struct {
	Child  string `mapstructure:"child"`
	Field  string `mapstructure:"field"`
	Parent string `mapstructure:"parent"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.request_timeout", 0)
	v.SetDefault("server.etag", false)
	v.SetDefault("server.cache_control", "no-cache")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("database.driver", "memory")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.backend", "memory")
	v.SetDefault("ratelimit.limit", 100)
	v.SetDefault("ratelimit.window", time.Minute)
	v.SetDefault("ratelimit.redis_addr", "localhost:6379")
	v.SetDefault("ratelimit.fail_open", true)
	v.SetDefault("query.default_limit", 50)
	v.SetDefault("query.max_limit", 0)
	v.SetDefault("query.allow_derived_order", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Load reads the configuration. An empty path searches restgen.yaml in the
// working directory; a missing file there is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("restgen")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values Load cannot default
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}

	switch c.Database.Driver {
	case "memory":
	case "pgx", "postgres", "sqlite3":
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for driver %s", c.Database.Driver)
		}
	default:
		return fmt.Errorf("unsupported database.driver: %s", c.Database.Driver)
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.Backend != "memory" && c.RateLimit.Backend != "redis" {
			return fmt.Errorf("unsupported ratelimit.backend: %s", c.RateLimit.Backend)
		}
		if c.RateLimit.Limit <= 0 || c.RateLimit.Window <= 0 {
			return errors.New("ratelimit.limit and ratelimit.window must be positive")
		}
	}

	if c.Query.MaxLimit > 0 && c.Query.DefaultLimit > c.Query.MaxLimit {
		return fmt.Errorf("query.default_limit %d exceeds query.max_limit %d", c.Query.DefaultLimit, c.Query.MaxLimit)
	}

	seen := make(map[string]bool, len(c.Resources))
	for _, res := range c.Resources {
		if res.Name == "" {
			return errors.New("resource without name")
		}
		if seen[res.Name] {
			return fmt.Errorf("duplicate resource %s", res.Name)
		}
		seen[res.Name] = true
		if !strings.HasPrefix(res.Prefix, "/") {
			return fmt.Errorf("resource %s: prefix must start with '/', got: %q", res.Name, res.Prefix)
		}
	}

	for _, ref := range c.References {
		if !seen[ref.Child] || !seen[ref.Parent] {
			return fmt.Errorf("reference %s.%s -> %s names an unknown resource", ref.Child, ref.Field, ref.Parent)
		}
	}
	return nil
}
