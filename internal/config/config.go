package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "MULTIVERSE"

// Storage backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Favorites persistence variants.
const (
	FavoritesModeIDs     = "ids"
	FavoritesModeRecords = "records"
)

type Config struct {
	ListenAddr      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout applied by the router
	CORSOrigins     []string      // origins allowed by the CORS middleware

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	StorageBackend   string        // "memory" | "sqlite" | "redis"
	SQLitePath       string        // database file for the sqlite backend
	StorageNamespace string        // key prefix for the redis backend
	ReloadInterval   time.Duration // re-read favorites from storage, 0 disables

	FavoritesMode  string        // "ids" | "records"
	SearchDebounce time.Duration // quiet period before a search term settles
	SeedFile       string        // optional YAML backup imported at startup

	GraphQLEndpoint    string
	GraphQLTimeout     time.Duration
	GraphQLCacheTTL    time.Duration
	GraphQLCacheSweep  time.Duration
	GraphQLMaxIDsBatch int

	// Redis
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // dial timeout
	RedisRT             time.Duration // read timeout
	RedisWT             time.Duration // write timeout
	RedisMaxWait        time.Duration // max wait between retries
	RedisPingTimeout    time.Duration // timeout for each ping attempt
	RedisPoolSize       int           // connection pool size
	RedisConnectTimeout time.Duration // total time to retry connecting
	RedisRetryInterval  time.Duration // initial wait between retries, grows exponentially
	RedisWarnThreshold  int           // warn after this many attempts

	AllowedHosts []string // optional, Host headers accepted on infra endpoints
	AllowedCIDRS []string // optional, restrict infra endpoints to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers

	RateLimitBurst        int
	RateLimitRefillPerMin int
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	v := viper.New()
	ApplyDefaults(v)
	return v
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http.address", ":8080")
	v.SetDefault("http.shutdown_timeout", 5*time.Second)
	v.SetDefault("http.request_timeout", 10*time.Second)
	v.SetDefault("http.cors_origins", "*")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", true)

	v.SetDefault("storage.backend", BackendSQLite)
	v.SetDefault("storage.sqlite_path", "multiverse.db")
	v.SetDefault("storage.namespace", "multiverse:")
	v.SetDefault("storage.reload_interval", time.Duration(0))

	v.SetDefault("favorites.mode", FavoritesModeIDs)
	v.SetDefault("search.debounce", 500*time.Millisecond)
	v.SetDefault("seed.file", "")

	v.SetDefault("graphql.endpoint", "https://rickandmortyapi.com/graphql")
	v.SetDefault("graphql.timeout", 10*time.Second)
	v.SetDefault("graphql.cache_ttl", 5*time.Minute)
	v.SetDefault("graphql.cache_sweep_interval", time.Minute)
	v.SetDefault("graphql.max_ids_batch", 20)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.username", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)
	v.SetDefault("redis.max_wait", 10*time.Second)
	v.SetDefault("redis.ping_timeout", 5*time.Second)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.connect_timeout", 30*time.Second)
	v.SetDefault("redis.retry_interval", 2*time.Second)
	v.SetDefault("redis.warn_threshold", 3)

	v.SetDefault("access.allowed_hosts", "")
	v.SetDefault("access.allowed_cidrs", "")
	v.SetDefault("access.trust_proxy", false)

	v.SetDefault("ratelimit.burst", 30)
	v.SetDefault("ratelimit.refill_per_min", 120)
}

// Load parses runtime configuration from viper and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		ListenAddr:      v.GetString("http.address"),
		ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
		RequestTimeout:  v.GetDuration("http.request_timeout"),
		CORSOrigins:     splitAndTrim(v.GetString("http.cors_origins")),

		LogLevel:  v.GetString("log.level"),
		PrettyLog: v.GetBool("log.pretty"),

		StorageBackend:   strings.ToLower(strings.TrimSpace(v.GetString("storage.backend"))),
		SQLitePath:       v.GetString("storage.sqlite_path"),
		StorageNamespace: v.GetString("storage.namespace"),
		ReloadInterval:   v.GetDuration("storage.reload_interval"),

		FavoritesMode:  strings.ToLower(strings.TrimSpace(v.GetString("favorites.mode"))),
		SearchDebounce: v.GetDuration("search.debounce"),
		SeedFile:       strings.TrimSpace(v.GetString("seed.file")),

		GraphQLEndpoint:    v.GetString("graphql.endpoint"),
		GraphQLTimeout:     v.GetDuration("graphql.timeout"),
		GraphQLCacheTTL:    v.GetDuration("graphql.cache_ttl"),
		GraphQLCacheSweep:  v.GetDuration("graphql.cache_sweep_interval"),
		GraphQLMaxIDsBatch: v.GetInt("graphql.max_ids_batch"),

		RedisAddr:           v.GetString("redis.addr"),
		RedisUser:           v.GetString("redis.username"),
		RedisPassword:       v.GetString("redis.password"),
		RedisDB:             v.GetInt("redis.db"),
		RedisDT:             v.GetDuration("redis.dial_timeout"),
		RedisRT:             v.GetDuration("redis.read_timeout"),
		RedisWT:             v.GetDuration("redis.write_timeout"),
		RedisMaxWait:        v.GetDuration("redis.max_wait"),
		RedisPingTimeout:    v.GetDuration("redis.ping_timeout"),
		RedisPoolSize:       v.GetInt("redis.pool_size"),
		RedisConnectTimeout: v.GetDuration("redis.connect_timeout"),
		RedisRetryInterval:  v.GetDuration("redis.retry_interval"),
		RedisWarnThreshold:  v.GetInt("redis.warn_threshold"),

		AllowedHosts: splitAndTrim(v.GetString("access.allowed_hosts")),
		AllowedCIDRS: splitAndTrim(v.GetString("access.allowed_cidrs")),
		TrustProxy:   v.GetBool("access.trust_proxy"),

		RateLimitBurst:        v.GetInt("ratelimit.burst"),
		RateLimitRefillPerMin: v.GetInt("ratelimit.refill_per_min"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageBackend {
	case BackendMemory:
	case BackendSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("storage.sqlite_path is required for the sqlite backend")
		}
	case BackendRedis:
		if strings.TrimSpace(c.RedisAddr) == "" {
			return fmt.Errorf("redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown storage.backend %q (want memory, sqlite or redis)", c.StorageBackend)
	}

	switch c.FavoritesMode {
	case FavoritesModeIDs, FavoritesModeRecords:
	default:
		return fmt.Errorf("unknown favorites.mode %q (want ids or records)", c.FavoritesMode)
	}

	if c.SearchDebounce <= 0 {
		return fmt.Errorf("search.debounce must be > 0, got %v", c.SearchDebounce)
	}
	if c.ReloadInterval < 0 {
		return fmt.Errorf("storage.reload_interval must be >= 0, got %v", c.ReloadInterval)
	}
	if strings.TrimSpace(c.GraphQLEndpoint) == "" {
		return fmt.Errorf("graphql.endpoint is required")
	}
	return nil
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	if c.RedisPassword != "" {
		c.RedisPassword = "***REDACTED***"
	}
	return c
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
