package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MrSnakeDoc/linkbox/internal/logger"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendBolt   = "bolt"
	BackendRedis  = "redis"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request handler timeout

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Storage
	Backend           string        // "memory" | "bolt" | "redis"
	BoltPath          string        // bbolt database file
	IndexSyncInterval time.Duration // re-read the store into the index (0 = startup only)

	// Background jobs
	ImportFile     string        // bookmarks.yaml to import (optional, empty = import disabled)
	ReloadInterval time.Duration // interval to re-import the file (default: 24h)
	GCInterval     time.Duration // interval to run garbage collection (default: 24h)
	GCThreshold    time.Duration // purge links deleted for longer than this (default: 30d)

	// Events
	NATSURL     string // optional, empty = events disabled
	NATSSubject string // subject prefix, events go to <prefix>.<type>

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	// Access restrictions
	AllowedHosts     []string // optional, restrict access to specific Host headers
	AdminCIDRS       []string // optional, restrict admin routes (/api/verify, /api/reload) to these IPs/CIDRs
	TrustProxy       bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	RateLimitBurst   int      // write requests allowed in a burst per client IP
	RateLimitRefill  int      // write tokens refilled per client IP per minute
	RateLimitEntries int      // max tracked client IPs before sweeping
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("LINKBOX_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("LINKBOX_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("LINKBOX_REQUEST_TIMEOUT", 10*time.Second),

		// Logging
		LogLevel:  getenv("LINKBOX_LOG_LEVEL", "info"),
		PrettyLog: mustBool("LINKBOX_PRETTY_LOG", logger.PrettyDefault()),

		// Storage
		Backend:  strings.ToLower(getenv("LINKBOX_STORE", BackendBolt)),
		BoltPath: getenv("LINKBOX_BOLT_PATH", "linkbox.db"),

		// Background jobs
		ImportFile:     getenv("LINKBOX_IMPORT_FILE", ""), // Optional, empty = import disabled
		ReloadInterval: mustDuration("LINKBOX_RELOAD_INTERVAL", 24*time.Hour),
		GCInterval:     mustDuration("LINKBOX_GC_INTERVAL", 24*time.Hour),
		GCThreshold:    mustDuration("LINKBOX_GC_THRESHOLD", 30*24*time.Hour),

		// Events
		NATSURL:     getenv("LINKBOX_NATS_URL", ""),
		NATSSubject: getenv("LINKBOX_NATS_SUBJECT", "linkbox"),

		// Redis settings
		RedisUser:             getenv("LINKBOX_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("LINKBOX_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("LINKBOX_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("LINKBOX_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts:     splitAndTrim(getenv("LINKBOX_ALLOWED_HOSTS", "")),
		AdminCIDRS:       parseAllowedIPs(getenv("LINKBOX_ADMIN_CIDRS", "")),
		TrustProxy:       mustBool("LINKBOX_TRUST_PROXY", false),
		RateLimitBurst:   getenvInt("LINKBOX_RATE_LIMIT_BURST", 30),
		RateLimitRefill:  getenvInt("LINKBOX_RATE_LIMIT_REFILL", 60),
		RateLimitEntries: getenvInt("LINKBOX_RATE_LIMIT_MAX_ENTRIES", 10000),
	}

	var syncDefault time.Duration
	switch cfg.Backend {
	case BackendMemory, BackendBolt:
	case BackendRedis:
		cfg.RedisAddr = requireEnv("LINKBOX_REDIS_ADDR")
		// Other instances may write to the same store.
		syncDefault = 30 * time.Second
	default:
		panic(fmt.Sprintf("❌ FATAL: Unknown LINKBOX_STORE %q (want memory, bolt or redis)", cfg.Backend))
	}
	cfg.IndexSyncInterval = mustDuration("LINKBOX_INDEX_SYNC_INTERVAL", syncDefault)

	// Validate Redis password configuration
	if cfg.Backend == BackendRedis && cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: LINKBOX_REDIS_PASSWORD is required when LINKBOX_REDIS_PASSWORD_REQUIRED=true")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
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
