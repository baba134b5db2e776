package app

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/foliokit/folio/pkg/cryptox"
	"github.com/foliokit/folio/pkg/jwtx"
)

type Config struct {
	Issuer      string // Issuer claim for session tokens (default: folio)
	TokenSecret string // Required: HS256 signing secret, min 32 bytes

	TokenTTL  time.Duration // Session token lifetime (default: 7 days)
	InviteTTL time.Duration // Default invite code lifetime (default: 24h)

	HashMemoryKiB   int // Argon2id memory cost in KiB (default: library default)
	HashIterations  int // Argon2id time cost
	HashParallelism int // Argon2id lanes

	AdminAllowedRanges []string // Optional: CIDR allowlist for /api/admin routes

	AdminSeedName     string // Optional: name for the bootstrapped admin
	AdminSeedEmail    string // Optional: seed admin email (empty disables bootstrap)
	AdminSeedPassword string // Optional: seed admin password

	DatabaseFile         string        // Path to SQLite database file (default: ./folio.db)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:      getEnvOrDefault("FOLIO_ISSUER", "folio"),
		TokenSecret: os.Getenv("FOLIO_TOKEN_SECRET"),

		TokenTTL:  getEnvDurationOrDefault("FOLIO_TOKEN_TTL", jwtx.DefaultSessionTTL),
		InviteTTL: getEnvDurationOrDefault("FOLIO_INVITE_TTL", 24*time.Hour),

		HashMemoryKiB:   getEnvIntOrDefault("FOLIO_HASH_MEMORY_KIB", 0),
		HashIterations:  getEnvIntOrDefault("FOLIO_HASH_ITERATIONS", 0),
		HashParallelism: getEnvIntOrDefault("FOLIO_HASH_PARALLELISM", 0),

		AdminAllowedRanges: splitList(os.Getenv("FOLIO_ADMIN_ALLOWED_RANGES")),

		AdminSeedName:     os.Getenv("FOLIO_ADMIN_NAME"),
		AdminSeedEmail:    os.Getenv("FOLIO_ADMIN_EMAIL"),
		AdminSeedPassword: os.Getenv("FOLIO_ADMIN_PASSWORD"),

		DatabaseFile:         getEnvOrDefault("FOLIO_DATABASE_FILE", "folio.db"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	return cfg
}

// Validate catches fatal misconfiguration before anything starts serving.
func (c Config) Validate() error {
	if len(c.TokenSecret) < jwtx.MinSecretLength {
		return errors.New("FOLIO_TOKEN_SECRET must be set and at least 32 bytes")
	}
	return nil
}

// HashParams folds the configured Argon2 costs over the library defaults, so
// partial overrides keep the remaining defaults.
func (c Config) HashParams() cryptox.Params {
	p := cryptox.DefaultParams
	if c.HashMemoryKiB > 0 {
		p.Memory = uint32(c.HashMemoryKiB)
	}
	if c.HashIterations > 0 {
		p.Iterations = uint32(c.HashIterations)
	}
	if c.HashParallelism > 0 {
		p.Parallelism = uint8(c.HashParallelism)
	}
	return p
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer hours (invite/token lifetimes are set in hours)
	if hours, err := strconv.Atoi(value); err == nil {
		return time.Duration(hours) * time.Hour
	}

	return defaultValue
}
