package infra

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	RedisAddr   string

	ReplicateAPIToken string
	ReplicateBaseURL  string

	GeoIPDBPath   string
	DefaultLocale string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	RateLimitMax    int
	RateLimitWindow time.Duration

	DemoTimeout   time.Duration
	RemoteTimeout time.Duration
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. DATABASE_URL and REDIS_ADDR are optional: with an
// empty DATABASE_URL the service keeps jobs in memory, with an empty
// REDIS_ADDR rate limiting stays process-local.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		ReplicateAPIToken: replicateTokenFromEnv(),
		ReplicateBaseURL:  getEnv("REPLICATE_BASE_URL", "https://api.replicate.com/v1"),
		GeoIPDBPath:       os.Getenv("GEOIP_DB_PATH"),
		DefaultLocale:     getEnv("DEFAULT_LOCALE", "id"),
		HTTPReadTimeout:   time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:  time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:   time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitMax:      getEnvInt("RATE_LIMIT_MAX", 5),
		RateLimitWindow:   time.Second * time.Duration(getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60)),
		DemoTimeout:       time.Second * time.Duration(getEnvInt("DEMO_TIMEOUT_SECONDS", 120)),
		RemoteTimeout:     time.Second * time.Duration(getEnvInt("REMOTE_TIMEOUT_SECONDS", 300)),
	}

	return cfg, nil
}

// replicateTokenFromEnv checks both historical variable names and rejects
// placeholder values left over from .env templates.
func replicateTokenFromEnv() string {
	for _, key := range []string{"REPLICATE_API_TOKEN", "REPLICATE_API_KEY"} {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			continue
		}
		if IsUsableToken(v) {
			return v
		}
	}
	return ""
}

// IsUsableToken reports whether a credential looks like a real token rather
// than a template placeholder.
func IsUsableToken(token string) bool {
	token = strings.TrimSpace(token)
	if len(token) <= 10 {
		return false
	}
	lower := strings.ToLower(token)
	return !strings.Contains(lower, "your_replicate")
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
