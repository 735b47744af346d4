package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment     string
	AppName         string
	Port            string
	LogLevel        slog.Level
	LogFile         string
	SQLitePath      string
	MigrationsPath  string
	SeedDefaultData bool

	MappingsPath       string
	MappingSyncEnabled bool
	MappingSyncMinutes int
	MappingCacheTTL    time.Duration
	MappingCacheSize   int

	RedditBaseURL           string
	UserAgent               string
	SourceTimeout           time.Duration
	SourceConcurrency       int
	SourceRequestsPerMinute int
	PageFetchTimeout        time.Duration

	PushWebhookURL string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment:     getEnv("APP_ENV", "development"),
		AppName:         getEnv("APP_NAME", "crunchythread"),
		Port:            getEnv("APP_PORT", "8080"),
		LogFile:         getEnv("LOG_FILE", ""),
		SQLitePath:      getEnv("SQLITE_PATH", "./data/crunchythread.sqlite"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", ""),
		SeedDefaultData: getEnvAsBool("SEED_DEFAULT_DATA", true),

		MappingsPath:       getEnv("MAPPINGS_PATH", "./mappings"),
		MappingSyncEnabled: getEnvAsBool("MAPPING_SYNC_ENABLED", true),
		MappingSyncMinutes: getEnvAsInt("MAPPING_SYNC_MINUTES", 60),
		MappingCacheTTL:    getEnvAsDuration("MAPPING_CACHE_TTL", 24*time.Hour),
		MappingCacheSize:   getEnvAsInt("MAPPING_CACHE_SIZE", 512),

		RedditBaseURL:           getEnv("REDDIT_BASE_URL", "https://www.reddit.com"),
		UserAgent:               getEnv("USER_AGENT", "crunchythread/0.1.0"),
		SourceTimeout:           getEnvAsDuration("SOURCE_TIMEOUT", 5*time.Second),
		SourceConcurrency:       getEnvAsInt("SOURCE_CONCURRENCY", 4),
		SourceRequestsPerMinute: getEnvAsInt("SOURCE_REQUESTS_PER_MINUTE", 60),
		PageFetchTimeout:        getEnvAsDuration("PAGE_FETCH_TIMEOUT", 10*time.Second),

		PushWebhookURL: getEnv("PUSH_WEBHOOK_URL", ""),
	}

	if cfg.MappingSyncMinutes <= 0 {
		cfg.MappingSyncMinutes = 60
	}
	if cfg.SourceConcurrency <= 0 {
		cfg.SourceConcurrency = 4
	}

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "INFO"))
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel = level

	return cfg, nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q, expected DEBUG|INFO|WARN|ERROR", raw)
	}
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// getEnvAsDuration accepts Go durations ("90s") or a bare number of seconds.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds <= 0 {
			return fallback
		}
		return time.Duration(seconds) * time.Second
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
