package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr          string
	RedisURL      string
	TokenSecret   string
	EditorPassKey string
	SessionTTL    time.Duration
	ViewerBaseURL string
	CORSOrigin    string
	BundleTimeout time.Duration
	LogLevel      string
}

func Load() Config {
	return Config{
		Addr:          getenv("FOLIO_ADDR", ":8791"),
		// Empty means no durable slots: the editor runs memory-only.
		RedisURL:      getenv("REDIS_URL", ""),
		TokenSecret:   getenv("FOLIO_TOKEN_SECRET", "folio-dev-secret"),
		EditorPassKey: getenv("FOLIO_EDITOR_PASS_HASH", ""),
		SessionTTL:    time.Duration(getenvInt("FOLIO_SESSION_TTL_SECONDS", 43200)) * time.Second,
		ViewerBaseURL: getenv("FOLIO_VIEWER_BASE_URL", "http://localhost:8791/view"),
		CORSOrigin:    getenv("FOLIO_CORS_ORIGIN", "*"),
		BundleTimeout: time.Duration(getenvInt("FOLIO_BUNDLE_TIMEOUT_SECONDS", 60)) * time.Second,
		LogLevel:      getenv("FOLIO_LOG_LEVEL", "info"),
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
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
