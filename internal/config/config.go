package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	APIBaseURL     string
	AssetBaseURL   string
	Token          string
	HTTPTimeout    time.Duration
	UploadMaxBytes int64
	DraftDBPath    string
}

func Load() Config {
	initEnvFile()

	cfg := Config{
		APIBaseURL:  envOr("LAPORAN_API_URL", "http://localhost:8080/api"),
		Token:       os.Getenv("LAPORAN_TOKEN"),
		DraftDBPath: envOr("LAPORAN_DRAFT_DB", "laporan-drafts.db"),
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	cfg.AssetBaseURL = envOr("LAPORAN_ASSET_URL", strings.TrimSuffix(cfg.APIBaseURL, "/api"))
	cfg.HTTPTimeout = parseDurationOr("LAPORAN_HTTP_TIMEOUT", 30*time.Second)
	cfg.UploadMaxBytes = parseBytesOr("LAPORAN_UPLOAD_MAX", 0)
	return cfg
}

// UploadLimitFor returns the upload size ceiling for a destination category.
// The medsos surface historically allows 10MB while the report surfaces cap
// at 5MB; LAPORAN_UPLOAD_MAX overrides both.
func (c Config) UploadLimitFor(category string) int64 {
	if c.UploadMaxBytes > 0 {
		return c.UploadMaxBytes
	}
	if category == "media-sosial" {
		return 10 << 20
	}
	return 5 << 20
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func parseBytesOr(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
