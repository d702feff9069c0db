// Package config loads and validates gateway configuration from the
// environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr string

	// Upstream credentials. Absence is not a startup error: the matching
	// endpoints answer 500 instead, so the other surface stays usable.
	GeminiAPIKey string
	DeepLAPIKey  string

	GeminiModel   string
	GeminiBaseURL string
	DeepLBaseURL  string

	// TurnTimeout bounds one whole chat turn (model call plus any
	// recovery/backfill translation). On expiry the turn is abandoned
	// with the history untouched.
	TurnTimeout time.Duration

	MaxBodyBytes    int64
	MaxHistoryTurns int

	// Decoded-size budget for the base64 audio payload, enforced before
	// any upstream call.
	MaxAudioBytes int64

	// CORS
	CORSAllowedOrigins map[string]struct{} // empty => disabled

	// In-memory limits (per client address).
	LimitRPS                   float64
	LimitBurst                 int
	LimitMaxConcurrentRequests int

	// Operational defaults
	ReadHeaderTimeout   time.Duration
	ReadTimeout         time.Duration
	ShutdownGracePeriod time.Duration

	// Upstream HTTP client defaults
	UpstreamConnectTimeout        time.Duration
	UpstreamResponseHeaderTimeout time.Duration
}

func LoadFromEnv() (Config, error) {
	cfg := Config{
		Addr:                          envOr("KAIWA_ADDR", ":8080"),
		GeminiAPIKey:                  strings.TrimSpace(os.Getenv("GOOGLE_GENERATIVE_AI_API_KEY")),
		DeepLAPIKey:                   strings.TrimSpace(os.Getenv("DEEPL_API_KEY")),
		GeminiModel:                   envOr("KAIWA_GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL:                 envOr("KAIWA_GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		DeepLBaseURL:                  envOr("KAIWA_DEEPL_BASE_URL", "https://api-free.deepl.com"),
		TurnTimeout:                   envDurationOr("KAIWA_TURN_TIMEOUT", 30*time.Second),
		MaxBodyBytes:                  envInt64Or("KAIWA_MAX_BODY_BYTES", 16<<20), // 16 MiB; audio turns are large
		MaxHistoryTurns:               envIntOr("KAIWA_MAX_HISTORY_TURNS", 64),
		MaxAudioBytes:                 envInt64Or("KAIWA_MAX_AUDIO_BYTES", 8<<20), // 8 MiB decoded
		CORSAllowedOrigins:            make(map[string]struct{}),
		LimitRPS:                      envFloat64Or("KAIWA_RATE_LIMIT_RPS", 2.0),
		LimitBurst:                    envIntOr("KAIWA_RATE_LIMIT_BURST", 4),
		LimitMaxConcurrentRequests:    envIntOr("KAIWA_MAX_CONCURRENT_REQUESTS", 20),
		ReadHeaderTimeout:             envDurationOr("KAIWA_READ_HEADER_TIMEOUT", 10*time.Second),
		ReadTimeout:                   envDurationOr("KAIWA_READ_TIMEOUT", 60*time.Second),
		ShutdownGracePeriod:           envDurationOr("KAIWA_SHUTDOWN_GRACE_PERIOD", 30*time.Second),
		UpstreamConnectTimeout:        envDurationOr("KAIWA_CONNECT_TIMEOUT", 5*time.Second),
		UpstreamResponseHeaderTimeout: envDurationOr("KAIWA_RESPONSE_HEADER_TIMEOUT", 30*time.Second),
	}

	for _, origin := range splitCSV(os.Getenv("KAIWA_CORS_ORIGINS")) {
		cfg.CORSAllowedOrigins[origin] = struct{}{}
	}

	if strings.TrimSpace(cfg.GeminiModel) == "" {
		return Config{}, fmt.Errorf("KAIWA_GEMINI_MODEL must not be empty")
	}
	if strings.TrimSpace(cfg.GeminiBaseURL) == "" {
		return Config{}, fmt.Errorf("KAIWA_GEMINI_BASE_URL must not be empty")
	}
	if strings.TrimSpace(cfg.DeepLBaseURL) == "" {
		return Config{}, fmt.Errorf("KAIWA_DEEPL_BASE_URL must not be empty")
	}
	if cfg.TurnTimeout <= 0 {
		return Config{}, fmt.Errorf("KAIWA_TURN_TIMEOUT must be > 0")
	}
	if cfg.MaxBodyBytes <= 0 {
		return Config{}, fmt.Errorf("KAIWA_MAX_BODY_BYTES must be > 0")
	}
	if cfg.MaxHistoryTurns <= 0 {
		return Config{}, fmt.Errorf("KAIWA_MAX_HISTORY_TURNS must be > 0")
	}
	if cfg.MaxAudioBytes <= 0 {
		return Config{}, fmt.Errorf("KAIWA_MAX_AUDIO_BYTES must be > 0")
	}
	if cfg.LimitRPS < 0 {
		return Config{}, fmt.Errorf("KAIWA_RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.LimitBurst < 0 {
		return Config{}, fmt.Errorf("KAIWA_RATE_LIMIT_BURST must be >= 0")
	}
	if cfg.LimitMaxConcurrentRequests < 0 {
		return Config{}, fmt.Errorf("KAIWA_MAX_CONCURRENT_REQUESTS must be >= 0")
	}
	if cfg.ReadHeaderTimeout <= 0 {
		return Config{}, fmt.Errorf("KAIWA_READ_HEADER_TIMEOUT must be > 0")
	}
	if cfg.ReadTimeout <= 0 {
		return Config{}, fmt.Errorf("KAIWA_READ_TIMEOUT must be > 0")
	}
	if cfg.ShutdownGracePeriod <= 0 {
		return Config{}, fmt.Errorf("KAIWA_SHUTDOWN_GRACE_PERIOD must be > 0")
	}
	if cfg.UpstreamConnectTimeout <= 0 {
		return Config{}, fmt.Errorf("KAIWA_CONNECT_TIMEOUT must be > 0")
	}
	if cfg.UpstreamResponseHeaderTimeout <= 0 {
		return Config{}, fmt.Errorf("KAIWA_RESPONSE_HEADER_TIMEOUT must be > 0")
	}

	return cfg, nil
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt64Or(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func envIntOr(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func envFloat64Or(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return n
}

func envDurationOr(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}

func splitCSV(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
