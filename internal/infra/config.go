package infra

import (
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	DatabaseURL      string
	RedisURL         string
	StoragePath      string
	StorageBaseURL   string
	MistralAPIKey    string
	MistralModel     string
	MistralBaseURL   string
	GeminiAPIKey     string
	GeminiModel      string
	GeminiBaseURL    string
	FalAPIKey        string
	FalVideoModel    string
	VideoPollEvery   time.Duration
	VideoPollMax     int
	NotifyLookahead  time.Duration
	NotifyPollEvery  time.Duration
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. Provider credentials are optional at startup: a
// missing key surfaces per call as a precondition error, and a missing
// DATABASE_URL means the queue runs on its in-memory store.
func LoadConfig() (*Config, error) {
	port := getEnv("PORT", "8080")
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             port,
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		StoragePath:      getEnv("STORAGE_PATH", "./storage"),
		StorageBaseURL:   getEnv("STORAGE_BASE_URL", "http://localhost:"+port+"/media"),
		MistralAPIKey:    os.Getenv("MISTRAL_API_KEY"),
		MistralModel:     getEnv("MISTRAL_MODEL", "mistral-small-latest"),
		MistralBaseURL:   getEnv("MISTRAL_BASE_URL", "https://api.mistral.ai/v1"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.0-flash-lite"),
		GeminiBaseURL:    getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		FalAPIKey:        os.Getenv("FAL_API_KEY"),
		FalVideoModel:    getEnv("FAL_VIDEO_MODEL", "fal-ai/wan/v2.1/t2v-480p"),
		VideoPollEvery:   time.Second * time.Duration(getEnvInt("VIDEO_POLL_SECONDS", 6)),
		VideoPollMax:     getEnvInt("VIDEO_POLL_MAX_ATTEMPTS", 100),
		NotifyLookahead:  time.Minute * time.Duration(getEnvInt("NOTIFY_LOOKAHEAD_MINUTES", 15)),
		NotifyPollEvery:  time.Second * time.Duration(getEnvInt("NOTIFY_POLL_SECONDS", 60)),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	return cfg, nil
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
