package config

import (
	"os"
	"strconv"
	"time"
)

// Config is loaded once at startup and passed into components; nothing reads
// the environment after this.
type Config struct {
	Port           string
	FrontendOrigin string

	Provider      string
	APIKey        string
	BaseURL       string
	PrimaryModel  string
	FallbackModel string
	Temperature   float64
	MaxTokens     int
	ModelTimeout  time.Duration

	DatabaseURL        string
	RedisURL           string
	JWTSecret          string
	AuthCredentialHash string
}

func Load() Config {
	cfg := Config{
		Port:               os.Getenv("PORT"),
		FrontendOrigin:     os.Getenv("FRONTEND_ORIGIN"),
		Provider:           os.Getenv("MODEL_PROVIDER"),
		APIKey:             os.Getenv("MODEL_API_KEY"),
		BaseURL:            os.Getenv("MODEL_BASE_URL"),
		PrimaryModel:       os.Getenv("PRIMARY_MODEL"),
		FallbackModel:      os.Getenv("FALLBACK_MODEL"),
		Temperature:        floatEnv("MODEL_TEMPERATURE", 0.2),
		MaxTokens:          intEnv("MODEL_MAX_TOKENS", 1024),
		ModelTimeout:       time.Duration(intEnv("MODEL_TIMEOUT_SECONDS", 30)) * time.Second,
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		AuthCredentialHash: os.Getenv("AUTH_CREDENTIAL_HASH"),
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Provider == "" {
		cfg.Provider = "together"
	}
	if cfg.PrimaryModel == "" {
		cfg.PrimaryModel = "meta-llama/Llama-3.3-70B-Instruct-Turbo"
	}
	if cfg.FallbackModel == "" {
		cfg.FallbackModel = "mistralai/Mistral-7B-Instruct-v0.1"
	}
	return cfg
}

func intEnv(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func floatEnv(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}
