package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName          string
	AppEnv           string
	AppPort          string
	DatabaseURL      string
	RedisURL         string
	NATSURL          string
	JWTSecret        string
	AccessTokenTTL   time.Duration
	LLMProvider      string
	LLMAPIKey        string
	LLMAPIURL        string
	LLMModel         string
	LLMMaxConcurrent int64
	EvaluateTimeout  time.Duration
	QueueWorkers     int
	QueueBuffer      int
	ReportCacheTTL   time.Duration
	EvaluationEvents string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PREPVIEW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "PrepView API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("jwt.access_token_ttl", "30m")
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.max_concurrent", 1)
	v.SetDefault("llm.evaluate_timeout", "90s")
	v.SetDefault("queue.workers", 2)
	v.SetDefault("queue.buffer", 100)
	v.SetDefault("report.cache_ttl", "30s")
	v.SetDefault("evaluation.events_subject", "prepview.evaluations")

	tokenTTL, err := time.ParseDuration(v.GetString("jwt.access_token_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid access token ttl: %w", err)
	}

	evaluateTimeout, err := time.ParseDuration(v.GetString("llm.evaluate_timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid evaluate timeout: %w", err)
	}

	reportTTL, err := time.ParseDuration(v.GetString("report.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid report cache ttl: %w", err)
	}

	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppPort:          v.GetString("app.port"),
		DatabaseURL:      v.GetString("database.url"),
		RedisURL:         v.GetString("redis.url"),
		NATSURL:          v.GetString("nats.url"),
		JWTSecret:        v.GetString("jwt.secret"),
		AccessTokenTTL:   tokenTTL,
		LLMProvider:      strings.ToLower(v.GetString("llm.provider")),
		LLMAPIKey:        v.GetString("llm.api_key"),
		LLMAPIURL:        v.GetString("llm.api_url"),
		LLMModel:         v.GetString("llm.model"),
		LLMMaxConcurrent: v.GetInt64("llm.max_concurrent"),
		EvaluateTimeout:  evaluateTimeout,
		QueueWorkers:     v.GetInt("queue.workers"),
		QueueBuffer:      v.GetInt("queue.buffer"),
		ReportCacheTTL:   reportTTL,
		EvaluationEvents: v.GetString("evaluation.events_subject"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.LLMMaxConcurrent <= 0 {
		cfg.LLMMaxConcurrent = 1
	}

	return cfg, nil
}
