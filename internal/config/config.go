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
	AppName             string
	AppEnv              string
	AppPort             string
	DatabaseURL         string
	RedisURL            string
	NatsURL             string
	JWTSecret           string
	PaystackSecretKey   string
	PaystackBaseURL     string
	GatewayTimeout      time.Duration
	SimilarityThreshold float64
	LeaderboardCacheTTL time.Duration
	ReviewerEmail       string
	NotifySubject       string
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
	v.SetEnvPrefix("PLATFORM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Student Platform API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("gateway.timeout", "10s")
	v.SetDefault("similarity.threshold", 80.0)
	v.SetDefault("leaderboard.cache_ttl", "1m")
	v.SetDefault("notify.subject", "platform.notifications")

	gatewayTimeout, err := time.ParseDuration(v.GetString("gateway.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid gateway timeout: %w", err)
	}

	cacheTTL, err := time.ParseDuration(v.GetString("leaderboard.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid leaderboard cache ttl: %w", err)
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		NatsURL:             v.GetString("nats.url"),
		JWTSecret:           v.GetString("jwt.secret"),
		PaystackSecretKey:   v.GetString("paystack.secret_key"),
		PaystackBaseURL:     v.GetString("paystack.base_url"),
		GatewayTimeout:      gatewayTimeout,
		SimilarityThreshold: v.GetFloat64("similarity.threshold"),
		LeaderboardCacheTTL: cacheTTL,
		ReviewerEmail:       v.GetString("reviewer.email"),
		NotifySubject:       v.GetString("notify.subject"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.SimilarityThreshold <= 0 || cfg.SimilarityThreshold > 100 {
		return Config{}, fmt.Errorf("similarity threshold must be within (0, 100]")
	}

	return cfg, nil
}
