// config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds all application configuration, read once at startup.
type Config struct {
	Server ServerConfig
	Whoop  WhoopConfig
	Redis  RedisConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port          string
	BaseURL       string // externally reachable base URL, used for the OAuth redirect URI
	SessionSecret string
}

// WhoopConfig holds WHOOP API credentials and endpoints
type WhoopConfig struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	APIBaseURL   string
}

// RedisConfig holds the optional durable token mirror settings
type RedisConfig struct {
	Addr      string // empty means no durable mirror; tokens live in memory only
	Password  string
	KeyPrefix string
}

// Load reads configuration from the environment
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Port:          getEnv("PORT", "8080"),
			BaseURL:       getEnv("BASE_URL", "http://localhost:8080"),
			SessionSecret: os.Getenv("SESSION_SECRET"),
		},
		Whoop: WhoopConfig{
			ClientID:     os.Getenv("WHOOP_CLIENT_ID"),
			ClientSecret: os.Getenv("WHOOP_CLIENT_SECRET"),
			AuthURL:      getEnv("WHOOP_AUTH_URL", "https://api.prod.whoop.com/oauth/oauth2/auth"),
			TokenURL:     getEnv("WHOOP_TOKEN_URL", "https://api.prod.whoop.com/oauth/oauth2/token"),
			APIBaseURL:   getEnv("WHOOP_API_BASE_URL", "https://api.prod.whoop.com/developer/v1"),
		},
		Redis: RedisConfig{
			Addr:      os.Getenv("REDIS_URL"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "whoopserver"),
		},
	}

	cfg.Server.BaseURL = strings.TrimRight(cfg.Server.BaseURL, "/")

	if cfg.Whoop.ClientID == "" || cfg.Whoop.ClientSecret == "" {
		return Config{}, fmt.Errorf("WHOOP_CLIENT_ID and WHOOP_CLIENT_SECRET are required")
	}
	if cfg.Server.SessionSecret == "" {
		return Config{}, fmt.Errorf("SESSION_SECRET is required")
	}

	return cfg, nil
}

// RedirectURI returns the OAuth callback URL derived from the public base URL
func (c Config) RedirectURI() string {
	return c.Server.BaseURL + "/auth/callback"
}

// getEnv reads an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
