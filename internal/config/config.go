package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	BotToken    string
	BotUsername string
	ChannelURL  string
	BaseURL     string
	AdminToken  string
	DBPath      string
	DatabaseURL string
	GeoIPPath   string
	LogLevel    string
}

// Load reads configuration from a .env file (if present) and the environment.
// All required values are validated here so the process fails before it binds.
func Load() (*Config, error) {
	_ = godotenv.Load()

	botToken := strings.TrimSpace(os.Getenv("BOT_TOKEN"))
	if botToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}

	botUsername := strings.TrimPrefix(strings.TrimSpace(os.Getenv("BOT_USERNAME")), "@")
	if botUsername == "" {
		return nil, fmt.Errorf("BOT_USERNAME is required")
	}

	channelURL := strings.TrimSpace(os.Getenv("CHANNEL_URL"))
	if channelURL == "" {
		return nil, fmt.Errorf("CHANNEL_URL is required")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(os.Getenv("BASE_URL")), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("BASE_URL is required")
	}

	adminToken := strings.TrimSpace(os.Getenv("ADMIN_TOKEN"))
	if adminToken == "" {
		return nil, fmt.Errorf("ADMIN_TOKEN is required")
	}

	return &Config{
		Port:        envOrDefault("PORT", "8080"),
		BotToken:    botToken,
		BotUsername: botUsername,
		ChannelURL:  channelURL,
		BaseURL:     baseURL,
		AdminToken:  adminToken,
		DBPath:      envOrDefault("TRACK_DB", "./tracker.sqlite3"),
		DatabaseURL: databaseURL(),
		GeoIPPath:   os.Getenv("GEOIP_PATH"),
		LogLevel:    envOrDefault("LOG_LEVEL", "info"),
	}, nil
}

// UsePostgres reports whether the networked backend should be used. The
// decision is made once at startup and never revisited.
func (c *Config) UsePostgres() bool {
	u := strings.ToLower(c.DatabaseURL)
	return strings.HasPrefix(u, "postgres://") || strings.HasPrefix(u, "postgresql://")
}

// DeepLink is the Telegram deep link the redirect handler points visitors at.
func (c *Config) DeepLink(token string) string {
	return "https://t.me/" + c.BotUsername + "?start=ig_" + token
}

// TrackURL is the public bio-link target of this deployment.
func (c *Config) TrackURL() string {
	return c.BaseURL + "/ig"
}

// WebhookURL is the public endpoint registered with Telegram.
func (c *Config) WebhookURL() string {
	return c.BaseURL + "/tg/webhook"
}

func databaseURL() string {
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv("DB_URL"))
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
