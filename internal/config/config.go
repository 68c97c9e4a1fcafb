// Package config содержит логику чтения конфигурации бота.
package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Значения по умолчанию.
const (
	DefaultRunAddress      = "localhost:8080"
	DefaultMenuPath        = "menu.json"
	DefaultGeocoderAddress = "https://nominatim.openstreetmap.org"
	DefaultSessionTTL      = 24 * time.Hour
	DefaultStaleAfter      = 4 * time.Hour
)

// Config содержит параметры конфигурации бота. Переменные окружения
// имеют приоритет над флагами командной строки.
type Config struct {
	BotToken      string        `env:"BOT_TOKEN"`
	AdminChatID   int64         `env:"ADMIN_CHAT_ID"`
	RunAddress    string        `env:"RUN_ADDRESS"`
	OpsToken      string        `env:"OPS_TOKEN"`
	DatabaseURI   string        `env:"DATABASE_URI"`
	RedisAddr     string        `env:"REDIS_ADDR"`
	MenuPath      string        `env:"MENU_PATH"`
	WebhookURL    string        `env:"WEBHOOK_URL"`
	WebhookSecret string        `env:"WEBHOOK_SECRET"`
	GeocoderAddr  string        `env:"GEOCODER_ADDRESS"`
	ZoneImageURL  string        `env:"ZONE_IMAGE_URL"`
	SessionTTL    time.Duration `env:"SESSION_TTL"`
	StaleAfter    time.Duration `env:"STALE_AFTER"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	fromEnv := *cfg

	flag.StringVar(&cfg.BotToken, "t", "", "telegram bot token")
	flag.Int64Var(&cfg.AdminChatID, "admin", 0, "operator chat id for order notifications")
	flag.StringVar(&cfg.RunAddress, "a", DefaultRunAddress, "address and port for ops HTTP server")
	flag.StringVar(&cfg.OpsToken, "ops-token", "", "bearer token protecting the ops API")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.RedisAddr, "redis", "", "redis address for the session store (in-memory when empty)")
	flag.StringVar(&cfg.MenuPath, "menu", DefaultMenuPath, "path to the menu catalog JSON file")
	flag.StringVar(&cfg.WebhookURL, "webhook-url", "", "public base URL for the webhook, the /webhook/{secret} path is appended (long polling when empty)")
	flag.StringVar(&cfg.WebhookSecret, "webhook-secret", "", "webhook path secret")
	flag.StringVar(&cfg.GeocoderAddr, "g", DefaultGeocoderAddress, "geocoder base address")
	flag.StringVar(&cfg.ZoneImageURL, "zone-image", "", "delivery zone image URL")
	flag.DurationVar(&cfg.SessionTTL, "session-ttl", DefaultSessionTTL, "session eviction TTL")
	flag.DurationVar(&cfg.StaleAfter, "stale-after", DefaultStaleAfter, "session age after which /start offers a restart")

	flag.Parse()

	if fromEnv.BotToken != "" {
		cfg.BotToken = fromEnv.BotToken
	}
	if fromEnv.AdminChatID != 0 {
		cfg.AdminChatID = fromEnv.AdminChatID
	}
	if fromEnv.RunAddress != "" {
		cfg.RunAddress = fromEnv.RunAddress
	}
	if fromEnv.OpsToken != "" {
		cfg.OpsToken = fromEnv.OpsToken
	}
	if fromEnv.DatabaseURI != "" {
		cfg.DatabaseURI = fromEnv.DatabaseURI
	}
	if fromEnv.RedisAddr != "" {
		cfg.RedisAddr = fromEnv.RedisAddr
	}
	if fromEnv.MenuPath != "" {
		cfg.MenuPath = fromEnv.MenuPath
	}
	if fromEnv.WebhookURL != "" {
		cfg.WebhookURL = fromEnv.WebhookURL
	}
	if fromEnv.WebhookSecret != "" {
		cfg.WebhookSecret = fromEnv.WebhookSecret
	}
	if fromEnv.GeocoderAddr != "" {
		cfg.GeocoderAddr = fromEnv.GeocoderAddr
	}
	if fromEnv.ZoneImageURL != "" {
		cfg.ZoneImageURL = fromEnv.ZoneImageURL
	}
	if fromEnv.SessionTTL != 0 {
		cfg.SessionTTL = fromEnv.SessionTTL
	}
	if fromEnv.StaleAfter != 0 {
		cfg.StaleAfter = fromEnv.StaleAfter
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = DefaultRunAddress
	}
	if cfg.BotToken == "" {
		return nil, errors.New("bot token is required")
	}
	if cfg.WebhookURL != "" && cfg.WebhookSecret == "" {
		return nil, errors.New("webhook secret is required when webhook URL is set")
	}

	return cfg, nil
}
