package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core
	GeminiAPIKey string `env:"GEMINI_API_KEY,required"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`

	// Server
	Port int `env:"PORT" envDefault:"8080"`

	// Optional transcript archive. Sessions stay fully in-memory when
	// unset; see internal/repository.
	DatabaseURL string `env:"DATABASE_URL"`

	// Optional operational alerting to a Telegram chat.
	AlertBotToken string `env:"ALERT_BOT_TOKEN"`
	AlertChatID   int64  `env:"ALERT_CHAT_ID"`

	// Grounding citation resolution (title fetch via page scrape).
	ResolveGrounding bool `env:"RESOLVE_GROUNDING" envDefault:"true"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) ArchiveEnabled() bool {
	return c.DatabaseURL != ""
}

func (c *Config) AlertsEnabled() bool {
	return c.AlertBotToken != "" && c.AlertChatID != 0
}
