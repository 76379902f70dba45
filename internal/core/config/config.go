package config

import (
	"time"

	redisclient "github.com/campusdining/dininghours/internal/infra/redis"
	"github.com/campusdining/dininghours/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Upstream UpstreamConfig     `yaml:"upstream"`
	Redis    redisclient.Config `yaml:"redis"`
	Logging  LoggingConfig      `yaml:"logging"`
	Database postgres.Config    `yaml:"database"`
}

// ServerConfig holds the ops HTTP server settings. Port 0 disables the server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// UpstreamConfig holds settings for the dining-schedule API and the browser
// identity used to reach it.
type UpstreamConfig struct {
	BaseURL     string        `yaml:"base_url"`
	SiteID      string        `yaml:"site_id"`
	LandingURL  string        `yaml:"landing_url"`
	UserAgent   string        `yaml:"user_agent"`
	Locale      string        `yaml:"locale"`
	SettleDelay time.Duration `yaml:"settle_delay"`
	NavTimeout  time.Duration `yaml:"nav_timeout"`
}
