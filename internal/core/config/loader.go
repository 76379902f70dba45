package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Defaults mirror the production DineOnCampus deployment.
const (
	defaultBaseURL    = "https://apiv4.dineoncampus.com"
	defaultSiteID     = "62312845a9f13a1011b4dd3a"
	defaultLandingURL = "https://new.dineoncampus.com"
	defaultUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a configuration with all defaults applied and no file read.
func Default() *AppConfig {
	var cfg AppConfig
	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Upstream.BaseURL == "" {
		cfg.Upstream.BaseURL = defaultBaseURL
	}
	if cfg.Upstream.SiteID == "" {
		cfg.Upstream.SiteID = defaultSiteID
	}
	if cfg.Upstream.LandingURL == "" {
		cfg.Upstream.LandingURL = defaultLandingURL
	}
	if cfg.Upstream.UserAgent == "" {
		cfg.Upstream.UserAgent = defaultUserAgent
	}
	if cfg.Upstream.Locale == "" {
		cfg.Upstream.Locale = "en-US"
	}
	if cfg.Upstream.SettleDelay == 0 {
		cfg.Upstream.SettleDelay = 1500 * time.Millisecond
	}
	if cfg.Upstream.NavTimeout == 0 {
		cfg.Upstream.NavTimeout = 45 * time.Second
	}
}
