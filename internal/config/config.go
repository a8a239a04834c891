// Package config resolves runtime settings from an optional config file and
// the environment.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds every tunable of the server and the CLI.
type Config struct {
	APIKey            string        `mapstructure:"api_key"`
	StatisticsBaseURL string        `mapstructure:"statistics_base_url"`
	DocumentsBaseURL  string        `mapstructure:"documents_base_url"`
	ReportTimeout     time.Duration `mapstructure:"report_timeout"`
	DocumentTimeout   time.Duration `mapstructure:"document_timeout"`
	PageInterval      time.Duration `mapstructure:"page_interval"`
	HTTPAddr          string        `mapstructure:"http_addr"`
	HTTPToken         string        `mapstructure:"http_token"`
	HTTPAllowlist     string        `mapstructure:"http_allowlist"`
	LogLevel          string        `mapstructure:"log_level"`
	Home              string        `mapstructure:"home"`
}

var envKeys = map[string]string{
	"api_key":             "WB_FINANCES_OAUTH_TOKEN",
	"statistics_base_url": "WB_STATISTICS_BASE_URL",
	"documents_base_url":  "WB_DOCUMENTS_BASE_URL",
	"report_timeout":      "WB_REPORT_TIMEOUT",
	"document_timeout":    "WB_DOCUMENT_TIMEOUT",
	"page_interval":       "WB_PAGE_INTERVAL",
	"http_addr":           "MCP_HTTP_ADDR",
	"http_token":          "MCP_HTTP_TOKEN",
	"http_allowlist":      "MCP_HTTP_ALLOWLIST",
	"log_level":           "LOG_LEVEL",
	"home":                "WB_FINANCES_HOME",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("statistics_base_url", "https://statistics-api.wildberries.ru")
	v.SetDefault("documents_base_url", "https://documents-api.wildberries.ru")
	v.SetDefault("report_timeout", 60*time.Second)
	v.SetDefault("document_timeout", 30*time.Second)
	v.SetDefault("page_interval", 61*time.Second)
	v.SetDefault("http_addr", ":3333")
	v.SetDefault("log_level", "info")
}

// Load reads path when non-empty, then lets environment variables override it.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the clients cannot run with.
func (c *Config) Validate() error {
	if c.ReportTimeout <= 0 {
		return fmt.Errorf("report_timeout must be positive, got %s", c.ReportTimeout)
	}
	if c.DocumentTimeout <= 0 {
		return fmt.Errorf("document_timeout must be positive, got %s", c.DocumentTimeout)
	}
	if c.PageInterval < 0 {
		return fmt.Errorf("page_interval must not be negative, got %s", c.PageInterval)
	}
	return nil
}
