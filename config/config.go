package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds the session and output settings shared by every run.
type Config struct {
	BaseURL   string            `yaml:"base_url"`
	UserAgent string            `yaml:"user_agent"`
	Headers   map[string]string `yaml:"headers"`
	// Proxy is host:port or a full URL; bare addresses are dialled over https.
	Proxy   string        `yaml:"proxy"`
	Timeout time.Duration `yaml:"timeout"`
	// MaxPages caps pagination independently of the requested count. Zero
	// leaves the loop bounded only by the count and fetch failures.
	MaxPages          int    `yaml:"max_pages"`
	DedupeAcrossPages bool   `yaml:"dedupe_across_pages"`
	RandomUserAgent   bool   `yaml:"random_user_agent"`
	OutputDir         string `yaml:"output_dir"`
	OutputFormat      string `yaml:"output_format"` // csv, json, dual, or sqlite
	MetricsAddr       string `yaml:"metrics_addr"`
	Verbose           bool   `yaml:"verbose"`
}

// DefaultConfig returns defaults for the public US storefront.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:      "https://www.amazon.com/",
		UserAgent:    "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.13; rv:69.0) Gecko/20100101 Firefox/69.0",
		Timeout:      15 * time.Second,
		MaxPages:     50,
		OutputDir:    ".",
		OutputFormat: "csv",
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}
	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}

	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxPages < 0 {
		return fmt.Errorf("max pages cannot be negative")
	}
	if _, err := c.ProxyURL(); err != nil {
		return err
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output dir cannot be empty")
	}
	switch c.OutputFormat {
	case "csv", "json", "dual", "sqlite":
	default:
		return fmt.Errorf("output format must be csv, json, dual, or sqlite")
	}

	return nil
}

// Host returns the base URL without a trailing slash.
func (c *Config) Host() string {
	return strings.TrimSuffix(c.BaseURL, "/")
}

// ProxyURL parses Proxy. It returns nil when no proxy is configured.
func (c *Config) ProxyURL() (*url.URL, error) {
	raw := strings.TrimSpace(c.Proxy)
	if raw == "" {
		return nil, nil
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("proxy must include a host")
	}
	return parsed, nil
}
