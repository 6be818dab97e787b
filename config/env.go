package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aluiziolira/go-scrape-amazon/models"
)

// EnvString returns the trimmed value of key when it is set and non-empty.
func EnvString(key string) (string, bool) {
	value := strings.TrimSpace(os.Getenv(key))
	return value, value != ""
}

// EnvInt parses key as an integer.
func EnvInt(key string) (int, bool, error) {
	raw, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return value, true, nil
}

// EnvBool parses key as a boolean. Anything but a boolean literal is a
// *models.ValidationError.
func EnvBool(key string) (bool, bool, error) {
	raw, ok := EnvString(key)
	if !ok {
		return false, false, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false, &models.ValidationError{Field: key, Reason: fmt.Sprintf("can only be true or false, got %q", raw)}
	}
	return value, true, nil
}

// EnvDuration parses key with time.ParseDuration.
func EnvDuration(key string) (time.Duration, bool, error) {
	raw, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return value, true, nil
}

// ApplyEnv overlays SCRAPER_* environment variables onto c.
func (c *Config) ApplyEnv() error {
	for key, dst := range map[string]*string{
		"SCRAPER_BASE_URL":     &c.BaseURL,
		"SCRAPER_USER_AGENT":   &c.UserAgent,
		"SCRAPER_PROXY":        &c.Proxy,
		"SCRAPER_OUTPUT_DIR":   &c.OutputDir,
		"SCRAPER_FORMAT":       &c.OutputFormat,
		"SCRAPER_METRICS_ADDR": &c.MetricsAddr,
	} {
		if value, ok := EnvString(key); ok {
			*dst = value
		}
	}

	if value, ok, err := EnvInt("SCRAPER_MAX_PAGES"); err != nil {
		return err
	} else if ok {
		c.MaxPages = value
	}
	if value, ok, err := EnvDuration("SCRAPER_TIMEOUT"); err != nil {
		return err
	} else if ok {
		c.Timeout = value
	}

	for key, dst := range map[string]*bool{
		"SCRAPER_DEDUPE":    &c.DedupeAcrossPages,
		"SCRAPER_RANDOM_UA": &c.RandomUserAgent,
		"SCRAPER_VERBOSE":   &c.Verbose,
	} {
		value, ok, err := EnvBool(key)
		if err != nil {
			return err
		}
		if ok {
			*dst = value
		}
	}
	return nil
}
