package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aluiziolira/go-scrape-amazon/models"
)

// File is the on-disk layout: session settings at the top level and an
// optional request block.
type File struct {
	Config  `yaml:",inline"`
	Request *models.ScrapeRequest `yaml:"request"`
}

// LoadFile overlays the YAML file at path onto c and returns its request
// block, if any. Values of the wrong type (e.g. a non-boolean flag) are
// reported as *models.ValidationError.
func (c *Config) LoadFile(path string) (*models.ScrapeRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return c.decode(data)
}

func (c *Config) decode(data []byte) (*models.ScrapeRequest, error) {
	file := File{Config: *c}
	if err := yaml.Unmarshal(data, &file); err != nil {
		var typeErr *yaml.TypeError
		if errors.As(err, &typeErr) {
			return nil, &models.ValidationError{Field: "config", Reason: typeErr.Error()}
		}
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	*c = file.Config
	return file.Request, nil
}
