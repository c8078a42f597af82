// File: internal/services/label/config.go
package label

import (
	"errors"
	"time"
)

type Config struct {
	// BaseURL of the drug label API, e.g. https://api.fda.gov
	BaseURL string
	Timeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL: "https://api.fda.gov",
		Timeout: 15 * time.Second,
	}
}

func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("label API base URL is required")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	return nil
}
