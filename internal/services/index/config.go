// File: internal/services/index/config.go
package index

import (
	"errors"
	"time"
)

// PineconeConfig holds connection settings for the external index mode.
type PineconeConfig struct {
	APIKey    string
	IndexHost string
	Namespace string

	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

func DefaultPineconeConfig() *PineconeConfig {
	return &PineconeConfig{
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		RetryDelay: 2 * time.Second,
	}
}

func (c *PineconeConfig) Validate() error {
	if c.APIKey == "" {
		return errors.New("pinecone API key is required")
	}
	if c.IndexHost == "" {
		return errors.New("pinecone index host is required")
	}
	if c.Namespace == "" {
		return errors.New("pinecone namespace is required")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return errors.New("max retries cannot be negative")
	}
	return nil
}
