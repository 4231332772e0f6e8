package invoicing

import (
	"errors"
	"time"
)

// Config holds connection settings for the upstream invoicing API
type Config struct {
	BaseURL   string
	APIKey    string
	CompanyID string
	Timeout   time.Duration
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("invoicing: base URL is required")
	}
	if c.APIKey == "" {
		return errors.New("invoicing: API key is required")
	}
	return nil
}
