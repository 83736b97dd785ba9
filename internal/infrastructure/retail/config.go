package retail

import "errors"

// Config holds configuration for the POS API connection.
type Config struct {
	// BaseURL is the root URL of the POS API
	BaseURL string
	// APIKey authenticates this service against the POS API
	APIKey string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
	// PageSize bounds how many orders one range page returns
	PageSize int
}

// Errors for POS configuration
var (
	ErrConfigMissingBaseURL = errors.New("retail: base url is required")
	ErrConfigMissingAPIKey  = errors.New("retail: api key is required")
)

// NewConfig creates a POS configuration with defaults.
func NewConfig(baseURL, apiKey string) *Config {
	return &Config{
		BaseURL:        baseURL,
		APIKey:         apiKey,
		TimeoutSeconds: 30,
		PageSize:       200,
	}
}

// Validate validates the POS configuration.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrConfigMissingBaseURL
	}
	if c.APIKey == "" {
		return ErrConfigMissingAPIKey
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	if c.PageSize <= 0 {
		c.PageSize = 200
	}
	return nil
}
