package accounting

import "errors"

// Config holds configuration for the accounting system API connection.
type Config struct {
	// BaseURL is the root URL of the accounting system API
	BaseURL string
	// Username is the API account used to obtain access tokens
	Username string
	// Password is the API account password
	Password string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
	// TokenMarginSeconds is subtracted from the token lifetime so a token
	// is refreshed before the server actually expires it
	TokenMarginSeconds int
}

// Errors for accounting configuration
var (
	ErrConfigMissingBaseURL  = errors.New("accounting: base url is required")
	ErrConfigMissingUsername = errors.New("accounting: username is required")
	ErrConfigMissingPassword = errors.New("accounting: password is required")
)

// NewConfig creates an accounting configuration with defaults.
func NewConfig(baseURL, username, password string) *Config {
	return &Config{
		BaseURL:            baseURL,
		Username:           username,
		Password:           password,
		TimeoutSeconds:     30,
		TokenMarginSeconds: 60,
	}
}

// Validate validates the accounting configuration.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrConfigMissingBaseURL
	}
	if c.Username == "" {
		return ErrConfigMissingUsername
	}
	if c.Password == "" {
		return ErrConfigMissingPassword
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	if c.TokenMarginSeconds <= 0 {
		c.TokenMarginSeconds = 60
	}
	return nil
}
