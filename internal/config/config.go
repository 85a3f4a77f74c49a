// Package config provides configuration types and loading for npmgate.
//
// Configuration comes from an optional npmgate.yaml file and NPMGATE_*
// environment variables; every field has a default suitable for a local
// Nginx Proxy Manager instance. Note that the defaults leave the MCP
// endpoint unauthenticated; set auth.api_key or the OAuth client pair
// before exposing the server beyond localhost.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the top-level configuration for npmgate.
type Config struct {
	// NPM configures the upstream Nginx Proxy Manager API.
	NPM NPMConfig `yaml:"npm" mapstructure:"npm"`

	// Server configures the HTTP server listener.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Auth configures the authentication gate and the embedded OAuth server.
	Auth AuthConfig `yaml:"auth" mapstructure:"auth"`
}

// NPMConfig configures the upstream Nginx Proxy Manager connection.
type NPMConfig struct {
	// URL is the base URL of the Nginx Proxy Manager admin API.
	URL string `yaml:"url" mapstructure:"url" validate:"required,url"`

	// Email is the admin identity used to mint upstream API tokens.
	Email string `yaml:"email" mapstructure:"email" validate:"required,email"`

	// Password is the admin password. Empty works only against an
	// unconfigured upstream and will fail the first authenticated call.
	Password string `yaml:"password" mapstructure:"password"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// HTTPAddr is the listen address (e.g. ":3000").
	HTTPAddr string `yaml:"http_addr" mapstructure:"http_addr" validate:"required"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// AuthConfig configures how MCP requests are authenticated.
// With neither an api key nor an OAuth client configured the endpoint is
// open.
type AuthConfig struct {
	// APIKey is a static shared secret accepted as a bearer token.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`

	// OAuthClientID and OAuthClientSecret define the single OAuth client.
	// Both must be set together.
	OAuthClientID     string `yaml:"oauth_client_id" mapstructure:"oauth_client_id"`
	OAuthClientSecret string `yaml:"oauth_client_secret" mapstructure:"oauth_client_secret"`

	// SweepInterval is how often expired codes and tokens are purged
	// (e.g. "1m").
	SweepInterval string `yaml:"sweep_interval" mapstructure:"sweep_interval" validate:"omitempty,duration"`
}

// SetDefaults applies sensible default values to the configuration.
func (c *Config) SetDefaults() {
	if c.NPM.URL == "" {
		c.NPM.URL = "http://localhost:81"
	}
	if c.NPM.Email == "" {
		c.NPM.Email = "admin@example.com"
	}

	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = ":3000"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}

	if c.Auth.SweepInterval == "" {
		c.Auth.SweepInterval = "1m"
	}
}

// SweepInterval parses the configured sweep interval. Call after Validate.
func (c *Config) SweepInterval() time.Duration {
	d, err := time.ParseDuration(c.Auth.SweepInterval)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}

// OAuthEnabled reports whether the OAuth grants are configured.
func (c *Config) OAuthEnabled() bool {
	return c.Auth.OAuthClientID != ""
}

// OpenMode reports whether the MCP endpoint accepts unauthenticated requests.
func (c *Config) OpenMode() bool {
	return c.Auth.APIKey == "" && !c.OAuthEnabled()
}

// RegisterCustomValidators registers npmgate-specific validation rules.
// Must be called before validating Config.
func RegisterCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("duration", validateDuration); err != nil {
		return fmt.Errorf("failed to register duration validator: %w", err)
	}
	return nil
}

// validateDuration validates a positive Go duration string like "1m" or "30s".
func validateDuration(fl validator.FieldLevel) bool {
	d, err := time.ParseDuration(fl.Field().String())
	return err == nil && d > 0
}

// Validate validates the Config using struct tags and cross-field rules.
// Returns an error with actionable messages if validation fails.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := RegisterCustomValidators(v); err != nil {
		return err
	}

	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	return c.validateOAuthClientPair()
}

// validateOAuthClientPair ensures the OAuth client id and secret are set
// together. A client without a secret could never complete a token exchange.
func (c *Config) validateOAuthClientPair() error {
	hasID := c.Auth.OAuthClientID != ""
	hasSecret := c.Auth.OAuthClientSecret != ""

	if hasID != hasSecret {
		return errors.New("auth: oauth_client_id and oauth_client_secret must be set together")
	}
	return nil
}

// formatValidationErrors converts validator.ValidationErrors to user-friendly messages.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, e := range validationErrors {
			messages = append(messages, formatSingleValidationError(e))
		}
		return errors.New(strings.Join(messages, "; "))
	}
	return err
}

// formatSingleValidationError creates a user-friendly message for a single validation error.
func formatSingleValidationError(e validator.FieldError) string {
	field := e.Namespace()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "duration":
		return fmt.Sprintf("%s must be a positive duration like '1m' or '30s'", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}
