package transport

import (
	"time"

	"github.com/kbukum/railskit/validation"
)

const (
	defaultTimeout = 30 * time.Second
	defaultName    = "railskit"
)

// Config configures the Adapter.
type Config struct {
	// Name identifies the adapter in logs and circuit breaker state.
	Name string `yaml:"name" mapstructure:"name"`

	// BaseURL is the base URL prepended to relative request paths.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`

	// Timeout is the default request timeout. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Auth configures default authentication applied to all requests.
	// Individual requests can override this.
	Auth *AuthConfig `yaml:"auth" mapstructure:"auth"`

	// TLS configures TLS settings for the HTTP transport.
	TLS *TLSConfig `yaml:"tls" mapstructure:"tls"`

	// Headers are default headers applied to all requests.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// Retry configures retry behavior. Nil disables retry.
	Retry *RetryConfig `yaml:"retry" mapstructure:"retry"`

	// CircuitBreaker configures circuit breaker behavior. Nil disables it.
	CircuitBreaker *CircuitBreakerConfig `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`

	// RateLimit configures client-side rate limiting. Nil disables it.
	RateLimit *RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = defaultName
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Retry != nil {
		c.Retry.applyDefaults()
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	v := validation.New()
	v.Merge("", validation.Struct(c))
	v.Custom(c.Timeout > 0, "timeout", "must be positive")
	if err := c.TLS.Validate(); err != nil {
		v.AddError("tls", err.Error())
	}
	return v.Validate()
}
