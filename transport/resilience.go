package transport

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/kbukum/railskit/logger"
)

// RetryConfig configures exponential backoff retries. Only errors whose
// IsRetryable reports true are retried.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including the first).
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts" validate:"gte=1"`
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration `yaml:"initial_backoff" mapstructure:"initial_backoff"`
	// MaxBackoff caps the delay between retries.
	MaxBackoff time.Duration `yaml:"max_backoff" mapstructure:"max_backoff"`
	// Multiplier grows the delay after each retry.
	Multiplier float64 `yaml:"multiplier" mapstructure:"multiplier" validate:"omitempty,gte=1"`
	// Jitter randomizes each delay by up to this fraction (0.0 to 1.0).
	Jitter float64 `yaml:"jitter" mapstructure:"jitter" validate:"gte=0,lte=1"`
}

// DefaultRetryConfig returns sensible defaults.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		Multiplier:     2.0,
		Jitter:         0.1,
	}
}

func (c *RetryConfig) applyDefaults() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 100 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 5 * time.Second
	}
	if c.Multiplier < 1 {
		c.Multiplier = 2.0
	}
}

// newBackOff returns a fresh policy for one logical request.
func (c *RetryConfig) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.InitialBackoff
	b.MaxInterval = c.MaxBackoff
	b.Multiplier = c.Multiplier
	b.RandomizationFactor = c.Jitter
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.MaxAttempts-1)), ctx)
}

// retry runs fn until it succeeds, fails permanently, or attempts run out.
// The last response is returned together with the last error.
func retry(ctx context.Context, cfg *RetryConfig, log *logger.Logger, fn func() (*Response, error)) (*Response, error) {
	op := func() (*Response, error) {
		resp, err := fn()
		if err != nil && !IsRetryable(err) {
			return resp, backoff.Permanent(err)
		}
		return resp, err
	}
	notify := func(err error, wait time.Duration) {
		log.Debug("retrying request", logger.Fields(
			logger.FieldError, err.Error(),
			"backoff", wait.String(),
		))
	}
	return backoff.RetryNotifyWithData(op, cfg.newBackOff(ctx), notify)
}

// CircuitBreakerConfig configures the circuit breaker. Only timeouts,
// connection failures and 5xx responses count as failures.
type CircuitBreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens the circuit.
	MaxFailures uint32 `yaml:"max_failures" mapstructure:"max_failures" validate:"gte=1"`
	// Timeout is how long the circuit stays open before allowing a probe.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// HalfOpenRequests is the number of probes allowed while half-open.
	HalfOpenRequests uint32 `yaml:"half_open_requests" mapstructure:"half_open_requests"`
	// Interval clears the failure counts while closed. Zero never clears.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// DefaultCircuitBreakerConfig returns a default circuit breaker config.
func DefaultCircuitBreakerConfig() *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		MaxFailures:      5,
		Timeout:          30 * time.Second,
		HalfOpenRequests: 1,
	}
}

func newCircuitBreaker(name string, cfg *CircuitBreakerConfig, log *logger.Logger) *gobreaker.CircuitBreaker {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.HalfOpenRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed", logger.Fields(
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			))
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !(IsServerError(err) || IsConnection(err) || IsTimeout(err))
		},
	})
}

// RateLimitConfig configures client-side rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained request rate.
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second" validate:"gt=0"`
	// Burst is the number of requests allowed at once. Defaults to 1.
	Burst int `yaml:"burst" mapstructure:"burst" validate:"gte=0"`
}

// DefaultRateLimitConfig returns a default rate limit config.
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{RequestsPerSecond: 10, Burst: 10}
}

func newRateLimiter(cfg *RateLimitConfig) *rate.Limiter {
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
}
