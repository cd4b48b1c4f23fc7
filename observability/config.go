package observability

import (
	"context"
	"errors"
	"time"

	"github.com/kbukum/railskit/validation"
	"github.com/kbukum/railskit/version"
)

// Config is the file form of the tracer and meter settings.
type Config struct {
	Enabled        bool          `yaml:"enabled" mapstructure:"enabled"`
	ServiceName    string        `yaml:"service_name" mapstructure:"service_name"`
	ServiceVersion string        `yaml:"service_version" mapstructure:"service_version"`
	Environment    string        `yaml:"environment" mapstructure:"environment"`
	Endpoint       string        `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure       bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate     *float64      `yaml:"sample_rate" mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1"`
	Interval       time.Duration `yaml:"interval" mapstructure:"interval"`
}

// ApplyDefaults fills unset fields with the local collector defaults and the
// build version. An unset sample rate keeps every trace; an explicit 0 keeps
// none. The default plain-HTTP endpoint is always dialed insecure.
func (c *Config) ApplyDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "railskit"
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = version.Get().Version
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Endpoint == "" || c.Endpoint == defaultEndpoint {
		c.Endpoint = defaultEndpoint
		c.Insecure = true
	}
	if c.SampleRate == nil {
		rate := 1.0
		c.SampleRate = &rate
	}
	if c.Interval == 0 {
		c.Interval = 15 * time.Second
	}
}

// Validate validates the observability configuration.
func (c *Config) Validate() error {
	return validation.Struct(c)
}

func (c *Config) exporter() Exporter {
	return Exporter{
		ServiceName:    c.ServiceName,
		ServiceVersion: c.ServiceVersion,
		Environment:    c.Environment,
		Endpoint:       c.Endpoint,
		Insecure:       c.Insecure,
	}
}

// Tracer returns the tracer settings of c.
func (c *Config) Tracer() TracerConfig {
	rate := 1.0
	if c.SampleRate != nil {
		rate = *c.SampleRate
	}
	return TracerConfig{Exporter: c.exporter(), SampleRate: rate}
}

// Meter returns the meter settings of c.
func (c *Config) Meter() MeterConfig {
	return MeterConfig{Exporter: c.exporter(), Interval: c.Interval}
}

// Init starts both providers when c.Enabled is set and returns a function
// that shuts them down. A disabled config yields a no-op shutdown.
func Init(ctx context.Context, c *Config) (func(context.Context) error, error) {
	if !c.Enabled {
		return func(context.Context) error { return nil }, nil
	}
	tp, err := InitTracer(ctx, c.Tracer())
	if err != nil {
		return nil, err
	}
	mc := c.Meter()
	mp, err := InitMeter(ctx, &mc)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}
	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}
