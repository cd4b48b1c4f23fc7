package resource

import (
	"fmt"
	"time"

	"github.com/jinzhu/inflection"

	"github.com/kbukum/railskit/logger"
	"github.com/kbukum/railskit/observability"
	"github.com/kbukum/railskit/transport"
	"github.com/kbukum/railskit/urlbuilder"
	"github.com/kbukum/railskit/validation"
)

// Config defines one resource class.
type Config struct {
	// Name is the singular root key, e.g. "person".
	Name string `mapstructure:"name" validate:"required"`
	// PluralName is the plural root key. Defaults to the English plural
	// of Name.
	PluralName string `mapstructure:"plural_name"`
	// URL is a template such as "/people/{{id}}". A template without
	// tokens gets "/{{id}}" appended.
	URL string `mapstructure:"url"`
	// URLFunc replaces URL with a caller computed URL.
	URLFunc urlbuilder.Func `mapstructure:"-"`
	// HTTPConfig holds per-class request settings.
	HTTPConfig HTTPConfig `mapstructure:"http"`
	// DefaultParams are sent as query parameters on every request.
	DefaultParams map[string]any `mapstructure:"default_params"`
	// RequestTransformers replaces the default request pipeline when
	// non-nil, even if empty.
	RequestTransformers []Stage `mapstructure:"-"`
	// ResponseInterceptors replaces the default response pipeline when
	// non-nil, even if empty.
	ResponseInterceptors []Stage `mapstructure:"-"`
}

// HTTPConfig holds request settings shared by every call of a class.
type HTTPConfig struct {
	// Headers are merged over the default JSON Accept and Content-Type.
	Headers map[string]string `mapstructure:"headers"`
	// Timeout bounds each request when positive.
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

// ApplyDefaults fills PluralName.
func (c *Config) ApplyDefaults() {
	if c.PluralName == "" && c.Name != "" {
		c.PluralName = inflection.Plural(c.Name)
	}
}

// Validate checks that c can build a class.
func (c *Config) Validate() error {
	v := validation.New()
	v.Merge("", validation.Struct(c))
	v.Custom(c.URL != "" || c.URLFunc != nil, "url", "is required unless a URL function is given")
	return v.Validate()
}

// Definition is the file form of a Config. Stages are referenced by name.
type Definition struct {
	Name                 string            `yaml:"name" mapstructure:"name" validate:"required"`
	PluralName           string            `yaml:"plural_name" mapstructure:"plural_name"`
	URL                  string            `yaml:"url" mapstructure:"url" validate:"required"`
	Headers              map[string]string `yaml:"headers" mapstructure:"headers"`
	Timeout              time.Duration     `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	DefaultParams        map[string]any    `yaml:"default_params" mapstructure:"default_params"`
	RequestTransformers  []string          `yaml:"request_transformers" mapstructure:"request_transformers"`
	ResponseInterceptors []string          `yaml:"response_interceptors" mapstructure:"response_interceptors"`
}

// Config converts d into a Config.
func (d Definition) Config() Config {
	return Config{
		Name:       d.Name,
		PluralName: d.PluralName,
		URL:        d.URL,
		HTTPConfig: HTTPConfig{
			Headers: d.Headers,
			Timeout: d.Timeout,
		},
		DefaultParams:        d.DefaultParams,
		RequestTransformers:  NamedStages(d.RequestTransformers),
		ResponseInterceptors: NamedStages(d.ResponseInterceptors),
	}
}

// Manifest is the layout of a definitions file: the client, logging and
// telemetry settings plus the resources to define.
type Manifest struct {
	Client        transport.Config     `yaml:"client" mapstructure:"client"`
	Logging       logger.Config        `yaml:"logging" mapstructure:"logging"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
	Resources     []Definition         `yaml:"resources" mapstructure:"resources"`
}

// ApplyDefaults applies the defaults of every section.
func (m *Manifest) ApplyDefaults() {
	m.Client.ApplyDefaults()
	m.Logging.ApplyDefaults()
	m.Observability.ApplyDefaults()
}

// Validate validates every section and resource definition.
func (m *Manifest) Validate() error {
	v := validation.New()
	v.Merge("client", m.Client.Validate())
	v.Merge("logging", m.Logging.Validate())
	v.Merge("observability", m.Observability.Validate())

	seen := make(map[string]bool, len(m.Resources))
	plurals := make(map[string]bool, len(m.Resources))
	for i := range m.Resources {
		field := fmt.Sprintf("resources[%d]", i)
		v.Merge(field, validation.Struct(&m.Resources[i]))
		name := m.Resources[i].Name
		if name != "" && seen[name] {
			v.AddError(field+".name", fmt.Sprintf("duplicate resource %q", name))
		}
		seen[name] = true
		plural := m.Resources[i].PluralName
		if plural == "" && name != "" {
			plural = inflection.Plural(name)
		}
		if plural != "" {
			if plurals[plural] {
				v.AddError(field+".plural_name", fmt.Sprintf("duplicate plural name %q", plural))
			}
			plurals[plural] = true
		}
	}
	return v.Validate()
}
