package resource

import (
	"sort"

	"github.com/kbukum/railskit/errors"
	"github.com/kbukum/railskit/logger"
	"github.com/kbukum/railskit/transport"
	"github.com/kbukum/railskit/urlbuilder"
)

// DefaultHeaders are sent by every class unless its HTTPConfig
// overrides them.
var DefaultHeaders = map[string]string{
	"Accept":       "application/json",
	"Content-Type": "application/json",
}

// Factory builds resource classes that share a transport and resolver.
type Factory struct {
	transport transport.Transport
	resolver  Resolver
	log       *logger.Logger
}

// Option configures a Factory.
type Option func(*Factory)

// WithResolver sets the resolver for Named and Inline stages. The
// default is DefaultContainer().
func WithResolver(r Resolver) Option {
	return func(f *Factory) { f.resolver = r }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(f *Factory) { f.log = l }
}

// NewFactory returns a Factory sending requests through t.
func NewFactory(t transport.Transport, opts ...Option) *Factory {
	f := &Factory{transport: t}
	for _, opt := range opts {
		opt(f)
	}
	if f.resolver == nil {
		f.resolver = DefaultContainer()
	}
	if f.log == nil {
		f.log = logger.Nop()
	}
	f.log = f.log.WithComponent("resource")
	return f
}

// Define validates cfg and builds its class. Every stage is resolved
// here; a stage that cannot be resolved fails the definition.
func (f *Factory) Define(cfg Config) (*Class, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	url := cfg.URLFunc
	if url == nil {
		built, err := urlbuilder.Build(cfg.URL)
		if err != nil {
			return nil, errors.InvalidConfig("url", err.Error()).WithCause(err)
		}
		url = built
	}

	transformerStages := cfg.RequestTransformers
	if transformerStages == nil {
		transformerStages = DefaultRequestTransformers()
	}
	interceptorStages := cfg.ResponseInterceptors
	if interceptorStages == nil {
		interceptorStages = DefaultResponseInterceptors()
	}

	transformers := make([]RequestTransformer, 0, len(transformerStages))
	for _, s := range transformerStages {
		t, err := f.resolveTransformer(s)
		if err != nil {
			return nil, err
		}
		transformers = append(transformers, t)
	}
	interceptors := make([]ResponseInterceptor, 0, len(interceptorStages))
	for _, s := range interceptorStages {
		i, err := f.resolveInterceptor(s)
		if err != nil {
			return nil, err
		}
		interceptors = append(interceptors, i)
	}

	headers := make(map[string]string, len(DefaultHeaders)+len(cfg.HTTPConfig.Headers))
	for k, v := range DefaultHeaders {
		headers[k] = v
	}
	for k, v := range cfg.HTTPConfig.Headers {
		headers[k] = v
	}

	params := make(map[string]any, len(cfg.DefaultParams))
	for k, v := range cfg.DefaultParams {
		params[k] = v
	}

	c := &Class{
		name:          cfg.Name,
		pluralName:    cfg.PluralName,
		headers:       headers,
		timeout:       cfg.HTTPConfig.Timeout,
		defaultParams: params,
		transport:     f.transport,
		log:           f.log,
		url:           url,
		transformers:  transformers,
		interceptors:  interceptors,
	}

	f.log.Debug("resource defined", logger.Fields(
		logger.FieldResource, c.name,
		"plural", c.pluralName,
		"transformers", len(transformers),
		"interceptors", len(interceptors),
	))
	return c, nil
}

func (f *Factory) resolveTransformer(s Stage) (RequestTransformer, error) {
	switch s.kind {
	case stageTransformer:
		if s.transformer == nil {
			return nil, errors.InvalidStage(s.String(), "request transformer", nil)
		}
		return s.transformer, nil
	case stageInterceptor:
		return nil, errors.InvalidStage(s.String(), "request transformer", s.interceptor)
	}
	v, err := f.resolveStage(s)
	if err != nil {
		return nil, err
	}
	switch fn := v.(type) {
	case RequestTransformer:
		return fn, nil
	case func(any, *Class) any:
		return fn, nil
	}
	return nil, errors.InvalidStage(s.String(), "request transformer", v)
}

func (f *Factory) resolveInterceptor(s Stage) (ResponseInterceptor, error) {
	switch s.kind {
	case stageInterceptor:
		if s.interceptor == nil {
			return nil, errors.InvalidStage(s.String(), "response interceptor", nil)
		}
		return s.interceptor, nil
	case stageTransformer:
		return nil, errors.InvalidStage(s.String(), "response interceptor", s.transformer)
	}
	v, err := f.resolveStage(s)
	if err != nil {
		return nil, err
	}
	switch fn := v.(type) {
	case ResponseInterceptor:
		return fn, nil
	case func(Call, *Class) Call:
		return fn, nil
	}
	return nil, errors.InvalidStage(s.String(), "response interceptor", v)
}

func (f *Factory) resolveStage(s Stage) (any, error) {
	var (
		v   any
		err error
	)
	switch s.kind {
	case stageNamed:
		v, err = f.resolver.Resolve(s.name)
	case stageInline:
		v, err = f.resolver.Invoke(s.factory)
	default:
		return nil, errors.InvalidStage(s.String(), "a declared stage", nil)
	}
	if err != nil {
		return nil, errors.UnresolvedStage(s.String(), err)
	}
	return v, nil
}

// Registry holds classes by name.
type Registry map[string]*Class

// DefineAll defines one class per definition.
func (f *Factory) DefineAll(defs []Definition) (Registry, error) {
	reg := make(Registry, len(defs))
	for _, d := range defs {
		if _, dup := reg[d.Name]; dup {
			return nil, errors.InvalidConfig("name", "duplicate resource "+d.Name)
		}
		c, err := f.Define(d.Config())
		if err != nil {
			return nil, errors.InvalidConfig("resources."+d.Name, "definition failed").WithCause(err)
		}
		reg[d.Name] = c
	}
	return reg, nil
}

// Lookup finds a class by singular or plural name. Plural names are
// matched in name order.
func (r Registry) Lookup(name string) (*Class, error) {
	if c, ok := r[name]; ok {
		return c, nil
	}
	for _, n := range r.Names() {
		if c := r[n]; c.PluralName() == name {
			return c, nil
		}
	}
	return nil, errors.NotFound("resource", name)
}

// Names returns the registered names in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
