package resource

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/kbukum/railskit/errors"
	"github.com/kbukum/railskit/keys"
	"github.com/kbukum/railskit/logger"
	"github.com/kbukum/railskit/transport"
	"github.com/kbukum/railskit/urlbuilder"
)

// ErrClassFrozen is the cause of the error returned when a class is
// modified after its first use.
var ErrClassFrozen = errors.New(errors.ErrCodeClassFrozen, "resource class is frozen")

// Class is a resource class built by a Factory. Its methods are safe for
// concurrent use. The pipelines and URL are frozen on first use.
type Class struct {
	name          string
	pluralName    string
	headers       map[string]string
	timeout       time.Duration
	defaultParams map[string]any
	transport     transport.Transport
	log           *logger.Logger

	mu           sync.RWMutex
	frozen       bool
	url          urlbuilder.Func
	transformers []RequestTransformer
	interceptors []ResponseInterceptor
}

// Name returns the singular root name.
func (c *Class) Name() string { return c.name }

// PluralName returns the plural root name.
func (c *Class) PluralName() string { return c.pluralName }

// Headers returns a copy of the class headers.
func (c *Class) Headers() map[string]string {
	out := make(map[string]string, len(c.headers))
	for k, v := range c.headers {
		out[k] = v
	}
	return out
}

// SetURL replaces the URL template.
func (c *Class) SetURL(template string) error {
	fn, err := urlbuilder.Build(template)
	if err != nil {
		return errors.InvalidConfig("url", err.Error()).WithCause(err)
	}
	return c.SetURLFunc(fn)
}

// SetURLFunc replaces the URL builder with fn.
func (c *Class) SetURLFunc(fn urlbuilder.Func) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frozen {
		return c.frozenError("SetURL")
	}
	c.url = fn
	return nil
}

// BeforeRequest appends a request transformer that calls fn with the
// data and passes the data on. fn may modify maps in place.
func (c *Class) BeforeRequest(fn func(data any, c *Class)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frozen {
		return c.frozenError("BeforeRequest")
	}
	c.transformers = append(c.transformers, func(data any, c *Class) any {
		fn(data, c)
		return data
	})
	return nil
}

// BeforeResponse appends a response interceptor that calls fn with the
// response data.
func (c *Class) BeforeResponse(fn func(data any, c *Class)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frozen {
		return c.frozenError("BeforeResponse")
	}
	c.interceptors = append(c.interceptors, func(call Call, c *Class) Call {
		return Then(call, func(resp *Response) (*Response, error) {
			fn(resp.Data, c)
			return resp, nil
		})
	})
	return nil
}

func (c *Class) frozenError(op string) error {
	return errors.ClassFrozen(c.name, op).WithCause(ErrClassFrozen)
}

// freeze marks the class as in use and returns its pipelines.
func (c *Class) freeze() ([]RequestTransformer, []ResponseInterceptor) {
	c.mu.RLock()
	if c.frozen {
		defer c.mu.RUnlock()
		return c.transformers, c.interceptors
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.frozen {
		c.frozen = true
		c.log.Debug("resource class frozen", logger.Fields(
			logger.FieldResource, c.name,
			"transformers", len(c.transformers),
			"interceptors", len(c.interceptors),
		))
	}
	return c.transformers, c.interceptors
}

// URL builds a URL for target. A map or *Instance supplies the
// parameters directly, a struct is read through its JSON form, slices and
// nil pointers supply no parameters, and any other value v becomes
// {"id": v}.
func (c *Class) URL(target any) string {
	c.mu.RLock()
	fn := c.url
	c.mu.RUnlock()
	return fn(urlParams(target))
}

// TransformData runs a deep copy of data through the request
// transformers in order. data itself is never modified.
func (c *Class) TransformData(data any) any {
	transformers, _ := c.freeze()
	data = keys.Clone(data)
	for _, t := range transformers {
		data = t(data, c)
	}
	return data
}

// CallInterceptors wraps call in every response interceptor in order.
func (c *Class) CallInterceptors(call Call) Call {
	_, interceptors := c.freeze()
	for _, i := range interceptors {
		call = i(call, c)
	}
	return call
}

// New builds an instance from value. value is copied and run through the
// response interceptors first, so snake_case or root-wrapped literals
// come out the same way server data does.
func (c *Class) New(value any) (*Instance, error) {
	data, err := toTree(value)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = map[string]any{}
	}
	var call Call = func(context.Context) (*Response, error) {
		return &Response{Data: keys.Clone(data)}, nil
	}
	// Building an instance sends nothing, so the class stays open for hooks.
	c.mu.RLock()
	interceptors := c.interceptors
	c.mu.RUnlock()
	for _, i := range interceptors {
		call = i(call, c)
	}
	resp, err := call(context.Background())
	if err != nil {
		return nil, err
	}
	inst := c.blank()
	inst.extend(resp.Data)
	return inst, nil
}

func (c *Class) blank() *Instance {
	return &Instance{class: c, fields: map[string]any{}}
}

// Query fetches URL(target), usually the collection when target is nil.
func (c *Class) Query(ctx context.Context, params map[string]any, target any) (*Result, error) {
	return c.Fetch(ctx, c.URL(target), params)
}

// Get fetches URL(target), usually one member.
func (c *Class) Get(ctx context.Context, target any, params map[string]any) (*Result, error) {
	return c.Fetch(ctx, c.URL(target), params)
}

// Fetch issues a GET to url with the default params merged with params.
func (c *Class) Fetch(ctx context.Context, url string, params map[string]any) (*Result, error) {
	return c.process(ctx, c.call(http.MethodGet, url, nil, params))
}

// Post sends data to url and materializes the response.
func (c *Class) Post(ctx context.Context, url string, data any) (*Result, error) {
	return c.send(ctx, http.MethodPost, url, data)
}

// Put sends data to url with PUT and materializes the response.
func (c *Class) Put(ctx context.Context, url string, data any) (*Result, error) {
	return c.send(ctx, http.MethodPut, url, data)
}

// Patch sends data to url with PATCH and materializes the response.
func (c *Class) Patch(ctx context.Context, url string, data any) (*Result, error) {
	return c.send(ctx, http.MethodPatch, url, data)
}

// Delete issues a DELETE to url and materializes the response.
func (c *Class) Delete(ctx context.Context, url string) (*Result, error) {
	return c.process(ctx, c.call(http.MethodDelete, url, nil, nil))
}

func (c *Class) send(ctx context.Context, method, url string, data any) (*Result, error) {
	tree, err := toTree(data)
	if err != nil {
		return nil, err
	}
	return c.process(ctx, c.call(method, url, c.TransformData(tree), nil))
}

func (c *Class) process(ctx context.Context, call Call) (*Result, error) {
	resp, err := c.CallInterceptors(call)(ctx)
	if err != nil {
		return nil, err
	}
	return c.materialize(resp), nil
}

// materialize turns response data into instances. Slice elements that
// are not objects become blank instances.
func (c *Class) materialize(resp *Response) *Result {
	switch data := resp.Data.(type) {
	case []any:
		out := make([]*Instance, len(data))
		for i, v := range data {
			out[i] = c.blank()
			out[i].extend(v)
		}
		return &Result{kind: KindCollection, instances: out, response: resp}
	case []map[string]any:
		out := make([]*Instance, len(data))
		for i, v := range data {
			out[i] = c.blank()
			out[i].extend(v)
		}
		return &Result{kind: KindCollection, instances: out, response: resp}
	case map[string]any:
		inst := c.blank()
		inst.extend(data)
		return &Result{kind: KindInstance, instances: []*Instance{inst}, response: resp}
	default:
		return &Result{kind: KindValue, value: data, response: resp}
	}
}

// call builds the pending request. Default params are sent on every verb.
func (c *Class) call(method, url string, body any, params map[string]any) Call {
	req := transport.Request{
		Method:  method,
		Path:    url,
		Headers: c.Headers(),
		Query:   encodeParams(c.parameters(params)),
		Body:    body,
		Timeout: c.timeout,
	}
	return func(ctx context.Context) (*Response, error) {
		resp, err := c.transport.Do(ctx, req)
		if err != nil {
			return nil, err
		}
		return &Response{
			StatusCode: resp.StatusCode,
			Headers:    resp.Headers,
			Method:     method,
			URL:        url,
			Data:       decodeBody(resp.Body),
		}, nil
	}
}

// parameters merges params over the default params into a fresh map.
func (c *Class) parameters(params map[string]any) map[string]any {
	if len(c.defaultParams) == 0 && len(params) == 0 {
		return nil
	}
	out := make(map[string]any, len(c.defaultParams)+len(params))
	for k, v := range c.defaultParams {
		out[k] = v
	}
	for k, v := range params {
		out[k] = v
	}
	return out
}
