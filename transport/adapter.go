package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/kbukum/railskit/logger"
	"github.com/kbukum/railskit/version"
)

// Adapter is the net/http Transport with built-in auth, TLS, and resilience.
type Adapter struct {
	httpClient *http.Client
	config     Config
	log        *logger.Logger
	cb         *gobreaker.CircuitBreaker
	rl         *rate.Limiter
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithHTTPClient replaces the underlying *http.Client. The adapter's
// timeout and TLS settings are not applied to it.
func WithHTTPClient(client *http.Client) Option {
	return func(a *Adapter) { a.httpClient = client }
}

// WithAdapterLogger sets the logger used for retry and breaker events.
func WithAdapterLogger(log *logger.Logger) Option {
	return func(a *Adapter) { a.log = log }
}

// New creates a new HTTP adapter with the given configuration.
func New(cfg Config, opts ...Option) (*Adapter, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpTransport := http.DefaultTransport.(*http.Transport).Clone()
	tlsCfg, err := cfg.TLS.Build()
	if err != nil {
		return nil, err
	}
	if tlsCfg != nil {
		httpTransport.TLSClientConfig = tlsCfg
	}

	a := &Adapter{
		httpClient: &http.Client{
			Transport: httpTransport,
			Timeout:   cfg.Timeout,
		},
		config: cfg,
		log:    logger.Nop(),
	}

	for _, opt := range opts {
		opt(a)
	}

	if cfg.CircuitBreaker != nil {
		a.cb = newCircuitBreaker(cfg.Name, cfg.CircuitBreaker, a.log)
	}
	if cfg.RateLimit != nil {
		a.rl = newRateLimiter(cfg.RateLimit)
	}

	return a, nil
}

// Do executes an HTTP request and returns the complete response. For 4xx
// and 5xx statuses both the response and a classified *Error are returned.
func (a *Adapter) Do(ctx context.Context, req Request) (*Response, error) {
	if a.config.Retry != nil {
		return retry(ctx, a.config.Retry, a.log, func() (*Response, error) {
			return a.doOnce(ctx, req)
		})
	}
	return a.doOnce(ctx, req)
}

// doOnce executes a single HTTP request with rate limiter and breaker.
func (a *Adapter) doOnce(ctx context.Context, req Request) (*Response, error) {
	if a.rl != nil {
		if err := a.rl.Wait(ctx); err != nil {
			return nil, err
		}
	}

	if a.cb != nil {
		var resp *Response
		_, err := a.cb.Execute(func() (interface{}, error) {
			var execErr error
			resp, execErr = a.executeRequest(ctx, req)
			return nil, execErr
		})
		return resp, err
	}

	return a.executeRequest(ctx, req)
}

// executeRequest builds and sends the HTTP request.
func (a *Adapter) executeRequest(ctx context.Context, req Request) (*Response, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	httpReq, err := a.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		var netErr net.Error
		if ctx.Err() != nil || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, NewTimeoutError(err)
		}
		return nil, NewConnectionError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewConnectionError(fmt.Errorf("read response body: %w", err))
	}

	result := &Response{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		Body:       body,
	}

	if classErr := ClassifyStatusCode(resp.StatusCode, body); classErr != nil {
		return result, classErr
	}

	return result, nil
}

// buildRequest constructs an *http.Request from the adapter config and request.
func (a *Adapter) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	url := a.ResolveURL(req.Path)

	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, NewValidationError("encode body", err)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), url, body)
	if err != nil {
		return nil, NewValidationError("create request", err)
	}

	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for k, vs := range req.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	httpReq.Header.Set("User-Agent", version.UserAgent())
	for k, v := range a.config.Headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	if body != nil && httpReq.Header.Get("Content-Type") == "" && contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if body == nil {
		httpReq.Header.Del("Content-Type")
	}

	auth := a.config.Auth
	if req.Auth != nil {
		auth = req.Auth
	}
	auth.apply(httpReq)

	return httpReq, nil
}

// ResolveURL joins path onto the configured base URL. Absolute URLs are
// returned unchanged.
func (a *Adapter) ResolveURL(path string) string {
	if a.config.BaseURL == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(a.config.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// encodeBody converts a body value into an io.Reader and content type.
func encodeBody(body any) (io.Reader, string, error) {
	if body == nil {
		return nil, "", nil
	}
	switch v := body.(type) {
	case io.Reader:
		return v, "", nil
	case []byte:
		return bytes.NewReader(v), "", nil
	case string:
		return strings.NewReader(v), "text/plain", nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

// flattenHeaders converts multi-value headers to single-value.
func flattenHeaders(h http.Header) map[string]string {
	result := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			result[k] = v[0]
		}
	}
	return result
}

// BreakerState reports the circuit breaker state, or "disabled".
func (a *Adapter) BreakerState() string {
	if a.cb == nil {
		return "disabled"
	}
	return a.cb.State().String()
}

// Close releases idle connections held by the adapter.
func (a *Adapter) Close() error {
	a.httpClient.CloseIdleConnections()
	return nil
}

// Config returns the adapter's configuration after defaults.
func (a *Adapter) Config() Config {
	return a.config
}
