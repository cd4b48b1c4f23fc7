package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/railskit/version"
)

type capturedRequest struct {
	Method  string
	Path    string
	Query   url.Values
	Headers http.Header
	Body    []byte
}

func newCaptureServer(t *testing.T, status int, body string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.Method = r.Method
		captured.Path = r.URL.Path
		captured.Query = r.URL.Query()
		captured.Headers = r.Header.Clone()
		captured.Body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func TestAdapter_Do_BuildsRequest(t *testing.T) {
	srv, got := newCaptureServer(t, http.StatusOK, `{"person":{"id":1}}`)

	a, err := New(Config{
		BaseURL: srv.URL + "/api/",
		Headers: map[string]string{"Accept": "application/json", "X-Api-Version": "1"},
		Auth:    BearerAuth("secret"),
	})
	require.NoError(t, err)

	resp, err := a.Do(context.Background(), Request{
		Method:  "post",
		Path:    "/people?expand=owner",
		Headers: map[string]string{"X-Api-Version": "2"},
		Query:   url.Values{"tag": {"a", "b"}},
		Body:    map[string]any{"person": map[string]any{"first_name": "Ana"}},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, resp.IsSuccess())
	assert.Equal(t, `{"person":{"id":1}}`, string(resp.Body))
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])

	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/api/people", got.Path)
	assert.Equal(t, []string{"owner"}, got.Query["expand"])
	assert.Equal(t, []string{"a", "b"}, got.Query["tag"])
	assert.Equal(t, "2", got.Headers.Get("X-Api-Version"))
	assert.Equal(t, "application/json", got.Headers.Get("Accept"))
	assert.Equal(t, "application/json", got.Headers.Get("Content-Type"))
	assert.Equal(t, "Bearer secret", got.Headers.Get("Authorization"))
	assert.JSONEq(t, `{"person":{"first_name":"Ana"}}`, string(got.Body))
}

func TestAdapter_Do_NoBodyDropsContentType(t *testing.T) {
	srv, got := newCaptureServer(t, http.StatusOK, `[]`)

	a, err := New(Config{BaseURL: srv.URL, Headers: map[string]string{"Content-Type": "application/json"}})
	require.NoError(t, err)

	_, err = a.Do(context.Background(), Request{Path: "/people"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Empty(t, got.Headers.Get("Content-Type"))
}

func TestAdapter_Do_Auth(t *testing.T) {
	tests := []struct {
		name  string
		auth  *AuthConfig
		check func(t *testing.T, got *capturedRequest)
	}{
		{"basic", BasicAuth("ana", "pw"), func(t *testing.T, got *capturedRequest) {
			assert.Equal(t, "Basic YW5hOnB3", got.Headers.Get("Authorization"))
		}},
		{"api key header", APIKeyAuth("k1"), func(t *testing.T, got *capturedRequest) {
			assert.Equal(t, "k1", got.Headers.Get("X-API-Key"))
		}},
		{"api key query", APIKeyAuthQuery("k2", "api_key"), func(t *testing.T, got *capturedRequest) {
			assert.Equal(t, "k2", got.Query.Get("api_key"))
		}},
		{"custom", CustomAuth(func(r *http.Request) { r.Header.Set("X-Signed", "yes") }), func(t *testing.T, got *capturedRequest) {
			assert.Equal(t, "yes", got.Headers.Get("X-Signed"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, got := newCaptureServer(t, http.StatusOK, `{}`)
			a, err := New(Config{BaseURL: srv.URL, Auth: BearerAuth("ignored")})
			require.NoError(t, err)

			_, err = a.Do(context.Background(), Request{Path: "/x", Auth: tt.auth})
			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestAdapter_Do_ClassifiesStatus(t *testing.T) {
	srv, _ := newCaptureServer(t, http.StatusNotFound, `{"error":"missing"}`)
	a, err := New(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	resp, err := a.Do(context.Background(), Request{Path: "/people/9"})
	require.Error(t, err)
	require.NotNil(t, resp)

	assert.True(t, IsNotFound(err))
	assert.True(t, resp.IsError())
	var terr *Error
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, http.StatusNotFound, terr.StatusCode)
	assert.JSONEq(t, `{"error":"missing"}`, string(terr.Body))
}

func TestAdapter_Do_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	a, err := New(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = a.Do(context.Background(), Request{Path: "/slow", Timeout: 50 * time.Millisecond})
	assert.True(t, IsTimeout(err), "got %v", err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestAdapter_Do_ConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	a, err := New(Config{BaseURL: base})
	require.NoError(t, err)

	_, err = a.Do(context.Background(), Request{Path: "/people"})
	assert.True(t, IsConnection(err), "got %v", err)
	assert.True(t, IsRetryable(err))
}

func TestAdapter_Do_RetriesRetryableErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	defer srv.Close()

	a, err := New(Config{BaseURL: srv.URL, Retry: &RetryConfig{
		MaxAttempts:    4,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}})
	require.NoError(t, err)

	resp, err := a.Do(context.Background(), Request{Method: http.MethodPost, Path: "/x", Body: map[string]any{"a": 1}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestAdapter_Do_RetryGivesUpWithLastResponse(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	a, err := New(Config{BaseURL: srv.URL, Retry: &RetryConfig{MaxAttempts: 2, InitialBackoff: time.Millisecond}})
	require.NoError(t, err)

	resp, err := a.Do(context.Background(), Request{Path: "/x"})
	assert.True(t, IsServerError(err))
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestAdapter_Do_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	a, err := New(Config{BaseURL: srv.URL, Retry: DefaultRetryConfig()})
	require.NoError(t, err)

	resp, err := a.Do(context.Background(), Request{Path: "/x"})
	assert.Equal(t, ErrCodeValidation, CodeOf(err))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestAdapter_Do_CircuitBreakerOpens(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a, err := New(Config{BaseURL: srv.URL, CircuitBreaker: &CircuitBreakerConfig{
		MaxFailures: 2,
		Timeout:     time.Minute,
	}})
	require.NoError(t, err)
	assert.Equal(t, "closed", a.BreakerState())

	for i := 0; i < 2; i++ {
		_, err := a.Do(context.Background(), Request{Path: "/x"})
		assert.True(t, IsServerError(err))
	}

	_, err = a.Do(context.Background(), Request{Path: "/x"})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, "open", a.BreakerState())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestAdapter_Do_ClientErrorsDoNotTripBreaker(t *testing.T) {
	srv, _ := newCaptureServer(t, http.StatusNotFound, ``)
	a, err := New(Config{BaseURL: srv.URL, CircuitBreaker: &CircuitBreakerConfig{MaxFailures: 1}})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := a.Do(context.Background(), Request{Path: "/x"})
		assert.True(t, IsNotFound(err))
	}
	assert.Equal(t, "closed", a.BreakerState())
}

func TestAdapter_Do_RateLimitHonorsContext(t *testing.T) {
	srv, _ := newCaptureServer(t, http.StatusOK, `{}`)
	a, err := New(Config{BaseURL: srv.URL, RateLimit: &RateLimitConfig{RequestsPerSecond: 0.01, Burst: 1}})
	require.NoError(t, err)

	_, err = a.Do(context.Background(), Request{Path: "/x"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = a.Do(ctx, Request{Path: "/x"})
	assert.Error(t, err)
}

func TestAdapter_ResolveURL(t *testing.T) {
	a, err := New(Config{BaseURL: "http://localhost:3000/"})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000/people", a.ResolveURL("/people"))
	assert.Equal(t, "http://localhost:3000/people", a.ResolveURL("people"))
	assert.Equal(t, "https://other/x", a.ResolveURL("https://other/x"))

	bare, err := New(Config{})
	require.NoError(t, err)
	assert.Equal(t, "/people", bare.ResolveURL("/people"))
	assert.Equal(t, "disabled", bare.BreakerState())
	assert.Equal(t, defaultTimeout, bare.Config().Timeout)
	assert.NoError(t, bare.Close())
}

func TestAdapter_WithHTTPClient(t *testing.T) {
	var used int32
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		atomic.AddInt32(&used, 1)
		return &http.Response{
			StatusCode: http.StatusCreated,
			Header:     http.Header{"Content-Type": {"application/json"}},
			Body:       io.NopCloser(jsonReader(t, map[string]any{"id": 1})),
			Request:    r,
		}, nil
	})}

	a, err := New(Config{BaseURL: "http://example.test"}, WithHTTPClient(client))
	require.NoError(t, err)

	resp, err := a.Do(context.Background(), Request{Method: http.MethodPost, Path: "/people"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var out map[string]any
	require.NoError(t, resp.DecodeJSON(&out))
	assert.Equal(t, float64(1), out["id"])
	assert.Equal(t, int32(1), used)
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Config{BaseURL: "not a url"})
	assert.Error(t, err)

	_, err = New(Config{TLS: &TLSConfig{CertFile: "cert.pem"}})
	assert.Error(t, err)

	_, err = New(Config{Auth: &AuthConfig{Type: "digest"}})
	assert.Error(t, err)
}

func TestRequest_WithHeaderCopies(t *testing.T) {
	orig := map[string]string{"A": "1"}
	req := Request{Headers: orig}

	next := req.WithHeader("B", "2")

	assert.Equal(t, map[string]string{"A": "1"}, orig)
	assert.Equal(t, map[string]string{"A": "1", "B": "2"}, next.Headers)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func jsonReader(t *testing.T, v any) io.Reader {
	t.Helper()
	pr, pw := io.Pipe()
	go func() {
		_ = json.NewEncoder(pw).Encode(v)
		_ = pw.Close()
	}()
	return pr
}

func TestAdapter_Do_UserAgent(t *testing.T) {
	srv, got := newCaptureServer(t, http.StatusOK, `{}`)

	a, err := New(Config{BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = a.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	require.NoError(t, err)
	assert.Equal(t, version.UserAgent(), got.Headers.Get("User-Agent"))

	a, err = New(Config{BaseURL: srv.URL, Headers: map[string]string{"User-Agent": "people-sync/1"}})
	require.NoError(t, err)
	_, err = a.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	require.NoError(t, err)
	assert.Equal(t, "people-sync/1", got.Headers.Get("User-Agent"))
}
