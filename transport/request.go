package transport

import (
	"encoding/json"
	"maps"
	"net/url"
	"time"
)

// Request describes an outbound HTTP request.
type Request struct {
	// Method is the HTTP method (GET, POST, PUT, PATCH, DELETE).
	Method string
	// Path is appended to the adapter's BaseURL. Can be a full URL.
	Path string
	// Headers are request-specific headers (merged over adapter defaults).
	Headers map[string]string
	// Query are URL query parameters, merged with any query in Path.
	Query url.Values
	// Body is the request body. Accepts io.Reader, []byte, string, or any
	// value that will be JSON-encoded. Only JSON-encoded bodies are resent
	// on retry.
	Body any
	// Auth overrides the adapter-level auth for this request.
	Auth *AuthConfig
	// Timeout bounds this request when positive.
	Timeout time.Duration
}

// WithHeader returns a copy of r with header name set to value. The
// original header map is left untouched.
func (r Request) WithHeader(name, value string) Request {
	headers := make(map[string]string, len(r.Headers)+1)
	maps.Copy(headers, r.Headers)
	headers[name] = value
	r.Headers = headers
	return r
}

// Response is the result of an HTTP request.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Headers are the response headers, first value per name.
	Headers map[string]string
	// Body is the raw response body.
	Body []byte
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsError returns true if the status code is 4xx or 5xx.
func (r *Response) IsError() bool {
	return r.StatusCode >= 400
}

// DecodeJSON unmarshals the body into out.
func (r *Response) DecodeJSON(out any) error {
	return json.Unmarshal(r.Body, out)
}
