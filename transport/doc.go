// Package transport sends the HTTP requests issued by resource classes.
//
// The Transport interface is the only thing the resource layer depends on.
// Adapter is the net/http implementation with base URL joining, default
// headers, authentication, TLS, error classification and optional
// resilience (retry, circuit breaker, rate limiting). Cross-cutting
// behavior is added with Middleware:
//
//	adapter, err := transport.New(transport.Config{
//	    BaseURL: "http://localhost:3000",
//	    Auth:    transport.BearerAuth("token"),
//	    Retry:   transport.DefaultRetryConfig(),
//	})
//	t := transport.Chain(
//	    transport.WithRequestID(),
//	    transport.WithLogging(log),
//	)(adapter)
//
// Responses with a 4xx or 5xx status are returned together with a
// classified *Error, so callers can inspect both.
package transport
