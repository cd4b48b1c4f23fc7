package transport

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/kbukum/railskit/logger"
	"github.com/kbukum/railskit/observability"
)

// HeaderRequestID carries the request id set by WithRequestID.
const HeaderRequestID = "X-Request-ID"

// WithLogging returns a Middleware that logs each request.
// Logs: method, path, status, duration, and the error if any.
func WithLogging(log *logger.Logger) Middleware {
	return func(inner Transport) Transport {
		return TransportFunc(func(ctx context.Context, req Request) (*Response, error) {
			start := time.Now()
			resp, err := inner.Do(ctx, req)

			fields := logger.Fields(
				logger.FieldMethod, req.Method,
				logger.FieldURL, req.Path,
				logger.FieldDuration, time.Since(start).Milliseconds(),
			)
			if id := req.Headers[HeaderRequestID]; id != "" {
				fields[logger.FieldRequestID] = id
			}
			if resp != nil {
				fields[logger.FieldStatus] = resp.StatusCode
			}

			if err != nil {
				fields[logger.FieldError] = err.Error()
				log.Error("request failed", fields)
			} else {
				log.Debug("request ok", fields)
			}
			return resp, err
		})
	}
}

// WithTracing returns a Middleware that creates an OpenTelemetry span
// around each request and propagates the trace context in its headers.
// The span name is "{serviceName}.http.{method}".
func WithTracing(serviceName string) Middleware {
	return func(inner Transport) Transport {
		return TransportFunc(func(ctx context.Context, req Request) (*Response, error) {
			spanName := serviceName + ".http." + strings.ToLower(req.Method)
			ctx, span := observability.StartSpan(ctx, spanName)
			defer span.End()

			observability.SetSpanAttribute(ctx, observability.AttrServiceName, serviceName)
			observability.SetSpanAttribute(ctx, observability.AttrHTTPMethod, req.Method)
			observability.SetSpanAttribute(ctx, observability.AttrHTTPURL, req.Path)

			carrier := propagation.MapCarrier{}
			otel.GetTextMapPropagator().Inject(ctx, carrier)
			for k, v := range carrier {
				req = req.WithHeader(k, v)
			}

			resp, err := inner.Do(ctx, req)
			if resp != nil {
				observability.SetSpanAttribute(ctx, observability.AttrHTTPStatus, resp.StatusCode)
			}
			if err != nil {
				observability.SetSpanError(ctx, err)
			}
			return resp, err
		})
	}
}

// WithMetrics returns a Middleware that records request count, duration
// and errors on metrics under the given service name.
func WithMetrics(metrics *observability.Metrics, serviceName string) Middleware {
	return func(inner Transport) Transport {
		return TransportFunc(func(ctx context.Context, req Request) (*Response, error) {
			metrics.RecordRequestStart(ctx)
			start := time.Now()
			resp, err := inner.Do(ctx, req)

			status := "error"
			if resp != nil {
				status = strconv.Itoa(resp.StatusCode)
			}
			if err != nil {
				code := string(CodeOf(err))
				if code == "" {
					code = "unknown"
				}
				metrics.RecordError(ctx, code, "transport")
			}
			metrics.RecordRequestEnd(ctx, serviceName, req.Method, status, time.Since(start))
			return resp, err
		})
	}
}

// WithRequestID returns a Middleware that sets a random X-Request-ID
// header on requests that do not carry one.
func WithRequestID() Middleware {
	return func(inner Transport) Transport {
		return TransportFunc(func(ctx context.Context, req Request) (*Response, error) {
			if req.Headers[HeaderRequestID] == "" {
				req = req.WithHeader(HeaderRequestID, uuid.NewString())
			}
			return inner.Do(ctx, req)
		})
	}
}
