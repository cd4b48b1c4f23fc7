package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/railskit/logger"
	"github.com/kbukum/railskit/observability"
)

func stubTransport(status int, err error, seen *Request) Transport {
	return TransportFunc(func(_ context.Context, req Request) (*Response, error) {
		if seen != nil {
			*seen = req
		}
		return &Response{StatusCode: status}, err
	})
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(inner Transport) Transport {
			return TransportFunc(func(ctx context.Context, req Request) (*Response, error) {
				order = append(order, name+">")
				resp, err := inner.Do(ctx, req)
				order = append(order, "<"+name)
				return resp, err
			})
		}
	}

	tr := Chain(mw("a"), mw("b"), mw("c"))(stubTransport(200, nil, nil))
	_, err := tr.Do(context.Background(), Request{})
	require.NoError(t, err)

	assert.Equal(t, []string{"a>", "b>", "c>", "<c", "<b", "<a"}, order)
}

func TestWithRequestID(t *testing.T) {
	var seen Request
	tr := WithRequestID()(stubTransport(200, nil, &seen))

	_, err := tr.Do(context.Background(), Request{})
	require.NoError(t, err)
	assert.Len(t, seen.Headers[HeaderRequestID], 36)

	_, err = tr.Do(context.Background(), Request{Headers: map[string]string{HeaderRequestID: "given"}})
	require.NoError(t, err)
	assert.Equal(t, "given", seen.Headers[HeaderRequestID])
}

func TestWithLogging(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.New(&logger.Config{Level: "debug", Format: "json", Writer: buf}, "test")

	ok := Chain(WithRequestID(), WithLogging(log))(stubTransport(200, nil, nil))
	_, err := ok.Do(context.Background(), Request{Method: http.MethodGet, Path: "/people"})
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "/people", entry[logger.FieldURL])
	assert.Equal(t, float64(200), entry[logger.FieldStatus])
	assert.NotEmpty(t, entry[logger.FieldRequestID])

	buf.Reset()
	failing := WithLogging(log)(stubTransport(500, ClassifyStatusCode(500, nil), nil))
	_, err = failing.Do(context.Background(), Request{Method: http.MethodPost, Path: "/people"})
	require.Error(t, err)

	entry = map[string]any{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Contains(t, entry[logger.FieldError], "server")
}

func TestWithTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})

	var seen Request
	tr := WithTracing("people-api")(stubTransport(404, ClassifyStatusCode(404, nil), &seen))
	_, err := tr.Do(context.Background(), Request{Method: http.MethodGet, Path: "/people/1"})
	require.Error(t, err)

	assert.NotEmpty(t, seen.Headers["traceparent"])

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "people-api.http.get", span.Name())

	attrs := map[string]any{}
	for _, kv := range span.Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, "GET", attrs[observability.AttrHTTPMethod])
	assert.Equal(t, "/people/1", attrs[observability.AttrHTTPURL])
	assert.Equal(t, int64(404), attrs[observability.AttrHTTPStatus])
	require.Len(t, span.Events(), 1)
	assert.Equal(t, "exception", span.Events()[0].Name)
}

func TestWithMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := observability.NewMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ok := WithMetrics(metrics, "people-api")(stubTransport(200, nil, nil))
	_, err = ok.Do(context.Background(), Request{Method: http.MethodGet})
	require.NoError(t, err)

	broken := WithMetrics(metrics, "people-api")(TransportFunc(func(context.Context, Request) (*Response, error) {
		return nil, NewConnectionError(errors.New("refused"))
	}))
	_, err = broken.Do(context.Background(), Request{Method: http.MethodGet})
	require.Error(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if data, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range data.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(2), sums[observability.MetricRequestTotal])
	assert.Equal(t, int64(1), sums[observability.MetricErrorTotal])
	assert.Equal(t, int64(0), sums[observability.MetricRequestActive])
}
