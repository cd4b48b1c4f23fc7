// Package observability provides OpenTelemetry tracing and metrics for
// railskit transports.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("railsctl"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, "resource.query")
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("railsctl"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("railsctl"))
//	metrics.RecordRequestEnd(ctx, "railsctl", "GET", "200", duration)
package observability
