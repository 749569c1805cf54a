// Package observability provides OpenTelemetry tracing and metrics setup and
// the instruments recorded while wiring typed clients.
//
// Tracing:
//
//	cfg := observability.DefaultTracerConfig("orders")
//	tp, err := observability.InitTracer(ctx, &cfg)
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	cfg := observability.DefaultMeterConfig("orders")
//	mp, err := observability.InitMeter(ctx, &cfg)
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewClientMetrics(observability.Meter(observability.MeterName))
package observability
