package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/clientkit/logger"
)

// MeterName is the instrumentation scope of clientkit's metrics.
const MeterName = "github.com/kbukum/clientkit"

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider and installs it
// globally. The provider should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// ClientMetrics holds the instruments recorded while wiring typed clients.
// A nil *ClientMetrics records nothing.
type ClientMetrics struct {
	transportCreated metric.Int64Counter
	transportReused  metric.Int64Counter
	clientResolved   metric.Int64Counter
	resolveFailed    metric.Int64Counter
}

// NewClientMetrics creates the instruments on meter.
func NewClientMetrics(meter metric.Meter) (*ClientMetrics, error) {
	transportCreated, err := meter.Int64Counter("clientkit.transport.created",
		metric.WithDescription("Shared transports created"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transport.created counter: %w", err)
	}

	transportReused, err := meter.Int64Counter("clientkit.transport.reused",
		metric.WithDescription("Resolutions served by an existing shared transport"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transport.reused counter: %w", err)
	}

	clientResolved, err := meter.Int64Counter("clientkit.client.resolved",
		metric.WithDescription("Typed clients resolved"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating client.resolved counter: %w", err)
	}

	resolveFailed, err := meter.Int64Counter("clientkit.client.resolve_failed",
		metric.WithDescription("Typed client resolutions that returned an error"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating client.resolve_failed counter: %w", err)
	}

	return &ClientMetrics{
		transportCreated: transportCreated,
		transportReused:  transportReused,
		clientResolved:   clientResolved,
		resolveFailed:    resolveFailed,
	}, nil
}

// TransportCreated records a new shared transport.
func (m *ClientMetrics) TransportCreated(ctx context.Context, transport string) {
	if m == nil {
		return
	}
	m.transportCreated.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrTransport, transport)))
}

// TransportReused records a resolution that found its transport registered.
func (m *ClientMetrics) TransportReused(ctx context.Context, transport string) {
	if m == nil {
		return
	}
	m.transportReused.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrTransport, transport)))
}

// ClientResolved records a resolved typed client.
func (m *ClientMetrics) ClientResolved(ctx context.Context, client, transport string) {
	if m == nil {
		return
	}
	m.clientResolved.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrClient, client),
		attribute.String(AttrTransport, transport),
	))
}

// ResolveFailed records a failed typed client resolution.
func (m *ClientMetrics) ResolveFailed(ctx context.Context, client string) {
	if m == nil {
		return
	}
	m.resolveFailed.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrClient, client)))
}

// Attribute keys.
const (
	AttrClient    = "clientkit.client"
	AttrTransport = "clientkit.transport"
)
