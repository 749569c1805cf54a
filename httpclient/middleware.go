package httpclient

import (
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/kbukum/clientkit/httpclient"

// requestIDTransport stamps a generated id on requests without one.
type requestIDTransport struct {
	next   http.RoundTripper
	header string
}

// RoundTrip implements http.RoundTripper.
func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(t.header) != "" {
		return t.next.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set(t.header, uuid.NewString())
	return t.next.RoundTrip(r)
}

// tracingTransport records a client span per request and propagates the
// trace context in the request headers.
type tracingTransport struct {
	next   http.RoundTripper
	name   string
	tracer trace.Tracer
}

func newTracingTransport(name string, tp trace.TracerProvider, next http.RoundTripper) *tracingTransport {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &tracingTransport{
		next:   next,
		name:   name,
		tracer: tp.Tracer(tracerName),
	}
}

// RoundTrip implements http.RoundTripper.
func (t *tracingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx, span := t.tracer.Start(req.Context(), "HTTP "+req.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.full", req.URL.String()),
			attribute.String("server.address", req.URL.Host),
			attribute.String("clientkit.transport", t.name),
		),
	)
	defer span.End()

	r := req.Clone(ctx)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(r.Header))

	resp, err := t.next.RoundTrip(r)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
	}
	return resp, nil
}
