// Package tracing wires OpenTelemetry for the Lambda functions.
// Traces are exported through the ADOT collector layer and propagated in
// both X-Ray and W3C formats.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-lambda-go/otellambda/xrayconfig"
	"go.opentelemetry.io/contrib/propagators/aws/xray"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "lambda-echo"

// Init creates the X-Ray flavoured tracer provider, installs it globally
// along with the propagator, and returns it so callers can flush on exit.
func Init(ctx context.Context) (*sdktrace.TracerProvider, error) {
	tp, err := xrayconfig.NewTracerProvider(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer provider: %w", err)
	}
	otel.SetTracerProvider(tp)
	InitPropagator()
	return tp, nil
}

// InitPropagator installs the X-Ray + W3C composite propagator
func InitPropagator() {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		xray.Propagator{},
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

// StartHandlerSpan starts a span for one handler invocation
func StartHandlerSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartColdStartSpan starts the span that covers process initialisation.
// AWS calls made during init become its children.
func StartColdStartSpan(ctx context.Context, function string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "ColdStart", trace.WithAttributes(Function(function)))
}

// RecordError marks the span as failed
func RecordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func RequestID(id string) attribute.KeyValue {
	return attribute.String("request_id", id)
}

func Function(name string) attribute.KeyValue {
	return attribute.String("function", name)
}

// FunctionName is the Lambda function a caller is targeting
func FunctionName(name string) attribute.KeyValue {
	return attribute.String("faas.invoked_name", name)
}

func ProbeID(id string) attribute.KeyValue {
	return attribute.String("echo.probe_id", id)
}

func PayloadBytes(n int) attribute.KeyValue {
	return attribute.Int("echo.payload_bytes", n)
}
