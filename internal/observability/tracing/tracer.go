package tracing

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"lending-library/internal/domain/entity"
)

// ServiceName is reported as service.name and used as the tracer name.
const ServiceName = "lending-library"

// GetTracer returns the tracer of the current global provider. It is looked
// up on each call so a provider installed later is picked up.
//
//	ctx, span := tracing.GetTracer().Start(ctx, "operation-name")
//	defer span.End()
func GetTracer() trace.Tracer {
	return otel.Tracer(ServiceName)
}

// StartSpan starts an internal span named name.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records err on span and ends it. Rejections carrying an
// *entity.Error are expected outcomes and only annotate the span; anything
// else marks it as failed.
func EndSpan(span trace.Span, err error) {
	defer span.End()
	if err == nil {
		return
	}
	var e *entity.Error
	if errors.As(err, &e) {
		span.SetAttributes(attribute.String("library.error_code", string(e.Code)))
		if e.Code != entity.CodeDB {
			return
		}
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// NewProvider installs an SDK tracer provider sampling ratio of new root
// traces (parent decisions are honoured) and W3C trace-context propagation.
// The returned function flushes and shuts the provider down.
func NewProvider(ratio float64, opts ...sdktrace.TracerProviderOption) func(context.Context) error {
	res := sdkresource.NewSchemaless(attribute.String("service.name", ServiceName))
	opts = append([]sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
		sdktrace.WithResource(res),
	}, opts...)
	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp.Shutdown
}
