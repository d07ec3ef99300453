// internal/common/observability/metrics.go
package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"
)

type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	tracer        trace.Tracer

	evalCounter   otelmetric.Int64Counter
	evalDuration  otelmetric.Float64Histogram
	stageDuration otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{tracer: otel.Tracer(serviceName)}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	evalCounter, _ := meter.Int64Counter(
		"evaluations.processed",
		otelmetric.WithDescription("Number of appraisal evaluations processed"),
	)

	evalDuration, _ := meter.Float64Histogram(
		"evaluations.duration",
		otelmetric.WithDescription("Appraisal evaluation duration"),
		otelmetric.WithUnit("ms"),
	)

	stageDuration, _ := meter.Float64Histogram(
		"evaluations.stage.duration",
		otelmetric.WithDescription("Pipeline stage duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		tracer:        otel.Tracer(serviceName),
		evalCounter:   evalCounter,
		evalDuration:  evalDuration,
		stageDuration: stageDuration,
	}
}

// StartStage opens a span for a pipeline stage. The engine calls this once per
// stage so the dependency graph is visible in traces.
func (o *Observability) StartStage(ctx context.Context, stage string) (context.Context, trace.Span) {
	if o.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return o.tracer.Start(ctx, "stage."+stage)
}

func (o *Observability) RecordEvaluation(ctx context.Context, verdict string) {
	if o.evalCounter != nil {
		o.evalCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("verdict", verdict),
		))
	}
}

func (o *Observability) RecordEvaluationDuration(ctx context.Context, duration time.Duration, verdict string) {
	if o.evalDuration != nil {
		o.evalDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("verdict", verdict),
		))
	}
}

func (o *Observability) RecordStageDuration(ctx context.Context, stage string, duration time.Duration) {
	if o.stageDuration != nil {
		o.stageDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("stage", stage),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
