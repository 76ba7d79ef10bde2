// Package telemetry runs in-process OpenTelemetry providers for the server.
//
// Finished spans are written to the zap logger at debug level. Metrics are
// kept in a manual reader and summarised in the log on Shutdown.
package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/felixgeelhaar/mcp-server/middleware"
)

// Provider owns a tracer provider and a meter provider.
type Provider struct {
	name   string
	logger *zap.Logger
	tp     *sdktrace.TracerProvider
	mp     *sdkmetric.MeterProvider
	reader *sdkmetric.ManualReader
}

// New creates providers tagged with the service name and version.
func New(name, version string, logger *zap.Logger) *Provider {
	res := resource.NewSchemaless(
		attribute.String("service.name", name),
		attribute.String("service.version", version),
	)

	reader := sdkmetric.NewManualReader()

	return &Provider{
		name:   name,
		logger: logger,
		tp: sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithSyncer(&logExporter{logger: logger}),
		),
		mp: sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(reader),
		),
		reader: reader,
	}
}

// Middleware returns middleware.OTel bound to these providers.
func (p *Provider) Middleware() middleware.Middleware {
	return middleware.OTel(
		middleware.WithTracerProvider(p.tp),
		middleware.WithMeterProvider(p.mp),
		middleware.WithOTelServiceName(p.name),
	)
}

// Counts holds the totals read from the request counters.
type Counts struct {
	Requests int64
	Errors   int64
}

// Collect reads the current request and error totals.
func (p *Provider) Collect(ctx context.Context) (Counts, error) {
	var rm metricdata.ResourceMetrics
	if err := p.reader.Collect(ctx, &rm); err != nil {
		return Counts{}, fmt.Errorf("telemetry: collect: %w", err)
	}

	var c Counts
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch m.Name {
			case middleware.MetricRequests:
				c.Requests += sumInt64(m.Data)
			case middleware.MetricErrors:
				c.Errors += sumInt64(m.Data)
			}
		}
	}
	return c, nil
}

// Shutdown logs the final counts and stops both providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	counts, err := p.Collect(ctx)
	if err == nil {
		p.logger.Info("telemetry summary",
			zap.Int64("requests", counts.Requests),
			zap.Int64("errors", counts.Errors),
		)
	}

	return errors.Join(err, p.tp.Shutdown(ctx), p.mp.Shutdown(ctx))
}

func sumInt64(data metricdata.Aggregation) int64 {
	sum, ok := data.(metricdata.Sum[int64])
	if !ok {
		return 0
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

// logExporter writes each finished span as a debug entry.
type logExporter struct {
	logger *zap.Logger
}

func (e *logExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		fields := []zap.Field{
			zap.String("span", s.Name()),
			zap.String("trace_id", s.SpanContext().TraceID().String()),
			zap.Duration("duration", s.EndTime().Sub(s.StartTime())),
			zap.String("status", s.Status().Code.String()),
		}
		for _, kv := range s.Attributes() {
			fields = append(fields, zap.String(string(kv.Key), kv.Value.Emit()))
		}
		e.logger.Debug("span finished", fields...)
	}
	return nil
}

func (e *logExporter) Shutdown(context.Context) error {
	return nil
}
