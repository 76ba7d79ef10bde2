package middleware

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/mcp-server/protocol"
)

const instrumentationName = "github.com/felixgeelhaar/mcp-server"

// Metric instrument names.
const (
	MetricRequests        = "mcp.server.requests"
	MetricErrors          = "mcp.server.errors"
	MetricRequestDuration = "mcp.server.request.duration"
)

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*otelConfig)

type otelConfig struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	serviceName    string
	skipMethods    map[string]bool
}

// WithTracerProvider sets a custom tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *otelConfig) {
		c.tracerProvider = tp
	}
}

// WithMeterProvider sets a custom meter provider.
func WithMeterProvider(mp metric.MeterProvider) OTelOption {
	return func(c *otelConfig) {
		c.meterProvider = mp
	}
}

// WithOTelServiceName sets the service name for telemetry.
func WithOTelServiceName(name string) OTelOption {
	return func(c *otelConfig) {
		c.serviceName = name
	}
}

// WithOTelSkipMethods specifies methods to skip for tracing.
func WithOTelSkipMethods(methods ...string) OTelOption {
	return func(c *otelConfig) {
		for _, m := range methods {
			c.skipMethods[m] = true
		}
	}
}

// OTel returns middleware that creates a server span per request and
// records request counts, error counts and latency. Results that report
// Failed() are counted as errors with mcp.tool.error set.
// tools/call spans carry the tool name.
func OTel(opts ...OTelOption) Middleware {
	cfg := &otelConfig{
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
		serviceName:    "mcp-server",
		skipMethods:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	tracer := cfg.tracerProvider.Tracer(instrumentationName)
	meter := cfg.meterProvider.Meter(instrumentationName)

	requestCounter, _ := meter.Int64Counter(
		MetricRequests,
		metric.WithDescription("Total number of MCP requests"),
		metric.WithUnit("{request}"),
	)
	requestDuration, _ := meter.Float64Histogram(
		MetricRequestDuration,
		metric.WithDescription("Duration of MCP requests"),
		metric.WithUnit("ms"),
	)
	errorCounter, _ := meter.Int64Counter(
		MetricErrors,
		metric.WithDescription("Total number of MCP protocol and tool errors"),
		metric.WithUnit("{error}"),
	)

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			if cfg.skipMethods[req.Method] {
				return next(ctx, req)
			}

			attrs := []attribute.KeyValue{
				attribute.String("mcp.method", req.Method),
				attribute.String("service.name", cfg.serviceName),
			}

			ctx, span := tracer.Start(ctx, "mcp."+req.Method,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			if reqID := RequestIDFromContext(ctx); reqID != "" {
				span.SetAttributes(attribute.String("mcp.request_id", reqID))
			}
			if req.Method == protocol.MethodToolsCall {
				if params, err := protocol.ParseCallToolParams(req.Params); err == nil {
					span.SetAttributes(attribute.String("mcp.tool.name", params.Name))
				}
			}

			requestCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
			start := time.Now()

			resp, err := next(ctx, req)

			elapsed := float64(time.Since(start).Microseconds()) / 1000
			requestDuration.Record(ctx, elapsed, metric.WithAttributes(attrs...))

			code, failed := errorCode(resp, err)
			if !failed {
				if toolFailed(resp) {
					span.SetAttributes(attribute.Bool("mcp.tool.error", true))
					span.SetStatus(codes.Error, "tool error")
					attrs = append(attrs, attribute.Bool("mcp.tool.error", true))
					errorCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
					return resp, err
				}
				span.SetStatus(codes.Ok, "")
				return resp, err
			}

			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			} else {
				span.SetStatus(codes.Error, resp.Error.Message)
			}
			if code != 0 {
				span.SetAttributes(attribute.Int("mcp.error_code", code))
				attrs = append(attrs, attribute.Int("mcp.error_code", code))
			}
			errorCounter.Add(ctx, 1, metric.WithAttributes(attrs...))

			return resp, err
		}
	}
}

// errorCode reports whether the handler failed and the JSON-RPC code if known.
func errorCode(resp *protocol.Response, err error) (int, bool) {
	if err != nil {
		var perr *protocol.Error
		if !errors.As(err, &perr) {
			return 0, true
		}
		return perr.Code, true
	}
	if resp != nil && resp.Error != nil {
		return resp.Error.Code, true
	}
	return 0, false
}

// toolFailed reports whether a successful response carries a result that
// failed, such as a tool call envelope with isError set.
func toolFailed(resp *protocol.Response) bool {
	if resp == nil {
		return false
	}
	r, ok := resp.Result.(interface{ Failed() bool })
	return ok && r.Failed()
}
