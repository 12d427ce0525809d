package instrumentation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Resource attribute keys describing what a tasknotes process talks to.
const (
	AttrEvernoteHost = attribute.Key("tasknotes.evernote.host")
	AttrTransport    = attribute.Key("tasknotes.transport")
)

// Provider owns the meter and tracer providers of a serve process and the
// Metrics recorder built on them.
type Provider struct {
	enabled        bool
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	promExporter   *prometheus.Exporter
	metrics        *Metrics
}

// NewProvider validates config, builds the exporters it names and installs
// the providers as the otel globals. With config.Enabled false it returns a
// provider whose Metrics records nothing and installs nothing.
func NewProvider(ctx context.Context, config Config) (*Provider, error) {
	if !config.Enabled {
		return &Provider{metrics: &Metrics{}}, nil
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(resourceAttributes(config)...))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	reader, promExporter, err := newMetricReader(ctx, config)
	if err != nil {
		return nil, err
	}
	spanExporter, err := newSpanExporter(ctx, config)
	if err != nil {
		_ = reader.Shutdown(ctx)
		return nil, err
	}

	p := &Provider{
		enabled:      true,
		promExporter: promExporter,
		meterProvider: metric.NewMeterProvider(
			metric.WithResource(res),
			metric.WithReader(reader),
		),
	}

	if spanExporter == nil {
		p.tracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.NeverSample()),
		)
	} else {
		p.tracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithBatcher(spanExporter),
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(config.TraceSamplingRate))),
		)
	}

	p.metrics, err = NewMetrics(p.meterProvider.Meter(config.ServiceName))
	if err != nil {
		_ = p.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create metrics recorder: %w", err)
	}

	otel.SetMeterProvider(p.meterProvider)
	otel.SetTracerProvider(p.tracerProvider)

	return p, nil
}

// resourceAttributes names the service and the Evernote host it scans.
func resourceAttributes(config Config) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(config.ServiceName),
		semconv.ServiceVersion(config.ServiceVersion),
	}
	if hostname, err := os.Hostname(); err == nil {
		attrs = append(attrs, semconv.ServiceInstanceID(hostname))
	}
	if host := evernoteHost(config.EvernoteServiceURL); host != "" {
		attrs = append(attrs, AttrEvernoteHost.String(host))
	}
	if config.Transport != "" {
		attrs = append(attrs, AttrTransport.String(config.Transport))
	}
	return attrs
}

// evernoteHost reduces a service URL to its host, e.g.
// "https://sandbox.evernote.com" to "sandbox.evernote.com".
func evernoteHost(serviceURL string) string {
	if serviceURL == "" {
		return ""
	}
	u, err := url.Parse(serviceURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Host
}

// newMetricReader returns the reader for config.MetricsExporter. The
// prometheus exporter is also returned so the metrics server can be started.
func newMetricReader(ctx context.Context, config Config) (metric.Reader, *prometheus.Exporter, error) {
	switch config.MetricsExporter {
	case "", ExporterPrometheus:
		exporter, err := prometheus.New()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
		}
		return exporter, exporter, nil

	case ExporterOTLP:
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(config.OTLPEndpoint)}
		if config.OTLPInsecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exporter, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
		}
		return metric.NewPeriodicReader(exporter, metric.WithInterval(DefaultMetricInterval)), nil, nil

	case ExporterStdout:
		slog.Warn("stdout metrics exporter enabled, for debugging only", "exporter", ExporterStdout)
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create stdout metrics exporter: %w", err)
		}
		return metric.NewPeriodicReader(exporter, metric.WithInterval(DefaultMetricInterval)), nil, nil
	}
	return nil, nil, fmt.Errorf("unsupported metrics exporter: %s", config.MetricsExporter)
}

// newSpanExporter returns the exporter for config.TracingExporter, or nil
// when tracing is off.
func newSpanExporter(ctx context.Context, config Config) (sdktrace.SpanExporter, error) {
	switch config.TracingExporter {
	case "", ExporterNone:
		return nil, nil

	case ExporterOTLP:
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(config.OTLPEndpoint)}
		if config.OTLPInsecure {
			// Spans carry search queries and note GUIDs.
			slog.Warn("OTLP traces exported without TLS", "endpoint", config.OTLPEndpoint)
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exporter, err := otlptracehttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
		}
		return exporter, nil

	case ExporterStdout:
		slog.Warn("stdout trace exporter enabled, for debugging only", "exporter", ExporterStdout)
		exporter, err := stdouttrace.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout trace exporter: %w", err)
		}
		return exporter, nil
	}
	return nil, fmt.Errorf("unsupported tracing exporter: %s", config.TracingExporter)
}

// Metrics returns the recorder. It is never nil.
func (p *Provider) Metrics() *Metrics {
	return p.metrics
}

// PrometheusExporter returns the Prometheus reader, or nil when another
// metrics exporter is configured. The exporter registers with the default
// Prometheus registry served by promhttp.
func (p *Provider) PrometheusExporter() *prometheus.Exporter {
	return p.promExporter
}

// Enabled reports whether metrics and traces are exported.
func (p *Provider) Enabled() bool {
	return p.enabled
}

// Shutdown flushes pending telemetry and stops both providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	if !p.enabled {
		return nil
	}

	var errs []error
	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown meter provider: %w", err))
		}
	}
	if p.tracerProvider != nil {
		if err := p.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown tracer provider: %w", err))
		}
	}
	return errors.Join(errs...)
}
