package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const (
	attrPartition = "partition"
	attrTable     = "table"
	attrHit       = "hit"
	attrLabel     = "label"
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
)

// TelemetryConfig controls how metrics are exported.
type TelemetryConfig struct {
	Enabled      bool
	Port         string
	ServiceName  string
	OtlpEndpoint string
	OtlpInsecure bool
}

// Setup configures OpenTelemetry metrics with a Prometheus exporter and
// optional OTLP exporter. It returns a Recorder, the Prometheus HTTP
// handler, and a shutdown function.
func Setup(ctx context.Context, cfg TelemetryConfig) (*Recorder, http.Handler, func(context.Context) error, error) {
	if !cfg.Enabled {
		return NewRecorder(), nil, func(context.Context) error { return nil }, nil
	}

	if cfg.ServiceName == "" {
		cfg.ServiceName = "league-standings-service"
	}

	reg := prometheus.NewRegistry()
	promExp, err := promexporter.New(promexporter.WithRegisterer(reg))
	if err != nil {
		return nil, nil, nil, err
	}
	promHandler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})

	opts := []sdkmetric.Option{sdkmetric.WithReader(promExp)}

	if cfg.OtlpEndpoint != "" {
		otlpReader, err := buildOTLPReader(ctx, cfg.OtlpEndpoint, cfg.OtlpInsecure)
		if err != nil {
			return nil, nil, nil, err
		}
		opts = append(opts, sdkmetric.WithReader(otlpReader))
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)),
	)
	if err != nil {
		return nil, nil, nil, err
	}

	opts = append(opts, sdkmetric.WithResource(res))

	provider := sdkmetric.NewMeterProvider(opts...)

	otelInst, err := newOtelInstruments(provider)
	if err != nil {
		return nil, nil, nil, err
	}

	rec := newRecorder(otelInst)
	shutdown := func(c context.Context) error {
		return provider.Shutdown(c)
	}

	return rec, promHandler, shutdown, nil
}

func buildOTLPReader(ctx context.Context, endpoint string, insecure bool) (sdkmetric.Reader, error) {
	otlpOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(endpoint)}
	if insecure {
		otlpOpts = append(otlpOpts, otlpmetrichttp.WithInsecure())
	}
	otlpExp, err := otlpmetrichttp.New(ctx, otlpOpts...)
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewPeriodicReader(otlpExp, sdkmetric.WithInterval(15*time.Second)), nil
}

type otelInstruments struct {
	ctx              context.Context
	meter            metric.Meter
	scrapeAttempts   metric.Int64Counter
	scrapeErrors     metric.Int64Counter
	scrapeLatencyMs  metric.Float64Histogram
	cacheLookups     metric.Int64Counter
	cacheAgeMs       metric.Float64Histogram
	queueOps         metric.Int64Counter
	queueFailures    metric.Int64Counter
	queueWaitMs      metric.Float64Histogram
	queueExecMs      metric.Float64Histogram
	refreshCycles    metric.Int64Counter
	refreshErrors    metric.Int64Counter
	refreshLatencyMs metric.Float64Histogram
	requests         metric.Int64Counter
	requestLatencyMs metric.Float64Histogram
}

func newOtelInstruments(provider metric.MeterProvider) (*otelInstruments, error) {
	meter := provider.Meter("league-standings-service")
	ctx := context.Background()

	scrapeAttempts, err := meter.Int64Counter("scrape_attempts_total")
	if err != nil {
		return nil, err
	}
	scrapeErrors, err := meter.Int64Counter("scrape_errors_total")
	if err != nil {
		return nil, err
	}
	scrapeLatency, err := meter.Float64Histogram("scrape_duration_ms")
	if err != nil {
		return nil, err
	}
	cacheLookups, err := meter.Int64Counter("cache_lookups_total")
	if err != nil {
		return nil, err
	}
	cacheAge, err := meter.Float64Histogram("cache_entry_age_ms")
	if err != nil {
		return nil, err
	}
	queueOps, err := meter.Int64Counter("queue_operations_total")
	if err != nil {
		return nil, err
	}
	queueFailures, err := meter.Int64Counter("queue_failures_total")
	if err != nil {
		return nil, err
	}
	queueWait, err := meter.Float64Histogram("queue_wait_ms")
	if err != nil {
		return nil, err
	}
	queueExec, err := meter.Float64Histogram("queue_exec_ms")
	if err != nil {
		return nil, err
	}
	refreshCycles, err := meter.Int64Counter("refresh_cycles_total")
	if err != nil {
		return nil, err
	}
	refreshErrors, err := meter.Int64Counter("refresh_errors_total")
	if err != nil {
		return nil, err
	}
	refreshLatency, err := meter.Float64Histogram("refresh_cycle_duration_ms")
	if err != nil {
		return nil, err
	}
	requests, err := meter.Int64Counter("http_requests_total")
	if err != nil {
		return nil, err
	}
	requestLatency, err := meter.Float64Histogram("http_request_duration_ms")
	if err != nil {
		return nil, err
	}

	return &otelInstruments{
		ctx:              ctx,
		meter:            meter,
		scrapeAttempts:   scrapeAttempts,
		scrapeErrors:     scrapeErrors,
		scrapeLatencyMs:  scrapeLatency,
		cacheLookups:     cacheLookups,
		cacheAgeMs:       cacheAge,
		queueOps:         queueOps,
		queueFailures:    queueFailures,
		queueWaitMs:      queueWait,
		queueExecMs:      queueExec,
		refreshCycles:    refreshCycles,
		refreshErrors:    refreshErrors,
		refreshLatencyMs: refreshLatency,
		requests:         requests,
		requestLatencyMs: requestLatency,
	}, nil
}

func (o *otelInstruments) recordScrapeAttempt(partition string, duration time.Duration, err error) {
	if o == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String(attrPartition, partition)}
	o.recordCounter(o.scrapeAttempts, 1, attrs...)
	o.recordHistogram(o.scrapeLatencyMs, float64(duration.Milliseconds()), attrs...)
	if err != nil {
		o.recordCounter(o.scrapeErrors, 1, attrs...)
	}
}

func (o *otelInstruments) recordCacheLookup(table string, hit bool, age time.Duration) {
	if o == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String(attrTable, table),
		attribute.Bool(attrHit, hit),
	}
	o.recordCounter(o.cacheLookups, 1, attrs...)
	if hit {
		o.recordHistogram(o.cacheAgeMs, float64(age.Milliseconds()), attribute.String(attrTable, table))
	}
}

func (o *otelInstruments) recordQueueOperation(label string, wait, exec time.Duration, err error) {
	if o == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String(attrLabel, label)}
	o.recordCounter(o.queueOps, 1, attrs...)
	o.recordHistogram(o.queueWaitMs, float64(wait.Milliseconds()), attrs...)
	o.recordHistogram(o.queueExecMs, float64(exec.Milliseconds()), attrs...)
	if err != nil {
		o.recordCounter(o.queueFailures, 1, attrs...)
	}
}

func (o *otelInstruments) recordRefreshCycle(duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.recordCounter(o.refreshCycles, 1)
	o.recordHistogram(o.refreshLatencyMs, float64(duration.Milliseconds()))
	if err != nil {
		o.recordCounter(o.refreshErrors, 1)
	}
}

func (o *otelInstruments) recordHTTPRequest(method, path string, status int, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.Int(attrStatus, status),
	}
	o.recordCounter(o.requests, 1, attrs...)
	o.recordHistogram(o.requestLatencyMs, float64(duration.Milliseconds()), attrs...)
}

func (o *otelInstruments) recordCounter(counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if o == nil {
		return
	}
	counter.Add(o.ctx, value, metric.WithAttributes(attrs...))
}

func (o *otelInstruments) recordHistogram(hist metric.Float64Histogram, value float64, attrs ...attribute.KeyValue) {
	if o == nil {
		return
	}
	hist.Record(o.ctx, value, metric.WithAttributes(attrs...))
}
