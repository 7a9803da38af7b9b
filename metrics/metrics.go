// Copyright (c) 2024 Elisamuel Resto Donate <sam@samresto.dev>
// SPDX-License-Identifier: MIT

// Package metrics implements OpenTelemetry and Prometheus metrics
// collection for the authoritative server's lookup engine.
package metrics

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Metrics manages OpenTelemetry and Prometheus metric collection for
// the lookup engine's query/outcome/error/latency instruments.
type Metrics struct {
	queryCounter     metric.Int64Counter
	lookupCounter    metric.Int64Counter
	errorCounter     metric.Int64Counter
	latencyRecorder  metric.Float64Histogram
	prometheusAddr   string
	prometheusServer *http.Server
}

// New initializes metrics with OpenTelemetry and/or Prometheus endpoints.
// Metrics are a no-op if neither endpoint is provided.
func New(otelEndpoint string, prometheusEndpoint string) (*Metrics, error) {
	m := &Metrics{prometheusAddr: prometheusEndpoint}

	if otelEndpoint == "" && prometheusEndpoint == "" {
		return m, nil
	}

	ctx := context.Background()

	var readers []sdkmetric.Reader

	if otelEndpoint != "" {
		exporter, err := otlpmetrichttp.New(ctx,
			otlpmetrichttp.WithEndpoint(otelEndpoint),
			otlpmetrichttp.WithInsecure(),
		)
		if err != nil {
			slog.Warn("failed to create OTLP exporter", "error", err)
		} else {
			readers = append(readers, sdkmetric.NewPeriodicReader(exporter))
			slog.Info("OTLP exporter configured", "endpoint", otelEndpoint)
		}
	}

	if prometheusEndpoint != "" {
		promExporter, err := prometheus.New()
		if err != nil {
			slog.Warn("failed to create Prometheus exporter", "error", err)
		} else {
			readers = append(readers, promExporter)
			slog.Info("Prometheus exporter configured", "endpoint", prometheusEndpoint)
		}
	}

	if len(readers) == 0 {
		slog.Warn("no metric exporters configured")
		return m, nil
	}

	var opts []sdkmetric.Option
	for _, reader := range readers {
		opts = append(opts, sdkmetric.WithReader(reader))
	}
	meterProvider := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(meterProvider)

	meter := otel.Meter("dnscore")

	queryCounter, err := meter.Int64Counter(
		"dnscore.queries.total",
		metric.WithDescription("Total questions processed"),
	)
	if err != nil {
		slog.Warn("failed to create query counter", "error", err)
		return m, nil
	}

	lookupCounter, err := meter.Int64Counter(
		"dnscore.lookups.total",
		metric.WithDescription("Lookup engine outcomes"),
	)
	if err != nil {
		slog.Warn("failed to create lookup counter", "error", err)
		return m, nil
	}

	errorCounter, err := meter.Int64Counter(
		"dnscore.errors.total",
		metric.WithDescription("Total errors"),
	)
	if err != nil {
		slog.Warn("failed to create error counter", "error", err)
		return m, nil
	}

	latencyRecorder, err := meter.Float64Histogram(
		"dnscore.query.latency_ms",
		metric.WithDescription("Query latency in milliseconds"),
	)
	if err != nil {
		slog.Warn("failed to create latency recorder", "error", err)
		return m, nil
	}

	m.queryCounter = queryCounter
	m.lookupCounter = lookupCounter
	m.errorCounter = errorCounter
	m.latencyRecorder = latencyRecorder

	if m.prometheusAddr != "" {
		if err := m.startPrometheusServer(); err != nil {
			slog.Warn("failed to start Prometheus server", "error", err)
		}
	}

	return m, nil
}

// RecordQuery records one question processed, tagged by question type.
func (m *Metrics) RecordQuery(qtype string) {
	if m.queryCounter == nil {
		return
	}
	m.queryCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("qtype", qtype)),
	)
}

// RecordLookup records which branch of the lookup state machine
// produced a response: exact, cname, delegation, wildcard, name_error,
// or not_implemented.
func (m *Metrics) RecordLookup(outcome string) {
	if m.lookupCounter == nil {
		return
	}
	m.lookupCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("outcome", outcome)),
	)
}

// RecordError records an error, tagged by type: parse_error or
// acl_denied. Transport write failures are logged, not counted here.
func (m *Metrics) RecordError(errType string) {
	if m.errorCounter == nil {
		return
	}
	m.errorCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("type", errType)),
	)
}

// RecordLatency records query latency in milliseconds, measured from
// the handler receiving the request to the lookup engine returning its
// response; encoding and writing the response are not included.
func (m *Metrics) RecordLatency(latencyMs float64) {
	if m.latencyRecorder == nil {
		return
	}
	m.latencyRecorder.Record(context.Background(), latencyMs)
}

func (m *Metrics) startPrometheusServer() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	m.prometheusServer = &http.Server{
		Addr:    m.prometheusAddr,
		Handler: mux,
	}

	go func() {
		slog.Info("starting Prometheus metrics server", "endpoint", m.prometheusAddr+"/metrics")
		if err := m.prometheusServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Prometheus metrics server error", "error", err)
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the Prometheus metrics server.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m.prometheusServer != nil {
		return m.prometheusServer.Shutdown(ctx)
	}
	return nil
}
