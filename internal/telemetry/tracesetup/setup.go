// Copyright 2026 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package tracesetup configures OpenTelemetry tracing for the chaintool.
package tracesetup

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ServiceName is the service name reported with every exported span.
const ServiceName = "chaincore"

// Config holds the OpenTelemetry exporter settings.
type Config struct {
	Endpoint     string  `toml:",omitempty"` // OTLP/HTTP collector URL; tracing is off when empty
	AuthUser     string  `toml:",omitempty"`
	AuthPassword string  `toml:",omitempty"`
	SampleRatio  float64 // fraction of root traces to sample, in [0, 1]
	InstanceID   string  `toml:",omitempty"`
}

// DefaultConfig samples every trace but exports nowhere.
var DefaultConfig = Config{SampleRatio: 1}

// Enabled reports whether an exporter endpoint is configured.
func (c Config) Enabled() bool { return c.Endpoint != "" }

// Service owns the tracer provider installed by StartTelemetry.
type Service struct {
	provider *sdktrace.TracerProvider
}

// Stop flushes pending spans and shuts the provider down.
func (t *Service) Stop() error {
	if t == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := t.provider.Shutdown(ctx); err != nil {
		log.Error("Failed to stop OpenTelemetry service", "err", err)
		return err
	}
	log.Debug("OpenTelemetry stopped")
	return nil
}

// StartTelemetry installs a global tracer provider exporting to cfg.Endpoint.
// It returns a nil service if tracing is not enabled.
func StartTelemetry(ctx context.Context, cfg Config) (*Service, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	if cfg.SampleRatio < 0 || cfg.SampleRatio > 1 {
		return nil, fmt.Errorf("invalid sample ratio: %f", cfg.SampleRatio)
	}
	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// Sample sampleRatio of root traces and inherit the parent's decision otherwise.
	sampler := sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))

	batchOpts := []sdktrace.BatchSpanProcessorOption{
		sdktrace.WithMaxQueueSize(sdktrace.DefaultMaxExportBatchSize),
		sdktrace.WithMaxExportBatchSize(sdktrace.DefaultMaxExportBatchSize),
		sdktrace.WithExportTimeout(time.Duration(sdktrace.DefaultExportTimeout) * time.Millisecond),
		sdktrace.WithBatchTimeout(time.Duration(sdktrace.DefaultScheduleDelay) * time.Millisecond),
	}

	var attr = []attribute.KeyValue{
		semconv.ServiceName(ServiceName),
	}
	if cfg.InstanceID != "" {
		attr = append(attr, semconv.ServiceInstanceID(cfg.InstanceID))
	}
	res := resource.NewWithAttributes(semconv.SchemaURL, attr...)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sampler),
		sdktrace.WithBatcher(exporter, batchOpts...),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	log.Info("OpenTelemetry tracing enabled", "endpoint", cfg.Endpoint)
	return &Service{provider: tp}, nil
}

// newExporter creates an OTLP/HTTP exporter from the endpoint URL.
func newExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid tracing endpoint URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported telemetry url scheme: %s", u.Scheme)
	}
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(u.Host),
	}
	if u.Scheme == "http" {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if u.Path != "" && u.Path != "/" {
		opts = append(opts, otlptracehttp.WithURLPath(u.Path))
	}
	if cfg.AuthUser != "" {
		opts = append(opts, otlptracehttp.WithHeaders(map[string]string{
			"Authorization": "Basic " + base64.StdEncoding.EncodeToString([]byte(cfg.AuthUser+":"+cfg.AuthPassword)),
		}))
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telemetry exporter: %w", err)
	}
	return exporter, nil
}
