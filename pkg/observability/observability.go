// Package observability wires tracing and metrics for the chat backend.
package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

var (
	// ChatTurns counts executed chat turns by outcome ("ok" or "fallback").
	ChatTurns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_turns_total",
		Help: "Chat turns executed, labelled by outcome.",
	}, []string{"outcome"})

	// ConversationsCreated counts conversations created for sessions.
	ConversationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_conversations_created_total",
		Help: "Conversations created for browser sessions.",
	})

	// GuardRejections counts access guard rejections by error code.
	GuardRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_guard_rejections_total",
		Help: "Access guard rejections, labelled by error code.",
	}, []string{"code"})
)

// SetupTracing initializes OpenTelemetry tracing with a stdout exporter.
// Returns a shutdown function for the provider.
func SetupTracing(serviceName string) (func(context.Context) error, error) {
	exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	res, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
	provider := trace.NewTracerProvider(
		trace.WithBatcher(exp),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	return provider.Shutdown, nil
}

// SetupMetrics initializes the OpenTelemetry meter provider backed by the
// Prometheus registry and returns the handler serving /metrics.
func SetupMetrics() (*metric.MeterProvider, http.Handler, error) {
	exp, err := otelprom.New()
	if err != nil {
		return nil, nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(exp))
	otel.SetMeterProvider(mp)
	return mp, promhttp.Handler(), nil
}
