package embeddings

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/fyrsmithlabs/devtrack/internal/embeddings"

// Operations recorded by providers.
const (
	opTasks     = "tasks"     // task titles and descriptions
	opStatement = "statement" // the work statement being matched
)

// Metrics records embedding calls for one provider and model.
type Metrics struct {
	provider string
	model    string
	duration metric.Float64Histogram
	texts    metric.Int64Counter
	errors   metric.Int64Counter
}

// NewMetrics registers instruments on the global meter provider.
func NewMetrics(provider, model string) *Metrics {
	return newMetrics(otel.Meter(instrumentationName), provider, model)
}

func newMetrics(meter metric.Meter, provider, model string) *Metrics {
	m := &Metrics{provider: provider, model: model}
	var err error

	m.duration, err = meter.Float64Histogram(
		"devtrack.embeddings.duration_seconds",
		metric.WithDescription("Time to embed task texts or a statement."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 10),
	)
	otelHandle(err)

	m.texts, err = meter.Int64Counter(
		"devtrack.embeddings.texts_total",
		metric.WithDescription("Texts sent to the embedding provider."),
		metric.WithUnit("{text}"),
	)
	otelHandle(err)

	m.errors, err = meter.Int64Counter(
		"devtrack.embeddings.errors_total",
		metric.WithDescription("Failed embedding calls."),
		metric.WithUnit("{error}"),
	)
	otelHandle(err)
	return m
}

func otelHandle(err error) {
	if err != nil {
		otel.Handle(err)
	}
}

// Record notes one call embedding n texts.
func (m *Metrics) Record(ctx context.Context, op string, n int, elapsed time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("provider", m.provider),
		attribute.String("model", m.model),
		attribute.String("operation", op),
	)
	if m.duration != nil {
		m.duration.Record(ctx, elapsed.Seconds(), attrs)
	}
	if n > 0 && m.texts != nil {
		m.texts.Add(ctx, int64(n), attrs)
	}
	if err != nil && m.errors != nil {
		m.errors.Add(ctx, 1, attrs)
	}
}
