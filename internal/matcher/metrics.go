package matcher

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const matcherInstrumentationName = "github.com/fyrsmithlabs/devtrack/internal/matcher"

// tierNone labels requests that produced no match.
const tierNone = "none"

// Metrics holds matcher instruments.
type Metrics struct {
	meter          metric.Meter
	logger         *zap.Logger
	duration       metric.Float64Histogram
	matches        metric.Int64Counter
	semanticErrors metric.Int64Counter
}

// NewMetrics creates matcher instruments on the global meter provider.
func NewMetrics(logger *zap.Logger) *Metrics {
	m := &Metrics{
		meter:  otel.Meter(matcherInstrumentationName),
		logger: logger,
	}
	m.init()
	return m
}

func (m *Metrics) init() {
	var err error

	m.duration, err = m.meter.Float64Histogram(
		"devtrack.matcher.duration_seconds",
		metric.WithDescription("Duration of a match request in seconds, labeled by operation (one, many)"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5),
	)
	if err != nil {
		m.logger.Warn("failed to create duration histogram", zap.Error(err))
	}

	m.matches, err = m.meter.Int64Counter(
		"devtrack.matcher.matches_total",
		metric.WithDescription("Match requests by operation and the tier of the top result (exact, fuzzy, partial, semantic, none)"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		m.logger.Warn("failed to create matches counter", zap.Error(err))
	}

	m.semanticErrors, err = m.meter.Int64Counter(
		"devtrack.matcher.semantic_errors_total",
		metric.WithDescription("Semantic scoring failures that degraded a request to lexical tiers"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		m.logger.Warn("failed to create semantic errors counter", zap.Error(err))
	}
}

// RecordMatch records the outcome of one request. tier is the top result's
// match type, or "none".
func (m *Metrics) RecordMatch(ctx context.Context, operation, tier string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("tier", tier),
	)
	if m.duration != nil {
		m.duration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("operation", operation)))
	}
	if m.matches != nil {
		m.matches.Add(ctx, 1, attrs)
	}
}

// RecordSemanticError counts a degraded semantic tier.
func (m *Metrics) RecordSemanticError(ctx context.Context) {
	if m.semanticErrors != nil {
		m.semanticErrors.Add(ctx, 1)
	}
}
