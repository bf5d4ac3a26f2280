package embeddings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T, provider, model string) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	return newMetrics(mp.Meter(instrumentationName), provider, model), reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

// sumByOperation totals an int64 counter per operation attribute.
func sumByOperation(t *testing.T, m metricdata.Metrics) map[string]int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "unexpected data type for %s", m.Name)
	out := map[string]int64{}
	for _, dp := range sum.DataPoints {
		op, _ := dp.Attributes.Value(attribute.Key("operation"))
		out[op.AsString()] += dp.Value
	}
	return out
}

func TestMetrics_Record(t *testing.T) {
	m, reader := newTestMetrics(t, ProviderTEI, DefaultModel)
	ctx := context.Background()

	m.Record(ctx, opTasks, 3, 40*time.Millisecond, nil)
	m.Record(ctx, opStatement, 1, 10*time.Millisecond, nil)
	m.Record(ctx, opTasks, 3, 5*time.Millisecond, errors.New("status 503"))

	got := collect(t, reader)

	hist, ok := got["devtrack.embeddings.duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var calls uint64
	for _, dp := range hist.DataPoints {
		calls += dp.Count
		provider, _ := dp.Attributes.Value(attribute.Key("provider"))
		model, _ := dp.Attributes.Value(attribute.Key("model"))
		assert.Equal(t, ProviderTEI, provider.AsString())
		assert.Equal(t, DefaultModel, model.AsString())
	}
	assert.Equal(t, uint64(3), calls)

	assert.Equal(t, map[string]int64{opTasks: 6, opStatement: 1},
		sumByOperation(t, got["devtrack.embeddings.texts_total"]))
	assert.Equal(t, map[string]int64{opTasks: 1},
		sumByOperation(t, got["devtrack.embeddings.errors_total"]))
}

func TestTEIClient_RecordsMetrics(t *testing.T) {
	srv := fakeTEI(t, nil)
	client, err := NewTEIClient(TEIConfig{BaseURL: srv.URL, Model: "test"})
	require.NoError(t, err)

	m, reader := newTestMetrics(t, ProviderTEI, "test")
	client.metrics = m

	_, err = client.EmbedDocuments(context.Background(), []string{"Fix login authentication bug", "Add OAuth2 support"})
	require.NoError(t, err)
	_, err = client.EmbedQuery(context.Background(), "")
	require.Error(t, err)

	got := collect(t, reader)
	assert.Equal(t, map[string]int64{opTasks: 2, opStatement: 1},
		sumByOperation(t, got["devtrack.embeddings.texts_total"]))
	assert.Equal(t, map[string]int64{opStatement: 1},
		sumByOperation(t, got["devtrack.embeddings.errors_total"]))
}
