package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newBufferLogger returns a JSON logger writing into a buffer.
func newBufferLogger(t *testing.T, level string) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l, err := New(Options{Level: level, Format: "json"}, zapcore.AddSync(&buf))
	require.NoError(t, err)
	return l, &buf
}

// decodeLines parses each JSON line written to buf.
func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"trace", TraceLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"warn", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"loud", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_InvalidOptions(t *testing.T) {
	_, err := New(Options{Level: "loud"}, nil)
	assert.Error(t, err)

	_, err = New(Options{Format: "xml"}, nil)
	assert.ErrorContains(t, err, "xml")
}

func TestLogger_WritesServiceAndRequestID(t *testing.T) {
	l, buf := newBufferLogger(t, "info")
	ctx := WithRequestID(context.Background(), "req-7")

	l.Info(ctx, "matched statement", zap.Int("candidates", 2))
	l.Debug(ctx, "filtered by level")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "matched statement", lines[0]["msg"])
	assert.Equal(t, "devtrack", lines[0]["service"])
	assert.Equal(t, "req-7", lines[0]["request.id"])
	assert.EqualValues(t, 2, lines[0]["candidates"])
	assert.Contains(t, lines[0]["caller"], "logger_test.go")
}

func TestLogger_TraceLevel(t *testing.T) {
	l, buf := newBufferLogger(t, "trace")
	l.Trace(context.Background(), "scored candidate")
	require.Len(t, decodeLines(t, buf), 1)

	l, buf = newBufferLogger(t, "debug")
	l.Trace(context.Background(), "scored candidate")
	assert.Empty(t, buf.String())
}

func TestLogger_UnderlyingReportsDomainCaller(t *testing.T) {
	l, buf := newBufferLogger(t, "debug")

	For(WithRequestID(context.Background(), "req-8"), l.Underlying()).Debug("ranked tasks")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "req-8", lines[0]["request.id"])
	assert.Contains(t, lines[0]["caller"], "logger_test.go")
}

func TestLogger_With(t *testing.T) {
	l, buf := newBufferLogger(t, "info")
	l.With(zap.String("command", "match")).Info(context.Background(), "loaded corpus")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "match", lines[0]["command"])
}
