package logging

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestLogger records every entry at TraceLevel and above for assertions.
type TestLogger struct {
	*Logger
	logs *observer.ObservedLogs
}

// NewTestLogger returns a recording logger. Hand domain packages
// tl.Underlying().
func NewTestLogger() *TestLogger {
	core, logs := observer.New(TraceLevel)
	return &TestLogger{Logger: wrap(zap.New(core)), logs: logs}
}

// Entries returns everything logged so far.
func (tl *TestLogger) Entries() []observer.LoggedEntry {
	return tl.logs.All()
}

// AssertLogged fails unless an entry at level has a message containing msg.
func (tl *TestLogger) AssertLogged(t testing.TB, level zapcore.Level, msg string) {
	t.Helper()
	if _, ok := tl.find(msg, level, true); !ok {
		t.Errorf("no %s entry containing %q", level, msg)
	}
}

// AssertField fails unless the first entry containing msg has key set to want.
func (tl *TestLogger) AssertField(t testing.TB, msg, key string, want any) {
	t.Helper()
	entry, ok := tl.find(msg, 0, false)
	if !ok {
		t.Errorf("no entry containing %q", msg)
		return
	}
	got, ok := entry.ContextMap()[key]
	if !ok {
		t.Errorf("entry %q has no field %q", entry.Message, key)
		return
	}
	assert.Equal(t, want, got, "field %q of %q", key, entry.Message)
}

func (tl *TestLogger) find(msg string, level zapcore.Level, matchLevel bool) (observer.LoggedEntry, bool) {
	for _, e := range tl.logs.All() {
		if strings.Contains(e.Message, msg) && (!matchLevel || e.Level == level) {
			return e, true
		}
	}
	return observer.LoggedEntry{}, false
}
