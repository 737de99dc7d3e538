package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type logEntry struct {
	level  string
	msg    string
	fields []any
}

// recordingLogger captures log calls so tests can assert on them. Children
// created with With share the parent's entry list.
type recordingLogger struct {
	with    []any
	entries *[]logEntry
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{entries: &[]logEntry{}}
}

func (l *recordingLogger) record(level, msg string, args []any) {
	fields := append(append([]any{}, l.with...), args...)
	*l.entries = append(*l.entries, logEntry{level: level, msg: msg, fields: fields})
}

func (l *recordingLogger) Debug(msg string, args ...any) { l.record("debug", msg, args) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.record("info", msg, args) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args) }
func (l *recordingLogger) Error(msg string, args ...any) { l.record("error", msg, args) }

func (l *recordingLogger) With(args ...any) Logger {
	return &recordingLogger{
		with:    append(append([]any{}, l.with...), args...),
		entries: l.entries,
	}
}

func (l *recordingLogger) LogRequest(method, path string, statusCode int, duration string, args ...any) {
	l.record("info", "HTTP Request", args)
}

func (l *recordingLogger) LogError(err error, msg string, args ...any) {
	l.record("error", msg, append([]any{"error", err}, args...))
}

func newTestContext(method, path string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, nil)
	return c, w
}

func TestGetLoggerFromContext_UsesRequestScopedLogger(t *testing.T) {
	base := newRecordingLogger()
	c, _ := newTestContext("GET", "/api/v1/exercise")
	c.Request.Header.Set("X-Request-ID", "req-42")

	ContextLogger(base)(c)

	fallback := newRecordingLogger()
	GetLoggerFromContext(c, fallback).Info("exercise loaded")

	entries := *base.entries
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "exercise loaded", entries[0].msg)
		assert.Contains(t, entries[0].fields, "req-42")
		assert.Contains(t, entries[0].fields, "/api/v1/exercise")
	}
	assert.Empty(t, *fallback.entries)
}

func TestGetLoggerFromContext_FallbackCarriesRequestFields(t *testing.T) {
	c, _ := newTestContext("DELETE", "/api/v1/exercise")
	c.Request.Header.Set("X-Request-ID", "req-7")

	fallback := newRecordingLogger()
	GetLoggerFromContext(c, fallback).Warn("exercise not found")

	entries := *fallback.entries
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "warn", entries[0].level)
		assert.Equal(t, "exercise not found", entries[0].msg)
		assert.Contains(t, entries[0].fields, "req-7")
		assert.Contains(t, entries[0].fields, "DELETE")
	}
}
