package utils

import (
	"context"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
)

// Logger is the logging interface shared by handlers and the server wiring.
// Services log through *slog.Logger directly; this wrapper exists for the
// HTTP layer, where request-scoped fields and status-aware levels matter.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// With returns a logger carrying the given key-value pairs.
	With(args ...any) Logger

	// LogRequest logs one completed HTTP request, picking the level from
	// the status code.
	LogRequest(method, path string, statusCode int, duration string, args ...any)
	LogError(err error, msg string, args ...any)
}

// SlogLogger adapts a *slog.Logger to the Logger interface
type SlogLogger struct {
	logger *slog.Logger
}

func NewSlogLogger(logger *slog.Logger) Logger {
	return &SlogLogger{logger: logger}
}

// NewDefaultLogger returns a JSON logger at info level for production use
func NewDefaultLogger() Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	return NewSlogLogger(logger)
}

// NewDevelopmentLogger returns a text logger at debug level
func NewDevelopmentLogger() Logger {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	return NewSlogLogger(logger)
}

func (l *SlogLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

func (l *SlogLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

func (l *SlogLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

func (l *SlogLogger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

func (l *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{logger: l.logger.With(args...)}
}

func (l *SlogLogger) LogRequest(method, path string, statusCode int, duration string, args ...any) {
	level := slog.LevelInfo
	if statusCode >= 400 {
		level = slog.LevelWarn
	}
	if statusCode >= 500 {
		level = slog.LevelError
	}

	baseArgs := []any{
		"method", method,
		"path", path,
		"status_code", statusCode,
		"duration", duration,
	}

	l.logger.Log(context.Background(), level, "HTTP Request", append(baseArgs, args...)...)
}

func (l *SlogLogger) LogError(err error, msg string, args ...any) {
	l.logger.Error(msg, append([]any{"error", err}, args...)...)
}

// GetSlogLogger exposes the underlying slog.Logger for code that takes
// *slog.Logger directly
func (l *SlogLogger) GetSlogLogger() *slog.Logger {
	return l.logger
}

// LoggerMiddleware replaces Gin's default request logging with ours
func LoggerMiddleware(logger Logger) func(*gin.Context) {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		logger.LogRequest(
			param.Method,
			param.Path,
			param.StatusCode,
			param.Latency.String(),
			"client_ip", param.ClientIP,
			"user_agent", param.Request.UserAgent(),
		)
		return ""
	})
}

// ContextLogger stores a request-scoped logger in the Gin context
func ContextLogger(logger Logger) func(*gin.Context) {
	return func(c *gin.Context) {
		requestLogger := logger.With(
			"request_id", c.GetHeader("X-Request-ID"),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)

		c.Set("logger", requestLogger)
		c.Next()
	}
}

// GetLoggerFromContext retrieves the request-scoped logger set by
// ContextLogger. When the middleware did not run, the fallback logger gets
// the same request fields attached so log lines stay correlatable.
func GetLoggerFromContext(c *gin.Context, fallback Logger) Logger {
	if logger, exists := c.Get("logger"); exists {
		if typedLogger, ok := logger.(Logger); ok {
			return typedLogger
		}
	}
	return fallback.With(
		"request_id", c.GetHeader("X-Request-ID"),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	)
}

// ToSlogLogger unwraps a Logger back to *slog.Logger for packages that log
// with slog directly
func ToSlogLogger(logger Logger) *slog.Logger {
	if slogLogger, ok := logger.(*SlogLogger); ok {
		return slogLogger.GetSlogLogger()
	}
	return slog.Default()
}
