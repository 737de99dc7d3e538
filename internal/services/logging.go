package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"
)

// ServiceLogger provides structured logging for service layer operations
type ServiceLogger struct {
	logger *slog.Logger
	config LogConfig
}

type LogConfig struct {
	Service     string
	Component   string
	EnableDebug bool
}

func NewServiceLogger(logger *slog.Logger, config LogConfig) *ServiceLogger {
	return &ServiceLogger{
		logger: logger.With("service", config.Service, "component", config.Component),
		config: config,
	}
}

// ===== OPERATION LOGGING =====

func (l *ServiceLogger) LogOperation(ctx context.Context, operation, resourceKey string, duration time.Duration, err error) {
	level := slog.LevelInfo
	status := "success"

	if err != nil {
		level = slog.LevelError
		status = "error"

		if IsValidation(err) || IsBusinessRule(err) {
			level = slog.LevelWarn
			status = "validation_error"
		} else if IsNotFound(err) {
			level = slog.LevelInfo
			status = "not_found"
		}
	}

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("resource", resourceKey),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))

		if validationErr, ok := err.(ValidationErrors); ok {
			attrs = append(attrs, slog.Int("validation_errors_count", len(validationErr)))
		} else if businessErr, ok := err.(*BusinessRuleError); ok {
			attrs = append(attrs, slog.String("business_rule", businessErr.Rule))
		}

		if status == "error" {
			if pc, file, line, ok := runtime.Caller(2); ok {
				if fn := runtime.FuncForPC(pc); fn != nil {
					attrs = append(attrs,
						slog.String("caller_func", fn.Name()),
						slog.String("caller_file", file),
						slog.Int("caller_line", line),
					)
				}
			}
		}
	}

	if requestID := ctx.Value("request_id"); requestID != nil {
		if id, ok := requestID.(string); ok {
			attrs = append(attrs, slog.String("request_id", id))
		}
	}

	l.logger.LogAttrs(ctx, level, fmt.Sprintf("%s operation %s", operation, status), attrs...)
}

func (l *ServiceLogger) LogValidationError(ctx context.Context, operation string, validationErrors ValidationErrors) {
	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.Int("error_count", len(validationErrors)),
	}

	// Limit to the first few errors to avoid log spam
	for i, err := range validationErrors {
		if i >= 5 {
			break
		}
		attrs = append(attrs, slog.Group(fmt.Sprintf("error_%d", i+1),
			slog.String("field", err.Field),
			slog.String("message", err.Message),
			slog.Any("value", err.Value),
		))
	}

	l.logger.LogAttrs(ctx, slog.LevelWarn, "Validation failed", attrs...)
}

func (l *ServiceLogger) LogBusinessRuleViolation(ctx context.Context, operation string, rule *BusinessRuleError) {
	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("rule", rule.Rule),
		slog.String("message", rule.Message),
	}
	for key, value := range rule.Context {
		attrs = append(attrs, slog.Any(fmt.Sprintf("context_%s", key), value))
	}

	l.logger.LogAttrs(ctx, slog.LevelWarn, "Business rule violation", attrs...)
}

// ===== MIDDLEWARE AND HELPERS =====

// ContextualLogger wraps one operation with automatic timing
type ContextualLogger struct {
	logger    *ServiceLogger
	operation string
	startTime time.Time
	ctx       context.Context
}

func (l *ServiceLogger) WithOperation(ctx context.Context, operation string) *ContextualLogger {
	return &ContextualLogger{
		logger:    l,
		operation: operation,
		startTime: time.Now(),
		ctx:       ctx,
	}
}

func (cl *ContextualLogger) LogResult(resourceKey string, err error) {
	duration := time.Since(cl.startTime)
	cl.logger.LogOperation(cl.ctx, cl.operation, resourceKey, duration, err)

	if err != nil {
		if validationErrors, ok := err.(ValidationErrors); ok {
			cl.logger.LogValidationError(cl.ctx, cl.operation, validationErrors)
		} else if businessErr, ok := err.(*BusinessRuleError); ok {
			cl.logger.LogBusinessRuleViolation(cl.ctx, cl.operation, businessErr)
		}
	}
}

// ===== ERROR FORMATTING HELPERS =====

func FormatError(err error) map[string]interface{} {
	if err == nil {
		return nil
	}

	result := map[string]interface{}{
		"message": err.Error(),
		"type":    "unknown",
	}

	switch e := err.(type) {
	case ValidationErrors:
		result["type"] = "validation"
		result["count"] = len(e)

		fields := make([]map[string]interface{}, len(e))
		for i, validationErr := range e {
			fields[i] = map[string]interface{}{
				"field":   validationErr.Field,
				"message": validationErr.Message,
				"value":   validationErr.Value,
			}
		}
		result["errors"] = fields

	case *ValidationError:
		result["type"] = "validation"
		result["field"] = e.Field
		result["rule"] = e.Rule
		result["value"] = e.Value

	case *BusinessRuleError:
		result["type"] = "business_rule"
		result["rule"] = e.Rule
		result["context"] = e.Context

	default:
		if IsNotFound(err) {
			result["type"] = "not_found"
		} else if IsConflict(err) {
			result["type"] = "conflict"
		} else if IsValidation(err) {
			result["type"] = "validation"
		}
	}

	return result
}
