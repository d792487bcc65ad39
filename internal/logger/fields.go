package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Field keys shared by every package that logs an analysis.
const (
	FieldProvider = "ai_provider"
	FieldModel    = "ai_model"
	FieldRunID    = "run_id"
	FieldMode     = "interview_mode"
)

// WithFields attaches fields to logger. A nil logger becomes a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}

// ModelFields describe the provider and model behind a generation call.
// Blank values are left out.
func ModelFields(provider, model string) []zap.Field {
	fields := make([]zap.Field, 0, 2)
	fields = appendTrimmed(fields, FieldProvider, provider)
	return appendTrimmed(fields, FieldModel, model)
}

// WithModel is WithFields(logger, ModelFields(provider, model)...).
func WithModel(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, ModelFields(provider, model)...)
}

// RunFields tie log entries and feedback records to a single analysis run.
// Blank values are left out.
func RunFields(runID, mode string) []zap.Field {
	fields := make([]zap.Field, 0, 2)
	fields = appendTrimmed(fields, FieldRunID, runID)
	return appendTrimmed(fields, FieldMode, mode)
}

func appendTrimmed(fields []zap.Field, key, value string) []zap.Field {
	if value = strings.TrimSpace(value); value == "" {
		return fields
	}
	return append(fields, zap.String(key, value))
}
