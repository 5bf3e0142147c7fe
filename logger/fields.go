package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across schemalens.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Identity and context
	FieldRequestID  = "request_id"
	FieldSnapshotID = "snapshot_id"
	FieldVersion    = "version"
	FieldDigest     = "digest"

	// Components
	FieldComponent = "component"

	// Schema
	FieldTable     = "table"
	FieldField     = "field"
	FieldFromTable = "from_table"
	FieldToTable   = "to_table"
	FieldEdges     = "edges"
	FieldCost      = "cost"

	// Rules layer
	FieldIntent      = "intent"
	FieldConcept     = "concept"
	FieldPerspective = "perspective"
	FieldReason      = "reason"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts
	FieldCount = "count"

	// Files and paths
	FieldFile = "file"
	FieldPath = "path"

	// Network
	FieldAddress = "address"

	// Segment symbol
	FieldSymbol = "symbol"
)

// Context keys for propagating logging context
type contextKey string

const (
	requestIDKey  contextKey = "logger_request_id"
	snapshotIDKey contextKey = "logger_snapshot_id"
	componentKey  contextKey = "logger_component"
)

// WithRequestID adds a request ID to the context for logging
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithSnapshotID records which snapshot served the request
func WithSnapshotID(ctx context.Context, snapshotID string) context.Context {
	return context.WithValue(ctx, snapshotIDKey, snapshotID)
}

// WithComponent adds a component name to the context for logging
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey, component)
}

// FieldsFromContext extracts logging fields from context.
// Returns key-value pairs suitable for use with Infow/Errorw/etc.
func FieldsFromContext(ctx context.Context) []interface{} {
	var fields []interface{}

	if requestID, ok := ctx.Value(requestIDKey).(string); ok && requestID != "" {
		fields = append(fields, FieldRequestID, requestID)
	}
	if snapshotID, ok := ctx.Value(snapshotIDKey).(string); ok && snapshotID != "" {
		fields = append(fields, FieldSnapshotID, snapshotID)
	}
	if component, ok := ctx.Value(componentKey).(string); ok && component != "" {
		fields = append(fields, FieldComponent, component)
	}

	return fields
}

// LoggerFromContext returns a logger with fields extracted from context.
func LoggerFromContext(ctx context.Context) *zap.SugaredLogger {
	fields := FieldsFromContext(ctx)
	if len(fields) == 0 {
		return Logger
	}
	return Logger.With(fields...)
}

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	reloader := snapshot.NewReloader(holder, source, logger.ComponentLogger("snapshot.reload"))
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// OrNop returns l, or a no-op logger when l is nil.
// Constructors accept nil loggers and normalise them with this.
func OrNop(l *zap.SugaredLogger) *zap.SugaredLogger {
	if l == nil {
		return zap.NewNop().Sugar()
	}
	return l
}
