package logger

import (
	"github.com/teranos/schemalens/sym"
)

// Symbol-aware logging helpers.
// These functions log with the symbol as a structured field, not in the message.
//
// Usage:
//
//	// Instead of:
//	logger.Infow(sym.Snapshot + " Snapshot swapped", "version", v)
//
//	// Use:
//	logger.SnapshotInfow("Snapshot swapped", "version", v)

// SnapshotInfow logs an info message with the Snapshot symbol
func SnapshotInfow(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, sym.Snapshot}, keysAndValues...)
		Logger.Infow(msg, fields...)
	}
}

// SnapshotWarnw logs a warning message with the Snapshot symbol
func SnapshotWarnw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, sym.Snapshot}, keysAndValues...)
		Logger.Warnw(msg, fields...)
	}
}

// JoinDebugw logs a debug message with the Join symbol
func JoinDebugw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, sym.Join}, keysAndValues...)
		Logger.Debugw(msg, fields...)
	}
}
