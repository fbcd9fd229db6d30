package vectorlite

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with database-specific helpers so operations log
// consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, uses a default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// LogOpen logs an open operation.
func (l *Logger) LogOpen(path string, records, warnings int, err error) {
	if err != nil {
		l.Error("open failed",
			"path", path,
			"error", err,
		)
	} else if warnings > 0 {
		l.Warn("opened with recovery warnings",
			"path", path,
			"records", records,
			"warnings", warnings,
		)
	} else {
		l.Debug("opened",
			"path", path,
			"records", records,
		)
	}
}

// LogInsert logs an insert operation.
func (l *Logger) LogInsert(id string, dimension int, err error) {
	if err != nil {
		l.Error("insert failed",
			"id", id,
			"dimension", dimension,
			"error", err,
		)
	} else {
		l.Debug("insert completed",
			"id", id,
			"dimension", dimension,
		)
	}
}

// LogSearch logs a search operation.
func (l *Logger) LogSearch(k, resultsFound int, err error) {
	if err != nil {
		l.Error("search failed",
			"k", k,
			"error", err,
		)
	} else {
		l.Debug("search completed",
			"k", k,
			"results", resultsFound,
		)
	}
}

// LogDelete logs a delete operation.
func (l *Logger) LogDelete(id string, err error) {
	if err != nil {
		l.Error("delete failed",
			"id", id,
			"error", err,
		)
	} else {
		l.Debug("delete completed",
			"id", id,
		)
	}
}

// LogFlush logs a flush to the database file.
func (l *Logger) LogFlush(path string, records int, err error) {
	if err != nil {
		l.Error("flush failed",
			"path", path,
			"error", err,
		)
	} else {
		l.Debug("flush completed",
			"path", path,
			"records", records,
		)
	}
}

// LogCompact logs a compaction.
func (l *Logger) LogCompact(reclaimed int, err error) {
	if err != nil {
		l.Error("compact failed",
			"reclaimed", reclaimed,
			"error", err,
		)
	} else {
		l.Debug("compact completed",
			"reclaimed", reclaimed,
		)
	}
}

// LogRecovery logs a block recovered during load. Recovery is never fatal,
// so this always warns.
func (l *Logger) LogRecovery(section string, err error) {
	l.Warn("recovered from corruption",
		"section", section,
		"error", err,
	)
}
