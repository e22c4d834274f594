// Package logging provides structured logging infrastructure for the markkeep application.
// It wraps Go's standard log/slog package with context-aware logging, correlation IDs,
// and domain-specific log attributes.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// contextKey is used for storing logger-related values in context.
type contextKey string

const (
	// CorrelationIDKey is the context key for correlation IDs.
	CorrelationIDKey contextKey = "correlation_id"
	// SyncPassIDKey is the context key for synchronization pass IDs.
	SyncPassIDKey contextKey = "sync_pass_id"
	// StrategyKey is the context key for the active sync strategy.
	StrategyKey contextKey = "strategy"
	// BookmarkIDKey is the context key for bookmark IDs.
	BookmarkIDKey contextKey = "bookmark_id"
	// SourceKey is the context key for import source paths.
	SourceKey contextKey = "source"
)

// Level represents log levels.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Format represents log output formats.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Config holds logging configuration.
type Config struct {
	Level      Level
	Format     Format
	Output     io.Writer
	AddSource  bool
	TimeFormat string
}

// DefaultConfig returns sensible default logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:      LevelInfo,
		Format:     FormatText,
		Output:     os.Stderr,
		AddSource:  false,
		TimeFormat: time.RFC3339,
	}
}

// Logger wraps slog.Logger with additional functionality for markkeep.
type Logger struct {
	slogger *slog.Logger
	level   slog.Level
}

// global is the package-level default logger.
var (
	global     *Logger
	globalOnce sync.Once
)

// Init initializes the global logger with the provided configuration.
func Init(cfg Config) *Logger {
	globalOnce.Do(func() {
		global = New(cfg)
	})
	return global
}

// Default returns the global logger, initializing it with defaults if necessary.
func Default() *Logger {
	if global == nil {
		Init(DefaultConfig())
	}
	return global
}

// New creates a new Logger with the provided configuration.
func New(cfg Config) *Logger {
	level := parseLevel(cfg.Level)

	var handler slog.Handler
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Customize time format
			if a.Key == slog.TimeKey && cfg.TimeFormat != "" {
				if t, ok := a.Value.Any().(time.Time); ok {
					return slog.String(slog.TimeKey, t.Format(cfg.TimeFormat))
				}
			}
			return a
		},
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return &Logger{
		slogger: slog.New(handler),
		level:   level,
	}
}

// parseLevel converts a Level to slog.Level.
func parseLevel(l Level) slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a new Logger with the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		slogger: l.slogger.With(args...),
		level:   l.level,
	}
}

// WithGroup returns a new Logger with the given group name.
func (l *Logger) WithGroup(name string) *Logger {
	return &Logger{
		slogger: l.slogger.WithGroup(name),
		level:   l.level,
	}
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, args ...any) {
	l.slogger.Debug(msg, args...)
}

// Info logs at info level.
func (l *Logger) Info(msg string, args ...any) {
	l.slogger.Info(msg, args...)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, args ...any) {
	l.slogger.Warn(msg, args...)
}

// Error logs at error level.
func (l *Logger) Error(msg string, args ...any) {
	l.slogger.Error(msg, args...)
}

// DebugContext logs at debug level with context.
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.slogger.DebugContext(ctx, msg, l.enrichArgs(ctx, args)...)
}

// InfoContext logs at info level with context.
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.slogger.InfoContext(ctx, msg, l.enrichArgs(ctx, args)...)
}

// WarnContext logs at warn level with context.
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.slogger.WarnContext(ctx, msg, l.enrichArgs(ctx, args)...)
}

// ErrorContext logs at error level with context.
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.slogger.ErrorContext(ctx, msg, l.enrichArgs(ctx, args)...)
}

// enrichArgs extracts context values and adds them as log attributes.
func (l *Logger) enrichArgs(ctx context.Context, args []any) []any {
	enriched := make([]any, 0, len(args)+10)

	// Extract standard context values
	if v := ctx.Value(CorrelationIDKey); v != nil {
		enriched = append(enriched, "correlation_id", v)
	}
	if v := ctx.Value(SyncPassIDKey); v != nil {
		enriched = append(enriched, "sync_pass_id", v)
	}
	if v := ctx.Value(StrategyKey); v != nil {
		enriched = append(enriched, "strategy", v)
	}
	if v := ctx.Value(BookmarkIDKey); v != nil {
		enriched = append(enriched, "bookmark_id", v)
	}
	if v := ctx.Value(SourceKey); v != nil {
		enriched = append(enriched, "source", v)
	}

	enriched = append(enriched, args...)
	return enriched
}

// --- Context helpers ---

// WithCorrelationID adds a correlation ID to the context.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, id)
}

// WithSyncPassID adds a synchronization pass ID to the context.
func WithSyncPassID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, SyncPassIDKey, id)
}

// WithStrategy adds the active sync strategy to the context.
func WithStrategy(ctx context.Context, strategy string) context.Context {
	return context.WithValue(ctx, StrategyKey, strategy)
}

// WithBookmarkID adds a bookmark ID to the context.
func WithBookmarkID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, BookmarkIDKey, id)
}

// WithSource adds an import source path to the context.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, SourceKey, source)
}

// CorrelationID extracts the correlation ID from context.
func CorrelationID(ctx context.Context) string {
	if v := ctx.Value(CorrelationIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// --- Domain-specific logging helpers ---

// LogSyncStart logs the start of a synchronization pass.
func LogSyncStart(ctx context.Context, logger *Logger, strategy string, version int64) {
	logger.InfoContext(ctx, "sync pass started",
		"strategy", strategy,
		"version", version,
	)
}

// LogSyncComplete logs the completion of a synchronization pass.
func LogSyncComplete(ctx context.Context, logger *Logger, strategy string, changes int, duration time.Duration, version int64) {
	logger.InfoContext(ctx, "sync pass completed",
		"strategy", strategy,
		"changes", changes,
		"duration_ms", duration.Milliseconds(),
		"version", version,
	)
}

// LogSyncFailed logs a failed synchronization pass.
func LogSyncFailed(ctx context.Context, logger *Logger, strategy string, err error, duration time.Duration) {
	logger.ErrorContext(ctx, "sync pass failed",
		"strategy", strategy,
		"error", err.Error(),
		"duration_ms", duration.Milliseconds(),
	)
}

// LogSyncRejected logs an attempt to start a pass while one is running.
func LogSyncRejected(ctx context.Context, logger *Logger) {
	logger.WarnContext(ctx, "sync pass rejected, already in progress")
}

// LogChangeRecorded logs a recorded bookmark change.
func LogChangeRecorded(ctx context.Context, logger *Logger, key string, deleted, buffered bool) {
	logger.DebugContext(ctx, "change recorded",
		"key", key,
		"deleted", deleted,
		"buffered", buffered,
	)
}

// LogOverflowFlushed logs the write of buffered changes back into the durable set.
func LogOverflowFlushed(ctx context.Context, logger *Logger, flushed int) {
	logger.InfoContext(ctx, "overflow buffer flushed",
		"flushed", flushed,
	)
}

// LogImportStart logs the start of a bookmark import.
func LogImportStart(ctx context.Context, logger *Logger, source, format string) {
	logger.InfoContext(ctx, "import started",
		"source", source,
		"format", format,
	)
}

// LogImportComplete logs the completion of a bookmark import.
func LogImportComplete(ctx context.Context, logger *Logger, source string, imported, skipped int, duration time.Duration) {
	logger.InfoContext(ctx, "import completed",
		"source", source,
		"imported", imported,
		"skipped", skipped,
		"duration_ms", duration.Milliseconds(),
	)
}

// LogImportFailed logs a failed bookmark import.
func LogImportFailed(ctx context.Context, logger *Logger, source string, err error) {
	logger.ErrorContext(ctx, "import failed",
		"source", source,
		"error", err.Error(),
	)
}
