package errorutil

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// logFailure emits msg with the error first and the caller's context after it
func logFailure(logger *slog.Logger, level slog.Level, msg string, err error, attrs []slog.Attr) {
	all := make([]slog.Attr, 0, len(attrs)+1)
	all = append(all, slog.String("error", err.Error()))
	all = append(all, attrs...)
	logger.LogAttrs(context.Background(), level, msg, all...)
}

// LogAndWrap records a failed operation at debug level and returns err prefixed
// with the operation. The caller still owns reporting the returned error.
// AIDEV-NOTE: Debug keeps a returned error from being printed twice on the console
func LogAndWrap(logger *slog.Logger, operation string, err error, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if logger != nil {
		logFailure(logger, slog.LevelDebug, operation+" failed", err, attrs)
	}
	return fmt.Errorf("%s: %w", operation, err)
}

// LogWarning records a recoverable error that does not stop the operation
func LogWarning(logger *slog.Logger, operation string, err error, attrs ...slog.Attr) {
	if logger == nil || err == nil {
		return
	}
	logFailure(logger, slog.LevelWarn, "Non-fatal error in "+operation, err, attrs)
}

// ExecuteWithLogging runs fn between debug start and completion records that
// carry the elapsed time. fn's error is returned unchanged.
func ExecuteWithLogging(logger *slog.Logger, operation string, fn func() error, attrs ...slog.Attr) error {
	if logger == nil {
		return fn()
	}

	ctx := context.Background()
	logger.LogAttrs(ctx, slog.LevelDebug, "Starting "+operation, attrs...)

	start := time.Now()
	err := fn()

	done := make([]slog.Attr, 0, len(attrs)+1)
	done = append(done, attrs...)
	done = append(done, slog.Duration("duration", time.Since(start)))
	if err != nil {
		logFailure(logger, slog.LevelDebug, "Failed "+operation, err, done)
		return err
	}
	logger.LogAttrs(ctx, slog.LevelDebug, "Completed "+operation, done...)
	return nil
}

// ResolutionContext describes a text being resolved; empty values are omitted
func ResolutionContext(text, pattern, localeCode string) []slog.Attr {
	attrs := make([]slog.Attr, 0, 3)
	if text != "" {
		attrs = append(attrs, slog.String("text", text))
	}
	if pattern != "" {
		attrs = append(attrs, slog.String("pattern", pattern))
	}
	if localeCode != "" {
		attrs = append(attrs, slog.String("locale", localeCode))
	}
	return attrs
}

func ConfigContext(configFile string) []slog.Attr {
	if configFile == "" {
		return nil
	}
	return []slog.Attr{slog.String("config_file", configFile)}
}

func FileContext(filePath string) []slog.Attr {
	if filePath == "" {
		return nil
	}
	return []slog.Attr{slog.String("file_path", filePath)}
}
