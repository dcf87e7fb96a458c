// Package logger provides cross-platform file-based logging for smartdate.
// It offers structured logging with different levels, daily rotation driven by
// a date pattern, and both file and console output.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/nowwaveradio/smartdate/internal/constants"
	"github.com/nowwaveradio/smartdate/internal/dateutil"
	"github.com/nowwaveradio/smartdate/internal/errorutil"
)

// Config represents logging configuration
type Config struct {
	Enabled         bool   `toml:"enabled"`
	Directory       string `toml:"directory"`
	FilenamePattern string `toml:"filename_pattern"` // e.g. "'smartdate-'yyyyMMdd'.log'"
	Level           string `toml:"level"`
	MaxFiles        int    `toml:"max_files"`
	MaxSizeMB       int    `toml:"max_size_mb"`
	ConsoleOutput   bool   `toml:"console_output"`
}

// Logger wraps slog.Logger with file management capabilities
type Logger struct {
	*slog.Logger
	config      Config
	file        *os.File
	fileName    string
	fileSize    int64
	mu          sync.Mutex
	multiWriter io.Writer
	now         func() time.Time
}

var (
	// Global logger instance
	globalLogger *Logger
	once         sync.Once
)

// Initialize creates and configures the global logger instance
func Initialize(config Config) error {
	var initErr error
	once.Do(func() {
		globalLogger, initErr = NewLogger(config)
	})
	return initErr
}

// Get returns the global logger instance
func Get() *Logger {
	if globalLogger == nil {
		// Fallback to stderr if not initialized so command output stays clean
		consoleLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelWarn,
		}))
		globalLogger = &Logger{Logger: consoleLogger}
	}
	return globalLogger
}

// NewLogger creates a new logger with the given configuration
func NewLogger(config Config) (*Logger, error) {
	if err := ValidateFilenamePattern(config.FilenamePattern); err != nil {
		return nil, err
	}

	logger := &Logger{
		config: config,
		now:    time.Now,
	}

	if config.Enabled {
		logDir := expandLogDirectory(config.Directory)
		if err := errorutil.ValidateDirectory(logDir, "create log directory", true); err != nil {
			return nil, err
		}

		logFile, err := logger.openLogFile()
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logger.file = logFile
	}
	logger.multiWriter = logger.writers()

	// AIDEV-NOTE: The handler writes through Logger.Write so every record gets a rotation check
	logger.Logger = slog.New(newHandler(logger, parseLogLevel(config.Level)))

	logger.Debug("Logger initialized",
		slog.String("log_file", logger.fileName),
		slog.String("level", config.Level),
		slog.Bool("console", config.ConsoleOutput))

	return logger, nil
}

// newHandler builds the text handler with the custom time and source formatting
func newHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Custom time format
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format("2006-01-02T15:04:05.000-07:00"))
			}
			// Shorten source paths for readability
			if a.Key == slog.SourceKey {
				source := a.Value.Any().(*slog.Source)
				return slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", filepath.Base(source.File), source.Line))
			}
			return a
		},
	})
}

// writers combines the configured outputs. Without any, logs go to stderr.
func (l *Logger) writers() io.Writer {
	writers := []io.Writer{}
	if l.config.ConsoleOutput {
		writers = append(writers, os.Stderr)
	}
	if l.file != nil {
		writers = append(writers, l.file)
	}
	if len(writers) == 0 {
		writers = append(writers, os.Stderr)
	}
	return io.MultiWriter(writers...)
}

// openLogFile creates or opens the current log file
func (l *Logger) openLogFile() (*os.File, error) {
	logDir := expandLogDirectory(l.config.Directory)

	fileName := generateLogFilename(l.config.FilenamePattern, l.now())
	filePath := filepath.Join(logDir, fileName)

	// Open file in append mode
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	// Get file info for size tracking
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	l.fileName = filePath
	l.fileSize = info.Size()

	return file, nil
}

// expandLogDirectory expands the log directory path with platform-specific defaults
func expandLogDirectory(dir string) string {
	if dir == "" {
		dir = constants.DefaultLogDirectory
	}

	// Handle absolute paths
	if filepath.IsAbs(dir) {
		return dir
	}

	// Handle relative paths
	if dir == constants.DefaultLogDirectory || strings.HasPrefix(dir, "./") {
		// Use working directory
		return dir
	}

	// Platform-specific default directories
	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "NowWaveRadio", "SmartDate", dir)
		}
	case "darwin", "linux":
		home := os.Getenv("HOME")
		if home != "" {
			return filepath.Join(home, ".nowwaveradio", "smartdate", dir)
		}
	}

	// Fallback to working directory
	return dir
}

// generateLogFilename formats the pattern with the shared date grammar.
// A pattern that cannot be formatted falls back to the default.
func generateLogFilename(pattern string, now time.Time) string {
	if pattern == "" {
		pattern = constants.DefaultLogFilenamePattern
	}

	name, err := dateutil.Format(now, pattern, nil)
	if err != nil {
		name, _ = dateutil.Format(now, constants.DefaultLogFilenamePattern, nil)
	}
	return name
}

// parseLogLevel converts string level to slog.Level
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Levels lists the accepted level names
func Levels() []string {
	return []string{"debug", "info", "warn", "warning", "error"}
}

// checkRotation rotates when the file is too large or the date in its name changed.
// Callers hold l.mu.
func (l *Logger) checkRotation() error {
	if l.file == nil || !l.config.Enabled {
		return nil
	}

	// Check file size
	maxSize := int64(l.config.MaxSizeMB) * 1024 * 1024
	if maxSize > 0 && l.fileSize >= maxSize {
		return l.rotate(true)
	}

	// Check if date has changed (for daily rotation)
	currentFileName := generateLogFilename(l.config.FilenamePattern, l.now())
	if filepath.Base(l.fileName) != currentFileName {
		return l.rotate(false)
	}

	return nil
}

// rotate performs log file rotation. A file that outgrew MaxSizeMB is moved
// aside first so the reopened name starts empty.
func (l *Logger) rotate(archive bool) error {
	if l.file != nil {
		l.file.Close()
	}
	if archive {
		ext := filepath.Ext(l.fileName)
		archived := strings.TrimSuffix(l.fileName, ext) + "." + l.now().Format("150405.000") + ext
		if err := os.Rename(l.fileName, archived); err != nil {
			fmt.Fprintf(os.Stderr, "Log archive error: %v\n", err)
		}
	}

	file, err := l.openLogFile()
	if err != nil {
		l.file = nil
		l.multiWriter = l.writers()
		return err
	}

	l.file = file
	l.multiWriter = l.writers()

	if l.config.MaxFiles > 0 {
		l.cleanOldFiles()
	}

	return nil
}

// cleanOldFiles keeps the newest MaxFiles logs matching the filename pattern
func (l *Logger) cleanOldFiles() {
	pattern := l.config.FilenamePattern
	if pattern == "" {
		pattern = constants.DefaultLogFilenamePattern
	}
	glob := filepath.Join(filepath.Dir(l.fileName), dateutil.Compile(pattern).Glob())

	files, err := errorutil.FilesByModTime(glob, "clean old log files")
	if err != nil {
		return
	}

	kept := 1 // the current file
	for _, file := range files {
		if file == l.fileName {
			continue
		}
		if kept < l.config.MaxFiles {
			kept++
			continue
		}
		os.Remove(file)
	}
}

// Write implements io.Writer interface with rotation check
func (l *Logger) Write(p []byte) (n int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkRotation(); err != nil {
		// Log rotation error but continue writing
		fmt.Fprintf(os.Stderr, "Log rotation error: %v\n", err)
	}

	n, err = l.multiWriter.Write(p)
	l.fileSize += int64(n)
	return
}

// FileName returns the path of the current log file, or "" when file logging is off
func (l *Logger) FileName() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fileName
}

// Close closes the log file
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		l.multiWriter = l.writers()
		return err
	}
	return nil
}

// LogExecutionSummary logs a formatted execution summary for audit purposes
func (l *Logger) LogExecutionSummary(startTime time.Time, configFile string, command string, results []string, exitCode int) {
	duration := time.Since(startTime)

	l.Info("=== EXECUTION SUMMARY ===")
	l.Info("Execution details",
		slog.Time("start_time", startTime),
		slog.String("config_file", configFile),
		slog.String("command", command),
		slog.Duration("total_duration", duration),
		slog.Int("exit_code", exitCode))

	for _, result := range results {
		l.Info(result)
	}
}
