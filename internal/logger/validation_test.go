package logger

import (
	"errors"
	"runtime"
	"strings"
	"testing"
)

func TestValidateFilenamePattern(t *testing.T) {
	tests := []struct {
		name        string
		pattern     string
		expectError bool
		platform    string // "windows", "unix", "all"
	}{
		{"Valid compact pattern", "'app-'yyyyMMdd'.log'", false, "all"},
		{"Valid dashed pattern", "'app-'yyyy-MM-dd'.log'", false, "all"},
		{"Invalid slash pattern", "'app-'MM/dd/yyyy'.log'", true, "all"},
		{"Invalid backslash pattern", `'app-'MM\dd'.log'`, true, "all"},
		{"Invalid with colon (Windows)", "'app-'HH:mm:ss'.log'", true, "windows"},
		{"Valid with colon (Unix)", "'app-'HH:mm:ss'.log'", false, "unix"},
		{"Invalid with pipe", "'app-'yyyy|MM'.log'", true, "windows"},
		{"Empty pattern (uses default)", "", false, "all"},
		{"Valid with underscores", "'app_'yyyy_MM_dd'.log'", false, "all"},
		{"Literal only", "'static.log'", false, "all"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Skip platform-specific tests
			if tt.platform == "windows" && runtime.GOOS != "windows" {
				t.Skip("Skipping Windows-specific test")
			}
			if tt.platform == "unix" && runtime.GOOS == "windows" {
				t.Skip("Skipping Unix-specific test")
			}

			err := ValidateFilenamePattern(tt.pattern)

			if tt.expectError && err == nil {
				t.Errorf("Expected error for pattern %q, but got none", tt.pattern)
			}
			if !tt.expectError && err != nil {
				t.Errorf("Unexpected error for pattern %q: %v", tt.pattern, err)
			}
		})
	}
}

func TestSlashPatternSuggestion(t *testing.T) {
	err := ValidateFilenamePattern("'app-'MM/dd/yyyy'.log'")

	var validationErr *FilenameValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected *FilenameValidationError, got %T: %v", err, err)
	}
	if validationErr.Suggestion != "'app-'MM-dd-yyyy'.log'" {
		t.Errorf("Suggestion = %q, want %q", validationErr.Suggestion, "'app-'MM-dd-yyyy'.log'")
	}
	if err := ValidateFilenamePattern(validationErr.Suggestion); err != nil {
		t.Errorf("Suggested pattern failed validation: %v", err)
	}
}

func TestFilenameValidationError(t *testing.T) {
	err := &FilenameValidationError{
		Pattern:      "'app-'MM/dd/yyyy'.log'",
		InvalidChars: []rune{'/', '\\'},
		Platform:     "all",
		Suggestion:   "'app-'MM-dd-yyyy'.log'",
	}

	errorMsg := err.Error()

	// Check that error message contains key information
	expectedParts := []string{
		"'app-'MM/dd/yyyy'.log'",
		"invalid characters",
		"'/'",
		"Suggestion: 'app-'MM-dd-yyyy'.log'",
	}

	for _, part := range expectedParts {
		if !strings.Contains(errorMsg, part) {
			t.Errorf("Error message missing expected part %q. Got: %s", part, errorMsg)
		}
	}

	if strings.Contains(errorMsg, "invalid on") {
		t.Errorf("Error message should not name a platform for Platform=all: %s", errorMsg)
	}
}

func TestGetSuggestionForFilename(t *testing.T) {
	tests := []struct {
		name         string
		pattern      string
		invalidChars []rune
		expected     string
	}{
		{"Colon replacement", "'app-'HH:mm:ss'.log'", []rune{':'}, "'app-'HH-mm-ss'.log'"},
		{"Multiple character replacement", "'app-'yyyy|MM*dd'.log'", []rune{'|', '*'}, "'app-'yyyy-MMXdd'.log'"},
		{"Remove problematic chars", "'app-<'yyyy'>.log'", []rune{'<', '>'}, "'app-'yyyy'.log'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := getSuggestionForFilename(tt.pattern, tt.pattern, tt.invalidChars)
			if result != tt.expected {
				t.Errorf("getSuggestionForFilename(%q, %v) = %q, want %q",
					tt.pattern, tt.invalidChars, result, tt.expected)
			}
		})
	}
}

func TestSafePatterns(t *testing.T) {
	safePatterns := GetSafeFilenamePatterns()

	if len(safePatterns) == 0 {
		t.Error("GetSafeFilenamePatterns() returned no patterns")
	}

	// Validate that all "safe" patterns are actually safe
	for _, pattern := range safePatterns {
		t.Run("safe_"+pattern, func(t *testing.T) {
			if err := ValidateFilenamePattern(pattern); err != nil {
				t.Errorf("Safe pattern %q failed validation: %v", pattern, err)
			}
		})
	}
}

func TestLoggerValidationIntegration(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name        string
		pattern     string
		expectError bool
	}{
		{"Valid pattern creates logger", "'app-'yyyyMMdd'.log'", false},
		{"Invalid pattern rejects logger", "'app-'MM/dd/yyyy'.log'", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Config{
				Enabled:         true,
				Directory:       tempDir,
				FilenamePattern: tt.pattern,
				Level:           "info",
				ConsoleOutput:   false,
			}

			logger, err := NewLogger(config)

			if tt.expectError && err == nil {
				t.Errorf("Expected NewLogger to fail with pattern %q, but it succeeded", tt.pattern)
			}
			if !tt.expectError && err != nil {
				t.Errorf("Expected NewLogger to succeed with pattern %q, but got error: %v", tt.pattern, err)
			}

			if logger != nil {
				logger.Close()
			}
		})
	}
}
