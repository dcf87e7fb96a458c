package logger

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/nowwaveradio/smartdate/internal/dateutil"
)

// sampleTime renders patterns during validation so clock tokens show up as digits
var sampleTime = time.Date(2006, time.January, 2, 15, 4, 5, 0, time.UTC)

// FilenameValidationError represents an error in filename pattern validation
type FilenameValidationError struct {
	Pattern      string
	InvalidChars []rune
	Platform     string
	Suggestion   string
}

func (e *FilenameValidationError) Error() string {
	charList := make([]string, len(e.InvalidChars))
	for i, char := range e.InvalidChars {
		charList[i] = fmt.Sprintf("'%c'", char)
	}

	msg := fmt.Sprintf("invalid filename pattern %q contains invalid characters: %s",
		e.Pattern, strings.Join(charList, ", "))

	if e.Platform != "all" {
		msg += fmt.Sprintf(" (invalid on %s)", e.Platform)
	}

	if e.Suggestion != "" {
		msg += fmt.Sprintf(". Suggestion: %s", e.Suggestion)
	}

	return msg
}

// ValidateFilenamePattern validates that a filename pattern is safe for the current platform.
// The pattern uses the date grammar ("'app-'yyyyMMdd'.log'"); what is checked is
// the name it formats to.
// AIDEV-NOTE: Distinguishes between full paths and filename patterns
func ValidateFilenamePattern(pattern string) error {
	if pattern == "" {
		return nil // Empty pattern uses default, which is safe
	}

	formatted, err := dateutil.Format(sampleTime, pattern, nil)
	if err != nil {
		return fmt.Errorf("invalid filename pattern %q: %w", pattern, err)
	}

	// Determine if this is a full path or just a filename pattern
	isFullPath := isAbsolutePath(formatted)

	var filenameOnly string
	if isFullPath {
		// For full paths, extract just the filename part
		filenameOnly = extractFilename(formatted)
	} else {
		// For patterns, the whole thing should be treated as filename
		// Check if it contains path separators (which would be invalid)
		if strings.ContainsAny(formatted, "/\\") {
			return &FilenameValidationError{
				Pattern:      pattern,
				InvalidChars: []rune{'/', '\\'},
				Platform:     "all",
				Suggestion:   strings.ReplaceAll(strings.ReplaceAll(pattern, "/", "-"), "\\", "-"),
			}
		}
		filenameOnly = formatted
	}

	// Validate the filename part for platform-specific invalid characters
	invalidChars := findInvalidCharsInFilename(filenameOnly)
	if len(invalidChars) > 0 {
		patternName := pattern
		if isFullPath {
			patternName = extractFilename(pattern)
		}
		suggestion := getSuggestionForFilename(pattern, patternName, invalidChars)
		platform := "all"
		if runtime.GOOS == "windows" {
			platform = "Windows"
		}

		return &FilenameValidationError{
			Pattern:      pattern,
			InvalidChars: invalidChars,
			Platform:     platform,
			Suggestion:   suggestion,
		}
	}

	return nil
}

// isAbsolutePath determines if a pattern represents a full path vs a filename pattern
func isAbsolutePath(pattern string) bool {
	// Unix absolute path
	if strings.HasPrefix(pattern, "/") {
		return true
	}
	// Windows absolute path (C:\, D:\, etc.)
	if len(pattern) >= 3 && pattern[1] == ':' && (pattern[2] == '\\' || pattern[2] == '/') {
		return true
	}
	// UNC path (\\server\share)
	if strings.HasPrefix(pattern, "\\\\") {
		return true
	}
	return false
}

// findInvalidCharsInFilename returns invalid characters found in the filename part only
// AIDEV-NOTE: No longer rejects path separators since they're handled at pattern level
func findInvalidCharsInFilename(filename string) []rune {
	var invalid []rune

	// Universal invalid characters (only null byte for filenames in full paths)
	filenameInvalid := []rune{'\x00'}

	// Windows-specific invalid characters in filenames
	windowsInvalid := []rune{'<', '>', ':', '"', '|', '?', '*'}

	// Check for null bytes
	for _, char := range filenameInvalid {
		if strings.ContainsRune(filename, char) {
			invalid = append(invalid, char)
		}
	}

	// Check Windows-specific chars if on Windows
	if runtime.GOOS == "windows" {
		for _, char := range windowsInvalid {
			if strings.ContainsRune(filename, char) {
				invalid = append(invalid, char)
			}
		}
	}

	return invalid
}

// getSuggestionForFilename provides a safe alternative pattern
// AIDEV-NOTE: Now preserves directory path and only fixes filename
func getSuggestionForFilename(fullPattern, filename string, invalidChars []rune) string {
	// Start with the original filename
	suggestion := filename

	// AIDEV-NOTE: Replace common problematic patterns with safe alternatives
	replacements := map[rune]string{
		'/':  "-",  // MM/DD/YYYY -> MM-DD-YYYY
		'\\': "-",  // Similar for backslash
		':':  "-",  // HH:MM:SS -> HH-MM-SS
		'|':  "-",  // YYYY|MM -> YYYY-MM
		'*':  "X",  // app-* -> app-X
		'?':  "X",  // app-? -> app-X
		'<':  "",   // Remove
		'>':  "",   // Remove
		'"':  "",   // Remove
	}

	for _, char := range invalidChars {
		if replacement, exists := replacements[char]; exists {
			suggestion = strings.ReplaceAll(suggestion, string(char), replacement)
		}
	}

	// Clean up multiple consecutive dashes
	for strings.Contains(suggestion, "--") {
		suggestion = strings.ReplaceAll(suggestion, "--", "-")
	}

	// Combine fixed filename with original directory path
	dir := extractDirectory(fullPattern)
	if dir == "" {
		return suggestion // No directory part
	}
	return dir + string(filepath.Separator) + suggestion
}

// extractFilename extracts the filename from a pattern, handling both Unix and Windows paths
func extractFilename(pattern string) string {
	// Handle Windows paths by checking for backslashes
	if strings.Contains(pattern, "\\") {
		// Windows path - split on backslash
		parts := strings.Split(pattern, "\\")
		return parts[len(parts)-1]
	}
	// Unix path or simple filename - use standard filepath.Base
	return filepath.Base(pattern)
}

// extractDirectory extracts the directory from a pattern, handling both Unix and Windows paths
func extractDirectory(pattern string) string {
	// Handle Windows paths by checking for backslashes
	if strings.Contains(pattern, "\\") {
		// Windows path - split on backslash
		parts := strings.Split(pattern, "\\")
		if len(parts) <= 1 {
			return ""
		}
		return strings.Join(parts[:len(parts)-1], "\\")
	}
	// Unix path - use standard filepath.Dir
	dir := filepath.Dir(pattern)
	if dir == "." {
		return ""
	}
	return dir
}

// GetSafeFilenamePatterns returns a list of recommended safe patterns
func GetSafeFilenamePatterns() []string {
	return []string{
		"'app-'yyyyMMdd'.log'",          // Compact format
		"'app-'yyyy-MM-dd'.log'",        // ISO format with dashes
		"'app-'yyyy.MM.dd'.log'",        // Dot-separated format
		"'app_'yyyy_MM_dd'.log'",        // Underscore format
		"'app-'yyyyMMdd-HHmmss'.log'",   // With time (compact)
		"'app-'yyyy-MM-dd-HH-mm'.log'",  // With time (readable)
	}
}
