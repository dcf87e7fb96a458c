package errorutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// FileOpError provides structured error information for file operations
type FileOpError struct {
	Operation string
	Path      string
	Err       error
}

func (e *FileOpError) Error() string {
	return fmt.Sprintf("%s failed for %s: %v", e.Operation, e.Path, e.Err)
}

func (e *FileOpError) Unwrap() error {
	return e.Err
}

// ValidateFileExists checks if a file exists and is accessible
// Returns FileOpError with context for better error messages
func ValidateFileExists(filePath, operation string) error {
	if filePath == "" {
		return &FileOpError{
			Operation: operation,
			Path:      filePath,
			Err:       fmt.Errorf("empty file path provided"),
		}
	}

	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &FileOpError{
				Operation: operation,
				Path:      filePath,
				Err:       os.ErrNotExist,
			}
		}
		return &FileOpError{
			Operation: operation,
			Path:      filePath,
			Err:       fmt.Errorf("cannot access file: %w", err),
		}
	}

	if info.IsDir() {
		return &FileOpError{
			Operation: operation,
			Path:      filePath,
			Err:       fmt.Errorf("path is a directory, expected file"),
		}
	}

	return nil
}

// ValidateDirectory checks if a directory exists and optionally creates it
func ValidateDirectory(dirPath, operation string, createIfMissing bool) error {
	if dirPath == "" {
		return &FileOpError{
			Operation: operation,
			Path:      dirPath,
			Err:       fmt.Errorf("empty directory path provided"),
		}
	}

	info, err := os.Stat(dirPath)
	if err != nil {
		if os.IsNotExist(err) {
			if createIfMissing {
				if mkdirErr := os.MkdirAll(dirPath, 0755); mkdirErr != nil {
					return &FileOpError{
						Operation: operation,
						Path:      dirPath,
						Err:       fmt.Errorf("failed to create directory: %w", mkdirErr),
					}
				}
				return nil
			}
			return &FileOpError{
				Operation: operation,
				Path:      dirPath,
				Err:       fmt.Errorf("directory not found"),
			}
		}
		return &FileOpError{
			Operation: operation,
			Path:      dirPath,
			Err:       fmt.Errorf("cannot access directory: %w", err),
		}
	}

	if !info.IsDir() {
		return &FileOpError{
			Operation: operation,
			Path:      dirPath,
			Err:       fmt.Errorf("path exists but is not a directory"),
		}
	}

	return nil
}

// ReadFile checks the path and reads it, wrapping failures in FileOpError
func ReadFile(filePath, operation string) ([]byte, error) {
	if err := ValidateFileExists(filePath, operation); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, &FileOpError{
			Operation: operation,
			Path:      filePath,
			Err:       fmt.Errorf("cannot read file: %w", err),
		}
	}
	return data, nil
}

// SafeWriteFile writes data to a file with proper error handling
func SafeWriteFile(filePath string, data []byte, operation string, createDir bool) error {
	if createDir {
		dir := filepath.Dir(filePath)
		if err := ValidateDirectory(dir, operation, true); err != nil {
			return err
		}
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return &FileOpError{
			Operation: operation,
			Path:      filePath,
			Err:       fmt.Errorf("failed to write file: %w", err),
		}
	}

	return nil
}

// FilesByModTime returns the files matching a glob, newest first.
// No match is not an error.
func FilesByModTime(pattern, operation string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, &FileOpError{
			Operation: operation,
			Path:      pattern,
			Err:       fmt.Errorf("invalid glob pattern: %w", err),
		}
	}

	type entry struct {
		path    string
		modTime int64
	}
	entries := make([]entry, 0, len(matches))
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue // Skip files we can't stat
		}
		entries = append(entries, entry{path: match, modTime: info.ModTime().UnixNano()})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].modTime > entries[j].modTime
	})

	files := make([]string, len(entries))
	for i, e := range entries {
		files[i] = e.path
	}
	return files, nil
}
