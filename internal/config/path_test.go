// Package config provides tests for cross-platform path handling in TOML configuration.
// Windows users should not need double backslashes for the log directory.
package config

import (
	"testing"

	"github.com/BurntSushi/toml"
)

// TestTOMLStringTypes tests which TOML string forms carry Windows paths intact
func TestTOMLStringTypes(t *testing.T) {
	tests := []struct {
		name         string
		tomlContent  string
		expectError  bool
		expectedPath string
	}{
		{
			name:         "Double backslash in basic string",
			tomlContent:  "[logging]\ndirectory = \"C:\\\\SmartDate\\\\logs\"\n",
			expectedPath: `C:\SmartDate\logs`,
		},
		{
			name:         "Single backslash in literal string",
			tomlContent:  "[logging]\ndirectory = 'C:\\SmartDate\\logs'\n",
			expectedPath: `C:\SmartDate\logs`,
		},
		{
			name:        "Single backslash in basic string",
			tomlContent: "[logging]\ndirectory = \"C:\\SmartDate\\logs\"\n",
			expectError: true, // \S is not a TOML escape
		},
		{
			name:         "Forward slashes",
			tomlContent:  "[logging]\ndirectory = \"C:/SmartDate/logs\"\n",
			expectedPath: "C:/SmartDate/logs",
		},
		{
			name:         "Unix path",
			tomlContent:  "[logging]\ndirectory = \"/var/log/smartdate\"\n",
			expectedPath: "/var/log/smartdate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var config Config
			_, err := toml.Decode(tt.tomlContent, &config)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected decode error, got directory %q", config.Logging.Directory)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected decode error: %v", err)
			}
			if config.Logging.Directory != tt.expectedPath {
				t.Errorf("Logging.Directory = %q, want %q", config.Logging.Directory, tt.expectedPath)
			}
		})
	}
}

// TestLiteralPatternsSurviveTOML checks quoted pattern literals inside TOML strings
func TestLiteralPatternsSurviveTOML(t *testing.T) {
	var config Config
	_, err := toml.Decode("[logging]\nfilename_pattern = \"'smartdate-'yyyyMMdd'.log'\"\n", &config)
	if err != nil {
		t.Fatalf("Unexpected decode error: %v", err)
	}
	if config.Logging.FilenamePattern != "'smartdate-'yyyyMMdd'.log'" {
		t.Errorf("FilenamePattern = %q", config.Logging.FilenamePattern)
	}
	if err := config.Validate(); err == nil {
		t.Error("Validate() of a zero config should fail")
	}
}
