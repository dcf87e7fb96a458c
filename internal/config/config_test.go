package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nowwaveradio/smartdate/internal/errorutil"
	"github.com/nowwaveradio/smartdate/internal/field"
	"github.com/nowwaveradio/smartdate/internal/template"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "smartdate.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v, want nil", err)
	}
}

func TestLoadConfig(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, `
[resolver]
format = "dd/MM/yyyy"
locale = "en-GB"
natural_language = false

[cache]
enabled = false

[field]
shift_step = 14
profiling = true

[logging]
level = "debug"
`))
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config.Resolver.Format != "dd/MM/yyyy" {
		t.Errorf("Resolver.Format = %q, want dd/MM/yyyy", config.Resolver.Format)
	}
	if config.Resolver.TimeFormat != "HH:mm" {
		t.Errorf("Resolver.TimeFormat = %q, want default HH:mm", config.Resolver.TimeFormat)
	}
	if config.Resolver.NaturalLanguage {
		t.Error("Explicit natural_language = false was replaced by the default")
	}
	if !config.Resolver.SmartCorrection || !config.Resolver.RelativeDates {
		t.Error("Absent booleans should keep their defaults")
	}
	if config.Cache.Enabled {
		t.Error("Explicit cache.enabled = false was replaced by the default")
	}
	if config.Field.ShiftStep != 14 || config.Field.Step != 1 {
		t.Errorf("Field steps = %d/%d, want 1/14", config.Field.Step, config.Field.ShiftStep)
	}
	if config.ProfilingThreshold() != 5*time.Millisecond {
		t.Errorf("ProfilingThreshold() = %v, want 5ms", config.ProfilingThreshold())
	}
	if config.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", config.Logging.Level)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr error
		wantMsg string
	}{
		{
			name:    "missing file",
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.toml") },
			wantErr: ErrFileNotFound,
		},
		{
			name:    "malformed TOML",
			path:    func(t *testing.T) string { return writeConfig(t, "[resolver\nformat = ") },
			wantErr: ErrInvalidFormat,
		},
		{
			name:    "unknown key",
			path:    func(t *testing.T) string { return writeConfig(t, "[resolver]\nfromat = \"yyyy\"\n") },
			wantMsg: "resolver.fromat",
		},
		{
			name:    "invalid level",
			path:    func(t *testing.T) string { return writeConfig(t, "[logging]\nlevel = \"loud\"\n") },
			wantMsg: "logging.level",
		},
		{
			name:    "blank format",
			path:    func(t *testing.T) string { return writeConfig(t, "[resolver]\nformat = \"  \"\n") },
			wantMsg: "validate config: smartdate configuration validation failed: resolver.format: is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(tt.path(t))
			if err == nil {
				t.Fatal("LoadConfig() succeeded unexpectedly")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadConfig() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("LoadConfig() error = %q, want it to mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestApplyEnvironmentOverrides(t *testing.T) {
	env := map[string]string{
		"SMARTDATE_LOCALE":            "zh-CN",
		"SMARTDATE_SMART_CORRECTION":  "false",
		"SMARTDATE_CACHE_CAPACITY":    "25",
		"SMARTDATE_LOG_LEVEL":         "warn",
		"SMARTDATE_LOG_DIRECTORY":     "",
		"SMARTDATE_CACHE_TTL_SECONDS": "",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	config := DefaultConfig()
	if err := config.ApplyEnvironmentOverrides(lookup); err != nil {
		t.Fatalf("ApplyEnvironmentOverrides() failed: %v", err)
	}

	if config.Resolver.Locale != "zh-CN" {
		t.Errorf("Resolver.Locale = %q, want zh-CN", config.Resolver.Locale)
	}
	if config.Resolver.SmartCorrection {
		t.Error("SMARTDATE_SMART_CORRECTION=false was not applied")
	}
	if !config.Resolver.NaturalLanguage {
		t.Error("Unset variable changed Resolver.NaturalLanguage")
	}
	if config.Cache.Capacity != 25 {
		t.Errorf("Cache.Capacity = %d, want 25", config.Cache.Capacity)
	}
	if config.Cache.TTLSeconds != 60 {
		t.Errorf("Empty SMARTDATE_CACHE_TTL_SECONDS changed Cache.TTLSeconds to %d", config.Cache.TTLSeconds)
	}
	if config.Logging.Directory != "logs" {
		t.Errorf("Empty SMARTDATE_LOG_DIRECTORY changed Logging.Directory to %q", config.Logging.Directory)
	}
	if config.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", config.Logging.Level)
	}
}

func TestApplyEnvironmentOverridesRejectsMalformed(t *testing.T) {
	lookup := func(key string) (string, bool) {
		if key == "SMARTDATE_CACHE_ENABLED" {
			return "sometimes", true
		}
		return "", false
	}

	err := DefaultConfig().ApplyEnvironmentOverrides(lookup)
	if !errors.Is(err, ErrInvalidEnv) {
		t.Errorf("ApplyEnvironmentOverrides() error = %v, want ErrInvalidEnv", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		field  string // empty means valid
	}{
		{"defaults", func(c *Config) {}, ""},
		{"format without date tokens", func(c *Config) { c.Resolver.Format = "HH:mm" }, "resolver.format"},
		{"time format without clock tokens", func(c *Config) { c.Resolver.TimeFormat = "yyyy" }, "resolver.time_format"},
		{"unsupported locale", func(c *Config) { c.Resolver.Locale = "not a locale" }, "resolver.locale"},
		{"empty format", func(c *Config) { c.Resolver.Format = "" }, "resolver.format"},
		{"blank time format", func(c *Config) { c.Resolver.TimeFormat = "  " }, "resolver.time_format"},
		{"empty locale", func(c *Config) { c.Resolver.Locale = "" }, "resolver.locale"},
		{"capacity above maximum", func(c *Config) { c.Cache.Capacity = 1_000_000 }, "cache.capacity"},
		{"capacity ignored when cache disabled", func(c *Config) { c.Cache.Enabled = false; c.Cache.Capacity = 0 }, ""},
		{"zero step", func(c *Config) { c.Field.Step = 0 }, "field.step"},
		{"negative drag distance", func(c *Config) { c.Field.DragPixelsPerStep = -1 }, "field.drag_pixels_per_step"},
		{"uppercase level", func(c *Config) { c.Logging.Level = "DEBUG" }, ""},
		{"unknown level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"filename pattern with a slash", func(c *Config) { c.Logging.FilenamePattern = "'app-'MM/dd'.log'" }, "logging.filename_pattern"},
		{"builtin output template", func(c *Config) { c.Output.Template = "markdown" }, ""},
		{"unknown output template", func(c *Config) { c.Output.Template = "fancy" }, "output.template"},
		{"template without line", func(c *Config) { c.Output.Templates = map[string]template.Definition{"x": {Header: "h"}} }, "output.templates"},
		{"template with bad field", func(c *Config) { c.Output.Templates = map[string]template.Definition{"x": {Line: "{{.Nope}}"}} }, "output.templates"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)

			err := config.Validate()
			if tt.field == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}

			var validationErr *errorutil.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("Validate() error = %v, want *errorutil.ValidationError", err)
			}
			found := false
			for _, fe := range validationErr.Errors {
				if fe.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("Validate() error = %v, want a failure for %s", err, tt.field)
			}
		})
	}
}

func TestValidateRequiredResolverFields(t *testing.T) {
	config := DefaultConfig()
	config.Resolver.Format = ""
	config.Resolver.Locale = " "

	var validationErr *errorutil.ValidationError
	if !errors.As(config.Validate(), &validationErr) {
		t.Fatal("Validate() accepted empty resolver settings")
	}

	// an empty value reports only that it is missing
	got := map[string]string{}
	for _, fe := range validationErr.Errors {
		if _, dup := got[fe.Field]; dup {
			t.Errorf("%s reported twice", fe.Field)
		}
		got[fe.Field] = fe.Message
	}
	for _, field := range []string{"resolver.format", "resolver.locale"} {
		if got[field] != "is required" {
			t.Errorf("%s message = %q, want is required", field, got[field])
		}
	}
	if len(got) != 2 {
		t.Errorf("failed fields = %v, want only the two empty ones", got)
	}
}

func TestLoadOutputTemplates(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, `
[output]
template = "short"

[output.templates.short]
line = "{{.Input}} {{.Formatted}}\n"
limit = 5
`))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Output.Template != "short" {
		t.Errorf("output.template = %q, want short", config.Output.Template)
	}
	def, ok := config.Output.Templates["short"]
	if !ok || def.Limit != 5 || def.Line != "{{.Input}} {{.Formatted}}\n" {
		t.Errorf("output.templates.short = %+v", def)
	}

	engine, err := config.Templates()
	if err != nil {
		t.Fatalf("Templates failed: %v", err)
	}
	for _, name := range []string{"markdown", "short", "tsv"} {
		if !engine.Has(name) {
			t.Errorf("template %s not loaded", name)
		}
	}
}

func TestFieldOptions(t *testing.T) {
	config := DefaultConfig()
	config.Resolver.SmartCorrection = false

	dateOpts := config.FieldOptions(field.Date)
	if dateOpts.Format != "yyyy-MM-dd" || dateOpts.ShiftStep != 7 {
		t.Errorf("Date options = %q/%d, want yyyy-MM-dd/7", dateOpts.Format, dateOpts.ShiftStep)
	}
	if dateOpts.Flags == nil || dateOpts.Flags.SmartCorrection {
		t.Error("Date options did not carry the configured flags")
	}

	timeOpts := config.FieldOptions(field.Time)
	if timeOpts.Format != "HH:mm" || timeOpts.ShiftStep != 15 || timeOpts.MetaStep != 60 {
		t.Errorf("Time options = %q/%d/%d, want HH:mm/15/60", timeOpts.Format, timeOpts.ShiftStep, timeOpts.MetaStep)
	}
}

func TestNewResolver(t *testing.T) {
	config := DefaultConfig()

	res, parseCache := config.NewResolver()
	if res == nil || parseCache == nil {
		t.Fatal("NewResolver() with cache enabled returned no cache")
	}
	defer parseCache.Close()
	if res.Cache() != parseCache {
		t.Error("Resolver is not using the returned cache")
	}

	config.Cache.Enabled = false
	res, parseCache = config.NewResolver()
	if parseCache != nil || res.Cache() != nil {
		t.Error("NewResolver() with cache disabled created a cache")
	}
}

func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "smartdate.toml")

	config := DefaultConfig()
	config.Resolver.Locale = "ja-JP"
	config.Resolver.RelativeDates = false
	config.Field.DragPixelsPerStep = 12

	if err := SaveConfig(config, path); err != nil {
		t.Fatalf("SaveConfig() failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() of saved file failed: %v", err)
	}
	if loaded.Resolver.Locale != "ja-JP" || loaded.Resolver.RelativeDates || loaded.Field.DragPixelsPerStep != 12 {
		t.Errorf("Saved config did not survive reload: %+v", loaded.Resolver)
	}

	if err := SaveConfig(nil, path); err == nil {
		t.Error("SaveConfig(nil) succeeded unexpectedly")
	}

	// a regular file where the directory should be
	blocked := filepath.Join(path, "smartdate.toml")
	err = SaveConfig(DefaultConfig(), blocked)
	var opErr *errorutil.FileOpError
	if err == nil || !strings.HasPrefix(err.Error(), "save config: ") || !errors.As(err, &opErr) {
		t.Errorf("SaveConfig() into a file path = %v, want a wrapped FileOpError", err)
	}
}

func TestConfigError(t *testing.T) {
	tests := []struct {
		err  ConfigError
		want string
	}{
		{ConfigError{Field: "cache.capacity", Message: "too large"}, "config.cache.capacity: too large"},
		{ConfigError{Message: "unknown keys"}, "unknown keys"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("ConfigError.Error() = %q, want %q", got, tt.want)
		}
	}
}
