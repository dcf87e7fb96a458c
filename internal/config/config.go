// Package config provides configuration management for smartdate.
// It handles loading TOML configuration files, validating settings, and
// applying SMARTDATE_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/mstoykov/envconfig"
	"gopkg.in/guregu/null.v3"

	"github.com/nowwaveradio/smartdate/internal/cache"
	"github.com/nowwaveradio/smartdate/internal/constants"
	"github.com/nowwaveradio/smartdate/internal/dateutil"
	"github.com/nowwaveradio/smartdate/internal/errorutil"
	"github.com/nowwaveradio/smartdate/internal/field"
	"github.com/nowwaveradio/smartdate/internal/locale"
	"github.com/nowwaveradio/smartdate/internal/logger"
	"github.com/nowwaveradio/smartdate/internal/resolver"
	"github.com/nowwaveradio/smartdate/internal/template"
)

// Config represents the main configuration structure
type Config struct {
	Resolver ResolverConfig `toml:"resolver"`
	Cache    CacheConfig    `toml:"cache"`
	Field    FieldConfig    `toml:"field"`
	Output   OutputConfig   `toml:"output"`
	Logging  logger.Config  `toml:"logging"`
}

// ResolverConfig selects the display patterns, locale and strategy families
type ResolverConfig struct {
	Format          string `toml:"format"`      // e.g. "yyyy-MM-dd"
	TimeFormat      string `toml:"time_format"` // e.g. "HH:mm"
	Locale          string `toml:"locale"`
	SmartCorrection bool   `toml:"smart_correction"`
	NaturalLanguage bool   `toml:"natural_language"`
	RelativeDates   bool   `toml:"relative_dates"`
}

// CacheConfig bounds the parse cache
type CacheConfig struct {
	Enabled    bool `toml:"enabled"`
	Capacity   int  `toml:"capacity"`
	TTLSeconds int  `toml:"ttl_seconds"`
}

// FieldConfig holds the interaction settings shared by every field
type FieldConfig struct {
	// Date steps are in days
	Step      int `toml:"step"`
	ShiftStep int `toml:"shift_step"`
	MetaStep  int `toml:"meta_step"`

	// Time steps are in minutes
	TimeStep      int `toml:"time_step"`
	TimeShiftStep int `toml:"time_shift_step"`
	TimeMetaStep  int `toml:"time_meta_step"`

	KeyboardNavigation   bool    `toml:"keyboard_navigation"`
	Profiling            bool    `toml:"profiling"`
	ProfilingThresholdMS int     `toml:"profiling_threshold_ms"`
	DragPixelsPerStep    float64 `toml:"drag_pixels_per_step"`
}

// OutputConfig holds the prediction output templates. An empty Template
// keeps the coloured one-line-per-input output.
type OutputConfig struct {
	Template  string                         `toml:"template"`
	Templates map[string]template.Definition `toml:"templates"`
}

// ConfigError represents configuration-related errors
type ConfigError struct {
	Field   string
	Message string
}

func (e ConfigError) Error() string {
	if e.Field != "" {
		return "config." + e.Field + ": " + e.Message
	}
	return e.Message
}

// AIDEV-NOTE: Error types help with specific error handling and better user feedback
var (
	ErrFileNotFound  = errors.New("configuration file not found")
	ErrInvalidFormat = errors.New("invalid configuration file format")
	ErrInvalidEnv    = errors.New("invalid environment override")
)

// LoadConfig reads, merges, overrides and validates a TOML configuration file
// AIDEV-NOTE: Uses BurntSushi/toml for parsing; MetaData tells an explicit false from an absent key
func LoadConfig(path string) (*Config, error) {
	data, err := errorutil.ReadFile(path, "load config")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}

	var loadedConfig Config
	md, err := toml.Decode(string(data), &loadedConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - %v", ErrInvalidFormat, path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return nil, ConfigError{Message: fmt.Sprintf("unknown keys in %s: %s", path, strings.Join(keys, ", "))}
	}

	config := mergeWithDefaults(&loadedConfig, DefaultConfig(), md)

	if err := config.ApplyEnvironmentOverrides(nil); err != nil {
		return nil, errorutil.LogAndWrap(logger.Get().Logger, "apply environment", err, errorutil.FileContext(path)...)
	}

	if err := config.Validate(); err != nil {
		return nil, errorutil.LogAndWrap(logger.Get().Logger, "validate config", err, errorutil.FileContext(path)...)
	}

	return config, nil
}

// DefaultConfig returns a Config struct with sensible default values
// AIDEV-NOTE: Defaults help ensure the application works with minimal configuration
func DefaultConfig() *Config {
	return &Config{
		Resolver: ResolverConfig{
			Format:          constants.DefaultDateFormat,
			TimeFormat:      constants.DefaultTimeFormat,
			Locale:          constants.DefaultLocale,
			SmartCorrection: true,
			NaturalLanguage: true,
			RelativeDates:   true,
		},
		Cache: CacheConfig{
			Enabled:    true,
			Capacity:   constants.DefaultCacheCapacity,
			TTLSeconds: int(constants.DefaultCacheTTL / time.Second),
		},
		Field: FieldConfig{
			Step:                 constants.DefaultDateStep,
			ShiftStep:            constants.DefaultDateShiftStep,
			MetaStep:             constants.DefaultDateMetaStep,
			TimeStep:             constants.DefaultTimeStep,
			TimeShiftStep:        constants.DefaultTimeShiftStep,
			TimeMetaStep:         constants.DefaultTimeMetaStep,
			KeyboardNavigation:   true,
			Profiling:            false,
			ProfilingThresholdMS: int(constants.DefaultProfilingThreshold / time.Millisecond),
			DragPixelsPerStep:    constants.DefaultDragPixelsPerStep,
		},
		Logging: logger.Config{
			Enabled:         false,
			Directory:       constants.DefaultLogDirectory,
			FilenamePattern: constants.DefaultLogFilenamePattern,
			Level:           "info",
			MaxFiles:        7,
			MaxSizeMB:       10,
			ConsoleOutput:   false,
		},
	}
}

// mergeWithDefaults takes a loaded config and merges it with default values
// AIDEV-NOTE: Non-zero values override defaults; booleans override only when the key is present
func mergeWithDefaults(loaded, defaults *Config, md toml.MetaData) *Config {
	result := *defaults // Start with defaults

	// Merge Resolver values
	if loaded.Resolver.Format != "" {
		result.Resolver.Format = loaded.Resolver.Format
	}
	if loaded.Resolver.TimeFormat != "" {
		result.Resolver.TimeFormat = loaded.Resolver.TimeFormat
	}
	if loaded.Resolver.Locale != "" {
		result.Resolver.Locale = loaded.Resolver.Locale
	}
	if md.IsDefined("resolver", "smart_correction") {
		result.Resolver.SmartCorrection = loaded.Resolver.SmartCorrection
	}
	if md.IsDefined("resolver", "natural_language") {
		result.Resolver.NaturalLanguage = loaded.Resolver.NaturalLanguage
	}
	if md.IsDefined("resolver", "relative_dates") {
		result.Resolver.RelativeDates = loaded.Resolver.RelativeDates
	}

	// Merge Cache values
	if md.IsDefined("cache", "enabled") {
		result.Cache.Enabled = loaded.Cache.Enabled
	}
	if loaded.Cache.Capacity != 0 {
		result.Cache.Capacity = loaded.Cache.Capacity
	}
	if loaded.Cache.TTLSeconds != 0 {
		result.Cache.TTLSeconds = loaded.Cache.TTLSeconds
	}

	// Merge Field values
	mergeInt(&result.Field.Step, loaded.Field.Step)
	mergeInt(&result.Field.ShiftStep, loaded.Field.ShiftStep)
	mergeInt(&result.Field.MetaStep, loaded.Field.MetaStep)
	mergeInt(&result.Field.TimeStep, loaded.Field.TimeStep)
	mergeInt(&result.Field.TimeShiftStep, loaded.Field.TimeShiftStep)
	mergeInt(&result.Field.TimeMetaStep, loaded.Field.TimeMetaStep)
	if md.IsDefined("field", "keyboard_navigation") {
		result.Field.KeyboardNavigation = loaded.Field.KeyboardNavigation
	}
	if md.IsDefined("field", "profiling") {
		result.Field.Profiling = loaded.Field.Profiling
	}
	if md.IsDefined("field", "profiling_threshold_ms") {
		result.Field.ProfilingThresholdMS = loaded.Field.ProfilingThresholdMS
	}
	if loaded.Field.DragPixelsPerStep != 0 {
		result.Field.DragPixelsPerStep = loaded.Field.DragPixelsPerStep
	}

	// Merge Output values
	if loaded.Output.Template != "" {
		result.Output.Template = loaded.Output.Template
	}
	if len(loaded.Output.Templates) > 0 {
		result.Output.Templates = loaded.Output.Templates
	}

	// Merge Logging values
	if md.IsDefined("logging", "enabled") {
		result.Logging.Enabled = loaded.Logging.Enabled
	}
	if loaded.Logging.Directory != "" {
		result.Logging.Directory = loaded.Logging.Directory
	}
	if loaded.Logging.FilenamePattern != "" {
		result.Logging.FilenamePattern = loaded.Logging.FilenamePattern
	}
	if loaded.Logging.Level != "" {
		result.Logging.Level = loaded.Logging.Level
	}
	if md.IsDefined("logging", "max_files") {
		result.Logging.MaxFiles = loaded.Logging.MaxFiles
	}
	if md.IsDefined("logging", "max_size_mb") {
		result.Logging.MaxSizeMB = loaded.Logging.MaxSizeMB
	}
	if md.IsDefined("logging", "console_output") {
		result.Logging.ConsoleOutput = loaded.Logging.ConsoleOutput
	}

	return &result
}

func mergeInt(dst *int, loaded int) {
	if loaded != 0 {
		*dst = loaded
	}
}

// envOverrides lists every variable ApplyEnvironmentOverrides reads.
// Unset variables stay invalid and leave the file value alone.
type envOverrides struct {
	Format          null.String `envconfig:"SMARTDATE_FORMAT"`
	TimeFormat      null.String `envconfig:"SMARTDATE_TIME_FORMAT"`
	Locale          null.String `envconfig:"SMARTDATE_LOCALE"`
	SmartCorrection null.Bool   `envconfig:"SMARTDATE_SMART_CORRECTION"`
	NaturalLanguage null.Bool   `envconfig:"SMARTDATE_NATURAL_LANGUAGE"`
	RelativeDates   null.Bool   `envconfig:"SMARTDATE_RELATIVE_DATES"`

	CacheEnabled    null.Bool `envconfig:"SMARTDATE_CACHE_ENABLED"`
	CacheCapacity   null.Int  `envconfig:"SMARTDATE_CACHE_CAPACITY"`
	CacheTTLSeconds null.Int  `envconfig:"SMARTDATE_CACHE_TTL_SECONDS"`

	Profiling null.Bool `envconfig:"SMARTDATE_PROFILING"`

	OutputTemplate null.String `envconfig:"SMARTDATE_OUTPUT_TEMPLATE"`

	LogEnabled   null.Bool   `envconfig:"SMARTDATE_LOG_ENABLED"`
	LogDirectory null.String `envconfig:"SMARTDATE_LOG_DIRECTORY"`
	LogLevel     null.String `envconfig:"SMARTDATE_LOG_LEVEL"`
}

// ApplyEnvironmentOverrides reads SMARTDATE_* variables through lookup and
// overrides config values. A nil lookup reads the process environment.
// AIDEV-NOTE: Only variables that are set and non-empty override; malformed values are errors
func (c *Config) ApplyEnvironmentOverrides(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	var env envOverrides
	if err := envconfig.Process("", &env, lookup); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEnv, err)
	}

	applyString(&c.Resolver.Format, env.Format)
	applyString(&c.Resolver.TimeFormat, env.TimeFormat)
	applyString(&c.Resolver.Locale, env.Locale)
	applyBool(&c.Resolver.SmartCorrection, env.SmartCorrection)
	applyBool(&c.Resolver.NaturalLanguage, env.NaturalLanguage)
	applyBool(&c.Resolver.RelativeDates, env.RelativeDates)

	applyBool(&c.Cache.Enabled, env.CacheEnabled)
	applyInt(&c.Cache.Capacity, env.CacheCapacity)
	applyInt(&c.Cache.TTLSeconds, env.CacheTTLSeconds)

	applyBool(&c.Field.Profiling, env.Profiling)

	applyString(&c.Output.Template, env.OutputTemplate)

	applyBool(&c.Logging.Enabled, env.LogEnabled)
	applyString(&c.Logging.Directory, env.LogDirectory)
	applyString(&c.Logging.Level, env.LogLevel)

	return nil
}

func applyString(dst *string, v null.String) {
	if v.Valid && v.String != "" {
		*dst = v.String
	}
}

func applyBool(dst *bool, v null.Bool) {
	if v.Valid {
		*dst = v.Bool
	}
}

func applyInt(dst *int, v null.Int) {
	if v.Valid {
		*dst = int(v.Int64)
	}
}

// Validate checks that all configuration fields are present and valid
// AIDEV-NOTE: Validation helps catch configuration issues early rather than failing at runtime
func (c *Config) Validate() error {
	return errorutil.ValidateConfig("smartdate", func(vb *errorutil.ValidationBuilder) *errorutil.ValidationBuilder {
		return vb.
			RequiredString("resolver.format", c.Resolver.Format).
			RequiredString("resolver.time_format", c.Resolver.TimeFormat).
			RequiredString("resolver.locale", c.Resolver.Locale).
			ValidIf(!errorutil.IsEmptyString(c.Resolver.Format), func(vb *errorutil.ValidationBuilder) *errorutil.ValidationBuilder {
				return vb.Custom("resolver.format", c.Resolver.Format, func(v interface{}) bool {
					return dateutil.Compile(v.(string)).HasDate()
				}, "must contain a year, month or day token")
			}).
			ValidIf(!errorutil.IsEmptyString(c.Resolver.TimeFormat), func(vb *errorutil.ValidationBuilder) *errorutil.ValidationBuilder {
				return vb.Custom("resolver.time_format", c.Resolver.TimeFormat, func(v interface{}) bool {
					return dateutil.Compile(v.(string)).HasTime()
				}, "must contain an hour or minute token")
			}).
			ValidIf(!errorutil.IsEmptyString(c.Resolver.Locale), func(vb *errorutil.ValidationBuilder) *errorutil.ValidationBuilder {
				return vb.Custom("resolver.locale", c.Resolver.Locale, func(v interface{}) bool {
					_, err := locale.Resolve(locale.ID(v.(string)))
					return err == nil
				}, "is not a supported locale ("+strings.Join(locale.Supported(), ", ")+")")
			}).
			ValidIf(c.Cache.Enabled, func(vb *errorutil.ValidationBuilder) *errorutil.ValidationBuilder {
				return vb.
					IntRange("cache.capacity", c.Cache.Capacity, 1, constants.MaxCacheCapacity).
					RequiredInt("cache.ttl_seconds", c.Cache.TTLSeconds)
			}).
			RequiredInt("field.step", c.Field.Step).
			RequiredInt("field.shift_step", c.Field.ShiftStep).
			RequiredInt("field.meta_step", c.Field.MetaStep).
			RequiredInt("field.time_step", c.Field.TimeStep).
			RequiredInt("field.time_shift_step", c.Field.TimeShiftStep).
			RequiredInt("field.time_meta_step", c.Field.TimeMetaStep).
			IntRange("field.profiling_threshold_ms", c.Field.ProfilingThresholdMS, 0, 60000).
			Custom("field.drag_pixels_per_step", c.Field.DragPixelsPerStep, func(v interface{}) bool {
				return v.(float64) > 0
			}, "must be greater than 0").
			Custom("output.templates", c.Output.Templates, func(interface{}) bool {
				return c.validTemplates()
			}, "must each have a line template that parses and renders").
			ValidIf(c.Output.Template != "", func(vb *errorutil.ValidationBuilder) *errorutil.ValidationBuilder {
				return vb.Custom("output.template", c.Output.Template, func(v interface{}) bool {
					engine, err := c.Templates()
					return err == nil && engine.Has(v.(string))
				}, "must name a builtin or configured template")
			}).
			OneOf("logging.level", strings.ToLower(c.Logging.Level), logger.Levels()).
			Custom("logging.filename_pattern", c.Logging.FilenamePattern, func(v interface{}) bool {
				return logger.ValidateFilenamePattern(v.(string)) == nil
			}, "is not a safe filename pattern (try "+logger.GetSafeFilenamePatterns()[0]+")")
	})
}

// Templates parses the builtin and configured output templates
func (c *Config) Templates() (*template.Engine, error) {
	return template.New(c.Output.Templates)
}

func (c *Config) validTemplates() bool {
	engine, err := c.Templates()
	if err != nil {
		return false
	}
	for name := range c.Output.Templates {
		if engine.Validate(name) != nil {
			return false
		}
	}
	return true
}

// Flags returns the resolver strategy toggles
func (c *Config) Flags() resolver.Flags {
	return resolver.Flags{
		SmartCorrection: c.Resolver.SmartCorrection,
		NaturalLanguage: c.Resolver.NaturalLanguage,
		RelativeDates:   c.Resolver.RelativeDates,
	}
}

// CacheTTL returns the cache entry lifetime
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// ProfilingThreshold returns the slow-resolution threshold, zero when profiling is off
func (c *Config) ProfilingThreshold() time.Duration {
	if !c.Field.Profiling {
		return 0
	}
	return time.Duration(c.Field.ProfilingThresholdMS) * time.Millisecond
}

// NewResolver builds a resolver with the configured cache and profiling.
// The returned cache is nil when caching is disabled; callers close it when done.
func (c *Config) NewResolver(opts ...resolver.Option) (*resolver.Resolver, *cache.Cache[resolver.Result]) {
	var parseCache *cache.Cache[resolver.Result]
	base := []resolver.Option{resolver.WithProfiling(c.ProfilingThreshold())}
	if c.Cache.Enabled {
		parseCache = cache.New[resolver.Result](
			cache.WithCapacity(c.Cache.Capacity),
			cache.WithTTL(c.CacheTTL()),
		)
		base = append(base, resolver.WithCache(parseCache))
	}
	return resolver.New(append(base, opts...)...), parseCache
}

// FieldOptions returns field options for kind with the configured format,
// locale, steps and feature toggles. Value, bounds and callbacks are left to the caller.
func (c *Config) FieldOptions(kind field.Kind) field.Options {
	flags := c.Flags()
	opts := field.Options{
		Format:                   c.Resolver.Format,
		Locale:                   locale.ID(c.Resolver.Locale),
		Flags:                    &flags,
		Step:                     c.Field.Step,
		ShiftStep:                c.Field.ShiftStep,
		MetaStep:                 c.Field.MetaStep,
		EnableCache:              c.Cache.Enabled,
		EnableKeyboardNavigation: c.Field.KeyboardNavigation,
		EnableProfiling:          c.Field.Profiling,
		ProfilingThreshold:       time.Duration(c.Field.ProfilingThresholdMS) * time.Millisecond,
		DragPixelsPerStep:        c.Field.DragPixelsPerStep,
	}
	if kind == field.Time {
		opts.Format = c.Resolver.TimeFormat
		opts.Step = c.Field.TimeStep
		opts.ShiftStep = c.Field.TimeShiftStep
		opts.MetaStep = c.Field.TimeMetaStep
	}
	return opts
}

// SaveConfig writes a Config struct to a TOML file
func SaveConfig(config *Config, path string) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}

	log := logger.Get().Logger
	data, err := toml.Marshal(config)
	if err != nil {
		return errorutil.LogAndWrap(log, "marshal config", err, errorutil.FileContext(path)...)
	}

	if err := errorutil.SafeWriteFile(path, data, "write", true); err != nil {
		return errorutil.LogAndWrap(log, "save config", err, errorutil.FileContext(path)...)
	}
	return nil
}
