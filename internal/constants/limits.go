package constants

import "time"

// Reconciliation delays. Every continuation scheduled by a field uses one of these.
const (
	// ImmediateDelay defers work to the next turn of the event loop
	ImmediateDelay = 0 * time.Millisecond

	// BlurCommitDelay keeps blur commits from racing external updates and programmatic focus changes
	BlurCommitDelay = 10 * time.Millisecond

	// StepCommitDelay is how long a keyboard or drag step waits before emitting
	StepCommitDelay = 50 * time.Millisecond

	// ExternalSettleDelay is how long a field stays external after an outside change
	ExternalSettleDelay = 100 * time.Millisecond
)

// Parse cache configuration
const (
	// DefaultCacheCapacity is the maximum number of memoized resolutions
	DefaultCacheCapacity = 100

	// DefaultCacheTTL bounds how stale a cached resolution may be
	DefaultCacheTTL = 60 * time.Second

	// MaxCacheCapacity to prevent unbounded memory use from configuration
	MaxCacheCapacity = 10000
)

// Step magnitudes for keyboard and drag navigation
const (
	DefaultDateStep      = 1  // days
	DefaultDateShiftStep = 7  // days
	DefaultDateMetaStep  = 30 // days

	DefaultTimeStep      = 1  // minutes
	DefaultTimeShiftStep = 15 // minutes
	DefaultTimeMetaStep  = 60 // minutes

	// DefaultDragPixelsPerStep converts horizontal pointer movement into steps
	DefaultDragPixelsPerStep = 8
)

// Resolver defaults
const (
	DefaultDateFormat = "yyyy-MM-dd"
	DefaultTimeFormat = "HH:mm"
	DefaultLocale     = "en-US"

	// DefaultProfilingThreshold is the resolution time above which a diagnostic is logged
	DefaultProfilingThreshold = 5 * time.Millisecond

	// MaxNumericInputDigits is how many digits the numeric heuristics consider
	MaxNumericInputDigits = 8

	// MaxRelativeAmount bounds the count in relative input such as "+3d" or "90 minutes later";
	// larger counts do not parse
	MaxRelativeAmount = 1_000_000
)

// File and logging configuration
const (
	// DefaultLogFilenamePattern uses the resolver's pattern grammar; quoted text is literal
	DefaultLogFilenamePattern = "'smartdate-'yyyyMMdd'.log'"

	// DefaultLogDirectory is resolved relative to the working directory
	DefaultLogDirectory = "logs"

	// DefaultConfigFile is looked up when --config is not given
	DefaultConfigFile = "smartdate.toml"
)
