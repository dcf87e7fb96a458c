package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nowwaveradio/smartdate/internal/config"
	"github.com/nowwaveradio/smartdate/internal/constants"
	"github.com/nowwaveradio/smartdate/internal/dateutil"
	"github.com/nowwaveradio/smartdate/internal/errorutil"
	"github.com/nowwaveradio/smartdate/internal/locale"
	"github.com/nowwaveradio/smartdate/internal/logger"
)

const version = "1.0.0"

// BannerColor is used for the long help text
var BannerColor = color.New(color.FgCyan)

var errNoMatch = errors.New("no date matched")

// skipConfigAnnotation marks commands that run before a config file exists
const skipConfigAnnotation = "smartdate/skip-config"

type rootCommand struct {
	cmd *cobra.Command

	configPath string
	logLevel   string
	noColor    bool

	cfg        *config.Config
	loadedFrom string // empty when running on defaults
	started    time.Time
	results    []string
}

func newRootCommand() *rootCommand {
	c := &rootCommand{}

	// the base command when called without any subcommands.
	c.cmd = &cobra.Command{
		Use:               "smartdate",
		Short:             "resolve free-form date and time input",
		Long:              BannerColor.Sprintf("\nsmartdate v%s\nTurns text like \"tmrw\", \"next friday\" or \"0704\" into calendar dates.", version),
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.persistentPreRunE,
		PersistentPostRun: c.persistentPostRun,
	}

	flags := c.cmd.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", constants.DefaultConfigFile, "TOML config file")
	flags.StringVar(&c.logLevel, "log-level", "", "override the configured log level ("+joinLevels()+")")
	flags.BoolVar(&c.noColor, "no-color", false, "disable colored output")
	must(cobra.MarkFlagFilename(flags, "config", "toml"))

	c.cmd.AddCommand(
		newResolveCommand(c),
		newPredictCommand(c),
		newReplayCommand(c),
		newInitConfigCommand(c),
	)
	for _, sub := range c.cmd.Commands() {
		c.logRun(sub)
	}
	return c
}

// logRun brackets cmd's RunE with timed debug records
func (c *rootCommand) logRun(cmd *cobra.Command) {
	run := cmd.RunE
	if run == nil {
		return
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return errorutil.ExecuteWithLogging(logger.Get().Logger, cmd.Name(), func() error {
			return run(cmd, args)
		}, errorutil.ConfigContext(c.loadedFrom)...)
	}
}

func (c *rootCommand) persistentPreRunE(cmd *cobra.Command, _ []string) error {
	c.started = time.Now()

	if cmd.Annotations[skipConfigAnnotation] != "" {
		c.cfg = config.DefaultConfig()
		return nil
	}

	cfg, err := config.LoadConfig(c.configPath)
	switch {
	case err == nil:
		c.loadedFrom = c.configPath
	case errors.Is(err, config.ErrFileNotFound) && !cmd.Flags().Changed("config"):
		// A missing default config file is fine; run on defaults plus environment
		cfg = config.DefaultConfig()
		if err := cfg.ApplyEnvironmentOverrides(nil); err != nil {
			return err
		}
	default:
		return fmt.Errorf("failed to load config from %s: %w", c.configPath, err)
	}

	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg

	if err := logger.Initialize(cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger.Get().LogAttrs(context.Background(), slog.LevelDebug, "smartdate starting",
		append(errorutil.ConfigContext(c.loadedFrom), slog.String("command", cmd.Name()))...)
	return nil
}

func (c *rootCommand) persistentPostRun(cmd *cobra.Command, _ []string) {
	if c.cfg == nil || !c.cfg.Logging.Enabled {
		return
	}
	logger.Get().LogExecutionSummary(c.started, c.loadedFrom, cmd.Name(), c.results, 0)
}

// record adds a line to the execution summary
func (c *rootCommand) record(format string, a ...interface{}) {
	c.results = append(c.results, fmt.Sprintf(format, a...))
}

// resolveLocale resolves code, or the configured locale when code is empty.
// Unsupported codes fall back to the default locale with a warning.
func (c *rootCommand) resolveLocale(code string) *locale.Record {
	if code == "" {
		code = c.cfg.Resolver.Locale
	}
	rec, err := locale.Resolve(locale.ID(code))
	if err != nil {
		errorutil.LogWarning(logger.Get().Logger, "resolve locale", err, slog.String("locale", code))
	}
	return rec
}

// clock returns the anchor for relative input. An empty value means the wall clock.
func clock(value string) (func() time.Time, error) {
	if value == "" {
		return time.Now, nil
	}
	now, err := dateutil.ParseFlexibleDate(value, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid --now value %q: %w", value, err)
	}
	return func() time.Time { return now }, nil
}

func (c *rootCommand) color(attributes ...color.Attribute) *color.Color {
	return getColor(c.noColor || color.NoColor, attributes...)
}

func getColor(noColor bool, attributes ...color.Attribute) *color.Color {
	if noColor {
		c := color.New()
		c.DisableColor()
		return c
	}

	c := color.New(attributes...)
	c.EnableColor()
	return c
}

// fprintf panics when there's an error writing to the supplied io.Writer
func fprintf(w io.Writer, format string, a ...interface{}) (n int) {
	n, err := fmt.Fprintf(w, format, a...)
	if err != nil {
		panic(err.Error())
	}
	return n
}

func joinLevels() string {
	return strings.Join(logger.Levels(), ", ")
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	c := newRootCommand()
	if err := c.cmd.Execute(); err != nil {
		fprintf(os.Stderr, "%s\n", getColor(c.noColor || color.NoColor, color.FgRed).Sprint("Error: "+err.Error()))
		os.Exit(1)
	}
}
