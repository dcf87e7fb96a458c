package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nowwaveradio/smartdate/internal/logger"
	"github.com/nowwaveradio/smartdate/internal/resolver"
)

type resolveCmd struct {
	root *rootCommand

	format     string
	localeCode string
	now        string
	clockMode  bool
	explain    bool
	noCache    bool
}

func newResolveCommand(root *rootCommand) *cobra.Command {
	c := &resolveCmd{root: root}

	cmd := &cobra.Command{
		Use:   "resolve TEXT...",
		Short: "Resolve free-form text into a date or time",
		Long: `Resolve free-form text into a date or time.

The words of TEXT are joined with spaces, so quoting is optional.`,
		Example: `
  # Resolve relative to today
  smartdate resolve next friday

  # Resolve against a fixed day with a custom output pattern
  smartdate resolve --now 2024-03-10 --format "EEEE, MMMM d yyyy" tmrw

  # Resolve a clock time
  smartdate resolve --time 3pm`[1:],
		Args: cobra.MinimumNArgs(1),
		RunE: c.run,
	}

	flags := cmd.Flags()
	flags.StringVarP(&c.format, "format", "f", "", "output pattern (default from config)")
	flags.StringVarP(&c.localeCode, "locale", "l", "", "locale such as en-GB or zh_CN.UTF-8 (default from config)")
	flags.StringVar(&c.now, "now", "", "anchor date for relative input, e.g. 2024-03-10")
	flags.BoolVarP(&c.clockMode, "time", "t", false, "resolve a clock time instead of a date")
	flags.BoolVar(&c.explain, "explain", false, "also print the strategy that matched")
	flags.BoolVar(&c.noCache, "no-cache", false, "bypass the parse cache")
	return cmd
}

func (c *resolveCmd) run(cmd *cobra.Command, args []string) error {
	cfg := c.root.cfg
	text := strings.Join(args, " ")

	now, err := clock(c.now)
	if err != nil {
		return err
	}

	res, parseCache := cfg.NewResolver(resolver.WithNow(now), resolver.WithLogger(logger.Get().Logger))
	if parseCache != nil {
		defer parseCache.Close()
	}

	pattern := c.format
	if pattern == "" {
		pattern = cfg.Resolver.Format
		if c.clockMode {
			pattern = cfg.Resolver.TimeFormat
		}
	}

	req := resolver.Request{
		Text:        text,
		Pattern:     pattern,
		Locale:      c.root.resolveLocale(c.localeCode),
		Flags:       cfg.Flags(),
		BypassCache: c.noCache,
	}

	var result resolver.Result
	if c.clockMode {
		result = res.ResolveTime(req)
	} else {
		result = res.Resolve(req)
	}

	if !result.OK {
		c.root.record("%s: no match", text)
		return fmt.Errorf("%w: %q", errNoMatch, text)
	}

	c.root.record("%s: %s (%s)", text, result.Formatted, result.Strategy)
	out := cmd.OutOrStdout()
	if c.explain {
		fprintf(out, "%s\t%s\t%s\n", result.Formatted, result.Strategy, result.Strategy.Category())
		return nil
	}
	fprintf(out, "%s\n", result.Formatted)
	return nil
}
