package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nowwaveradio/smartdate/internal/logger"
	"github.com/nowwaveradio/smartdate/internal/predict"
	"github.com/nowwaveradio/smartdate/internal/resolver"
	"github.com/nowwaveradio/smartdate/internal/template"
)

type predictCmd struct {
	root *rootCommand

	format      string
	localeCode  string
	now         string
	progressive bool
	template    string
}

func newPredictCommand(root *rootCommand) *cobra.Command {
	c := &predictCmd{root: root}

	cmd := &cobra.Command{
		Use:   "predict TEXT...",
		Short: "Preview what typed text would resolve to",
		Long: `Preview what typed text would resolve to, with a relative description
and a confidence score based on the shape of the input.`,
		Example: `
  smartdate predict 0704
  smartdate predict --locale zh-CN 明天

  # Show the preview after every keystroke
  smartdate predict --progressive "next fri"

  # Render through an output template
  smartdate predict --template markdown --progressive tmrw`[1:],
		Args: cobra.MinimumNArgs(1),
		RunE: c.run,
	}

	flags := cmd.Flags()
	flags.StringVarP(&c.format, "format", "f", "", "output pattern (default from config)")
	flags.StringVarP(&c.localeCode, "locale", "l", "", "locale (default from config)")
	flags.StringVar(&c.now, "now", "", "anchor date for relative input, e.g. 2024-03-10")
	flags.BoolVar(&c.progressive, "progressive", false, "predict every prefix of TEXT, as if typed")
	flags.StringVar(&c.template, "template", "", "render through a named output template, e.g. tsv or markdown (default from config)")
	return cmd
}

func (c *predictCmd) run(cmd *cobra.Command, args []string) error {
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

	engine := predict.New(res, predict.WithFlags(cfg.Flags()))
	rec := c.root.resolveLocale(c.localeCode)
	pattern := c.format
	if pattern == "" {
		pattern = cfg.Resolver.Format
	}

	inputs := []string{text}
	if c.progressive {
		inputs = prefixes(text)
	}

	name := c.template
	if name == "" {
		name = cfg.Output.Template
	}
	var tmpl *template.Engine
	if name != "" {
		if tmpl, err = cfg.Templates(); err != nil {
			return err
		}
		if !tmpl.Has(name) {
			return fmt.Errorf("unknown output template %q (available: %s)", name, strings.Join(tmpl.Names(), ", "))
		}
	}

	out := cmd.OutOrStdout()
	entries := make([]template.Entry, 0, len(inputs))
	for i, input := range inputs {
		p := engine.Predict(input, pattern, rec)
		if p.OK {
			c.root.record("%s: %s (%.2f)", input, p.Formatted, p.Confidence)
		}
		if tmpl != nil {
			entries = append(entries, template.EntryFrom(i+1, input, p))
			continue
		}
		fprintf(out, "%s\n", c.line(input, p))
	}

	if tmpl != nil {
		rendered, err := tmpl.Render(name, template.NewData(rec.Code, res.Now(), entries))
		if err != nil {
			return err
		}
		fprintf(out, "%s", rendered)
	}
	return nil
}

// line renders one prediction, colouring the confidence by band
func (c *predictCmd) line(input string, p predict.Prediction) string {
	if !p.OK {
		return c.root.color(color.FgRed).Sprintf("%-16s ✗ no prediction", input)
	}

	confidence := color.FgRed
	switch {
	case p.Confidence >= 0.9:
		confidence = color.FgGreen
	case p.Confidence >= 0.75:
		confidence = color.FgYellow
	}

	return c.root.color(color.Bold).Sprintf("%-16s", input) + " → " +
		c.root.color(color.FgGreen).Sprint(p.Formatted) + "  " +
		c.root.color(color.FgCyan).Sprint(p.Description) + "  " +
		c.root.color(confidence).Sprintf("%.2f", p.Confidence) + " " +
		c.root.color(color.Faint).Sprintf("(%s)", p.Category)
}

// prefixes returns every rune prefix of text that does not end in a space
func prefixes(text string) []string {
	runes := []rune(text)
	out := make([]string, 0, len(runes))
	for i := 1; i <= len(runes); i++ {
		if runes[i-1] == ' ' {
			continue
		}
		out = append(out, string(runes[:i]))
	}
	return out
}
