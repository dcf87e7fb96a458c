// Package template renders prediction previews through named text/template
// definitions, each made of an optional header, a per-entry line and an optional footer.
package template

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nowwaveradio/smartdate/internal/predict"
)

// Definition is one configured output template
type Definition struct {
	Header string `toml:"header"`
	Line   string `toml:"line"` // required; executed once per entry
	Footer string `toml:"footer"`
	Limit  int    `toml:"limit"` // maximum entries rendered, 0 for no limit
}

// Data is passed to the header and footer sections
type Data struct {
	Locale  string
	Now     time.Time
	Count   int
	Matched int
	Entries []Entry
}

// Entry is passed to the line section
type Entry struct {
	Index       int
	Input       string
	OK          bool
	Date        time.Time
	Formatted   string
	Description string
	Confidence  float64
	Category    string
	Strategy    string
}

// EntryFrom converts a prediction for input into a template entry
func EntryFrom(index int, input string, p predict.Prediction) Entry {
	e := Entry{Index: index, Input: input, OK: p.OK}
	if !p.OK {
		return e
	}
	e.Date = p.Date
	e.Formatted = p.Formatted
	e.Description = p.Description
	e.Confidence = p.Confidence
	e.Category = p.Category
	e.Strategy = p.Strategy.String()
	return e
}

// NewData collects entries and counts how many resolved
func NewData(localeCode string, now time.Time, entries []Entry) Data {
	d := Data{Locale: localeCode, Now: now, Count: len(entries), Entries: entries}
	for _, e := range entries {
		if e.OK {
			d.Matched++
		}
	}
	return d
}

// Builtin templates are always available; configured definitions with the same name replace them
var Builtin = map[string]Definition{
	"tsv": {
		Line: "{{.Input}}\t{{if .OK}}{{.Formatted}}\t{{.Description}}\t{{printf \"%.2f\" .Confidence}}\t{{.Category}}{{else}}-{{end}}\n",
	},
	"markdown": {
		Header: "| Input | Date | Description | Confidence |\n|---|---|---|---|\n",
		Line:   "| `{{.Input}}` | {{if .OK}}{{.Formatted}} | {{.Description}} | {{percent .Confidence}}{{else}}no match | | {{end}} |\n",
		Footer: "\n{{.Matched}} of {{.Count}} resolved\n",
	},
}

// Engine holds the parsed templates by name
type Engine struct {
	templates   map[string]*template.Template
	definitions map[string]Definition
}

// New parses the builtin templates plus defs
func New(defs map[string]Definition) (*Engine, error) {
	e := &Engine{
		templates:   make(map[string]*template.Template),
		definitions: make(map[string]Definition),
	}

	for name, def := range Builtin {
		if err := e.load(name, def); err != nil {
			return nil, fmt.Errorf("loading template %s: %w", name, err)
		}
	}
	for name, def := range defs {
		if err := e.load(name, def); err != nil {
			return nil, fmt.Errorf("loading template %s: %w", name, err)
		}
	}
	return e, nil
}

func funcMap() template.FuncMap {
	title := cases.Title(language.Und)
	return template.FuncMap{
		"repeat": strings.Repeat,
		"upper":  strings.ToUpper,
		"lower":  strings.ToLower,
		"title":  title.String,
		"truncate": func(s string, n int) string {
			runes := []rune(s)
			if len(runes) <= n {
				return s
			}
			return string(runes[:n]) + "..."
		},
		"pad": func(s string, n int) string {
			return fmt.Sprintf("%-*s", n, s)
		},
		"percent": func(f float64) string {
			return fmt.Sprintf("%.0f%%", f*100)
		},
		"date": func(layout string, t time.Time) string {
			return t.Format(layout)
		},
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
	}
}

// load combines the sections of def into one template with named blocks
func (e *Engine) load(name string, def Definition) error {
	if def.Line == "" {
		return fmt.Errorf("line template is required")
	}
	if def.Limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}

	var text strings.Builder
	if def.Header != "" {
		text.WriteString(`{{define "header"}}` + def.Header + `{{end}}`)
	}
	text.WriteString(`{{define "line"}}` + def.Line + `{{end}}`)
	if def.Footer != "" {
		text.WriteString(`{{define "footer"}}` + def.Footer + `{{end}}`)
	}

	tmpl, err := template.New(name).Funcs(funcMap()).Option("missingkey=error").Parse(text.String())
	if err != nil {
		return fmt.Errorf("parsing template: %w", err)
	}

	e.templates[name] = tmpl
	e.definitions[name] = def
	return nil
}

// Render executes the named template over data. With a limit, entries past it
// are summarized in a single "... and N more" line before the footer.
func (e *Engine) Render(name string, data Data) (string, error) {
	tmpl, ok := e.templates[name]
	if !ok {
		return "", fmt.Errorf("template %s not found", name)
	}
	def := e.definitions[name]

	var out bytes.Buffer
	if tmpl.Lookup("header") != nil {
		if err := tmpl.ExecuteTemplate(&out, "header", data); err != nil {
			return "", fmt.Errorf("executing header template: %w", err)
		}
	}

	entries := data.Entries
	skipped := 0
	if def.Limit > 0 && len(entries) > def.Limit {
		skipped = len(entries) - def.Limit
		entries = entries[:def.Limit]
	}
	for _, entry := range entries {
		if err := tmpl.ExecuteTemplate(&out, "line", entry); err != nil {
			return "", fmt.Errorf("executing line template: %w", err)
		}
	}
	if skipped > 0 {
		fmt.Fprintf(&out, "... and %d more\n", skipped)
	}

	if tmpl.Lookup("footer") != nil {
		if err := tmpl.ExecuteTemplate(&out, "footer", data); err != nil {
			return "", fmt.Errorf("executing footer template: %w", err)
		}
	}
	return out.String(), nil
}

// Validate executes the named template against sample data
func (e *Engine) Validate(name string) error {
	sample := NewData("en-US", time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC), []Entry{
		{
			Index:       1,
			Input:       "tmrw",
			OK:          true,
			Date:        time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC),
			Formatted:   "2024-03-06",
			Description: "Tomorrow",
			Confidence:  1,
			Category:    "shortcut",
			Strategy:    "shortcut",
		},
		{Index: 2, Input: "xyzzy"},
	})
	_, err := e.Render(name, sample)
	return err
}

// Names returns every template name in sorted order
func (e *Engine) Names() []string {
	names := make([]string, 0, len(e.templates))
	for name := range e.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a template with the given name exists
func (e *Engine) Has(name string) bool {
	_, ok := e.templates[name]
	return ok
}
