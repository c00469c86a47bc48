// Package tmpl provides template rendering utilities for user-configurable
// bot messages.
package tmpl

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// truncate shortens s to at most n runes, appending an ellipsis when cut.
func truncate(n int, s string) string {
	runes := []rune(s)
	if n <= 0 || len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}

var funcs = template.FuncMap{
	"upper":    strings.ToUpper,
	"lower":    strings.ToLower,
	"trim":     strings.TrimSpace,
	"join":     strings.Join,
	"truncate": truncate,
}

// Template is a parsed message template.
type Template struct {
	src string
	t   *template.Template
}

// Parse compiles a template string. Unknown keys are an execution error.
func Parse(name, src string) (*Template, error) {
	t, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	return &Template{src: src, t: t}, nil
}

// MustParse is like Parse but panics on error. Use only for built-in templates.
func MustParse(name, src string) *Template {
	t, err := Parse(name, src)
	if err != nil {
		panic(err)
	}
	return t
}

// Source returns the template text.
func (t *Template) Source() string {
	return t.src
}

// Execute renders the template with data.
func (t *Template) Execute(data any) (string, error) {
	var buf bytes.Buffer
	if err := t.t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return buf.String(), nil
}

// Render executes a Go template string with the given data.
// Returns an error if the template is invalid or references undefined keys.
//
// Available template functions:
//   - upper, lower, trim: string case and whitespace helpers
//   - join: Join string slice with separator (e.g., join .Tags ", ")
//   - truncate: Shorten to n runes (e.g., truncate 20 .Description)
func Render(src string, data any) (string, error) {
	t, err := Parse("", src)
	if err != nil {
		return "", err
	}
	return t.Execute(data)
}
