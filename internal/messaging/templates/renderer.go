package templates

import (
	"bytes"
	"fmt"
	"text/template"
)

// Renderer renders small text templates for outbound messages.
type Renderer struct{}

// Parse compiles template text with strict missing-key semantics.
func (Renderer) Parse(name, tmpl string) (*template.Template, error) {
	if tmpl == "" {
		return nil, fmt.Errorf("templates: template text required")
	}
	t, err := template.New(name).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("templates: parse: %w", err)
	}
	return t, nil
}

// Execute runs a compiled template against data.
func (Renderer) Execute(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("templates: execute: %w", err)
	}
	return buf.String(), nil
}

// Render parses and executes the provided template text in one step.
func (r Renderer) Render(name, tmpl string, data any) (string, error) {
	t, err := r.Parse(name, tmpl)
	if err != nil {
		return "", err
	}
	return r.Execute(t, data)
}
