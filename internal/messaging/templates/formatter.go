package templates

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/wolfman30/leadflow/internal/leads"
)

// HeaderData is available to header line templates.
type HeaderData struct {
	Site    string
	Program string
	Option  string
}

// Formatter renders a lead form into the WhatsApp message body. Output is a
// pure function of the form, the invocation context and the formatter's
// configuration.
type Formatter struct {
	site     string
	variant  leads.Variant
	header   []*template.Template
	renderer Renderer
}

// NewFormatter compiles the header lines. Headers are rendered once against
// sample data so template mistakes surface at startup.
func NewFormatter(site string, variant leads.Variant, header []string) (*Formatter, error) {
	f := &Formatter{site: site, variant: variant}
	for i, line := range header {
		if line == "" {
			return nil, fmt.Errorf("templates: header line %d is empty", i)
		}
		t, err := f.renderer.Parse(fmt.Sprintf("%s-header-%d", site, i), line)
		if err != nil {
			return nil, err
		}
		if _, err := f.renderer.Execute(t, HeaderData{Site: site, Program: "sample", Option: "sample"}); err != nil {
			return nil, err
		}
		f.header = append(f.header, t)
	}
	return f, nil
}

// Format renders one line per populated field in canonical order. Empty
// fields produce no line. The dependent attribute is only meaningful next to
// a dependent name and is skipped without one.
func (f *Formatter) Format(data leads.FormData, ctx leads.InvocationContext) (string, error) {
	lines := make([]string, 0, len(f.header)+len(leads.AllFields))

	hd := HeaderData{Site: f.site, Program: data.Program, Option: ctx.Option}
	for _, t := range f.header {
		line, err := f.renderer.Execute(t, hd)
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
	}

	for _, field := range f.variant.EnabledFields() {
		value := strings.TrimSpace(data.Get(field))
		if value == "" {
			continue
		}
		if field == leads.FieldDependentAttribute && strings.TrimSpace(data.DependentName) == "" {
			continue
		}
		if field == leads.FieldProgram && f.variant.ShowOption {
			if option := strings.TrimSpace(ctx.Option); option != "" {
				value = value + " (" + option + ")"
			}
		}
		lines = append(lines, fmt.Sprintf("*%s:* %s", f.variant.Label(field), value))
	}

	return strings.Join(lines, "\n"), nil
}
