package booking

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/leadflow/internal/leads"
	"github.com/wolfman30/leadflow/pkg/logging"
)

//go:embed templates/*.html
var pageFS embed.FS

var pageTemplate = template.Must(template.ParseFS(pageFS, "templates/booking.html"))

// Page serves the server-rendered booking form for visitors without script.
type Page struct {
	service *Service
	logger  *logging.Logger
}

func NewPage(service *Service, logger *logging.Logger) *Page {
	if logger == nil {
		logger = logging.Default()
	}
	return &Page{service: service, logger: logger}
}

type pageField struct {
	Name      string
	Label     string
	Value     string
	InputType string
	Required  bool
	Missing   bool
	Options   []string
}

type pageData struct {
	SiteName   string
	Action     string
	Option     string
	ContactURL string
	Blocked    bool
	Fields     []pageField
}

// Show handles GET /sites/{siteID}/book requests. The program and option
// query parameters play the role of the invocation context.
func (p *Page) Show(w http.ResponseWriter, r *http.Request) {
	site, err := p.service.Site(chi.URLParam(r, "siteID"))
	if err != nil {
		http.Error(w, "site not found", http.StatusNotFound)
		return
	}
	inv := &leads.InvocationContext{
		Program: r.URL.Query().Get("program"),
		Option:  r.URL.Query().Get("option"),
	}
	state := leads.NewFieldState(site.Variant)
	state.Initialize(inv)
	p.render(w, http.StatusOK, site, r.URL.Path, inv.Option, state.Snapshot(), nil)
}

// Submit handles POST /sites/{siteID}/book requests. A complete form is
// answered with a redirect to the deep link; an incomplete one re-renders
// with the entered values and the missing fields flagged.
func (p *Page) Submit(w http.ResponseWriter, r *http.Request) {
	site, err := p.service.Site(chi.URLParam(r, "siteID"))
	if err != nil {
		http.Error(w, "site not found", http.StatusNotFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	values := make(map[leads.Field]string)
	for _, f := range site.Variant.EnabledFields() {
		if _, ok := r.PostForm[f.String()]; ok {
			values[f] = r.PostForm.Get(f.String())
		}
	}
	inv := &leads.InvocationContext{Option: r.PostForm.Get("option")}

	sub, err := p.service.SubmitForm(r.Context(), site.ID, inv, values)
	if err == nil {
		http.Redirect(w, r, sub.URL, http.StatusSeeOther)
		return
	}

	var verr *leads.ValidationError
	if !errors.As(err, &verr) {
		p.logger.Error("booking form submit failed", "site_id", site.ID, "error", err)
		http.Error(w, "failed to submit booking", http.StatusInternalServerError)
		return
	}

	state := leads.NewFieldState(site.Variant)
	state.Initialize(nil)
	for f, v := range values {
		_ = state.Set(f, v)
	}
	p.render(w, http.StatusUnprocessableEntity, site, r.URL.Path, inv.Option, state.Snapshot(), verr.Missing)
}

func (p *Page) render(w http.ResponseWriter, status int, site *Site, action, option string, data leads.FormData, missing []leads.Field) {
	page := pageData{
		SiteName:   site.Name,
		Action:     action,
		Option:     option,
		ContactURL: site.Links.ContactLink(),
		Blocked:    len(missing) > 0,
	}
	flagged := make(map[leads.Field]bool, len(missing))
	for _, f := range missing {
		flagged[f] = true
	}
	for _, f := range site.Variant.EnabledFields() {
		value := data.Get(f)
		page.Fields = append(page.Fields, pageField{
			Name:      f.String(),
			Label:     site.Variant.Label(f),
			Value:     value,
			InputType: inputType(f),
			Required:  site.Variant.IsRequired(f),
			Missing:   flagged[f],
			Options:   withCurrent(site.Variant.OptionsFor(f), value),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, page); err != nil {
		p.logger.Error("failed to render booking page", "site_id", site.ID, "error", err)
	}
}

func inputType(f leads.Field) string {
	switch f {
	case leads.FieldContactEmail:
		return "email"
	case leads.FieldContactPhone:
		return "tel"
	case leads.FieldMessage:
		return "textarea"
	default:
		return "text"
	}
}

// withCurrent keeps a prefilled value selectable when it is not one of the
// configured choices.
func withCurrent(options []string, value string) []string {
	if len(options) == 0 || value == "" {
		return options
	}
	for _, o := range options {
		if o == value {
			return options
		}
	}
	return append([]string{value}, options...)
}
