package booking

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/wolfman30/leadflow/internal/leads"
	"github.com/wolfman30/leadflow/internal/messaging/deeplink"
	"github.com/wolfman30/leadflow/internal/messaging/templates"
)

// ErrUnknownSite is returned when a request names a site that is not configured.
var ErrUnknownSite = errors.New("booking: unknown site")

// SiteSpec is the deployment description of one site's booking form.
type SiteSpec struct {
	ID        string
	Name      string
	Variant   leads.Variant
	Header    []string
	LinkStyle deeplink.Style
	Phone     string
}

// Site is a configured deployment with its compiled formatter and link builder.
type Site struct {
	ID        string
	Name      string
	Variant   leads.Variant
	Formatter *templates.Formatter
	Links     *deeplink.Builder
}

// NewSite validates spec and compiles its message pieces.
func NewSite(spec SiteSpec) (*Site, error) {
	id := strings.TrimSpace(spec.ID)
	if id == "" {
		return nil, errors.New("booking: site id required")
	}
	if err := spec.Variant.Validate(); err != nil {
		return nil, fmt.Errorf("booking: site %s: %w", id, err)
	}
	links, err := deeplink.NewBuilder(spec.LinkStyle, spec.Phone)
	if err != nil {
		return nil, fmt.Errorf("booking: site %s: %w", id, err)
	}
	name := spec.Name
	if name == "" {
		name = id
	}
	formatter, err := templates.NewFormatter(name, spec.Variant, spec.Header)
	if err != nil {
		return nil, fmt.Errorf("booking: site %s: %w", id, err)
	}
	return &Site{
		ID:        id,
		Name:      name,
		Variant:   spec.Variant,
		Formatter: formatter,
		Links:     links,
	}, nil
}

// Registry resolves site ids.
type Registry struct {
	sites map[string]*Site
}

// NewRegistry indexes sites by id. Duplicate ids are rejected.
func NewRegistry(sites ...*Site) (*Registry, error) {
	r := &Registry{sites: make(map[string]*Site, len(sites))}
	for _, s := range sites {
		if s == nil {
			continue
		}
		if _, dup := r.sites[s.ID]; dup {
			return nil, fmt.Errorf("booking: duplicate site %s", s.ID)
		}
		r.sites[s.ID] = s
	}
	if len(r.sites) == 0 {
		return nil, errors.New("booking: at least one site required")
	}
	return r, nil
}

func (r *Registry) Lookup(id string) (*Site, error) {
	if s, ok := r.sites[id]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownSite, id)
}

// IDs returns the configured site ids, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.sites))
	for id := range r.sites {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
