package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wolfman30/leadflow/internal/booking"
	"github.com/wolfman30/leadflow/internal/leads"
	"github.com/wolfman30/leadflow/internal/messaging/deeplink"
)

// SitesFile is the YAML document listing every deployed booking form.
type SitesFile struct {
	Sites []SiteConfig `yaml:"sites"`
}

// SiteConfig describes one site's form. Field names use the wire names
// (program, age_group, contact_name, ...).
type SiteConfig struct {
	ID        string              `yaml:"id"`
	Name      string              `yaml:"name"`
	Phone     string              `yaml:"phone"`
	LinkStyle string              `yaml:"link_style"`
	Header    []string            `yaml:"header"`
	Enabled   []string            `yaml:"enabled"`
	Required  []string            `yaml:"required"`
	Defaults  map[string]string   `yaml:"defaults"`
	Options   map[string][]string `yaml:"options"`
	Labels    map[string]string   `yaml:"labels"`
	// ShowOption adds the chosen plan after the program in the message.
	ShowOption bool `yaml:"show_option"`
}

// LoadSites reads path when set and falls back to the built-in sites.
func LoadSites(path string) ([]SiteConfig, error) {
	if path == "" {
		return DefaultSites(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read sites file: %w", err)
	}
	return ParseSites(data)
}

// ParseSites decodes a sites document.
func ParseSites(data []byte) ([]SiteConfig, error) {
	var doc SitesFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parse sites: %w", err)
	}
	if len(doc.Sites) == 0 {
		return nil, errors.New("config: sites file lists no sites")
	}
	return doc.Sites, nil
}

// Spec converts the YAML description into a booking site definition.
func (s SiteConfig) Spec() (booking.SiteSpec, error) {
	style, err := deeplink.ParseStyle(s.LinkStyle)
	if err != nil {
		return booking.SiteSpec{}, fmt.Errorf("config: site %s: %w", s.ID, err)
	}
	variant, err := s.variant()
	if err != nil {
		return booking.SiteSpec{}, fmt.Errorf("config: site %s: %w", s.ID, err)
	}
	return booking.SiteSpec{
		ID:        s.ID,
		Name:      s.Name,
		Variant:   variant,
		Header:    s.Header,
		LinkStyle: style,
		Phone:     s.Phone,
	}, nil
}

// BuildRegistry compiles every site.
func BuildRegistry(sites []SiteConfig) (*booking.Registry, error) {
	built := make([]*booking.Site, 0, len(sites))
	for _, sc := range sites {
		spec, err := sc.Spec()
		if err != nil {
			return nil, err
		}
		site, err := booking.NewSite(spec)
		if err != nil {
			return nil, err
		}
		built = append(built, site)
	}
	return booking.NewRegistry(built...)
}

func (s SiteConfig) variant() (leads.Variant, error) {
	v := leads.Variant{ShowOption: s.ShowOption}
	var err error
	if v.Enabled, err = parseFields(s.Enabled); err != nil {
		return v, err
	}
	if v.Required, err = parseFields(s.Required); err != nil {
		return v, err
	}
	for name, value := range s.Defaults {
		f, err := leads.ParseField(name)
		if err != nil {
			return v, err
		}
		if v.Defaults, err = v.Defaults.With(f, value); err != nil {
			return v, err
		}
	}
	if len(s.Options) > 0 {
		v.Options = make(map[leads.Field][]string, len(s.Options))
		for name, opts := range s.Options {
			f, err := leads.ParseField(name)
			if err != nil {
				return v, err
			}
			v.Options[f] = opts
		}
	}
	if len(s.Labels) > 0 {
		v.Labels = make(map[leads.Field]string, len(s.Labels))
		for name, label := range s.Labels {
			f, err := leads.ParseField(name)
			if err != nil {
				return v, err
			}
			v.Labels[f] = label
		}
	}
	return v, nil
}

func parseFields(names []string) ([]leads.Field, error) {
	if len(names) == 0 {
		return nil, nil
	}
	out := make([]leads.Field, 0, len(names))
	for _, name := range names {
		f, err := leads.ParseField(name)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

var (
	swimPrograms = []string{
		"Elite Training", "Aqua Fitness", "Learn to Swim",
		"Therapeutic", "Personal Training", "Infants Training",
	}
	swimAgeGroups = []string{
		"Kids (4 to 14 years)", "Teens (15 to 18 years)", "Adults (19+ years)", "Seniors (60+ years)",
	}
	swimRequired = []string{"program", "age_group", "contact_name", "contact_phone", "contact_email"}
	swimDefaults = map[string]string{"age_group": "Kids (4 to 14 years)", "dependent_attribute": "Male"}
)

func swimOptions() map[string][]string {
	return map[string][]string{
		"program":             swimPrograms,
		"age_group":           swimAgeGroups,
		"dependent_attribute": {"Male", "Female"},
	}
}

// DefaultSites returns the built-in deployments: the swim booking modal, the
// swim membership/programs consultation form and the contracting enquiry form.
func DefaultSites() []SiteConfig {
	return []SiteConfig{
		{
			ID:        "swim",
			Name:      "Swim Session",
			Phone:     "919008838001",
			LinkStyle: "api",
			Header:    []string{"*New Swim Session Booking*", "--------------------------"},
			Required:  swimRequired,
			Defaults:  swimDefaults,
			Options:   swimOptions(),
		},
		{
			ID:         "swim-membership",
			Name:       "Swim Membership",
			Phone:      "919008838001",
			LinkStyle:  "wa.me",
			Header:     []string{"*New Swimming Consultation Request*", "-----------------------------------"},
			Required:   swimRequired,
			Defaults:   swimDefaults,
			Options:    swimOptions(),
			ShowOption: true,
			Labels: map[string]string{
				"contact_name":        "Name",
				"dependent_name":      "Child Name",
				"dependent_attribute": "Gender",
				"message":             "Message",
			},
		},
		// placeholder phone and header, overridden per deployment via SITES_FILE
		{
			ID:        "contracting",
			Name:      "Contracting Services",
			Phone:     "919008894001",
			LinkStyle: "wa.me",
			Header:    []string{"*New Service Enquiry*", "---------------------"},
			Enabled:   []string{"program", "contact_name", "contact_phone", "contact_email", "message"},
			Required:  []string{"program", "contact_name", "contact_phone"},
			Options: map[string][]string{
				"program": {
					"Technical Services", "Electromechanical Works", "Scaffolding & Formwork",
					"Air-Conditioning", "Plumbing Services", "Carpentry & Flooring",
				},
			},
			Labels: map[string]string{"program": "Service", "contact_name": "Name"},
		},
	}
}
