package leads

import (
	"time"
)

// FormData holds the current values of one lead capture form.
type FormData struct {
	Program            string `json:"program" yaml:"program"`
	AgeGroup           string `json:"age_group" yaml:"age_group"`
	ContactName        string `json:"contact_name" yaml:"contact_name"`
	ContactPhone       string `json:"contact_phone" yaml:"contact_phone"`
	ContactEmail       string `json:"contact_email" yaml:"contact_email"`
	DependentName      string `json:"dependent_name" yaml:"dependent_name"`
	DependentAttribute string `json:"dependent_attribute" yaml:"dependent_attribute"`
	Message            string `json:"message" yaml:"message"`
}

// Get returns the value stored for field.
func (d FormData) Get(field Field) string {
	switch field {
	case FieldProgram:
		return d.Program
	case FieldAgeGroup:
		return d.AgeGroup
	case FieldContactName:
		return d.ContactName
	case FieldContactPhone:
		return d.ContactPhone
	case FieldContactEmail:
		return d.ContactEmail
	case FieldDependentName:
		return d.DependentName
	case FieldDependentAttribute:
		return d.DependentAttribute
	case FieldMessage:
		return d.Message
	default:
		return ""
	}
}

// With returns a copy of d with exactly one field replaced.
func (d FormData) With(field Field, value string) (FormData, error) {
	switch field {
	case FieldProgram:
		d.Program = value
	case FieldAgeGroup:
		d.AgeGroup = value
	case FieldContactName:
		d.ContactName = value
	case FieldContactPhone:
		d.ContactPhone = value
	case FieldContactEmail:
		d.ContactEmail = value
	case FieldDependentName:
		d.DependentName = value
	case FieldDependentAttribute:
		d.DependentAttribute = value
	case FieldMessage:
		d.Message = value
	default:
		return d, ErrUnknownField
	}
	return d, nil
}

// InvocationContext is supplied by the page element that opens the booking
// flow (hero button, program card, membership tab).
type InvocationContext struct {
	Program string `json:"program,omitempty"`
	Option  string `json:"option,omitempty"`
}

// Lead is the persisted snapshot of a successful submission.
type Lead struct {
	ID        string    `json:"id"`
	SiteID    string    `json:"site_id"`
	SessionID string    `json:"session_id,omitempty"`
	Form      FormData  `json:"form"`
	Option    string    `json:"option,omitempty"`
	DeepLink  string    `json:"deep_link"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateLeadRequest carries a submission into a Repository.
type CreateLeadRequest struct {
	SiteID    string
	SessionID string
	Form      FormData
	Option    string
	DeepLink  string
}

// Validate checks the request carries the identifiers every stored lead needs.
// Form contents were already validated against the site variant.
func (r *CreateLeadRequest) Validate() error {
	if r.SiteID == "" {
		return ErrMissingSite
	}
	if r.Form.ContactName == "" {
		return ErrInvalidName
	}
	if r.Form.ContactPhone == "" && r.Form.ContactEmail == "" {
		return ErrMissingContact
	}
	return nil
}
