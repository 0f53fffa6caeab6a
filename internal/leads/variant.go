package leads

import (
	"fmt"
)

// DefaultLabels are the message labels used when a variant does not override them.
var DefaultLabels = map[Field]string{
	FieldProgram:            "Program",
	FieldAgeGroup:           "Age Group",
	FieldContactName:        "Parent/Guardian",
	FieldContactPhone:       "Phone",
	FieldContactEmail:       "Email",
	FieldDependentName:      "Child's Name",
	FieldDependentAttribute: "Child's Gender",
	FieldMessage:            "Additional Message",
}

// Variant is the per-deployment shape of the form: which fields exist, which
// are required, their defaults, enumerated choices and message labels.
type Variant struct {
	Enabled  []Field
	Required []Field
	Defaults FormData
	Options  map[Field][]string
	Labels   map[Field]string
	// ShowOption appends the invocation option to the program line.
	ShowOption bool
}

// IsEnabled reports whether the variant collects f. An empty Enabled list
// enables every field.
func (v Variant) IsEnabled(f Field) bool {
	if len(v.Enabled) == 0 {
		return f.Valid()
	}
	return containsField(v.Enabled, f)
}

// IsRequired reports whether f must be non-empty at submit time.
func (v Variant) IsRequired(f Field) bool {
	return v.IsEnabled(f) && containsField(v.Required, f)
}

// EnabledFields returns the enabled fields in canonical order.
func (v Variant) EnabledFields() []Field {
	out := make([]Field, 0, len(AllFields))
	for _, f := range AllFields {
		if v.IsEnabled(f) {
			out = append(out, f)
		}
	}
	return out
}

// RequiredFields returns the required fields in canonical order.
func (v Variant) RequiredFields() []Field {
	out := make([]Field, 0, len(v.Required))
	for _, f := range AllFields {
		if v.IsRequired(f) {
			out = append(out, f)
		}
	}
	return out
}

// Label returns the message label for f.
func (v Variant) Label(f Field) string {
	if label, ok := v.Labels[f]; ok && label != "" {
		return label
	}
	return DefaultLabels[f]
}

// OptionsFor returns the enumerated choices for f, if any.
func (v Variant) OptionsFor(f Field) []string {
	return v.Options[f]
}

// Validate checks the variant is internally consistent.
func (v Variant) Validate() error {
	for _, f := range v.Enabled {
		if !f.Valid() {
			return fmt.Errorf("leads: variant enables %w", ErrUnknownField)
		}
	}
	for _, f := range v.Required {
		if !f.Valid() {
			return fmt.Errorf("leads: variant requires %w", ErrUnknownField)
		}
		if !v.IsEnabled(f) {
			return fmt.Errorf("leads: required field %s is not enabled", f)
		}
	}
	for _, f := range AllFields {
		if v.Defaults.Get(f) != "" && !v.IsEnabled(f) {
			return fmt.Errorf("leads: default for disabled field %s", f)
		}
	}
	for f := range v.Options {
		if !v.IsEnabled(f) {
			return fmt.Errorf("leads: options for disabled field %s", f)
		}
	}
	return nil
}

func containsField(fields []Field, f Field) bool {
	for _, candidate := range fields {
		if candidate == f {
			return true
		}
	}
	return false
}
