package leads

import "strings"

// Validator decides whether a form can be submitted. Only presence is
// checked; phone and email formats are accepted as typed.
type Validator struct {
	variant Variant
}

// NewValidator builds a validator for the variant's required fields.
func NewValidator(variant Variant) Validator {
	return Validator{variant: variant}
}

// IsSubmittable is true iff every required field is non-blank.
func (v Validator) IsSubmittable(data FormData) bool {
	return len(v.Missing(data)) == 0
}

// Missing lists blank required fields in canonical order.
func (v Validator) Missing(data FormData) []Field {
	var missing []Field
	for _, f := range v.variant.RequiredFields() {
		if strings.TrimSpace(data.Get(f)) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// Check returns a *ValidationError when the form is not submittable.
func (v Validator) Check(data FormData) error {
	if missing := v.Missing(data); len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}
