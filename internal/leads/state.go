package leads

import "fmt"

// FieldState holds the live form values of one open booking flow.
// It is not safe for concurrent use; the owning flow serializes access.
type FieldState struct {
	variant Variant
	data    FormData
}

// NewFieldState returns a state initialized to the variant defaults.
func NewFieldState(variant Variant) *FieldState {
	s := &FieldState{variant: variant}
	s.Reset()
	return s
}

// Initialize replaces the whole state with the variant defaults and applies
// the invocation context. A non-empty program always overwrites.
func (s *FieldState) Initialize(ctx *InvocationContext) {
	s.data = s.variant.Defaults
	if ctx != nil && ctx.Program != "" && s.variant.IsEnabled(FieldProgram) {
		s.data.Program = ctx.Program
	}
}

// Set replaces exactly one field. No validation happens here.
func (s *FieldState) Set(field Field, value string) error {
	if !field.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownField, int(field))
	}
	if !s.variant.IsEnabled(field) {
		return fmt.Errorf("%w: %s", ErrFieldDisabled, field)
	}
	next, err := s.data.With(field, value)
	if err != nil {
		return err
	}
	s.data = next
	return nil
}

// Reset returns every field to the variant defaults.
func (s *FieldState) Reset() {
	s.Initialize(nil)
}

// Snapshot returns a copy of the current values.
func (s *FieldState) Snapshot() FormData {
	return s.data
}

// Restore replaces the current values, used when a flow is rehydrated from
// a stored session.
func (s *FieldState) Restore(data FormData) {
	s.data = data
}
