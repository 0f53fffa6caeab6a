package leads

import (
	"errors"
	"strings"
)

var (
	// ErrUnknownField is returned for names outside the closed field set
	ErrUnknownField = errors.New("leads: unknown field")

	// ErrFieldDisabled is returned when a variant does not collect the field
	ErrFieldDisabled = errors.New("leads: field not enabled for this form")

	// ErrValidationBlocked is returned when a required field is empty at submit time
	ErrValidationBlocked = errors.New("leads: required fields missing")

	// ErrInvalidName is returned when the contact name is missing
	ErrInvalidName = errors.New("name is required")

	// ErrMissingContact is returned when both email and phone are missing
	ErrMissingContact = errors.New("either email or phone is required")

	// ErrMissingSite is returned when a lead has no site id
	ErrMissingSite = errors.New("site id is required")

	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = errors.New("lead not found")
)

// ValidationError lists the required fields that blocked a submission.
type ValidationError struct {
	Missing []Field
}

func (e *ValidationError) Error() string {
	return ErrValidationBlocked.Error() + ": " + strings.Join(FieldNames(e.Missing), ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationBlocked
}
