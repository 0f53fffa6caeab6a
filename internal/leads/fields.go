package leads

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Field identifies one input of the lead capture form.
type Field int

const (
	FieldProgram Field = iota + 1
	FieldAgeGroup
	FieldContactName
	FieldContactPhone
	FieldContactEmail
	FieldDependentName
	FieldDependentAttribute
	FieldMessage
)

// AllFields lists every field in canonical (message) order.
var AllFields = []Field{
	FieldProgram,
	FieldAgeGroup,
	FieldContactName,
	FieldContactPhone,
	FieldContactEmail,
	FieldDependentName,
	FieldDependentAttribute,
	FieldMessage,
}

var fieldNames = map[Field]string{
	FieldProgram:            "program",
	FieldAgeGroup:           "age_group",
	FieldContactName:        "contact_name",
	FieldContactPhone:       "contact_phone",
	FieldContactEmail:       "contact_email",
	FieldDependentName:      "dependent_name",
	FieldDependentAttribute: "dependent_attribute",
	FieldMessage:            "message",
}

// String returns the wire name of the field.
func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// Valid reports whether f belongs to the closed field set.
func (f Field) Valid() bool {
	_, ok := fieldNames[f]
	return ok
}

// ParseField resolves a wire name. Names are matched case-insensitively and
// dashes are accepted in place of underscores.
func ParseField(name string) (Field, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	for f, n := range fieldNames {
		if n == normalized {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// MarshalText implements encoding.TextMarshaler so fields can be map keys.
func (f Field) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownField, int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Field) UnmarshalText(text []byte) error {
	parsed, err := ParseField(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// MarshalJSON encodes the field as its wire name.
func (f Field) MarshalJSON() ([]byte, error) {
	text, err := f.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON decodes a wire name.
func (f *Field) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return f.UnmarshalText([]byte(s))
}

// FieldNames converts fields to their wire names.
func FieldNames(fields []Field) []string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.String())
	}
	return names
}
