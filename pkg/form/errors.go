package form

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrInvalid matches any *ValidationError via errors.Is.
	ErrInvalid = errors.New("form: invalid submission")
	// ErrSubmitting is returned when Submit is called again before the caller
	// re-arms the form with ResetSubmitting.
	ErrSubmitting = errors.New("form: submission already in flight")
	// ErrUnknownField is returned when a control name is not in the schema.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrNotMulti is returned when Toggle targets a field that does not hold
	// a multi-value selection.
	ErrNotMulti = errors.New("form: field is not a multi-value checkbox")
	// ErrUnknownOption is returned when Toggle checks an option the field
	// does not declare.
	ErrUnknownOption = errors.New("form: unknown option")
)

// FieldValidationError reports the constraints a single field violates.
// Rules lists every failing rule in precedence order; Message is the text
// shown to the user (the field's override message when one is declared).
type FieldValidationError struct {
	Field   string   `json:"field"`
	Rules   []string `json:"rules"`
	Message string   `json:"message"`
}

func (e *FieldValidationError) Error() string {
	if e == nil {
		return "form: field invalid"
	}
	return fmt.Sprintf("form: %s: %s", e.Field, e.Message)
}

// Has reports whether rule is among the failing rules.
func (e *FieldValidationError) Has(rule string) bool {
	if e == nil {
		return false
	}
	for _, r := range e.Rules {
		if r == rule {
			return true
		}
	}
	return false
}

// ValidationError aggregates every field error found when a submission is
// refused.
type ValidationError struct {
	Fields []*FieldValidationError `json:"fields"`
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrInvalid.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrInvalid.Error() + ": " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrInvalid) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

// Messages returns the displayed message per field name.
func (e *ValidationError) Messages() map[string]string {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Field] = f.Message
	}
	return out
}

// Payload converts the error into the field -> messages shape used by the
// render error mapping.
func (e *ValidationError) Payload() map[string][]string {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	out := make(map[string][]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Field] = append(out[f.Field], f.Message)
	}
	return out
}

// FieldNames lists the failing field names sorted alphabetically.
func (e *ValidationError) FieldNames() []string {
	if e == nil {
		return nil
	}
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	sort.Strings(names)
	return names
}
