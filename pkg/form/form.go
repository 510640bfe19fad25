package form

import (
	"fmt"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// State is the lifecycle position of a form instance.
type State int

const (
	// StatePristine means no control has received input yet.
	StatePristine State = iota
	// StateDirty means at least one control changed, or a submit attempt was
	// refused.
	StateDirty
	// StateSubmitted means the last Submit emitted a record and the form is
	// waiting for ResetSubmitting.
	StateSubmitted
)

func (s State) String() string {
	switch s {
	case StatePristine:
		return "pristine"
	case StateDirty:
		return "dirty"
	case StateSubmitted:
		return "submitted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Control is the runtime counterpart of one field descriptor.
type Control struct {
	field   schema.Field
	rules   ruleSet
	value   any
	touched bool
	dirty   bool
	err     *FieldValidationError
}

// Name returns the field name the control writes to.
func (c *Control) Name() string { return c.field.Name }

// Field returns the descriptor backing the control.
func (c *Control) Field() schema.Field { return c.field }

// Value returns a copy of the current value.
func (c *Control) Value() any { return CloneValue(c.value) }

// Valid reports whether the current value satisfies every declared rule.
func (c *Control) Valid() bool { return c.err == nil }

// Error returns the current validation failure, or nil.
func (c *Control) Error() *FieldValidationError { return c.err }

// Touched reports whether the control was visited or a submit was attempted.
func (c *Control) Touched() bool { return c.touched }

// Dirty reports whether the control value was changed by input.
func (c *Control) Dirty() bool { return c.dirty }

// VisibleError returns the message to display, which is empty until the
// control is touched or dirty.
func (c *Control) VisibleError() string {
	if c.err == nil || (!c.touched && !c.dirty) {
		return ""
	}
	return c.err.Message
}

func (c *Control) set(value any) {
	c.value = value
	c.err = c.rules.validate(value)
}

// Form is a single editing session over a schema. It is not safe for
// concurrent use; each user session owns its own instance.
type Form struct {
	controls   []*Control
	index      map[string]*Control
	submitting bool
}

// New builds a form for s seeded with initial values. The schema is validated
// first and sorted by Order; keys in initial that match no field are ignored.
func New(s schema.Schema, initial map[string]any) (*Form, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	sorted := s.Sorted()
	f := &Form{
		controls: make([]*Control, 0, len(sorted)),
		index:    make(map[string]*Control, len(sorted)),
	}
	for _, field := range sorted {
		rules, err := compileRules(field)
		if err != nil {
			return nil, err
		}
		ctrl := &Control{field: field, rules: rules}
		if raw, ok := initial[field.Name]; ok {
			ctrl.set(Coerce(field, CloneValue(raw)))
		} else {
			ctrl.set(DefaultValue(field))
		}
		f.controls = append(f.controls, ctrl)
		f.index[field.Name] = ctrl
	}
	return f, nil
}

// Controls returns the controls in rendering order.
func (f *Form) Controls() []*Control {
	return append([]*Control(nil), f.controls...)
}

// Control looks up a control by field name.
func (f *Form) Control(name string) (*Control, bool) {
	c, ok := f.index[name]
	return c, ok
}

// SetValue replaces the value of one control and marks it dirty.
func (f *Form) SetValue(name string, value any) error {
	c, ok := f.index[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	c.dirty = true
	c.set(Coerce(c.field, value))
	return nil
}

// Toggle checks or unchecks one option of a multi-value checkbox. Checked
// options accumulate in the order they were checked; unchecking removes that
// option wherever it sits.
func (f *Form) Toggle(name, option string, checked bool) error {
	c, ok := f.index[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	if !c.field.IsMulti() {
		return fmt.Errorf("%w: %s", ErrNotMulti, name)
	}

	current, _ := c.value.([]string)
	next := make([]string, 0, len(current)+1)
	present := false
	for _, item := range current {
		if item == option {
			present = true
			if !checked {
				continue
			}
		}
		next = append(next, item)
	}
	if checked && !present {
		if !contains(c.field.Options, option) {
			return fmt.Errorf("%w: %s.%s", ErrUnknownOption, name, option)
		}
		next = append(next, option)
	}

	c.dirty = true
	c.set(next)
	return nil
}

// Touch marks one control as visited.
func (f *Form) Touch(name string) error {
	c, ok := f.index[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	c.touched = true
	return nil
}

// TouchAll marks every control as visited so latent errors become visible.
func (f *Form) TouchAll() {
	for _, c := range f.controls {
		c.touched = true
	}
}

// Valid is the conjunction of every control's validity.
func (f *Form) Valid() bool {
	for _, c := range f.controls {
		if !c.Valid() {
			return false
		}
	}
	return true
}

// FieldErrors returns the failing controls' errors in rendering order,
// regardless of touched state.
func (f *Form) FieldErrors() []*FieldValidationError {
	var out []*FieldValidationError
	for _, c := range f.controls {
		if c.err != nil {
			out = append(out, c.err)
		}
	}
	return out
}

// Errors maps field names to their current message, regardless of touched
// state.
func (f *Form) Errors() map[string]string {
	out := make(map[string]string)
	for _, c := range f.controls {
		if c.err != nil {
			out[c.field.Name] = c.err.Message
		}
	}
	return out
}

// Value returns the flat fieldName -> value record.
func (f *Form) Value() map[string]any {
	out := make(map[string]any, len(f.controls))
	for _, c := range f.controls {
		out[c.field.Name] = CloneValue(c.value)
	}
	return out
}

// Submit emits the record when the form is valid. An invalid form touches
// every control and returns a *ValidationError; the form stays editable.
func (f *Form) Submit() (map[string]any, error) {
	if f.submitting {
		return nil, ErrSubmitting
	}
	if !f.Valid() {
		f.TouchAll()
		return nil, &ValidationError{Fields: f.FieldErrors()}
	}
	f.submitting = true
	return f.Value(), nil
}

// Submitting reports whether a submitted record is awaiting its outcome.
func (f *Form) Submitting() bool { return f.submitting }

// ResetSubmitting re-arms the form after a failed remote submission.
func (f *Form) ResetSubmitting() { f.submitting = false }

// State derives the lifecycle state from the controls and submit flag.
func (f *Form) State() State {
	if f.submitting {
		return StateSubmitted
	}
	for _, c := range f.controls {
		if c.dirty || c.touched {
			return StateDirty
		}
	}
	return StatePristine
}

// Validate checks a record against s the same way an interactive session
// would and returns the normalized record (schema keys only, coerced values).
func Validate(s schema.Schema, record map[string]any) (map[string]any, error) {
	f, err := New(s, record)
	if err != nil {
		return nil, err
	}
	return f.Submit()
}

func contains(items []string, value string) bool {
	for _, item := range items {
		if item == value {
			return true
		}
	}
	return false
}
