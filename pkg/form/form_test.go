package form_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/form"
	"github.com/goliatone/go-formflow/pkg/schema"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func mustForm(t *testing.T, s schema.Schema, initial map[string]any) *form.Form {
	t.Helper()
	f, err := form.New(s, initial)
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	return f
}

func TestNew_DefaultValuesPerType(t *testing.T) {
	s := schema.Schema{
		{Name: "name", Label: "Name", Type: schema.FieldTypeText},
		{Name: "agree", Label: "Agree", Type: schema.FieldTypeCheckbox},
		{Name: "langs", Label: "Languages", Type: schema.FieldTypeCheckbox, Options: []string{"en", "hi"}},
		{Name: "age", Label: "Age", Type: schema.FieldTypeNumber},
		{Name: "state", Label: "State", Type: schema.FieldTypeSelect, Options: []string{"KA", "MH"}},
		{Name: "dob", Label: "DOB", Type: schema.FieldTypeDate},
	}

	got := mustForm(t, s, nil).Value()
	want := map[string]any{
		"name":  "",
		"agree": false,
		"langs": []string{},
		"age":   nil,
		"state": "",
		"dob":   "",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestNew_ControlsFollowOrder(t *testing.T) {
	s := schema.Schema{
		{Name: "c", Label: "C", Type: schema.FieldTypeText, Order: 3},
		{Name: "a", Label: "A", Type: schema.FieldTypeText, Order: 1},
		{Name: "b", Label: "B", Type: schema.FieldTypeText, Order: 1},
	}
	f := mustForm(t, s, nil)

	var names []string
	for _, c := range f.Controls() {
		names = append(names, c.Name())
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, names); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestNew_RejectsInvalidSchema(t *testing.T) {
	_, err := form.New(schema.Schema{{Name: "x", Type: schema.FieldTypeText}}, nil)
	var schemaErr *schema.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *SchemaError, got %v", err)
	}
}

func TestValid_IsConjunctionOfControls(t *testing.T) {
	values := map[string]any{
		"empty": "",
		"in":    "abcd",
		"short": "a",
		"long":  "abcdefghij",
	}

	for _, requiredA := range []bool{false, true} {
		for _, requiredB := range []bool{false, true} {
			for keyA, valA := range values {
				for keyB, valB := range values {
					s := schema.Schema{
						{Name: "a", Label: "A", Type: schema.FieldTypeText, Required: requiredA,
							Validation: &schema.Validation{MinLength: intPtr(2), MaxLength: intPtr(6)}},
						{Name: "b", Label: "B", Type: schema.FieldTypeText, Required: requiredB,
							Validation: &schema.Validation{MinLength: intPtr(2), MaxLength: intPtr(6)}},
					}
					f := mustForm(t, s, map[string]any{"a": valA, "b": valB})

					all := true
					for _, c := range f.Controls() {
						all = all && c.Valid()
					}
					if f.Valid() != all {
						t.Fatalf("a=%s(req %v) b=%s(req %v): form valid %v, controls %v",
							keyA, requiredA, keyB, requiredB, f.Valid(), all)
					}

					want := expectValid(requiredA, keyA) && expectValid(requiredB, keyB)
					if f.Valid() != want {
						t.Fatalf("a=%s(req %v) b=%s(req %v): got valid %v, want %v",
							keyA, requiredA, keyB, requiredB, f.Valid(), want)
					}
				}
			}
		}
	}
}

func expectValid(required bool, key string) bool {
	switch key {
	case "empty":
		return !required
	case "in":
		return true
	default:
		return false
	}
}

func TestToggle_MultiCheckboxRoundTrip(t *testing.T) {
	s := schema.Schema{
		{Name: "docs", Label: "Documents", Type: schema.FieldTypeCheckbox, Options: []string{"B", "C", "A"}},
	}
	f := mustForm(t, s, nil)

	steps := []struct {
		option  string
		checked bool
	}{
		{"A", true},
		{"B", true},
		{"A", false},
	}
	for _, step := range steps {
		if err := f.Toggle("docs", step.option, step.checked); err != nil {
			t.Fatalf("toggle %s: %v", step.option, err)
		}
	}

	if diff := cmp.Diff(map[string]any{"docs": []string{"B"}}, f.Value()); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestToggle_InsertionOrderAndErrors(t *testing.T) {
	s := schema.Schema{
		{Name: "docs", Label: "Documents", Type: schema.FieldTypeCheckbox, Options: []string{"A", "B", "C"}},
		{Name: "agree", Label: "Agree", Type: schema.FieldTypeCheckbox},
	}
	f := mustForm(t, s, nil)

	for _, opt := range []string{"C", "A", "C", "B"} {
		if err := f.Toggle("docs", opt, true); err != nil {
			t.Fatalf("toggle %s: %v", opt, err)
		}
	}
	ctrl, _ := f.Control("docs")
	if diff := cmp.Diff([]string{"C", "A", "B"}, ctrl.Value()); diff != "" {
		t.Fatalf("insertion order mismatch (-want +got):\n%s", diff)
	}

	if err := f.Toggle("docs", "Z", true); !errors.Is(err, form.ErrUnknownOption) {
		t.Fatalf("expected ErrUnknownOption, got %v", err)
	}
	if err := f.Toggle("agree", "A", true); !errors.Is(err, form.ErrNotMulti) {
		t.Fatalf("expected ErrNotMulti, got %v", err)
	}
	if err := f.Toggle("missing", "A", true); !errors.Is(err, form.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestValidate_PatternWithCustomMessage(t *testing.T) {
	s := schema.Schema{
		{Name: "mobile", Label: "Mobile", Type: schema.FieldTypeTel,
			Validation: &schema.Validation{Pattern: "^[0-9]{10}$", Message: "Enter 10 digits"}},
	}
	f := mustForm(t, s, map[string]any{"mobile": "12345"})

	ctrl, _ := f.Control("mobile")
	if ctrl.Valid() {
		t.Fatalf("expected invalid control")
	}
	if got := ctrl.Error().Message; got != "Enter 10 digits" {
		t.Fatalf("message = %q, want %q", got, "Enter 10 digits")
	}

	if err := f.SetValue("mobile", "9876543210"); err != nil {
		t.Fatalf("set value: %v", err)
	}
	if !ctrl.Valid() {
		t.Fatalf("expected valid control, got %v", ctrl.Error())
	}
}

func TestValidate_CustomMessageCoversEveryRule(t *testing.T) {
	s := schema.Schema{
		{Name: "code", Label: "Code", Type: schema.FieldTypeText, Required: true,
			Validation: &schema.Validation{MinLength: intPtr(3), Pattern: "[A-Z]+", Message: "Use capital letters"}},
	}
	f := mustForm(t, s, nil)
	ctrl, _ := f.Control("code")
	if got := ctrl.Error().Message; got != "Use capital letters" {
		t.Fatalf("required message = %q", got)
	}

	_ = f.SetValue("code", "ab")
	want := &form.FieldValidationError{
		Field:   "code",
		Rules:   []string{form.RuleMinLength, form.RulePattern},
		Message: "Use capital letters",
	}
	if diff := cmp.Diff(want, ctrl.Error()); diff != "" {
		t.Fatalf("error mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_EmailWithoutValidationBlock(t *testing.T) {
	s := schema.Schema{{Name: "email", Label: "Email", Type: schema.FieldTypeEmail}}

	f := mustForm(t, s, map[string]any{"email": "not-an-email"})
	ctrl, _ := f.Control("email")
	if ctrl.Valid() {
		t.Fatalf("expected not-an-email to be invalid")
	}
	if !ctrl.Error().Has(form.RuleEmail) {
		t.Fatalf("expected email rule, got %v", ctrl.Error().Rules)
	}

	_ = f.SetValue("email", "citizen@example.gov.in")
	if !ctrl.Valid() {
		t.Fatalf("expected valid email, got %v", ctrl.Error())
	}

	// optional and empty stays valid
	_ = f.SetValue("email", "")
	if !ctrl.Valid() {
		t.Fatalf("expected empty optional email to be valid")
	}
}

func TestValidate_DefaultMessagesFollowPrecedence(t *testing.T) {
	s := schema.Schema{
		{Name: "age", Label: "Age", Type: schema.FieldTypeNumber, Required: true,
			Validation: &schema.Validation{Min: floatPtr(18), Max: floatPtr(60)}},
		{Name: "state", Label: "State", Type: schema.FieldTypeSelect, Options: []string{"KA", "MH"}},
		{Name: "agree", Label: "Consent", Type: schema.FieldTypeCheckbox, Required: true},
	}

	cases := []struct {
		name  string
		field string
		value any
		rules []string
		msg   string
	}{
		{"missing number", "age", nil, []string{form.RuleRequired}, "Age is required"},
		{"below min", "age", 12, []string{form.RuleMin}, "Age must be at least 18"},
		{"above max", "age", "61", []string{form.RuleMax}, "Age must be at most 60"},
		{"not a number", "age", "abc", []string{form.RuleNumber}, "Age must be a number"},
		{"unknown option", "state", "TN", []string{form.RuleOption}, "State must be one of the listed options"},
		{"unchecked consent", "agree", false, []string{form.RuleRequired}, "Consent is required"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := mustForm(t, s, map[string]any{"age": 30, "agree": true})
			if err := f.SetValue(tc.field, tc.value); err != nil {
				t.Fatalf("set value: %v", err)
			}
			ctrl, _ := f.Control(tc.field)
			want := &form.FieldValidationError{Field: tc.field, Rules: tc.rules, Message: tc.msg}
			if diff := cmp.Diff(want, ctrl.Error()); diff != "" {
				t.Fatalf("error mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidate_NonFiniteNumbersAreNotNumbers(t *testing.T) {
	s := schema.Schema{
		{Name: "age", Label: "Age", Type: schema.FieldTypeNumber, Required: true,
			Validation: &schema.Validation{Min: floatPtr(18), Max: floatPtr(99)}},
	}

	for _, value := range []any{"NaN", "nan", "Inf", "-Inf", "+Infinity", math.NaN(), math.Inf(1)} {
		t.Run(fmt.Sprint(value), func(t *testing.T) {
			f := mustForm(t, s, map[string]any{"age": value})
			ctrl, _ := f.Control("age")
			want := &form.FieldValidationError{Field: "age", Rules: []string{form.RuleNumber}, Message: "Age must be a number"}
			if diff := cmp.Diff(want, ctrl.Error()); diff != "" {
				t.Fatalf("error mismatch (-want +got):\n%s", diff)
			}

			record, err := form.Validate(s, map[string]any{"age": value})
			var validationErr *form.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected *ValidationError, got record=%v err=%v", record, err)
			}
		})
	}

	record, err := form.Validate(s, map[string]any{"age": "42"})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if _, err := json.Marshal(record); err != nil {
		t.Fatalf("valid record must encode: %v", err)
	}
}

func TestValidate_PatternOnMultiCheckboxChecksEachSelection(t *testing.T) {
	s := schema.Schema{
		{Name: "docs", Label: "Documents", Type: schema.FieldTypeCheckbox,
			Options:    []string{"Aadhar", "Ration card", "ration slip"},
			Validation: &schema.Validation{Pattern: "[A-Z].*"}},
	}

	f := mustForm(t, s, map[string]any{"docs": []string{"Aadhar", "Ration card"}})
	ctrl, _ := f.Control("docs")
	if !ctrl.Valid() {
		t.Fatalf("expected capitalised selections to match, got %v", ctrl.Error())
	}

	if err := f.Toggle("docs", "ration slip", true); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	want := &form.FieldValidationError{Field: "docs", Rules: []string{form.RulePattern}, Message: "Documents has an invalid format"}
	if diff := cmp.Diff(want, ctrl.Error()); diff != "" {
		t.Fatalf("error mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmit_StateMachine(t *testing.T) {
	s := schema.Schema{{Name: "name", Label: "Name", Type: schema.FieldTypeText, Required: true}}
	f := mustForm(t, s, nil)

	if f.State() != form.StatePristine {
		t.Fatalf("state = %v, want pristine", f.State())
	}
	ctrl, _ := f.Control("name")
	if ctrl.VisibleError() != "" {
		t.Fatalf("pristine control should hide its error")
	}

	_, err := f.Submit()
	var vErr *form.ValidationError
	if !errors.As(err, &vErr) || !errors.Is(err, form.ErrInvalid) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if diff := cmp.Diff(map[string]string{"name": "Name is required"}, vErr.Messages()); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
	if !ctrl.Touched() || ctrl.VisibleError() != "Name is required" {
		t.Fatalf("refused submit should touch controls")
	}
	if f.State() != form.StateDirty || f.Submitting() {
		t.Fatalf("state = %v submitting = %v after refused submit", f.State(), f.Submitting())
	}

	_ = f.SetValue("name", "Asha")
	record, err := f.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"name": "Asha"}, record); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
	if f.State() != form.StateSubmitted {
		t.Fatalf("state = %v, want submitted", f.State())
	}
	if _, err := f.Submit(); !errors.Is(err, form.ErrSubmitting) {
		t.Fatalf("expected ErrSubmitting, got %v", err)
	}

	f.ResetSubmitting()
	if f.State() != form.StateDirty {
		t.Fatalf("state = %v after reset, want dirty", f.State())
	}
	if _, err := f.Submit(); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
}

func TestValidate_NormalizesRecord(t *testing.T) {
	s := schema.Schema{
		{Name: "age", Label: "Age", Type: schema.FieldTypeNumber},
		{Name: "langs", Label: "Languages", Type: schema.FieldTypeCheckbox, Options: []string{"en", "hi"}},
		{Name: "agree", Label: "Agree", Type: schema.FieldTypeCheckbox},
	}

	record, err := form.Validate(s, map[string]any{
		"age":   "42",
		"langs": []any{"hi", "en", "hi"},
		"agree": "on",
		"extra": "dropped",
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	want := map[string]any{"age": float64(42), "langs": []string{"hi", "en"}, "agree": true}
	if diff := cmp.Diff(want, record); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestValue_ReturnsCopies(t *testing.T) {
	s := schema.Schema{{Name: "langs", Label: "Languages", Type: schema.FieldTypeCheckbox, Options: []string{"en", "hi"}}}
	f := mustForm(t, s, map[string]any{"langs": []string{"en"}})

	out := f.Value()
	out["langs"].([]string)[0] = "mutated"

	ctrl, _ := f.Control("langs")
	if diff := cmp.Diff([]string{"en"}, ctrl.Value()); diff != "" {
		t.Fatalf("form state leaked (-want +got):\n%s", diff)
	}
}
