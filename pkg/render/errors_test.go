package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/schema"
)

func TestMapErrorPayload_PathVariants(t *testing.T) {
	s := schema.Schema{
		{Name: "fullName", Label: "Full name", Type: schema.FieldTypeText},
		{Name: "mobile", Label: "Mobile", Type: schema.FieldTypeTel},
		{Name: "documents", Label: "Documents", Type: schema.FieldTypeCheckbox, Options: []string{"Aadhar", "PAN"}},
	}

	payload := map[string][]string{
		"fullName":                   {"Full name is required"},
		"/applicationData/mobile":    {"Enter 10 digits", " Enter 10 digits "},
		"$.body.documents[0]":        {"Pick at least one"},
		"non_field_errors":           {"Form level error"},
		"request/body/unknown-field": {"Falls back to form errors"},
		"":                           {"Unscoped form error", "  "},
	}

	mapped := render.MapErrorPayload(s, payload)

	wantFields := map[string][]string{
		"fullName":  {"Full name is required"},
		"mobile":    {"Enter 10 digits"},
		"documents": {"Pick at least one"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}

	// keys are visited in sorted order
	wantForm := []string{"Unscoped form error", "Form level error", "Falls back to form errors"}
	if diff := cmp.Diff(wantForm, mapped.Form); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestMapErrorPayload_Empty(t *testing.T) {
	mapped := render.MapErrorPayload(nil, nil)
	if mapped.Fields != nil || mapped.Form != nil {
		t.Fatalf("expected empty mapping, got %+v", mapped)
	}
}

func TestMergeFormErrors(t *testing.T) {
	merged := render.MergeFormErrors([]string{" First ", "Second"}, "Second", "third", "  ")
	want := []string{"First", "Second", "third"}

	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged form errors mismatch (-want +got):\n%s", diff)
	}
}
