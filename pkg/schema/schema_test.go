package schema_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/schema"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func TestSchemaValidate_AcceptsWellFormedSchema(t *testing.T) {
	s := schema.Schema{
		{Name: "fullName", Label: "Full name", Type: schema.FieldTypeText, Required: true},
		{Name: "gender", Label: "Gender", Type: schema.FieldTypeRadio, Options: []string{"M", "F"}},
		{Name: "mobile", Label: "Mobile", Type: schema.FieldTypeTel, Validation: &schema.Validation{Pattern: "^[0-9]{10}$"}},
		{Name: "consent", Label: "I agree", Type: schema.FieldTypeCheckbox},
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSchemaValidate_RejectsWholeSchema(t *testing.T) {
	s := schema.Schema{
		{Name: "ok", Label: "Ok", Type: schema.FieldTypeText},
		{Name: "", Label: "No name", Type: schema.FieldTypeText},
		{Name: "nolabel", Type: schema.FieldTypeText},
		{Name: "weird", Label: "Weird", Type: "color"},
		{Name: "kind", Label: "Kind", Type: schema.FieldTypeSelect},
		{Name: "ok", Label: "Dup", Type: schema.FieldTypeText},
		{Name: "pat", Label: "Pat", Type: schema.FieldTypeText, Validation: &schema.Validation{Pattern: "("}},
		{Name: "len", Label: "Len", Type: schema.FieldTypeText, Validation: &schema.Validation{MinLength: intPtr(5), MaxLength: intPtr(2)}},
		{Name: "num", Label: "Num", Type: schema.FieldTypeNumber, Validation: &schema.Validation{Min: floatPtr(3), Max: floatPtr(1)}},
		{Name: "notype", Label: "No type"},
	}

	err := s.Validate()
	var schemaErr *schema.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *SchemaError, got %v", err)
	}

	got := make([]int, 0, len(schemaErr.Issues))
	for _, issue := range schemaErr.Issues {
		got = append(got, issue.Index)
	}
	want := []int{1, 2, 3, 4, 5, 6, 7, 8, 9}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("issue indexes mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(err.Error(), "fieldName duplicates field 0") {
		t.Fatalf("expected duplicate message, got %q", err.Error())
	}
}

func TestSchemaSorted_StableAcrossPermutations(t *testing.T) {
	base := schema.Schema{
		{Name: "a", Order: 2},
		{Name: "b", Order: 1},
		{Name: "c", Order: 2},
		{Name: "d", Order: 0},
	}

	for _, perm := range permutations(len(base)) {
		input := make(schema.Schema, len(base))
		for i, idx := range perm {
			input[i] = base[idx]
		}

		sorted := input.Sorted()
		for i := 1; i < len(sorted); i++ {
			if sorted[i-1].Order > sorted[i].Order {
				t.Fatalf("perm %v: order not ascending: %v", perm, sorted.Names())
			}
		}

		// fields tied on Order keep their relative input position
		var tiedIn, tiedOut []string
		for _, f := range input {
			if f.Order == 2 {
				tiedIn = append(tiedIn, f.Name)
			}
		}
		for _, f := range sorted {
			if f.Order == 2 {
				tiedOut = append(tiedOut, f.Name)
			}
		}
		if diff := cmp.Diff(tiedIn, tiedOut); diff != "" {
			t.Fatalf("perm %v: tie order changed (-in +out):\n%s", perm, diff)
		}
	}
}

func TestSchemaSorted_DoesNotMutateReceiver(t *testing.T) {
	s := schema.Schema{{Name: "z", Order: 3}, {Name: "y", Order: 1}}
	_ = s.Sorted()
	if s[0].Name != "z" {
		t.Fatalf("receiver mutated: %v", s)
	}
}

func TestLoadFS_ParsesJSONAndYAML(t *testing.T) {
	fsys := fstest.MapFS{
		"pan.yaml": &fstest.MapFile{Data: []byte(`
services:
  pan-card:
    name: PAN Card
    fee: 107
    active: true
    formSchema:
      - fieldName: fullName
        fieldLabel: Full name
        fieldType: text
        required: true
        order: 1
`)},
		"nested/voter.json": &fstest.MapFile{Data: []byte(`{"services":{"voter-id":{"name":"Voter ID","formSchema":[{"fieldName":"dob","fieldLabel":"Date of birth","fieldType":"date","order":0}]}}}`)},
		"README.md":         &fstest.MapFile{Data: []byte("ignored")},
	}

	catalog, err := schema.LoadFS(fsys)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{"pan-card", "voter-id"}, catalog.IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}

	pan, ok := catalog.Service("pan-card")
	if !ok {
		t.Fatalf("pan-card missing")
	}
	want := schema.Service{
		ID:     "pan-card",
		Name:   "PAN Card",
		Fee:    107,
		Active: true,
		FormSchema: schema.Schema{
			{Name: "fullName", Label: "Full name", Type: schema.FieldTypeText, Required: true, Order: 1},
		},
	}
	if diff := cmp.Diff(want, pan); diff != "" {
		t.Fatalf("service mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFS_RejectsDuplicatesAndInvalidSchemas(t *testing.T) {
	dup := fstest.MapFS{
		"a.yaml": &fstest.MapFile{Data: []byte("services:\n  x:\n    name: X\n")},
		"b.yaml": &fstest.MapFile{Data: []byte("services:\n  x:\n    name: X again\n")},
	}
	if _, err := schema.LoadFS(dup); err == nil || !strings.Contains(err.Error(), "duplicate service") {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	invalid := fstest.MapFS{
		"a.yaml": &fstest.MapFile{Data: []byte("services:\n  x:\n    formSchema:\n      - fieldName: q\n        fieldType: select\n")},
	}
	_, err := schema.LoadFS(invalid)
	var schemaErr *schema.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected wrapped *SchemaError, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "income.yml")
	data := "services:\n  income-certificate:\n    name: Income certificate\n    formSchema:\n      - fieldName: income\n        fieldLabel: Annual income\n        fieldType: number\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	catalog, err := schema.LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{"income-certificate"}, catalog.IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}

	if _, err := schema.LoadFile(filepath.Join(dir, "notes.txt")); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
	if _, err := schema.LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestBundledCatalogIsValid(t *testing.T) {
	catalog, err := schema.LoadFS(os.DirFS("../../testdata/catalog"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{"income-certificate", "pan-card"}, catalog.IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
}

func permutations(n int) [][]int {
	var out [][]int
	var walk func(prefix []int, used []bool)
	walk = func(prefix []int, used []bool) {
		if len(prefix) == n {
			out = append(out, append([]int(nil), prefix...))
			return
		}
		for i := 0; i < n; i++ {
			if used[i] {
				continue
			}
			used[i] = true
			walk(append(prefix, i), used)
			used[i] = false
		}
	}
	walk(nil, make([]bool, n))
	return out
}
