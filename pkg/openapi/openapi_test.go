package openapi_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/openapi"
	"github.com/goliatone/go-formflow/pkg/schema"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func panService() schema.Service {
	return schema.Service{
		ID:          "pan-card",
		Name:        "PAN Card",
		Description: "New PAN application",
		FormSchema: schema.Schema{
			{Name: "mobile", Label: "Mobile", Type: schema.FieldTypeTel, Required: true, Order: 2,
				Validation: &schema.Validation{Pattern: "^[0-9]{10}$"}},
			{Name: "fullName", Label: "Full name", Type: schema.FieldTypeText, Required: true, Order: 1,
				Validation: &schema.Validation{MaxLength: intPtr(80)}},
			{Name: "email", Label: "Email", Type: schema.FieldTypeEmail, Order: 3},
			{Name: "income", Label: "Income", Type: schema.FieldTypeNumber, Order: 4,
				Validation: &schema.Validation{Min: floatPtr(0)}},
			{Name: "state", Label: "State", Type: schema.FieldTypeSelect, Options: []string{"Goa", "Kerala"}, Order: 5},
			{Name: "docs", Label: "Documents", Type: schema.FieldTypeCheckbox, Options: []string{"Aadhar", "PAN"}, Required: true, Order: 6},
			{Name: "consent", Label: "Consent", Type: schema.FieldTypeCheckbox, Order: 7},
		},
	}
}

func TestSchemaFor_AcceptsEngineRecords(t *testing.T) {
	s := openapi.SchemaFor(panService().FormSchema)

	if diff := cmp.Diff([]string{"fullName", "mobile", "docs"}, s.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
	if got := s.Properties["mobile"].Value.Pattern; got != "^(?:[0-9]{10})$" {
		t.Fatalf("unexpected pattern %q", got)
	}

	valid := map[string]any{
		"fullName": "Asha",
		"mobile":   "9876543210",
		"email":    "",
		"income":   nil,
		"state":    "",
		"docs":     []any{"PAN"},
		"consent":  false,
	}
	if err := s.VisitJSON(valid); err != nil {
		t.Fatalf("valid record rejected: %v", err)
	}

	cases := map[string]map[string]any{
		"bad pattern":    withValue(valid, "mobile", "123"),
		"unknown option": withValue(valid, "state", "Delhi"),
		"negative":       withValue(valid, "income", float64(-5)),
		"no documents":   withValue(valid, "docs", []any{}),
		"unknown key":    withValue(valid, "extra", "x"),
	}
	for name, record := range cases {
		t.Run(name, func(t *testing.T) {
			if err := s.VisitJSON(record); err == nil {
				t.Fatalf("expected record to be rejected")
			}
		})
	}
}

func TestDocument_Validates(t *testing.T) {
	doc := openapi.Document(openapi.Info{Title: "Consultancy", Version: "2.0.0"}, []schema.Service{panService()})

	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	loaded, err := openapi3.NewLoader().LoadFromData(raw)
	if err != nil {
		t.Fatalf("load generated document: %v", err)
	}
	if err := loaded.Validate(context.Background()); err != nil {
		t.Fatalf("generated document is invalid: %v", err)
	}

	item := loaded.Paths.Find("/api/services/pan-card/applications")
	if item == nil || item.Post == nil || item.Post.OperationID != "submit.pan-card" {
		t.Fatalf("missing submission operation: %+v", item)
	}
	if _, ok := loaded.Components.Schemas[openapi.ComponentName("pan-card")]; !ok {
		t.Fatalf("missing data component")
	}
}

func withValue(record map[string]any, key string, value any) map[string]any {
	out := make(map[string]any, len(record)+1)
	for k, v := range record {
		out[k] = v
	}
	out[key] = value
	return out
}
