package html_test

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/renderers/html"
	"github.com/goliatone/go-formflow/pkg/schema"
)

func intPtr(v int) *int { return &v }

func service() schema.Service {
	return schema.Service{
		ID:          "pan-card",
		Name:        "PAN Card",
		Description: "Apply for a new PAN card",
		FormSchema: schema.Schema{
			{Name: "mobile", Label: "Mobile", Type: schema.FieldTypeTel, Required: true, Order: 2,
				Validation: &schema.Validation{Pattern: "[0-9]{10}", Message: "Enter 10 digits", MaxLength: intPtr(10)}},
			{Name: "fullName", Label: "Full name", Type: schema.FieldTypeText, Required: true, Order: 1, Placeholder: "As on Aadhar"},
			{Name: "state", Label: "State", Type: schema.FieldTypeSelect, Options: []string{"Kerala", "Goa"}, Order: 3},
			{Name: "gender", Label: "Gender", Type: schema.FieldTypeRadio, Options: []string{"F", "M"}, Order: 4},
			{Name: "docs", Label: "Documents", Type: schema.FieldTypeCheckbox, Options: []string{"Aadhar", "PAN"}, Order: 5},
			{Name: "address", Label: "Address", Type: schema.FieldTypeTextarea, Order: 6},
			{Name: "photo", Label: "Photo", Type: schema.FieldTypeFile, Order: 7},
			{Name: "consent", Label: "I agree", Type: schema.FieldTypeCheckbox, Order: 8},
		},
	}
}

func TestRenderer_RendersEveryFieldInOrder(t *testing.T) {
	renderer, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if renderer.Name() != "html" || !strings.HasPrefix(renderer.ContentType(), "text/html") {
		t.Fatalf("unexpected renderer identity %q %q", renderer.Name(), renderer.ContentType())
	}

	out, err := renderer.Render(context.Background(), service(), render.RenderOptions{
		Action: "/api/applications/app-1/data",
		Method: "PUT",
		Values: map[string]any{
			"fullName": "Asha <K>",
			"state":    "Goa",
			"gender":   "F",
			"docs":     []string{"PAN"},
			"address":  "Main road",
			"consent":  true,
		},
		Errors: map[string][]string{"mobile": {"Enter 10 digits"}},
		Hidden: []render.HiddenField{render.RevisionField(3)},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	doc := string(out)

	wants := []string{
		`<form class="formflow" data-service="pan-card" method="POST" action="/api/applications/app-1/data" novalidate>`,
		`<h2 class="formflow__title">PAN Card</h2>`,
		`<input type="hidden" name="_method" value="PUT">`,
		`<input type="hidden" name="revision" value="3">`,
		`value="Asha &lt;K&gt;"`,
		`placeholder="As on Aadhar"`,
		`maxlength="10" pattern="[0-9]{10}" required="required" title="Enter 10 digits"`,
		`<p class="formflow__error" role="alert">Enter 10 digits</p>`,
		`<option value="Goa" selected>Goa</option>`,
		`<input type="radio" name="gender" value="F" checked>`,
		`<input type="checkbox" name="docs" value="PAN" checked>`,
		`<input type="checkbox" name="docs" value="Aadhar">`,
		`>Main road</textarea>`,
		`<input type="file" id="field-photo" name="photo">`,
		`name="consent" value="on" checked`,
		`<button type="submit" class="formflow__submit">Submit</button>`,
	}
	for _, want := range wants {
		if !strings.Contains(doc, want) {
			t.Errorf("expected output to contain %q\n%s", want, doc)
		}
	}

	order := []string{`data-field="fullName"`, `data-field="mobile"`, `data-field="state"`, `data-field="gender"`,
		`data-field="docs"`, `data-field="address"`, `data-field="photo"`, `data-field="consent"`}
	last := -1
	for _, marker := range order {
		idx := strings.Index(doc, marker)
		if idx <= last {
			t.Fatalf("field %s rendered out of order", marker)
		}
		last = idx
	}
}

func TestRenderer_PristineFormShowsNoErrors(t *testing.T) {
	renderer, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := renderer.Render(context.Background(), service(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(string(out), "formflow__error") {
		t.Fatalf("pristine form should not show errors:\n%s", out)
	}
	if !strings.Contains(string(out), `<option value="">Select...</option>`) {
		t.Fatalf("missing select placeholder:\n%s", out)
	}
}

func TestRenderer_CustomTemplates(t *testing.T) {
	files := fstest.MapFS{
		"form.tmpl": {Data: []byte(`{% for field in form.Fields %}{{ field.Name }};{% endfor %}`)},
	}
	renderer, err := html.New(html.WithTemplatesFS(files))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := renderer.Render(context.Background(), service(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := string(out); got != "fullName;mobile;state;gender;docs;address;photo;consent;" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRenderer_InvalidSchema(t *testing.T) {
	renderer, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	svc := service()
	svc.FormSchema[2].Options = nil
	if _, err := renderer.Render(context.Background(), svc, render.RenderOptions{}); err == nil {
		t.Fatalf("expected schema error")
	}
}
