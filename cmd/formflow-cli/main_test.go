package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const panCatalog = "../../testdata/catalog/pan-card.yaml"

func TestRunValidate(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), []string{"validate", panCatalog}, &out); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if diff := cmp.Diff("ok  pan-card (6 fields)\n", out.String()); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRunOpenAPI(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), []string{"openapi", "-title", "PAN", panCatalog}, &out); err != nil {
		t.Fatalf("openapi: %v", err)
	}

	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]any `json:"paths"`
	}
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Info.Title != "PAN" {
		t.Fatalf("title = %q", doc.Info.Title)
	}
	if _, ok := doc.Paths["/api/services/pan-card/applications"]; !ok {
		t.Fatalf("submission path missing: %v", doc.Paths)
	}
}

func TestRunRejectsBadInvocations(t *testing.T) {
	cases := map[string][]string{
		"no command":      nil,
		"unknown command": {"lint", panCatalog},
		"missing file":    {"validate"},
		"unknown service": {"fill", "-service", "voter-id", panCatalog},
		"unknown format":  {"fill", "-format", "xml", panCatalog},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			if err := run(context.Background(), args, &out); err == nil {
				t.Fatalf("expected error, got output %q", out.String())
			}
		})
	}
}

func TestRunHelp(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), []string{"help"}, &out); err != nil {
		t.Fatalf("help: %v", err)
	}
	if !strings.Contains(out.String(), "validate") {
		t.Fatalf("usage missing commands: %q", out.String())
	}
}
