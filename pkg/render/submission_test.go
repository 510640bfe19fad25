package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/render"
)

func TestMergeAndSortHiddenFields(t *testing.T) {
	merged := render.MergeHiddenFields(
		render.Hidden(" application_id ", "app-1"),
		render.RevisionField(3),
		render.MethodField("put"),
		render.Hidden("  ", "skip"),
		render.RevisionField(4),
	)

	wantMerged := map[string]string{
		"application_id": "app-1",
		"revision":       "4",
		"_method":        "PUT",
	}
	if diff := cmp.Diff(wantMerged, merged); diff != "" {
		t.Fatalf("merged hidden fields mismatch (-want +got):\n%s", diff)
	}

	sorted := render.SortedHiddenFields(merged)
	wantSorted := []render.HiddenField{
		{Name: "_method", Value: "PUT"},
		{Name: "application_id", Value: "app-1"},
		{Name: "revision", Value: "4"},
	}
	if diff := cmp.Diff(wantSorted, sorted); diff != "" {
		t.Fatalf("sorted hidden fields mismatch (-want +got):\n%s", diff)
	}
}

func TestRevisionField_ZeroIsBlank(t *testing.T) {
	if got := render.RevisionField(0); got != (render.HiddenField{Name: "revision"}) {
		t.Fatalf("unexpected revision field %+v", got)
	}
}
