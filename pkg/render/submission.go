package render

import (
	"fmt"
	"sort"
	"strings"
)

// HiddenField represents a hidden form input emitted alongside the visible
// schema fields.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// RevisionFieldName is the input carrying the application revision an edit
// was based on.
const RevisionFieldName = "revision"

// RevisionField constructs the hidden revision input used for optimistic
// edit submissions. Zero revisions are skipped by the server, so they render
// as an empty value.
func RevisionField(revision int) HiddenField {
	if revision <= 0 {
		return HiddenField{Name: RevisionFieldName}
	}
	return Hidden(RevisionFieldName, revision)
}

// MethodField constructs the _method override input for verbs browsers cannot
// submit natively.
func MethodField(method string) HiddenField {
	return Hidden("_method", strings.ToUpper(strings.TrimSpace(method)))
}

// MergeHiddenFields folds fields into a name/value map. Empty names are
// ignored; later fields win on name collisions.
func MergeHiddenFields(fields ...HiddenField) map[string]string {
	if len(fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(fields))
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		out[name] = field.Value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields normalises and sorts hidden fields for deterministic
// rendering. Empty names are dropped.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	if len(fields) == 0 {
		return nil
	}

	clean := make(map[string]string, len(fields))
	for name, value := range fields {
		key := strings.TrimSpace(name)
		if key == "" {
			continue
		}
		clean[key] = value
	}
	if len(clean) == 0 {
		return nil
	}

	names := make([]string, 0, len(clean))
	for name := range clean {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]HiddenField, 0, len(names))
	for _, name := range names {
		result = append(result, HiddenField{
			Name:  name,
			Value: clean[name],
		})
	}
	return result
}
