// Package sanitize strips markup from citizen-submitted values before they
// are persisted or echoed back into rendered forms.
package sanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func strictPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// String removes every HTML element from value. Entities produced by the
// policy are decoded again so plain text such as "A & B" survives unchanged.
func String(value string) string {
	if value == "" || !strings.ContainsAny(value, "<>&") {
		return value
	}
	return html.UnescapeString(strictPolicy().Sanitize(value))
}

// Record returns a copy of record with String applied to every string value,
// including strings nested in slices and maps.
func Record(record map[string]any) map[string]any {
	if record == nil {
		return nil
	}
	out := make(map[string]any, len(record))
	for key, value := range record {
		out[key] = Value(value)
	}
	return out
}

// Value sanitizes a single record value.
func Value(value any) any {
	switch v := value.(type) {
	case string:
		return String(v)
	case []string:
		out := make([]string, len(v))
		for i, item := range v {
			out[i] = String(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = Value(item)
		}
		return out
	case map[string]any:
		return Record(v)
	default:
		return v
	}
}
