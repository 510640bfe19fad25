package form

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// DefaultValue returns the initial value a control takes when no prior value
// is supplied.
func DefaultValue(field schema.Field) any {
	switch field.Type {
	case schema.FieldTypeCheckbox:
		if field.IsMulti() {
			return []string{}
		}
		return false
	case schema.FieldTypeNumber:
		return nil
	default:
		return ""
	}
}

// Coerce converts a loosely typed value (decoded JSON, form posts, CLI input)
// into the representation the field type uses. Values that cannot be
// converted are kept as is so validation can report them.
func Coerce(field schema.Field, value any) any {
	if value == nil {
		return DefaultValue(field)
	}
	switch field.Type {
	case schema.FieldTypeCheckbox:
		if field.IsMulti() {
			return coerceSelection(value)
		}
		return coerceBool(value)
	case schema.FieldTypeNumber:
		return coerceNumber(value)
	default:
		return coerceString(value)
	}
}

func coerceSelection(value any) []string {
	var items []string
	switch v := value.(type) {
	case []string:
		items = v
	case []any:
		items = make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			items = append(items, fmt.Sprint(item))
		}
	case string:
		if strings.TrimSpace(v) != "" {
			items = []string{v}
		}
	default:
		items = []string{fmt.Sprint(v)}
	}

	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

func coerceBool(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "on", "yes":
			return true
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	default:
		return false
	}
}

func coerceNumber(value any) any {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil && isFinite(f) {
			return f
		}
		return v.String()
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil
		}
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil && isFinite(f) {
			return f
		}
		return v
	default:
		return v
	}
}

func coerceString(value any) any {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return formatNumber(v)
	case bool, int, int64, int32, float32, json.Number:
		return fmt.Sprint(v)
	default:
		return v
	}
}

// CloneValue deep-copies record values: nested maps and slices are copied,
// scalars are shared.
func CloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = CloneValue(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = CloneValue(v)
		}
		return clone
	case []string:
		return append([]string{}, typed...)
	default:
		return typed
	}
}

// CloneRecord deep-copies a flat application record.
func CloneRecord(record map[string]any) map[string]any {
	if record == nil {
		return nil
	}
	return CloneValue(record).(map[string]any)
}

// UnknownKeys lists record keys that no field in s declares.
func UnknownKeys(s schema.Schema, record map[string]any) []string {
	var out []string
	for key := range record {
		if _, ok := s.Field(key); !ok {
			out = append(out, key)
		}
	}
	return out
}
