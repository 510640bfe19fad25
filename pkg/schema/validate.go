package schema

import (
	"fmt"
	"regexp"
	"strings"
)

// Issue describes one structural problem found in a schema.
type Issue struct {
	Index   int    `json:"index"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// SchemaError rejects a schema as a whole. It lists every issue found so the
// authoring UI can surface them together.
type SchemaError struct {
	Issues []Issue `json:"issues"`
}

func (e *SchemaError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return "schema: invalid form schema"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Field != "" {
			parts = append(parts, fmt.Sprintf("field %d (%s): %s", issue.Index, issue.Field, issue.Message))
			continue
		}
		parts = append(parts, fmt.Sprintf("field %d: %s", issue.Index, issue.Message))
	}
	return "schema: invalid form schema: " + strings.Join(parts, "; ")
}

// Validate checks every descriptor and returns a *SchemaError when any of
// them is malformed. A nil return means the schema can be saved.
func (s Schema) Validate() error {
	var issues []Issue
	seen := make(map[string]int, len(s))

	add := func(idx int, name, msg string) {
		issues = append(issues, Issue{Index: idx, Field: name, Message: msg})
	}

	for idx, field := range s {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			add(idx, "", "fieldName is required")
		} else if first, dup := seen[name]; dup {
			add(idx, name, fmt.Sprintf("fieldName duplicates field %d", first))
		} else {
			seen[name] = idx
		}
		if strings.TrimSpace(field.Label) == "" {
			add(idx, name, "fieldLabel is required")
		}
		if field.Type == "" {
			add(idx, name, "fieldType is required")
		} else if !field.Type.Valid() {
			add(idx, name, fmt.Sprintf("fieldType %q is not supported", field.Type))
		}
		if (field.Type == FieldTypeSelect || field.Type == FieldTypeRadio) && len(field.Options) == 0 {
			add(idx, name, fmt.Sprintf("%s fields require options", field.Type))
		}
		for _, opt := range field.Options {
			if strings.TrimSpace(opt) == "" {
				add(idx, name, "options must not be blank")
				break
			}
		}
		if v := field.Validation; v != nil {
			if v.MinLength != nil && *v.MinLength < 0 {
				add(idx, name, "validation.minLength must not be negative")
			}
			if v.MinLength != nil && v.MaxLength != nil && *v.MinLength > *v.MaxLength {
				add(idx, name, "validation.minLength exceeds maxLength")
			}
			if v.Min != nil && v.Max != nil && *v.Min > *v.Max {
				add(idx, name, "validation.min exceeds max")
			}
			if v.Pattern != "" {
				if _, err := CompilePattern(v.Pattern); err != nil {
					add(idx, name, fmt.Sprintf("validation.pattern: %v", err))
				}
			}
		}
	}

	if len(issues) > 0 {
		return &SchemaError{Issues: issues}
	}
	return nil
}

// CompilePattern compiles a validation pattern so that it must match the
// whole value. Leading ^ and trailing $ anchors are optional.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	expr := strings.TrimPrefix(pattern, "^")
	if strings.HasSuffix(expr, "$") && !strings.HasSuffix(expr, `\$`) {
		expr = strings.TrimSuffix(expr, "$")
	}
	return regexp.Compile("^(?:" + expr + ")$")
}
