package openapi

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// ExtensionOrder carries the display order of a property.
const ExtensionOrder = "x-formflow-order"

// SchemaFor describes the applicationData record produced by a form schema.
// Properties follow display order through ExtensionOrder; unknown properties
// are rejected because the engine drops them.
func SchemaFor(s schema.Schema) *openapi3.Schema {
	out := openapi3.NewObjectSchema()
	out.AdditionalProperties = openapi3.AdditionalProperties{Has: boolPtr(false)}

	for _, field := range s.Sorted() {
		prop := fieldSchema(field)
		prop.Extensions = map[string]any{ExtensionOrder: field.Order}
		out.Properties[field.Name] = openapi3.NewSchemaRef("", prop)
		if field.Required {
			out.Required = append(out.Required, field.Name)
		}
	}
	return out
}

func fieldSchema(field schema.Field) *openapi3.Schema {
	var out *openapi3.Schema
	rules := field.Validation
	if rules == nil {
		rules = &schema.Validation{}
	}

	switch {
	case field.IsMulti():
		items := openapi3.NewStringSchema().WithEnum(toAny(field.Options)...)
		out = openapi3.NewArraySchema().WithItems(items)
		out.UniqueItems = true
		if rules.MinLength != nil {
			out.WithMinItems(int64(*rules.MinLength))
		}
		if rules.MaxLength != nil {
			out.WithMaxItems(int64(*rules.MaxLength))
		}
		if field.Required && rules.MinLength == nil {
			out.WithMinItems(1)
		}
	case field.Type == schema.FieldTypeCheckbox:
		out = openapi3.NewBoolSchema()
	case field.Type == schema.FieldTypeNumber:
		out = openapi3.NewFloat64Schema()
		if rules.Min != nil {
			out.WithMin(*rules.Min)
		}
		if rules.Max != nil {
			out.WithMax(*rules.Max)
		}
		if !field.Required {
			out.Nullable = true
		}
	case field.IsChoice():
		options := toAny(field.Options)
		if !field.Required {
			options = append([]any{""}, options...)
		}
		out = openapi3.NewStringSchema().WithEnum(options...)
	default:
		out = openapi3.NewStringSchema()
		switch field.Type {
		case schema.FieldTypeEmail:
			out.Format = "email"
		case schema.FieldTypeDate:
			out.Format = "date"
		}
		if rules.MinLength != nil {
			out.WithMinLength(int64(*rules.MinLength))
		} else if field.Required {
			out.WithMinLength(1)
		}
		if rules.MaxLength != nil {
			out.WithMaxLength(int64(*rules.MaxLength))
		}
		if rules.Pattern != "" {
			if re, err := schema.CompilePattern(rules.Pattern); err == nil {
				out.Pattern = re.String()
			}
		}
		if !field.Required && constrained(out) {
			// empty optional values skip every rule
			empty := openapi3.NewStringSchema().WithMaxLength(0)
			out = &openapi3.Schema{AnyOf: openapi3.SchemaRefs{
				openapi3.NewSchemaRef("", empty),
				openapi3.NewSchemaRef("", out),
			}}
		}
	}

	out.Title = field.DisplayLabel()
	if field.Placeholder != "" {
		out.Description = field.Placeholder
	}
	if field.Type == schema.FieldTypeFile {
		out.Description = "Path of the uploaded document"
	}
	return out
}

func constrained(s *openapi3.Schema) bool {
	return s.Format != "" || s.Pattern != "" || s.MinLength > 0
}

func toAny(values []string) []any {
	out := make([]any, 0, len(values))
	for _, value := range values {
		out = append(out, value)
	}
	return out
}

func boolPtr(v bool) *bool { return &v }
