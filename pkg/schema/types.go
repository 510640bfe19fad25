package schema

// FieldType is the closed set of input kinds a form schema may declare.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeEmail    FieldType = "email"
	FieldTypeNumber   FieldType = "number"
	FieldTypeTel      FieldType = "tel"
	FieldTypeDate     FieldType = "date"
	FieldTypeSelect   FieldType = "select"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeFile     FieldType = "file"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeRadio    FieldType = "radio"
)

var fieldTypes = []FieldType{
	FieldTypeText,
	FieldTypeEmail,
	FieldTypeNumber,
	FieldTypeTel,
	FieldTypeDate,
	FieldTypeSelect,
	FieldTypeTextarea,
	FieldTypeFile,
	FieldTypeCheckbox,
	FieldTypeRadio,
}

// FieldTypes returns the supported field types in declaration order.
func FieldTypes() []FieldType {
	return append([]FieldType(nil), fieldTypes...)
}

// Valid reports whether t belongs to the closed field type set.
func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeText, FieldTypeEmail, FieldTypeNumber, FieldTypeTel, FieldTypeDate,
		FieldTypeSelect, FieldTypeTextarea, FieldTypeFile, FieldTypeCheckbox, FieldTypeRadio:
		return true
	default:
		return false
	}
}

// Validation holds the optional constraints attached to a field. Length
// bounds apply to strings (runes) and multi-value selections, numeric bounds
// apply to number fields. Message, when set, replaces every default message
// reported for the field without changing which constraints run.
type Validation struct {
	MinLength *int     `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Min       *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max       *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Pattern   string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Message   string   `json:"message,omitempty" yaml:"message,omitempty"`
}

// Empty reports whether no constraint or message is declared.
func (v *Validation) Empty() bool {
	return v == nil || (v.MinLength == nil && v.MaxLength == nil && v.Min == nil &&
		v.Max == nil && v.Pattern == "" && v.Message == "")
}

// Field is a single descriptor inside a service form schema.
type Field struct {
	Name        string      `json:"fieldName" yaml:"fieldName"`
	Label       string      `json:"fieldLabel" yaml:"fieldLabel"`
	Type        FieldType   `json:"fieldType" yaml:"fieldType"`
	Required    bool        `json:"required" yaml:"required"`
	Placeholder string      `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Options     []string    `json:"options,omitempty" yaml:"options,omitempty"`
	Validation  *Validation `json:"validation,omitempty" yaml:"validation,omitempty"`
	Order       int         `json:"order" yaml:"order"`
}

// IsChoice reports whether the field picks from its declared options.
func (f Field) IsChoice() bool {
	switch f.Type {
	case FieldTypeSelect, FieldTypeRadio:
		return true
	case FieldTypeCheckbox:
		return len(f.Options) > 0
	default:
		return false
	}
}

// IsMulti reports whether the field accumulates several option values. Only
// checkboxes with options do.
func (f Field) IsMulti() bool {
	return f.Type == FieldTypeCheckbox && len(f.Options) > 0
}

// DisplayLabel falls back to the field name when no label is set.
func (f Field) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// Schema is the ordered list of field descriptors owned by a Service.
type Schema []Field

// Field looks up a descriptor by name.
func (s Schema) Field(name string) (Field, bool) {
	for _, field := range s {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// Names returns the field names in rendering order.
func (s Schema) Names() []string {
	sorted := s.Sorted()
	out := make([]string, 0, len(sorted))
	for _, field := range sorted {
		out = append(out, field.Name)
	}
	return out
}

// Clone returns a deep copy of the schema.
func (s Schema) Clone() Schema {
	if s == nil {
		return nil
	}
	out := make(Schema, len(s))
	for i, field := range s {
		out[i] = field.clone()
	}
	return out
}

func (f Field) clone() Field {
	out := f
	if f.Options != nil {
		out.Options = append([]string(nil), f.Options...)
	}
	if f.Validation != nil {
		v := *f.Validation
		if f.Validation.MinLength != nil {
			n := *f.Validation.MinLength
			v.MinLength = &n
		}
		if f.Validation.MaxLength != nil {
			n := *f.Validation.MaxLength
			v.MaxLength = &n
		}
		if f.Validation.Min != nil {
			n := *f.Validation.Min
			v.Min = &n
		}
		if f.Validation.Max != nil {
			n := *f.Validation.Max
			v.Max = &n
		}
		out.Validation = &v
	}
	return out
}

// Service is the government-service product citizens apply against.
type Service struct {
	ID                string   `json:"id" yaml:"id"`
	Name              string   `json:"name" yaml:"name"`
	Description       string   `json:"description,omitempty" yaml:"description,omitempty"`
	Fee               float64  `json:"fee" yaml:"fee"`
	RequiredDocuments []string `json:"requiredDocuments,omitempty" yaml:"requiredDocuments,omitempty"`
	FormSchema        Schema   `json:"formSchema" yaml:"formSchema"`
	Active            bool     `json:"active" yaml:"active"`
}
