package render

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/goliatone/go-formflow/pkg/form"
	"github.com/goliatone/go-formflow/pkg/schema"
)

// FieldView is a template-friendly projection of one form control.
type FieldView struct {
	Name        string
	Label       string
	Type        string
	Required    bool
	Placeholder string
	Options     []OptionView
	// Text is the scalar value formatted for an input's value attribute.
	Text    string
	Checked bool
	Multi   bool
	Errors  []string
	// Attrs mirrors the validation block as native HTML constraint attributes.
	Attrs map[string]string
}

// OptionView is one choice of a select, radio or multi-checkbox field.
type OptionView struct {
	Value    string
	Selected bool
}

// FormView is the complete, ordered projection a renderer needs.
type FormView struct {
	ServiceID   string
	Title       string
	Description string
	Action      string
	Method      string
	SubmitLabel string
	Fields      []FieldView
	FormErrors  []string
	Hidden      []HiddenField
}

// BuildView seeds a form from options.Values and projects it in schema order.
// Server errors are mapped onto fields; keys matching no field become
// form-level errors.
func BuildView(service schema.Service, options RenderOptions) (FormView, error) {
	f, err := form.New(service.FormSchema, options.Values)
	if err != nil {
		return FormView{}, fmt.Errorf("render: %w", err)
	}

	mapped := MapErrorPayload(service.FormSchema, options.Errors)

	method := strings.ToUpper(strings.TrimSpace(options.Method))
	if method == "" {
		method = http.MethodPost
	}
	hidden := append([]HiddenField(nil), options.Hidden...)
	if method != http.MethodGet && method != http.MethodPost {
		hidden = append(hidden, MethodField(method))
		method = http.MethodPost
	}

	submit := strings.TrimSpace(options.SubmitLabel)
	if submit == "" {
		submit = "Submit"
	}

	view := FormView{
		ServiceID:   service.ID,
		Title:       service.Name,
		Description: service.Description,
		Action:      options.Action,
		Method:      method,
		SubmitLabel: submit,
		FormErrors:  MergeFormErrors(options.FormErrors, mapped.Form...),
		Hidden:      SortedHiddenFields(MergeHiddenFields(hidden...)),
	}

	for _, control := range f.Controls() {
		view.Fields = append(view.Fields, fieldView(control, mapped.Fields[control.Name()]))
	}
	return view, nil
}

func fieldView(control *form.Control, serverErrors []string) FieldView {
	field := control.Field()
	fv := FieldView{
		Name:        field.Name,
		Label:       field.DisplayLabel(),
		Type:        string(field.Type),
		Required:    field.Required,
		Placeholder: field.Placeholder,
		Multi:       field.IsMulti(),
		Attrs:       constraintAttrs(field),
	}

	value := control.Value()
	switch v := value.(type) {
	case []string:
		selected := make(map[string]bool, len(v))
		for _, item := range v {
			selected[item] = true
		}
		for _, option := range field.Options {
			fv.Options = append(fv.Options, OptionView{Value: option, Selected: selected[option]})
		}
	case bool:
		fv.Checked = v
	default:
		fv.Text = formatValue(v)
		for _, option := range field.Options {
			fv.Options = append(fv.Options, OptionView{Value: option, Selected: option == fv.Text})
		}
	}

	if msg := control.VisibleError(); msg != "" {
		fv.Errors = append(fv.Errors, msg)
	}
	fv.Errors = MergeFormErrors(fv.Errors, serverErrors...)
	return fv
}

func constraintAttrs(field schema.Field) map[string]string {
	attrs := make(map[string]string)
	if field.Required && !field.IsMulti() {
		attrs["required"] = "required"
	}
	rules := field.Validation
	if rules == nil {
		return attrs
	}
	if rules.MinLength != nil && !field.IsMulti() {
		attrs["minlength"] = strconv.Itoa(*rules.MinLength)
	}
	if rules.MaxLength != nil && !field.IsMulti() {
		attrs["maxlength"] = strconv.Itoa(*rules.MaxLength)
	}
	if rules.Min != nil {
		attrs["min"] = strconv.FormatFloat(*rules.Min, 'f', -1, 64)
	}
	if rules.Max != nil {
		attrs["max"] = strconv.FormatFloat(*rules.Max, 'f', -1, 64)
	}
	if rules.Pattern != "" {
		attrs["pattern"] = rules.Pattern
	}
	if rules.Message != "" {
		attrs["title"] = rules.Message
	}
	return attrs
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
