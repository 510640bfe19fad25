package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/goliatone/go-formflow/pkg/form"
	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/schema"
)

const skipOption = "(skip)"

// Renderer implements render.Renderer for terminal sessions. It walks the
// service form in display order, prompting once per field and re-prompting
// while the field's rules fail. The validated record is serialized according
// to the configured output format.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
	maxAttempts       int
	stdio             terminal.Stdio
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		maxAttempts:  5,
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		r.driver = newSurveyDriver(r.stdio)
	}

	switch r.outputFormat {
	case OutputFormatJSON, OutputFormatFormURLEncoded, OutputFormatPrettyText:
	default:
		return nil, fmt.Errorf("tui: unknown output format %q", r.outputFormat)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render prompts for every field of service and returns the serialized
// record. options.Values seeds defaults; options.Errors are shown before the
// matching field is prompted.
func (r *Renderer) Render(ctx context.Context, service schema.Service, options render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	f, err := form.New(service.FormSchema, options.Values)
	if err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}
	mapped := render.MapErrorPayload(service.FormSchema, options.Errors)

	if service.Name != "" {
		if err := r.info(ctx, r.theme.InfoPrefix, service.Name); err != nil {
			return nil, err
		}
	}
	for _, message := range render.MergeFormErrors(options.FormErrors, mapped.Form...) {
		if err := r.info(ctx, r.theme.ErrorPrefix, message); err != nil {
			return nil, err
		}
	}

	for _, control := range f.Controls() {
		for _, message := range mapped.Fields[control.Name()] {
			if err := r.info(ctx, r.theme.ErrorPrefix, message); err != nil {
				return nil, err
			}
		}
		if err := r.promptControl(ctx, f, control); err != nil {
			return nil, err
		}
	}

	record, err := f.Submit()
	if err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}
	if r.submitTransformer != nil {
		record, err = r.submitTransformer(record)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return r.serialize(f, record)
}

func (r *Renderer) promptControl(ctx context.Context, f *form.Form, control *form.Control) error {
	for attempt := 1; ; attempt++ {
		if err := r.promptOnce(ctx, f, control); err != nil {
			return err
		}
		if err := f.Touch(control.Name()); err != nil {
			return err
		}
		message := control.VisibleError()
		if message == "" {
			return nil
		}
		if err := r.info(ctx, r.theme.ErrorPrefix, message); err != nil {
			return err
		}
		if r.maxAttempts > 0 && attempt >= r.maxAttempts {
			return fmt.Errorf("%w: %s", ErrTooManyAttempts, control.Name())
		}
	}
}

func (r *Renderer) promptOnce(ctx context.Context, f *form.Form, control *form.Control) error {
	field := control.Field()
	message := r.theme.PromptPrefix + field.DisplayLabel()
	if field.Required {
		message += " *"
	}
	help := helpText(field)
	name := control.Name()

	switch {
	case field.IsMulti():
		current, _ := control.Value().([]string)
		picked, err := r.driver.MultiSelect(ctx, SelectConfig{
			Message:  message,
			Options:  field.Options,
			Defaults: indicesOf(field.Options, current),
			Help:     help,
		})
		if err != nil {
			return err
		}
		if err := f.SetValue(name, []string{}); err != nil {
			return err
		}
		for _, idx := range picked {
			if idx < 0 || idx >= len(field.Options) {
				continue
			}
			if err := f.Toggle(name, field.Options[idx], true); err != nil {
				return err
			}
		}
		return nil

	case field.Type == schema.FieldTypeCheckbox:
		current, _ := control.Value().(bool)
		answer, err := r.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: current, Help: help})
		if err != nil {
			return err
		}
		return f.SetValue(name, answer)

	case field.IsChoice():
		options := field.Options
		if !field.Required {
			options = append([]string{skipOption}, options...)
		}
		current := stringValue(control.Value())
		defaultIdx := indexOf(options, current)
		if defaultIdx < 0 {
			defaultIdx = 0
		}
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      options,
			DefaultIndex: defaultIdx,
			Help:         help,
		})
		if err != nil {
			return err
		}
		value := ""
		if idx >= 0 && idx < len(options) && options[idx] != skipOption {
			value = options[idx]
		}
		return f.SetValue(name, value)

	case field.Type == schema.FieldTypeTextarea:
		answer, err := r.driver.TextArea(ctx, TextAreaConfig{
			Message: message,
			Default: stringValue(control.Value()),
			Help:    help,
		})
		if err != nil {
			return err
		}
		return f.SetValue(name, answer)

	default:
		cfg := InputConfig{
			Message: message,
			Default: stringValue(control.Value()),
			Help:    help,
		}
		if field.Type == schema.FieldTypeFile {
			cfg.Suggest = suggestPaths
		}
		answer, err := r.driver.Input(ctx, cfg)
		if err != nil {
			return err
		}
		return f.SetValue(name, strings.TrimSpace(answer))
	}
}

func (r *Renderer) info(ctx context.Context, prefix, message string) error {
	return r.driver.Info(ctx, prefix+message)
}

func (r *Renderer) serialize(f *form.Form, record map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(encodeForm(record)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(f, record)), nil
	default:
		return json.Marshal(record)
	}
}

func helpText(field schema.Field) string {
	var parts []string
	if field.Placeholder != "" {
		parts = append(parts, field.Placeholder)
	}
	switch field.Type {
	case schema.FieldTypeDate:
		parts = append(parts, "format YYYY-MM-DD")
	case schema.FieldTypeFile:
		parts = append(parts, "path of the document to attach")
	}
	if v := field.Validation; v != nil {
		if v.MinLength != nil {
			parts = append(parts, fmt.Sprintf("min length %d", *v.MinLength))
		}
		if v.MaxLength != nil {
			parts = append(parts, fmt.Sprintf("max length %d", *v.MaxLength))
		}
		if v.Min != nil {
			parts = append(parts, "min "+strconv.FormatFloat(*v.Min, 'f', -1, 64))
		}
		if v.Max != nil {
			parts = append(parts, "max "+strconv.FormatFloat(*v.Max, 'f', -1, 64))
		}
	}
	return strings.Join(parts, "; ")
}

func stringValue(value any) string {
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

func encodeForm(record map[string]any) string {
	values := url.Values{}
	for key, value := range record {
		switch v := value.(type) {
		case []string:
			for _, item := range v {
				values.Add(key, item)
			}
		case bool:
			if v {
				values.Set(key, "on")
			}
		default:
			values.Set(key, stringValue(v))
		}
	}
	return values.Encode()
}

func prettyPrint(f *form.Form, record map[string]any) string {
	var b strings.Builder
	for _, control := range f.Controls() {
		value := record[control.Name()]
		var text string
		switch v := value.(type) {
		case []string:
			text = strings.Join(v, ", ")
		case bool:
			text = "no"
			if v {
				text = "yes"
			}
		default:
			text = stringValue(v)
		}
		fmt.Fprintf(&b, "%s: %s\n", control.Field().DisplayLabel(), text)
	}
	return b.String()
}
