package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// InputConfig configures a single-line text prompt. Suggest, when set, offers
// tab completions for the current input.
type InputConfig struct {
	Message string
	Default string
	Help    string
	Suggest func(toComplete string) []string
}

// ConfirmConfig configures a yes/no prompt for boolean checkboxes.
type ConfirmConfig struct {
	Message string
	Default bool
	Help    string
}

// SelectConfig configures select, radio and multi-checkbox prompts.
type SelectConfig struct {
	Message      string
	Options      []string
	DefaultIndex int
	Defaults     []int // multi-select only; indices into Options
	Help         string
}

// TextAreaConfig configures a multi-line text prompt.
type TextAreaConfig struct {
	Message string
	Default string
	Help    string
}

// PromptDriver abstracts the terminal so form filling can be tested without a
// TTY. Select returns an index into Options; MultiSelect returns indices in
// option order.
type PromptDriver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error)
	Select(ctx context.Context, cfg SelectConfig) (int, error)
	MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error)
	TextArea(ctx context.Context, cfg TextAreaConfig) (string, error)
	Info(ctx context.Context, msg string) error
}

// surveyDriver prompts through survey on the configured stdio. Keeping
// prompts off stdout lets callers pipe the serialized record.
type surveyDriver struct {
	stdio terminal.Stdio
}

func newSurveyDriver(stdio terminal.Stdio) PromptDriver {
	if stdio.In == nil {
		stdio.In = os.Stdin
	}
	if stdio.Out == nil {
		stdio.Out = os.Stdout
	}
	if stdio.Err == nil {
		stdio.Err = os.Stderr
	}
	return &surveyDriver{stdio: stdio}
}

func (d *surveyDriver) ask(ctx context.Context, prompt survey.Prompt, response any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := survey.AskOne(prompt, response, survey.WithStdio(d.stdio.In, d.stdio.Out, d.stdio.Err))
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

func (d *surveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	var out string
	err := d.ask(ctx, &survey.Input{
		Message: cfg.Message,
		Help:    cfg.Help,
		Default: cfg.Default,
		Suggest: cfg.Suggest,
	}, &out)
	return out, err
}

func (d *surveyDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	var out bool
	err := d.ask(ctx, &survey.Confirm{Message: cfg.Message, Help: cfg.Help, Default: cfg.Default}, &out)
	return out, err
}

func (d *surveyDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	prompt := &survey.Select{Message: cfg.Message, Options: cfg.Options, Help: cfg.Help}
	if cfg.DefaultIndex >= 0 && cfg.DefaultIndex < len(cfg.Options) {
		prompt.Default = cfg.Options[cfg.DefaultIndex]
	}
	var out survey.OptionAnswer
	if err := d.ask(ctx, prompt, &out); err != nil {
		return -1, err
	}
	return out.Index, nil
}

func (d *surveyDriver) MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error) {
	prompt := &survey.MultiSelect{Message: cfg.Message, Options: cfg.Options, Help: cfg.Help}
	if defaults := optionsAt(cfg.Options, cfg.Defaults); len(defaults) > 0 {
		prompt.Default = defaults
	}
	var out []survey.OptionAnswer
	if err := d.ask(ctx, prompt, &out); err != nil {
		return nil, err
	}
	picked := make([]int, 0, len(out))
	for _, answer := range out {
		picked = append(picked, answer.Index)
	}
	return picked, nil
}

func (d *surveyDriver) TextArea(ctx context.Context, cfg TextAreaConfig) (string, error) {
	var out string
	err := d.ask(ctx, &survey.Multiline{Message: cfg.Message, Help: cfg.Help, Default: cfg.Default}, &out)
	return out, err
}

func (d *surveyDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.stdio.Out, msg)
	return err
}

// suggestPaths completes document paths for file fields.
func suggestPaths(toComplete string) []string {
	matches, err := filepath.Glob(toComplete + "*")
	if err != nil {
		return nil
	}
	sort.Strings(matches)
	return matches
}

func indexOf(options []string, value string) int {
	for i, option := range options {
		if option == value {
			return i
		}
	}
	return -1
}

// indicesOf maps selected values back to option indices, keeping the order
// of values.
func indicesOf(options, values []string) []int {
	out := make([]int, 0, len(values))
	for _, v := range values {
		if idx := indexOf(options, v); idx >= 0 {
			out = append(out, idx)
		}
	}
	return out
}

func optionsAt(options []string, indices []int) []string {
	var out []string
	for _, idx := range indices {
		if idx >= 0 && idx < len(options) {
			out = append(out, options[idx])
		}
	}
	return out
}
