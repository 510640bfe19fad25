package form

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// Rule identifiers reported in FieldValidationError.Rules, listed in the
// precedence used to pick the default message.
const (
	RuleRequired  = "required"
	RuleOption    = "option"
	RuleEmail     = "email"
	RuleMinLength = "minLength"
	RuleMaxLength = "maxLength"
	RuleNumber    = "number"
	RuleMin       = "min"
	RuleMax       = "max"
	RulePattern   = "pattern"
)

const (
	maxEmailLength      = 254
	maxEmailLocalLength = 64
)

var emailPattern = regexp.MustCompile("^[a-zA-Z0-9!#$%&'*+/=?^_`{|}~-]+(?:\\.[a-zA-Z0-9!#$%&'*+/=?^_`{|}~-]+)*" +
	"@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

type ruleSet struct {
	field    schema.Field
	required bool
	email    bool
	number   bool
	options  map[string]struct{}
	minLen   *int
	maxLen   *int
	min      *float64
	max      *float64
	pattern  *regexp.Regexp
	message  string
}

func compileRules(field schema.Field) (ruleSet, error) {
	rules := ruleSet{
		field:    field,
		required: field.Required,
		email:    field.Type == schema.FieldTypeEmail,
		number:   field.Type == schema.FieldTypeNumber,
	}
	if field.IsChoice() {
		rules.options = make(map[string]struct{}, len(field.Options))
		for _, opt := range field.Options {
			rules.options[opt] = struct{}{}
		}
	}
	if v := field.Validation; v != nil {
		rules.minLen = v.MinLength
		rules.maxLen = v.MaxLength
		rules.min = v.Min
		rules.max = v.Max
		rules.message = strings.TrimSpace(v.Message)
		if v.Pattern != "" {
			re, err := schema.CompilePattern(v.Pattern)
			if err != nil {
				return ruleSet{}, fmt.Errorf("form: field %s: pattern: %w", field.Name, err)
			}
			rules.pattern = re
		}
	}
	return rules, nil
}

// validate runs every declared rule against value. It returns nil when the
// value satisfies all of them.
func (r ruleSet) validate(value any) *FieldValidationError {
	var failed []string
	var first string

	fail := func(rule, msg string) {
		failed = append(failed, rule)
		if first == "" {
			first = msg
		}
	}

	label := r.field.DisplayLabel()

	if isEmpty(value) {
		if r.required {
			fail(RuleRequired, fmt.Sprintf("%s is required", label))
		}
		return r.result(failed, first)
	}

	if r.options != nil && !r.optionsContain(value) {
		fail(RuleOption, fmt.Sprintf("%s must be one of the listed options", label))
	}

	if r.email {
		s, _ := value.(string)
		if !validEmail(s) {
			fail(RuleEmail, "Please enter a valid email address")
		}
	}

	if r.minLen != nil || r.maxLen != nil {
		n, unit := lengthOf(value)
		if r.minLen != nil && n < *r.minLen {
			fail(RuleMinLength, fmt.Sprintf("%s must be at least %d %s", label, *r.minLen, unit))
		}
		if r.maxLen != nil && n > *r.maxLen {
			fail(RuleMaxLength, fmt.Sprintf("%s must be at most %d %s", label, *r.maxLen, unit))
		}
	}

	if r.number || r.min != nil || r.max != nil {
		num, ok := toFloat(value)
		switch {
		case !ok && r.number:
			fail(RuleNumber, fmt.Sprintf("%s must be a number", label))
		case ok:
			if r.min != nil && num < *r.min {
				fail(RuleMin, fmt.Sprintf("%s must be at least %s", label, formatNumber(*r.min)))
			}
			if r.max != nil && num > *r.max {
				fail(RuleMax, fmt.Sprintf("%s must be at most %s", label, formatNumber(*r.max)))
			}
		}
	}

	if r.pattern != nil {
		if !r.matchesPattern(value) {
			fail(RulePattern, fmt.Sprintf("%s has an invalid format", label))
		}
	}

	return r.result(failed, first)
}

func (r ruleSet) result(failed []string, first string) *FieldValidationError {
	if len(failed) == 0 {
		return nil
	}
	msg := first
	if r.message != "" {
		msg = r.message
	}
	return &FieldValidationError{
		Field:   r.field.Name,
		Rules:   failed,
		Message: msg,
	}
}

// matchesPattern checks scalars as text and multi-checkbox selections option
// by option.
func (r ruleSet) matchesPattern(value any) bool {
	switch v := value.(type) {
	case []string:
		for _, item := range v {
			if !r.pattern.MatchString(item) {
				return false
			}
		}
		return true
	case []any:
		for _, item := range v {
			if !r.pattern.MatchString(stringify(item)) {
				return false
			}
		}
		return true
	default:
		return r.pattern.MatchString(stringify(value))
	}
}

func (r ruleSet) optionsContain(value any) bool {
	switch v := value.(type) {
	case string:
		_, ok := r.options[v]
		return ok
	case []string:
		for _, item := range v {
			if _, ok := r.options[item]; !ok {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func validEmail(value string) bool {
	if value == "" || len(value) > maxEmailLength {
		return false
	}
	at := strings.LastIndex(value, "@")
	if at < 1 || at > maxEmailLocalLength {
		return false
	}
	return emailPattern.MatchString(value)
}

// isEmpty mirrors the required check: nil, blank strings, false and empty
// selections count as missing.
func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case bool:
		return !v
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	default:
		return false
	}
}

func lengthOf(value any) (int, string) {
	switch v := value.(type) {
	case []string:
		return len(v), "selections"
	case []any:
		return len(v), "selections"
	default:
		return utf8.RuneCountInString(stringify(value)), "characters"
	}
}

// toFloat reports false for NaN and infinities; they are not numbers a form
// can accept or a record can store.
func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, isFinite(v)
	case float32:
		return float64(v), isFinite(float64(v))
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil && isFinite(f)
	default:
		return 0, false
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return formatNumber(v)
	default:
		return fmt.Sprint(v)
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
