package validator

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/staynest/staynest-api/internal/pkg/sanitize"
)

// FieldType selects the sanitizer and the type-specific check of a field.
type FieldType string

const (
	TypeText     FieldType = "text"
	TypeEmail    FieldType = "email"
	TypePhone    FieldType = "phone"
	TypePassword FieldType = "password"
)

const (
	emailMessage    = "Please enter a valid email address"
	passwordMessage = "Password must be at least 8 characters and contain uppercase, lowercase and a number"
)

// Rules configures the checks of a single field. Zero values disable a check.
type Rules struct {
	Required  bool
	Type      FieldType
	MinLength int
	MaxLength int
	// Custom receives the sanitized value and returns an error message, or "" when valid.
	Custom func(value string) string
}

// Result is a snapshot of a validation pass. It is never modified after being returned.
type Result struct {
	IsValid       bool
	Errors        map[string]string
	SanitizedData map[string]string

	order []string
}

// FirstError returns the first failing field in the order fields were validated.
func (r Result) FirstError() (field, message string, ok bool) {
	for _, name := range r.order {
		if msg, exists := r.Errors[name]; exists {
			return name, msg, true
		}
	}
	return "", "", false
}

// FieldValidator accumulates per-field checks. Not safe for concurrent use.
type FieldValidator struct {
	errors    map[string]string
	sanitized map[string]string
	order     []string
}

func NewFieldValidator() *FieldValidator {
	v := &FieldValidator{}
	v.Reset()
	return v
}

// ValidateField sanitizes raw according to rules.Type, records the sanitized value and
// runs the configured checks. Validating the same field again replaces its previous outcome.
func (v *FieldValidator) ValidateField(name, raw string, rules Rules) *FieldValidator {
	value := sanitizeByType(raw, rules.Type)
	v.sanitized[name] = value
	v.clear(name)

	if value == "" {
		if rules.Required {
			v.fail(name, fmt.Sprintf("%s is required", name))
		}
		return v
	}

	switch rules.Type {
	case TypeEmail:
		if ValidateVar(value, "email") != nil {
			v.fail(name, emailMessage)
		}
	case TypePassword:
		if !isStrongPassword(value) {
			v.fail(name, passwordMessage)
		}
	}

	length := utf8.RuneCountInString(value)
	if rules.MinLength > 0 && length < rules.MinLength {
		v.fail(name, fmt.Sprintf("%s must be at least %d characters", name, rules.MinLength))
	}
	if rules.MaxLength > 0 && length > rules.MaxLength {
		v.fail(name, fmt.Sprintf("%s must be no more than %d characters", name, rules.MaxLength))
	}

	if rules.Custom != nil {
		if msg := rules.Custom(value); msg != "" {
			v.fail(name, msg)
		}
	}
	return v
}

// Result returns a copy of the accumulated state.
func (v *FieldValidator) Result() Result {
	errs := make(map[string]string, len(v.errors))
	for k, msg := range v.errors {
		errs[k] = msg
	}
	data := make(map[string]string, len(v.sanitized))
	for k, val := range v.sanitized {
		data[k] = val
	}
	order := make([]string, len(v.order))
	copy(order, v.order)

	return Result{
		IsValid:       len(errs) == 0,
		Errors:        errs,
		SanitizedData: data,
		order:         order,
	}
}

// Reset discards all recorded fields.
func (v *FieldValidator) Reset() {
	v.errors = make(map[string]string)
	v.sanitized = make(map[string]string)
	v.order = nil
}

func (v *FieldValidator) clear(name string) {
	if _, ok := v.errors[name]; !ok {
		return
	}
	delete(v.errors, name)
	for i, n := range v.order {
		if n == name {
			v.order = append(v.order[:i], v.order[i+1:]...)
			break
		}
	}
}

func (v *FieldValidator) fail(name, message string) {
	if _, seen := v.errors[name]; !seen {
		v.order = append(v.order, name)
	}
	v.errors[name] = message
}

func sanitizeByType(raw string, t FieldType) string {
	switch t {
	case TypeEmail:
		return sanitize.Email(raw)
	case TypePhone:
		return sanitize.Phone(raw)
	default:
		return sanitize.Text(raw)
	}
}

func isStrongPassword(p string) bool {
	if utf8.RuneCountInString(p) < 8 {
		return false
	}
	var lower, upper, digit bool
	for _, r := range p {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}
