package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/frahmantamala/ldc-construction/internal"
)

type rule func(value any) string

// Field collects the rules for one input. Only the first failing rule of a
// field is reported.
type Field struct {
	name  string
	value any
	rules []rule
}

type Validator struct {
	fields []*Field
}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) Field(name string, value any) *Field {
	f := &Field{name: name, value: value}
	v.fields = append(v.fields, f)
	return f
}

func (f *Field) Required() *Field {
	f.rules = append(f.rules, func(value any) string {
		switch s := value.(type) {
		case nil:
			return "is required"
		case string:
			if strings.TrimSpace(s) == "" {
				return "is required"
			}
		case *string:
			if s == nil || strings.TrimSpace(*s) == "" {
				return "is required"
			}
		}
		return ""
	})
	return f
}

func (f *Field) MaxLength(max int) *Field {
	f.rules = append(f.rules, func(value any) string {
		if s, ok := value.(string); ok && len(s) > max {
			return fmt.Sprintf("must not exceed %d characters", max)
		}
		return ""
	})
	return f
}

// Matches skips empty strings; combine with Required when the field is
// mandatory.
func (f *Field) Matches(pattern *regexp.Regexp, hint string) *Field {
	f.rules = append(f.rules, func(value any) string {
		if s, ok := value.(string); ok && s != "" && !pattern.MatchString(s) {
			return hint
		}
		return ""
	})
	return f
}

func (v *Validator) Validate() *internal.AppError {
	var errs []internal.ValidationError
	for _, f := range v.fields {
		for _, r := range f.rules {
			if msg := r(f.value); msg != "" {
				errs = append(errs, internal.ValidationError{
					Field:   f.name,
					Message: fmt.Sprintf("%s %s", f.name, msg),
					Code:    string(internal.ErrCodeValidationFailed),
				})
				break
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).
		WithDetails(internal.ValidationErrors{Errors: errs})
}

var cgCodePattern = regexp.MustCompile(`^[A-Za-z0-9 .\-_]+$`)

// ValidateConstructionGroupCode checks a code such as "CG 01.12".
func ValidateConstructionGroupCode(code string) *internal.AppError {
	v := NewValidator()
	v.Field("code", code).
		Required().
		MaxLength(50).
		Matches(cgCodePattern, "may only contain letters, digits, spaces, dots, dashes and underscores")
	return v.Validate()
}
