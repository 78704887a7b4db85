package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "loanreview/pkg/domain-errors"
	s "loanreview/pkg/string"
)

// loanIDPattern accepts the legacy identifiers: letters, digits, dash, underscore.
var loanIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var defaultValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("loanid", func(fl validator.FieldLevel) bool {
		return loanIDPattern.MatchString(fl.Field().String())
	})
	return v
}

// Violation describes one schema rule broken by caller input.
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Validate checks req against its `validate` tags. On failure it returns a
// VALIDATION_FAILED domain error whose details list every violation.
func Validate(req any) error {
	err := defaultValidator.Struct(req)
	if err == nil {
		return nil
	}

	violations := Violations(err)
	msg := "invalid request"
	if len(violations) > 0 {
		msg = violations[0].Message
	}
	return dErrors.WithDetails(dErrors.CodeValidation, msg, map[string]any{
		"violations": violations,
	})
}

// Violations converts a validator error into wire-friendly violations.
func Violations(err error) []Violation {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}

	out := make([]Violation, 0, len(validationErrs))
	for _, fe := range validationErrs {
		field := fe.Field()
		if field == "" {
			field = fe.StructField()
		}
		field = s.ToSnakeCase(field)
		out = append(out, Violation{
			Field:   field,
			Rule:    fe.ActualTag(),
			Message: message(field, fe),
		})
	}
	return out
}

func message(field string, fe validator.FieldError) string {
	switch fe.ActualTag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "notblank":
		return fmt.Sprintf("%s must not be blank", field)
	case "loanid":
		return fmt.Sprintf("%s may only contain letters, digits, '-' and '_'", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
