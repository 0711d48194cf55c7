package validator

import (
	"errors"
	"strings"

	val "github.com/go-playground/validator/v10"
)

var (
	messages = map[string]string{
		"required": "{field} is required",
		"notblank": "{field} must not be blank",
		"gt":       "{field} must be greater than {param}",
		"gte":      "{field} must be greater than or equal to {param}",
		"lte":      "{field} must be less than or equal to {param}",
		"oneof":    "{field} must be one of {param}",
		"max":      "{field} must be at most {param} characters",
		"min":      "{field} must be at least {param} characters",
	}
)

func asValidationErrors(err error, target *val.ValidationErrors) bool {
	return errors.As(err, target)
}

func message(err error) string {
	var valErrors val.ValidationErrors

	if !asValidationErrors(err, &valErrors) {
		return err.Error()
	}

	for _, valErr := range valErrors {
		tmpl := messages[valErr.Tag()]
		if tmpl == "" {
			continue
		}

		tmpl = strings.ReplaceAll(tmpl, "{field}", valErr.Field())

		return strings.ReplaceAll(tmpl, "{param}", valErr.Param())
	}

	return valErrors.Error()
}
