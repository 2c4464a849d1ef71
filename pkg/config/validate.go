package config

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// classifierAdapters are the adapter names the remote classifier accepts.
var classifierAdapters = []string{"openai", "anthropic", "google", "deepseek", "mock"}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(validateClassifier, ClassifierConfig{})
	return v
}

// validateClassifier checks the adapter name only while the classifier is
// enabled; a disabled block is never used.
func validateClassifier(sl validator.StructLevel) {
	cc := sl.Current().Interface().(ClassifierConfig)
	if cc.Enabled && !slices.Contains(classifierAdapters, cc.Adapter) {
		sl.ReportError(cc.Adapter, "Adapter", "Adapter", "oneof", strings.Join(classifierAdapters, " "))
	}
}

// ValidationError lists every invalid configuration field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Validate checks field constraints. The cost tier is not validated here;
// Normalize downgrades an unknown tier to premium instead of failing.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return newValidationError(verrs)
		}
		return err
	}
	return nil
}

func newValidationError(errs validator.ValidationErrors) *ValidationError {
	fields := make(map[string]string, len(errs))
	for _, err := range errs {
		field := err.Namespace()
		switch err.Tag() {
		case "required", "required_if":
			fields[field] = fmt.Sprintf("%s is required", field)
		case "oneof":
			fields[field] = fmt.Sprintf("%s must be one of: %s", field, err.Param())
		case "min":
			fields[field] = fmt.Sprintf("%s must be at least %s", field, err.Param())
		case "max":
			fields[field] = fmt.Sprintf("%s must be at most %s", field, err.Param())
		default:
			fields[field] = fmt.Sprintf("%s validation failed on '%s' tag", field, err.Tag())
		}
	}
	return &ValidationError{Fields: fields}
}
