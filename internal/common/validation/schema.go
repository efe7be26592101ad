// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// JSONSchema defines the structure for worker input/output schemas.
type JSONSchema struct {
	Type                 string              `json:"type"`
	Properties           map[string]Property `json:"properties"`
	Required             []string            `json:"required,omitempty"`
	AdditionalProperties bool                `json:"additionalProperties,omitempty"`
}

type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Pattern     *string  `json:"pattern,omitempty"`
	MinLength   *int     `json:"minLength,omitempty"`
	MaxLength   *int     `json:"maxLength,omitempty"`
	Minimum     *float64 `json:"minimum,omitempty"`
	Maximum     *float64 `json:"maximum,omitempty"`
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ValidateInput validates input against a JSON schema with detailed errors.
func ValidateInput(input map[string]interface{}, schema JSONSchema) *ValidationResult {
	errs := []ValidationError{}

	for _, requiredField := range schema.Required {
		if _, exists := input[requiredField]; !exists {
			errs = append(errs, ValidationError{
				Field:   requiredField,
				Message: "required field missing",
				Code:    "REQUIRED_FIELD_MISSING",
			})
		}
	}

	for fieldName, value := range input {
		prop, exists := schema.Properties[fieldName]
		if !exists {
			if !schema.AdditionalProperties {
				errs = append(errs, ValidationError{
					Field:   fieldName,
					Message: "field not allowed in schema",
					Code:    "EXTRA_FIELD",
				})
			}
			continue
		}

		if fieldErrors := validateField(fieldName, value, prop); len(fieldErrors) > 0 {
			errs = append(errs, fieldErrors...)
		}
	}

	return &ValidationResult{
		Valid:  len(errs) == 0,
		Errors: errs,
	}
}

func validateField(name string, value interface{}, prop Property) []ValidationError {
	var errs []ValidationError

	switch prop.Type {
	case "string":
		s, ok := value.(string)
		if !ok {
			return append(errs, typeError(name, "string"))
		}
		if prop.MinLength != nil && len(s) < *prop.MinLength {
			errs = append(errs, ValidationError{
				Field:   name,
				Message: fmt.Sprintf("shorter than minLength %d", *prop.MinLength),
				Code:    "MIN_LENGTH",
			})
		}
		if prop.MaxLength != nil && len(s) > *prop.MaxLength {
			errs = append(errs, ValidationError{
				Field:   name,
				Message: fmt.Sprintf("longer than maxLength %d", *prop.MaxLength),
				Code:    "MAX_LENGTH",
			})
		}
		if len(prop.Enum) > 0 && !contains(prop.Enum, s) {
			errs = append(errs, ValidationError{
				Field:   name,
				Message: fmt.Sprintf("value %q not in enum [%s]", s, strings.Join(prop.Enum, ", ")),
				Code:    "ENUM_MISMATCH",
			})
		}
		if prop.Pattern != nil {
			if re, err := regexp.Compile(*prop.Pattern); err == nil && !re.MatchString(s) {
				errs = append(errs, ValidationError{
					Field:   name,
					Message: "value does not match pattern",
					Code:    "PATTERN_MISMATCH",
				})
			}
		}
	case "number":
		n, ok := toFloat(value)
		if !ok {
			return append(errs, typeError(name, "number"))
		}
		if prop.Minimum != nil && n < *prop.Minimum {
			errs = append(errs, ValidationError{
				Field:   name,
				Message: fmt.Sprintf("below minimum %v", *prop.Minimum),
				Code:    "MINIMUM",
			})
		}
		if prop.Maximum != nil && n > *prop.Maximum {
			errs = append(errs, ValidationError{
				Field:   name,
				Message: fmt.Sprintf("above maximum %v", *prop.Maximum),
				Code:    "MAXIMUM",
			})
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			errs = append(errs, typeError(name, "boolean"))
		}
	case "object":
		if _, ok := value.(map[string]interface{}); !ok {
			errs = append(errs, typeError(name, "object"))
		}
	case "array":
		if _, ok := value.([]interface{}); !ok {
			errs = append(errs, typeError(name, "array"))
		}
	}

	return errs
}

func typeError(name, want string) ValidationError {
	return ValidationError{
		Field:   name,
		Message: fmt.Sprintf("expected %s", want),
		Code:    "TYPE_MISMATCH",
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
