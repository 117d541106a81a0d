package validation

import (
	"fmt"
	"regexp"
	"strings"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// NewResult builds a ValidationResult from collected field errors.
func NewResult(errors []ValidationError) *ValidationResult {
	return &ValidationResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// GetErrorsForField returns errors for a specific field
func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}

var digitsPattern = regexp.MustCompile(`^[0-9]+$`)

// IsDigits reports whether s is non-empty and contains only ASCII digits.
func IsDigits(s string) bool {
	return digitsPattern.MatchString(s)
}

// StripSpaces removes every space character from s.
func StripSpaces(s string) string {
	return strings.ReplaceAll(s, " ", "")
}

// RequireDigitsLen validates that value is all digits with a length in
// [minLen, maxLen]. Returns nil when valid.
func RequireDigitsLen(field, value string, minLen, maxLen int) *ValidationError {
	if !IsDigits(value) {
		return &ValidationError{
			Field:   field,
			Message: "value must contain only digits",
			Code:    "INVALID_CHARACTERS",
		}
	}
	if len(value) < minLen || len(value) > maxLen {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("value must be between %d and %d digits", minLen, maxLen),
			Code:    "INVALID_LENGTH",
		}
	}
	return nil
}

// RequireExactDigits validates that value is exactly n digits.
func RequireExactDigits(field, value string, n int) *ValidationError {
	if !IsDigits(value) || len(value) != n {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("value must be exactly %d digits", n),
			Code:    "INVALID_LENGTH",
		}
	}
	return nil
}

// RequireIntRange validates that value lies in [min, max].
func RequireIntRange(field string, value, min, max int) *ValidationError {
	if value < min || value > max {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("value must be between %d and %d", min, max),
			Code:    "OUT_OF_RANGE",
		}
	}
	return nil
}

// RequireMinLength validates that the trimmed value has at least n characters.
func RequireMinLength(field, value string, n int) *ValidationError {
	if len(strings.TrimSpace(value)) < n {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("value must be at least %d characters", n),
			Code:    "MIN_LENGTH_VIOLATION",
		}
	}
	return nil
}

// ValidateURL validates URL format
func ValidateURL(url string) bool {
	urlPattern := regexp.MustCompile(`^(https?)://[^\s/$.?#].[^\s]*$`)
	return urlPattern.MatchString(url)
}
