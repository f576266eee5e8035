package domain

import (
	"fmt"
	"unicode/utf8"
)

// CheckMaxLength fails with a validation error when value has more than max characters.
// Limits follow the VARCHAR widths in the schema, which count characters, not bytes.
func CheckMaxLength(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return NewValidationError(fmt.Sprintf("%s must be at most %d characters", field, max))
	}
	return nil
}
