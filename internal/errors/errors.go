package errors

import (
	"errors"
	"fmt"
)

// ErrNotFound covers lookups by slug, username or post id that match nothing.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when an identity tries to mutate content it does
// not own. Handlers recover from it by redirecting to a read-only view.
var ErrForbidden = errors.New("forbidden")

// ValidationError reports malformed input on a single field. Nothing is
// persisted when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is a field-level validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
