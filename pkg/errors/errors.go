package errors

import (
	"errors"
	"fmt"
)

// ErrStoreUnavailable wraps failures of the backing store so handlers can
// tell them apart from business errors.
var ErrStoreUnavailable = errors.New("la base de données est indisponible")

// ValidationError is a client-side rule violation detected before any write.
// Message is user-facing (French) and returned as is by the API.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Invalid builds a ValidationError.
func Invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// AsValidation reports whether err carries a ValidationError.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Store marks err as a backing store failure, keeping the original cause.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
