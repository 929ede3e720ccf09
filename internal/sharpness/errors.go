package sharpness

import "fmt"

// InvalidImageError reports a structurally malformed DecodedImage.
type InvalidImageError struct {
	Field  string
	Reason string
}

func (e *InvalidImageError) Error() string {
	return fmt.Sprintf("invalid image: %s %s", e.Field, e.Reason)
}

func newInvalidImageError(field, format string, args ...interface{}) *InvalidImageError {
	return &InvalidImageError{
		Field:  field,
		Reason: fmt.Sprintf(format, args...),
	}
}
