package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructors(t *testing.T) {
	cause := errors.New("boom")

	testCases := []struct {
		name     string
		err      *AppError
		errType  ErrorType
		expected int
	}{
		{"Validation", NewValidationError("bad", cause), ErrorTypeValidation, http.StatusBadRequest},
		{"Network", NewNetworkError("bad", cause), ErrorTypeNetwork, http.StatusBadGateway},
		{"Processing", NewProcessingError("bad", cause), ErrorTypeProcessing, http.StatusUnprocessableEntity},
		{"InvalidImage", NewInvalidImageError("bad", cause), ErrorTypeInvalidImage, http.StatusUnprocessableEntity},
		{"Timeout", NewTimeoutError("bad", cause), ErrorTypeTimeout, http.StatusGatewayTimeout},
		{"RateLimited", NewRateLimitedError("bad"), ErrorTypeRateLimited, http.StatusTooManyRequests},
		{"Internal", NewInternalError("bad", cause), ErrorTypeInternal, http.StatusInternalServerError},
		{"NotFound", NewNotFoundError("bad", cause), ErrorTypeNotFound, http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Type != tc.errType {
				t.Errorf("Expected type %s, got %s", tc.errType, tc.err.Type)
			}
			if tc.err.StatusCode != tc.expected {
				t.Errorf("Expected status %d, got %d", tc.expected, tc.err.StatusCode)
			}
		})
	}
}

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewInternalError("write failed", cause)

	if got := err.Error(); got != "internal: write failed (caused by: disk full)" {
		t.Errorf("Unexpected message: %s", got)
	}
	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to find the cause")
	}
	if got := NewValidationError("empty", nil).Error(); got != "validation: empty" {
		t.Errorf("Unexpected message: %s", got)
	}
}

func TestIsType_Wrapped(t *testing.T) {
	err := fmt.Errorf("handler: %w", NewNotFoundError("missing", nil))

	if !IsType(err, ErrorTypeNotFound) {
		t.Error("Expected wrapped error to match not_found")
	}
	if IsType(err, ErrorTypeValidation) {
		t.Error("Expected wrapped error not to match validation")
	}
	if IsType(errors.New("plain"), ErrorTypeInternal) {
		t.Error("Expected plain error not to match")
	}
}

func TestGetStatusCode(t *testing.T) {
	if got := GetStatusCode(fmt.Errorf("x: %w", NewTimeoutError("slow", nil))); got != http.StatusGatewayTimeout {
		t.Errorf("Expected 504, got %d", got)
	}
	if got := GetStatusCode(errors.New("plain")); got != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", got)
	}
}
