package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestCustomError(t *testing.T) {
	t.Parallel()

	err := NewCourseNotFoundError("intro-to-go")
	wrapped := fmt.Errorf("resolve course: %w", err)

	if !errors.Is(wrapped, ErrCourseNotFound) {
		t.Fatal("expected wrapped error to match ErrCourseNotFound")
	}

	var custom *CustomError
	if !errors.As(wrapped, &custom) {
		t.Fatal("expected errors.As to find CustomError")
	}
	if custom.Message != "course intro-to-go not found" {
		t.Errorf("Message = %q", custom.Message)
	}
	if custom.StatusMsg != "course not found" {
		t.Errorf("StatusMsg = %q", custom.StatusMsg)
	}
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("register: %w", NewValidationError("The name field is required.", "The email field is required."))
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatal("expected ErrValidationFailed")
	}

	var ve *ValidationError
	if !errors.As(err, &ve) || len(ve.Errors) != 2 {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestIs(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("x: %w", ErrTokenExpired)
	if !Is(err, ErrTokenInvalid, ErrTokenNotFound, ErrTokenExpired) {
		t.Error("expected match against the error list")
	}
	if Is(err, ErrTokenInvalid) {
		t.Error("unexpected match")
	}
}
