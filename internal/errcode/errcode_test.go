package errcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, OK},
		{"validation", fmt.Errorf("create: %w", NewValidationError("email", "required")), Validation},
		{"credentials", ErrInvalidCredentials, InvalidCredentials},
		{"not found wrapped", fmt.Errorf("company 7: %w", ErrNotFound), ResourceMissing},
		{"unauthorized", ErrUnauthorized, Unauthorized},
		{"conflict", fmt.Errorf("email taken: %w", ErrConflict), Conflict},
		{"storage", Storage("find company", errors.New("connection reset")), SystemError},
	}
	for _, tc := range cases {
		if got := Code(tc.err); got != tc.want {
			t.Errorf("%s: Code() = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestValidationErrorMessageIsSorted(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"phone": "required", "email": "required"}}
	want := "validation failed: email: required; phone: required"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestStorageUnwraps(t *testing.T) {
	base := errors.New("disk full")
	err := Storage("insert posting", base)
	if !errors.Is(err, base) {
		t.Fatalf("expected storage error to unwrap to base error")
	}
	if Storage("noop", nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}
