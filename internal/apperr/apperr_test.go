package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("field %s is required", "title"), KindValidation},
		{"not found", NotFound("conversation not found"), KindNotFound},
		{"forbidden", Forbidden("not a participant"), KindForbidden},
		{"store", Store("insert message", errors.New("socket closed")), KindStore},
		{"wrapped", fmt.Errorf("outer: %w", NotFound("gone")), KindNotFound},
		{"foreign error", errors.New("plain"), 0},
		{"nil", nil, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := KindOf(tc.err); got != tc.want {
				t.Fatalf("KindOf = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := Store("insert message", errors.New("disk full"))
	if err.Error() != "insert message: disk full" {
		t.Fatalf("message = %q", err.Error())
	}

	if !errors.Is(err, err) {
		t.Fatal("errors.Is should match itself")
	}
	var e *Error
	if !errors.As(err, &e) || e.Err.Error() != "disk full" {
		t.Fatal("wrapped cause should be reachable via errors.As")
	}

	if Validation("title is required").Error() != "title is required" {
		t.Fatal("message-only error should print its message verbatim")
	}
}
