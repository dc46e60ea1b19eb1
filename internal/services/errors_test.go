package services_test

import (
	"errors"
	"fmt"
	"testing"

	"quill/internal/services"
)

func TestWrapTagsMarkerAndPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := services.Wrap(services.ErrSource, "fetch", "get feed", "source unreachable", cause)

	if !errors.Is(err, services.ErrSource) {
		t.Fatal("expected wrapped error to match ErrSource")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped error to match cause")
	}
	want := "source error: fetch: get feed: source unreachable: connection refused"
	if err.Error() != want {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "store", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatal("nil marker should default to ErrTransient")
	}
}

func TestKind(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{services.Wrap(services.ErrSource, "fetch", "", "", nil), "source"},
		{services.Wrap(services.ErrStorage, "store", "", "", nil), "storage"},
		{services.Wrap(services.ErrValidation, "import", "", "", nil), "validation"},
		{fmt.Errorf("wrapped: %w", services.ErrNotFound), "not_found"},
		{errors.New("plain"), "unknown"},
	}
	for _, tc := range cases {
		if got := services.Kind(tc.err); got != tc.want {
			t.Fatalf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
