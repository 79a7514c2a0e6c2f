package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestImportTimeoutError(t *testing.T) {
	err := NewImportTimeout("projects/p/operations/import-1")

	if !errors.Is(err, ErrImportTimeout) {
		t.Fatal("expected errors.Is(err, ErrImportTimeout)")
	}

	var te *ImportTimeoutError
	if !errors.As(err, &te) {
		t.Fatal("expected errors.As to *ImportTimeoutError")
	}
	if te.Operation != "projects/p/operations/import-1" {
		t.Errorf("Operation = %q", te.Operation)
	}

	want := "import wait timed out: operation projects/p/operations/import-1 is still running"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIsClientError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"invalid input", fmt.Errorf("query: %w", ErrInvalidInput), true},
		{"content type", ErrUnsupportedContentType, true},
		{"conflicting", ErrConflictingSources, true},
		{"missing", ErrMissingSource, true},
		{"storage", fmt.Errorf("upload: %w", ErrStorage), false},
		{"timeout", NewImportTimeout("op"), false},
		{"plain", errors.New("boom"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsClientError(tc.err); got != tc.want {
				t.Errorf("IsClientError() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestStorageError(t *testing.T) {
	cause := errors.New("403 forbidden")
	err := error(&StorageError{Op: "upload", Bucket: "b", Object: "docs/a.pdf", Err: cause})

	if !errors.Is(err, ErrStorage) {
		t.Error("expected errors.Is(err, ErrStorage)")
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is(err, cause)")
	}
	if want := "upload docs/a.pdf to bucket b: 403 forbidden"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	ping := &StorageError{Op: "ping", Bucket: "b", Err: cause}
	if want := "ping bucket b: 403 forbidden"; ping.Error() != want {
		t.Errorf("Error() = %q, want %q", ping.Error(), want)
	}
	if IsClientError(err) {
		t.Error("storage errors are not client errors")
	}
}
