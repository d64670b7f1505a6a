package rerrors

import (
	"errors"
	"testing"
)

func TestParseErrorUnwraps(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := NewParseError("latitude", "abc", cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestStorageErrorAs(t *testing.T) {
	t.Parallel()

	err := NewStorageError("SaveSession", errors.New("disk full"))
	var target *StorageError
	if !errors.As(err, &target) {
		t.Fatal("errors.As should match *StorageError")
	}
	if target.Op != "SaveSession" {
		t.Errorf("Op = %q, want SaveSession", target.Op)
	}
}

func TestNotFoundMessage(t *testing.T) {
	t.Parallel()

	err := NewNotFound("session", "index=12")
	if got, want := err.Error(), "session not found: index=12"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
