package config

import (
	"errors"
	"testing"
)

func TestCredentialLifecycle(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if _, err := LoadAPIKey(); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("load before save: err = %v, want ErrMissingAPIKey", err)
	}

	if err := SaveAPIKey("test-key-123"); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := LoadAPIKey()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != "test-key-123" {
		t.Errorf("key = %q, want test-key-123", got)
	}

	// Saving again replaces the previous value.
	if err := SaveAPIKey("replacement"); err != nil {
		t.Fatalf("re-save: %v", err)
	}
	if got, _ := LoadAPIKey(); got != "replacement" {
		t.Errorf("key = %q, want replacement", got)
	}

	if err := DeleteAPIKey(); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := LoadAPIKey(); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("load after delete: err = %v, want ErrMissingAPIKey", err)
	}
	// Deleting an absent credential is not an error.
	if err := DeleteAPIKey(); err != nil {
		t.Fatalf("double delete: %v", err)
	}
}

func TestSaveAPIKey_RejectsEmpty(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := SaveAPIKey(""); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("err = %v, want ErrMissingAPIKey", err)
	}
}
