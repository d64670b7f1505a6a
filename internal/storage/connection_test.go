package storage

import (
	"path/filepath"
	"testing"
)

func TestOpenSharesConnectionPerPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rapid.db")
	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer a.Close()

	b, err := Open(path)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer b.Close()

	if a != b {
		t.Errorf("Open(%q) returned distinct connections, want the same shared instance", path)
	}
}

func TestCloseReleasesOnLastReference(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rapid.db")
	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	b, err := Open(path)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}

	if err := a.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	registryMu.Lock()
	_, stillRegistered := registry[path]
	registryMu.Unlock()
	if !stillRegistered {
		t.Fatal("connection was closed while a second reference was still outstanding")
	}

	if err := b.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	registryMu.Lock()
	_, stillRegistered = registry[path]
	registryMu.Unlock()
	if stillRegistered {
		t.Error("connection remained registered after its last reference was closed")
	}
}

func TestOpenAppliesSchema(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rapid.db")
	conn, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer conn.Close()

	var count int
	if err := conn.DB().QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'Session'`).Scan(&count); err != nil {
		t.Fatalf("query schema: %v", err)
	}
	if count != 1 {
		t.Errorf("Session table not found after Open")
	}
}
