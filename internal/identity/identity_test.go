package identity

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadGeneratesStableID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.json")
	store := NewFileStore(path)

	first, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if first.UserID == "" {
		t.Fatal("expected a generated user id")
	}

	second, err := store.Load()
	if err != nil {
		t.Fatalf("load 2: %v", err)
	}
	if second.UserID != first.UserID {
		t.Fatalf("user id must be stable across loads: %s vs %s", first.UserID, second.UserID)
	}

	// A separate store (fresh device) gets a different id.
	other, err := NewFileStore(filepath.Join(t.TempDir(), "identity.json")).Load()
	if err != nil {
		t.Fatalf("load other: %v", err)
	}
	if other.UserID == first.UserID {
		t.Fatal("different devices must not share a user id")
	}
}

func TestSetDisplayNamePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.json")
	store := NewFileStore(path)

	id, err := store.SetDisplayName("Alice")
	if err != nil {
		t.Fatalf("set name: %v", err)
	}
	if id.DisplayName != "Alice" {
		t.Fatalf("expected display name set, got %q", id.DisplayName)
	}

	reloaded, err := store.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.DisplayName != "Alice" || reloaded.UserID != id.UserID {
		t.Fatalf("expected persisted identity, got %+v", reloaded)
	}
}

func TestLoadRecoversFromCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.json")
	if err := os.WriteFile(path, []byte("not json"), 0o600); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	id, err := NewFileStore(path).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if id.UserID == "" {
		t.Fatal("expected regenerated identity")
	}
}
