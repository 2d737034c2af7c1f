package localstore

import (
	"path/filepath"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_SetGet(t *testing.T) {
	s := openTest(t)

	if err := s.Set(KeyUserID, "7"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := s.Get(KeyUserID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "7" {
		t.Errorf("expected 7, got %q", got)
	}
}

func TestStore_GetMissingKey(t *testing.T) {
	s := openTest(t)

	if _, err := s.Get("no_such_key"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Overwrite(t *testing.T) {
	s := openTest(t)

	if err := s.Set(KeyCart, `[{"quantity":1}]`); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(KeyCart, `[]`); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(KeyCart)
	if err != nil {
		t.Fatal(err)
	}
	if got != `[]` {
		t.Errorf("expected overwritten value, got %q", got)
	}
}

func TestStore_DeleteIsIdempotent(t *testing.T) {
	s := openTest(t)

	if err := s.Set(KeyUserID, "42"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(KeyUserID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(KeyUserID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	// Deleting again is a no-op
	if err := s.Delete(KeyUserID); err != nil {
		t.Errorf("second Delete should not error: %v", err)
	}
}

func TestStore_ReopenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set(KeyUserID, "1234"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()

	got, err := s2.Get(KeyUserID)
	if err != nil {
		t.Fatal(err)
	}
	if got != "1234" {
		t.Errorf("expected persisted value 1234, got %q", got)
	}
}
