package favorites

import (
	"errors"
	"testing"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	st, err := OpenSQLite(dir)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}

	if _, err := st.Get(StorageKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := st.Set(StorageKey, `["a"]`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := st.Set(StorageKey, `["a","b"]`); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenSQLite(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	m := Load(reopened)
	if !m.Contains("a") || !m.Contains("b") || m.Set().Len() != 2 {
		t.Fatalf("unexpected favorites after reopen: %v", m.Set().IDs())
	}
}
