package store

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// storeContract runs the behaviour every Store implementation shares.
func storeContract(t *testing.T, s Store) {
	ctx := context.Background()

	if _, err := s.Load(ctx, ChatStateKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.Save(ctx, ChatStateKey, []byte(`{"v":1}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, ChatStateKey, []byte(`{"v":2}`)); err != nil {
		t.Fatalf("save again: %v", err)
	}
	if err := s.Save(ctx, AuthStateKey, []byte(`{}`)); err != nil {
		t.Fatalf("save auth: %v", err)
	}

	got, err := s.Load(ctx, ChatStateKey)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !bytes.Equal(got, []byte(`{"v":2}`)) {
		t.Errorf("expected latest payload, got %s", got)
	}

	infos, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 blobs, got %d", len(infos))
	}
	// Ordered by name: kenya-law-ai-chat < sheria-ai-auth
	if infos[0].Name != ChatStateKey || infos[0].Revision != 2 {
		t.Errorf("unexpected chat blob info: %+v", infos[0])
	}
	if infos[1].Revision != 1 {
		t.Errorf("expected auth revision 1, got %d", infos[1].Revision)
	}

	if err := s.Delete(ctx, AuthStateKey); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, AuthStateKey); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
	if _, err := s.Load(ctx, AuthStateKey); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSQLiteStoreContract(t *testing.T) {
	storeContract(t, newTestStore(t))
}

func TestMemoryStoreContract(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Save(ctx, AuthStateKey, []byte(`{"accessToken":"abc"}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	s.Close()

	s2, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	got, err := s2.Load(ctx, AuthStateKey)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != `{"accessToken":"abc"}` {
		t.Errorf("unexpected payload %s", got)
	}
}

func TestMemoryStoreLoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.Save(ctx, "k", []byte("abc"))

	got, _ := s.Load(ctx, "k")
	got[0] = 'z'

	again, _ := s.Load(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored payload mutated through Load result: %s", again)
	}
}

func TestCollectStats(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "stats.db")
	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	s.Save(ctx, ChatStateKey, []byte("12345"))
	s.Save(ctx, AuthStateKey, []byte("123"))

	st, err := CollectStats(ctx, s, path)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalBytes != 8 {
		t.Errorf("expected 8 bytes, got %d", st.TotalBytes)
	}
	if len(st.Blobs) != 2 {
		t.Errorf("expected 2 blobs, got %d", len(st.Blobs))
	}
	if st.DBSizeBytes == 0 {
		t.Error("expected non-zero db file size")
	}
}
