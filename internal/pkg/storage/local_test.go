package storage

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestLocalStoragePutGet(t *testing.T) {
	st, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	if ok, err := st.Exists(ctx, "banlist/latest.json"); err != nil || ok {
		t.Fatalf("expected missing object, got ok=%v err=%v", ok, err)
	}

	if err := st.Put(ctx, "banlist/latest.json", strings.NewReader(`{"total":0}`), "application/json"); err != nil {
		t.Fatalf("put: %v", err)
	}
	// Overwrite keeps a single object.
	if err := st.Put(ctx, "banlist/latest.json", strings.NewReader(`{"total":1}`), "application/json"); err != nil {
		t.Fatalf("put again: %v", err)
	}

	rc, err := st.Get(ctx, "banlist/latest.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if string(body) != `{"total":1}` {
		t.Fatalf("unexpected content %q", body)
	}
}

func TestLocalStorageGetMissing(t *testing.T) {
	st, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := st.Get(context.Background(), "nope.json"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
