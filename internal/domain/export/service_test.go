package export

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cloudban/cloudban-api/internal/domain/banlist"
	"github.com/cloudban/cloudban-api/internal/pkg/storage"
)

type fixedSource struct {
	snap *banlist.Snapshot
	err  error
}

func (f *fixedSource) Snapshot(_ context.Context) (*banlist.Snapshot, error) {
	return f.snap, f.err
}

func testSnapshot() *banlist.Snapshot {
	return &banlist.Snapshot{
		GeneratedAt: time.Date(2026, 6, 1, 8, 30, 0, 0, time.UTC),
		Total:       1,
		Records: []banlist.PublicRecord{{
			TargetType: "qq",
			TargetID:   "12345",
			Reason:     "spamming links repeatedly",
			Evidence:   []string{"url1"},
		}},
	}
}

func readObject(t *testing.T, store storage.Storage, key string) *banlist.Snapshot {
	t.Helper()
	rc, err := store.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("get %s: %v", key, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read %s: %v", key, err)
	}
	var snap banlist.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("decode %s: %v", key, err)
	}
	return &snap
}

func TestExportWritesTimestampedAndLatest(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	svc := NewService(&fixedSource{snap: testSnapshot()}, store, "banlist")

	res, err := svc.Export(context.Background())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if res.Key != "banlist/banlist-20260601T083000Z.json" {
		t.Fatalf("unexpected key %q", res.Key)
	}
	if res.LatestKey != "banlist/latest.json" {
		t.Fatalf("unexpected latest key %q", res.LatestKey)
	}

	for _, key := range []string{res.Key, res.LatestKey} {
		snap := readObject(t, store, key)
		if snap.Total != 1 || snap.Records[0].TargetID != "12345" {
			t.Fatalf("%s: unexpected content %+v", key, snap)
		}
	}
}

func TestExportPropagatesSourceError(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	boom := errors.New("db down")
	svc := NewService(&fixedSource{err: boom}, store, "")

	if _, err := svc.Export(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected source error, got %v", err)
	}
	if ok, _ := store.Exists(context.Background(), LatestName); ok {
		t.Fatal("latest.json must not be written when the snapshot fails")
	}
}

func TestExportWithoutDestination(t *testing.T) {
	svc := NewService(&fixedSource{snap: testSnapshot()}, nil, "banlist")
	if svc.Enabled() {
		t.Fatal("expected export to be disabled")
	}
	if _, err := svc.Export(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}

	r := chi.NewRouter()
	NewHandler(svc).Mount(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/export_banlist", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestExportEndpoint(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	r := chi.NewRouter()
	NewHandler(NewService(&fixedSource{snap: testSnapshot()}, store, "")).Mount(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/export_banlist", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "latest.json") {
		t.Fatalf("expected latest key in response, got %s", rec.Body.String())
	}
}

func TestChangesBanlist(t *testing.T) {
	cases := []struct {
		payload string
		want    bool
	}{
		{`{"sender_instance_id":"a","event":{"type":"ban_approved","record_id":1}}`, true},
		{`{"sender_instance_id":"a","event":{"type":"ban_modified","record_id":1}}`, true},
		{`{"sender_instance_id":"a","event":{"type":"report_submitted"}}`, false},
		{`not json`, false},
	}
	for _, tc := range cases {
		if got := changesBanlist(tc.payload); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.payload, tc.want, got)
		}
	}
}
