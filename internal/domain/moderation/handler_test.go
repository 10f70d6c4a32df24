package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/cloudban/cloudban-api/internal/middleware"
)

func passthrough(next http.Handler) http.Handler { return next }

// asAdmin stands in for the auth chain by placing the admin identity in context.
func asAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), middleware.AdminKey, "admin")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func newTestRouter(repo *memRepo, blocks staticBlocks) http.Handler {
	h := NewHandler(NewService(repo, blocks, nil))
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		h.MountPublic(r, passthrough)
		r.Route("/admin", func(r chi.Router) {
			r.Use(asAdmin)
			h.Mount(r)
		})
	})
	return r
}

func postJSON(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v (%s)", err, rec.Body.String())
	}
	return env
}

func TestReportApproveFlow(t *testing.T) {
	repo := newMemRepo()
	router := newTestRouter(repo, staticBlocks{})

	rec := postJSON(t, router, "/api/report", validReport())
	if rec.Code != http.StatusOK {
		t.Fatalf("report: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var submitted SubmitReportResponse
	json.Unmarshal(decode(t, rec).Data, &submitted)
	if submitted.ID == 0 {
		t.Fatal("expected record id in response")
	}

	rec = postJSON(t, router, "/api/admin/approve_ban", OperateRecordRequest{RecordID: submitted.ID, Note: "confirmed"})
	if rec.Code != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var decision DecisionResponse
	json.Unmarshal(decode(t, rec).Data, &decision)
	if decision.Record.Status != "approved" || decision.Record.Note != "confirmed" {
		t.Fatalf("unexpected decision %+v", decision.Record)
	}

	rec = postJSON(t, router, "/api/admin/reject_ban", OperateRecordRequest{RecordID: submitted.ID})
	if rec.Code != http.StatusConflict {
		t.Fatalf("second decision: expected 409, got %d", rec.Code)
	}
	if env := decode(t, rec); env.Error == nil || env.Error.Code != "CONFLICT" {
		t.Fatalf("expected CONFLICT code, got %s", rec.Body.String())
	}

	rec = postJSON(t, router, "/api/admin/approve_ban", OperateRecordRequest{RecordID: 999})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing record: expected 404, got %d", rec.Code)
	}
}

func TestReportValidation(t *testing.T) {
	router := newTestRouter(newMemRepo(), staticBlocks{})

	cases := map[string]func(r *SubmitReportRequest){
		"bad type":     func(r *SubmitReportRequest) { r.TargetType = "discord" },
		"short id":     func(r *SubmitReportRequest) { r.TargetID = "1234" },
		"long id":      func(r *SubmitReportRequest) { r.TargetID = "123456789012345678901" },
		"short reason": func(r *SubmitReportRequest) { r.Reason = "bad" },
		"short hwic":   func(r *SubmitReportRequest) { r.HWIC = "abc" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := validReport()
			mutate(req)
			rec := postJSON(t, router, "/api/report", req)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestReportAcceptsAnyEvidenceList(t *testing.T) {
	router := newTestRouter(newMemRepo(), staticBlocks{})

	req := validReport()
	req.Evidence = make([]string, 60)
	for i := range req.Evidence {
		req.Evidence[i] = "https://img.example/" + strings.Repeat("x", 3000)
	}
	rec := postJSON(t, router, "/api/report", req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = postJSON(t, router, "/api/admin/modify_ban_record", map[string]interface{}{"record_id": 1, "evidence": req.Evidence})
	if rec.Code != http.StatusOK {
		t.Fatalf("modify: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestReportFromBlockedDevice(t *testing.T) {
	router := newTestRouter(newMemRepo(), staticBlocks{"device-abc-123": true})

	rec := postJSON(t, router, "/api/report", validReport())
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestModifyRecordsActorAndFields(t *testing.T) {
	repo := newMemRepo()
	router := newTestRouter(repo, staticBlocks{})
	postJSON(t, router, "/api/report", validReport())

	rec := postJSON(t, router, "/api/admin/modify_ban_record", map[string]interface{}{"record_id": 1, "note": "seen"})
	if rec.Code != http.StatusOK {
		t.Fatalf("modify: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp ModifyResponse
	json.Unmarshal(decode(t, rec).Data, &resp)
	if len(resp.Updated) != 1 || resp.Updated[0] != "note" {
		t.Fatalf("unexpected updated list %v", resp.Updated)
	}
	if len(repo.actions) != 1 || repo.actions[0].User != "admin" {
		t.Fatalf("audit entry must carry the acting admin, got %+v", repo.actions)
	}

	rec = postJSON(t, router, "/api/admin/modify_ban_record", map[string]interface{}{"record_id": 1, "status": "banned"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid status: expected 422, got %d", rec.Code)
	}
}

func TestAdminReadViews(t *testing.T) {
	router := newTestRouter(newMemRepo(), staticBlocks{})
	postJSON(t, router, "/api/report", validReport())

	for _, path := range []string{
		"/api/admin/list_pending",
		"/api/admin/query_ban_records?status=pending&limit=10",
		"/api/admin/ban_stats",
		"/api/admin/ban_stats_detail",
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", path, rec.Code, rec.Body.String())
		}
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/list_pending", nil))
	var records []RecordResponse
	json.Unmarshal(decode(t, rec).Data, &records)
	if len(records) != 1 || records[0].HWIC != "device-abc-123" {
		t.Fatalf("admin view must include reporter fields, got %+v", records)
	}
}
