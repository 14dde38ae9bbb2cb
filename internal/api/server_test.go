package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/javiermolinar/dayblocks/internal/config"
	"github.com/javiermolinar/dayblocks/internal/db"
	"github.com/javiermolinar/dayblocks/internal/schedule"
	"github.com/javiermolinar/dayblocks/internal/task"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, cfg config.ServerConfig) (*Server, *schedule.Store) {
	t.Helper()
	store := schedule.New(db.NewMemory())
	t.Cleanup(func() { _ = store.Close() })
	return New(store, zerolog.Nop(), Options{Config: cfg, DefaultColor: task.DefaultColor, Version: "test"}), store
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestCreateAndList(t *testing.T) {
	srv, _ := newTestServer(t, config.ServerConfig{})
	h := srv.Handler()

	rec := do(t, h, http.MethodPost, "/api/tasks", taskRequest{Name: "Focus", Start: "09:00", End: "10:00"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST status = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decode[task.Task](t, rec)
	if created.ID == 0 || created.Color != task.DefaultColor {
		t.Errorf("unexpected created task: %+v", created)
	}

	rec = do(t, h, http.MethodGet, "/api/tasks", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d", rec.Code)
	}
	tasks := decode[[]task.Task](t, rec)
	if len(tasks) != 1 || tasks[0].Name != "Focus" {
		t.Errorf("unexpected list: %+v", tasks)
	}
}

func TestListEmptyIsArray(t *testing.T) {
	srv, _ := newTestServer(t, config.ServerConfig{})
	rec := do(t, srv.Handler(), http.MethodGet, "/api/tasks", nil)
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("body = %q, want []", rec.Body.String())
	}
}

func TestErrorMapping(t *testing.T) {
	srv, store := newTestServer(t, config.ServerConfig{})
	h := srv.Handler()
	if _, err := store.Create(context.Background(), "Lunch", "12:00", "13:00", task.DefaultColor); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"overlap", http.MethodPost, "/api/tasks", taskRequest{Name: "X", Start: "12:30", End: "13:30"}, http.StatusConflict},
		{"touching ok", http.MethodPost, "/api/tasks", taskRequest{Name: "X", Start: "13:00", End: "14:00"}, http.StatusCreated},
		{"bad time", http.MethodPost, "/api/tasks", taskRequest{Name: "X", Start: "9:00", End: "10:00"}, http.StatusBadRequest},
		{"empty name", http.MethodPost, "/api/tasks", taskRequest{Start: "15:00", End: "16:00"}, http.StatusBadRequest},
		{"bad color", http.MethodPost, "/api/tasks", taskRequest{Name: "X", Start: "15:00", End: "16:00", Color: "red"}, http.StatusBadRequest},
		{"update missing", http.MethodPut, "/api/tasks/99", taskRequest{Name: "X", Start: "15:00", End: "16:00"}, http.StatusNotFound},
		{"bad id", http.MethodPut, "/api/tasks/abc", taskRequest{Name: "X", Start: "15:00", End: "16:00"}, http.StatusBadRequest},
		{"shift missing", http.MethodPut, "/api/tasks/99/shift", taskRequest{Name: "X", Start: "15:00", End: "16:00"}, http.StatusNotFound},
		{"delete missing", http.MethodDelete, "/api/tasks/99", nil, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestShift(t *testing.T) {
	srv, store := newTestServer(t, config.ServerConfig{})
	h := srv.Handler()
	ctx := context.Background()

	a, _ := store.Create(ctx, "A", "09:00", "10:00", task.DefaultColor)
	b, _ := store.Create(ctx, "B", "10:00", "11:00", task.DefaultColor)

	rec := do(t, h, http.MethodGet, "/api/tasks/1/shift?end=10:30", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("preview status = %d, body %s", rec.Code, rec.Body.String())
	}
	preview := decode[shiftPreviewResponse](t, rec)
	if preview.Delta != 30 || len(preview.Updates) != 1 || preview.Updates[0].NewStart != "10:30" {
		t.Errorf("unexpected preview: %+v", preview)
	}

	rec = do(t, h, http.MethodPut, "/api/tasks/1/shift", taskRequest{Name: a.Name, Start: a.Start, End: "10:30"})
	if rec.Code != http.StatusOK {
		t.Fatalf("shift status = %d, body %s", rec.Code, rec.Body.String())
	}

	tasks, _ := store.List(ctx)
	for _, tk := range tasks {
		if tk.ID == b.ID && (tk.Start != "10:30" || tk.End != "11:30") {
			t.Errorf("B = %s-%s, want 10:30-11:30", tk.Start, tk.End)
		}
	}
}

func TestPreviewShift_OriginalEnd(t *testing.T) {
	srv, store := newTestServer(t, config.ServerConfig{})
	h := srv.Handler()
	ctx := context.Background()

	_, _ = store.Create(ctx, "A", "09:00", "10:00", task.DefaultColor)
	b, _ := store.Create(ctx, "B", "10:30", "11:00", task.DefaultColor)

	tests := []struct {
		name      string
		query     string
		wantDelta int
		wantB     string // new start of B, empty when B does not move
	}{
		{"stored end", "end=10:45", 45, "11:15"},
		{"explicit original end", "end=10:45&original_end=10:30", 15, "10:45"},
		{"original end after B", "end=11:45&original_end=11:00", 45, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, "/api/tasks/1/shift?"+tt.query, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}
			preview := decode[shiftPreviewResponse](t, rec)
			if preview.Delta != tt.wantDelta {
				t.Errorf("delta = %d, want %d", preview.Delta, tt.wantDelta)
			}
			switch {
			case tt.wantB == "" && len(preview.Updates) != 0:
				t.Errorf("expected no updates, got %+v", preview.Updates)
			case tt.wantB != "" && (len(preview.Updates) != 1 || preview.Updates[0].ID != b.ID || preview.Updates[0].NewStart != tt.wantB):
				t.Errorf("updates = %+v, want B at %s", preview.Updates, tt.wantB)
			}
		})
	}

	if rec := do(t, h, http.MethodGet, "/api/tasks/1/shift?end=10:45&original_end=25:00", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid original_end status = %d, want 400", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/tasks/99/shift?end=10:45", nil); rec.Code != http.StatusNotFound {
		t.Errorf("missing task status = %d, want 404", rec.Code)
	}
}

func TestCheckOverlap(t *testing.T) {
	srv, store := newTestServer(t, config.ServerConfig{})
	h := srv.Handler()
	lunch, _ := store.Create(context.Background(), "Lunch", "12:00", "13:00", task.DefaultColor)

	rec := do(t, h, http.MethodGet, "/api/overlap?start=12:30&end=14:00", nil)
	got := decode[overlapResponse](t, rec)
	if !got.Overlap || len(got.Conflicts) != 1 || got.Conflicts[0].ID != lunch.ID {
		t.Errorf("unexpected overlap response: %+v", got)
	}

	rec = do(t, h, http.MethodGet, "/api/overlap?start=12:30&end=14:00&exclude_id=1", nil)
	if got := decode[overlapResponse](t, rec); got.Overlap {
		t.Errorf("expected no overlap when excluding lunch, got %+v", got)
	}

	rec = do(t, h, http.MethodGet, "/api/overlap?start=noon&end=14:00", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestDeleteAll(t *testing.T) {
	srv, store := newTestServer(t, config.ServerConfig{})
	ctx := context.Background()
	_, _ = store.Create(ctx, "A", "09:00", "10:00", task.DefaultColor)

	rec := do(t, srv.Handler(), http.MethodDelete, "/api/tasks", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if tasks, _ := store.List(ctx); len(tasks) != 0 {
		t.Errorf("expected empty store, got %d tasks", len(tasks))
	}
}

type brokenStorage struct{ *db.Memory }

func (brokenStorage) List(context.Context) ([]*task.Task, error) {
	return nil, errors.New("disk on fire")
}

func TestStorageErrorIsOpaque(t *testing.T) {
	store := schedule.New(brokenStorage{db.NewMemory()})
	srv := New(store, zerolog.Nop(), Options{})

	rec := do(t, srv.Handler(), http.MethodGet, "/api/tasks", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "disk on fire") {
		t.Errorf("storage detail leaked: %s", rec.Body.String())
	}
}

func TestRateLimit(t *testing.T) {
	srv, _ := newTestServer(t, config.ServerConfig{RatePerSec: 0.001, Burst: 1})
	h := srv.Handler()

	if rec := do(t, h, http.MethodGet, "/api/tasks", nil); rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/tasks", nil); rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", rec.Code)
	}
	// Health checks bypass the limiter.
	if rec := do(t, h, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d", rec.Code)
	}
}

func TestRequestIDAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t, config.ServerConfig{})
	h := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want abc-123", got)
	}

	rec = do(t, h, http.MethodGet, "/healthz", nil)
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("expected a generated request id")
	}

	rec = do(t, h, http.MethodGet, "/metrics", nil)
	if !strings.Contains(rec.Body.String(), `dayblocks_http_requests_total{code="200",method="GET",route="/healthz"} 2`) {
		t.Errorf("metrics missing healthz counter:\n%s", rec.Body.String())
	}
}
