package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"newsreel/internal/api"
	"newsreel/internal/logging"
	"newsreel/internal/queue"
	"newsreel/internal/testsupport"
)

func newTestServer(t *testing.T) (*api.Server, *queue.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	srv := api.NewServer(cfg.Paths.APIBind, api.NewQueueService(store), nil, logging.NewNop())
	return srv, store
}

func TestServerQueueListFiltersByStatus(t *testing.T) {
	srv, store := newTestServer(t)

	pending := testsupport.NewJob(t, store, queue.JobRequest{Topic: "One", ImagePath: "/tmp/a.png", Style: "modern"})
	done := testsupport.NewJob(t, store, queue.JobRequest{Topic: "Two", ImagePath: "/tmp/b.png", Style: "modern"})
	done.Status = queue.StatusCompleted
	if err := store.Update(context.Background(), done); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/queue?status=pending", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var items []api.QueueItem
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(items) != 1 || items[0].ID != pending.ID {
		t.Fatalf("expected only the pending job, got %+v", items)
	}
}

func TestServerQueueListRejectsUnknownStatus(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/queue?status=defrosting", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestServerJobLookupByJobID(t *testing.T) {
	srv, store := newTestServer(t)

	item := testsupport.NewJob(t, store, queue.JobRequest{Topic: "Launch", ImagePath: "/tmp/c.png", Style: "dramatic"})
	item.SetProgress("Rendering", "Compositing video", 42)
	if err := store.Update(context.Background(), item); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/"+item.JobID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var dto api.QueueItem
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if dto.JobID != item.JobID || dto.Progress.Percent != 42 {
		t.Fatalf("unexpected payload: %+v", dto)
	}
}

func TestServerJobLookupNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestServerStatusWithoutManager(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var status api.WorkflowStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if status.Running {
		t.Fatal("expected not running")
	}
}
