package worker

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/codewright/jobhub/internal/notifications"
	"github.com/codewright/jobhub/internal/tasks"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHealthHandlerTaskLookup(t *testing.T) {
	repo := newFakeTasksRepo()
	qt := queuedTask(t, tasks.TypeStatusChanged, tasks.StatusChangedPayload{
		ApplicationID: "app-1",
		JobID:         "job-1",
		ApplicantID:   "seeker-1",
		NewStatus:     "interviewing",
	})
	repo.next = qt

	w := newTestWorker(repo, notifications.NewLogNotifier())
	srv := w.HealthHandler()

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks/"+qt.ID, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestHealthHandlerReadiness(t *testing.T) {
	w := newTestWorker(newFakeTasksRepo(), notifications.NewLogNotifier())
	srv := w.HealthHandler()

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503 before the poller starts, got %d", rec.Code)
	}

	w.setReady(true)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}
