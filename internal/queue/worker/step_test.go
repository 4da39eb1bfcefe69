package worker

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/codewright/jobhub/internal/domain/job"
	"github.com/codewright/jobhub/internal/domain/task"
	"github.com/codewright/jobhub/internal/domain/user"
	"github.com/codewright/jobhub/internal/notifications"
	"github.com/codewright/jobhub/internal/observability"
	"github.com/codewright/jobhub/internal/tasks"
	"github.com/prometheus/client_golang/prometheus"
)

type fakeTasksRepo struct {
	next        *task.Task
	done        []string
	failed      map[string]string
	rescheduled map[string]time.Time
}

func newFakeTasksRepo() *fakeTasksRepo {
	return &fakeTasksRepo{
		failed:      make(map[string]string),
		rescheduled: make(map[string]time.Time),
	}
}

func (f *fakeTasksRepo) ClaimNext(ctx context.Context, workerID string) (task.Task, error) {
	if f.next == nil {
		return task.Task{}, task.ErrNotFound
	}
	t := *f.next
	f.next = nil
	return t, nil
}

func (f *fakeTasksRepo) GetByID(ctx context.Context, id string) (task.Task, error) {
	if f.next != nil && f.next.ID == id {
		return *f.next, nil
	}
	return task.Task{}, task.ErrNotFound
}

func (f *fakeTasksRepo) MarkDone(ctx context.Context, id string) error {
	f.done = append(f.done, id)
	return nil
}

func (f *fakeTasksRepo) MarkFailed(ctx context.Context, id string, errMsg string) error {
	f.failed[id] = errMsg
	return nil
}

func (f *fakeTasksRepo) Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error {
	f.rescheduled[id] = runAt
	return nil
}

func (f *fakeTasksRepo) RequeueStaleProcessing(ctx context.Context, lockTTL time.Duration) (int64, error) {
	return 0, nil
}

type fakeUsersRepo struct {
	users map[string]user.User
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

type fakeJobsRepo struct {
	jobs map[string]job.Job
}

func (f *fakeJobsRepo) GetByID(ctx context.Context, id string) (job.Job, error) {
	j, ok := f.jobs[id]
	if !ok {
		return job.Job{}, job.ErrNotFound
	}
	return j, nil
}

type recordingNotifier struct {
	received []notifications.ApplicationReceivedInput
	changed  []notifications.StatusChangedInput
	err      error
}

func (r *recordingNotifier) SendApplicationReceived(ctx context.Context, in notifications.ApplicationReceivedInput) error {
	if r.err != nil {
		return r.err
	}
	r.received = append(r.received, in)
	return nil
}

func (r *recordingNotifier) SendStatusChanged(ctx context.Context, in notifications.StatusChangedInput) error {
	if r.err != nil {
		return r.err
	}
	r.changed = append(r.changed, in)
	return nil
}

func newTestWorker(repo *fakeTasksRepo, n notifications.Notifier) *Worker {
	users := &fakeUsersRepo{users: map[string]user.User{
		"recruiter-1": {ID: "recruiter-1", Email: "rec@acme.test", Name: "Rhea"},
		"seeker-1":    {ID: "seeker-1", Email: "seeker@me.test", Name: "Sam"},
	}}
	jobs := &fakeJobsRepo{jobs: map[string]job.Job{
		"job-1": {ID: "job-1", Title: "Backend Engineer", CreatedBy: "recruiter-1"},
	}}

	return New(Config{WorkerID: "test-1"}, repo, users, jobs, n,
		slog.New(slog.DiscardHandler),
		observability.NewTaskMetrics(),
		observability.NewProm(prometheus.NewRegistry()),
	)
}

func queuedTask(t *testing.T, typ tasks.Type, payload any) *task.Task {
	t.Helper()

	raw, err := tasks.EncodePayload(typ, payload)
	if err != nil {
		t.Fatalf("encode payload: %v", err)
	}

	qt := task.New(task.CreateRequest{Type: string(typ), Payload: raw})
	return &qt
}

func TestProcessOneSendsReceivedNotification(t *testing.T) {
	repo := newFakeTasksRepo()
	repo.next = queuedTask(t, tasks.TypeApplicationReceived, tasks.ApplicationReceivedPayload{
		ApplicationID: "app-1",
		JobID:         "job-1",
		ApplicantID:   "seeker-1",
		RecruiterID:   "recruiter-1",
	})

	n := &recordingNotifier{}
	w := newTestWorker(repo, n)

	processed, err := w.ProcessOne(context.Background())
	if err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}
	if !processed {
		t.Fatalf("expected a task to be processed")
	}

	if len(n.received) != 1 {
		t.Fatalf("notifications sent = %d, want 1", len(n.received))
	}
	got := n.received[0]
	if got.RecruiterEmail != "rec@acme.test" || got.JobTitle != "Backend Engineer" || got.ApplicantName != "Sam" {
		t.Fatalf("unexpected notification: %+v", got)
	}
	if len(repo.done) != 1 {
		t.Fatalf("tasks marked done = %d, want 1", len(repo.done))
	}
}

func TestProcessOneEmptyQueue(t *testing.T) {
	w := newTestWorker(newFakeTasksRepo(), &recordingNotifier{})

	processed, err := w.ProcessOne(context.Background())
	if err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}
	if processed {
		t.Fatalf("expected nothing to be processed")
	}
}

func TestProcessOneReschedulesOnFailure(t *testing.T) {
	repo := newFakeTasksRepo()
	qt := queuedTask(t, tasks.TypeStatusChanged, tasks.StatusChangedPayload{
		ApplicationID: "app-1",
		JobID:         "job-1",
		ApplicantID:   "seeker-1",
		NewStatus:     "accepted",
	})
	repo.next = qt

	n := &recordingNotifier{err: errors.New("provider down")}
	w := newTestWorker(repo, n)

	processed, err := w.ProcessOne(context.Background())
	if err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}
	if !processed {
		t.Fatalf("expected the task to be claimed")
	}

	if _, ok := repo.rescheduled[qt.ID]; !ok {
		t.Fatalf("expected task %s to be rescheduled", qt.ID)
	}
	if len(repo.failed) != 0 {
		t.Fatalf("task dead-lettered on first failure: %v", repo.failed)
	}
}

func TestProcessOneDeadLettersOnLastAttempt(t *testing.T) {
	repo := newFakeTasksRepo()
	qt := queuedTask(t, tasks.TypeStatusChanged, tasks.StatusChangedPayload{
		ApplicationID: "app-1",
		JobID:         "job-1",
		ApplicantID:   "seeker-1",
		NewStatus:     "accepted",
	})
	qt.Attempts = qt.MaxAttempts - 1
	repo.next = qt

	n := &recordingNotifier{err: errors.New("provider down")}
	w := newTestWorker(repo, n)

	if _, err := w.ProcessOne(context.Background()); err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}

	if _, ok := repo.failed[qt.ID]; !ok {
		t.Fatalf("expected task %s to be marked failed", qt.ID)
	}
	if len(repo.rescheduled) != 0 {
		t.Fatalf("task rescheduled past max attempts: %v", repo.rescheduled)
	}
}
