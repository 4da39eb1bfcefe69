package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/codewright/jobhub/internal/domain/job"
	"github.com/codewright/jobhub/internal/domain/task"
	"github.com/codewright/jobhub/internal/domain/user"
	"github.com/codewright/jobhub/internal/notifications"
	"github.com/codewright/jobhub/internal/observability"
)

type TasksRepository interface {
	ClaimNext(ctx context.Context, workerID string) (task.Task, error)
	GetByID(ctx context.Context, id string) (task.Task, error)
	MarkDone(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
	Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error
	RequeueStaleProcessing(ctx context.Context, lockTTL time.Duration) (int64, error)
}

type UsersRepository interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type JobsRepository interface {
	GetByID(ctx context.Context, id string) (job.Job, error)
}

type Config struct {
	PollInterval  time.Duration
	WorkerID      string
	Concurrency   int
	ShutdownGrace time.Duration
	LockTTL       time.Duration
}

type Worker struct {
	cfg      Config
	repo     TasksRepository
	users    UsersRepository
	jobs     JobsRepository
	notifier notifications.Notifier
	log      *slog.Logger
	metrics  *observability.TaskMetrics
	prom     *observability.Prom

	readyMu sync.RWMutex
	ready   bool
}

func New(cfg Config, repo TasksRepository, users UsersRepository, jobs JobsRepository, notifier notifications.Notifier, log *slog.Logger, metrics *observability.TaskMetrics, prom *observability.Prom) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 200 * time.Millisecond
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = 10 * time.Second
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 60 * time.Second
	}

	return &Worker{
		cfg:      cfg,
		repo:     repo,
		users:    users,
		jobs:     jobs,
		notifier: notifier,
		log:      log,
		metrics:  metrics,
		prom:     prom,
	}
}

func (w *Worker) setReady(v bool) {
	w.readyMu.Lock()
	w.ready = v
	w.readyMu.Unlock()
}

// Run polls for claimable tasks with cfg.Concurrency goroutines until ctx is
// cancelled, then waits up to ShutdownGrace for in-flight tasks.
func (w *Worker) Run(ctx context.Context) error {
	w.setReady(true)
	defer w.setReady(false)

	var wg sync.WaitGroup

	for i := 0; i < w.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.pollLoop(ctx)
		}()
	}

	// one janitor per process releasing locks of crashed workers
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.janitorLoop(ctx)
	}()

	<-ctx.Done()
	w.log.Info("worker shutting down", "grace", w.cfg.ShutdownGrace.String())

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(w.cfg.ShutdownGrace):
		w.log.Warn("shutdown grace elapsed with tasks still in flight")
	}

	return nil
}

func (w *Worker) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// drain everything claimable before sleeping again
			for {
				processed, err := w.ProcessOne(ctx)
				if err != nil {
					w.log.Error("process task", "err", err)
					break
				}
				if !processed {
					break
				}
			}
		}
	}
}

func (w *Worker) janitorLoop(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.LockTTL / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := w.repo.RequeueStaleProcessing(ctx, w.cfg.LockTTL)
			if err != nil {
				if ctx.Err() == nil {
					w.log.Error("requeue stale tasks", "err", err)
				}
				continue
			}
			if n > 0 {
				w.log.Warn("requeued stale tasks", "count", n)
			}
		}
	}
}
