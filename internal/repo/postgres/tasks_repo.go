package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/codewright/jobhub/internal/domain/task"
	"github.com/codewright/jobhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TasksRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewTasksRepo(pool *pgxpool.Pool, prom *observability.Prom) *TasksRepo {
	return &TasksRepo{pool: pool, prom: prom}
}

func (r *TasksRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

const taskColumns = `id, type, payload, status, attempts, max_attempts,
	run_at, locked_at, locked_by, last_error, idempotency_key, user_id,
	created_at, updated_at`

func scanTask(row pgx.Row) (task.Task, error) {
	var t task.Task
	var status string

	err := row.Scan(
		&t.ID, &t.Type, &t.Payload, &status,
		&t.Attempts, &t.MaxAttempts,
		&t.RunAt, &t.LockedAt, &t.LockedBy,
		&t.LastError, &t.IdempotencyKey, &t.UserID,
		&t.CreatedAt, &t.UpdatedAt,
	)

	if err != nil {
		return task.Task{}, err
	}

	t.Status = task.Status(status)
	return t, nil
}

// Create inserts a pending task. When the request carries an idempotency key
// that is already taken, the previously queued task is returned instead of an
// error, so retried producers do not enqueue twice.
func (r *TasksRepo) Create(ctx context.Context, req task.CreateRequest) (task.Task, error) {
	t := task.New(req)
	var err error

	err = r.observe("tasks.create", func() error {
		_, err = r.pool.Exec(ctx, `INSERT INTO tasks(
			id, type, payload, status, attempts, max_attempts,
			run_at, locked_at, locked_by, last_error, idempotency_key, user_id,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		`, t.ID, t.Type, t.Payload, string(t.Status), t.Attempts, t.MaxAttempts,
			t.RunAt, t.LockedAt, t.LockedBy, t.LastError, t.IdempotencyKey, t.UserID,
			t.CreatedAt, t.UpdatedAt)
		return err
	})

	if err != nil {
		if IsUniqueViolation(err) && req.IdempotencyKey != nil {
			return r.GetByIdempotencyKey(ctx, *req.IdempotencyKey)
		}
		return task.Task{}, err
	}

	return t, nil
}

// CreateTx is Create inside a caller-owned transaction. No idempotency
// fallback here: a unique violation aborts the transaction, so the caller has
// to treat any error as fatal.
func (r *TasksRepo) CreateTx(ctx context.Context, tx pgx.Tx, req task.CreateRequest) (task.Task, error) {
	t := task.New(req)
	var err error

	err = r.observe("tasks.create_tx", func() error {
		_, err = tx.Exec(ctx, `INSERT INTO tasks(
			id, type, payload, status, attempts, max_attempts,
			run_at, locked_at, locked_by, last_error, idempotency_key, user_id,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		`, t.ID, t.Type, t.Payload, string(t.Status), t.Attempts, t.MaxAttempts,
			t.RunAt, t.LockedAt, t.LockedBy, t.LastError, t.IdempotencyKey, t.UserID,
			t.CreatedAt, t.UpdatedAt)
		return err
	})

	if err != nil {
		return task.Task{}, err
	}

	return t, nil
}

// ClaimNext claims the next runnable task in a single statement using the
// SKIP LOCKED pattern, so competing workers never grab the same row.
func (r *TasksRepo) ClaimNext(ctx context.Context, workerID string) (task.Task, error) {
	var t task.Task
	var err error

	err = r.observe("tasks.claim_next", func() error {
		var scanErr error
		t, scanErr = scanTask(r.pool.QueryRow(ctx, `
			WITH next AS (
				SELECT id
				FROM tasks
				WHERE status = 'pending'
				  AND run_at <= NOW()
				  AND attempts < max_attempts
				ORDER BY run_at ASC, created_at ASC
				FOR UPDATE SKIP LOCKED
				LIMIT 1
			)
			UPDATE tasks
			SET status = 'processing',
			    locked_at = NOW(),
			    locked_by = $1,
			    updated_at = NOW()
			WHERE id = (SELECT id FROM next)
			RETURNING `+taskColumns,
			workerID))
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound // nothing claimable right now
		}
		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) MarkDone(ctx context.Context, id string) error {
	var tag pgconn.CommandTag
	var err error

	err = r.observe("tasks.mark_done", func() error {
		tag, err = r.pool.Exec(ctx, `
			UPDATE tasks
			SET status = 'done',
			    locked_at = NULL,
			    locked_by = NULL,
			    last_error = NULL,
			    updated_at = NOW()
			WHERE id = $1
		`, id)
		return err
	})

	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return task.ErrNotFound
	}
	return nil
}

func (r *TasksRepo) MarkFailed(ctx context.Context, id string, errMsg string) error {
	var tag pgconn.CommandTag
	var err error

	err = r.observe("tasks.mark_failed", func() error {
		tag, err = r.pool.Exec(ctx, `
			UPDATE tasks
			SET status = 'failed',
			    locked_at = NULL,
			    locked_by = NULL,
			    last_error = $2,
			    updated_at = NOW()
			WHERE id = $1
		`, id, errMsg)
		return err
	})

	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return task.ErrNotFound
	}
	return nil
}

// Reschedule puts a task back to pending with a future run_at, bumping the
// attempt counter. Used for retries with backoff.
func (r *TasksRepo) Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error {
	var tag pgconn.CommandTag
	var err error

	err = r.observe("tasks.reschedule", func() error {
		tag, err = r.pool.Exec(ctx, `
			UPDATE tasks
			SET status = 'pending',
			    attempts = attempts + 1,
			    run_at = $2,
			    locked_at = NULL,
			    locked_by = NULL,
			    last_error = $3,
			    updated_at = NOW()
			WHERE id = $1
		`, id, runAt, errMsg)
		return err
	})

	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return task.ErrNotFound
	}
	return nil
}

func (r *TasksRepo) GetByID(ctx context.Context, id string) (task.Task, error) {
	var t task.Task
	var err error

	err = r.observe("tasks.get_by_id", func() error {
		var scanErr error
		t, scanErr = scanTask(r.pool.QueryRow(ctx,
			`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) GetByIdempotencyKey(ctx context.Context, key string) (task.Task, error) {
	var t task.Task
	var err error

	err = r.observe("tasks.get_by_idempotency_key", func() error {
		var scanErr error
		t, scanErr = scanTask(r.pool.QueryRow(ctx,
			`SELECT `+taskColumns+` FROM tasks WHERE idempotency_key = $1`, key))
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}

	return t, nil
}

// RequeueStaleProcessing releases tasks whose worker died holding the lock.
func (r *TasksRepo) RequeueStaleProcessing(ctx context.Context, lockTTL time.Duration) (int64, error) {
	secs := int64(lockTTL.Seconds())
	if secs <= 0 {
		secs = 30
	}

	var rows int64
	var err error

	err = r.observe("tasks.requeue_stale", func() error {
		tag, execErr := r.pool.Exec(ctx, `
			UPDATE tasks
			SET status = 'pending',
			    locked_at = NULL,
			    locked_by = NULL,
			    updated_at = NOW()
			WHERE status = 'processing'
			  AND locked_at IS NOT NULL
			  AND locked_at < NOW() - ($1 * INTERVAL '1 second')
		`, secs)

		if execErr != nil {
			return execErr
		}
		rows = tag.RowsAffected()
		return nil
	})

	return rows, err
}
