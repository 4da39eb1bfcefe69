package postgres

import (
	"context"
	"errors"

	"github.com/codewright/jobhub/internal/domain/application"
	"github.com/codewright/jobhub/internal/domain/job"
	"github.com/codewright/jobhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ApplicationsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewApplicationsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ApplicationsRepo {
	return &ApplicationsRepo{pool: pool, prom: prom}
}

func (r *ApplicationsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const applicationColumns = `id, job_id, user_id, status, message, resume_url, created_at, updated_at`

func scanApplication(row pgx.Row) (application.Application, error) {
	var a application.Application
	var status string

	err := row.Scan(&a.ID, &a.JobID, &a.UserID, &status, &a.Message, &a.ResumeURL, &a.CreatedAt, &a.UpdatedAt)

	if err != nil {
		return application.Application{}, err
	}

	a.Status = application.Status(status)
	return a, nil
}

func (r *ApplicationsRepo) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.BeginTx(ctx, pgx.TxOptions{})
}

// ApplyTx creates an application inside the caller's transaction. The
// existence check on the job, the duplicate check and the insert are one
// atomic unit; the unique constraint on (job_id, user_id) backstops the
// read-then-insert against concurrent applies.
func (r *ApplicationsRepo) ApplyTx(ctx context.Context, tx pgx.Tx, req application.CreateRequest) (app application.Application, err error) {
	var exists bool

	err = r.observe("applications.apply_tx.job_check", func() error {
		return tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM jobs WHERE id = $1)`, req.JobID).Scan(&exists)
	})

	if err != nil {
		return
	}

	if !exists {
		err = job.ErrNotFound
		return
	}

	err = r.observe("applications.apply_tx.duplicate_check", func() error {
		return tx.QueryRow(ctx, `SELECT EXISTS(
			SELECT 1 FROM applications
			WHERE job_id = $1 AND user_id = $2
		)`, req.JobID, req.UserID).Scan(&exists)
	})

	if err != nil {
		return
	}

	if exists {
		err = application.ErrAlreadyApplied
		return
	}

	app = application.NewFromCreateRequest(req)

	err = r.observe("applications.apply_tx.insert", func() error {
		_, e := tx.Exec(ctx, `
			INSERT INTO applications (id, job_id, user_id, status, message, resume_url, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`, app.ID, app.JobID, app.UserID, string(app.Status), app.Message, app.ResumeURL, app.CreatedAt, app.UpdatedAt)
		return e
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "applications_job_user_uniq" {
			err = application.ErrAlreadyApplied
			return
		}
		return
	}

	return
}

func (r *ApplicationsRepo) Apply(ctx context.Context, req application.CreateRequest) (app application.Application, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() { _ = tx.Rollback(ctx) }()

	app, err = r.ApplyTx(ctx, tx, req)

	if err != nil {
		return
	}

	err = tx.Commit(ctx)
	return
}

func (r *ApplicationsRepo) ListForUser(ctx context.Context, userID string) ([]application.Application, error) {
	var rows pgx.Rows

	err := r.observe("applications.list_for_user", func() error {
		var qErr error
		rows, qErr = r.pool.Query(ctx, `
			SELECT `+applicationColumns+`
			FROM applications
			WHERE user_id = $1
			ORDER BY created_at DESC, id DESC
		`, userID)
		return qErr
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	return collectApplications(rows)
}

// ListForJob is recruiter-facing: the requester must own the parent job.
func (r *ApplicationsRepo) ListForJob(ctx context.Context, jobID, requesterID string) ([]application.Application, error) {
	var createdBy string

	err := r.observe("applications.list_for_job.owner_check", func() error {
		return r.pool.QueryRow(ctx, `SELECT created_by FROM jobs WHERE id = $1`, jobID).Scan(&createdBy)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, job.ErrNotFound
		}
		return nil, err
	}

	if createdBy != requesterID {
		return nil, job.ErrNotOwner
	}

	var rows pgx.Rows

	err = r.observe("applications.list_for_job", func() error {
		var qErr error
		rows, qErr = r.pool.Query(ctx, `
			SELECT `+applicationColumns+`
			FROM applications
			WHERE job_id = $1
			ORDER BY created_at DESC, id DESC
		`, jobID)
		return qErr
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	return collectApplications(rows)
}

func collectApplications(rows pgx.Rows) ([]application.Application, error) {
	out := make([]application.Application, 0)

	for rows.Next() {
		var a application.Application
		var status string

		err := rows.Scan(&a.ID, &a.JobID, &a.UserID, &status, &a.Message, &a.ResumeURL, &a.CreatedAt, &a.UpdatedAt)

		if err != nil {
			return nil, err
		}

		a.Status = application.Status(status)
		out = append(out, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func (r *ApplicationsRepo) GetByID(ctx context.Context, id string) (application.Application, error) {
	var a application.Application
	var err error

	err = r.observe("applications.get_by_id", func() error {
		var scanErr error
		a, scanErr = scanApplication(r.pool.QueryRow(ctx,
			`SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id))
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return application.Application{}, application.ErrNotFound
		}
		return application.Application{}, err
	}

	return a, nil
}

// UpdateStatus overwrites the status. Only the owner of the parent job may
// move an application, and any status may replace any other.
func (r *ApplicationsRepo) UpdateStatus(ctx context.Context, id string, newStatus application.Status, requesterID string) (app application.Application, err error) {
	if !newStatus.IsValid() {
		err = application.ErrInvalidStatus
		return
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() { _ = tx.Rollback(ctx) }()

	var jobOwner string

	err = r.observe("applications.update_status.owner_check", func() error {
		return tx.QueryRow(ctx, `
			SELECT j.created_by
			FROM applications a
			JOIN jobs j ON j.id = a.job_id
			WHERE a.id = $1
			FOR UPDATE OF a
		`, id).Scan(&jobOwner)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = application.ErrNotFound
		}
		return
	}

	if jobOwner != requesterID {
		err = job.ErrNotOwner
		return
	}

	err = r.observe("applications.update_status.write", func() error {
		var scanErr error
		app, scanErr = scanApplication(tx.QueryRow(ctx, `
			UPDATE applications
			SET status = $2, updated_at = NOW()
			WHERE id = $1
			RETURNING `+applicationColumns,
			id, string(newStatus)))
		return scanErr
	})

	if err != nil {
		return
	}

	err = tx.Commit(ctx)
	return
}

// Withdraw hard-deletes an application. Only the applicant may withdraw.
func (r *ApplicationsRepo) Withdraw(ctx context.Context, id, requesterID string) error {
	var applicantID string

	err := r.observe("applications.withdraw.applicant_check", func() error {
		return r.pool.QueryRow(ctx, `SELECT user_id FROM applications WHERE id = $1`, id).Scan(&applicantID)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return application.ErrNotFound
		}
		return err
	}

	if applicantID != requesterID {
		return application.ErrNotApplicant
	}

	err = r.observe("applications.withdraw", func() error {
		tag, execErr := r.pool.Exec(ctx,
			`DELETE FROM applications WHERE id = $1 AND user_id = $2`, id, requesterID)

		if execErr != nil {
			return execErr
		}
		if tag.RowsAffected() == 0 {
			return application.ErrNotFound
		}
		return nil
	})

	return err
}

func (r *ApplicationsRepo) CountForJob(ctx context.Context, jobID string) (int, error) {
	var total int
	err := r.observe("applications.count_for_job", func() error {
		return r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM applications WHERE job_id = $1`, jobID).Scan(&total)
	})
	return total, err
}
