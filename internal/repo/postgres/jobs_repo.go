package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/codewright/jobhub/internal/domain/job"
	"github.com/codewright/jobhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type JobsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewJobsRepo(pool *pgxpool.Pool, prom *observability.Prom) *JobsRepo {
	return &JobsRepo{pool: pool, prom: prom}
}

func (r *JobsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const jobColumns = `id, title, company, location, type, description,
	requirements, benefits, salary_min, salary_max, experience, is_referral,
	created_by, created_at, updated_at`

func scanJob(row pgx.Row) (job.Job, error) {
	var j job.Job
	var requirements, benefits []byte
	var salaryMin, salaryMax *int

	err := row.Scan(
		&j.ID, &j.Title, &j.Company, &j.Location, &j.Type, &j.Description,
		&requirements, &benefits, &salaryMin, &salaryMax,
		&j.Experience, &j.IsReferral,
		&j.CreatedBy, &j.CreatedAt, &j.UpdatedAt,
	)

	if err != nil {
		return job.Job{}, err
	}

	if err := json.Unmarshal(requirements, &j.Requirements); err != nil {
		return job.Job{}, err
	}
	if err := json.Unmarshal(benefits, &j.Benefits); err != nil {
		return job.Job{}, err
	}

	if salaryMin != nil && salaryMax != nil {
		j.Salary = &job.Salary{Min: *salaryMin, Max: *salaryMax}
	}

	return j, nil
}

// escapeLike makes user input match literally inside a LIKE/ILIKE pattern.
// The queries that take the result declare ESCAPE '\'.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func salaryBounds(s *job.Salary) (*int, *int) {
	if s == nil {
		return nil, nil
	}
	return &s.Min, &s.Max
}

func (r *JobsRepo) Create(ctx context.Context, req job.CreateRequest, ownerID string) (job.Job, error) {
	j := job.NewFromCreateRequest(req, ownerID)

	requirements, err := jsonOrEmptyArray(j.Requirements)
	if err != nil {
		return job.Job{}, err
	}
	benefits, err := jsonOrEmptyArray(j.Benefits)
	if err != nil {
		return job.Job{}, err
	}
	salaryMin, salaryMax := salaryBounds(j.Salary)

	err = r.observe("jobs.create", func() error {
		_, execErr := r.pool.Exec(ctx, `
			INSERT INTO jobs (id, title, company, location, type, description,
				requirements, benefits, salary_min, salary_max, experience,
				is_referral, created_by, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		`, j.ID, j.Title, j.Company, j.Location, j.Type, j.Description,
			requirements, benefits, salaryMin, salaryMax, j.Experience,
			j.IsReferral, j.CreatedBy, j.CreatedAt, j.UpdatedAt)
		return execErr
	})

	if err != nil {
		return job.Job{}, err
	}

	return j, nil
}

func (r *JobsRepo) GetByID(ctx context.Context, id string) (job.Job, error) {
	var j job.Job
	var err error

	err = r.observe("jobs.get_by_id", func() error {
		var scanErr error
		j, scanErr = scanJob(r.pool.QueryRow(ctx,
			`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return job.Job{}, job.ErrNotFound
		}
		return job.Job{}, err
	}

	return j, nil
}

// List pushes the conjunctive listing predicates into SQL and pages with
// LIMIT/OFFSET. The returned total is the pre-pagination filtered count.
func (r *JobsRepo) List(ctx context.Context, f job.ListFilter) ([]job.Job, int, error) {
	base := `SELECT ` + jobColumns + `, COUNT(*) OVER() AS total FROM jobs`

	var conds []string
	var args []interface{}

	argsPosition := 1

	if f.Keyword != nil {
		conds = append(conds, fmt.Sprintf(
			`(title ILIKE $%d ESCAPE '\' OR company ILIKE $%d ESCAPE '\' OR description ILIKE $%d ESCAPE '\')`,
			argsPosition, argsPosition, argsPosition))
		args = append(args, "%"+escapeLike(*f.Keyword)+"%")
		argsPosition++
	}

	if f.Location != nil {
		conds = append(conds, fmt.Sprintf(`location ILIKE $%d ESCAPE '\'`, argsPosition))
		args = append(args, "%"+escapeLike(*f.Location)+"%")
		argsPosition++
	}

	if f.JobType != nil {
		conds = append(conds, fmt.Sprintf("type = $%d", argsPosition))
		args = append(args, *f.JobType)
		argsPosition++
	}

	if f.IsReferral != nil {
		conds = append(conds, fmt.Sprintf("is_referral = $%d", argsPosition))
		args = append(args, *f.IsReferral)
		argsPosition++
	}

	// jobs with no salary never match once a bound is supplied
	if f.MinSalary != nil {
		conds = append(conds, fmt.Sprintf("salary_min >= $%d", argsPosition))
		args = append(args, *f.MinSalary)
		argsPosition++
	}

	if f.MaxSalary != nil {
		conds = append(conds, fmt.Sprintf("salary_max <= $%d", argsPosition))
		args = append(args, *f.MaxSalary)
		argsPosition++
	}

	query := base

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 10
	}

	// newest first, id as tiebreaker for a stable order
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", argsPosition, argsPosition+1)
	args = append(args, limit, (page-1)*limit)

	var rows pgx.Rows
	err := r.observe("jobs.list", func() error {
		var qErr error
		rows, qErr = r.pool.Query(ctx, query, args...)
		return qErr
	})

	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()

	out := make([]job.Job, 0, limit)
	total := 0

	for rows.Next() {
		var j job.Job
		var requirements, benefits []byte
		var salaryMin, salaryMax *int
		var t int

		err = rows.Scan(
			&j.ID, &j.Title, &j.Company, &j.Location, &j.Type, &j.Description,
			&requirements, &benefits, &salaryMin, &salaryMax,
			&j.Experience, &j.IsReferral,
			&j.CreatedBy, &j.CreatedAt, &j.UpdatedAt, &t,
		)

		if err != nil {
			return nil, 0, err
		}

		if err = json.Unmarshal(requirements, &j.Requirements); err != nil {
			return nil, 0, err
		}
		if err = json.Unmarshal(benefits, &j.Benefits); err != nil {
			return nil, 0, err
		}
		if salaryMin != nil && salaryMax != nil {
			j.Salary = &job.Salary{Min: *salaryMin, Max: *salaryMax}
		}

		total = t
		out = append(out, j)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	// a page past the end returns no rows, so the window count is lost;
	// the total still has to reflect the filtered set
	if len(out) == 0 && page > 1 {
		countQuery := "SELECT COUNT(*) FROM jobs"
		if len(conds) > 0 {
			countQuery += " WHERE " + strings.Join(conds, " AND ")
		}

		err = r.observe("jobs.count", func() error {
			return r.pool.QueryRow(ctx, countQuery, args[:len(args)-2]...).Scan(&total)
		})
		if err != nil {
			return nil, 0, err
		}
	}

	return out, total, nil
}

func (r *JobsRepo) ListByOwner(ctx context.Context, ownerID string) ([]job.Job, error) {
	var rows pgx.Rows

	err := r.observe("jobs.list_by_owner", func() error {
		var qErr error
		rows, qErr = r.pool.Query(ctx,
			`SELECT `+jobColumns+` FROM jobs WHERE created_by = $1 ORDER BY created_at DESC, id DESC`,
			ownerID)
		return qErr
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]job.Job, 0)

	for rows.Next() {
		var j job.Job
		var requirements, benefits []byte
		var salaryMin, salaryMax *int

		err = rows.Scan(
			&j.ID, &j.Title, &j.Company, &j.Location, &j.Type, &j.Description,
			&requirements, &benefits, &salaryMin, &salaryMax,
			&j.Experience, &j.IsReferral,
			&j.CreatedBy, &j.CreatedAt, &j.UpdatedAt,
		)

		if err != nil {
			return nil, err
		}

		if err = json.Unmarshal(requirements, &j.Requirements); err != nil {
			return nil, err
		}
		if err = json.Unmarshal(benefits, &j.Benefits); err != nil {
			return nil, err
		}
		if salaryMin != nil && salaryMax != nil {
			j.Salary = &job.Salary{Min: *salaryMin, Max: *salaryMax}
		}

		out = append(out, j)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

// Update enforces ownership before merging the patch: only the recruiter who
// created a job may change it. The check and the write share a transaction so
// ownership cannot change between them.
func (r *JobsRepo) Update(ctx context.Context, id string, req job.UpdateRequest, requesterID string) (updated job.Job, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() { _ = tx.Rollback(ctx) }()

	var current job.Job

	err = r.observe("jobs.update.lock", func() error {
		var scanErr error
		current, scanErr = scanJob(tx.QueryRow(ctx,
			`SELECT `+jobColumns+` FROM jobs WHERE id = $1 FOR UPDATE`, id))
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = job.ErrNotFound
		}
		return
	}

	if current.CreatedBy != requesterID {
		err = job.ErrNotOwner
		return
	}

	updated = current.ApplyPatch(req)

	requirements, err := jsonOrEmptyArray(updated.Requirements)
	if err != nil {
		return
	}
	benefits, err := jsonOrEmptyArray(updated.Benefits)
	if err != nil {
		return
	}
	salaryMin, salaryMax := salaryBounds(updated.Salary)

	err = r.observe("jobs.update.write", func() error {
		_, execErr := tx.Exec(ctx, `
			UPDATE jobs
			SET title = $2,
			    company = $3,
			    location = $4,
			    type = $5,
			    description = $6,
			    requirements = $7,
			    benefits = $8,
			    salary_min = $9,
			    salary_max = $10,
			    experience = $11,
			    is_referral = $12,
			    updated_at = $13
			WHERE id = $1
		`, updated.ID, updated.Title, updated.Company, updated.Location,
			updated.Type, updated.Description, requirements, benefits,
			salaryMin, salaryMax, updated.Experience, updated.IsReferral,
			updated.UpdatedAt)
		return execErr
	})

	if err != nil {
		return
	}

	err = tx.Commit(ctx)
	return
}

// Delete is a hard delete, same ownership rule as Update.
func (r *JobsRepo) Delete(ctx context.Context, id string, requesterID string) error {
	var createdBy string

	err := r.observe("jobs.delete.owner_check", func() error {
		return r.pool.QueryRow(ctx, `SELECT created_by FROM jobs WHERE id = $1`, id).Scan(&createdBy)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return job.ErrNotFound
		}
		return err
	}

	if createdBy != requesterID {
		return job.ErrNotOwner
	}

	err = r.observe("jobs.delete", func() error {
		tag, execErr := r.pool.Exec(ctx,
			`DELETE FROM jobs WHERE id = $1 AND created_by = $2`, id, requesterID)

		if execErr != nil {
			return execErr
		}
		if tag.RowsAffected() == 0 {
			return job.ErrNotFound
		}
		return nil
	})

	return err
}
