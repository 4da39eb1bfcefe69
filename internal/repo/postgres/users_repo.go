package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/codewright/jobhub/internal/domain/user"
	"github.com/codewright/jobhub/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const userColumns = `id, email, password_hash, name, role, phone, location, bio,
	skills, education, experience, resume_url, created_at, updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	var role string
	var skills, education, experience []byte

	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &role,
		&u.Phone, &u.Location, &u.Bio,
		&skills, &education, &experience,
		&u.ResumeURL, &u.CreatedAt, &u.UpdatedAt,
	)

	if err != nil {
		return user.User{}, err
	}

	u.Role = user.Role(role)

	if err := json.Unmarshal(skills, &u.Skills); err != nil {
		return user.User{}, err
	}
	if err := json.Unmarshal(education, &u.Education); err != nil {
		return user.User{}, err
	}
	if err := json.Unmarshal(experience, &u.Experience); err != nil {
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) Create(ctx context.Context, email, passwordHash, name string, role user.Role) (user.User, error) {
	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.observe("users.create", func() error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO users (id, email, password_hash, name, role, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, u.ID, u.Email, u.PasswordHash, u.Name, string(u.Role), u.CreatedAt, u.UpdatedAt)
		return err
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User
	var err error

	err = r.observe("users.get_by_email", func() error {
		var scanErr error
		u, scanErr = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User
	var err error

	err = r.observe("users.get_by_id", func() error {
		var scanErr error
		u, scanErr = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	return u, nil
}

// UpdateProfile merges the patch into the stored profile. Profiles are only
// mutated by their owner; the handler passes the authenticated user's own id.
func (r *UsersRepo) UpdateProfile(ctx context.Context, id string, req user.UpdateProfileRequest) (user.User, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}

	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Phone != nil {
		u.Phone = *req.Phone
	}
	if req.Location != nil {
		u.Location = *req.Location
	}
	if req.Bio != nil {
		u.Bio = *req.Bio
	}
	if req.Skills != nil {
		u.Skills = *req.Skills
	}
	if req.Education != nil {
		u.Education = *req.Education
	}
	if req.Experience != nil {
		u.Experience = *req.Experience
	}
	if req.ResumeURL != nil {
		u.ResumeURL = *req.ResumeURL
	}
	u.UpdatedAt = time.Now().UTC()

	skills, err := jsonOrEmptyArray(u.Skills)
	if err != nil {
		return user.User{}, err
	}
	education, err := jsonOrEmptyArray(u.Education)
	if err != nil {
		return user.User{}, err
	}
	experience, err := jsonOrEmptyArray(u.Experience)
	if err != nil {
		return user.User{}, err
	}

	err = r.observe("users.update_profile", func() error {
		_, execErr := r.pool.Exec(ctx, `
			UPDATE users
			SET name = $2,
			    phone = $3,
			    location = $4,
			    bio = $5,
			    skills = $6,
			    education = $7,
			    experience = $8,
			    resume_url = $9,
			    updated_at = $10
			WHERE id = $1
		`, u.ID, u.Name, u.Phone, u.Location, u.Bio, skills, education, experience, u.ResumeURL, u.UpdatedAt)
		return execErr
	})

	if err != nil {
		return user.User{}, err
	}

	return u, nil
}

// jsonOrEmptyArray marshals v, substituting the empty JSON array for nil
// slices so the JSONB columns never hold SQL NULL.
func jsonOrEmptyArray(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return []byte("[]"), nil
	}
	return b, nil
}
