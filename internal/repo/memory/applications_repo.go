package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/codewright/jobhub/internal/domain/application"
	"github.com/codewright/jobhub/internal/domain/job"
)

type ApplicationsRepo struct {
	mu    sync.RWMutex
	items map[string]application.Application
	jobs  *JobsRepo
}

// NewApplicationsRepo needs the jobs repo to enforce job existence and
// ownership, mirroring the joins the postgres repo does.
func NewApplicationsRepo(jobs *JobsRepo) *ApplicationsRepo {
	return &ApplicationsRepo{
		items: make(map[string]application.Application),
		jobs:  jobs,
	}
}

func (r *ApplicationsRepo) Apply(ctx context.Context, req application.CreateRequest) (application.Application, error) {
	if _, err := r.jobs.GetByID(ctx, req.JobID); err != nil {
		return application.Application{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// One application per (job, user); duplicate check under the same lock
	// as the insert.
	for _, a := range r.items {
		if a.JobID == req.JobID && a.UserID == req.UserID {
			return application.Application{}, application.ErrAlreadyApplied
		}
	}

	a := application.NewFromCreateRequest(req)
	r.items[a.ID] = a
	return a, nil
}

func (r *ApplicationsRepo) GetByID(ctx context.Context, id string) (application.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.items[id]
	if !ok {
		return application.Application{}, application.ErrNotFound
	}
	return a, nil
}

func (r *ApplicationsRepo) ListForUser(ctx context.Context, userID string) ([]application.Application, error) {
	r.mu.RLock()
	out := make([]application.Application, 0)
	for _, a := range r.items {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	r.mu.RUnlock()

	sortApplications(out)
	return out, nil
}

func (r *ApplicationsRepo) ListForJob(ctx context.Context, jobID, requesterID string) ([]application.Application, error) {
	j, err := r.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if j.CreatedBy != requesterID {
		return nil, job.ErrNotOwner
	}

	r.mu.RLock()
	out := make([]application.Application, 0)
	for _, a := range r.items {
		if a.JobID == jobID {
			out = append(out, a)
		}
	}
	r.mu.RUnlock()

	sortApplications(out)
	return out, nil
}

func (r *ApplicationsRepo) UpdateStatus(ctx context.Context, id string, newStatus application.Status, requesterID string) (application.Application, error) {
	if !newStatus.IsValid() {
		return application.Application{}, application.ErrInvalidStatus
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.items[id]
	if !ok {
		return application.Application{}, application.ErrNotFound
	}

	j, err := r.jobs.GetByID(ctx, a.JobID)
	if err != nil {
		return application.Application{}, err
	}
	if j.CreatedBy != requesterID {
		return application.Application{}, job.ErrNotOwner
	}

	a.Status = newStatus
	a.UpdatedAt = time.Now().UTC()
	r.items[id] = a
	return a, nil
}

func (r *ApplicationsRepo) Withdraw(ctx context.Context, id, requesterID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.items[id]
	if !ok {
		return application.ErrNotFound
	}
	if a.UserID != requesterID {
		return application.ErrNotApplicant
	}

	delete(r.items, id)
	return nil
}

func (r *ApplicationsRepo) CountForJob(ctx context.Context, jobID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, a := range r.items {
		if a.JobID == jobID {
			n++
		}
	}
	return n, nil
}

func sortApplications(apps []application.Application) {
	sort.Slice(apps, func(a, b int) bool {
		if apps[a].CreatedAt.Equal(apps[b].CreatedAt) {
			return apps[a].ID > apps[b].ID
		}
		return apps[a].CreatedAt.After(apps[b].CreatedAt)
	})
}
