// Package memory holds map-backed repositories with the same method sets as
// the postgres ones. They back local development without a database and the
// handler tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/codewright/jobhub/internal/domain/job"
	"github.com/codewright/jobhub/internal/listing"
)

type JobsRepo struct {
	mu    sync.RWMutex
	items map[string]job.Job
}

func NewJobsRepo() *JobsRepo {
	return &JobsRepo{
		items: make(map[string]job.Job),
	}
}

func (r *JobsRepo) Create(ctx context.Context, req job.CreateRequest, ownerID string) (job.Job, error) {
	j := job.NewFromCreateRequest(req, ownerID)

	r.mu.Lock()
	r.items[j.ID] = j
	r.mu.Unlock()

	return j, nil
}

func (r *JobsRepo) GetByID(ctx context.Context, id string) (job.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	j, ok := r.items[id]
	if !ok {
		return job.Job{}, job.ErrNotFound
	}
	return j, nil
}

func (r *JobsRepo) List(ctx context.Context, f job.ListFilter) ([]job.Job, int, error) {
	r.mu.RLock()
	all := make([]job.Job, 0, len(r.items))
	for _, j := range r.items {
		all = append(all, j)
	}
	r.mu.RUnlock()

	sortNewestFirst(all)

	matched := listing.Filter(all, f)
	page, total := listing.Paginate(matched, f.Page, f.Limit)
	return page, total, nil
}

func (r *JobsRepo) ListByOwner(ctx context.Context, ownerID string) ([]job.Job, error) {
	r.mu.RLock()
	out := make([]job.Job, 0)
	for _, j := range r.items {
		if j.CreatedBy == ownerID {
			out = append(out, j)
		}
	}
	r.mu.RUnlock()

	sortNewestFirst(out)
	return out, nil
}

func (r *JobsRepo) Update(ctx context.Context, id string, req job.UpdateRequest, requesterID string) (job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.items[id]
	if !ok {
		return job.Job{}, job.ErrNotFound
	}
	if j.CreatedBy != requesterID {
		return job.Job{}, job.ErrNotOwner
	}

	j = j.ApplyPatch(req)
	r.items[id] = j
	return j, nil
}

func (r *JobsRepo) Delete(ctx context.Context, id string, requesterID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.items[id]
	if !ok {
		return job.ErrNotFound
	}
	if j.CreatedBy != requesterID {
		return job.ErrNotOwner
	}

	delete(r.items, id)
	return nil
}

// Newest first, id as tiebreaker so the order is stable across runs.
func sortNewestFirst(jobs []job.Job) {
	sort.Slice(jobs, func(a, b int) bool {
		if jobs[a].CreatedAt.Equal(jobs[b].CreatedAt) {
			return jobs[a].ID > jobs[b].ID
		}
		return jobs[a].CreatedAt.After(jobs[b].CreatedAt)
	})
}
