// Package listing implements the pure job-listing query: conjunctive
// filtering over a job collection followed by page/limit pagination.
// The postgres repo pushes the same predicates into SQL; this package is the
// reference semantics and what the in-memory repo runs.
package listing

import (
	"strings"

	"github.com/codewright/jobhub/internal/domain/job"
)

// Filter returns the jobs matching every supplied predicate, preserving the
// input order. A nil filter field means "no constraint".
func Filter(jobs []job.Job, f job.ListFilter) []job.Job {
	out := make([]job.Job, 0, len(jobs))

	for _, j := range jobs {
		if Matches(j, f) {
			out = append(out, j)
		}
	}

	return out
}

// Matches reports whether a single job satisfies all predicates (AND).
func Matches(j job.Job, f job.ListFilter) bool {
	if f.Keyword != nil {
		kw := strings.ToLower(*f.Keyword)

		// keyword matches any of title, company or description
		if !strings.Contains(strings.ToLower(j.Title), kw) &&
			!strings.Contains(strings.ToLower(j.Company), kw) &&
			!strings.Contains(strings.ToLower(j.Description), kw) {
			return false
		}
	}

	if f.Location != nil {
		if !strings.Contains(strings.ToLower(j.Location), strings.ToLower(*f.Location)) {
			return false
		}
	}

	if f.JobType != nil && j.Type != *f.JobType {
		return false
	}

	if f.IsReferral != nil && j.IsReferral != *f.IsReferral {
		return false
	}

	// Salary bounds: jobs without a salary are excluded whenever either bound
	// is supplied. The lower bound compares against salary.min, the upper
	// bound against salary.max.
	if f.MinSalary != nil || f.MaxSalary != nil {
		if j.Salary == nil {
			return false
		}
		if f.MinSalary != nil && j.Salary.Min < *f.MinSalary {
			return false
		}
		if f.MaxSalary != nil && j.Salary.Max > *f.MaxSalary {
			return false
		}
	}

	return true
}

// Paginate slices a filtered result into the 1-based page selected by
// f.Page/f.Limit and returns it together with the pre-pagination total.
func Paginate(jobs []job.Job, page, limit int) ([]job.Job, int) {
	total := len(jobs)

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}

	start := (page - 1) * limit
	if start >= total {
		return []job.Job{}, total
	}

	end := start + limit
	if end > total {
		end = total
	}

	return jobs[start:end], total
}

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// TotalPages computes ceil(total / limit) for callers building pagers.
func TotalPages(total, limit int) int {
	if limit < 1 {
		limit = DefaultLimit
	}
	return (total + limit - 1) / limit
}
