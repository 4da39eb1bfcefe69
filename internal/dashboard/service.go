// Package dashboard aggregates per-user summary counts for the two role
// dashboards.
package dashboard

import (
	"context"

	"github.com/codewright/jobhub/internal/domain/application"
	"github.com/codewright/jobhub/internal/domain/job"
)

type JobsRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]job.Job, error)
}

type ApplicationsRepository interface {
	ListForUser(ctx context.Context, userID string) ([]application.Application, error)
	CountForJob(ctx context.Context, jobID string) (int, error)
}

type RecruiterSummary struct {
	ActiveJobCount      int       `json:"activeJobCount"`
	TotalApplicantCount int       `json:"totalApplicantCount"`
	ReferralJobCount    int       `json:"referralJobCount"`
	Jobs                []job.Job `json:"jobs"`
}

type SeekerSummary struct {
	TotalApplications int                       `json:"totalApplications"`
	ByStatus          map[string]int            `json:"byStatus"`
	Applications      []application.Application `json:"applications"`
}

type Service struct {
	jobs JobsRepository
	apps ApplicationsRepository
}

func NewService(jobs JobsRepository, apps ApplicationsRepository) *Service {
	return &Service{jobs: jobs, apps: apps}
}

// RecruiterSummary counts the requester's own postings and the applications
// across them.
func (s *Service) RecruiterSummary(ctx context.Context, recruiterID string) (RecruiterSummary, error) {
	owned, err := s.jobs.ListByOwner(ctx, recruiterID)
	if err != nil {
		return RecruiterSummary{}, err
	}

	out := RecruiterSummary{
		ActiveJobCount: len(owned),
		Jobs:           owned,
	}

	for _, j := range owned {
		if j.IsReferral {
			out.ReferralJobCount++
		}

		n, err := s.apps.CountForJob(ctx, j.ID)
		if err != nil {
			return RecruiterSummary{}, err
		}
		out.TotalApplicantCount += n
	}

	return out, nil
}

// SeekerSummary counts the requester's applications grouped by status. The
// byStatus map always carries all four statuses, zeroes included.
func (s *Service) SeekerSummary(ctx context.Context, userID string) (SeekerSummary, error) {
	apps, err := s.apps.ListForUser(ctx, userID)
	if err != nil {
		return SeekerSummary{}, err
	}

	byStatus := map[string]int{
		string(application.StatusPending):      0,
		string(application.StatusInterviewing): 0,
		string(application.StatusAccepted):     0,
		string(application.StatusRejected):     0,
	}

	for _, a := range apps {
		byStatus[string(a.Status)]++
	}

	return SeekerSummary{
		TotalApplications: len(apps),
		ByStatus:          byStatus,
		Applications:      apps,
	}, nil
}
