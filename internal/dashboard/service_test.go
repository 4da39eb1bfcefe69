package dashboard

import (
	"context"
	"testing"

	"github.com/codewright/jobhub/internal/domain/application"
	"github.com/codewright/jobhub/internal/domain/job"
)

type fakeJobs struct {
	byOwner map[string][]job.Job
}

func (f *fakeJobs) ListByOwner(ctx context.Context, ownerID string) ([]job.Job, error) {
	return f.byOwner[ownerID], nil
}

type fakeApps struct {
	byUser map[string][]application.Application
	byJob  map[string]int
}

func (f *fakeApps) ListForUser(ctx context.Context, userID string) ([]application.Application, error) {
	return f.byUser[userID], nil
}

func (f *fakeApps) CountForJob(ctx context.Context, jobID string) (int, error) {
	return f.byJob[jobID], nil
}

func TestRecruiterSummary(t *testing.T) {
	jobs := &fakeJobs{byOwner: map[string][]job.Job{
		"recruiter-1": {
			{ID: "j1", Title: "Backend Engineer", IsReferral: true, CreatedBy: "recruiter-1"},
			{ID: "j2", Title: "SRE", CreatedBy: "recruiter-1"},
		},
	}}
	apps := &fakeApps{byJob: map[string]int{"j1": 3, "j2": 1}}

	svc := NewService(jobs, apps)

	got, err := svc.RecruiterSummary(context.Background(), "recruiter-1")
	if err != nil {
		t.Fatalf("RecruiterSummary: %v", err)
	}

	if got.ActiveJobCount != 2 {
		t.Fatalf("activeJobCount = %d, want 2", got.ActiveJobCount)
	}
	if got.TotalApplicantCount != 4 {
		t.Fatalf("totalApplicantCount = %d, want 4", got.TotalApplicantCount)
	}
	if got.ReferralJobCount != 1 {
		t.Fatalf("referralJobCount = %d, want 1", got.ReferralJobCount)
	}
}

func TestRecruiterSummaryEmpty(t *testing.T) {
	svc := NewService(&fakeJobs{byOwner: map[string][]job.Job{}}, &fakeApps{})

	got, err := svc.RecruiterSummary(context.Background(), "recruiter-9")
	if err != nil {
		t.Fatalf("RecruiterSummary: %v", err)
	}
	if got.ActiveJobCount != 0 || got.TotalApplicantCount != 0 || got.ReferralJobCount != 0 {
		t.Fatalf("expected zero summary, got %+v", got)
	}
}

func TestSeekerSummary(t *testing.T) {
	apps := &fakeApps{byUser: map[string][]application.Application{
		"seeker-1": {
			{ID: "a1", Status: application.StatusPending},
			{ID: "a2", Status: application.StatusPending},
			{ID: "a3", Status: application.StatusAccepted},
		},
	}}

	svc := NewService(&fakeJobs{}, apps)

	got, err := svc.SeekerSummary(context.Background(), "seeker-1")
	if err != nil {
		t.Fatalf("SeekerSummary: %v", err)
	}

	if got.TotalApplications != 3 {
		t.Fatalf("totalApplications = %d, want 3", got.TotalApplications)
	}
	if got.ByStatus["pending"] != 2 || got.ByStatus["accepted"] != 1 {
		t.Fatalf("unexpected byStatus: %v", got.ByStatus)
	}

	// zero statuses are present, not missing
	if _, ok := got.ByStatus["rejected"]; !ok {
		t.Fatalf("byStatus missing rejected bucket: %v", got.ByStatus)
	}
	if _, ok := got.ByStatus["interviewing"]; !ok {
		t.Fatalf("byStatus missing interviewing bucket: %v", got.ByStatus)
	}
}
