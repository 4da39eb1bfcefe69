package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/codewright/jobhub/internal/domain/application"
	"github.com/codewright/jobhub/internal/domain/job"
)

func seedJob(t *testing.T, jobs *JobsRepo, ownerID string) job.Job {
	t.Helper()

	j, err := jobs.Create(context.Background(), job.CreateRequest{
		Title:       "Backend Engineer",
		Company:     "Acme",
		Location:    "Berlin",
		Description: "Build and run backend services.",
	}, ownerID)

	if err != nil {
		t.Fatalf("seed job: %v", err)
	}
	return j
}

func TestApplyRejectsDuplicate(t *testing.T) {
	jobs := NewJobsRepo()
	apps := NewApplicationsRepo(jobs)
	ctx := context.Background()

	j := seedJob(t, jobs, "recruiter-1")

	first, err := apps.Apply(ctx, application.CreateRequest{JobID: j.ID, UserID: "seeker-1"})
	if err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if first.Status != application.StatusPending {
		t.Fatalf("new application status = %q, want pending", first.Status)
	}

	_, err = apps.Apply(ctx, application.CreateRequest{JobID: j.ID, UserID: "seeker-1"})
	if !errors.Is(err, application.ErrAlreadyApplied) {
		t.Fatalf("duplicate apply err = %v, want ErrAlreadyApplied", err)
	}

	// a different user on the same job is fine
	if _, err := apps.Apply(ctx, application.CreateRequest{JobID: j.ID, UserID: "seeker-2"}); err != nil {
		t.Fatalf("second user apply: %v", err)
	}

	n, err := apps.CountForJob(ctx, j.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("count = %d, want 2", n)
	}
}

func TestApplyUnknownJob(t *testing.T) {
	jobs := NewJobsRepo()
	apps := NewApplicationsRepo(jobs)

	_, err := apps.Apply(context.Background(), application.CreateRequest{JobID: "missing", UserID: "seeker-1"})
	if !errors.Is(err, job.ErrNotFound) {
		t.Fatalf("err = %v, want job.ErrNotFound", err)
	}
}

func TestListForJobOwnership(t *testing.T) {
	jobs := NewJobsRepo()
	apps := NewApplicationsRepo(jobs)
	ctx := context.Background()

	j := seedJob(t, jobs, "recruiter-1")
	if _, err := apps.Apply(ctx, application.CreateRequest{JobID: j.ID, UserID: "seeker-1"}); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if _, err := apps.ListForJob(ctx, j.ID, "recruiter-2"); !errors.Is(err, job.ErrNotOwner) {
		t.Fatalf("non-owner list err = %v, want ErrNotOwner", err)
	}

	got, err := apps.ListForJob(ctx, j.ID, "recruiter-1")
	if err != nil {
		t.Fatalf("owner list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("owner list len = %d, want 1", len(got))
	}
}

func TestUpdateStatus(t *testing.T) {
	jobs := NewJobsRepo()
	apps := NewApplicationsRepo(jobs)
	ctx := context.Background()

	j := seedJob(t, jobs, "recruiter-1")
	a, err := apps.Apply(ctx, application.CreateRequest{JobID: j.ID, UserID: "seeker-1"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	tests := []struct {
		name      string
		id        string
		status    application.Status
		requester string
		wantErr   error
	}{
		{name: "owner moves to interviewing", id: a.ID, status: application.StatusInterviewing, requester: "recruiter-1"},
		{name: "any status can replace any other", id: a.ID, status: application.StatusPending, requester: "recruiter-1"},
		{name: "non-owner rejected", id: a.ID, status: application.StatusAccepted, requester: "recruiter-2", wantErr: job.ErrNotOwner},
		{name: "unknown application", id: "missing", status: application.StatusAccepted, requester: "recruiter-1", wantErr: application.ErrNotFound},
		{name: "unknown status", id: a.ID, status: application.Status("archived"), requester: "recruiter-1", wantErr: application.ErrInvalidStatus},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := apps.UpdateStatus(ctx, tc.id, tc.status, tc.requester)

			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if got.Status != tc.status {
				t.Fatalf("status = %q, want %q", got.Status, tc.status)
			}
		})
	}
}

func TestWithdraw(t *testing.T) {
	jobs := NewJobsRepo()
	apps := NewApplicationsRepo(jobs)
	ctx := context.Background()

	j := seedJob(t, jobs, "recruiter-1")
	a, err := apps.Apply(ctx, application.CreateRequest{JobID: j.ID, UserID: "seeker-1"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	if err := apps.Withdraw(ctx, a.ID, "seeker-2"); !errors.Is(err, application.ErrNotApplicant) {
		t.Fatalf("stranger withdraw err = %v, want ErrNotApplicant", err)
	}

	if err := apps.Withdraw(ctx, a.ID, "seeker-1"); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	if _, err := apps.GetByID(ctx, a.ID); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("get after withdraw err = %v, want ErrNotFound", err)
	}

	// withdrawing frees the slot for a fresh application
	if _, err := apps.Apply(ctx, application.CreateRequest{JobID: j.ID, UserID: "seeker-1"}); err != nil {
		t.Fatalf("re-apply after withdraw: %v", err)
	}
}
