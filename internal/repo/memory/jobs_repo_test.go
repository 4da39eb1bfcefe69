package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/codewright/jobhub/internal/domain/job"
)

func TestJobOwnershipEnforced(t *testing.T) {
	jobs := NewJobsRepo()
	ctx := context.Background()

	j := seedJob(t, jobs, "recruiter-1")

	title := "Senior Backend Engineer"

	if _, err := jobs.Update(ctx, j.ID, job.UpdateRequest{Title: &title}, "recruiter-2"); !errors.Is(err, job.ErrNotOwner) {
		t.Fatalf("non-owner update err = %v, want ErrNotOwner", err)
	}

	updated, err := jobs.Update(ctx, j.ID, job.UpdateRequest{Title: &title}, "recruiter-1")
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Title != title {
		t.Fatalf("title = %q, want %q", updated.Title, title)
	}
	if updated.CreatedBy != "recruiter-1" {
		t.Fatalf("ownership changed on update: %q", updated.CreatedBy)
	}

	if err := jobs.Delete(ctx, j.ID, "recruiter-2"); !errors.Is(err, job.ErrNotOwner) {
		t.Fatalf("non-owner delete err = %v, want ErrNotOwner", err)
	}
	if err := jobs.Delete(ctx, j.ID, "recruiter-1"); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := jobs.GetByID(ctx, j.ID); !errors.Is(err, job.ErrNotFound) {
		t.Fatalf("get after delete err = %v, want ErrNotFound", err)
	}
}

func TestListFiltersAndPaginates(t *testing.T) {
	jobs := NewJobsRepo()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := jobs.Create(ctx, job.CreateRequest{
			Title:       "Go Developer",
			Company:     "Acme",
			Location:    "Berlin",
			Description: "Services in Go, Postgres underneath.",
		}, "recruiter-1"); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := jobs.Create(ctx, job.CreateRequest{
		Title:       "Data Analyst",
		Company:     "Globex",
		Location:    "Remote",
		Description: "Dashboards and reporting.",
	}, "recruiter-2"); err != nil {
		t.Fatalf("create: %v", err)
	}

	kw := "go"
	page, total, err := jobs.List(ctx, job.ListFilter{Keyword: &kw, Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}
	if len(page) != 2 {
		t.Fatalf("page len = %d, want 2", len(page))
	}

	mine, err := jobs.ListByOwner(ctx, "recruiter-2")
	if err != nil {
		t.Fatalf("list by owner: %v", err)
	}
	if len(mine) != 1 || mine[0].Title != "Data Analyst" {
		t.Fatalf("unexpected owner listing: %+v", mine)
	}
}
