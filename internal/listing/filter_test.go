package listing

import (
	"strconv"
	"testing"

	"github.com/codewright/jobhub/internal/domain/job"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
func boolPtr(b bool) *bool    { return &b }

func sampleJobs() []job.Job {
	return []job.Job{
		{
			ID:          "j1",
			Title:       "Senior Frontend Engineer",
			Company:     "TechCorp",
			Location:    "San Francisco, CA",
			Type:        "Full-time",
			Description: "React work on a large product.",
			IsReferral:  true,
			Salary:      &job.Salary{Min: 120000, Max: 150000},
		},
		{
			ID:          "j2",
			Title:       "Backend Developer",
			Company:     "DataSystems",
			Location:    "Remote",
			Type:        "Full-time",
			Description: "Server-side logic in Go.",
			Salary:      &job.Salary{Min: 90000, Max: 120000},
		},
		{
			ID:          "j3",
			Title:       "Data Engineer",
			Company:     "NY Analytics",
			Location:    "New York, NY",
			Type:        "Contract",
			Description: "Pipelines and warehousing.",
			// no salary on purpose
		},
	}
}

func TestFilterEmptyFilterReturnsAllInOrder(t *testing.T) {
	jobs := sampleJobs()

	got := Filter(jobs, job.ListFilter{})

	if len(got) != len(jobs) {
		t.Fatalf("got %d jobs, want %d", len(got), len(jobs))
	}
	for i := range jobs {
		if got[i].ID != jobs[i].ID {
			t.Fatalf("order changed at %d: got %s want %s", i, got[i].ID, jobs[i].ID)
		}
	}
}

func TestFilterPredicates(t *testing.T) {
	tests := []struct {
		name    string
		filter  job.ListFilter
		wantIDs []string
	}{
		{
			name:    "keyword_matches_title_company_or_description",
			filter:  job.ListFilter{Keyword: strPtr("engineer")},
			wantIDs: []string{"j1", "j3"},
		},
		{
			name:    "keyword_is_case_insensitive",
			filter:  job.ListFilter{Keyword: strPtr("DATASYSTEMS")},
			wantIDs: []string{"j2"},
		},
		{
			name:    "location_substring",
			filter:  job.ListFilter{Location: strPtr("ny")},
			wantIDs: []string{"j3"},
		},
		{
			name:    "job_type_exact",
			filter:  job.ListFilter{JobType: strPtr("Contract")},
			wantIDs: []string{"j3"},
		},
		{
			name:    "referral_flag",
			filter:  job.ListFilter{IsReferral: boolPtr(true)},
			wantIDs: []string{"j1"},
		},
		{
			// conjunctive: both predicates must hold
			name: "keyword_and_location",
			filter: job.ListFilter{
				Keyword:  strPtr("engineer"),
				Location: strPtr("NY"),
			},
			wantIDs: []string{"j3"},
		},
		{
			// j2 has max >= 100000 but min < 100000, so it is excluded; jobs
			// without a salary are excluded too.
			name:    "min_salary_compares_against_salary_min",
			filter:  job.ListFilter{MinSalary: intPtr(100000)},
			wantIDs: []string{"j1"},
		},
		{
			name:    "max_salary_compares_against_salary_max",
			filter:  job.ListFilter{MaxSalary: intPtr(130000)},
			wantIDs: []string{"j2"},
		},
		{
			name:    "no_match",
			filter:  job.ListFilter{Keyword: strPtr("blockchain")},
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			got := Filter(sampleJobs(), tt.filter)

			if len(got) != len(tt.wantIDs) {
				t.Fatalf("got %d jobs, want %d (%v)", len(got), len(tt.wantIDs), tt.wantIDs)
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Fatalf("result[%d] = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestPaginate(t *testing.T) {
	jobs := make([]job.Job, 25)
	for i := range jobs {
		jobs[i] = job.Job{ID: "job-" + strconv.Itoa(i)}
	}

	tests := []struct {
		name      string
		page      int
		limit     int
		wantLen   int
		wantTotal int
		wantFirst string
	}{
		{"first_page", 1, 10, 10, 25, "job-0"},
		{"middle_page", 2, 10, 10, 25, "job-10"},
		{"last_partial_page", 3, 10, 5, 25, "job-20"},
		{"page_past_end", 4, 10, 0, 25, ""},
		{"zero_page_treated_as_first", 0, 10, 10, 25, "job-0"},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			got, total := Paginate(jobs, tt.page, tt.limit)

			if total != tt.wantTotal {
				t.Fatalf("total = %d, want %d", total, tt.wantTotal)
			}
			if len(got) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(got), tt.wantLen)
			}
			if tt.wantFirst != "" && got[0].ID != tt.wantFirst {
				t.Fatalf("first = %s, want %s", got[0].ID, tt.wantFirst)
			}
		})
	}
}

func TestTotalPages(t *testing.T) {
	if got := TotalPages(25, 10); got != 3 {
		t.Fatalf("TotalPages(25,10) = %d, want 3", got)
	}
	if got := TotalPages(0, 10); got != 0 {
		t.Fatalf("TotalPages(0,10) = %d, want 0", got)
	}
	if got := TotalPages(10, 10); got != 1 {
		t.Fatalf("TotalPages(10,10) = %d, want 1", got)
	}
}
