package utils

import (
	"strconv"
	"strings"

	"github.com/codewright/jobhub/internal/domain/job"
)

// BuildJobsListCacheKey derives a stable cache key from every predicate of a
// listing query. Any field change must produce a new key, so the version tag
// is bumped whenever the filter semantics change.
func BuildJobsListCacheKey(f job.ListFilter) string {
	str := func(p *string) string {
		if p == nil {
			return ""
		}
		return strings.ToLower(strings.TrimSpace(*p))
	}
	num := func(p *int) string {
		if p == nil {
			return ""
		}
		return strconv.Itoa(*p)
	}
	boolean := ""
	if f.IsReferral != nil {
		boolean = strconv.FormatBool(*f.IsReferral)
	}

	return "jobs:list:v1" +
		":kw=" + str(f.Keyword) +
		":loc=" + str(f.Location) +
		":type=" + str(f.JobType) +
		":ref=" + boolean +
		":min=" + num(f.MinSalary) +
		":max=" + num(f.MaxSalary) +
		":page=" + strconv.Itoa(f.Page) +
		":limit=" + strconv.Itoa(f.Limit)
}
