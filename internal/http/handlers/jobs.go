package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/codewright/jobhub/internal/cache"
	"github.com/codewright/jobhub/internal/config"
	"github.com/codewright/jobhub/internal/domain/job"
	"github.com/codewright/jobhub/internal/http/middlewares"
	"github.com/codewright/jobhub/internal/listing"
	"github.com/codewright/jobhub/internal/utils"
	"github.com/gin-gonic/gin"
)

type JobsRepository interface {
	Create(ctx context.Context, req job.CreateRequest, ownerID string) (job.Job, error)
	GetByID(ctx context.Context, id string) (job.Job, error)
	List(ctx context.Context, f job.ListFilter) ([]job.Job, int, error)
	ListByOwner(ctx context.Context, ownerID string) ([]job.Job, error)
	Update(ctx context.Context, id string, req job.UpdateRequest, requesterID string) (job.Job, error)
	Delete(ctx context.Context, id string, requesterID string) error
}

type JobsHandler struct {
	repo    JobsRepository
	cache   cache.Cache
	listTTL time.Duration
}

// NewJobsHandler takes an optional cache for the public read paths; nil
// disables caching.
func NewJobsHandler(repo JobsRepository, c cache.Cache, listTTL time.Duration) *JobsHandler {
	if listTTL <= 0 {
		listTTL = 5 * time.Second
	}
	return &JobsHandler{repo: repo, cache: c, listTTL: listTTL}
}

// Cached listing entries carry a generation suffix; bumping the generation on
// any job write orphans every cached page at once.
const jobsListGenKey = "jobs:list:gen"

func (h *JobsHandler) listGen(ctx context.Context) int {
	if h.cache == nil {
		return 0
	}
	var gen int
	if hit, err := h.cache.GetJSON(ctx, jobsListGenKey, &gen); err == nil && hit {
		return gen
	}
	return 0
}

func (h *JobsHandler) invalidateListings(ctx context.Context) {
	if h.cache == nil {
		return
	}
	_ = h.cache.SetJSON(ctx, jobsListGenKey, h.listGen(ctx)+1, 24*time.Hour)
}

func jobCacheKey(id string) string { return "jobs:id:" + id }

// invalidateJob evicts the single-job entry; listing pages are handled by the
// generation bump.
func (h *JobsHandler) invalidateJob(ctx context.Context, id string) {
	if h.cache == nil {
		return
	}
	_ = h.cache.Del(ctx, jobCacheKey(id))
}

type jobListResponse struct {
	Items      []job.Job `json:"items"`
	TotalCount int       `json:"totalCount"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"totalPages"`
}

func (h *JobsHandler) Create(ctx *gin.Context) {
	var req job.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	j, err := h.repo.Create(cctx, req, userID)

	if err != nil {
		RespondInternal(ctx, "Could not create job")
		return
	}

	h.invalidateListings(cctx)

	ctx.JSON(http.StatusCreated, j)
}

// List runs the public conjunctive filter + pagination query. Every
// constraint is optional; the ones supplied must all hold.
func (h *JobsHandler) List(ctx *gin.Context) {
	f, ok := parseListFilter(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	key := utils.BuildJobsListCacheKey(f) + ":g" + strconv.Itoa(h.listGen(cctx))

	if h.cache != nil {
		var cached jobListResponse
		if hit, err := h.cache.GetJSON(cctx, key, &cached); err == nil && hit {
			ctx.JSON(http.StatusOK, cached)
			return
		}
	}

	items, total, err := h.repo.List(cctx, f)

	if err != nil {
		RespondInternal(ctx, "Could not list jobs")
		return
	}

	resp := jobListResponse{
		Items:      items,
		TotalCount: total,
		Page:       f.Page,
		Limit:      f.Limit,
		TotalPages: listing.TotalPages(total, f.Limit),
	}

	if h.cache != nil {
		_ = h.cache.SetJSON(cctx, key, resp, h.listTTL)
	}

	ctx.JSON(http.StatusOK, resp)
}

func (h *JobsHandler) GetByID(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "job id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	key := jobCacheKey(id)

	if h.cache != nil {
		var cached job.Job
		if hit, err := h.cache.GetJSON(cctx, key, &cached); err == nil && hit {
			ctx.JSON(http.StatusOK, cached)
			return
		}
	}

	j, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			RespondNotFound(ctx, "Job not found")
			return
		}
		RespondInternal(ctx, "Could not fetch job")
		return
	}

	if h.cache != nil {
		_ = h.cache.SetJSON(cctx, key, j, h.listTTL)
	}

	ctx.JSON(http.StatusOK, j)
}

func (h *JobsHandler) Update(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "job id must be a valid UUID", nil)
		return
	}

	var req job.UpdateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	updated, err := h.repo.Update(cctx, id, req, userID)

	if err != nil {
		switch {
		case errors.Is(err, job.ErrNotFound):
			RespondNotFound(ctx, "Job not found")
		case errors.Is(err, job.ErrNotOwner):
			RespondForbidden(ctx, "You can only modify your own jobs")
		default:
			RespondInternal(ctx, "Could not update job")
		}
		return
	}

	h.invalidateListings(cctx)
	h.invalidateJob(cctx, id)

	ctx.JSON(http.StatusOK, updated)
}

func (h *JobsHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "job id must be a valid UUID", nil)
		return
	}

	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, id, userID)

	if err != nil {
		switch {
		case errors.Is(err, job.ErrNotFound):
			RespondNotFound(ctx, "Job not found")
		case errors.Is(err, job.ErrNotOwner):
			RespondForbidden(ctx, "You can only delete your own jobs")
		default:
			RespondInternal(ctx, "Could not delete job")
		}
		return
	}

	h.invalidateListings(cctx)
	h.invalidateJob(cctx, id)

	ctx.Status(http.StatusNoContent)
}

// MyJobs lists the requester's own postings, recruiter dashboard style.
func (h *JobsHandler) MyJobs(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	items, err := h.repo.ListByOwner(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not list jobs")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

func parseListFilter(ctx *gin.Context) (job.ListFilter, bool) {
	f := job.ListFilter{
		Page:  utils.ParsePage(ctx.Query("page")),
		Limit: utils.ParseLimit(ctx.Query("limit")),
	}

	strParam := func(name string) *string {
		if v := ctx.Query(name); v != "" {
			return &v
		}
		return nil
	}

	f.Keyword = strParam("keyword")
	f.Location = strParam("location")
	f.JobType = strParam("jobType")

	if v := ctx.Query("isReferral"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			RespondBadRequest(ctx, "isReferral must be true or false", nil)
			return job.ListFilter{}, false
		}
		f.IsReferral = &b
	}

	intParam := func(name string) (*int, bool) {
		v := ctx.Query(name)
		if v == "" {
			return nil, true
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			RespondBadRequest(ctx, name+" must be a non-negative integer", nil)
			return nil, false
		}
		return &n, true
	}

	var ok bool
	if f.MinSalary, ok = intParam("minSalary"); !ok {
		return job.ListFilter{}, false
	}
	if f.MaxSalary, ok = intParam("maxSalary"); !ok {
		return job.ListFilter{}, false
	}

	return f, true
}
