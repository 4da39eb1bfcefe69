package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/codewright/jobhub/internal/config"
	"github.com/codewright/jobhub/internal/domain/application"
	"github.com/codewright/jobhub/internal/domain/job"
	"github.com/codewright/jobhub/internal/domain/task"
	"github.com/codewright/jobhub/internal/http/middlewares"
	"github.com/codewright/jobhub/internal/tasks"
	"github.com/codewright/jobhub/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

type ApplicationsRepository interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	ApplyTx(ctx context.Context, tx pgx.Tx, req application.CreateRequest) (application.Application, error)
	GetByID(ctx context.Context, id string) (application.Application, error)
	ListForUser(ctx context.Context, userID string) ([]application.Application, error)
	ListForJob(ctx context.Context, jobID, requesterID string) ([]application.Application, error)
	UpdateStatus(ctx context.Context, id string, newStatus application.Status, requesterID string) (application.Application, error)
	Withdraw(ctx context.Context, id, requesterID string) error
}

type TasksCreator interface {
	Create(ctx context.Context, req task.CreateRequest) (task.Task, error)
	CreateTx(ctx context.Context, tx pgx.Tx, req task.CreateRequest) (task.Task, error)
}

type JobReader interface {
	GetByID(ctx context.Context, id string) (job.Job, error)
}

type ApplicationsHandler struct {
	repo      ApplicationsRepository
	jobs      JobReader
	tasksRepo TasksCreator
}

func NewApplicationsHandler(repo ApplicationsRepository, jobs JobReader, tasksRepo TasksCreator) *ApplicationsHandler {
	return &ApplicationsHandler{repo: repo, jobs: jobs, tasksRepo: tasksRepo}
}

// Apply creates an application and enqueues the recruiter notification in
// the same transaction, so neither can exist without the other.
func (h *ApplicationsHandler) Apply(ctx *gin.Context) {
	jobID := ctx.Param("id")

	if !utils.IsUUID(jobID) {
		RespondBadRequest(ctx, "job id must be a valid UUID", nil)
		return
	}

	var req application.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// URL param is the source of truth
	req.JobID = jobID

	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	req.UserID = userID

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	parentJob, err := h.jobs.GetByID(cctx, jobID)
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			RespondNotFound(ctx, "Job not found")
			return
		}
		RespondInternal(ctx, "Could not apply to job")
		return
	}

	tx, err := h.repo.BeginTx(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not apply to job")
		return
	}

	defer func() { _ = tx.Rollback(cctx) }()

	app, err := h.repo.ApplyTx(cctx, tx, req)

	if err != nil {
		switch {
		case errors.Is(err, application.ErrAlreadyApplied):
			RespondConflict(ctx, "already_applied", "You have already applied to this job.")
		case errors.Is(err, job.ErrNotFound):
			RespondNotFound(ctx, "Job not found")
		default:
			RespondInternal(ctx, "Could not apply to job")
		}
		return
	}

	payload := tasks.ApplicationReceivedPayload{
		ApplicationID: app.ID,
		JobID:         app.JobID,
		ApplicantID:   app.UserID,
		RecruiterID:   parentJob.CreatedBy,
		RequestID:     requestIDFrom(ctx),
	}

	raw, err := tasks.EncodePayload(tasks.TypeApplicationReceived, payload)

	if err != nil {
		RespondInternal(ctx, "Could not apply to job")
		return
	}

	key := "application:received:" + app.ID
	recruiterID := parentJob.CreatedBy

	_, err = h.tasksRepo.CreateTx(cctx, tx, task.CreateRequest{
		Type:           string(tasks.TypeApplicationReceived),
		Payload:        raw,
		RunAt:          time.Now().UTC(),
		IdempotencyKey: &key,
		UserID:         &recruiterID,
	})
	if err != nil {
		// any failed insert aborts the open transaction, so there is
		// nothing to salvage here
		RespondInternal(ctx, "Could not apply to job")
		return
	}

	if err := tx.Commit(cctx); err != nil {
		RespondInternal(ctx, "Could not apply to job")
		return
	}

	ctx.JSON(http.StatusCreated, app)
}

// ListForJob is recruiter-only: applications for a job the requester owns.
func (h *ApplicationsHandler) ListForJob(ctx *gin.Context) {
	jobID := ctx.Param("id")

	if !utils.IsUUID(jobID) {
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

	apps, err := h.repo.ListForJob(cctx, jobID, userID)
	if err != nil {
		switch {
		case errors.Is(err, job.ErrNotFound):
			RespondNotFound(ctx, "Job not found")
		case errors.Is(err, job.ErrNotOwner):
			RespondForbidden(ctx, "You can only view applications for your own jobs")
		default:
			RespondInternal(ctx, "Could not list applications")
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"jobId":        jobID,
		"count":        len(apps),
		"applications": apps,
	})
}

// MyApplications lists the requester's applications, newest first.
func (h *ApplicationsHandler) MyApplications(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	apps, err := h.repo.ListForUser(cctx, userID)
	if err != nil {
		RespondInternal(ctx, "Could not list applications")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"count":        len(apps),
		"applications": apps,
	})
}

// UpdateStatus overwrites the application's status; only the owner of the
// parent job may do this, and the new status just has to be in the closed
// set, not "after" the old one.
func (h *ApplicationsHandler) UpdateStatus(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "application id must be a valid UUID", nil)
		return
	}

	var req application.UpdateStatusRequest

	if !BindJSON(ctx, &req) {
		return
	}

	newStatus := application.Status(req.Status)
	if !newStatus.IsValid() {
		RespondBadRequest(ctx, "status must be one of pending, interviewing, accepted, rejected", nil)
		return
	}

	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	updated, err := h.repo.UpdateStatus(cctx, id, newStatus, userID)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrNotFound):
			RespondNotFound(ctx, "Application not found")
		case errors.Is(err, job.ErrNotOwner):
			RespondForbidden(ctx, "You can only manage applications for your own jobs")
		case errors.Is(err, application.ErrInvalidStatus):
			RespondBadRequest(ctx, "status must be one of pending, interviewing, accepted, rejected", nil)
		default:
			RespondInternal(ctx, "Could not update application")
		}
		return
	}

	// notify the applicant; the status change stands even if enqueueing fails
	payload := tasks.StatusChangedPayload{
		ApplicationID: updated.ID,
		JobID:         updated.JobID,
		ApplicantID:   updated.UserID,
		NewStatus:     string(updated.Status),
		RequestID:     requestIDFrom(ctx),
	}

	if raw, err := tasks.EncodePayload(tasks.TypeStatusChanged, payload); err == nil {
		applicantID := updated.UserID
		_, _ = h.tasksRepo.Create(cctx, task.CreateRequest{
			Type:    string(tasks.TypeStatusChanged),
			Payload: raw,
			RunAt:   time.Now().UTC(),
			UserID:  &applicantID,
		})
	}

	ctx.JSON(http.StatusOK, updated)
}

// Withdraw removes the requester's own application.
func (h *ApplicationsHandler) Withdraw(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "application id must be a valid UUID", nil)
		return
	}

	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.repo.Withdraw(cctx, id, userID)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrNotFound):
			RespondNotFound(ctx, "Application not found")
		case errors.Is(err, application.ErrNotApplicant):
			RespondForbidden(ctx, "You can only withdraw your own applications")
		default:
			RespondInternal(ctx, "Could not withdraw application")
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}
