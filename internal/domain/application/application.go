package application

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending      Status = "pending"
	StatusInterviewing Status = "interviewing"
	StatusAccepted     Status = "accepted"
	StatusRejected     Status = "rejected"
)

// Any status may move to any other; only membership in the closed set is
// checked.

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInterviewing, StatusAccepted, StatusRejected:
		return true
	default:
		return false
	}
}

var (
	ErrNotFound       = errors.New("application not found")
	ErrAlreadyApplied = errors.New("application already exists for this job and user")
	ErrInvalidStatus  = errors.New("invalid application status")
	ErrNotApplicant   = errors.New("requester is not the applicant")
)

type Application struct {
	ID        string    `json:"id"`
	JobID     string    `json:"jobId"`
	UserID    string    `json:"userId"`
	Status    Status    `json:"status"`
	Message   string    `json:"message,omitempty"`
	ResumeURL string    `json:"resumeUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateRequest struct {
	JobID     string `json:"-"`
	UserID    string `json:"-"`
	Message   string `json:"message" binding:"omitempty,max=2000"`
	ResumeURL string `json:"resumeUrl" binding:"omitempty,url"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// A factory to build an Application from the incoming DTO. New applications
// always start out pending.

func NewFromCreateRequest(req CreateRequest) Application {
	now := time.Now().UTC()
	return Application{
		ID:        uuid.NewString(),
		JobID:     req.JobID,
		UserID:    req.UserID,
		Status:    StatusPending,
		Message:   req.Message,
		ResumeURL: req.ResumeURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
