package job

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("job not found")
	ErrNotOwner = errors.New("requester does not own this job")
)

type Salary struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type Job struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Location     string    `json:"location"`
	Type         string    `json:"type,omitempty"`
	Description  string    `json:"description"`
	Requirements []string  `json:"requirements,omitempty"`
	Benefits     []string  `json:"benefits,omitempty"`
	Salary       *Salary   `json:"salary,omitempty"`
	Experience   string    `json:"experience,omitempty"`
	IsReferral   bool      `json:"isReferral"`
	CreatedBy    string    `json:"createdBy"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ListFilter carries the listing query. Pointer fields mean "no constraint"
// when nil. Page is 1-based.
type ListFilter struct {
	Keyword    *string
	Location   *string
	JobType    *string
	IsReferral *bool
	MinSalary  *int
	MaxSalary  *int
	Page       int
	Limit      int
}

type CreateRequest struct {
	Title        string   `json:"title" binding:"required,min=3,max=160"`
	Company      string   `json:"company" binding:"required,min=1,max=160"`
	Location     string   `json:"location" binding:"required,min=2,max=120"`
	Type         string   `json:"type" binding:"omitempty,max=60"`
	Description  string   `json:"description" binding:"required,min=10"`
	Requirements []string `json:"requirements" binding:"omitempty,max=50,dive,min=1"`
	Benefits     []string `json:"benefits" binding:"omitempty,max=50,dive,min=1"`
	Salary       *Salary  `json:"salary" binding:"omitempty"`
	Experience   string   `json:"experience" binding:"omitempty,max=60"`
	IsReferral   bool     `json:"isReferral"`
}

// UpdateRequest is a partial update: only non-nil fields are merged into the
// stored job.
type UpdateRequest struct {
	Title        *string   `json:"title" binding:"omitempty,min=3,max=160"`
	Company      *string   `json:"company" binding:"omitempty,min=1,max=160"`
	Location     *string   `json:"location" binding:"omitempty,min=2,max=120"`
	Type         *string   `json:"type" binding:"omitempty,max=60"`
	Description  *string   `json:"description" binding:"omitempty,min=10"`
	Requirements *[]string `json:"requirements" binding:"omitempty,max=50,dive,min=1"`
	Benefits     *[]string `json:"benefits" binding:"omitempty,max=50,dive,min=1"`
	Salary       *Salary   `json:"salary" binding:"omitempty"`
	Experience   *string   `json:"experience" binding:"omitempty,max=60"`
	IsReferral   *bool     `json:"isReferral"`
}

// A factory to build a Job from the incoming DTO. Ownership is fixed at
// creation time and never changes afterwards.

func NewFromCreateRequest(req CreateRequest, ownerID string) Job {
	now := time.Now().UTC()
	return Job{
		ID:           uuid.NewString(),
		Title:        req.Title,
		Company:      req.Company,
		Location:     req.Location,
		Type:         req.Type,
		Description:  req.Description,
		Requirements: req.Requirements,
		Benefits:     req.Benefits,
		Salary:       req.Salary,
		Experience:   req.Experience,
		IsReferral:   req.IsReferral,
		CreatedBy:    ownerID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ApplyPatch merges the non-nil fields of req into j and bumps UpdatedAt.
func (j Job) ApplyPatch(req UpdateRequest) Job {
	if req.Title != nil {
		j.Title = *req.Title
	}
	if req.Company != nil {
		j.Company = *req.Company
	}
	if req.Location != nil {
		j.Location = *req.Location
	}
	if req.Type != nil {
		j.Type = *req.Type
	}
	if req.Description != nil {
		j.Description = *req.Description
	}
	if req.Requirements != nil {
		j.Requirements = *req.Requirements
	}
	if req.Benefits != nil {
		j.Benefits = *req.Benefits
	}
	if req.Salary != nil {
		j.Salary = req.Salary
	}
	if req.Experience != nil {
		j.Experience = *req.Experience
	}
	if req.IsReferral != nil {
		j.IsReferral = *req.IsReferral
	}
	j.UpdatedAt = time.Now().UTC()
	return j
}
