package user

import (
	"errors"
	"time"
)

type Role string

const (
	RoleJobSeeker Role = "job_seeker"
	RoleRecruiter Role = "recruiter"
)

// check to see whether the role is one of the two closed roles

func (r Role) IsValid() bool {
	switch r {
	case RoleJobSeeker, RoleRecruiter:
		return true
	default:
		return false
	}
}

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already in use")
)

type Education struct {
	Institution  string `json:"institution"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldOfStudy,omitempty"`
	StartDate    string `json:"startDate,omitempty"`
	EndDate      string `json:"endDate,omitempty"`
}

type WorkExperience struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	Description string `json:"description,omitempty"`
}

type User struct {
	ID           string           `json:"id"`
	Email        string           `json:"email"`
	PasswordHash string           `json:"-"` // never expose hash in JSON
	Name         string           `json:"name"`
	Role         Role             `json:"role"`
	Phone        string           `json:"phone,omitempty"`
	Location     string           `json:"location,omitempty"`
	Bio          string           `json:"bio,omitempty"`
	Skills       []string         `json:"skills,omitempty"`
	Education    []Education      `json:"education,omitempty"`
	Experience   []WorkExperience `json:"experience,omitempty"`
	ResumeURL    string           `json:"resumeUrl,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// UpdateProfileRequest is a patch document: nil fields are left untouched.
type UpdateProfileRequest struct {
	Name       *string           `json:"name" binding:"omitempty,min=2,max=120"`
	Phone      *string           `json:"phone" binding:"omitempty,max=40"`
	Location   *string           `json:"location" binding:"omitempty,max=120"`
	Bio        *string           `json:"bio" binding:"omitempty,max=2000"`
	Skills     *[]string         `json:"skills" binding:"omitempty,max=50,dive,min=1,max=60"`
	Education  *[]Education      `json:"education" binding:"omitempty,max=20"`
	Experience *[]WorkExperience `json:"experience" binding:"omitempty,max=20"`
	ResumeURL  *string           `json:"resumeUrl" binding:"omitempty,url"`
}
