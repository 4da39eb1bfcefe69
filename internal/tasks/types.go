// Package tasks defines the asynchronous task types the worker executes and
// the typed payload codec for them.
package tasks

type Type string

const (
	// TypeApplicationReceived notifies a recruiter that somebody applied to
	// one of their jobs.
	TypeApplicationReceived Type = "application.received"

	// TypeStatusChanged notifies an applicant that a recruiter moved their
	// application to a new status.
	TypeStatusChanged Type = "application.status_changed"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeApplicationReceived, TypeStatusChanged:
		return true
	default:
		return false
	}
}
