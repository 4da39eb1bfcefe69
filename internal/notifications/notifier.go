package notifications

import "context"

type ApplicationReceivedInput struct {
	RecruiterEmail string
	RecruiterName  string
	JobTitle       string
	ApplicantName  string
	ApplicationID  string
}

type StatusChangedInput struct {
	ApplicantEmail string
	ApplicantName  string
	JobTitle       string
	NewStatus      string
	ApplicationID  string
}

type Notifier interface {
	SendApplicationReceived(ctx context.Context, input ApplicationReceivedInput) error
	SendStatusChanged(ctx context.Context, input StatusChangedInput) error
}
