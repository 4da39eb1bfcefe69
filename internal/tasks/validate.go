package tasks

import "strings"

// ValidatePayload checks the decoded payload carries the IDs its task type
// needs before it is queued.
func ValidatePayload(t Type, payload any) error {
	if !t.IsValid() {
		return ErrInvalidTaskType
	}

	trim := strings.TrimSpace

	switch t {
	case TypeApplicationReceived:
		var p ApplicationReceivedPayload
		switch v := payload.(type) {
		case ApplicationReceivedPayload:
			p = v
		case *ApplicationReceivedPayload:
			p = *v
		default:
			return ErrPayloadTypeMismatch
		}
		if trim(p.ApplicationID) == "" || trim(p.JobID) == "" || trim(p.RecruiterID) == "" {
			return ErrInvalidTaskPayload
		}
		return nil

	case TypeStatusChanged:
		var p StatusChangedPayload
		switch v := payload.(type) {
		case StatusChangedPayload:
			p = v
		case *StatusChangedPayload:
			p = *v
		default:
			return ErrPayloadTypeMismatch
		}
		if trim(p.ApplicationID) == "" || trim(p.ApplicantID) == "" || trim(p.NewStatus) == "" {
			return ErrInvalidTaskPayload
		}
		return nil

	default:
		return ErrInvalidTaskType
	}
}
