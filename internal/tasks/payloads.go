package tasks

// Payloads stay minimal and ID-based; the worker loads current details from
// the database when it runs.

// ApplicationReceivedPayload tells a recruiter somebody applied to their job.
type ApplicationReceivedPayload struct {
	ApplicationID string `json:"applicationId"`
	JobID         string `json:"jobId"`
	ApplicantID   string `json:"applicantId"`
	RecruiterID   string `json:"recruiterId"`
	RequestID     string `json:"requestId,omitempty"`
}

// StatusChangedPayload tells an applicant their application moved.
type StatusChangedPayload struct {
	ApplicationID string `json:"applicationId"`
	JobID         string `json:"jobId"`
	ApplicantID   string `json:"applicantId"`
	NewStatus     string `json:"newStatus"`
	RequestID     string `json:"requestId,omitempty"`
}
