package tasks

import "errors"

var (
	ErrInvalidTaskType     = errors.New("invalid task type")
	ErrInvalidTaskPayload  = errors.New("invalid task payload")
	ErrPayloadTypeMismatch = errors.New("payload type mismatch for task type")
)
