package tasks

import (
	"errors"
	"testing"
)

func TestEncodeDecode_ApplicationReceived(t *testing.T) {
	payload := ApplicationReceivedPayload{
		ApplicationID: "app-123",
		JobID:         "job-456",
		ApplicantID:   "user-789",
		RecruiterID:   "user-001",
	}

	b, err := EncodePayload(TypeApplicationReceived, payload)
	if err != nil {
		t.Fatalf("EncodePayload error: %v", err)
	}

	decoded, err := DecodePayload(TypeApplicationReceived, b)
	if err != nil {
		t.Fatalf("DecodePayload error: %v", err)
	}

	p, ok := decoded.(ApplicationReceivedPayload)
	if !ok {
		t.Fatalf("expected ApplicationReceivedPayload, got %T", decoded)
	}

	if p.ApplicationID != payload.ApplicationID {
		t.Fatalf("expected applicationId %s, got %s", payload.ApplicationID, p.ApplicationID)
	}
	if p.RecruiterID != payload.RecruiterID {
		t.Fatalf("expected recruiterId %s, got %s", payload.RecruiterID, p.RecruiterID)
	}
}

func TestEncodePayload_TypeMismatch(t *testing.T) {
	_, err := EncodePayload(TypeApplicationReceived, StatusChangedPayload{
		ApplicationID: "a1",
		ApplicantID:   "u1",
		NewStatus:     "accepted",
	})
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !errors.Is(err, ErrPayloadTypeMismatch) {
		t.Fatalf("expected ErrPayloadTypeMismatch, got %v", err)
	}
}

func TestEncodePayload_RejectsMissingIDs(t *testing.T) {
	_, err := EncodePayload(TypeStatusChanged, StatusChangedPayload{
		ApplicationID: "a1",
		// no ApplicantID or NewStatus: must not reach the queue
	})
	if !errors.Is(err, ErrInvalidTaskPayload) {
		t.Fatalf("expected ErrInvalidTaskPayload, got %v", err)
	}
}

func TestDecodePayload_EmptyOrUnknown(t *testing.T) {
	if _, err := DecodePayload(TypeStatusChanged, nil); !errors.Is(err, ErrInvalidTaskPayload) {
		t.Fatalf("expected ErrInvalidTaskPayload, got %v", err)
	}
	if _, err := DecodePayload(Type("mystery"), []byte(`{}`)); !errors.Is(err, ErrInvalidTaskType) {
		t.Fatalf("expected ErrInvalidTaskType, got %v", err)
	}
}

func TestValidatePayload_RequiredIDs(t *testing.T) {
	err := ValidatePayload(TypeStatusChanged, StatusChangedPayload{ApplicationID: "a1"})
	if err == nil {
		t.Fatalf("expected error")
	}
}
