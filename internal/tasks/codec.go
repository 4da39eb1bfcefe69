package tasks

import (
	"encoding/json"
	"fmt"
)

// EncodePayload validates the payload for its task type, then marshals it.
// Producers go through here so a malformed payload is rejected at enqueue
// time instead of surfacing when the worker picks it up.
func EncodePayload(t Type, payload any) ([]byte, error) {
	if err := ValidatePayload(t, payload); err != nil {
		return nil, err
	}

	b, err := json.Marshal(payload)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTaskPayload, err)
	}

	return b, nil
}

// DecodePayload unmarshals a raw payload into the typed struct for its task
// type.
func DecodePayload(t Type, raw []byte) (any, error) {
	if !t.IsValid() {
		return nil, ErrInvalidTaskType
	}
	if len(raw) == 0 {
		return nil, ErrInvalidTaskPayload
	}

	switch t {
	case TypeApplicationReceived:
		var p ApplicationReceivedPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTaskPayload, err)
		}
		return p, nil

	case TypeStatusChanged:
		var p StatusChangedPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTaskPayload, err)
		}
		return p, nil

	default:
		return nil, ErrInvalidTaskType
	}
}
