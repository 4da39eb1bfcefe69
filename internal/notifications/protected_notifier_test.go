package notifications

import (
	"context"
	"errors"
	"testing"
	"time"
)

type flakyNotifier struct {
	err   error
	calls int
}

func (f *flakyNotifier) SendApplicationReceived(ctx context.Context, in ApplicationReceivedInput) error {
	f.calls++
	return f.err
}

func (f *flakyNotifier) SendStatusChanged(ctx context.Context, in StatusChangedInput) error {
	f.calls++
	return f.err
}

func TestCircuitOpensAfterThreshold(t *testing.T) {
	inner := &flakyNotifier{err: errors.New("provider down")}
	n := NewProtectedNotifier(inner, ProtectedNotifierConfig{
		FailureThreshold: 2,
		Cooldown:         time.Hour,
	})

	ctx := context.Background()
	in := ApplicationReceivedInput{ApplicationID: "a1"}

	for i := 0; i < 2; i++ {
		if err := n.SendApplicationReceived(ctx, in); err == nil {
			t.Fatalf("expected provider error on call %d", i+1)
		}
	}

	if err := n.SendApplicationReceived(ctx, in); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("inner called %d times, want 2", inner.calls)
	}
}

func TestCircuitClosesOnSuccess(t *testing.T) {
	inner := &flakyNotifier{err: errors.New("provider down")}
	n := NewProtectedNotifier(inner, ProtectedNotifierConfig{
		FailureThreshold: 1,
		Cooldown:         time.Nanosecond,
	})

	ctx := context.Background()
	in := StatusChangedInput{ApplicationID: "a1"}

	if err := n.SendStatusChanged(ctx, in); err == nil {
		t.Fatalf("expected provider error")
	}

	// cooldown elapses, the half-open trial succeeds and closes the circuit
	time.Sleep(time.Millisecond)
	inner.err = nil

	if err := n.SendStatusChanged(ctx, in); err != nil {
		t.Fatalf("half-open trial: %v", err)
	}
	if err := n.SendStatusChanged(ctx, in); err != nil {
		t.Fatalf("closed send: %v", err)
	}
}
