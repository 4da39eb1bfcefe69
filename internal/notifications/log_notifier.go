package notifications

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

// LogNotifier writes notifications to the process log. It stands in for a
// real email/push provider and honors a couple of env knobs for exercising
// timeouts and provider outages locally.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) simulate(ctx context.Context) error {
	if msStr := os.Getenv("NOTIFIER_SLEEP_MS"); msStr != "" {
		ms, _ := strconv.Atoi(msStr)
		if ms > 0 {
			select {
			case <-time.After(time.Duration(ms) * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	if os.Getenv("NOTIFIER_FAIL") == "1" {
		return fmt.Errorf("provider down (simulated)")
	}
	return nil
}

func (n *LogNotifier) SendApplicationReceived(ctx context.Context, in ApplicationReceivedInput) error {
	if err := n.simulate(ctx); err != nil {
		return err
	}

	log.Printf("notification.application_received recruiter=%s job=%q applicant=%s application=%s",
		in.RecruiterEmail, in.JobTitle, in.ApplicantName, in.ApplicationID,
	)
	return nil
}

func (n *LogNotifier) SendStatusChanged(ctx context.Context, in StatusChangedInput) error {
	if err := n.simulate(ctx); err != nil {
		return err
	}

	log.Printf("notification.status_changed applicant=%s job=%q status=%s application=%s",
		in.ApplicantEmail, in.JobTitle, in.NewStatus, in.ApplicationID,
	)
	return nil
}
