package worker

import (
	"context"
	"errors"
	"time"

	"github.com/codewright/jobhub/internal/domain/task"
	"github.com/codewright/jobhub/internal/notifications"
	"github.com/codewright/jobhub/internal/tasks"
)

// ProcessOne claims and executes a single task. The bool reports whether a
// task was claimed at all; an empty queue is not an error.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	claimCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	t, err := w.repo.ClaimNext(claimCtx, w.cfg.WorkerID)
	cancel()

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	w.metrics.IncClaimed()
	w.prom.TasksInFlight.Inc()
	defer w.prom.TasksInFlight.Dec()

	start := time.Now()
	err = w.execute(ctx, t)
	elapsed := time.Since(start)
	w.metrics.ObserveDuration(elapsed)

	if err != nil {
		w.handleFailure(ctx, t, err)
		w.prom.TaskDuration.WithLabelValues(t.Type, "failed").Observe(elapsed.Seconds())
		return true, nil
	}

	if err := w.repo.MarkDone(ctx, t.ID); err != nil {
		_ = w.repo.MarkFailed(ctx, t.ID, "mark_done_failed: "+err.Error())
		return true, err
	}

	w.metrics.IncDone()
	w.prom.TaskDuration.WithLabelValues(t.Type, "done").Observe(elapsed.Seconds())
	w.prom.TaskResults.WithLabelValues(t.Type, "done").Inc()
	w.log.Info("task done", "task", t.ID, "type", t.Type, "elapsed", elapsed.String())
	return true, nil
}

func (w *Worker) execute(ctx context.Context, t task.Task) error {
	decoded, err := tasks.DecodePayload(tasks.Type(t.Type), t.Payload)
	if err != nil {
		return err
	}

	switch p := decoded.(type) {
	case tasks.ApplicationReceivedPayload:
		return w.notifyApplicationReceived(ctx, p)
	case tasks.StatusChangedPayload:
		return w.notifyStatusChanged(ctx, p)
	default:
		return tasks.ErrInvalidTaskType
	}
}

func (w *Worker) notifyApplicationReceived(ctx context.Context, p tasks.ApplicationReceivedPayload) error {
	recruiter, err := w.users.GetByID(ctx, p.RecruiterID)
	if err != nil {
		return err
	}

	applicantName := p.ApplicantID
	if applicant, err := w.users.GetByID(ctx, p.ApplicantID); err == nil {
		applicantName = applicant.Name
	}

	jobTitle := p.JobID
	if j, err := w.jobs.GetByID(ctx, p.JobID); err == nil {
		jobTitle = j.Title
	}

	return w.notifier.SendApplicationReceived(ctx, notifications.ApplicationReceivedInput{
		RecruiterEmail: recruiter.Email,
		RecruiterName:  recruiter.Name,
		JobTitle:       jobTitle,
		ApplicantName:  applicantName,
		ApplicationID:  p.ApplicationID,
	})
}

func (w *Worker) notifyStatusChanged(ctx context.Context, p tasks.StatusChangedPayload) error {
	applicant, err := w.users.GetByID(ctx, p.ApplicantID)
	if err != nil {
		return err
	}

	jobTitle := p.JobID
	if j, err := w.jobs.GetByID(ctx, p.JobID); err == nil {
		jobTitle = j.Title
	}

	return w.notifier.SendStatusChanged(ctx, notifications.StatusChangedInput{
		ApplicantEmail: applicant.Email,
		ApplicantName:  applicant.Name,
		JobTitle:       jobTitle,
		NewStatus:      p.NewStatus,
		ApplicationID:  p.ApplicationID,
	})
}

// handleFailure either reschedules with backoff or dead-letters the task once
// its attempts are spent.
func (w *Worker) handleFailure(ctx context.Context, t task.Task, cause error) {
	// attempts is incremented by Reschedule, so the claim we just executed
	// was attempt t.Attempts+1
	if t.Attempts+1 >= t.MaxAttempts {
		w.metrics.IncFailed()
		w.metrics.IncDeadLettered()
		w.prom.TaskResults.WithLabelValues(t.Type, "failed").Inc()
		w.log.Error("task dead-lettered", "task", t.ID, "type", t.Type, "attempts", t.Attempts+1, "err", cause)

		if err := w.repo.MarkFailed(ctx, t.ID, cause.Error()); err != nil {
			w.log.Error("mark failed", "task", t.ID, "err", err)
		}
		return
	}

	delay := ExponentialBackoff(t.Attempts)
	w.metrics.IncRetried()
	w.prom.TaskResults.WithLabelValues(t.Type, "retry").Inc()
	w.log.Warn("task retry scheduled", "task", t.ID, "type", t.Type, "attempt", t.Attempts+1, "delay", delay.String(), "err", cause)

	if err := w.repo.Reschedule(ctx, t.ID, time.Now().UTC().Add(delay), cause.Error()); err != nil {
		w.log.Error("reschedule", "task", t.ID, "err", err)
	}
}
