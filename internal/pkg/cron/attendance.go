package cron

import (
	"context"
	"log/slog"
)

// StaleSessionCloser closes attendance records left open on earlier days.
type StaleSessionCloser interface {
	CloseStaleSessions(ctx context.Context) (int, error)
}

type AttendanceJobs struct {
	closer StaleSessionCloser
}

func NewAttendanceJobs(closer StaleSessionCloser) *AttendanceJobs {
	return &AttendanceJobs{closer: closer}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler, staleSessionSchedule string) error {
	return scheduler.AddJob("close_stale_attendance_sessions", staleSessionSchedule, j.CloseStaleSessions)
}

func (j *AttendanceJobs) CloseStaleSessions(ctx context.Context) error {
	slog.Info("Cron: Starting close stale attendance sessions job")

	closed, err := j.closer.CloseStaleSessions(ctx)
	if err != nil {
		return err
	}

	slog.Info("Cron: Close stale attendance sessions completed", "closed", closed)
	return nil
}
