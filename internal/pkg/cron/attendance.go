package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/attendance"
)

const AutoCloseJobName = "auto_close_open_attendances"

type AttendanceJobs struct {
	attendanceService attendance.AttendanceService
	interval          time.Duration
	now               func() time.Time
}

func NewAttendanceJobs(attendanceService attendance.AttendanceService, interval time.Duration) *AttendanceJobs {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &AttendanceJobs{
		attendanceService: attendanceService,
		interval:          interval,
		now:               time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(Job{
		Name:     AutoCloseJobName,
		Interval: j.interval,
		Timeout:  j.interval,
		Fn:       j.AutoCloseOpenAttendances,
	})
}

// AutoCloseOpenAttendances closes shifts left open past the configured hours.
func (j *AttendanceJobs) AutoCloseOpenAttendances(ctx context.Context) error {
	resp, err := j.attendanceService.SweepAutoClose(ctx, j.now())
	if err != nil {
		return err
	}
	if resp.Closed > 0 || resp.Failed > 0 {
		slog.Info("cron: auto clock-out finished", "closed", resp.Closed, "failed", resp.Failed, "threshold", resp.Threshold)
	}
	return nil
}
