package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/auditlog"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/clock"
)

// SweepAutoClose implements attendance.AttendanceService.
// Each open row older than the threshold is closed at exactly the threshold.
// Rows are handled independently and a failure on one does not stop the rest.
// Anomaly detection does not run here.
func (s *AttendanceServiceImpl) SweepAutoClose(ctx context.Context, now time.Time) (attendance.SweepResponse, error) {
	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return attendance.SweepResponse{}, err
	}

	after := cfg.AutoClockOutAfter()
	if after == 0 {
		return attendance.SweepResponse{}, nil
	}
	threshold := now.In(s.loc).Add(-after)

	open, err := s.AttendanceRepository.ListOpenBefore(ctx, threshold)
	if err != nil {
		return attendance.SweepResponse{}, fmt.Errorf("failed to list open attendance: %w", err)
	}

	resp := attendance.SweepResponse{Threshold: threshold.Format(time.RFC3339)}
	for _, att := range open {
		closed, err := s.AttendanceRepository.CloseIfOpen(ctx, att.ID, threshold)
		if err != nil {
			slog.Error("auto clock-out failed", "attendance_id", att.ID, "user_id", att.UserID, "error", err)
			resp.Failed++
			continue
		}
		if !closed {
			// Clocked out by the user since the listing.
			continue
		}
		resp.Closed++

		slog.Info("auto clocked out",
			"attendance_id", att.ID,
			"user_id", att.UserID,
			"clock_in", att.ClockIn.Format(time.RFC3339),
			"clock_out", threshold.Format(time.RFC3339),
		)
		userID := att.UserID
		s.audit.Record(ctx, &userID, auditlog.ActionAutoClockOut,
			fmt.Sprintf("Auto clock-out at %s after %d hours (clock-in %s on %s)",
				clock.Of(threshold), cfg.AutoClockOutHours, clock.Of(att.ClockIn), att.Date.Format(attendance.DateLayout)))
	}

	return resp, nil
}
