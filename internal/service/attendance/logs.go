package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/auditlog"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/validator"
)

// Status implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Status(ctx context.Context, req attendance.StatusRequest) (attendance.StatusResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.StatusResponse{}, err
	}
	today := clock.DateOf(req.Now.In(s.loc))

	if _, err := s.UserRepository.GetByUserID(ctx, req.UserID); err != nil {
		return attendance.StatusResponse{}, err
	}

	count, err := s.AttendanceRepository.CountByUserAndDate(ctx, req.UserID, today)
	if err != nil {
		return attendance.StatusResponse{}, err
	}

	resp := attendance.StatusResponse{
		UserID:          req.UserID,
		Date:            today.Format(attendance.DateLayout),
		ShiftsToday:     count,
		RemainingShifts: max(s.policy.MaxShiftsPerDay-count, 0),
	}

	open, err := s.AttendanceRepository.GetLatestOpen(ctx, req.UserID, today)
	switch {
	case err == nil:
		in := clock.Of(open.ClockIn)
		resp.ClockedIn = true
		resp.OpenAttendanceID = open.ID
		resp.ClockIn = &in
	case !errors.Is(err, attendance.ErrAttendanceNotFound):
		return attendance.StatusResponse{}, err
	}
	return resp, nil
}

// ListDaily implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListDaily(ctx context.Context, req attendance.DailyLogRequest) ([]attendance.LogResponse, error) {
	date, err := req.Validate()
	if err != nil {
		return nil, err
	}
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, s.loc)

	rows, err := s.AttendanceRepository.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	names := map[string]string{}
	result := make([]attendance.LogResponse, 0, len(rows))
	for _, row := range rows {
		name, ok := names[row.UserID]
		if !ok {
			name = s.fullName(ctx, row.UserID)
			names[row.UserID] = name
		}
		result = append(result, newLogResponse(row, name))
	}
	return result, nil
}

func (s *AttendanceServiceImpl) fullName(ctx context.Context, userID string) string {
	u, err := s.UserRepository.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, user.ErrUserNotFound) {
			slog.Warn("user lookup failed for daily log", "user_id", userID, "error", err)
		}
		return userID
	}
	return u.FullName()
}

// CorrectLog implements attendance.AttendanceService. Stored inconsistency
// flags are left as they were.
func (s *AttendanceServiceImpl) CorrectLog(ctx context.Context, req attendance.CorrectLogRequest) (attendance.LogResponse, error) {
	in, out, err := req.Validate()
	if err != nil {
		return attendance.LogResponse{}, err
	}

	var before, after attendance.Attendance
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		current, err := s.AttendanceRepository.GetByID(txCtx, req.AttendanceID)
		if err != nil {
			return err
		}
		if err := s.AttendanceRepository.LockUser(txCtx, current.UserID); err != nil {
			return err
		}
		// Re-read under the lock; a clock-out may have landed in between.
		if current, err = s.AttendanceRepository.GetByID(txCtx, req.AttendanceID); err != nil {
			return err
		}
		if out == nil && !current.IsOpen() {
			var errs validator.ValidationErrors
			errs.Add("clock_out", "clock_out is required for a closed record")
			return errs
		}

		clockIn := in.On(current.Date.In(s.loc))
		var clockOut *time.Time
		if out != nil {
			t := attendance.AnchorClockOut(clockIn, *out)
			clockOut = &t
		}

		corrected, err := s.AttendanceRepository.Correct(txCtx, current.ID, clockIn, clockOut)
		if err != nil {
			return err
		}
		before, after = current, corrected
		return nil
	})
	if err != nil {
		return attendance.LogResponse{}, err
	}

	s.audit.Record(ctx, actorID(req.ActorID), auditlog.ActionLogCorrected,
		fmt.Sprintf("Corrected %s on %s for %s: %s -> %s",
			after.ID, after.Date.Format(attendance.DateLayout), after.UserID, span(before), span(after)))

	return newLogResponse(after, s.fullName(ctx, after.UserID)), nil
}

func newLogResponse(a attendance.Attendance, fullName string) attendance.LogResponse {
	resp := attendance.LogResponse{
		AttendanceID: a.ID,
		UserID:       a.UserID,
		FullName:     fullName,
		Date:         a.Date.Format(attendance.DateLayout),
		ClockIn:      clock.Of(a.ClockIn),
		Hours:        DecimalHours(a.Worked()),
		HasIssue:     a.HasIssue,
	}
	if a.ClockOut != nil {
		out := clock.Of(*a.ClockOut)
		resp.ClockOut = &out
	}
	return resp
}

func span(a attendance.Attendance) string {
	text := clock.Of(a.ClockIn).String() + "-"
	if a.ClockOut == nil {
		return text + "open"
	}
	return text + clock.Of(*a.ClockOut).String()
}

func actorID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
