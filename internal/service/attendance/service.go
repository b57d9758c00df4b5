package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/auditlog"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/database"
)

type AttendanceServiceImpl struct {
	tx database.TxManager
	attendance.AttendanceRepository
	inconsistencies attendance.InconsistencyRepository
	schedule.ScheduleRepository
	user.UserRepository
	settings settings.SettingsService
	audit    auditlog.AuditLogService
	policy   attendance.Policy
	loc      *time.Location
}

func NewAttendanceService(
	tx database.TxManager,
	attendanceRepository attendance.AttendanceRepository,
	inconsistencyRepository attendance.InconsistencyRepository,
	scheduleRepository schedule.ScheduleRepository,
	userRepository user.UserRepository,
	settingsService settings.SettingsService,
	auditLogService auditlog.AuditLogService,
	policy attendance.Policy,
	loc *time.Location,
) attendance.AttendanceService {
	if loc == nil {
		loc = time.Local
	}
	return &AttendanceServiceImpl{
		tx:                   tx,
		AttendanceRepository: attendanceRepository,
		inconsistencies:      inconsistencyRepository,
		ScheduleRepository:   scheduleRepository,
		UserRepository:       userRepository,
		settings:             settingsService,
		audit:                auditLogService,
		policy:               policy,
		loc:                  loc,
	}
}

func (s *AttendanceServiceImpl) activeUser(ctx context.Context, userID string) (user.User, error) {
	u, err := s.UserRepository.GetByUserID(ctx, userID)
	if err != nil {
		return user.User{}, err
	}
	if !u.IsActive() {
		return user.User{}, user.ErrUserInactive
	}
	return u, nil
}

// resolveDay loads the persisted schedule row and the windows for date.
// A failed lookup only matters in strict mode; otherwise the day is treated
// as having no row.
func (s *AttendanceServiceImpl) resolveDay(ctx context.Context, userID string, date time.Time, cfg settings.GlobalSettings) (*schedule.Schedule, []schedule.Window, error) {
	var row *schedule.Schedule
	found, err := s.ScheduleRepository.GetByUserAndDay(ctx, userID, date.Weekday())
	switch {
	case err == nil:
		row = &found
	case errors.Is(err, schedule.ErrScheduleNotFound):
	case cfg.EnableStrictSchedule:
		return nil, nil, fmt.Errorf("failed to load schedule: %w", err)
	default:
		slog.Warn("schedule lookup failed, treating day as unscheduled", "user_id", userID, "error", err)
	}
	return row, schedule.ResolveWindows(date, row, cfg.ScheduleDefaults()), nil
}

// flagAnomalies stores the detector output for att and marks the row.
func (s *AttendanceServiceImpl) flagAnomalies(ctx context.Context, att attendance.Attendance, row *schedule.Schedule) ([]attendance.IssueType, error) {
	flags := DetectAnomalies(att, row, s.policy)
	if len(flags) == 0 {
		return nil, nil
	}

	issues := make([]attendance.IssueType, 0, len(flags))
	for _, f := range flags {
		created, err := s.inconsistencies.CreateIfAbsent(ctx, f)
		if err != nil {
			return nil, err
		}
		if created {
			slog.Info("attendance inconsistency recorded", "user_id", f.UserID, "issue", f.IssueType, "details", f.Details)
		}
		issues = append(issues, f.IssueType)
	}

	if err := s.AttendanceRepository.MarkHasIssue(ctx, att.ID); err != nil {
		return nil, err
	}
	return issues, nil
}

// ClockIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ClockIn(ctx context.Context, req attendance.ClockInRequest) (attendance.ClockInResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ClockInResponse{}, err
	}
	now := req.Now.In(s.loc)
	today := clock.DateOf(now)

	if _, err := s.activeUser(ctx, req.UserID); err != nil {
		return attendance.ClockInResponse{}, err
	}
	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return attendance.ClockInResponse{}, err
	}

	var resp attendance.ClockInResponse
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		if err := s.AttendanceRepository.LockUser(txCtx, req.UserID); err != nil {
			return err
		}

		count, err := s.AttendanceRepository.CountByUserAndDate(txCtx, req.UserID, today)
		if err != nil {
			return err
		}

		row, windows, err := s.resolveDay(txCtx, req.UserID, today, cfg)
		if err != nil {
			return err
		}

		decision, err := ValidateClockIn(now, windows, cfg, s.policy, count)
		if err != nil {
			return err
		}

		created, err := s.AttendanceRepository.Create(txCtx, attendance.Attendance{
			UserID:  req.UserID,
			Date:    today,
			ClockIn: now,
		})
		if err != nil {
			return err
		}

		if cfg.EnableStrictSchedule {
			if _, err := s.flagAnomalies(txCtx, created, row); err != nil {
				return fmt.Errorf("failed to record anomalies: %w", err)
			}
		}

		resp = attendance.ClockInResponse{
			AttendanceID: created.ID,
			UserID:       created.UserID,
			Date:         created.Date.Format(attendance.DateLayout),
			ClockIn:      clock.Of(created.ClockIn),
			WindowKind:   decision.Kind,
			ShiftNumber:  count + 1,
		}
		if decision.Window != nil {
			resp.Window = &attendance.WindowResponse{Start: decision.Window.Start, End: decision.Window.End}
		}
		return nil
	})
	if err != nil {
		var rejection *attendance.RejectionError
		if errors.As(err, &rejection) {
			slog.Info("clock-in rejected", "user_id", req.UserID, "reason", rejection.Reason)
		}
		return attendance.ClockInResponse{}, err
	}

	s.audit.Record(ctx, &req.UserID, auditlog.ActionClockIn,
		fmt.Sprintf("Clocked in at %s (%s)", resp.ClockIn, resp.WindowKind))
	return resp, nil
}

// ClockOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ClockOut(ctx context.Context, req attendance.ClockOutRequest) (attendance.ClockOutResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ClockOutResponse{}, err
	}
	now := req.Now.In(s.loc)
	today := clock.DateOf(now)

	if _, err := s.activeUser(ctx, req.UserID); err != nil {
		return attendance.ClockOutResponse{}, err
	}
	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return attendance.ClockOutResponse{}, err
	}

	var resp attendance.ClockOutResponse
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		if err := s.AttendanceRepository.LockUser(txCtx, req.UserID); err != nil {
			return err
		}

		open, err := s.AttendanceRepository.GetLatestOpen(txCtx, req.UserID, today)
		if err != nil {
			if errors.Is(err, attendance.ErrAttendanceNotFound) {
				return attendance.ErrNoOpenShift
			}
			return err
		}

		row, windows, err := s.resolveDay(txCtx, req.UserID, today, cfg)
		if err != nil {
			return err
		}

		decision, err := ValidateClockOut(now, open.ClockIn, windows, cfg, s.policy)
		if err != nil {
			return err
		}

		closed, err := s.AttendanceRepository.CloseIfOpen(txCtx, open.ID, decision.ClockOut)
		if err != nil {
			return err
		}
		if !closed {
			// Auto-closed between the read and the update.
			return attendance.ErrNoOpenShift
		}

		out := attendance.AnchorClockOut(open.ClockIn, clock.Of(decision.ClockOut))
		open.ClockOut = &out

		var flags []attendance.IssueType
		if cfg.EnableStrictSchedule {
			if flags, err = s.flagAnomalies(txCtx, open, row); err != nil {
				return fmt.Errorf("failed to record anomalies: %w", err)
			}
		}

		resp = attendance.ClockOutResponse{
			AttendanceID: open.ID,
			UserID:       open.UserID,
			Date:         open.Date.Format(attendance.DateLayout),
			ClockIn:      clock.Of(open.ClockIn),
			ClockOut:     clock.Of(out),
			Snapped:      decision.Snapped,
			WorkedHours:  DecimalHours(open.Worked()),
			Flags:        flags,
		}
		return nil
	})
	if err != nil {
		var rejection *attendance.RejectionError
		if errors.As(err, &rejection) {
			slog.Info("clock-out rejected", "user_id", req.UserID, "reason", rejection.Reason)
		}
		return attendance.ClockOutResponse{}, err
	}

	details := fmt.Sprintf("Clocked out at %s", resp.ClockOut)
	if resp.Snapped {
		details += fmt.Sprintf(" (requested %s, snapped to shift end)", clock.Of(now))
	}
	s.audit.Record(ctx, &req.UserID, auditlog.ActionClockOut, details)
	return resp, nil
}

// ComputeTotals implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ComputeTotals(ctx context.Context, req attendance.TotalsRequest) (attendance.TotalsResponse, error) {
	start, end, err := req.Validate()
	if err != nil {
		return attendance.TotalsResponse{}, err
	}
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, s.loc)
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, s.loc)

	if _, err := s.UserRepository.GetByUserID(ctx, req.UserID); err != nil {
		return attendance.TotalsResponse{}, err
	}

	records, err := s.AttendanceRepository.ListByUserAndRange(ctx, req.UserID, start, end)
	if err != nil {
		return attendance.TotalsResponse{}, err
	}

	return NewTotalsResponse(ComputeTotals(req.UserID, records), start, end), nil
}

// NewTotalsResponse renders totals with decimal hours.
func NewTotalsResponse(t Totals, start, end time.Time) attendance.TotalsResponse {
	slot := func(s *Slot) *attendance.SlotResponse {
		if s == nil {
			return nil
		}
		return &attendance.SlotResponse{
			AttendanceID: s.AttendanceID,
			ClockIn:      s.In,
			ClockOut:     s.Out,
			Hours:        DecimalHours(s.Duration),
		}
	}

	days := make([]attendance.DayTotal, 0, len(t.Days))
	for _, d := range t.Days {
		days = append(days, attendance.DayTotal{
			Date:   d.Date.Format(attendance.DateLayout),
			Shift1: slot(d.Shift1),
			Shift2: slot(d.Shift2),
			Open:   d.Open,
			Hours:  DecimalHours(d.Worked),
		})
	}

	return attendance.TotalsResponse{
		UserID:     t.UserID,
		StartDate:  start.Format(attendance.DateLayout),
		EndDate:    end.Format(attendance.DateLayout),
		Days:       days,
		TotalHours: DecimalHours(t.Worked),
	}
}

// ListInconsistencies implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListInconsistencies(ctx context.Context, filter attendance.InconsistencyFilter) ([]attendance.InconsistencyResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	found, err := s.inconsistencies.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := make([]attendance.InconsistencyResponse, 0, len(found))
	for _, inc := range found {
		result = append(result, attendance.NewInconsistencyResponse(inc))
	}
	return result, nil
}
