package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/auditlog"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/user"
)

type scheduleServiceImpl struct {
	scheduleRepo    schedule.ScheduleRepository
	userRepo        user.UserRepository
	settingsService settings.SettingsService
	auditService    auditlog.AuditLogService
}

func NewScheduleService(
	scheduleRepo schedule.ScheduleRepository,
	userRepo user.UserRepository,
	settingsService settings.SettingsService,
	auditService auditlog.AuditLogService,
) schedule.ScheduleService {
	return &scheduleServiceImpl{
		scheduleRepo:    scheduleRepo,
		userRepo:        userRepo,
		settingsService: settingsService,
		auditService:    auditService,
	}
}

// ListByUser implements schedule.ScheduleService.
func (s *scheduleServiceImpl) ListByUser(ctx context.Context, userID string) ([]schedule.ScheduleResponse, error) {
	if _, err := s.userRepo.GetByUserID(ctx, userID); err != nil {
		return nil, err
	}

	rows, err := s.scheduleRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]schedule.ScheduleResponse, 0, len(rows))
	for _, row := range rows {
		result = append(result, schedule.NewScheduleResponse(row))
	}
	return result, nil
}

// Upsert implements schedule.ScheduleService.
func (s *scheduleServiceImpl) Upsert(ctx context.Context, req schedule.UpsertScheduleRequest) (schedule.ScheduleResponse, error) {
	row, err := req.Validate()
	if err != nil {
		return schedule.ScheduleResponse{}, err
	}

	if _, err := s.userRepo.GetByUserID(ctx, req.UserID); err != nil {
		return schedule.ScheduleResponse{}, err
	}

	saved, err := s.scheduleRepo.Upsert(ctx, row)
	if err != nil {
		return schedule.ScheduleResponse{}, err
	}

	s.auditService.Record(ctx, actor(req.ActorID), auditlog.ActionScheduleUpdated,
		fmt.Sprintf("Schedule for %s on %s set to %s", saved.UserID, saved.Day, describe(saved)))

	return schedule.NewScheduleResponse(saved), nil
}

// Delete implements schedule.ScheduleService.
func (s *scheduleServiceImpl) Delete(ctx context.Context, req schedule.DeleteScheduleRequest) error {
	day, err := req.Validate()
	if err != nil {
		return err
	}

	if err := s.scheduleRepo.Delete(ctx, req.UserID, day); err != nil {
		return err
	}

	s.auditService.Record(ctx, actor(req.ActorID), auditlog.ActionScheduleDeleted,
		fmt.Sprintf("Schedule for %s on %s removed", req.UserID, day))
	return nil
}

// ResolveWindows implements schedule.ScheduleService.
func (s *scheduleServiceImpl) ResolveWindows(ctx context.Context, userID string, date time.Time) (schedule.WindowsResponse, error) {
	if _, err := s.userRepo.GetByUserID(ctx, userID); err != nil {
		return schedule.WindowsResponse{}, err
	}

	cfg, err := s.settingsService.Get(ctx)
	if err != nil {
		return schedule.WindowsResponse{}, err
	}

	var row *schedule.Schedule
	found, err := s.scheduleRepo.GetByUserAndDay(ctx, userID, date.Weekday())
	switch {
	case err == nil:
		row = &found
	case !errors.Is(err, schedule.ErrScheduleNotFound):
		return schedule.WindowsResponse{}, err
	}

	windows := schedule.ResolveWindows(date, row, cfg.ScheduleDefaults())
	resp := schedule.WindowsResponse{
		UserID:       userID,
		Date:         date.Format("2006-01-02"),
		FromDefaults: len(windows) > 0 && !windows[0].IsSplit && !row.HasPrimary(),
		Windows:      make([]schedule.WindowResponse, 0, len(windows)),
	}
	for _, w := range windows {
		resp.Windows = append(resp.Windows, schedule.WindowResponse{Kind: w.Kind(), Start: w.Start, End: w.End})
	}
	return resp, nil
}

func actor(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

func describe(s schedule.Schedule) string {
	text := "no fixed hours"
	if s.HasPrimary() {
		text = s.StartTime.String() + "-" + s.EndTime.String()
	}
	if s.HasSplit() {
		text += ", split " + s.SplitStartTime.String() + "-" + s.SplitEndTime.String()
	}
	return text
}
