package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/auditlog"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/clock"
)

type SettingsServiceImpl struct {
	settings.SettingsRepository
	audit auditlog.AuditLogService

	heal     singleflight.Group
	updateMu sync.Mutex
}

func NewSettingsService(settingsRepository settings.SettingsRepository, auditLogService auditlog.AuditLogService) settings.SettingsService {
	return &SettingsServiceImpl{
		SettingsRepository: settingsRepository,
		audit:              auditLogService,
	}
}

// Get implements settings.SettingsService.
// A missing row is recreated once; concurrent first readers share that call.
func (s *SettingsServiceImpl) Get(ctx context.Context) (settings.GlobalSettings, error) {
	current, err := s.SettingsRepository.Get(ctx)
	if err == nil {
		return current, nil
	}
	if !errors.Is(err, settings.ErrSettingsNotFound) {
		return settings.GlobalSettings{}, err
	}

	v, err, _ := s.heal.Do("create-default", func() (any, error) {
		slog.Warn("global settings missing, creating defaults")
		return s.SettingsRepository.CreateDefault(context.WithoutCancel(ctx))
	})
	if err != nil {
		return settings.GlobalSettings{}, fmt.Errorf("failed to create default settings: %w", err)
	}
	return v.(settings.GlobalSettings), nil
}

// GetResponse implements settings.SettingsService.
func (s *SettingsServiceImpl) GetResponse(ctx context.Context) (settings.SettingsResponse, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return settings.SettingsResponse{}, err
	}
	return settings.NewSettingsResponse(current), nil
}

// Update implements settings.SettingsService.
func (s *SettingsServiceImpl) Update(ctx context.Context, req settings.UpdateSettingsRequest) (settings.SettingsResponse, error) {
	if err := req.Validate(); err != nil {
		return settings.SettingsResponse{}, err
	}

	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	current, err := s.Get(ctx)
	if err != nil {
		return settings.SettingsResponse{}, err
	}

	next, err := req.Apply(current)
	if err != nil {
		return settings.SettingsResponse{}, err
	}

	updated, err := s.SettingsRepository.Update(ctx, next)
	if err != nil {
		return settings.SettingsResponse{}, err
	}

	var actor *string
	if req.ActorID != "" {
		actor = &req.ActorID
	}
	s.audit.Record(ctx, actor, auditlog.ActionSettingsUpdated, describeChanges(current, updated))

	return settings.NewSettingsResponse(updated), nil
}

func describeChanges(before, after settings.GlobalSettings) string {
	var changes []string
	add := func(field, from, to string) {
		if from != to {
			changes = append(changes, fmt.Sprintf("%s: %s -> %s", field, from, to))
		}
	}

	add("enable_strict_schedule", strconv.FormatBool(before.EnableStrictSchedule), strconv.FormatBool(after.EnableStrictSchedule))
	add("auto_clock_out_hours", strconv.Itoa(before.AutoClockOutHours), strconv.Itoa(after.AutoClockOutHours))
	add("allow_early_out", strconv.FormatBool(before.AllowEarlyOut), strconv.FormatBool(after.AllowEarlyOut))
	add("allow_overtime", strconv.FormatBool(before.AllowOvertime), strconv.FormatBool(after.AllowOvertime))
	add("default_start", optionalTime(before.DefaultStart), optionalTime(after.DefaultStart))
	add("default_end", optionalTime(before.DefaultEnd), optionalTime(after.DefaultEnd))
	add("allowed_early_in_mins", strconv.Itoa(before.AllowedEarlyInMins), strconv.Itoa(after.AllowedEarlyInMins))
	add("unit_head", before.UnitHead, after.UnitHead)

	if len(changes) == 0 {
		return "Settings saved without changes"
	}
	return "Settings updated: " + strings.Join(changes, "; ")
}

func optionalTime(t *clock.TimeOfDay) string {
	if t == nil {
		return "none"
	}
	return t.String()
}
