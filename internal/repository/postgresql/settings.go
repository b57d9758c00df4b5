package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/database"
)

type settingsRepository struct {
	db *database.DB
}

func NewSettingsRepository(db *database.DB) settings.SettingsRepository {
	return &settingsRepository{db: db}
}

const settingsColumns = `id, enable_strict_schedule, auto_clock_out_hours, allow_early_out, allow_overtime,
	default_start, default_end, allowed_early_in_mins, unit_head, updated_at`

func scanSettings(row pgx.Row) (settings.GlobalSettings, error) {
	var (
		s          settings.GlobalSettings
		start, end pgtype.Time
	)
	err := row.Scan(
		&s.ID,
		&s.EnableStrictSchedule,
		&s.AutoClockOutHours,
		&s.AllowEarlyOut,
		&s.AllowOvertime,
		&start,
		&end,
		&s.AllowedEarlyInMins,
		&s.UnitHead,
		&s.UpdatedAt,
	)
	if err != nil {
		return settings.GlobalSettings{}, err
	}
	s.DefaultStart = timeOfDay(start)
	s.DefaultEnd = timeOfDay(end)
	return s, nil
}

// Get implements settings.SettingsRepository.
func (r *settingsRepository) Get(ctx context.Context) (settings.GlobalSettings, error) {
	q := GetQuerier(ctx, r.db)

	s, err := scanSettings(q.QueryRow(ctx, `SELECT `+settingsColumns+` FROM global_settings WHERE id = $1`, settings.SingletonID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return settings.GlobalSettings{}, settings.ErrSettingsNotFound
		}
		return settings.GlobalSettings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	return s, nil
}

// CreateDefault implements settings.SettingsRepository.
func (r *settingsRepository) CreateDefault(ctx context.Context) (settings.GlobalSettings, error) {
	q := GetQuerier(ctx, r.db)

	d := settings.Default()
	_, err := q.Exec(ctx, `
		INSERT INTO global_settings (
			id, enable_strict_schedule, auto_clock_out_hours, allow_early_out, allow_overtime,
			default_start, default_end, allowed_early_in_mins, unit_head
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`,
		settings.SingletonID,
		d.EnableStrictSchedule,
		d.AutoClockOutHours,
		d.AllowEarlyOut,
		d.AllowOvertime,
		timeParam(d.DefaultStart),
		timeParam(d.DefaultEnd),
		d.AllowedEarlyInMins,
		d.UnitHead,
	)
	if err != nil {
		return settings.GlobalSettings{}, fmt.Errorf("failed to create default settings: %w", err)
	}
	return r.Get(ctx)
}

// Update implements settings.SettingsRepository.
func (r *settingsRepository) Update(ctx context.Context, s settings.GlobalSettings) (settings.GlobalSettings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE global_settings SET
			enable_strict_schedule = $2,
			auto_clock_out_hours = $3,
			allow_early_out = $4,
			allow_overtime = $5,
			default_start = $6,
			default_end = $7,
			allowed_early_in_mins = $8,
			unit_head = $9,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + settingsColumns

	updated, err := scanSettings(q.QueryRow(ctx, query,
		settings.SingletonID,
		s.EnableStrictSchedule,
		s.AutoClockOutHours,
		s.AllowEarlyOut,
		s.AllowOvertime,
		timeParam(s.DefaultStart),
		timeParam(s.DefaultEnd),
		s.AllowedEarlyInMins,
		s.UnitHead,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return settings.GlobalSettings{}, settings.ErrSettingsNotFound
		}
		return settings.GlobalSettings{}, fmt.Errorf("failed to update settings: %w", err)
	}
	return updated, nil
}
