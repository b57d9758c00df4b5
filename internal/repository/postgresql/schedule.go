package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/validator"
)

type scheduleRepository struct {
	db *database.DB
}

func NewScheduleRepository(db *database.DB) schedule.ScheduleRepository {
	return &scheduleRepository{db: db}
}

const scheduleColumns = `id, user_id, day, start_time, end_time, is_split_shift, split_start_time, split_end_time, created_at, updated_at`

func scanSchedule(row pgx.Row) (schedule.Schedule, error) {
	var (
		s                                schedule.Schedule
		day                              string
		start, end, splitStart, splitEnd pgtype.Time
	)
	err := row.Scan(&s.ID, &s.UserID, &day, &start, &end, &s.IsSplitShift, &splitStart, &splitEnd, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return schedule.Schedule{}, err
	}

	wd, ok := validator.ParseWeekday(day)
	if !ok {
		return schedule.Schedule{}, fmt.Errorf("schedule %s has unknown day %q", s.ID, day)
	}
	s.Day = wd
	s.StartTime = timeOfDay(start)
	s.EndTime = timeOfDay(end)
	s.SplitStartTime = timeOfDay(splitStart)
	s.SplitEndTime = timeOfDay(splitEnd)
	return s, nil
}

// GetByUserAndDay implements schedule.ScheduleRepository.
func (r *scheduleRepository) GetByUserAndDay(ctx context.Context, userID string, day time.Weekday) (schedule.Schedule, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE user_id = $1 AND day = $2`

	s, err := scanSchedule(q.QueryRow(ctx, query, userID, day.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.Schedule{}, schedule.ErrScheduleNotFound
		}
		return schedule.Schedule{}, fmt.Errorf("failed to get schedule: %w", err)
	}
	return s, nil
}

// ListByUser implements schedule.ScheduleRepository.
func (r *scheduleRepository) ListByUser(ctx context.Context, userID string) ([]schedule.Schedule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules
		WHERE user_id = $1
		ORDER BY CASE day
			WHEN 'Monday' THEN 1 WHEN 'Tuesday' THEN 2 WHEN 'Wednesday' THEN 3
			WHEN 'Thursday' THEN 4 WHEN 'Friday' THEN 5 WHEN 'Saturday' THEN 6
			ELSE 7 END
	`

	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	defer rows.Close()

	var schedules []schedule.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

// Upsert implements schedule.ScheduleRepository.
func (r *scheduleRepository) Upsert(ctx context.Context, s schedule.Schedule) (schedule.Schedule, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return schedule.Schedule{}, fmt.Errorf("generate schedule id: %w", err)
	}

	query := `
		INSERT INTO schedules (id, user_id, day, start_time, end_time, is_split_shift, split_start_time, split_end_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, day) DO UPDATE SET
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			is_split_shift = EXCLUDED.is_split_shift,
			split_start_time = EXCLUDED.split_start_time,
			split_end_time = EXCLUDED.split_end_time,
			updated_at = NOW()
		RETURNING ` + scheduleColumns

	saved, err := scanSchedule(q.QueryRow(ctx, query,
		id.String(),
		s.UserID,
		s.Day.String(),
		timeParam(s.StartTime),
		timeParam(s.EndTime),
		s.IsSplitShift,
		timeParam(s.SplitStartTime),
		timeParam(s.SplitEndTime),
	))
	if err != nil {
		return schedule.Schedule{}, fmt.Errorf("failed to save schedule: %w", err)
	}
	return saved, nil
}

// Delete implements schedule.ScheduleRepository.
func (r *scheduleRepository) Delete(ctx context.Context, userID string, day time.Weekday) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM schedules WHERE user_id = $1 AND day = $2`, userID, day.String())
	if err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return schedule.ErrScheduleNotFound
	}
	return nil
}
