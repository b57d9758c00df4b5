package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/database"
)

type attendanceRepository struct {
	db  *database.DB
	loc *time.Location
}

func NewAttendanceRepository(db *database.DB, loc *time.Location) attendance.AttendanceRepository {
	return &attendanceRepository{db: db, loc: loc}
}

const attendanceColumns = `id, user_id, date, clock_in, clock_out, has_issue, created_at, updated_at`

func (a *attendanceRepository) scan(row pgx.Row) (attendance.Attendance, error) {
	var (
		att      attendance.Attendance
		date     pgtype.Date
		clockIn  pgtype.Time
		clockOut pgtype.Time
	)
	err := row.Scan(&att.ID, &att.UserID, &date, &clockIn, &clockOut, &att.HasIssue, &att.CreatedAt, &att.UpdatedAt)
	if err != nil {
		return attendance.Attendance{}, err
	}

	att.Date = dateIn(date, a.loc)
	att.ClockIn = clock.FromMicroseconds(clockIn.Microseconds).On(att.Date)
	if out := timeOfDay(clockOut); out != nil {
		t := attendance.AnchorClockOut(att.ClockIn, *out)
		att.ClockOut = &t
	}
	return att, nil
}

func (a *attendanceRepository) list(ctx context.Context, query string, args ...any) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []attendance.Attendance
	for rows.Next() {
		att, err := a.scan(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, att)
	}
	return records, rows.Err()
}

// LockUser implements attendance.AttendanceRepository.
// The advisory lock is released when the surrounding transaction ends.
func (a *attendanceRepository) LockUser(ctx context.Context, userID string) error {
	q := GetQuerier(ctx, a.db)

	if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "attendance:"+userID); err != nil {
		return fmt.Errorf("lock user %s: %w", userID, err)
	}
	return nil
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	if newAttendance.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return attendance.Attendance{}, fmt.Errorf("generate attendance id: %w", err)
		}
		newAttendance.ID = id.String()
	}

	var clockOut pgtype.Time
	if newAttendance.ClockOut != nil {
		clockOut = wallClockParam(*newAttendance.ClockOut)
	}

	query := `
		INSERT INTO attendance (id, user_id, date, clock_in, clock_out, has_issue)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + attendanceColumns

	created, err := a.scan(q.QueryRow(ctx, query,
		newAttendance.ID,
		newAttendance.UserID,
		dateParam(newAttendance.Date),
		wallClockParam(newAttendance.ClockIn),
		clockOut,
		newAttendance.HasIssue,
	))
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}
	return created, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	att, err := a.scan(q.QueryRow(ctx, `SELECT `+attendanceColumns+` FROM attendance WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance %s: %w", id, err)
	}
	return att, nil
}

// CountByUserAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) CountByUserAndDate(ctx context.Context, userID string, date time.Time) (int, error) {
	q := GetQuerier(ctx, a.db)

	var count int
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM attendance
		WHERE user_id = $1 AND date = $2 AND clock_in IS NOT NULL
	`, userID, dateParam(date)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count attendance: %w", err)
	}
	return count, nil
}

// GetLatestOpen implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetLatestOpen(ctx context.Context, userID string, date time.Time) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance
		WHERE user_id = $1 AND date = $2 AND clock_out IS NULL
		ORDER BY clock_in DESC, created_at DESC
		LIMIT 1
	`

	att, err := a.scan(q.QueryRow(ctx, query, userID, dateParam(date)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get open attendance: %w", err)
	}
	return att, nil
}

// CloseIfOpen implements attendance.AttendanceRepository.
func (a *attendanceRepository) CloseIfOpen(ctx context.Context, id string, clockOut time.Time) (bool, error) {
	q := GetQuerier(ctx, a.db)

	tag, err := q.Exec(ctx, `
		UPDATE attendance
		SET clock_out = $2, updated_at = NOW()
		WHERE id = $1 AND clock_out IS NULL
	`, id, wallClockParam(clockOut))
	if err != nil {
		return false, fmt.Errorf("failed to close attendance %s: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkHasIssue implements attendance.AttendanceRepository.
func (a *attendanceRepository) MarkHasIssue(ctx context.Context, id string) error {
	q := GetQuerier(ctx, a.db)

	tag, err := q.Exec(ctx, `UPDATE attendance SET has_issue = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to flag attendance %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// Correct implements attendance.AttendanceRepository.
func (a *attendanceRepository) Correct(ctx context.Context, id string, clockIn time.Time, clockOut *time.Time) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	var out pgtype.Time
	if clockOut != nil {
		out = wallClockParam(clockOut.In(a.loc))
	}

	query := `
		UPDATE attendance
		SET clock_in = $2, clock_out = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + attendanceColumns

	att, err := a.scan(q.QueryRow(ctx, query, id, wallClockParam(clockIn.In(a.loc)), out))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to correct attendance %s: %w", id, err)
	}
	return att, nil
}

// ListByUserAndRange implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]attendance.Attendance, error) {
	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance
		WHERE user_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date, created_at, id
	`
	records, err := a.list(ctx, query, userID, dateParam(start), dateParam(end))
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance for %s: %w", userID, err)
	}
	return records, nil
}

// ListOpenBefore implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListOpenBefore(ctx context.Context, threshold time.Time) ([]attendance.Attendance, error) {
	threshold = threshold.In(a.loc)
	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance
		WHERE clock_out IS NULL
		  AND (date < $1 OR (date = $1 AND clock_in < $2))
		ORDER BY date, clock_in
	`
	records, err := a.list(ctx, query, dateParam(clock.DateOf(threshold)), wallClockParam(threshold))
	if err != nil {
		return nil, fmt.Errorf("failed to list open attendance: %w", err)
	}
	return records, nil
}

// ListByDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByDate(ctx context.Context, date time.Time) ([]attendance.Attendance, error) {
	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance
		WHERE date = $1
		ORDER BY user_id, created_at, id
	`
	records, err := a.list(ctx, query, dateParam(date))
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance for date: %w", err)
	}
	return records, nil
}
