package attendance

import (
	"context"
	"time"
)

// AttendanceRepository persists attendance rows. Dates are calendar days in
// the application location.
type AttendanceRepository interface {
	// LockUser serializes clock actions of one user until the surrounding transaction ends.
	LockUser(ctx context.Context, userID string) error

	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	// GetByID returns the row or ErrAttendanceNotFound.
	GetByID(ctx context.Context, id string) (Attendance, error)

	// CountByUserAndDate counts rows with clock_in set, open or closed.
	CountByUserAndDate(ctx context.Context, userID string, date time.Time) (int, error)

	// GetLatestOpen returns the most recent open row of the day or ErrAttendanceNotFound.
	GetLatestOpen(ctx context.Context, userID string, date time.Time) (Attendance, error)

	// CloseIfOpen sets clock_out only while it is still null and reports whether it did.
	CloseIfOpen(ctx context.Context, id string, clockOut time.Time) (bool, error)

	MarkHasIssue(ctx context.Context, id string) error

	// Correct overwrites clock_in and clock_out. A nil clockOut leaves the row open.
	Correct(ctx context.Context, id string, clockIn time.Time, clockOut *time.Time) (Attendance, error)

	// ListByUserAndRange returns rows in [start, end] ordered by date then insertion.
	ListByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]Attendance, error)

	// ListOpenBefore returns open rows whose clock-in instant is before threshold.
	ListOpenBefore(ctx context.Context, threshold time.Time) ([]Attendance, error)

	// ListByDate returns every row of the day across users.
	ListByDate(ctx context.Context, date time.Time) ([]Attendance, error)
}

type InconsistencyRepository interface {
	// CreateIfAbsent inserts unless a flag with the same (user, date, issue) exists.
	CreateIfAbsent(ctx context.Context, inconsistency Inconsistency) (bool, error)
	List(ctx context.Context, filter InconsistencyFilter) ([]Inconsistency, error)
}
