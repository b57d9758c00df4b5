package postgresql

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/clock"
)

// TIME columns carry wall-clock values; DATE columns carry calendar days that
// are re-anchored into the application location on read.

func timeParam(t *clock.TimeOfDay) pgtype.Time {
	if t == nil {
		return pgtype.Time{}
	}
	return pgtype.Time{Microseconds: t.Microseconds(), Valid: true}
}

func wallClockParam(t time.Time) pgtype.Time {
	tod := clock.Of(t)
	return timeParam(&tod)
}

func timeOfDay(t pgtype.Time) *clock.TimeOfDay {
	if !t.Valid {
		return nil
	}
	tod := clock.FromMicroseconds(t.Microseconds)
	return &tod
}

func dateParam(t time.Time) pgtype.Date {
	y, m, d := t.Date()
	return pgtype.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

func dateIn(d pgtype.Date, loc *time.Location) time.Time {
	y, m, day := d.Time.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}
