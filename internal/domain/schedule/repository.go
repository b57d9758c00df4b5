package schedule

import (
	"context"
	"time"
)

type ScheduleRepository interface {
	// GetByUserAndDay returns ErrScheduleNotFound when the user has no row for day.
	GetByUserAndDay(ctx context.Context, userID string, day time.Weekday) (Schedule, error)
	ListByUser(ctx context.Context, userID string) ([]Schedule, error)
	// Upsert keeps one row per (user, day).
	Upsert(ctx context.Context, schedule Schedule) (Schedule, error)
	Delete(ctx context.Context, userID string, day time.Weekday) error
}
