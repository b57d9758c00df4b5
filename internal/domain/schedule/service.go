package schedule

import (
	"context"
	"time"
)

type ScheduleService interface {
	ListByUser(ctx context.Context, userID string) ([]ScheduleResponse, error)
	Upsert(ctx context.Context, req UpsertScheduleRequest) (ScheduleResponse, error)
	Delete(ctx context.Context, req DeleteScheduleRequest) error

	// ResolveWindows shows which windows clock actions are checked against on date.
	ResolveWindows(ctx context.Context, userID string, date time.Time) (WindowsResponse, error)
}
