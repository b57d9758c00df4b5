package memory

import (
	"context"
	"slices"
	"time"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/schedule"
)

type scheduleRepository struct{ s *Store }

func (r scheduleRepository) GetByUserAndDay(_ context.Context, userID string, day time.Weekday) (schedule.Schedule, error) {
	var (
		row schedule.Schedule
		ok  bool
	)
	r.s.read(func(t *tables) { row, ok = t.schedules[scheduleKey{userID, day}] })
	if !ok {
		return schedule.Schedule{}, schedule.ErrScheduleNotFound
	}
	return row, nil
}

// mondayFirst orders Monday..Sunday.
func mondayFirst(d time.Weekday) int {
	return (int(d) + 6) % 7
}

func (r scheduleRepository) ListByUser(_ context.Context, userID string) ([]schedule.Schedule, error) {
	var rows []schedule.Schedule
	r.s.read(func(t *tables) {
		for k, v := range t.schedules {
			if k.userID == userID {
				rows = append(rows, v)
			}
		}
	})
	slices.SortFunc(rows, func(a, b schedule.Schedule) int {
		return mondayFirst(a.Day) - mondayFirst(b.Day)
	})
	return rows, nil
}

func (r scheduleRepository) Upsert(ctx context.Context, row schedule.Schedule) (schedule.Schedule, error) {
	err := r.s.write(ctx, func(t *tables) error {
		key := scheduleKey{row.UserID, row.Day}
		now := r.s.now()
		if existing, ok := t.schedules[key]; ok {
			row.ID = existing.ID
			row.CreatedAt = existing.CreatedAt
		} else {
			row.ID = newID()
			row.CreatedAt = now
		}
		row.UpdatedAt = now
		t.schedules[key] = row
		return nil
	})
	return row, err
}

func (r scheduleRepository) Delete(ctx context.Context, userID string, day time.Weekday) error {
	return r.s.write(ctx, func(t *tables) error {
		key := scheduleKey{userID, day}
		if _, ok := t.schedules[key]; !ok {
			return schedule.ErrScheduleNotFound
		}
		delete(t.schedules, key)
		return nil
	})
}
