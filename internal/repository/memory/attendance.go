package memory

import (
	"context"
	"slices"
	"time"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/validator"
)

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

type attendanceRepository struct{ s *Store }

// LockUser is a no-op; memory transactions are already serialized.
func (r attendanceRepository) LockUser(context.Context, string) error {
	return nil
}

func (r attendanceRepository) Create(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	err := r.s.write(ctx, func(t *tables) error {
		if att.ID == "" {
			att.ID = newID()
		}
		now := r.s.now()
		att.CreatedAt, att.UpdatedAt = now, now
		t.attendance = append(t.attendance, att)
		return nil
	})
	return att, err
}

func (r attendanceRepository) GetByID(_ context.Context, id string) (attendance.Attendance, error) {
	var (
		att   attendance.Attendance
		found bool
	)
	r.s.read(func(t *tables) {
		for _, a := range t.attendance {
			if a.ID == id {
				att, found = a, true
				return
			}
		}
	})
	if !found {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return att, nil
}

func (r attendanceRepository) CountByUserAndDate(_ context.Context, userID string, date time.Time) (int, error) {
	count := 0
	r.s.read(func(t *tables) {
		for _, a := range t.attendance {
			if a.UserID == userID && sameDay(a.Date, date) && !a.ClockIn.IsZero() {
				count++
			}
		}
	})
	return count, nil
}

func (r attendanceRepository) GetLatestOpen(_ context.Context, userID string, date time.Time) (attendance.Attendance, error) {
	var (
		latest attendance.Attendance
		found  bool
	)
	r.s.read(func(t *tables) {
		for _, a := range t.attendance {
			if a.UserID != userID || !sameDay(a.Date, date) || !a.IsOpen() {
				continue
			}
			if !found || !a.ClockIn.Before(latest.ClockIn) {
				latest, found = a, true
			}
		}
	})
	if !found {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return latest, nil
}

func (r attendanceRepository) CloseIfOpen(ctx context.Context, id string, clockOut time.Time) (bool, error) {
	closed := false
	err := r.s.write(ctx, func(t *tables) error {
		for i := range t.attendance {
			a := &t.attendance[i]
			if a.ID != id {
				continue
			}
			if !a.IsOpen() {
				return nil
			}
			out := clockOut
			a.ClockOut = &out
			a.UpdatedAt = r.s.now()
			closed = true
			return nil
		}
		return nil
	})
	return closed, err
}

func (r attendanceRepository) MarkHasIssue(ctx context.Context, id string) error {
	return r.s.write(ctx, func(t *tables) error {
		for i := range t.attendance {
			if t.attendance[i].ID == id {
				t.attendance[i].HasIssue = true
				t.attendance[i].UpdatedAt = r.s.now()
				return nil
			}
		}
		return attendance.ErrAttendanceNotFound
	})
}

func (r attendanceRepository) Correct(ctx context.Context, id string, clockIn time.Time, clockOut *time.Time) (attendance.Attendance, error) {
	var corrected attendance.Attendance
	err := r.s.write(ctx, func(t *tables) error {
		for i := range t.attendance {
			a := &t.attendance[i]
			if a.ID != id {
				continue
			}
			a.ClockIn = clockIn
			a.ClockOut = nil
			if clockOut != nil {
				out := *clockOut
				a.ClockOut = &out
			}
			a.UpdatedAt = r.s.now()
			corrected = *a
			return nil
		}
		return attendance.ErrAttendanceNotFound
	})
	return corrected, err
}

func (r attendanceRepository) filter(keep func(a attendance.Attendance) bool) []attendance.Attendance {
	var out []attendance.Attendance
	r.s.read(func(t *tables) {
		for _, a := range t.attendance {
			if keep(a) {
				out = append(out, a)
			}
		}
	})
	return out
}

func (r attendanceRepository) ListByUserAndRange(_ context.Context, userID string, start, end time.Time) ([]attendance.Attendance, error) {
	from, to := dayKey(start), dayKey(end)
	records := r.filter(func(a attendance.Attendance) bool {
		d := dayKey(a.Date)
		return a.UserID == userID && d >= from && d <= to
	})
	// Stable sort keeps insertion order within a day.
	slices.SortStableFunc(records, func(a, b attendance.Attendance) int {
		return a.Date.Compare(b.Date)
	})
	return records, nil
}

func (r attendanceRepository) ListOpenBefore(_ context.Context, threshold time.Time) ([]attendance.Attendance, error) {
	return r.filter(func(a attendance.Attendance) bool {
		return a.IsOpen() && a.ClockIn.Before(threshold)
	}), nil
}

func (r attendanceRepository) ListByDate(_ context.Context, date time.Time) ([]attendance.Attendance, error) {
	return r.filter(func(a attendance.Attendance) bool {
		return sameDay(a.Date, date)
	}), nil
}

type inconsistencyRepository struct{ s *Store }

func (r inconsistencyRepository) CreateIfAbsent(ctx context.Context, inc attendance.Inconsistency) (bool, error) {
	created := false
	err := r.s.write(ctx, func(t *tables) error {
		for _, existing := range t.inconsistencies {
			if existing.UserID == inc.UserID && sameDay(existing.Date, inc.Date) && existing.IssueType == inc.IssueType {
				return nil
			}
		}
		if inc.ID == "" {
			inc.ID = newID()
		}
		inc.CreatedAt = r.s.now()
		t.inconsistencies = append(t.inconsistencies, inc)
		created = true
		return nil
	})
	return created, err
}

func (r inconsistencyRepository) List(_ context.Context, filter attendance.InconsistencyFilter) ([]attendance.Inconsistency, error) {
	var out []attendance.Inconsistency
	r.s.read(func(t *tables) {
		for _, inc := range t.inconsistencies {
			if filter.UserID != nil && inc.UserID != *filter.UserID {
				continue
			}
			if filter.IssueType != nil && string(inc.IssueType) != *filter.IssueType {
				continue
			}
			if filter.StartDate != nil {
				if d, ok := validator.IsValidDate(*filter.StartDate); ok && dayKey(inc.Date) < dayKey(d) {
					continue
				}
			}
			if filter.EndDate != nil {
				if d, ok := validator.IsValidDate(*filter.EndDate); ok && dayKey(inc.Date) > dayKey(d) {
					continue
				}
			}
			out = append(out, inc)
		}
	})
	slices.SortStableFunc(out, func(a, b attendance.Inconsistency) int {
		return b.Date.Compare(a.Date)
	})
	return out, nil
}
