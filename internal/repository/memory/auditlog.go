package memory

import (
	"context"
	"slices"
	"time"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/auditlog"
)

type auditLogRepository struct{ s *Store }

func (r auditLogRepository) Create(ctx context.Context, entry auditlog.Entry) error {
	return r.s.write(ctx, func(t *tables) error {
		if entry.ID == "" {
			entry.ID = newID()
		}
		if entry.Timestamp.IsZero() {
			entry.Timestamp = r.s.now()
		}
		t.logs = append(t.logs, entry)
		return nil
	})
}

func (r auditLogRepository) ListByDate(_ context.Context, date time.Time) ([]auditlog.Entry, error) {
	var out []auditlog.Entry
	r.s.read(func(t *tables) {
		for _, e := range t.logs {
			if sameDay(e.Timestamp.In(date.Location()), date) {
				out = append(out, e)
			}
		}
	})
	slices.SortStableFunc(out, func(a, b auditlog.Entry) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return out, nil
}
