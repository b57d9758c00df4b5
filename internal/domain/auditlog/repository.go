package auditlog

import (
	"context"
	"time"
)

type AuditLogRepository interface {
	Create(ctx context.Context, entry Entry) error
	// ListByDate returns entries of the calendar day, newest first.
	ListByDate(ctx context.Context, date time.Time) ([]Entry, error)
}
