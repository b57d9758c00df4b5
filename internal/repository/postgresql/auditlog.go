package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/auditlog"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/database"
)

type auditLogRepository struct {
	db *database.DB
}

func NewAuditLogRepository(db *database.DB) auditlog.AuditLogRepository {
	return &auditLogRepository{db: db}
}

// Create implements auditlog.AuditLogRepository.
func (r *auditLogRepository) Create(ctx context.Context, entry auditlog.Entry) error {
	q := GetQuerier(ctx, r.db)

	if entry.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generate log id: %w", err)
		}
		entry.ID = id.String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	_, err := q.Exec(ctx, `
		INSERT INTO logs (id, user_id, action, details, timestamp)
		VALUES ($1, $2, $3, $4, $5)
	`, entry.ID, entry.UserID, entry.Action, entry.Details, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to write log: %w", err)
	}
	return nil
}

// ListByDate implements auditlog.AuditLogRepository.
func (r *auditLogRepository) ListByDate(ctx context.Context, date time.Time) ([]auditlog.Entry, error) {
	q := GetQuerier(ctx, r.db)

	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	rows, err := q.Query(ctx, `
		SELECT id, user_id, action, details, timestamp
		FROM logs
		WHERE timestamp >= $1 AND timestamp < $2
		ORDER BY timestamp DESC
	`, start, start.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}
	defer rows.Close()

	var entries []auditlog.Entry
	for rows.Next() {
		var e auditlog.Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Details, &e.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
