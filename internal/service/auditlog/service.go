package auditlog

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/auditlog"
)

type AuditLogServiceImpl struct {
	auditlog.AuditLogRepository
	loc *time.Location
}

func NewAuditLogService(auditLogRepository auditlog.AuditLogRepository, loc *time.Location) auditlog.AuditLogService {
	if loc == nil {
		loc = time.Local
	}
	return &AuditLogServiceImpl{AuditLogRepository: auditLogRepository, loc: loc}
}

// Record implements auditlog.AuditLogService.
func (s *AuditLogServiceImpl) Record(ctx context.Context, userID *string, action, details string) {
	entry := auditlog.Entry{
		UserID:    userID,
		Action:    action,
		Details:   details,
		Timestamp: time.Now().In(s.loc),
	}
	if err := s.AuditLogRepository.Create(context.WithoutCancel(ctx), entry); err != nil {
		slog.Error("failed to write audit log", "action", action, "error", err)
	}
}

// List implements auditlog.AuditLogService.
func (s *AuditLogServiceImpl) List(ctx context.Context, req auditlog.ListRequest) ([]auditlog.EntryResponse, error) {
	date, err := req.Validate()
	if err != nil {
		return nil, err
	}
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, s.loc)

	entries, err := s.AuditLogRepository.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	result := make([]auditlog.EntryResponse, 0, len(entries))
	for _, e := range entries {
		result = append(result, auditlog.NewEntryResponse(e))
	}
	return result, nil
}
