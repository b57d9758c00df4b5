package auditlog

import "context"

type AuditLogService interface {
	// Record never fails the caller; write errors are logged.
	Record(ctx context.Context, userID *string, action, details string)
	List(ctx context.Context, req ListRequest) ([]EntryResponse, error)
}
