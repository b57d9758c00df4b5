package http

import (
	"net/http"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/auditlog"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/handler/http/response"
)

type AuditLogHandler interface {
	List(w http.ResponseWriter, r *http.Request)
}

type auditLogHandlerImpl struct {
	auditLogService auditlog.AuditLogService
}

func NewAuditLogHandler(auditLogService auditlog.AuditLogService) AuditLogHandler {
	return &auditLogHandlerImpl{auditLogService: auditLogService}
}

// List handles GET /audit-logs?date=
func (h *auditLogHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.auditLogService.List(r.Context(), auditlog.ListRequest{Date: r.URL.Query().Get("date")})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, &response.Meta{TotalItems: int64(len(result))})
}
