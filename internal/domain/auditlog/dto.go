package auditlog

import (
	"time"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/validator"
)

type ListRequest struct {
	Date string `json:"date"`
}

func (r *ListRequest) Validate() (time.Time, error) {
	d, ok := validator.IsValidDate(r.Date)
	if !ok {
		return time.Time{}, validator.ValidationErrors{{Field: "date", Message: "date must be YYYY-MM-DD"}}
	}
	return d, nil
}

type EntryResponse struct {
	ID        string  `json:"id"`
	UserID    *string `json:"user_id"`
	Action    string  `json:"action"`
	Details   string  `json:"details"`
	Timestamp string  `json:"timestamp"`
}

func NewEntryResponse(e Entry) EntryResponse {
	return EntryResponse{
		ID:        e.ID,
		UserID:    e.UserID,
		Action:    e.Action,
		Details:   e.Details,
		Timestamp: e.Timestamp.Format(time.RFC3339),
	}
}
