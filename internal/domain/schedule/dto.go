package schedule

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/validator"
)

type UpsertScheduleRequest struct {
	UserID         string  `json:"-"`
	Day            string  `json:"-"`
	StartTime      *string `json:"start_time"`
	EndTime        *string `json:"end_time"`
	IsSplitShift   bool    `json:"is_split_shift"`
	SplitStartTime *string `json:"split_start_time"`
	SplitEndTime   *string `json:"split_end_time"`

	// Set by the handler from the token, used for the audit trail.
	ActorID string `json:"-"`
}

// Validate checks the request and returns the schedule row it describes.
func (r *UpsertScheduleRequest) Validate() (Schedule, error) {
	var errs validator.ValidationErrors
	s := Schedule{UserID: r.UserID, IsSplitShift: r.IsSplitShift}

	if validator.IsEmpty(r.UserID) {
		errs.Add("user_id", "user_id is required")
	}

	day, ok := validator.ParseWeekday(r.Day)
	if !ok {
		errs.Add("day", "day must be a weekday name such as Monday")
	}
	s.Day = day

	s.StartTime = parseOptionalTime(&errs, "start_time", r.StartTime)
	s.EndTime = parseOptionalTime(&errs, "end_time", r.EndTime)
	s.SplitStartTime = parseOptionalTime(&errs, "split_start_time", r.SplitStartTime)
	s.SplitEndTime = parseOptionalTime(&errs, "split_end_time", r.SplitEndTime)

	if provided(r.StartTime) != provided(r.EndTime) {
		errs.Add("end_time", "start_time and end_time must be set together")
	}
	if s.StartTime != nil && s.EndTime != nil && !s.EndTime.After(*s.StartTime) {
		errs.Add("end_time", "end_time must be after start_time")
	}

	if r.IsSplitShift {
		if !provided(r.SplitStartTime) || !provided(r.SplitEndTime) {
			errs.Add("split_start_time", "split shift requires split_start_time and split_end_time")
		} else if s.SplitStartTime != nil && s.SplitEndTime != nil && !s.SplitEndTime.After(*s.SplitStartTime) {
			errs.Add("split_end_time", "split_end_time must be after split_start_time")
		}
	}

	return s, errs.Err()
}

func provided(value *string) bool {
	return value != nil && !validator.IsEmpty(*value)
}

func parseOptionalTime(errs *validator.ValidationErrors, field string, value *string) *clock.TimeOfDay {
	if value == nil || validator.IsEmpty(*value) {
		return nil
	}
	t, ok := validator.IsValidTimeOfDay(strings.TrimSpace(*value))
	if !ok {
		errs.Add(field, field+" must be HH:MM")
		return nil
	}
	return &t
}

type DeleteScheduleRequest struct {
	UserID  string
	Day     string
	ActorID string
}

func (r *DeleteScheduleRequest) Validate() (time.Weekday, error) {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.UserID) {
		errs.Add("user_id", "user_id is required")
	}
	day, ok := validator.ParseWeekday(r.Day)
	if !ok {
		errs.Add("day", "day must be a weekday name such as Monday")
	}
	return day, errs.Err()
}

type ScheduleResponse struct {
	ID             string           `json:"id"`
	UserID         string           `json:"user_id"`
	Day            string           `json:"day"`
	StartTime      *clock.TimeOfDay `json:"start_time"`
	EndTime        *clock.TimeOfDay `json:"end_time"`
	IsSplitShift   bool             `json:"is_split_shift"`
	SplitStartTime *clock.TimeOfDay `json:"split_start_time"`
	SplitEndTime   *clock.TimeOfDay `json:"split_end_time"`
	UpdatedAt      string           `json:"updated_at"`
}

func NewScheduleResponse(s Schedule) ScheduleResponse {
	return ScheduleResponse{
		ID:             s.ID,
		UserID:         s.UserID,
		Day:            s.Day.String(),
		StartTime:      s.StartTime,
		EndTime:        s.EndTime,
		IsSplitShift:   s.IsSplitShift,
		SplitStartTime: s.SplitStartTime,
		SplitEndTime:   s.SplitEndTime,
		UpdatedAt:      s.UpdatedAt.Format(time.RFC3339),
	}
}

type WindowResponse struct {
	Kind  WindowKind      `json:"kind"`
	Start clock.TimeOfDay `json:"start"`
	End   clock.TimeOfDay `json:"end"`
}

type WindowsResponse struct {
	UserID string `json:"user_id"`
	Date   string `json:"date"`
	// FromDefaults is true when the primary window came from global settings.
	FromDefaults bool             `json:"from_defaults"`
	Windows      []WindowResponse `json:"windows"`
}
