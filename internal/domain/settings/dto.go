package settings

import (
	"time"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/validator"
)

// UpdateSettingsRequest is a partial update, nil fields are left unchanged.
type UpdateSettingsRequest struct {
	EnableStrictSchedule *bool   `json:"enable_strict_schedule"`
	AutoClockOutHours    *int    `json:"auto_clock_out_hours"`
	AllowEarlyOut        *bool   `json:"allow_early_out"`
	AllowOvertime        *bool   `json:"allow_overtime"`
	DefaultStart         *string `json:"default_start"`
	DefaultEnd           *string `json:"default_end"`
	AllowedEarlyInMins   *int    `json:"allowed_early_in_mins"`
	UnitHead             *string `json:"unit_head"`

	ActorID string `json:"-"`
}

func (r *UpdateSettingsRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.AutoClockOutHours != nil && (*r.AutoClockOutHours < 0 || *r.AutoClockOutHours > 24) {
		errs.Add("auto_clock_out_hours", "auto_clock_out_hours must be between 0 and 24")
	}
	if r.AllowedEarlyInMins != nil && (*r.AllowedEarlyInMins < 0 || *r.AllowedEarlyInMins > 240) {
		errs.Add("allowed_early_in_mins", "allowed_early_in_mins must be between 0 and 240")
	}
	// Empty string clears a default time.
	if r.DefaultStart != nil && *r.DefaultStart != "" {
		if _, ok := validator.IsValidTimeOfDay(*r.DefaultStart); !ok {
			errs.Add("default_start", "default_start must be HH:MM")
		}
	}
	if r.DefaultEnd != nil && *r.DefaultEnd != "" {
		if _, ok := validator.IsValidTimeOfDay(*r.DefaultEnd); !ok {
			errs.Add("default_end", "default_end must be HH:MM")
		}
	}

	return errs.Err()
}

// Apply merges the request into current and checks the combined defaults.
func (r *UpdateSettingsRequest) Apply(current GlobalSettings) (GlobalSettings, error) {
	next := current
	if r.EnableStrictSchedule != nil {
		next.EnableStrictSchedule = *r.EnableStrictSchedule
	}
	if r.AutoClockOutHours != nil {
		next.AutoClockOutHours = *r.AutoClockOutHours
	}
	if r.AllowEarlyOut != nil {
		next.AllowEarlyOut = *r.AllowEarlyOut
	}
	if r.AllowOvertime != nil {
		next.AllowOvertime = *r.AllowOvertime
	}
	if r.AllowedEarlyInMins != nil {
		next.AllowedEarlyInMins = *r.AllowedEarlyInMins
	}
	if r.UnitHead != nil {
		next.UnitHead = *r.UnitHead
	}
	if r.DefaultStart != nil {
		next.DefaultStart = optionalTime(*r.DefaultStart)
	}
	if r.DefaultEnd != nil {
		next.DefaultEnd = optionalTime(*r.DefaultEnd)
	}

	if next.DefaultStart != nil && next.DefaultEnd != nil && !next.DefaultEnd.After(*next.DefaultStart) {
		return current, validator.ValidationErrors{{Field: "default_end", Message: "default_end must be after default_start"}}
	}
	return next, nil
}

func optionalTime(s string) *clock.TimeOfDay {
	if s == "" {
		return nil
	}
	t := clock.MustParse(s)
	return &t
}

type SettingsResponse struct {
	EnableStrictSchedule bool             `json:"enable_strict_schedule"`
	AutoClockOutHours    int              `json:"auto_clock_out_hours"`
	AllowEarlyOut        bool             `json:"allow_early_out"`
	AllowOvertime        bool             `json:"allow_overtime"`
	DefaultStart         *clock.TimeOfDay `json:"default_start"`
	DefaultEnd           *clock.TimeOfDay `json:"default_end"`
	AllowedEarlyInMins   int              `json:"allowed_early_in_mins"`
	UnitHead             string           `json:"unit_head"`
	UpdatedAt            string           `json:"updated_at"`
}

func NewSettingsResponse(s GlobalSettings) SettingsResponse {
	return SettingsResponse{
		EnableStrictSchedule: s.EnableStrictSchedule,
		AutoClockOutHours:    s.AutoClockOutHours,
		AllowEarlyOut:        s.AllowEarlyOut,
		AllowOvertime:        s.AllowOvertime,
		DefaultStart:         s.DefaultStart,
		DefaultEnd:           s.DefaultEnd,
		AllowedEarlyInMins:   s.AllowedEarlyInMins,
		UnitHead:             s.UnitHead,
		UpdatedAt:            s.UpdatedAt.Format(time.RFC3339),
	}
}
