package auditlog

import "time"

// Action names written by the attendance engine.
const (
	ActionClockIn         = "clock_in"
	ActionClockOut        = "clock_out"
	ActionAutoClockOut    = "auto_clock_out"
	ActionSettingsUpdated = "settings_updated"
	ActionScheduleUpdated = "schedule_updated"
	ActionScheduleDeleted = "schedule_deleted"
	ActionUserCreated     = "user_created"
	ActionUserUpdated     = "user_updated"
	ActionUserDeleted     = "user_deleted"
	ActionLogCorrected    = "attendance_corrected"
)

type Entry struct {
	ID        string
	UserID    *string // nil for system actions
	Action    string
	Details   string
	Timestamp time.Time
}
