package attendance

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/clock"
)

const detailTimeLayout = "03:04 PM"

// DetectAnomalies compares a record with the user's persisted schedule row for
// that weekday. Synthetic default windows are never used here, so row must be
// the stored row or nil.
func DetectAnomalies(att attendance.Attendance, row *schedule.Schedule, policy attendance.Policy) []attendance.Inconsistency {
	if !row.HasPrimary() || clock.IsWeekend(att.Date) {
		return nil
	}

	start := row.StartTime.On(att.Date)
	end := row.EndTime.On(att.Date)

	flag := func(issue attendance.IssueType, details string) attendance.Inconsistency {
		return attendance.Inconsistency{
			UserID:       att.UserID,
			AttendanceID: att.ID,
			Date:         att.Date,
			IssueType:    issue,
			Details:      details,
		}
	}

	var flags []attendance.Inconsistency

	if att.ClockIn.After(start.Add(policy.AllowedLate)) {
		flags = append(flags, flag(attendance.IssueLate, fmt.Sprintf("Clock-in at %s, scheduled start %s",
			att.ClockIn.Format(detailTimeLayout), start.Format(detailTimeLayout))))
	}

	if att.ClockOut == nil {
		return flags
	}

	if att.ClockOut.Before(end) {
		flags = append(flags, flag(attendance.IssueEarlyOut, fmt.Sprintf("Clock-out at %s, scheduled end %s",
			att.ClockOut.Format(detailTimeLayout), end.Format(detailTimeLayout))))
	}

	worked := att.ClockOut.Sub(att.ClockIn)
	scheduled := end.Sub(start)
	if worked > scheduled+policy.OvertimeBuffer {
		flags = append(flags, flag(attendance.IssueOvertime, fmt.Sprintf("Worked %s, scheduled %s",
			formatHours(worked), formatHours(scheduled))))
	}

	return flags
}

// formatHours renders a duration as H:MM:SS.
func formatHours(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}
