package schedule

import (
	"time"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/clock"
)

// Defaults is the fallback schedule from global settings.
type Defaults struct {
	Start *clock.TimeOfDay
	End   *clock.TimeOfDay
}

// ResolveWindows returns the windows that apply on date, in declaration
// order: primary first, then split. row may be nil.
//
// A weekday without primary times falls back to defaults when both are set.
// Weekends never fall back, so a weekend without explicit times yields no
// primary window.
func ResolveWindows(date time.Time, row *Schedule, defaults Defaults) []Window {
	windows := make([]Window, 0, 2)

	switch {
	case row.HasPrimary():
		windows = append(windows, Window{Start: *row.StartTime, End: *row.EndTime})
	case !clock.IsWeekend(date) && defaults.Start != nil && defaults.End != nil:
		windows = append(windows, Window{Start: *defaults.Start, End: *defaults.End})
	}

	if row.HasSplit() {
		windows = append(windows, Window{Start: *row.SplitStartTime, End: *row.SplitEndTime, IsSplit: true})
	}

	return windows
}
