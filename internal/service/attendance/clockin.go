package attendance

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/clock"
)

// ClockInDecision is an accepted clock-in. Window is nil when unconstrained.
type ClockInDecision struct {
	Kind   schedule.WindowKind
	Window *schedule.Window
}

var unconstrained = ClockInDecision{Kind: schedule.WindowUnconstrained}

// ValidateClockIn decides whether a clock-in at now is allowed. todayCount is
// the number of rows the user already has for today, open or closed.
func ValidateClockIn(now time.Time, windows []schedule.Window, cfg settings.GlobalSettings, policy attendance.Policy, todayCount int) (ClockInDecision, error) {
	if policy.MaxShiftsPerDay > 0 && todayCount >= policy.MaxShiftsPerDay {
		return ClockInDecision{}, attendance.ErrDailyLimitExceeded
	}

	at := clock.Of(now)
	for i, w := range windows {
		if w.Contains(at, earlyInAllowance(now, w, cfg, policy)) {
			return ClockInDecision{Kind: w.Kind(), Window: &windows[i]}, nil
		}
	}

	if cfg.EnableStrictSchedule && len(windows) > 0 {
		return ClockInDecision{}, attendance.Rejectf(attendance.ErrOutsideWindow,
			"clock-in at %s is outside your shift (%s)", at, describeWindows(windows))
	}
	return unconstrained, nil
}

// earlyInAllowance adds the early-bird bonus to weekday primary windows that
// start at the early-bird time. Split windows only get the configured minutes.
func earlyInAllowance(now time.Time, w schedule.Window, cfg settings.GlobalSettings, policy attendance.Policy) time.Duration {
	allowance := cfg.EarlyInAllowance()
	if !w.IsSplit && w.Start == policy.EarlyBirdStart && !clock.IsWeekend(now) {
		allowance += policy.EarlyBirdBonus
	}
	return allowance
}

func describeWindows(windows []schedule.Window) string {
	parts := make([]string, 0, len(windows))
	for _, w := range windows {
		parts = append(parts, w.Start.String()+"-"+w.End.String())
	}
	return strings.Join(parts, ", ")
}
