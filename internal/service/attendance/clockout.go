package attendance

import (
	"time"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/clock"
)

type ClockOutDecision struct {
	ClockOut time.Time
	Window   *schedule.Window
	// Snapped is true when ClockOut was truncated to the window end.
	Snapped bool
}

// ValidateClockOut decides the effective clock-out for a shift opened at clockIn.
func ValidateClockOut(now, clockIn time.Time, windows []schedule.Window, cfg settings.GlobalSettings, policy attendance.Policy) (ClockOutDecision, error) {
	asIs := ClockOutDecision{ClockOut: now}
	if !cfg.EnableStrictSchedule {
		return asIs, nil
	}

	w := matchClockOutWindow(clockIn, windows, policy.ClockOutMatchTolerance)
	if w == nil {
		return asIs, nil
	}
	asIs.Window = w

	at := clock.Of(now)
	if at.After(w.End.Add(policy.ClockOutGrace)) {
		return ClockOutDecision{}, attendance.Rejectf(attendance.ErrGracePeriodExceeded,
			"clock-out at %s is more than %s after your shift ended at %s", at, policy.ClockOutGrace, w.End)
	}

	if at.After(w.End) && at.Before(policy.EveningCutoff) {
		return ClockOutDecision{ClockOut: w.End.On(now), Window: w, Snapped: true}, nil
	}
	return asIs, nil
}

// matchClockOutWindow finds the window the open shift belongs to. It allows
// clock-ins up to tolerance before a window start, first match wins.
func matchClockOutWindow(clockIn time.Time, windows []schedule.Window, tolerance time.Duration) *schedule.Window {
	in := clock.Of(clockIn)
	for i, w := range windows {
		if w.Contains(in, tolerance) {
			return &windows[i]
		}
	}
	return nil
}
