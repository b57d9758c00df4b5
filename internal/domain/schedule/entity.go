package schedule

import (
	"time"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/clock"
)

// Schedule is one user's shift definition for one weekday.
// At most one row exists per (UserID, Day).
type Schedule struct {
	ID             string
	UserID         string
	Day            time.Weekday
	StartTime      *clock.TimeOfDay
	EndTime        *clock.TimeOfDay
	IsSplitShift   bool
	SplitStartTime *clock.TimeOfDay
	SplitEndTime   *clock.TimeOfDay
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasPrimary reports whether both primary times are set.
func (s *Schedule) HasPrimary() bool {
	return s != nil && s.StartTime != nil && s.EndTime != nil
}

// HasSplit reports whether the split flag is set and both split times exist.
func (s *Schedule) HasSplit() bool {
	return s != nil && s.IsSplitShift && s.SplitStartTime != nil && s.SplitEndTime != nil
}

type WindowKind string

const (
	WindowPrimary       WindowKind = "primary"
	WindowSplit         WindowKind = "split"
	WindowUnconstrained WindowKind = "unconstrained"
)

// Window is one shift segment for a date. Windows built from settings
// defaults are plain values and never persisted.
type Window struct {
	Start   clock.TimeOfDay
	End     clock.TimeOfDay
	IsSplit bool
}

func (w Window) Kind() WindowKind {
	if w.IsSplit {
		return WindowSplit
	}
	return WindowPrimary
}

// Contains reports start-before <= t <= end.
func (w Window) Contains(t clock.TimeOfDay, before time.Duration) bool {
	return !t.Before(w.Start.Add(-before)) && !t.After(w.End)
}
