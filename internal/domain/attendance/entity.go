package attendance

import (
	"time"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/clock"
)

// Attendance is one clock-in event. Date is midnight of the logical day in
// the application location and ClockIn is anchored on it. ClockOut may fall
// on the next calendar day for cross-midnight shifts.
type Attendance struct {
	ID        string
	UserID    string
	Date      time.Time
	ClockIn   time.Time
	ClockOut  *time.Time
	HasIssue  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *Attendance) IsOpen() bool {
	return a.ClockOut == nil
}

// Worked is zero while the shift is open.
func (a *Attendance) Worked() time.Duration {
	if a.ClockOut == nil {
		return 0
	}
	return ShiftDuration(clock.Of(a.ClockIn), clock.Of(*a.ClockOut))
}

// ShiftDuration is out-in, wrapping past midnight when out is earlier.
func ShiftDuration(in, out clock.TimeOfDay) time.Duration {
	d := out.Sub(in)
	if d < 0 {
		d += clock.Day
	}
	return d
}

// AnchorClockOut places a wall-clock clock-out on the instant line relative
// to clockIn, rolling to the next day when it reads earlier.
func AnchorClockOut(clockIn time.Time, out clock.TimeOfDay) time.Time {
	t := out.On(clockIn)
	if t.Before(clockIn) {
		t = t.Add(clock.Day)
	}
	return t
}

type IssueType string

const (
	IssueLate     IssueType = "Late"
	IssueEarlyOut IssueType = "Early Out"
	IssueOvertime IssueType = "Overtime"
)

var IssueTypeValues = []string{
	string(IssueLate),
	string(IssueEarlyOut),
	string(IssueOvertime),
}

// Inconsistency is an advisory flag. At most one exists per (UserID, Date, IssueType).
type Inconsistency struct {
	ID           string
	UserID       string
	AttendanceID string
	Date         time.Time
	IssueType    IssueType
	Details      string
	CreatedAt    time.Time
}

// Policy holds the fixed business rules layered on top of GlobalSettings.
type Policy struct {
	// Clock-out between the matched end and this time is snapped back to the end.
	EveningCutoff clock.TimeOfDay
	// Clock-out later than end + ClockOutGrace is rejected in strict mode.
	ClockOutGrace time.Duration
	// How far before a window start a clock-in may sit and still match at clock-out.
	ClockOutMatchTolerance time.Duration
	// Weekday primary windows starting exactly at EarlyBirdStart get EarlyBirdBonus
	// on top of the configured early-in allowance.
	EarlyBirdStart  clock.TimeOfDay
	EarlyBirdBonus  time.Duration
	OvertimeBuffer  time.Duration
	AllowedLate     time.Duration
	MaxShiftsPerDay int
}

func DefaultPolicy() Policy {
	return Policy{
		EveningCutoff:          clock.New(18, 30),
		ClockOutGrace:          60 * time.Minute,
		ClockOutMatchTolerance: time.Hour,
		EarlyBirdStart:         clock.New(7, 30),
		EarlyBirdBonus:         30 * time.Minute,
		OvertimeBuffer:         4 * time.Hour,
		AllowedLate:            0,
		MaxShiftsPerDay:        2,
	}
}
