package attendance

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/clock"
)

type Slot struct {
	AttendanceID string
	In           clock.TimeOfDay
	Out          clock.TimeOfDay
	Duration     time.Duration
}

type DayBreakdown struct {
	Date   time.Time
	Shift1 *Slot
	Shift2 *Slot
	Open   int
	Worked time.Duration
}

type Totals struct {
	UserID string
	Days   []DayBreakdown
	Worked time.Duration
}

// ComputeTotals pairs completed rows into at most two slots per date, in the
// order given. A third completed row replaces the second slot. Open rows
// contribute nothing.
func ComputeTotals(userID string, records []attendance.Attendance) Totals {
	byDate := map[string]*DayBreakdown{}
	var order []string

	for _, r := range records {
		if r.UserID != userID {
			continue
		}
		key := r.Date.Format(attendance.DateLayout)
		day, ok := byDate[key]
		if !ok {
			day = &DayBreakdown{Date: r.Date}
			byDate[key] = day
			order = append(order, key)
		}

		if r.ClockOut == nil {
			day.Open++
			continue
		}

		in, out := clock.Of(r.ClockIn), clock.Of(*r.ClockOut)
		slot := &Slot{AttendanceID: r.ID, In: in, Out: out, Duration: attendance.ShiftDuration(in, out)}
		if day.Shift1 == nil {
			day.Shift1 = slot
		} else {
			day.Shift2 = slot
		}
	}

	slices.Sort(order)

	totals := Totals{UserID: userID, Days: make([]DayBreakdown, 0, len(order))}
	for _, key := range order {
		day := byDate[key]
		for _, s := range []*Slot{day.Shift1, day.Shift2} {
			if s != nil {
				day.Worked += s.Duration
			}
		}
		totals.Worked += day.Worked
		totals.Days = append(totals.Days, *day)
	}
	return totals
}

// DecimalHours converts d to hours rounded to two places, from whole seconds.
func DecimalHours(d time.Duration) decimal.Decimal {
	seconds := decimal.NewFromInt(int64(d / time.Second))
	return seconds.Div(decimal.NewFromInt(3600)).Round(2)
}
