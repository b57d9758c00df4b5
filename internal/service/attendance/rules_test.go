package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/clock"
)

var pht = time.FixedZone("PHT", 8*3600)

// 2025-03-04 is a Tuesday, 2025-03-08 a Saturday.
func at(day, hour, minute int) time.Time {
	return time.Date(2025, 3, day, hour, minute, 0, 0, pht)
}

func window(start, end string) schedule.Window {
	return schedule.Window{Start: clock.MustParse(start), End: clock.MustParse(end)}
}

func splitWindow(start, end string) schedule.Window {
	w := window(start, end)
	w.IsSplit = true
	return w
}

func strictSettings() settings.GlobalSettings {
	cfg := settings.Default()
	cfg.EnableStrictSchedule = true
	return cfg
}

func TestValidateClockIn(t *testing.T) {
	policy := attendance.DefaultPolicy()
	nonStrict := settings.Default()
	strict := strictSettings()

	tests := []struct {
		name     string
		now      time.Time
		windows  []schedule.Window
		cfg      settings.GlobalSettings
		count    int
		wantKind schedule.WindowKind
		wantErr  error
	}{
		{
			name:     "no windows strict is unconstrained",
			now:      at(4, 3, 0),
			cfg:      strict,
			wantKind: schedule.WindowUnconstrained,
		},
		{
			name:     "inside primary window",
			now:      at(4, 9, 10),
			windows:  []schedule.Window{window("09:00", "17:00")},
			cfg:      strict,
			wantKind: schedule.WindowPrimary,
		},
		{
			name:     "exactly at allowance boundary",
			now:      at(4, 8, 55),
			windows:  []schedule.Window{window("09:00", "17:00")},
			cfg:      strict,
			wantKind: schedule.WindowPrimary,
		},
		{
			name:    "one minute before allowance strict",
			now:     at(4, 8, 54),
			windows: []schedule.Window{window("09:00", "17:00")},
			cfg:     strict,
			wantErr: attendance.ErrOutsideWindow,
		},
		{
			name:     "one minute before allowance non-strict",
			now:      at(4, 8, 54),
			windows:  []schedule.Window{window("09:00", "17:00")},
			cfg:      nonStrict,
			wantKind: schedule.WindowUnconstrained,
		},
		{
			name:     "early bird bonus on weekday",
			now:      at(4, 6, 55),
			windows:  []schedule.Window{window("07:30", "16:30")},
			cfg:      strict,
			wantKind: schedule.WindowPrimary,
		},
		{
			name:    "early bird bonus stops at 35 minutes",
			now:     at(4, 6, 54),
			windows: []schedule.Window{window("07:30", "16:30")},
			cfg:     strict,
			wantErr: attendance.ErrOutsideWindow,
		},
		{
			name:    "no early bird bonus on saturday",
			now:     at(8, 6, 55),
			windows: []schedule.Window{window("07:30", "16:30")},
			cfg:     strict,
			wantErr: attendance.ErrOutsideWindow,
		},
		{
			name:    "no early bird bonus for split window",
			now:     at(4, 6, 55),
			windows: []schedule.Window{window("01:00", "02:00"), splitWindow("07:30", "11:00")},
			cfg:     strict,
			wantErr: attendance.ErrOutsideWindow,
		},
		{
			name:     "split window matches",
			now:      at(4, 18, 0),
			windows:  []schedule.Window{window("08:00", "12:00"), splitWindow("17:00", "21:00")},
			cfg:      strict,
			wantKind: schedule.WindowSplit,
		},
		{
			name:     "overlapping windows first match wins",
			now:      at(4, 11, 0),
			windows:  []schedule.Window{window("08:00", "12:00"), splitWindow("10:00", "14:00")},
			cfg:      strict,
			wantKind: schedule.WindowPrimary,
		},
		{
			name:    "daily limit beats everything",
			now:     at(4, 9, 0),
			cfg:     nonStrict,
			count:   2,
			wantErr: attendance.ErrDailyLimitExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateClockIn(tt.now, tt.windows, tt.cfg, policy, tt.count)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, got.Kind)
			if tt.wantKind == schedule.WindowUnconstrained {
				assert.Nil(t, got.Window)
			} else {
				assert.NotNil(t, got.Window)
			}
		})
	}
}

func TestValidateClockIn_RejectionCarriesReason(t *testing.T) {
	_, err := ValidateClockIn(at(4, 6, 0), []schedule.Window{window("09:00", "17:00")}, strictSettings(), attendance.DefaultPolicy(), 0)

	var rejection *attendance.RejectionError
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, attendance.ReasonOutsideWindow, rejection.Reason)
	assert.Contains(t, rejection.Message, "09:00-17:00")
}

func TestValidateClockOut(t *testing.T) {
	policy := attendance.DefaultPolicy()
	day := []schedule.Window{window("08:00", "17:00")}
	late := []schedule.Window{window("10:00", "18:00")}

	tests := []struct {
		name        string
		now         time.Time
		clockIn     time.Time
		windows     []schedule.Window
		cfg         settings.GlobalSettings
		wantOut     time.Time
		wantSnapped bool
		wantErr     error
	}{
		{
			name:    "before end records now",
			now:     at(4, 16, 0),
			clockIn: at(4, 8, 0),
			windows: day,
			cfg:     strictSettings(),
			wantOut: at(4, 16, 0),
		},
		{
			name:        "thirty minutes after end snaps to end",
			now:         at(4, 17, 30),
			clockIn:     at(4, 8, 0),
			windows:     day,
			cfg:         strictSettings(),
			wantOut:     at(4, 17, 0),
			wantSnapped: true,
		},
		{
			name:    "sixty one minutes after end is rejected",
			now:     at(4, 18, 1),
			clockIn: at(4, 8, 0),
			windows: day,
			cfg:     strictSettings(),
			wantErr: attendance.ErrGracePeriodExceeded,
		},
		{
			name:    "after evening cutoff within grace records now",
			now:     at(4, 18, 45),
			clockIn: at(4, 10, 0),
			windows: late,
			cfg:     strictSettings(),
			wantOut: at(4, 18, 45),
		},
		{
			name:    "clock-in an hour early still matches",
			now:     at(4, 18, 30),
			clockIn: at(4, 7, 0),
			windows: day,
			cfg:     strictSettings(),
			wantErr: attendance.ErrGracePeriodExceeded,
		},
		{
			name:    "clock-in outside tolerance records now",
			now:     at(4, 20, 0),
			clockIn: at(4, 6, 59),
			windows: day,
			cfg:     strictSettings(),
			wantOut: at(4, 20, 0),
		},
		{
			name:    "non-strict records now",
			now:     at(4, 23, 0),
			clockIn: at(4, 8, 0),
			windows: day,
			cfg:     settings.Default(),
			wantOut: at(4, 23, 0),
		},
		{
			name:    "no windows records now",
			now:     at(4, 23, 0),
			clockIn: at(4, 8, 0),
			cfg:     strictSettings(),
			wantOut: at(4, 23, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateClockOut(tt.now, tt.clockIn, tt.windows, tt.cfg, policy)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.wantOut.Equal(got.ClockOut), "got %s want %s", got.ClockOut, tt.wantOut)
			assert.Equal(t, tt.wantSnapped, got.Snapped)
		})
	}
}

func TestValidateClockOut_GraceRejectedAnyTimeOfDay(t *testing.T) {
	policy := attendance.DefaultPolicy()
	for _, end := range []string{"06:00", "12:00", "17:00", "20:00", "22:30"} {
		w := window("05:00", end)
		e := w.End.On(at(4, 0, 0))
		_, err := ValidateClockOut(e.Add(61*time.Minute), at(4, 5, 0), []schedule.Window{w}, strictSettings(), policy)
		assert.ErrorIs(t, err, attendance.ErrGracePeriodExceeded, end)
	}
}

func scheduled(start, end string) *schedule.Schedule {
	s, e := clock.MustParse(start), clock.MustParse(end)
	return &schedule.Schedule{UserID: "u1", Day: time.Tuesday, StartTime: &s, EndTime: &e}
}

func record(in, out time.Time) attendance.Attendance {
	a := attendance.Attendance{ID: "a1", UserID: "u1", Date: clock.DateOf(in), ClockIn: in}
	if !out.IsZero() {
		a.ClockOut = &out
	}
	return a
}

func issues(flags []attendance.Inconsistency) []attendance.IssueType {
	out := make([]attendance.IssueType, 0, len(flags))
	for _, f := range flags {
		out = append(out, f.IssueType)
	}
	return out
}

func TestDetectAnomalies(t *testing.T) {
	policy := attendance.DefaultPolicy()

	tests := []struct {
		name string
		att  attendance.Attendance
		row  *schedule.Schedule
		want []attendance.IssueType
	}{
		{"on time full day", record(at(4, 8, 0), at(4, 17, 0)), scheduled("08:00", "17:00"), []attendance.IssueType{}},
		{"late open shift", record(at(4, 8, 15), time.Time{}), scheduled("08:00", "17:00"), []attendance.IssueType{attendance.IssueLate}},
		{"late and early out", record(at(4, 8, 15), at(4, 16, 0)), scheduled("08:00", "17:00"), []attendance.IssueType{attendance.IssueLate, attendance.IssueEarlyOut}},
		{"overtime", record(at(4, 6, 0), at(4, 19, 30)), scheduled("08:00", "14:00"), []attendance.IssueType{attendance.IssueOvertime}},
		{"exactly scheduled plus buffer", record(at(4, 8, 0), at(4, 18, 0)), scheduled("08:00", "14:00"), []attendance.IssueType{}},
		{"weekend is skipped", record(at(8, 9, 0), at(8, 10, 0)), scheduled("08:00", "17:00"), []attendance.IssueType{}},
		{"no row", record(at(4, 9, 0), at(4, 10, 0)), nil, []attendance.IssueType{}},
		{"row without primary times", record(at(4, 9, 0), at(4, 10, 0)), &schedule.Schedule{UserID: "u1"}, []attendance.IssueType{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectAnomalies(tt.att, tt.row, policy)
			assert.Equal(t, tt.want, issues(got))
			for _, f := range got {
				assert.Equal(t, "u1", f.UserID)
				assert.Equal(t, "a1", f.AttendanceID)
				assert.NotEmpty(t, f.Details)
			}
		})
	}
}

func TestDetectAnomalies_Details(t *testing.T) {
	got := DetectAnomalies(record(at(4, 8, 15), time.Time{}), scheduled("08:00", "17:00"), attendance.DefaultPolicy())
	require.Len(t, got, 1)
	assert.Equal(t, "Clock-in at 08:15 AM, scheduled start 08:00 AM", got[0].Details)
}

func TestComputeTotals(t *testing.T) {
	records := []attendance.Attendance{
		{ID: "1", UserID: "u1", Date: at(4, 0, 0), ClockIn: at(4, 8, 0), ClockOut: ptr(at(4, 12, 0))},
		{ID: "2", UserID: "u1", Date: at(4, 0, 0), ClockIn: at(4, 13, 0), ClockOut: ptr(at(4, 17, 30))},
		{ID: "3", UserID: "u1", Date: at(3, 0, 0), ClockIn: at(3, 22, 0), ClockOut: ptr(at(4, 6, 0))},
		{ID: "4", UserID: "u1", Date: at(5, 0, 0), ClockIn: at(5, 9, 0)},
		{ID: "5", UserID: "u2", Date: at(4, 0, 0), ClockIn: at(4, 8, 0), ClockOut: ptr(at(4, 17, 0))},
	}

	got := ComputeTotals("u1", records)
	require.Len(t, got.Days, 3)

	assert.Equal(t, at(3, 0, 0), got.Days[0].Date)
	assert.Equal(t, 8*time.Hour, got.Days[0].Worked)

	assert.Equal(t, "1", got.Days[1].Shift1.AttendanceID)
	assert.Equal(t, "2", got.Days[1].Shift2.AttendanceID)
	assert.Equal(t, 8*time.Hour+30*time.Minute, got.Days[1].Worked)

	assert.Nil(t, got.Days[2].Shift1)
	assert.Equal(t, 1, got.Days[2].Open)
	assert.Zero(t, got.Days[2].Worked)

	assert.Equal(t, 16*time.Hour+30*time.Minute, got.Worked)
	assert.Equal(t, "16.5", DecimalHours(got.Worked).String())

	assert.Equal(t, got, ComputeTotals("u1", records))
}

func TestComputeTotals_ThirdPairReplacesSecond(t *testing.T) {
	records := []attendance.Attendance{
		{ID: "1", UserID: "u1", Date: at(4, 0, 0), ClockIn: at(4, 8, 0), ClockOut: ptr(at(4, 9, 0))},
		{ID: "2", UserID: "u1", Date: at(4, 0, 0), ClockIn: at(4, 10, 0), ClockOut: ptr(at(4, 11, 0))},
		{ID: "3", UserID: "u1", Date: at(4, 0, 0), ClockIn: at(4, 12, 0), ClockOut: ptr(at(4, 15, 0))},
	}

	got := ComputeTotals("u1", records)
	require.Len(t, got.Days, 1)
	assert.Equal(t, "3", got.Days[0].Shift2.AttendanceID)
	assert.Equal(t, 4*time.Hour, got.Worked)
}

func TestDecimalHours(t *testing.T) {
	assert.Equal(t, "9", DecimalHours(9*time.Hour).String())
	assert.Equal(t, "0.33", DecimalHours(20*time.Minute).String())
	assert.Equal(t, "1.01", DecimalHours(time.Hour+30*time.Second).String())
	assert.Equal(t, "0", DecimalHours(0).String())
}

func ptr[T any](v T) *T { return &v }
