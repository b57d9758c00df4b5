package attendance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/auditlog"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/repository/memory"
	auditlogsvc "github.com/cmlabs-hris/gia-attendance-backend-go/internal/service/auditlog"
	settingssvc "github.com/cmlabs-hris/gia-attendance-backend-go/internal/service/settings"
)

type fixture struct {
	store    *memory.Store
	repos    memory.Repositories
	settings settings.SettingsService
	audit    auditlog.AuditLogService
	svc      attendance.AttendanceService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repositories()
	audit := auditlogsvc.NewAuditLogService(repos.AuditLogs, pht)
	settingsService := settingssvc.NewSettingsService(repos.Settings, audit)

	store.PutUser(user.User{UserID: "u1", FirstName: "Ana", LastName: "Reyes", Role: user.RoleGIA, Status: user.StatusActive})
	store.PutUser(user.User{UserID: "gone", FirstName: "Old", LastName: "Hand", Role: user.RoleStaff, Status: user.StatusInactive})

	return &fixture{
		store:    store,
		repos:    repos,
		settings: settingsService,
		audit:    audit,
		svc:      newService(repos, repos.Inconsistencies, settingsService, audit),
	}
}

func newService(repos memory.Repositories, inc attendance.InconsistencyRepository, s settings.SettingsService, a auditlog.AuditLogService) attendance.AttendanceService {
	return NewAttendanceService(repos.Tx, repos.Attendance, inc, repos.Schedules, repos.Users, s, a, attendance.DefaultPolicy(), pht)
}

func (f *fixture) configure(t *testing.T, req settings.UpdateSettingsRequest) {
	t.Helper()
	_, err := f.settings.Update(context.Background(), req)
	require.NoError(t, err)
}

func (f *fixture) strict(t *testing.T) {
	f.configure(t, settings.UpdateSettingsRequest{EnableStrictSchedule: ptr(true)})
}

func (f *fixture) schedule(t *testing.T, day time.Weekday, start, end string) {
	t.Helper()
	s, e := clock.MustParse(start), clock.MustParse(end)
	_, err := f.repos.Schedules.Upsert(context.Background(), schedule.Schedule{UserID: "u1", Day: day, StartTime: &s, EndTime: &e})
	require.NoError(t, err)
}

func (f *fixture) records(t *testing.T) []attendance.Attendance {
	t.Helper()
	rows, err := f.repos.Attendance.ListByUserAndRange(context.Background(), "u1", at(1, 0, 0), at(31, 0, 0))
	require.NoError(t, err)
	return rows
}

func (f *fixture) inconsistencies(t *testing.T) []attendance.InconsistencyResponse {
	t.Helper()
	found, err := f.svc.ListInconsistencies(context.Background(), attendance.InconsistencyFilter{})
	require.NoError(t, err)
	return found
}

func TestClockIn_StrictWithoutScheduleOrDefaultsIsUnconstrained(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.configure(t, settings.UpdateSettingsRequest{EnableStrictSchedule: ptr(true), DefaultStart: ptr(""), DefaultEnd: ptr("")})

	for i, now := range []time.Time{at(4, 2, 0), at(4, 23, 30)} {
		resp, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{UserID: "u1", Now: now})
		require.NoError(t, err)
		assert.Equal(t, schedule.WindowUnconstrained, resp.WindowKind)
		assert.Nil(t, resp.Window)
		assert.Equal(t, i+1, resp.ShiftNumber)
	}
}

func TestClockIn_OutsideWindow(t *testing.T) {
	ctx := context.Background()

	t.Run("strict rejects", func(t *testing.T) {
		f := newFixture(t)
		f.strict(t)
		f.schedule(t, time.Tuesday, "09:00", "17:00")

		_, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{UserID: "u1", Now: at(4, 8, 54)})
		require.ErrorIs(t, err, attendance.ErrOutsideWindow)
		assert.Empty(t, f.records(t))
	})

	t.Run("non-strict accepts", func(t *testing.T) {
		f := newFixture(t)
		f.schedule(t, time.Tuesday, "09:00", "17:00")

		resp, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{UserID: "u1", Now: at(4, 8, 54)})
		require.NoError(t, err)
		assert.Equal(t, schedule.WindowUnconstrained, resp.WindowKind)
		assert.Len(t, f.records(t), 1)
	})

	t.Run("settings defaults apply without a row", func(t *testing.T) {
		f := newFixture(t)
		f.strict(t)

		_, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{UserID: "u1", Now: at(4, 7, 54)})
		require.ErrorIs(t, err, attendance.ErrOutsideWindow)

		resp, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{UserID: "u1", Now: at(4, 7, 55)})
		require.NoError(t, err)
		assert.Equal(t, schedule.WindowPrimary, resp.WindowKind)
		assert.Equal(t, clock.New(8, 0), resp.Window.Start)
	})
}

func TestClockIn_DailyLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, now := range []time.Time{at(4, 8, 0), at(4, 9, 0)} {
		_, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{UserID: "u1", Now: now})
		require.NoError(t, err)
	}

	_, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{UserID: "u1", Now: at(4, 10, 0)})
	require.ErrorIs(t, err, attendance.ErrDailyLimitExceeded)
	assert.Len(t, f.records(t), 2)

	// Next day starts over.
	_, err = f.svc.ClockIn(ctx, attendance.ClockInRequest{UserID: "u1", Now: at(5, 8, 0)})
	require.NoError(t, err)
}

func TestClockIn_ConcurrentRequestsRespectDailyLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		limited  int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{UserID: "u1", Now: at(4, 9, 0)})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, attendance.ErrDailyLimitExceeded):
				limited++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, accepted)
	assert.Equal(t, 8, limited)
	assert.Len(t, f.records(t), 2)
}

func TestClockIn_UserChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{UserID: "nobody", Now: at(4, 8, 0)})
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	_, err = f.svc.ClockIn(ctx, attendance.ClockInRequest{UserID: "gone", Now: at(4, 8, 0)})
	assert.ErrorIs(t, err, user.ErrUserInactive)
}

func TestClockOut_FullDayRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.strict(t)
	f.schedule(t, time.Tuesday, "08:00", "17:00")

	_, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{UserID: "u1", Now: at(4, 8, 0)})
	require.NoError(t, err)

	out, err := f.svc.ClockOut(ctx, attendance.ClockOutRequest{UserID: "u1", Now: at(4, 17, 0)})
	require.NoError(t, err)
	assert.Equal(t, clock.New(17, 0), out.ClockOut)
	assert.False(t, out.Snapped)
	assert.Equal(t, "9", out.WorkedHours.String())
	assert.Empty(t, out.Flags)

	totals, err := f.svc.ComputeTotals(ctx, attendance.TotalsRequest{UserID: "u1", Date: "2025-03-04"})
	require.NoError(t, err)
	assert.Equal(t, "9", totals.TotalHours.String())
	assert.Empty(t, f.inconsistencies(t))

	again, err := f.svc.ComputeTotals(ctx, attendance.TotalsRequest{UserID: "u1", Date: "2025-03-04"})
	require.NoError(t, err)
	assert.Equal(t, totals, again)
}

func TestClockOut_SnapsWithinGrace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.strict(t)
	f.schedule(t, time.Tuesday, "08:00", "17:00")

	_, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{UserID: "u1", Now: at(4, 8, 0)})
	require.NoError(t, err)

	out, err := f.svc.ClockOut(ctx, attendance.ClockOutRequest{UserID: "u1", Now: at(4, 17, 30)})
	require.NoError(t, err)
	assert.True(t, out.Snapped)
	assert.Equal(t, clock.New(17, 0), out.ClockOut)

	rows := f.records(t)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].ClockOut)
	assert.True(t, at(4, 17, 0).Equal(*rows[0].ClockOut))
}

func TestClockOut_GracePeriodExceededKeepsShiftOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.strict(t)
	f.schedule(t, time.Tuesday, "08:00", "17:00")

	_, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{UserID: "u1", Now: at(4, 8, 0)})
	require.NoError(t, err)

	_, err = f.svc.ClockOut(ctx, attendance.ClockOutRequest{UserID: "u1", Now: at(4, 18, 1)})
	require.ErrorIs(t, err, attendance.ErrGracePeriodExceeded)

	rows := f.records(t)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].IsOpen())
}

func TestClockOut_NoOpenShift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ClockOut(ctx, attendance.ClockOutRequest{UserID: "u1", Now: at(4, 17, 0)})
	require.ErrorIs(t, err, attendance.ErrNoOpenShift)

	_, err = f.svc.ClockIn(ctx, attendance.ClockInRequest{UserID: "u1", Now: at(4, 8, 0)})
	require.NoError(t, err)
	_, err = f.svc.ClockOut(ctx, attendance.ClockOutRequest{UserID: "u1", Now: at(4, 12, 0)})
	require.NoError(t, err)

	_, err = f.svc.ClockOut(ctx, attendance.ClockOutRequest{UserID: "u1", Now: at(4, 13, 0)})
	require.ErrorIs(t, err, attendance.ErrNoOpenShift)
}

func TestClockIn_LateOnTuesdayFlagsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.strict(t)
	f.schedule(t, time.Tuesday, "08:00", "17:00")

	_, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{UserID: "u1", Now: at(4, 8, 15)})
	require.NoError(t, err)

	// The open row is checked again on clock-out; the Late flag must not repeat.
	out, err := f.svc.ClockOut(ctx, attendance.ClockOutRequest{UserID: "u1", Now: at(4, 17, 0)})
	require.NoError(t, err)
	assert.Equal(t, []attendance.IssueType{attendance.IssueLate}, out.Flags)

	found := f.inconsistencies(t)
	require.Len(t, found, 1)
	assert.Equal(t, attendance.IssueLate, found[0].IssueType)

	rows := f.records(t)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].HasIssue)
}

func TestClockIn_NonStrictSkipsAnomalies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.schedule(t, time.Tuesday, "08:00", "17:00")

	_, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{UserID: "u1", Now: at(4, 9, 0)})
	require.NoError(t, err)
	assert.Empty(t, f.inconsistencies(t))
}

type failingInconsistencies struct {
	attendance.InconsistencyRepository
}

func (failingInconsistencies) CreateIfAbsent(context.Context, attendance.Inconsistency) (bool, error) {
	return false, errors.New("disk full")
}

func TestClockIn_AnomalyPersistenceFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.strict(t)
	f.schedule(t, time.Tuesday, "08:00", "17:00")

	svc := newService(f.repos, failingInconsistencies{f.repos.Inconsistencies}, f.settings, f.audit)

	_, err := svc.ClockIn(ctx, attendance.ClockInRequest{UserID: "u1", Now: at(4, 8, 15)})
	require.Error(t, err)
	assert.Empty(t, f.records(t))
}

func TestClockIn_WritesAuditLog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{UserID: "u1", Now: at(4, 8, 0)})
	require.NoError(t, err)

	entries, err := f.repos.AuditLogs.ListByDate(ctx, time.Now().In(pht))
	require.NoError(t, err)

	var actions []string
	for _, e := range entries {
		actions = append(actions, e.Action)
	}
	assert.Contains(t, actions, auditlog.ActionClockIn)
}

func TestSweepAutoClose(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	clockIn := at(4, 8, 0)
	_, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{UserID: "u1", Now: clockIn})
	require.NoError(t, err)

	resp, err := f.svc.SweepAutoClose(ctx, clockIn.Add(9*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, resp.Closed)

	resp, err = f.svc.SweepAutoClose(ctx, clockIn.Add(11*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Closed)
	assert.Zero(t, resp.Failed)

	rows := f.records(t)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].ClockOut)
	assert.True(t, clockIn.Add(10*time.Hour).Equal(*rows[0].ClockOut), "got %s", rows[0].ClockOut)
	assert.Empty(t, f.inconsistencies(t))

	resp, err = f.svc.SweepAutoClose(ctx, clockIn.Add(12*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, resp.Closed)
}

func TestSweepAutoClose_Disabled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.configure(t, settings.UpdateSettingsRequest{AutoClockOutHours: ptr(0)})

	_, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{UserID: "u1", Now: at(4, 8, 0)})
	require.NoError(t, err)

	resp, err := f.svc.SweepAutoClose(ctx, at(6, 8, 0))
	require.NoError(t, err)
	assert.Zero(t, resp.Closed)
	assert.True(t, f.records(t)[0].IsOpen())
}

func TestComputeTotals_Month(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, shift := range [][2]time.Time{
		{at(3, 8, 0), at(3, 12, 0)},
		{at(3, 13, 0), at(3, 17, 15)},
		{at(4, 9, 0), at(4, 15, 40)},
	} {
		_, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{UserID: "u1", Now: shift[0]})
		require.NoError(t, err)
		_, err = f.svc.ClockOut(ctx, attendance.ClockOutRequest{UserID: "u1", Now: shift[1]})
		require.NoError(t, err)
	}

	totals, err := f.svc.ComputeTotals(ctx, attendance.TotalsRequest{UserID: "u1", Month: "2025-03"})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", totals.StartDate)
	assert.Equal(t, "2025-03-31", totals.EndDate)
	require.Len(t, totals.Days, 2)
	assert.Equal(t, "8.25", totals.Days[0].Hours.String())
	assert.Equal(t, "6.67", totals.Days[1].Hours.String())
	assert.Equal(t, "14.92", totals.TotalHours.String())

	_, err = f.svc.ComputeTotals(ctx, attendance.TotalsRequest{UserID: "u1"})
	assert.Error(t, err)
}

// closedUnderfoot closes the row it returns, as a concurrent auto clock-out would.
type closedUnderfoot struct {
	attendance.AttendanceRepository
}

func (r closedUnderfoot) GetLatestOpen(ctx context.Context, userID string, date time.Time) (attendance.Attendance, error) {
	open, err := r.AttendanceRepository.GetLatestOpen(ctx, userID, date)
	if err != nil {
		return open, err
	}
	if _, err := r.AttendanceRepository.CloseIfOpen(ctx, open.ID, open.ClockIn.Add(10*time.Hour)); err != nil {
		return attendance.Attendance{}, err
	}
	return open, nil
}

func TestClockOut_ClosedBetweenReadAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{UserID: "u1", Now: at(4, 8, 0)})
	require.NoError(t, err)

	svc := NewAttendanceService(f.repos.Tx, closedUnderfoot{f.repos.Attendance}, f.repos.Inconsistencies,
		f.repos.Schedules, f.repos.Users, f.settings, f.audit, attendance.DefaultPolicy(), pht)

	_, err = svc.ClockOut(ctx, attendance.ClockOutRequest{UserID: "u1", Now: at(4, 17, 0)})
	require.ErrorIs(t, err, attendance.ErrNoOpenShift)

	entries, err := f.repos.AuditLogs.ListByDate(ctx, time.Now().In(pht))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, auditlog.ActionClockOut, e.Action)
	}
}
