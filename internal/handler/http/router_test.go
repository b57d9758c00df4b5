package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/repository/memory"
	attendancesvc "github.com/cmlabs-hris/gia-attendance-backend-go/internal/service/attendance"
	auditlogsvc "github.com/cmlabs-hris/gia-attendance-backend-go/internal/service/auditlog"
	reportsvc "github.com/cmlabs-hris/gia-attendance-backend-go/internal/service/report"
	schedulesvc "github.com/cmlabs-hris/gia-attendance-backend-go/internal/service/schedule"
	settingssvc "github.com/cmlabs-hris/gia-attendance-backend-go/internal/service/settings"
	usersvc "github.com/cmlabs-hris/gia-attendance-backend-go/internal/service/user"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type testApp struct {
	handler http.Handler
	jwt     jwt.Service
}

func newTestApp(t *testing.T, limiter *middleware.UserRateLimiter) *testApp {
	t.Helper()
	loc := time.UTC

	store := memory.NewStore()
	store.PutUser(user.User{UserID: "staff-1", FirstName: "Ana", LastName: "Reyes", Role: user.RoleStaff, Status: user.StatusActive})
	store.PutUser(user.User{UserID: "staff-2", FirstName: "Ben", LastName: "Cruz", Role: user.RoleGIA, Status: user.StatusActive})
	store.PutUser(user.User{UserID: "admin-1", FirstName: "Cara", LastName: "Lim", Role: user.RoleAdmin, Status: user.StatusActive})
	store.PutUser(user.User{UserID: "root", FirstName: "Super", LastName: "Admin", Role: user.RoleSuperAdmin, Status: user.StatusActive})
	repos := store.Repositories()

	policy := attendance.DefaultPolicy()
	audit := auditlogsvc.NewAuditLogService(repos.AuditLogs, loc)
	settingsService := settingssvc.NewSettingsService(repos.Settings, audit)
	scheduleService := schedulesvc.NewScheduleService(repos.Schedules, repos.Users, settingsService, audit)
	attendanceService := attendancesvc.NewAttendanceService(repos.Tx, repos.Attendance, repos.Inconsistencies,
		repos.Schedules, repos.Users, settingsService, audit, policy, loc)
	reportService := reportsvc.NewReportService(attendanceService, repos.Attendance, repos.Users, settingsService, policy, loc)

	jwtService := jwt.NewJWTService(handlerTestSecret, time.Hour)
	router := NewRouter(RouterOptions{AllowedOrigins: []string{"*"}, ClockLimiter: limiter}, jwtService, Handlers{
		Attendance: NewAttendanceHandler(attendanceService),
		Schedule:   NewScheduleHandler(scheduleService, loc),
		Settings:   NewSettingsHandler(settingsService),
		Report:     NewReportHandler(reportService),
		AuditLog:   NewAuditLogHandler(audit),
		User:       NewUserHandler(usersvc.NewUserService(repos.Users, audit)),
	})

	return &testApp{handler: router, jwt: jwtService}
}

func (a *testApp) token(t *testing.T, userID string, role user.Role) string {
	t.Helper()
	token, _, err := a.jwt.GenerateAccessToken(userID, role)
	require.NoError(t, err)
	return token
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	var resp response.Response
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	}
	return rec, resp
}

func TestRouter_RequiresToken(t *testing.T) {
	app := newTestApp(t, nil)

	rec, _ := app.do(t, http.MethodPost, "/api/v1/attendance/clock-in", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other := jwt.NewJWTService("another-secret", time.Hour)
	forged, _, err := other.GenerateAccessToken("staff-1", user.RoleStaff)
	require.NoError(t, err)
	rec, _ = app.do(t, http.MethodPost, "/api/v1/attendance/clock-in", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_ClockInAndDailyLimit(t *testing.T) {
	app := newTestApp(t, nil)
	token := app.token(t, "staff-1", user.RoleStaff)

	for i := 0; i < 2; i++ {
		rec, resp := app.do(t, http.MethodPost, "/api/v1/attendance/clock-in", token, nil)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.True(t, resp.Success)
	}

	rec, resp := app.do(t, http.MethodPost, "/api/v1/attendance/clock-in", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(attendance.ReasonDailyLimitExceeded), resp.Error.Code)

	rec, _ = app.do(t, http.MethodPost, "/api/v1/attendance/clock-out", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRouter_ClockOutWithoutOpenShift(t *testing.T) {
	app := newTestApp(t, nil)

	rec, resp := app.do(t, http.MethodPost, "/api/v1/attendance/clock-out", app.token(t, "staff-2", user.RoleGIA), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(attendance.ReasonNoOpenShift), resp.Error.Code)
}

func TestRouter_UnknownUser(t *testing.T) {
	app := newTestApp(t, nil)

	rec, _ := app.do(t, http.MethodPost, "/api/v1/attendance/clock-in", app.token(t, "ghost", user.RoleStaff), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Permissions(t *testing.T) {
	app := newTestApp(t, nil)
	staff := app.token(t, "staff-1", user.RoleStaff)
	admin := app.token(t, "admin-1", user.RoleAdmin)

	rec, _ := app.do(t, http.MethodPut, "/api/v1/settings", staff, map[string]any{"enable_strict_schedule": true})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = app.do(t, http.MethodGet, "/api/v1/settings", staff, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = app.do(t, http.MethodPost, "/api/v1/attendance/clock-in", admin, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = app.do(t, http.MethodPost, "/api/v1/attendance/sweep", staff, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = app.do(t, http.MethodPost, "/api/v1/attendance/sweep", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = app.do(t, http.MethodGet, "/api/v1/audit-logs?date=2025-03-04", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_AdminManagesSchedulesAndSettings(t *testing.T) {
	app := newTestApp(t, nil)
	admin := app.token(t, "admin-1", user.RoleAdmin)

	rec, _ := app.do(t, http.MethodPut, "/api/v1/settings", admin, map[string]any{"enable_strict_schedule": true, "unit_head": "Dr. Santos"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, _ = app.do(t, http.MethodPut, "/api/v1/schedules/staff-1/Tuesday", admin, map[string]any{
		"start_time":       "08:00",
		"end_time":         "12:00",
		"is_split_shift":   true,
		"split_start_time": "13:00",
		"split_end_time":   "17:00",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, resp := app.do(t, http.MethodGet, "/api/v1/schedules/staff-1/windows?date=2025-03-04", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Len(t, data["windows"], 2)

	rec, _ = app.do(t, http.MethodPut, "/api/v1/schedules/staff-1/Someday", admin, map[string]any{"start_time": "08:00", "end_time": "12:00"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, _ = app.do(t, http.MethodDelete, "/api/v1/schedules/staff-1/Tuesday", admin, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = app.do(t, http.MethodDelete, "/api/v1/schedules/staff-1/Tuesday", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_QueryValidation(t *testing.T) {
	app := newTestApp(t, nil)
	staff := app.token(t, "staff-1", user.RoleStaff)
	admin := app.token(t, "admin-1", user.RoleAdmin)

	rec, _ := app.do(t, http.MethodGet, "/api/v1/attendance/me/totals", staff, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, _ = app.do(t, http.MethodGet, "/api/v1/attendance/me/totals?month=2025-03", staff, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = app.do(t, http.MethodGet, "/api/v1/reports/monthly?month=march&year=2025", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = app.do(t, http.MethodGet, "/api/v1/reports/daily?date=2025-03-04", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = app.do(t, http.MethodGet, "/api/v1/attendance/inconsistencies?issue_type=Absent", admin, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRouter_ClockRateLimit(t *testing.T) {
	app := newTestApp(t, middleware.NewUserRateLimiter(rate.Every(time.Hour), 1))
	token := app.token(t, "staff-1", user.RoleStaff)

	rec, _ := app.do(t, http.MethodPost, "/api/v1/attendance/clock-in", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = app.do(t, http.MethodPost, "/api/v1/attendance/clock-out", token, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Other users have their own bucket.
	rec, _ = app.do(t, http.MethodPost, "/api/v1/attendance/clock-in", app.token(t, "staff-2", user.RoleGIA), nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRouter_UserManagement(t *testing.T) {
	app := newTestApp(t, nil)
	admin := app.token(t, "admin-1", user.RoleAdmin)
	staff := app.token(t, "staff-1", user.RoleStaff)

	rec, _ := app.do(t, http.MethodGet, "/api/v1/users", staff, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	body := map[string]any{"user_id": "2021-0042", "first_name": "Dina", "last_name": "Flores", "role": "gia"}
	rec, resp := app.do(t, http.MethodPost, "/api/v1/users", admin, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Flores, Dina", data["full_name"])
	assert.Equal(t, "active", data["status"])

	rec, resp = app.do(t, http.MethodPost, "/api/v1/users", admin, body)
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, response.CodeConflict, resp.Error.Code)

	rec, _ = app.do(t, http.MethodPost, "/api/v1/users", admin, map[string]any{"user_id": "x", "first_name": "A", "last_name": "B", "role": "superadmin"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, resp = app.do(t, http.MethodGet, "/api/v1/users?role=gia", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Meta)
	assert.EqualValues(t, 2, resp.Meta.TotalItems)

	rec, resp = app.do(t, http.MethodPut, "/api/v1/users/2021-0042", admin, map[string]any{"status": "inactive"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "inactive", resp.Data.(map[string]any)["status"])

	// Deactivated users can no longer clock in.
	rec, _ = app.do(t, http.MethodPost, "/api/v1/attendance/clock-in", app.token(t, "2021-0042", user.RoleGIA), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = app.do(t, http.MethodPut, "/api/v1/users/root", admin, map[string]any{"status": "inactive"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = app.do(t, http.MethodDelete, "/api/v1/users/admin-1", admin, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = app.do(t, http.MethodDelete, "/api/v1/users/2021-0042", admin, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = app.do(t, http.MethodGet, "/api/v1/users/2021-0042", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_StatusDailyAndCorrection(t *testing.T) {
	app := newTestApp(t, nil)
	admin := app.token(t, "admin-1", user.RoleAdmin)
	staff := app.token(t, "staff-1", user.RoleStaff)

	rec, resp := app.do(t, http.MethodGet, "/api/v1/attendance/me/status", staff, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, false, resp.Data.(map[string]any)["clocked_in"])

	rec, resp = app.do(t, http.MethodPost, "/api/v1/attendance/clock-in", staff, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id, _ := resp.Data.(map[string]any)["attendance_id"].(string)
	require.NotEmpty(t, id)

	rec, resp = app.do(t, http.MethodGet, "/api/v1/attendance/me/status", staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, resp.Data.(map[string]any)["clocked_in"])
	assert.Equal(t, id, resp.Data.(map[string]any)["open_attendance_id"])

	today := time.Now().UTC().Format("2006-01-02")
	rec, _ = app.do(t, http.MethodGet, "/api/v1/attendance/daily?date="+today, staff, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp = app.do(t, http.MethodGet, "/api/v1/attendance/daily?date="+today, admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, resp.Meta)
	assert.EqualValues(t, 1, resp.Meta.TotalItems)

	rec, _ = app.do(t, http.MethodGet, "/api/v1/attendance/daily", admin, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	correction := map[string]any{"clock_in": "08:00", "clock_out": "17:00"}
	rec, _ = app.do(t, http.MethodPut, "/api/v1/attendance/"+id, staff, correction)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp = app.do(t, http.MethodPut, "/api/v1/attendance/"+id, admin, correction)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := resp.Data.(map[string]any)
	assert.Equal(t, "17:00", data["clock_out"])
	assert.Equal(t, "9", data["hours"])

	rec, _ = app.do(t, http.MethodPut, "/api/v1/attendance/missing", admin, correction)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
