package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/jwt"
)

type AttendanceHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	MyTotals(w http.ResponseWriter, r *http.Request)
	UserTotals(w http.ResponseWriter, r *http.Request)
	ListInconsistencies(w http.ResponseWriter, r *http.Request)
	Sweep(w http.ResponseWriter, r *http.Request)
	MyStatus(w http.ResponseWriter, r *http.Request)
	Daily(w http.ResponseWriter, r *http.Request)
	Correct(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	now               func() time.Time
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		now:               time.Now,
	}
}

// identity returns the caller or writes 401.
func identity(w http.ResponseWriter, r *http.Request) (jwt.Identity, bool) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
	}
	return id, ok
}

// ClockIn handles POST /attendance/clock-in. The server clock is authoritative.
func (h *attendanceHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.ClockIn(r.Context(), attendance.ClockInRequest{
		UserID: caller.UserID,
		Now:    h.now(),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Clock in successful", result)
}

// ClockOut handles POST /attendance/clock-out.
func (h *attendanceHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.ClockOut(r.Context(), attendance.ClockOutRequest{
		UserID: caller.UserID,
		Now:    h.now(),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Clock out successful", result)
}

func totalsRequest(r *http.Request, userID string) attendance.TotalsRequest {
	q := r.URL.Query()
	return attendance.TotalsRequest{
		UserID:    userID,
		Date:      q.Get("date"),
		Month:     q.Get("month"),
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	}
}

// MyTotals handles GET /attendance/me/totals
func (h *attendanceHandlerImpl) MyTotals(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.ComputeTotals(r.Context(), totalsRequest(r, caller.UserID))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// UserTotals handles GET /attendance/users/{userID}/totals
func (h *attendanceHandlerImpl) UserTotals(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.ComputeTotals(r.Context(), totalsRequest(r, chi.URLParam(r, "userID")))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func optionalQuery(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}

// ListInconsistencies handles GET /attendance/inconsistencies
func (h *attendanceHandlerImpl) ListInconsistencies(w http.ResponseWriter, r *http.Request) {
	filter := attendance.InconsistencyFilter{
		UserID:    optionalQuery(r, "user_id"),
		StartDate: optionalQuery(r, "start_date"),
		EndDate:   optionalQuery(r, "end_date"),
		IssueType: optionalQuery(r, "issue_type"),
	}

	result, err := h.attendanceService.ListInconsistencies(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, &response.Meta{TotalItems: int64(len(result))})
}

// Sweep handles POST /attendance/sweep, the manual trigger of the auto clock-out job.
func (h *attendanceHandlerImpl) Sweep(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.SweepAutoClose(r.Context(), h.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// MyStatus handles GET /attendance/me/status
func (h *attendanceHandlerImpl) MyStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.Status(r.Context(), attendance.StatusRequest{
		UserID: caller.UserID,
		Now:    h.now(),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Daily handles GET /attendance/daily?date=YYYY-MM-DD
func (h *attendanceHandlerImpl) Daily(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.ListDaily(r.Context(), attendance.DailyLogRequest{Date: r.URL.Query().Get("date")})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, &response.Meta{TotalItems: int64(len(result))})
}

// Correct handles PUT /attendance/{attendanceID}
func (h *attendanceHandlerImpl) Correct(w http.ResponseWriter, r *http.Request) {
	var req attendance.CorrectLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.HandleError(w, attendance.ErrInvalidRequestData)
		return
	}
	req.AttendanceID = chi.URLParam(r, "attendanceID")
	req.ActorID = actorID(r)

	result, err := h.attendanceService.CorrectLog(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance record updated", result)
}
