package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/validator"
)

type ScheduleHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Upsert(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Windows(w http.ResponseWriter, r *http.Request)
}

type scheduleHandlerImpl struct {
	scheduleService schedule.ScheduleService
	loc             *time.Location
}

func NewScheduleHandler(scheduleService schedule.ScheduleService, loc *time.Location) ScheduleHandler {
	if loc == nil {
		loc = time.Local
	}
	return &scheduleHandlerImpl{
		scheduleService: scheduleService,
		loc:             loc,
	}
}

func actorID(r *http.Request) string {
	if id, ok := middleware.IdentityFrom(r.Context()); ok {
		return id.UserID
	}
	return ""
}

// List handles GET /schedules/{userID}
func (h *scheduleHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.scheduleService.ListByUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Upsert handles PUT /schedules/{userID}/{day}
func (h *scheduleHandlerImpl) Upsert(w http.ResponseWriter, r *http.Request) {
	var req schedule.UpsertScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.HandleError(w, schedule.ErrInvalidRequestData)
		return
	}
	req.UserID = chi.URLParam(r, "userID")
	req.Day = chi.URLParam(r, "day")
	req.ActorID = actorID(r)

	result, err := h.scheduleService.Upsert(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Schedule saved", result)
}

// Delete handles DELETE /schedules/{userID}/{day}
func (h *scheduleHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.scheduleService.Delete(r.Context(), schedule.DeleteScheduleRequest{
		UserID:  chi.URLParam(r, "userID"),
		Day:     chi.URLParam(r, "day"),
		ActorID: actorID(r),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.NoContent(w)
}

// Windows handles GET /schedules/{userID}/windows?date=YYYY-MM-DD, defaulting to today.
func (h *scheduleHandlerImpl) Windows(w http.ResponseWriter, r *http.Request) {
	date := time.Now().In(h.loc)
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, ok := validator.IsValidDate(raw)
		if !ok {
			response.ValidationError(w, map[string]string{"date": "date must be YYYY-MM-DD"})
			return
		}
		date = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, h.loc)
	}

	result, err := h.scheduleService.ResolveWindows(r.Context(), chi.URLParam(r, "userID"), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}
