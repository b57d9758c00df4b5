package attendance

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/validator"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// ========================================
// CLOCK ACTIONS
// ========================================

type ClockInRequest struct {
	UserID string
	Now    time.Time
}

func (r *ClockInRequest) Validate() error {
	return validateAction(r.UserID, r.Now)
}

type ClockOutRequest struct {
	UserID string
	Now    time.Time
}

func (r *ClockOutRequest) Validate() error {
	return validateAction(r.UserID, r.Now)
}

func validateAction(userID string, now time.Time) error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(userID) {
		errs.Add("user_id", "user_id is required")
	}
	if now.IsZero() {
		errs.Add("now", "timestamp is required")
	}
	return errs.Err()
}

type WindowResponse struct {
	Start clock.TimeOfDay `json:"start"`
	End   clock.TimeOfDay `json:"end"`
}

type ClockInResponse struct {
	AttendanceID string              `json:"attendance_id"`
	UserID       string              `json:"user_id"`
	Date         string              `json:"date"`
	ClockIn      clock.TimeOfDay     `json:"clock_in"`
	WindowKind   schedule.WindowKind `json:"window_kind"`
	Window       *WindowResponse     `json:"window,omitempty"`
	ShiftNumber  int                 `json:"shift_number"`
}

type ClockOutResponse struct {
	AttendanceID string          `json:"attendance_id"`
	UserID       string          `json:"user_id"`
	Date         string          `json:"date"`
	ClockIn      clock.TimeOfDay `json:"clock_in"`
	ClockOut     clock.TimeOfDay `json:"clock_out"`
	// Snapped is true when clock_out was truncated to the scheduled end.
	Snapped     bool            `json:"snapped"`
	WorkedHours decimal.Decimal `json:"worked_hours"`
	Flags       []IssueType     `json:"flags,omitempty"`
}

type StatusRequest struct {
	UserID string
	Now    time.Time
}

func (r *StatusRequest) Validate() error {
	return validateAction(r.UserID, r.Now)
}

type StatusResponse struct {
	UserID           string           `json:"user_id"`
	Date             string           `json:"date"`
	ClockedIn        bool             `json:"clocked_in"`
	OpenAttendanceID string           `json:"open_attendance_id,omitempty"`
	ClockIn          *clock.TimeOfDay `json:"clock_in,omitempty"`
	ShiftsToday      int              `json:"shifts_today"`
	RemainingShifts  int              `json:"remaining_shifts"`
}

// ========================================
// DAILY LOGS AND CORRECTIONS
// ========================================

type DailyLogRequest struct {
	Date string `json:"date"`
}

func (r *DailyLogRequest) Validate() (time.Time, error) {
	var errs validator.ValidationErrors

	d, ok := validator.IsValidDate(r.Date)
	if !ok {
		errs.Add("date", "date must be YYYY-MM-DD")
	}
	return d, errs.Err()
}

type LogResponse struct {
	AttendanceID string           `json:"attendance_id"`
	UserID       string           `json:"user_id"`
	FullName     string           `json:"full_name"`
	Date         string           `json:"date"`
	ClockIn      clock.TimeOfDay  `json:"clock_in"`
	ClockOut     *clock.TimeOfDay `json:"clock_out"`
	Hours        decimal.Decimal  `json:"hours"`
	HasIssue     bool             `json:"has_issue"`
}

// CorrectLogRequest carries wall-clock times on the row's logical day. A
// clock_out earlier than clock_in lands on the next day.
type CorrectLogRequest struct {
	AttendanceID string  `json:"-"`
	ClockIn      string  `json:"clock_in"`
	ClockOut     *string `json:"clock_out"`

	ActorID string `json:"-"`
}

func (r *CorrectLogRequest) Validate() (in clock.TimeOfDay, out *clock.TimeOfDay, err error) {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.AttendanceID) {
		errs.Add("attendance_id", "attendance_id is required")
	}

	in, ok := validator.IsValidTimeOfDay(r.ClockIn)
	if !ok {
		errs.Add("clock_in", "clock_in must be HH:MM")
	}

	if r.ClockOut != nil {
		t, okOut := validator.IsValidTimeOfDay(*r.ClockOut)
		switch {
		case !okOut:
			errs.Add("clock_out", "clock_out must be HH:MM")
		case ok && t == in:
			errs.Add("clock_out", "clock_out must differ from clock_in")
		default:
			out = &t
		}
	}

	if len(errs) > 0 {
		return 0, nil, errs
	}
	return in, out, nil
}

// ========================================
// TOTALS
// ========================================

// TotalsRequest selects one of Date, Month or StartDate..EndDate.
type TotalsRequest struct {
	UserID    string `json:"user_id"`
	Date      string `json:"date"`
	Month     string `json:"month"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Validate returns the inclusive calendar range, in UTC, the request covers.
func (r *TotalsRequest) Validate() (start, end time.Time, err error) {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs.Add("user_id", "user_id is required")
	}

	selectors := 0
	for _, s := range []string{r.Date, r.Month, r.StartDate + r.EndDate} {
		if strings.TrimSpace(s) != "" {
			selectors++
		}
	}

	switch {
	case selectors != 1:
		errs.Add("range", "provide exactly one of date, month or start_date and end_date")
	case r.Date != "":
		d, ok := validator.IsValidDate(r.Date)
		if !ok {
			errs.Add("date", "date must be YYYY-MM-DD")
		}
		start, end = d, d
	case r.Month != "":
		m, ok := validator.IsValidMonth(r.Month)
		if !ok {
			errs.Add("month", "month must be YYYY-MM")
		}
		start, end = m, m.AddDate(0, 1, -1)
	default:
		s, okStart := validator.IsValidDate(r.StartDate)
		e, okEnd := validator.IsValidDate(r.EndDate)
		if !okStart {
			errs.Add("start_date", "start_date must be YYYY-MM-DD")
		}
		if !okEnd {
			errs.Add("end_date", "end_date must be YYYY-MM-DD")
		}
		if okStart && okEnd && s.After(e) {
			errs.Add("end_date", ErrInvalidDateRange.Error())
		}
		start, end = s, e
	}

	if len(errs) > 0 {
		return time.Time{}, time.Time{}, errs
	}
	return start, end, nil
}

type SlotResponse struct {
	AttendanceID string          `json:"attendance_id"`
	ClockIn      clock.TimeOfDay `json:"clock_in"`
	ClockOut     clock.TimeOfDay `json:"clock_out"`
	Hours        decimal.Decimal `json:"hours"`
}

type DayTotal struct {
	Date   string          `json:"date"`
	Shift1 *SlotResponse   `json:"shift1,omitempty"`
	Shift2 *SlotResponse   `json:"shift2,omitempty"`
	Open   int             `json:"open_shifts"`
	Hours  decimal.Decimal `json:"hours"`
}

type TotalsResponse struct {
	UserID     string          `json:"user_id"`
	StartDate  string          `json:"start_date"`
	EndDate    string          `json:"end_date"`
	Days       []DayTotal      `json:"days"`
	TotalHours decimal.Decimal `json:"total_hours"`
}

// ========================================
// SWEEP AND INCONSISTENCIES
// ========================================

type SweepResponse struct {
	Threshold string `json:"threshold,omitempty"`
	Closed    int    `json:"closed"`
	Failed    int    `json:"failed"`
}

type InconsistencyFilter struct {
	UserID    *string `json:"user_id"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	IssueType *string `json:"issue_type"`
}

func (f *InconsistencyFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.StartDate != nil {
		if _, ok := validator.IsValidDate(*f.StartDate); !ok {
			errs.Add("start_date", "start_date must be YYYY-MM-DD")
		}
	}
	if f.EndDate != nil {
		if _, ok := validator.IsValidDate(*f.EndDate); !ok {
			errs.Add("end_date", "end_date must be YYYY-MM-DD")
		}
	}
	if f.IssueType != nil && !validator.IsInSlice(*f.IssueType, IssueTypeValues) {
		errs.Add("issue_type", "issue_type must be one of: "+strings.Join(IssueTypeValues, ", "))
	}

	return errs.Err()
}

type InconsistencyResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	AttendanceID string    `json:"attendance_id"`
	Date         string    `json:"date"`
	IssueType    IssueType `json:"issue_type"`
	Details      string    `json:"details"`
	CreatedAt    string    `json:"created_at"`
}

func NewInconsistencyResponse(i Inconsistency) InconsistencyResponse {
	return InconsistencyResponse{
		ID:           i.ID,
		UserID:       i.UserID,
		AttendanceID: i.AttendanceID,
		Date:         i.Date.Format(DateLayout),
		IssueType:    i.IssueType,
		Details:      i.Details,
		CreatedAt:    i.CreatedAt.Format(time.RFC3339),
	}
}
