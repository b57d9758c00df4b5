package report

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/validator"
)

// ========================================
// MONTHLY TOTALS REPORT
// ========================================

type MonthlyTotalsRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (r *MonthlyTotalsRequest) Validate(now time.Time) error {
	var errs validator.ValidationErrors

	if r.Month < 1 || r.Month > 12 {
		errs.Add("month", ErrInvalidMonth.Error())
	}

	currentYear := now.Year()
	if r.Year < 2020 || r.Year > currentYear+1 {
		errs.Add("year", fmt.Sprintf("year must be between 2020 and %d", currentYear+1))
	}

	return errs.Err()
}

// MonthKey renders the request the way TotalsRequest.Month expects it.
func (r *MonthlyTotalsRequest) MonthKey() string {
	return fmt.Sprintf("%04d-%02d", r.Year, r.Month)
}

type MonthlyTotalsReport struct {
	PeriodMonth int    `json:"period_month"`
	PeriodYear  int    `json:"period_year"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	UnitHead    string `json:"unit_head"`
	GeneratedAt string `json:"generated_at"`

	Users []UserTotals `json:"users"`
}

type UserTotals struct {
	UserID     string                `json:"user_id"`
	Name       string                `json:"name"`
	Role       string                `json:"role"`
	TotalHours decimal.Decimal       `json:"total_hours"`
	Days       []attendance.DayTotal `json:"days"`
}

// ========================================
// DAILY SUMMARY
// ========================================

type DailySummaryRequest struct {
	Date string `json:"date"`
}

func (r *DailySummaryRequest) Validate() (time.Time, error) {
	d, ok := validator.IsValidDate(r.Date)
	if !ok {
		return time.Time{}, validator.ValidationErrors{{Field: "date", Message: "date must be YYYY-MM-DD"}}
	}
	return d, nil
}

type DailySummaryReport struct {
	Date            string          `json:"date"`
	TotalEmployees  int64           `json:"total_employees"`
	CompletedShifts int             `json:"completed_shifts"`
	OpenShifts      int             `json:"open_shifts"`
	AverageHours    decimal.Decimal `json:"average_hours"`
	OvertimeHours   decimal.Decimal `json:"overtime_hours"`
	CompliantShifts int             `json:"compliant_shifts"`
	GeneratedAt     string          `json:"generated_at"`
}
