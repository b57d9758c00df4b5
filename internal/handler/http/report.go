package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/handler/http/response"
)

type ReportHandler interface {
	// Monthly hour totals per user
	Monthly(w http.ResponseWriter, r *http.Request)

	// One day across all users
	Daily(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// Monthly handles GET /reports/monthly?month=&year=
func (h *reportHandlerImpl) Monthly(w http.ResponseWriter, r *http.Request) {
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		response.HandleError(w, report.ErrInvalidMonth)
		return
	}

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		response.HandleError(w, report.ErrInvalidYear)
		return
	}

	result, err := h.reportService.MonthlyTotals(r.Context(), report.MonthlyTotalsRequest{Month: month, Year: year})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Daily handles GET /reports/daily?date=
func (h *reportHandlerImpl) Daily(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.DailySummary(r.Context(), report.DailySummaryRequest{Date: r.URL.Query().Get("date")})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
