package report

import "context"

// ReportService builds attendance summaries for administrators
type ReportService interface {
	// MonthlyTotals computes totals for every reportable user
	MonthlyTotals(ctx context.Context, req MonthlyTotalsRequest) (MonthlyTotalsReport, error)

	// DailySummary aggregates completed shifts of one day
	DailySummary(ctx context.Context, req DailySummaryRequest) (DailySummaryReport, error)
}
