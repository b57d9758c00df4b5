package attendance

import (
	"context"
	"time"
)

// AttendanceService is the attendance engine exposed to the transport layer.
type AttendanceService interface {
	// ClockIn validates and records a clock-in at req.Now.
	ClockIn(ctx context.Context, req ClockInRequest) (ClockInResponse, error)

	// ClockOut closes the user's latest open shift of the day.
	ClockOut(ctx context.Context, req ClockOutRequest) (ClockOutResponse, error)

	ComputeTotals(ctx context.Context, req TotalsRequest) (TotalsResponse, error)

	// SweepAutoClose closes shifts left open beyond the configured threshold.
	SweepAutoClose(ctx context.Context, now time.Time) (SweepResponse, error)

	ListInconsistencies(ctx context.Context, filter InconsistencyFilter) ([]InconsistencyResponse, error)

	// Status reports whether the user has an open shift on the day of req.Now.
	Status(ctx context.Context, req StatusRequest) (StatusResponse, error)

	ListDaily(ctx context.Context, req DailyLogRequest) ([]LogResponse, error)

	// CorrectLog lets an administrator rewrite the times of one row.
	CorrectLog(ctx context.Context, req CorrectLogRequest) (LogResponse, error)
}
