package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/user"
	attendancesvc "github.com/cmlabs-hris/gia-attendance-backend-go/internal/service/attendance"
)

// maxParallelUsers bounds concurrent per-user total queries.
const maxParallelUsers = 8

type ReportServiceImpl struct {
	attendanceService attendance.AttendanceService
	attendanceRepo    attendance.AttendanceRepository
	userRepo          user.UserRepository
	settingsService   settings.SettingsService
	policy            attendance.Policy
	loc               *time.Location
	now               func() time.Time
}

func NewReportService(
	attendanceService attendance.AttendanceService,
	attendanceRepo attendance.AttendanceRepository,
	userRepo user.UserRepository,
	settingsService settings.SettingsService,
	policy attendance.Policy,
	loc *time.Location,
) report.ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &ReportServiceImpl{
		attendanceService: attendanceService,
		attendanceRepo:    attendanceRepo,
		userRepo:          userRepo,
		settingsService:   settingsService,
		policy:            policy,
		loc:               loc,
		now:               time.Now,
	}
}

// MonthlyTotals implements report.ReportService.
// Per-user totals are computed in parallel.
func (s *ReportServiceImpl) MonthlyTotals(ctx context.Context, req report.MonthlyTotalsRequest) (report.MonthlyTotalsReport, error) {
	now := s.now().In(s.loc)
	if err := req.Validate(now); err != nil {
		return report.MonthlyTotalsReport{}, err
	}

	users, err := s.userRepo.ListReportable(ctx)
	if err != nil {
		return report.MonthlyTotalsReport{}, err
	}
	cfg, err := s.settingsService.Get(ctx)
	if err != nil {
		return report.MonthlyTotalsReport{}, err
	}

	results := make([]report.UserTotals, len(users))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelUsers)

	for i, u := range users {
		g.Go(func() error {
			totals, err := s.attendanceService.ComputeTotals(gCtx, attendance.TotalsRequest{
				UserID: u.UserID,
				Month:  req.MonthKey(),
			})
			if err != nil {
				return fmt.Errorf("totals for %s: %w", u.UserID, err)
			}
			results[i] = report.UserTotals{
				UserID:     u.UserID,
				Name:       u.FullName(),
				Role:       string(u.Role),
				TotalHours: totals.TotalHours,
				Days:       totals.Days,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report.MonthlyTotalsReport{}, fmt.Errorf("%w: %w", report.ErrReportGenerationFailed, err)
	}

	start := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, s.loc)
	end := start.AddDate(0, 1, -1)

	return report.MonthlyTotalsReport{
		PeriodMonth: req.Month,
		PeriodYear:  req.Year,
		PeriodStart: start.Format(attendance.DateLayout),
		PeriodEnd:   end.Format(attendance.DateLayout),
		UnitHead:    cfg.UnitHead,
		GeneratedAt: now.Format(time.RFC3339),
		Users:       results,
	}, nil
}

// DailySummary implements report.ReportService.
// Shifts longer than the overtime buffer count their excess as overtime;
// the rest count as compliant.
func (s *ReportServiceImpl) DailySummary(ctx context.Context, req report.DailySummaryRequest) (report.DailySummaryReport, error) {
	date, err := req.Validate()
	if err != nil {
		return report.DailySummaryReport{}, err
	}
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, s.loc)

	var (
		records   []attendance.Attendance
		employees int64
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.attendanceRepo.ListByDate(gCtx, date)
		return err
	})
	g.Go(func() error {
		var err error
		employees, err = s.userRepo.CountReportable(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return report.DailySummaryReport{}, err
	}

	var (
		worked, overtime time.Duration
		completed, open  int
		compliant        int
	)
	for _, r := range records {
		if r.IsOpen() {
			open++
			continue
		}
		completed++
		d := r.Worked()
		worked += d
		if d > s.policy.OvertimeBuffer {
			overtime += d - s.policy.OvertimeBuffer
		} else {
			compliant++
		}
	}

	average := decimal.Zero
	if completed > 0 {
		average = decimal.NewFromInt(int64(worked / time.Second)).
			Div(decimal.NewFromInt(3600 * int64(completed))).
			Round(2)
	}

	return report.DailySummaryReport{
		Date:            date.Format(attendance.DateLayout),
		TotalEmployees:  employees,
		CompletedShifts: completed,
		OpenShifts:      open,
		AverageHours:    average,
		OvertimeHours:   attendancesvc.DecimalHours(overtime),
		CompliantShifts: compliant,
		GeneratedAt:     s.now().In(s.loc).Format(time.RFC3339),
	}, nil
}
