package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/jwt"
)

type RouterOptions struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	// ClockLimiter throttles clock-in and clock-out per user; nil disables it.
	ClockLimiter *middleware.UserRateLimiter
}

type Handlers struct {
	Attendance AttendanceHandler
	Schedule   ScheduleHandler
	Settings   SettingsHandler
	Report     ReportHandler
	AuditLog   AuditLogHandler
	User       UserHandler
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	if opts.Logger != nil {
		r.Use(httplog.RequestLogger(opts.Logger, &httplog.Options{
			Level:  slog.LevelInfo,
			Schema: httplog.SchemaECS,
		}))
	}

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	clockLimit := func(next http.Handler) http.Handler { return next }
	if opts.ClockLimiter != nil {
		clockLimit = middleware.RateLimitByUser(opts.ClockLimiter)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService))

			r.Route("/attendance", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceClock))
					r.Use(clockLimit)
					r.Post("/clock-in", h.Attendance.ClockIn)
					r.Post("/clock-out", h.Attendance.ClockOut)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceViewOwn))
					r.Get("/me/totals", h.Attendance.MyTotals)
					r.Get("/me/status", h.Attendance.MyStatus)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceViewAll))
					r.Get("/users/{userID}/totals", h.Attendance.UserTotals)
					r.Get("/inconsistencies", h.Attendance.ListInconsistencies)
					r.Get("/daily", h.Attendance.Daily)
				})

				// Admin only
				r.With(middleware.AdminOnly, middleware.RequirePermission(user.PermissionAttendanceSweep)).
					Post("/sweep", h.Attendance.Sweep)
				r.With(middleware.AdminOnly, middleware.RequirePermission(user.PermissionAttendanceCorrect)).
					Put("/{attendanceID}", h.Attendance.Correct)
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.AdminOnly, middleware.RequirePermission(user.PermissionUserManage))
				r.Get("/", h.User.List)
				r.Post("/", h.User.Create)
				r.Get("/{userID}", h.User.Get)
				r.Put("/{userID}", h.User.Update)
				r.Delete("/{userID}", h.User.Delete)
			})

			r.Route("/settings", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionSettingsView)).Get("/", h.Settings.Get)
				r.With(middleware.AdminOnly, middleware.RequirePermission(user.PermissionSettingsManage)).Put("/", h.Settings.Update)
			})

			r.Route("/schedules/{userID}", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionScheduleManage))
				r.Get("/", h.Schedule.List)
				r.Get("/windows", h.Schedule.Windows)
				r.Put("/{day}", h.Schedule.Upsert)
				r.Delete("/{day}", h.Schedule.Delete)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionReportsView))
				r.Get("/monthly", h.Report.Monthly)
				r.Get("/daily", h.Report.Daily)
			})

			r.With(middleware.AdminOnly, middleware.RequirePermission(user.PermissionAuditView)).
				Get("/audit-logs", h.AuditLog.List)
		})
	})
	return r
}
