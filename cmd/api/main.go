package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/config"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/auditlog"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/user"
	appHTTP "github.com/cmlabs-hris/gia-attendance-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/logger"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/redis"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/repository/memory"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/repository/postgresql"
	redisRepository "github.com/cmlabs-hris/gia-attendance-backend-go/internal/repository/redis"
	attendanceService "github.com/cmlabs-hris/gia-attendance-backend-go/internal/service/attendance"
	auditLogService "github.com/cmlabs-hris/gia-attendance-backend-go/internal/service/auditlog"
	reportService "github.com/cmlabs-hris/gia-attendance-backend-go/internal/service/report"
	scheduleService "github.com/cmlabs-hris/gia-attendance-backend-go/internal/service/schedule"
	settingsService "github.com/cmlabs-hris/gia-attendance-backend-go/internal/service/settings"
	userService "github.com/cmlabs-hris/gia-attendance-backend-go/internal/service/user"
)

const (
	appName    = "gia-attendance"
	appVersion = "v1.0.0"
)

type repositories struct {
	tx              database.TxManager
	users           user.UserRepository
	schedules       schedule.ScheduleRepository
	settings        settings.SettingsRepository
	attendance      attendance.AttendanceRepository
	inconsistencies attendance.InconsistencyRepository
	auditLogs       auditlog.AuditLogRepository
}

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	log := logger.New(os.Stdout, logger.Options{
		App:     appName,
		Version: appVersion,
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
	})
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, cleanup, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := seedUsers(ctx, repos.users, cfg.Database.SeedUsers); err != nil {
		return err
	}

	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return fmt.Errorf("error connecting to redis: %w", err)
		}
		defer rdb.Close()
		repos.settings = redisRepository.NewSettingsCache(repos.settings, rdb, cfg.Redis.SettingsCacheTTL)
		slog.Info("settings cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.SettingsCacheTTL)
	}

	loc := cfg.App.Timezone
	policy := cfg.Attendance.Policy

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	auditSvc := auditLogService.NewAuditLogService(repos.auditLogs, loc)
	settingsSvc := settingsService.NewSettingsService(repos.settings, auditSvc)
	scheduleSvc := scheduleService.NewScheduleService(repos.schedules, repos.users, settingsSvc, auditSvc)
	attendanceSvc := attendanceService.NewAttendanceService(
		repos.tx,
		repos.attendance,
		repos.inconsistencies,
		repos.schedules,
		repos.users,
		settingsSvc,
		auditSvc,
		policy,
		loc,
	)
	userSvc := userService.NewUserService(repos.users, auditSvc)
	reportSvc := reportService.NewReportService(attendanceSvc, repos.attendance, repos.users, settingsSvc, policy, loc)

	// Create the settings row up front so the first request does not pay for it.
	if _, err := settingsSvc.Get(ctx); err != nil {
		return fmt.Errorf("error loading global settings: %w", err)
	}

	var clockLimiter *middleware.UserRateLimiter
	if cfg.Attendance.ClockRateLimit > 0 {
		clockLimiter = middleware.NewUserRateLimiter(rate.Limit(float64(cfg.Attendance.ClockRateLimit)/60), cfg.Attendance.ClockRateLimit)
	}

	router := appHTTP.NewRouter(appHTTP.RouterOptions{
		Logger:         log,
		AllowedOrigins: cfg.App.AllowedOrigins,
		ClockLimiter:   clockLimiter,
	}, JWTService, appHTTP.Handlers{
		Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
		Schedule:   appHTTP.NewScheduleHandler(scheduleSvc, loc),
		Settings:   appHTTP.NewSettingsHandler(settingsSvc),
		Report:     appHTTP.NewReportHandler(reportSvc),
		AuditLog:   appHTTP.NewAuditLogHandler(auditSvc),
		User:       appHTTP.NewUserHandler(userSvc),
	})

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(attendanceSvc, cfg.Attendance.SweepInterval).RegisterJobs(scheduler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server running", "addr", server.Addr, "db_driver", cfg.Database.Driver, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return scheduler.Run(gCtx)
	})

	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openRepositories(ctx context.Context, cfg *config.Config) (repositories, func(), error) {
	loc := cfg.App.Timezone

	switch cfg.Database.Driver {
	case config.DriverMemory:
		store := memory.NewStore()
		slog.Warn("using in-memory storage, data is lost on restart")

		r := store.Repositories()
		return repositories{
			tx:              r.Tx,
			users:           r.Users,
			schedules:       r.Schedules,
			settings:        r.Settings,
			attendance:      r.Attendance,
			inconsistencies: r.Inconsistencies,
			auditLogs:       r.AuditLogs,
		}, func() {}, nil

	default:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
		if err != nil {
			return repositories{}, nil, fmt.Errorf("error connecting to database: %w", err)
		}
		if cfg.Database.AutoMigrate {
			if err := database.RunMigrations(db); err != nil {
				db.Close()
				return repositories{}, nil, fmt.Errorf("error running migrations: %w", err)
			}
		}

		return repositories{
			tx:              postgresql.NewTxManager(db),
			users:           postgresql.NewUserRepository(db),
			schedules:       postgresql.NewScheduleRepository(db),
			settings:        postgresql.NewSettingsRepository(db),
			attendance:      postgresql.NewAttendanceRepository(db, loc),
			inconsistencies: postgresql.NewInconsistencyRepository(db, loc),
			auditLogs:       postgresql.NewAuditLogRepository(db),
		}, db.Close, nil
	}
}

// seedUsers creates the configured accounts that do not exist yet.
func seedUsers(ctx context.Context, users user.UserRepository, seed []user.User) error {
	created := 0
	for _, u := range seed {
		_, err := users.Create(ctx, u)
		switch {
		case err == nil:
			created++
		case errors.Is(err, user.ErrUserAlreadyExists):
		default:
			return fmt.Errorf("error seeding user %s: %w", u.UserID, err)
		}
	}
	if len(seed) > 0 {
		slog.Info("seed users checked", "configured", len(seed), "created", created)
	}
	return nil
}
