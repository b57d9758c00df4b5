package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/clock"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Redis      RedisConfig
	Attendance AttendanceConfig
}

type DatabaseConfig struct {
	Driver      string
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SSLMode     string
	AutoMigrate bool
	// SeedUsers are created at startup when missing, for either driver.
	SeedUsers []user.User
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	Timezone       *time.Location
	AllowedOrigins []string
}

// RedisConfig is optional; an empty Addr disables the settings cache.
type RedisConfig struct {
	Addr             string
	Password         string
	DB               int
	SettingsCacheTTL time.Duration
}

type AttendanceConfig struct {
	Policy        attendance.Policy
	SweepInterval time.Duration
	// ClockRateLimit is the allowed clock requests per user per minute.
	ClockRateLimit int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	} else if err != nil {
		slog.Debug("no .env file, using environment only")
	}

	var errs []error
	config := &Config{}

	// Database configuration
	config.Database = DatabaseConfig{
		Driver:      strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		Host:        getEnv("DB_HOST", "localhost"),
		Port:        getEnvInt("DB_PORT", 5432, &errs),
		User:        getEnv("DB_USER", "postgres"),
		Password:    getEnv("DB_PASSWORD", ""),
		Name:        getEnv("DB_NAME", "gia_attendance"),
		SSLMode:     getEnv("DB_SSL_MODE", "disable"),
		AutoMigrate: getEnvBool("DB_AUTO_MIGRATE", true, &errs),
	}
	seed, err := ParseSeedUsers(getEnv("SEED_USERS", ""))
	if err != nil {
		errs = append(errs, err)
	}
	config.Database.SeedUsers = seed

	// Application configuration
	loc, err := time.LoadLocation(getEnv("APP_TIMEZONE", "Asia/Manila"))
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid APP_TIMEZONE: %w", err))
		loc = time.UTC
	}
	config.App = AppConfig{
		Port:           getEnvInt("APP_PORT", 8080, &errs),
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Timezone:       loc,
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnvDuration("JWT_ACCESS_EXPIRATION_TIME", time.Hour, &errs),
	}

	// Redis configuration
	config.Redis = RedisConfig{
		Addr:             getEnv("REDIS_ADDR", ""),
		Password:         getEnv("REDIS_PASSWORD", ""),
		DB:               getEnvInt("REDIS_DB", 0, &errs),
		SettingsCacheTTL: getEnvDuration("SETTINGS_CACHE_TTL", 5*time.Minute, &errs),
	}

	// Attendance policy
	policy := attendance.DefaultPolicy()
	policy.EveningCutoff = getEnvTime("EVENING_CUTOFF", policy.EveningCutoff, &errs)
	policy.ClockOutGrace = getEnvDuration("CLOCK_OUT_GRACE", policy.ClockOutGrace, &errs)
	policy.ClockOutMatchTolerance = getEnvDuration("CLOCK_OUT_MATCH_TOLERANCE", policy.ClockOutMatchTolerance, &errs)
	policy.EarlyBirdStart = getEnvTime("EARLY_BIRD_START", policy.EarlyBirdStart, &errs)
	policy.EarlyBirdBonus = getEnvDuration("EARLY_BIRD_BONUS", policy.EarlyBirdBonus, &errs)
	policy.OvertimeBuffer = getEnvDuration("OVERTIME_BUFFER", policy.OvertimeBuffer, &errs)

	config.Attendance = AttendanceConfig{
		Policy:         policy,
		SweepInterval:  getEnvDuration("SWEEP_INTERVAL", 15*time.Minute, &errs),
		ClockRateLimit: getEnvInt("CLOCK_RATE_LIMIT", 10, &errs),
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("DB_DRIVER must be %s or %s", DriverPostgres, DriverMemory)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Attendance.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// ParseSeedUsers reads "user_id:role[:first:last]" entries separated by commas.
func ParseSeedUsers(value string) ([]user.User, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	var users []user.User
	for _, entry := range strings.Split(value, ",") {
		parts := strings.Split(strings.TrimSpace(entry), ":")
		if len(parts) < 2 || parts[0] == "" {
			return nil, fmt.Errorf("invalid SEED_USERS entry %q", entry)
		}
		role := user.Role(parts[1])
		if _, ok := user.RolePermissions[role]; !ok {
			return nil, fmt.Errorf("invalid role %q in SEED_USERS", parts[1])
		}
		u := user.User{UserID: parts[0], Role: role, Status: user.StatusActive, FirstName: parts[0]}
		if len(parts) >= 4 {
			u.FirstName, u.LastName = parts[2], parts[3]
		}
		users = append(users, u)
	}
	return users, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int, errs *[]error) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool, errs *[]error) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return d
}

func getEnvTime(key string, fallback clock.TimeOfDay, errs *[]error) clock.TimeOfDay {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	t, err := clock.Parse(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return t
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
