package settings

import (
	"time"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/clock"
)

// SingletonID is the primary key of the only settings row.
const SingletonID = 1

// GlobalSettings is passed by value into every validator call.
type GlobalSettings struct {
	ID                   int
	EnableStrictSchedule bool
	AutoClockOutHours    int
	AllowEarlyOut        bool
	AllowOvertime        bool
	DefaultStart         *clock.TimeOfDay
	DefaultEnd           *clock.TimeOfDay
	AllowedEarlyInMins   int
	UnitHead             string
	UpdatedAt            time.Time
}

func Default() GlobalSettings {
	start, end := clock.New(8, 0), clock.New(17, 0)
	return GlobalSettings{
		ID:                   SingletonID,
		EnableStrictSchedule: false,
		AutoClockOutHours:    10,
		AllowEarlyOut:        true,
		AllowOvertime:        false,
		DefaultStart:         &start,
		DefaultEnd:           &end,
		AllowedEarlyInMins:   5,
	}
}

func (s GlobalSettings) EarlyInAllowance() time.Duration {
	return time.Duration(s.AllowedEarlyInMins) * time.Minute
}

// AutoClockOutAfter is zero when the sweeper is disabled.
func (s GlobalSettings) AutoClockOutAfter() time.Duration {
	if s.AutoClockOutHours <= 0 {
		return 0
	}
	return time.Duration(s.AutoClockOutHours) * time.Hour
}

func (s GlobalSettings) ScheduleDefaults() schedule.Defaults {
	return schedule.Defaults{Start: s.DefaultStart, End: s.DefaultEnd}
}
