// Package memory keeps every table in process memory. It backs DB_DRIVER=memory
// and the service tests.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/auditlog"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/database"
)

type scheduleKey struct {
	userID string
	day    time.Weekday
}

type tables struct {
	users           map[string]user.User
	schedules       map[scheduleKey]schedule.Schedule
	settings        *settings.GlobalSettings
	attendance      []attendance.Attendance
	inconsistencies []attendance.Inconsistency
	logs            []auditlog.Entry
}

func (t tables) clone() tables {
	c := tables{
		users:           make(map[string]user.User, len(t.users)),
		schedules:       make(map[scheduleKey]schedule.Schedule, len(t.schedules)),
		attendance:      slices.Clone(t.attendance),
		inconsistencies: slices.Clone(t.inconsistencies),
		logs:            slices.Clone(t.logs),
	}
	for k, v := range t.users {
		c.users[k] = v
	}
	for k, v := range t.schedules {
		c.schedules[k] = v
	}
	if t.settings != nil {
		s := *t.settings
		c.settings = &s
	}
	return c
}

// Store is safe for concurrent use. Transactions are serialized and rolled
// back by restoring a snapshot.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data tables
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{
		data: tables{
			users:     map[string]user.User{},
			schedules: map[scheduleKey]schedule.Schedule{},
		},
		now: time.Now,
	}
}

type txMarker struct{}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txMarker{}).(bool)
	return ok
}

// WithinTx implements database.TxManager.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txMarker{}, true)); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// write runs fn under the table lock. Outside a transaction it also waits for
// running transactions so a rollback cannot discard the write.
func (s *Store) write(ctx context.Context, fn func(t *tables) error) error {
	if !inTx(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.data)
}

func (s *Store) read(fn func(t *tables)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.data)
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// PutUser inserts or replaces a user without the uniqueness check of Create.
func (s *Store) PutUser(u user.User) {
	_ = s.write(context.Background(), func(t *tables) error {
		now := s.now()
		if existing, ok := t.users[u.UserID]; ok {
			u.ID = existing.ID
			u.CreatedAt = existing.CreatedAt
		} else {
			u.ID = s.nextUserID(t)
			u.CreatedAt = now
		}
		u.UpdatedAt = now
		t.users[u.UserID] = u
		return nil
	})
}

func (s *Store) nextUserID(t *tables) int64 {
	var last int64
	for _, u := range t.users {
		if u.ID > last {
			last = u.ID
		}
	}
	return last + 1
}

// Repositories groups the store's views.
type Repositories struct {
	Tx              database.TxManager
	Users           user.UserRepository
	Schedules       schedule.ScheduleRepository
	Settings        settings.SettingsRepository
	Attendance      attendance.AttendanceRepository
	Inconsistencies attendance.InconsistencyRepository
	AuditLogs       auditlog.AuditLogRepository
}

func (s *Store) Repositories() Repositories {
	return Repositories{
		Tx:              s,
		Users:           userRepository{s},
		Schedules:       scheduleRepository{s},
		Settings:        settingsRepository{s},
		Attendance:      attendanceRepository{s},
		Inconsistencies: inconsistencyRepository{s},
		AuditLogs:       auditLogRepository{s},
	}
}
