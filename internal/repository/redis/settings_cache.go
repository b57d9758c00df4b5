// Package redis holds read-through caches in front of the postgres repositories.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/clock"
)

const settingsCacheKey = "gia:settings:global"

type cachedSettings struct {
	EnableStrictSchedule bool             `json:"enable_strict_schedule"`
	AutoClockOutHours    int              `json:"auto_clock_out_hours"`
	AllowEarlyOut        bool             `json:"allow_early_out"`
	AllowOvertime        bool             `json:"allow_overtime"`
	DefaultStart         *clock.TimeOfDay `json:"default_start"`
	DefaultEnd           *clock.TimeOfDay `json:"default_end"`
	AllowedEarlyInMins   int              `json:"allowed_early_in_mins"`
	UnitHead             string           `json:"unit_head"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

func encodeSettings(s settings.GlobalSettings) ([]byte, error) {
	return json.Marshal(cachedSettings{
		EnableStrictSchedule: s.EnableStrictSchedule,
		AutoClockOutHours:    s.AutoClockOutHours,
		AllowEarlyOut:        s.AllowEarlyOut,
		AllowOvertime:        s.AllowOvertime,
		DefaultStart:         s.DefaultStart,
		DefaultEnd:           s.DefaultEnd,
		AllowedEarlyInMins:   s.AllowedEarlyInMins,
		UnitHead:             s.UnitHead,
		UpdatedAt:            s.UpdatedAt,
	})
}

func decodeSettings(b []byte) (settings.GlobalSettings, error) {
	var c cachedSettings
	if err := json.Unmarshal(b, &c); err != nil {
		return settings.GlobalSettings{}, err
	}
	return settings.GlobalSettings{
		ID:                   settings.SingletonID,
		EnableStrictSchedule: c.EnableStrictSchedule,
		AutoClockOutHours:    c.AutoClockOutHours,
		AllowEarlyOut:        c.AllowEarlyOut,
		AllowOvertime:        c.AllowOvertime,
		DefaultStart:         c.DefaultStart,
		DefaultEnd:           c.DefaultEnd,
		AllowedEarlyInMins:   c.AllowedEarlyInMins,
		UnitHead:             c.UnitHead,
		UpdatedAt:            c.UpdatedAt,
	}, nil
}

// settingsCache is a read-through cache. Redis failures fall back to the
// underlying repository.
type settingsCache struct {
	next settings.SettingsRepository
	rdb  goredis.Cmdable
	ttl  time.Duration
}

func NewSettingsCache(next settings.SettingsRepository, rdb goredis.Cmdable, ttl time.Duration) settings.SettingsRepository {
	return &settingsCache{next: next, rdb: rdb, ttl: ttl}
}

func (c *settingsCache) Get(ctx context.Context) (settings.GlobalSettings, error) {
	raw, err := c.rdb.Get(ctx, settingsCacheKey).Bytes()
	switch {
	case err == nil:
		if s, decodeErr := decodeSettings(raw); decodeErr == nil {
			return s, nil
		}
		slog.Warn("discarding malformed settings cache entry")
	case !errors.Is(err, goredis.Nil):
		slog.Warn("settings cache read failed", "error", err)
	}

	s, err := c.next.Get(ctx)
	if err != nil {
		return settings.GlobalSettings{}, err
	}
	c.store(ctx, s)
	return s, nil
}

func (c *settingsCache) CreateDefault(ctx context.Context) (settings.GlobalSettings, error) {
	s, err := c.next.CreateDefault(ctx)
	if err != nil {
		return settings.GlobalSettings{}, err
	}
	c.store(ctx, s)
	return s, nil
}

func (c *settingsCache) Update(ctx context.Context, s settings.GlobalSettings) (settings.GlobalSettings, error) {
	updated, err := c.next.Update(ctx, s)
	if err != nil {
		return settings.GlobalSettings{}, err
	}
	if err := c.rdb.Del(ctx, settingsCacheKey).Err(); err != nil {
		slog.Warn("settings cache invalidation failed", "error", err)
	}
	return updated, nil
}

func (c *settingsCache) store(ctx context.Context, s settings.GlobalSettings) {
	payload, err := encodeSettings(s)
	if err != nil {
		slog.Warn("settings cache encode failed", "error", err)
		return
	}
	if err := c.rdb.Set(ctx, settingsCacheKey, payload, c.ttl).Err(); err != nil {
		slog.Warn("settings cache write failed", "error", err)
	}
}
