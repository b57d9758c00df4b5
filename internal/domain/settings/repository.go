package settings

import "context"

type SettingsRepository interface {
	// Get returns ErrSettingsNotFound when the singleton row is missing.
	Get(ctx context.Context) (GlobalSettings, error)
	// CreateDefault inserts the default row unless one already exists, then returns the stored row.
	CreateDefault(ctx context.Context) (GlobalSettings, error)
	Update(ctx context.Context, s GlobalSettings) (GlobalSettings, error)
}
