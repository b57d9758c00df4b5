package settings

import "context"

type SettingsService interface {
	// Get never returns ErrSettingsNotFound; a missing row is recreated with defaults.
	Get(ctx context.Context) (GlobalSettings, error)
	GetResponse(ctx context.Context) (SettingsResponse, error)
	Update(ctx context.Context, req UpdateSettingsRequest) (SettingsResponse, error)
}
