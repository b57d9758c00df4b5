package memory

import (
	"context"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/domain/settings"
)

type settingsRepository struct{ s *Store }

func (r settingsRepository) Get(_ context.Context) (settings.GlobalSettings, error) {
	var current *settings.GlobalSettings
	r.s.read(func(t *tables) { current = t.settings })
	if current == nil {
		return settings.GlobalSettings{}, settings.ErrSettingsNotFound
	}
	return *current, nil
}

func (r settingsRepository) CreateDefault(ctx context.Context) (settings.GlobalSettings, error) {
	var result settings.GlobalSettings
	err := r.s.write(ctx, func(t *tables) error {
		if t.settings == nil {
			d := settings.Default()
			d.UpdatedAt = r.s.now()
			t.settings = &d
		}
		result = *t.settings
		return nil
	})
	return result, err
}

func (r settingsRepository) Update(ctx context.Context, next settings.GlobalSettings) (settings.GlobalSettings, error) {
	err := r.s.write(ctx, func(t *tables) error {
		if t.settings == nil {
			return settings.ErrSettingsNotFound
		}
		next.ID = settings.SingletonID
		next.UpdatedAt = r.s.now()
		t.settings = &next
		return nil
	})
	if err != nil {
		return settings.GlobalSettings{}, err
	}
	return next, nil
}

// DeleteSettings drops the singleton row so tests can exercise the auto-heal path.
func (s *Store) DeleteSettings() {
	_ = s.write(context.Background(), func(t *tables) error {
		t.settings = nil
		return nil
	})
}
