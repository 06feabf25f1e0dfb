package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/petdeck/internal/domain"
	"github.com/phrazzld/petdeck/internal/store"
)

// UserLocation resolves the user's timezone from their settings. Users
// without settings get fallback, or UTC when fallback is nil. The settings
// are nil in that case.
func UserLocation(
	ctx context.Context,
	stores *store.Stores,
	userID uuid.UUID,
	fallback *time.Location,
) (*time.Location, *domain.UserSettings, error) {
	if fallback == nil {
		fallback = time.UTC
	}

	settings, err := stores.Settings.Get(ctx, userID)
	if errors.Is(err, store.ErrSettingsNotFound) {
		return fallback, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	loc, err := settings.Location()
	if err != nil {
		return nil, nil, err
	}
	return loc, settings, nil
}
