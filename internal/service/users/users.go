// Package users registers learners and maintains their settings.
package users

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/petdeck/internal/domain"
	"github.com/phrazzld/petdeck/internal/platform/clock"
	"github.com/phrazzld/petdeck/internal/platform/logger"
	"github.com/phrazzld/petdeck/internal/service"
	"github.com/phrazzld/petdeck/internal/store"
	"github.com/phrazzld/petdeck/internal/userlock"
)

// Profile is a user with their settings.
type Profile struct {
	User     *domain.User         `json:"user"`
	Settings *domain.UserSettings `json:"settings"`
}

// Update carries optional settings changes. Nil fields are left as they are.
type Update struct {
	Timezone             *string
	NotificationsEnabled *bool
}

// UserService provides user registration and settings.
type UserService interface {
	// Ensure creates the user and their settings on first contact and applies
	// update. Returns domain.ErrInvalidTimezone for an unknown timezone.
	Ensure(ctx context.Context, userID uuid.UUID, update Update) (*Profile, error)

	// Get returns the user's profile. Returns store.ErrUserNotFound if missing.
	Get(ctx context.Context, userID uuid.UUID) (*Profile, error)
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	gateway         store.Gateway
	locks           *userlock.Arena
	clock           clock.Clock
	defaultTimezone string
	logger          *slog.Logger
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService. New users get defaultTimezone
// until they choose one.
func NewUserService(
	gateway store.Gateway,
	locks *userlock.Arena,
	clk clock.Clock,
	defaultTimezone string,
	logger *slog.Logger,
) *UserServiceImpl {
	if gateway == nil {
		panic("gateway cannot be nil")
	}
	if locks == nil {
		panic("locks cannot be nil")
	}
	if clk == nil {
		panic("clock cannot be nil")
	}
	if defaultTimezone == "" {
		defaultTimezone = "UTC"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserServiceImpl{
		gateway:         gateway,
		locks:           locks,
		clock:           clk,
		defaultTimezone: defaultTimezone,
		logger:          logger.With(slog.String("component", "user_service")),
	}
}

// Ensure implements UserService.
func (s *UserServiceImpl) Ensure(ctx context.Context, userID uuid.UUID, update Update) (*Profile, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", userID.String()))
	now := s.clock.Now()

	unlock, err := s.locks.Lock(ctx, userID)
	if err != nil {
		return nil, service.Wrap("ensure_user", "failed to lock user", err)
	}
	defer unlock()

	var (
		profile *Profile
		created bool
	)
	err = s.gateway.RunInTx(ctx, func(ctx context.Context, tx *store.Stores) error {
		created = false
		user, err := tx.Users.GetByID(ctx, userID)
		if errors.Is(err, store.ErrUserNotFound) {
			user, err = domain.NewUser(userID, now)
			if err != nil {
				return err
			}
			if err := tx.Users.Create(ctx, user); err != nil {
				return err
			}
			created = true
		} else if err != nil {
			return err
		}

		settings, err := tx.Settings.Get(ctx, userID)
		if errors.Is(err, store.ErrSettingsNotFound) {
			settings, err = domain.NewUserSettings(userID, s.defaultTimezone, now)
		}
		if err != nil {
			return err
		}

		if update.Timezone != nil {
			settings.Timezone = *update.Timezone
		}
		if update.NotificationsEnabled != nil {
			settings.NotificationsEnabled = *update.NotificationsEnabled
		}
		if err := settings.Validate(); err != nil {
			return err
		}
		settings.UpdatedAt = now.UTC()
		if err := tx.Settings.Upsert(ctx, settings); err != nil {
			return err
		}

		profile = &Profile{User: user, Settings: settings}
		return nil
	})
	if err != nil {
		if !service.IsExpected(err) {
			log.Error("failed to ensure user", slog.String("error", err.Error()))
		}
		return nil, service.Wrap("ensure_user", "failed to ensure user", err)
	}

	if created {
		log.Info("user registered", slog.String("timezone", profile.Settings.Timezone))
	}
	return profile, nil
}

// Get implements UserService.
func (s *UserServiceImpl) Get(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	stores := s.gateway.Stores()
	user, err := stores.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, service.Wrap("get_user", "failed to load user", err)
	}

	settings, err := stores.Settings.Get(ctx, userID)
	if errors.Is(err, store.ErrSettingsNotFound) {
		settings, err = domain.NewUserSettings(userID, s.defaultTimezone, time.Time{})
	}
	if err != nil {
		return nil, service.Wrap("get_user", "failed to load settings", err)
	}
	return &Profile{User: user, Settings: settings}, nil
}
