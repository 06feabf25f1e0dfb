package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrEmptyUserID     = errors.New("user ID cannot be empty")
	ErrInvalidLevel    = errors.New("level must be at least 1")
	ErrInvalidTimezone = errors.New("invalid timezone")
)

// User is a learner. Level is the highest unlocked level and never decreases.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Level     int       `json:"level" db:"level"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewUser creates a user at level 1.
func NewUser(id uuid.UUID, now time.Time) (*User, error) {
	user := &User{
		ID:        id,
		Level:     1,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}
	if u.Level < 1 {
		return ErrInvalidLevel
	}
	return nil
}

// Unlock raises the user's level to level if it is higher. It reports whether
// the level changed.
func (u *User) Unlock(level int, now time.Time) bool {
	if level <= u.Level {
		return false
	}
	u.Level = level
	u.UpdatedAt = now.UTC()
	return true
}

// UserSettings holds per-user preferences that drive reminder planning.
type UserSettings struct {
	UserID               uuid.UUID `json:"user_id" db:"user_id"`
	Timezone             string    `json:"timezone" db:"timezone"`
	NotificationsEnabled bool      `json:"notifications_enabled" db:"notifications_enabled"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

// NewUserSettings creates settings with notifications enabled.
func NewUserSettings(userID uuid.UUID, timezone string, now time.Time) (*UserSettings, error) {
	settings := &UserSettings{
		UserID:               userID,
		Timezone:             timezone,
		NotificationsEnabled: true,
		UpdatedAt:            now.UTC(),
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return settings, nil
}

// Validate checks that the user ID is set and the timezone resolves.
func (s *UserSettings) Validate() error {
	if s.UserID == uuid.Nil {
		return ErrEmptyUserID
	}
	if _, err := s.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the settings timezone.
func (s *UserSettings) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, s.Timezone)
	}
	return loc, nil
}
