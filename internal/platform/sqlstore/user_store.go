package sqlstore

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/petdeck/internal/domain"
	"github.com/phrazzld/petdeck/internal/platform/logger"
	"github.com/phrazzld/petdeck/internal/store"
)

// UserStore implements store.UserStore.
type UserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewUserStore creates a user store bound to db.
// If logger is nil, a default logger will be used.
func NewUserStore(db store.DBTX, logger *slog.Logger) *UserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

var _ store.UserStore = (*UserStore)(nil)

// Create implements store.UserStore.Create
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		return store.NewStoreError("user", "create", "validation failed", err)
	}

	query := s.db.Rebind(`
		INSERT INTO users (id, level, created_at, updated_at)
		VALUES (?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, query, user.ID, user.Level, user.CreatedAt.UTC(), user.UpdatedAt.UTC())
	if err != nil {
		log.Error("failed to create user",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
		return wrap("user", "create", err, nil)
	}
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	query := s.db.Rebind(`SELECT id, level, created_at, updated_at FROM users WHERE id = ?`)
	if err := s.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, wrap("user", "get", err, store.ErrUserNotFound)
	}
	return &user, nil
}

// UpdateLevel implements store.UserStore.UpdateLevel
func (s *UserStore) UpdateLevel(ctx context.Context, id uuid.UUID, level int, now time.Time) error {
	query := s.db.Rebind(`UPDATE users SET level = ?, updated_at = ? WHERE id = ?`)
	result, err := s.db.ExecContext(ctx, query, level, now.UTC(), id)
	if err != nil {
		return wrap("user", "update", err, nil)
	}
	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// ListIDs implements store.UserStore.ListIDs
func (s *UserStore) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := s.db.SelectContext(ctx, &ids, `SELECT id FROM users ORDER BY created_at, id`); err != nil {
		return nil, wrap("user", "list", err, nil)
	}
	return ids, nil
}

// SettingsStore implements store.SettingsStore.
type SettingsStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSettingsStore creates a settings store bound to db.
func NewSettingsStore(db store.DBTX, logger *slog.Logger) *SettingsStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsStore{
		db:     db,
		logger: logger.With(slog.String("component", "settings_store")),
	}
}

var _ store.SettingsStore = (*SettingsStore)(nil)

// Get implements store.SettingsStore.Get
func (s *SettingsStore) Get(ctx context.Context, userID uuid.UUID) (*domain.UserSettings, error) {
	var settings domain.UserSettings
	query := s.db.Rebind(`
		SELECT user_id, timezone, notifications_enabled, updated_at
		FROM user_settings WHERE user_id = ?`)
	if err := s.db.GetContext(ctx, &settings, query, userID); err != nil {
		return nil, wrap("user_settings", "get", err, store.ErrSettingsNotFound)
	}
	return &settings, nil
}

// Upsert implements store.SettingsStore.Upsert
func (s *SettingsStore) Upsert(ctx context.Context, settings *domain.UserSettings) error {
	if err := settings.Validate(); err != nil {
		return store.NewStoreError("user_settings", "upsert", "validation failed", err)
	}

	query := s.db.Rebind(`
		INSERT INTO user_settings (user_id, timezone, notifications_enabled, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			timezone = excluded.timezone,
			notifications_enabled = excluded.notifications_enabled,
			updated_at = excluded.updated_at`)
	_, err := s.db.ExecContext(ctx, query,
		settings.UserID, settings.Timezone, settings.NotificationsEnabled, settings.UpdatedAt.UTC())
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to upsert settings",
			slog.String("user_id", settings.UserID.String()),
			slog.String("error", err.Error()))
		return wrap("user_settings", "upsert", err, nil)
	}
	return nil
}
