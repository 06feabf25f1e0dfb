package sqlstore

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/petdeck/internal/domain"
	"github.com/phrazzld/petdeck/internal/platform/logger"
	"github.com/phrazzld/petdeck/internal/store"
)

const petColumns = `user_id, hunger, thirst, hygiene, energy, mood, health, sessions_today,
	missed_sessions_streak, consecutive_zero_days, resurrect_streak, is_dead,
	last_checked_at, last_session_completed_at, created_at, updated_at`

// PetStore implements store.PetStore.
type PetStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPetStore creates a pet store bound to db.
func NewPetStore(db store.DBTX, logger *slog.Logger) *PetStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PetStore{
		db:     db,
		logger: logger.With(slog.String("component", "pet_store")),
	}
}

var _ store.PetStore = (*PetStore)(nil)

// Create implements store.PetStore.Create
func (s *PetStore) Create(ctx context.Context, pet *domain.Pet) error {
	_, err := sqlx.NamedExecContext(ctx, s.db, `
		INSERT INTO pets (`+petColumns+`)
		VALUES (:user_id, :hunger, :thirst, :hygiene, :energy, :mood, :health, :sessions_today,
			:missed_sessions_streak, :consecutive_zero_days, :resurrect_streak, :is_dead,
			:last_checked_at, :last_session_completed_at, :created_at, :updated_at)`, petRow(pet))
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create pet",
			slog.String("user_id", pet.UserID.String()),
			slog.String("error", err.Error()))
		return wrap("pet", "create", err, nil)
	}
	return nil
}

// Get implements store.PetStore.Get
func (s *PetStore) Get(ctx context.Context, userID uuid.UUID) (*domain.Pet, error) {
	var pet domain.Pet
	query := s.db.Rebind(`SELECT ` + petColumns + ` FROM pets WHERE user_id = ?`)
	if err := s.db.GetContext(ctx, &pet, query, userID); err != nil {
		return nil, wrap("pet", "get", err, store.ErrPetNotFound)
	}
	return &pet, nil
}

// Update implements store.PetStore.Update
func (s *PetStore) Update(ctx context.Context, pet *domain.Pet) error {
	result, err := sqlx.NamedExecContext(ctx, s.db, `
		UPDATE pets SET
			hunger = :hunger,
			thirst = :thirst,
			hygiene = :hygiene,
			energy = :energy,
			mood = :mood,
			health = :health,
			sessions_today = :sessions_today,
			missed_sessions_streak = :missed_sessions_streak,
			consecutive_zero_days = :consecutive_zero_days,
			resurrect_streak = :resurrect_streak,
			is_dead = :is_dead,
			last_checked_at = :last_checked_at,
			last_session_completed_at = :last_session_completed_at,
			updated_at = :updated_at
		WHERE user_id = :user_id`, petRow(pet))
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update pet",
			slog.String("user_id", pet.UserID.String()),
			slog.String("error", err.Error()))
		return wrap("pet", "update", err, nil)
	}
	return CheckRowsAffected(result, store.ErrPetNotFound)
}

// petRow normalizes timestamps before binding.
func petRow(pet *domain.Pet) *domain.Pet {
	row := *pet
	row.LastCheckedAt = pet.LastCheckedAt.UTC()
	row.LastSessionCompletedAt = utcPtr(pet.LastSessionCompletedAt)
	row.CreatedAt = pet.CreatedAt.UTC()
	row.UpdatedAt = pet.UpdatedAt.UTC()
	return &row
}

// RevivalStore implements store.RevivalStore on the revive table.
type RevivalStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewRevivalStore creates a revival token store bound to db.
func NewRevivalStore(db store.DBTX, logger *slog.Logger) *RevivalStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RevivalStore{
		db:     db,
		logger: logger.With(slog.String("component", "revival_store")),
	}
}

var _ store.RevivalStore = (*RevivalStore)(nil)

// Create implements store.RevivalStore.Create
func (s *RevivalStore) Create(ctx context.Context, token *domain.RevivalToken) error {
	query := s.db.Rebind(`
		INSERT INTO revive (id, user_id, token_hash, expires_at, used, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, query,
		token.ID, token.UserID, token.TokenHash, token.ExpiresAt.UTC(), token.Used, token.CreatedAt.UTC())
	if err != nil {
		return wrap("revival_token", "create", err, nil)
	}
	return nil
}

// LatestUnused implements store.RevivalStore.LatestUnused
func (s *RevivalStore) LatestUnused(ctx context.Context, userID uuid.UUID) (*domain.RevivalToken, error) {
	var token domain.RevivalToken
	query := s.db.Rebind(`
		SELECT id, user_id, token_hash, expires_at, used, created_at
		FROM revive WHERE user_id = ? AND used = ?
		ORDER BY created_at DESC LIMIT 1`)
	if err := s.db.GetContext(ctx, &token, query, userID, false); err != nil {
		return nil, wrap("revival_token", "get", err, store.ErrTokenNotFound)
	}
	return &token, nil
}

// InvalidateUnused implements store.RevivalStore.InvalidateUnused
func (s *RevivalStore) InvalidateUnused(ctx context.Context, userID uuid.UUID) error {
	query := s.db.Rebind(`UPDATE revive SET used = ? WHERE user_id = ? AND used = ?`)
	if _, err := s.db.ExecContext(ctx, query, true, userID, false); err != nil {
		return wrap("revival_token", "invalidate", err, nil)
	}
	return nil
}

// MarkUsed implements store.RevivalStore.MarkUsed
func (s *RevivalStore) MarkUsed(ctx context.Context, id uuid.UUID) (bool, error) {
	query := s.db.Rebind(`UPDATE revive SET used = ? WHERE id = ? AND used = ?`)
	result, err := s.db.ExecContext(ctx, query, true, id, false)
	if err != nil {
		return false, wrap("revival_token", "mark_used", err, nil)
	}
	return affected(result)
}
