package sqlstore

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/petdeck/internal/domain"
	"github.com/phrazzld/petdeck/internal/store"
)

// AttemptStore implements store.AttemptStore.
type AttemptStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewAttemptStore creates an attempt store bound to db.
func NewAttemptStore(db store.DBTX, logger *slog.Logger) *AttemptStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AttemptStore{
		db:     db,
		logger: logger.With(slog.String("component", "attempt_store")),
	}
}

var _ store.AttemptStore = (*AttemptStore)(nil)

// Create implements store.AttemptStore.Create
func (s *AttemptStore) Create(ctx context.Context, a *domain.Attempt) error {
	query := s.db.Rebind(`
		INSERT INTO attempts (id, session_id, user_id, level, content_id, submitted, expected,
			score, is_first_try, is_correct, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, query,
		a.ID, a.SessionID, a.UserID, a.Level, a.ContentID, a.Submitted, a.Expected,
		a.Score, a.IsFirstTry, a.IsCorrect, a.CreatedAt.UTC())
	if err != nil {
		return wrap("attempt", "create", err, nil)
	}
	return nil
}

// ListBySession implements store.AttemptStore.ListBySession
func (s *AttemptStore) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.Attempt, error) {
	var out []*domain.Attempt
	query := s.db.Rebind(`
		SELECT id, session_id, user_id, level, content_id, submitted, expected,
			score, is_first_try, is_correct, created_at
		FROM attempts WHERE session_id = ?
		ORDER BY created_at, id`)
	if err := s.db.SelectContext(ctx, &out, query, sessionID); err != nil {
		return nil, wrap("attempt", "list", err, nil)
	}
	return out, nil
}
