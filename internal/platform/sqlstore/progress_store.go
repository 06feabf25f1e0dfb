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

const progressColumns = `user_id, level, content_id, learn_correct_count, review_stage,
	next_due_at, last_seen_at, created_at, updated_at`

// ProgressStore implements store.ProgressStore.
type ProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewProgressStore creates a progress store bound to db.
func NewProgressStore(db store.DBTX, logger *slog.Logger) *ProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "progress_store")),
	}
}

var _ store.ProgressStore = (*ProgressStore)(nil)

// Get implements store.ProgressStore.Get
func (s *ProgressStore) Get(
	ctx context.Context,
	userID uuid.UUID,
	level int,
	contentID domain.ContentID,
) (*domain.ItemProgress, error) {
	var p domain.ItemProgress
	query := s.db.Rebind(`SELECT ` + progressColumns + `
		FROM item_progress WHERE user_id = ? AND level = ? AND content_id = ?`)
	if err := s.db.GetContext(ctx, &p, query, userID, level, contentID); err != nil {
		return nil, wrap("item_progress", "get", err, store.ErrProgressNotFound)
	}
	return &p, nil
}

// Upsert implements store.ProgressStore.Upsert
func (s *ProgressStore) Upsert(ctx context.Context, p *domain.ItemProgress) error {
	if err := p.Validate(); err != nil {
		return store.NewStoreError("item_progress", "upsert", "validation failed", err)
	}

	query := s.db.Rebind(`
		INSERT INTO item_progress (` + progressColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, level, content_id) DO UPDATE SET
			learn_correct_count = excluded.learn_correct_count,
			review_stage = excluded.review_stage,
			next_due_at = excluded.next_due_at,
			last_seen_at = excluded.last_seen_at,
			updated_at = excluded.updated_at`)
	_, err := s.db.ExecContext(ctx, query,
		p.UserID, p.Level, p.ContentID, p.LearnCorrectCount, p.ReviewStage,
		utcPtr(p.NextDueAt), utcPtr(p.LastSeenAt), p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to upsert item progress",
			slog.String("user_id", p.UserID.String()),
			slog.String("content_id", string(p.ContentID)),
			slog.String("error", err.Error()))
		return wrap("item_progress", "upsert", err, nil)
	}
	return nil
}

// ListDue implements store.ProgressStore.ListDue
func (s *ProgressStore) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	level int,
	now time.Time,
	limit int,
) ([]*domain.ItemProgress, error) {
	query := `SELECT ` + progressColumns + `
		FROM item_progress
		WHERE user_id = ? AND level = ? AND (next_due_at IS NULL OR next_due_at <= ?)
		ORDER BY CASE WHEN next_due_at IS NULL THEN 0 ELSE 1 END, next_due_at, content_id`
	args := []any{userID, level, now.UTC()}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var out []*domain.ItemProgress
	if err := s.db.SelectContext(ctx, &out, s.db.Rebind(query), args...); err != nil {
		return nil, wrap("item_progress", "list_due", err, nil)
	}
	return out, nil
}

// ListSeen implements store.ProgressStore.ListSeen
func (s *ProgressStore) ListSeen(ctx context.Context, userID uuid.UUID, level int) ([]domain.ContentID, error) {
	var out []domain.ContentID
	query := s.db.Rebind(`SELECT content_id FROM item_progress WHERE user_id = ? AND level = ?`)
	if err := s.db.SelectContext(ctx, &out, query, userID, level); err != nil {
		return nil, wrap("item_progress", "list_seen", err, nil)
	}
	return out, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
