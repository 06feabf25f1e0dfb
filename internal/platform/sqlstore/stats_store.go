package sqlstore

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/petdeck/internal/domain"
	"github.com/phrazzld/petdeck/internal/store"
)

// StatsStore implements store.StatsStore on the daily_stats and
// level_progress tables.
type StatsStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewStatsStore creates a statistics store bound to db.
func NewStatsStore(db store.DBTX, logger *slog.Logger) *StatsStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsStore{
		db:     db,
		logger: logger.With(slog.String("component", "stats_store")),
	}
}

var _ store.StatsStore = (*StatsStore)(nil)

// GetDaily implements store.StatsStore.GetDaily
func (s *StatsStore) GetDaily(ctx context.Context, userID uuid.UUID, day string) (*domain.DailyStats, error) {
	var stats domain.DailyStats
	query := s.db.Rebind(`
		SELECT user_id, day, attempts, correct, first_try_total, first_try_errors, streak
		FROM daily_stats WHERE user_id = ? AND day = ?`)
	err := s.db.GetContext(ctx, &stats, query, userID, day)
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrNotFound) {
			return &domain.DailyStats{UserID: userID, Day: day}, nil
		}
		return nil, store.NewStoreError("daily_stats", "get", "database error", mapped)
	}
	return &stats, nil
}

// UpsertDaily implements store.StatsStore.UpsertDaily
func (s *StatsStore) UpsertDaily(ctx context.Context, d *domain.DailyStats) error {
	query := s.db.Rebind(`
		INSERT INTO daily_stats (user_id, day, attempts, correct, first_try_total, first_try_errors, streak)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, day) DO UPDATE SET
			attempts = excluded.attempts,
			correct = excluded.correct,
			first_try_total = excluded.first_try_total,
			first_try_errors = excluded.first_try_errors,
			streak = excluded.streak`)
	_, err := s.db.ExecContext(ctx, query,
		d.UserID, d.Day, d.Attempts, d.Correct, d.FirstTryTotal, d.FirstTryErrors, d.Streak)
	if err != nil {
		return wrap("daily_stats", "upsert", err, nil)
	}
	return nil
}

// GetLevel implements store.StatsStore.GetLevel
func (s *StatsStore) GetLevel(ctx context.Context, userID uuid.UUID, level int) (*domain.LevelProgress, error) {
	var lp domain.LevelProgress
	query := s.db.Rebind(`
		SELECT user_id, level, best_correct, sessions_completed, updated_at
		FROM level_progress WHERE user_id = ? AND level = ?`)
	err := s.db.GetContext(ctx, &lp, query, userID, level)
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrNotFound) {
			return &domain.LevelProgress{UserID: userID, Level: level}, nil
		}
		return nil, store.NewStoreError("level_progress", "get", "database error", mapped)
	}
	return &lp, nil
}

// UpsertLevel implements store.StatsStore.UpsertLevel
func (s *StatsStore) UpsertLevel(ctx context.Context, lp *domain.LevelProgress) error {
	query := s.db.Rebind(`
		INSERT INTO level_progress (user_id, level, best_correct, sessions_completed, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, level) DO UPDATE SET
			best_correct = excluded.best_correct,
			sessions_completed = excluded.sessions_completed,
			updated_at = excluded.updated_at`)
	_, err := s.db.ExecContext(ctx, query,
		lp.UserID, lp.Level, lp.BestCorrect, lp.SessionsCompleted, lp.UpdatedAt.UTC())
	if err != nil {
		return wrap("level_progress", "upsert", err, nil)
	}
	return nil
}

// ReminderStore implements store.ReminderStore.
type ReminderStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewReminderStore creates a reminder log store bound to db.
func NewReminderStore(db store.DBTX, logger *slog.Logger) *ReminderStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReminderStore{
		db:     db,
		logger: logger.With(slog.String("component", "reminder_store")),
	}
}

var _ store.ReminderStore = (*ReminderStore)(nil)

// Record implements store.ReminderStore.Record
func (s *ReminderStore) Record(ctx context.Context, r *domain.ReminderLog) (bool, error) {
	query := s.db.Rebind(`
		INSERT INTO reminders (user_id, slot_key, reminded_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, slot_key) DO NOTHING`)
	result, err := s.db.ExecContext(ctx, query, r.UserID, r.SlotKey, r.RemindedAt.UTC())
	if err != nil {
		return false, wrap("reminder", "record", err, nil)
	}
	return affected(result)
}
