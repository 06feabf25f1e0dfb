package sqlstore

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/petdeck/internal/domain"
	"github.com/phrazzld/petdeck/internal/platform/logger"
	"github.com/phrazzld/petdeck/internal/store"
)

const sessionColumns = `id, user_id, level, slot_key, started_at, due_at, status, ended_at, created_at`

// SessionStore implements store.SessionStore.
type SessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSessionStore creates a session store bound to db.
func NewSessionStore(db store.DBTX, logger *slog.Logger) *SessionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "session_store")),
	}
}

var _ store.SessionStore = (*SessionStore)(nil)

// Create implements store.SessionStore.Create
func (s *SessionStore) Create(ctx context.Context, session *domain.Session) error {
	if err := session.Validate(); err != nil {
		return store.NewStoreError("session", "create", "validation failed", err)
	}

	query := s.db.Rebind(`INSERT INTO sessions (` + sessionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, query,
		session.ID, session.UserID, session.Level, session.SlotKey,
		session.StartedAt.UTC(), session.DueAt.UTC(), session.Status,
		utcPtr(session.EndedAt), session.CreatedAt.UTC())
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrActiveSessionExists
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create session",
			slog.String("user_id", session.UserID.String()),
			slog.String("error", err.Error()))
		return wrap("session", "create", err, nil)
	}
	return nil
}

// GetByID implements store.SessionStore.GetByID
func (s *SessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	var session domain.Session
	query := s.db.Rebind(`SELECT ` + sessionColumns + ` FROM sessions WHERE id = ?`)
	if err := s.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, wrap("session", "get", err, store.ErrSessionNotFound)
	}
	return &session, nil
}

// GetActive implements store.SessionStore.GetActive
func (s *SessionStore) GetActive(ctx context.Context, userID uuid.UUID) (*domain.Session, error) {
	return s.getLatestWithStatus(ctx, userID, domain.SessionActive)
}

// GetPending implements store.SessionStore.GetPending
func (s *SessionStore) GetPending(ctx context.Context, userID uuid.UUID) (*domain.Session, error) {
	return s.getLatestWithStatus(ctx, userID, domain.SessionPending)
}

func (s *SessionStore) getLatestWithStatus(
	ctx context.Context,
	userID uuid.UUID,
	status domain.SessionStatus,
) (*domain.Session, error) {
	var session domain.Session
	query := s.db.Rebind(`SELECT ` + sessionColumns + `
		FROM sessions WHERE user_id = ? AND status = ?
		ORDER BY created_at DESC, id LIMIT 1`)
	if err := s.db.GetContext(ctx, &session, query, userID, status); err != nil {
		return nil, wrap("session", "get", err, store.ErrSessionNotFound)
	}
	return &session, nil
}

// ListOverdue implements store.SessionStore.ListOverdue
func (s *SessionStore) ListOverdue(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.Session, error) {
	query, args, err := sqlx.In(`SELECT `+sessionColumns+`
		FROM sessions WHERE user_id = ? AND status IN (?) AND due_at < ?
		ORDER BY due_at, id`,
		userID, []domain.SessionStatus{domain.SessionActive, domain.SessionPending}, now.UTC())
	if err != nil {
		return nil, store.NewStoreError("session", "list_overdue", "failed to build query", err)
	}

	var out []*domain.Session
	if err := s.db.SelectContext(ctx, &out, s.db.Rebind(query), args...); err != nil {
		return nil, wrap("session", "list_overdue", err, nil)
	}
	return out, nil
}

// ExistsForSlot implements store.SessionStore.ExistsForSlot
func (s *SessionStore) ExistsForSlot(ctx context.Context, userID uuid.UUID, slotKey string) (bool, error) {
	var n int
	query := s.db.Rebind(`SELECT COUNT(*) FROM sessions WHERE user_id = ? AND slot_key = ?`)
	if err := s.db.GetContext(ctx, &n, query, userID, slotKey); err != nil {
		return false, wrap("session", "exists_for_slot", err, nil)
	}
	return n > 0, nil
}

// Activate implements store.SessionStore.Activate
func (s *SessionStore) Activate(ctx context.Context, id uuid.UUID, level int, startedAt time.Time) (bool, error) {
	query := s.db.Rebind(`UPDATE sessions SET status = ?, level = ?, started_at = ?
		WHERE id = ? AND status = ?`)
	result, err := s.db.ExecContext(ctx, query, domain.SessionActive, level, startedAt.UTC(), id, domain.SessionPending)
	if err != nil {
		if IsUniqueViolation(err) {
			return false, store.ErrActiveSessionExists
		}
		return false, wrap("session", "activate", err, nil)
	}
	return affected(result)
}

// Transition implements store.SessionStore.Transition
func (s *SessionStore) Transition(
	ctx context.Context,
	id uuid.UUID,
	from []domain.SessionStatus,
	to domain.SessionStatus,
	endedAt time.Time,
) (bool, error) {
	query, args, err := sqlx.In(`UPDATE sessions SET status = ?, ended_at = ?
		WHERE id = ? AND status IN (?)`, to, endedAt.UTC(), id, from)
	if err != nil {
		return false, store.NewStoreError("session", "transition", "failed to build query", err)
	}
	result, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return false, wrap("session", "transition", err, nil)
	}
	return affected(result)
}

// CountCompletedBetween implements store.SessionStore.CountCompletedBetween
func (s *SessionStore) CountCompletedBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, error) {
	var n int
	query := s.db.Rebind(`SELECT COUNT(*) FROM sessions
		WHERE user_id = ? AND status = ? AND ended_at >= ? AND ended_at < ?`)
	if err := s.db.GetContext(ctx, &n, query, userID, domain.SessionCompleted, from.UTC(), to.UTC()); err != nil {
		return 0, wrap("session", "count_completed", err, nil)
	}
	return n, nil
}

// CountStartedBetween implements store.SessionStore.CountStartedBetween
func (s *SessionStore) CountStartedBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, error) {
	var n int
	query := s.db.Rebind(`SELECT COUNT(*) FROM sessions s
		WHERE s.user_id = ? AND s.started_at >= ? AND s.started_at < ?
		AND (s.status IN (?, ?)
			OR (s.status = ? AND EXISTS (SELECT 1 FROM attempts a WHERE a.session_id = s.id)))`)
	if err := s.db.GetContext(ctx, &n, query, userID, from.UTC(), to.UTC(),
		domain.SessionActive, domain.SessionCompleted, domain.SessionExpired); err != nil {
		return 0, wrap("session", "count_started", err, nil)
	}
	return n, nil
}

// SessionStateStore implements store.SessionStateStore.
type SessionStateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSessionStateStore creates a session state store bound to db.
func NewSessionStateStore(db store.DBTX, logger *slog.Logger) *SessionStateStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStateStore{
		db:     db,
		logger: logger.With(slog.String("component", "session_state_store")),
	}
}

var _ store.SessionStateStore = (*SessionStateStore)(nil)

// Get implements store.SessionStateStore.Get
func (s *SessionStateStore) Get(ctx context.Context, sessionID uuid.UUID) (*domain.SessionState, error) {
	var state domain.SessionState
	query := s.db.Rebind(`SELECT session_id, user_id, level, deck, item_index, correct_count,
		streak, retries_used, reward_stage, mode, awaiting_care, care_json, last_care_index, updated_at
		FROM session_state WHERE session_id = ?`)
	if err := s.db.GetContext(ctx, &state, query, sessionID); err != nil {
		return nil, wrap("session_state", "get", err, store.ErrSessionStateNotFound)
	}
	return &state, nil
}

// Save implements store.SessionStateStore.Save
func (s *SessionStateStore) Save(ctx context.Context, state *domain.SessionState) error {
	_, err := sqlx.NamedExecContext(ctx, s.db, `
		INSERT INTO session_state (session_id, user_id, level, deck, item_index, correct_count,
			streak, retries_used, reward_stage, mode, awaiting_care, care_json, last_care_index, updated_at)
		VALUES (:session_id, :user_id, :level, :deck, :item_index, :correct_count,
			:streak, :retries_used, :reward_stage, :mode, :awaiting_care, :care_json, :last_care_index, :updated_at)
		ON CONFLICT (session_id) DO UPDATE SET
			deck = excluded.deck,
			item_index = excluded.item_index,
			correct_count = excluded.correct_count,
			streak = excluded.streak,
			retries_used = excluded.retries_used,
			reward_stage = excluded.reward_stage,
			mode = excluded.mode,
			awaiting_care = excluded.awaiting_care,
			care_json = excluded.care_json,
			last_care_index = excluded.last_care_index,
			updated_at = excluded.updated_at`, stateRow(state))
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to save session state",
			slog.String("session_id", state.SessionID.String()),
			slog.String("error", err.Error()))
		return wrap("session_state", "save", err, nil)
	}
	return nil
}

// Delete implements store.SessionStateStore.Delete
func (s *SessionStateStore) Delete(ctx context.Context, sessionID uuid.UUID) error {
	query := s.db.Rebind(`DELETE FROM session_state WHERE session_id = ?`)
	if _, err := s.db.ExecContext(ctx, query, sessionID); err != nil {
		return wrap("session_state", "delete", err, nil)
	}
	return nil
}

// stateRow normalizes timestamps before binding.
func stateRow(state *domain.SessionState) *domain.SessionState {
	row := *state
	row.UpdatedAt = state.UpdatedAt.UTC()
	return &row
}
