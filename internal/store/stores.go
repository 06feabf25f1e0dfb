package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/petdeck/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user. Returns ErrDuplicate if the ID is taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID. Returns ErrUserNotFound if missing.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// UpdateLevel persists a newly unlocked level. Returns ErrUserNotFound if missing.
	UpdateLevel(ctx context.Context, id uuid.UUID, level int, now time.Time) error

	// ListIDs returns the IDs of every user, oldest first.
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

// SettingsStore persists per-user preferences.
type SettingsStore interface {
	// Get returns ErrSettingsNotFound if the user has no settings.
	Get(ctx context.Context, userID uuid.UUID) (*domain.UserSettings, error)

	// Upsert creates or replaces the settings row.
	Upsert(ctx context.Context, settings *domain.UserSettings) error
}

// ProgressStore persists per-item spaced-repetition state.
type ProgressStore interface {
	// Get returns ErrProgressNotFound if the item was never shown to the user.
	Get(ctx context.Context, userID uuid.UUID, level int, contentID domain.ContentID) (*domain.ItemProgress, error)

	// Upsert creates or replaces a progress row.
	Upsert(ctx context.Context, progress *domain.ItemProgress) error

	// ListDue returns rows with next_due_at <= now ordered by next_due_at then
	// content_id. A limit <= 0 means no limit.
	ListDue(ctx context.Context, userID uuid.UUID, level int, now time.Time, limit int) ([]*domain.ItemProgress, error)

	// ListSeen returns the content IDs that already have a progress row.
	ListSeen(ctx context.Context, userID uuid.UUID, level int) ([]domain.ContentID, error)
}

// SessionStore persists session lifecycle records.
type SessionStore interface {
	// Create saves a new session. Returns ErrActiveSessionExists when the
	// user already has an active session.
	Create(ctx context.Context, session *domain.Session) error

	// GetByID returns ErrSessionNotFound if missing.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)

	// GetActive returns the user's active session or ErrSessionNotFound.
	GetActive(ctx context.Context, userID uuid.UUID) (*domain.Session, error)

	// GetPending returns the user's most recent pending session or ErrSessionNotFound.
	GetPending(ctx context.Context, userID uuid.UUID) (*domain.Session, error)

	// ListOverdue returns the user's active or pending sessions with due_at < now.
	ListOverdue(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.Session, error)

	// ExistsForSlot reports whether any session was created for the slot.
	ExistsForSlot(ctx context.Context, userID uuid.UUID, slotKey string) (bool, error)

	// Activate moves a pending session to active at level. It reports false
	// when the session was no longer pending. Returns ErrActiveSessionExists
	// when the user already has an active session.
	Activate(ctx context.Context, id uuid.UUID, level int, startedAt time.Time) (bool, error)

	// Transition moves a session from one of the from statuses to to,
	// stamping ended_at. It reports false when the current status was not in from.
	Transition(ctx context.Context, id uuid.UUID, from []domain.SessionStatus, to domain.SessionStatus, endedAt time.Time) (bool, error)

	// CountCompletedBetween counts the user's sessions completed in [from, to).
	CountCompletedBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, error)

	// CountStartedBetween counts the user's sessions started in [from, to). A
	// session counts once it was active: pending sessions and sessions that
	// expired without a single attempt do not.
	CountStartedBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, error)
}

// SessionStateStore persists the live cursor of an open session.
type SessionStateStore interface {
	// Get returns ErrSessionStateNotFound if missing.
	Get(ctx context.Context, sessionID uuid.UUID) (*domain.SessionState, error)

	// Save creates or replaces the state row.
	Save(ctx context.Context, state *domain.SessionState) error

	// Delete removes the state row. Missing rows are not an error.
	Delete(ctx context.Context, sessionID uuid.UUID) error
}

// AttemptStore is the append-only attempt log.
type AttemptStore interface {
	Create(ctx context.Context, attempt *domain.Attempt) error

	// ListBySession returns attempts in submission order.
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.Attempt, error)
}

// PetStore persists pets.
type PetStore interface {
	// Create saves a new pet. Returns ErrDuplicate if the user already has one.
	Create(ctx context.Context, pet *domain.Pet) error

	// Get returns ErrPetNotFound if the user has no pet.
	Get(ctx context.Context, userID uuid.UUID) (*domain.Pet, error)

	// Update replaces every mutable column. Returns ErrPetNotFound if missing.
	Update(ctx context.Context, pet *domain.Pet) error
}

// RevivalStore persists hashed revival tokens.
type RevivalStore interface {
	Create(ctx context.Context, token *domain.RevivalToken) error

	// LatestUnused returns the newest unused token or ErrTokenNotFound.
	LatestUnused(ctx context.Context, userID uuid.UUID) (*domain.RevivalToken, error)

	// InvalidateUnused marks every unused token of the user as used.
	InvalidateUnused(ctx context.Context, userID uuid.UUID) error

	// MarkUsed marks one token as used. It reports false when it already was.
	MarkUsed(ctx context.Context, id uuid.UUID) (bool, error)
}

// StatsStore persists the derived statistics tables.
type StatsStore interface {
	// GetDaily returns a zero row for the day when none exists.
	GetDaily(ctx context.Context, userID uuid.UUID, day string) (*domain.DailyStats, error)
	UpsertDaily(ctx context.Context, stats *domain.DailyStats) error

	// GetLevel returns a zero row for the level when none exists.
	GetLevel(ctx context.Context, userID uuid.UUID, level int) (*domain.LevelProgress, error)
	UpsertLevel(ctx context.Context, progress *domain.LevelProgress) error
}

// ReminderStore records emitted reminders.
type ReminderStore interface {
	// Record inserts the reminder unless one exists for the same user and
	// slot. It reports whether a row was inserted.
	Record(ctx context.Context, reminder *domain.ReminderLog) (bool, error)
}

// Stores bundles every entity store bound to one connection or transaction.
type Stores struct {
	Users     UserStore
	Settings  SettingsStore
	Progress  ProgressStore
	Sessions  SessionStore
	States    SessionStateStore
	Attempts  AttemptStore
	Pets      PetStore
	Revivals  RevivalStore
	Stats     StatsStore
	Reminders ReminderStore
}

// Gateway is the persistence entry point used by services.
type Gateway interface {
	// Stores returns the bundle bound to the connection pool.
	Stores() *Stores

	// RunInTx runs fn with a bundle bound to a new transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx *Stores) error) error
}
