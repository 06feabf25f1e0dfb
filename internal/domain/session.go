package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle status of a session.
type SessionStatus string

// Session statuses. Completed and expired are terminal.
const (
	SessionPending   SessionStatus = "pending"
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionExpired   SessionStatus = "expired"
)

// IsOpen reports whether the status is pending or active.
func (s SessionStatus) IsOpen() bool {
	return s == SessionPending || s == SessionActive
}

// SessionMode is the sub-state of an active session.
type SessionMode string

// Session modes. Blocked preempts the others while the pet is dead.
const (
	ModeNormal        SessionMode = "normal"
	ModeCareInterlude SessionMode = "care-interlude"
	ModeBlocked       SessionMode = "blocked"
)

// Session is one deck traversal attempt.
type Session struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	UserID    uuid.UUID     `json:"user_id" db:"user_id"`
	Level     int           `json:"level" db:"level"`
	SlotKey   string        `json:"slot_key,omitempty" db:"slot_key"`
	StartedAt time.Time     `json:"started_at" db:"started_at"`
	DueAt     time.Time     `json:"due_at" db:"due_at"`
	Status    SessionStatus `json:"status" db:"status"`
	EndedAt   *time.Time    `json:"ended_at,omitempty" db:"ended_at"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}

// ErrDeadlineBeforeStart is returned when a session's deadline precedes its start.
var ErrDeadlineBeforeStart = errors.New("session deadline cannot precede its start")

// NewSession creates a session with the given status.
func NewSession(
	userID uuid.UUID,
	level int,
	slotKey string,
	status SessionStatus,
	startedAt, dueAt time.Time,
) (*Session, error) {
	s := &Session{
		ID:        uuid.New(),
		UserID:    userID,
		Level:     level,
		SlotKey:   slotKey,
		StartedAt: startedAt.UTC(),
		DueAt:     dueAt.UTC(),
		Status:    status,
		CreatedAt: startedAt.UTC(),
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// Validate checks the session fields.
func (s *Session) Validate() error {
	if s.UserID == uuid.Nil {
		return ErrEmptyUserID
	}
	if s.Level < 1 {
		return ErrInvalidLevel
	}
	if s.DueAt.Before(s.StartedAt) {
		return ErrDeadlineBeforeStart
	}
	switch s.Status {
	case SessionPending, SessionActive, SessionCompleted, SessionExpired:
	default:
		return fmt.Errorf("%w: unknown session status %q", ErrValidation, s.Status)
	}
	return nil
}

// Overdue reports whether the deadline has passed without the session ending.
func (s *Session) Overdue(now time.Time) bool {
	return s.Status.IsOpen() && now.After(s.DueAt)
}

// Deck is the ordered list of items a session traverses. It is stored as JSON.
type Deck []ContentID

// Value implements driver.Valuer.
func (d Deck) Value() (driver.Value, error) {
	if d == nil {
		d = Deck{}
	}
	b, err := json.Marshal([]ContentID(d))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (d *Deck) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*d = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into Deck", src)
	}
	var ids []ContentID
	if err := json.Unmarshal(raw, &ids); err != nil {
		return fmt.Errorf("decode deck: %w", err)
	}
	*d = ids
	return nil
}

// SessionState is the live cursor over an active session's deck. It exists
// only while the session is pending or active.
type SessionState struct {
	SessionID     uuid.UUID    `json:"session_id" db:"session_id"`
	UserID        uuid.UUID    `json:"user_id" db:"user_id"`
	Level         int          `json:"level" db:"level"`
	Deck          Deck         `json:"deck" db:"deck"`
	ItemIndex     int          `json:"item_index" db:"item_index"`
	CorrectCount  int          `json:"correct_count" db:"correct_count"`
	Streak        int          `json:"streak" db:"streak"`
	RetriesUsed   int          `json:"retries_used" db:"retries_used"`
	RewardStage   int          `json:"reward_stage" db:"reward_stage"`
	Mode          SessionMode  `json:"mode" db:"mode"`
	AwaitingCare  bool         `json:"awaiting_care" db:"awaiting_care"`
	Care          *CareRequest `json:"care,omitempty" db:"care_json"`
	LastCareIndex int          `json:"last_care_index" db:"last_care_index"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`
}

// NewSessionState creates the cursor at the start of deck in normal mode.
func NewSessionState(session *Session, deck Deck, now time.Time) *SessionState {
	return &SessionState{
		SessionID:     session.ID,
		UserID:        session.UserID,
		Level:         session.Level,
		Deck:          deck,
		Mode:          ModeNormal,
		LastCareIndex: -1,
		UpdatedAt:     now.UTC(),
	}
}

// Current returns the item under the cursor.
func (s *SessionState) Current() (ContentID, bool) {
	if s.ItemIndex < 0 || s.ItemIndex >= len(s.Deck) {
		return "", false
	}
	return s.Deck[s.ItemIndex], true
}

// Exhausted reports whether every deck item has been passed.
func (s *SessionState) Exhausted() bool {
	return s.ItemIndex >= len(s.Deck)
}

// Perfect reports whether every deck item was eventually answered correctly.
func (s *SessionState) Perfect() bool {
	return len(s.Deck) > 0 && s.CorrectCount >= len(s.Deck)
}

// EnterCare switches the state into a care interlude.
func (s *SessionState) EnterCare(req CareRequest, now time.Time) {
	s.Mode = ModeCareInterlude
	s.AwaitingCare = true
	s.Care = &req
	s.LastCareIndex = s.ItemIndex
	s.UpdatedAt = now.UTC()
}

// LeaveCare returns the state to normal traversal.
func (s *SessionState) LeaveCare(now time.Time) {
	s.Mode = ModeNormal
	s.AwaitingCare = false
	s.Care = nil
	s.UpdatedAt = now.UTC()
}

// Attempt is an immutable record of one graded answer.
type Attempt struct {
	ID         uuid.UUID `json:"id" db:"id"`
	SessionID  uuid.UUID `json:"session_id" db:"session_id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	Level      int       `json:"level" db:"level"`
	ContentID  ContentID `json:"content_id" db:"content_id"`
	Submitted  string    `json:"submitted" db:"submitted"`
	Expected   string    `json:"expected" db:"expected"`
	Score      int       `json:"score" db:"score"`
	IsFirstTry bool      `json:"is_first_try" db:"is_first_try"`
	IsCorrect  bool      `json:"is_correct" db:"is_correct"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
