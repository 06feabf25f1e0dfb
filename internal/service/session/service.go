// Package session implements the session state machine: opening a deck,
// grading answers, care interludes, completion and expiry.
//
// A session moves pending -> active -> completed or expired. While active it
// is in normal mode or in a care interlude; blocked mode preempts both while
// the user's pet is dead.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/petdeck/internal/domain"
	"github.com/phrazzld/petdeck/internal/domain/plan"
	"github.com/phrazzld/petdeck/internal/store"
)

// Catalog is the part of the content catalog sessions need.
type Catalog interface {
	Items(level int) []domain.ContentItem
	Item(level int, id domain.ContentID) (domain.ContentItem, bool)
	Has(level int) bool
}

// PetService is the part of the pet service sessions need. Every method runs
// inside the caller's transaction except ApplyDecay.
type PetService interface {
	ApplyDecay(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.Pet, error)
	Load(ctx context.Context, tx *store.Stores, userID uuid.UUID, now time.Time) (*domain.Pet, error)
	CareDue(ctx context.Context, tx *store.Stores, userID uuid.UUID, gate bool, now time.Time) (domain.CareRequest, bool, error)
	CareAction(ctx context.Context, tx *store.Stores, userID uuid.UUID, kind domain.CareKind, now time.Time) (*domain.Pet, error)
}

// Config holds the session policy.
type Config struct {
	// CorrectnessThreshold is the minimum oracle score, 0..100, of a correct answer.
	CorrectnessThreshold int

	// SessionCapacity is the maximum deck size.
	SessionCapacity int

	// MaxSessionsPerDay caps the sessions a user starts per local day. Zero
	// means no cap.
	MaxSessionsPerDay int

	// MaxRetries is how many times a wrong answer is re-asked before the
	// cursor is forced forward.
	MaxRetries int

	// RewardMilestones are the streak values that raise the reward stage.
	RewardMilestones []int

	// CareGates are item indices that force a care interlude.
	CareGates []int

	// Schedule supplies the deadline grace and the slots sessions are tied to.
	Schedule plan.Schedule

	// Location is the timezone of users without settings. Nil means UTC.
	Location *time.Location
}

// Prompt is the item under the cursor, without its answer.
type Prompt struct {
	ContentID domain.ContentID `json:"content_id"`
	Prompt    string           `json:"prompt"`
	Hint      string           `json:"hint,omitempty"`
	Position  int              `json:"position"`
	Total     int              `json:"total"`
}

// View is the read model of an open session.
type View struct {
	Session *domain.Session      `json:"session"`
	State   *domain.SessionState `json:"state,omitempty"`
	Prompt  *Prompt              `json:"prompt,omitempty"`
}

// Submission is one answer to the item under the cursor.
type Submission struct {
	Answer string

	// FirstTry is false when the client already had a go at this prompt,
	// e.g. a re-recorded voice answer. Only first tries count toward
	// graduation of a learning item.
	FirstTry bool
}

// AttemptResult is the outcome of one graded answer.
type AttemptResult struct {
	Attempt   *domain.Attempt      `json:"attempt"`
	Progress  *domain.ItemProgress `json:"progress"`
	State     *domain.SessionState `json:"state"`
	Completed bool                 `json:"completed"`
	Care      *domain.CareRequest  `json:"care,omitempty"`
	Prompt    *Prompt              `json:"prompt,omitempty"`
}

// CareResult is the outcome of a resolved care interlude.
type CareResult struct {
	Pet  *domain.Pet `json:"pet"`
	View *View       `json:"session"`
}

// Service runs sessions. Every mutating method takes the user's lock for the
// whole read, score and write cycle and emits events after releasing it.
type Service interface {
	// OpenSession starts a session at level. It promotes the user's pending
	// session when one exists.
	//
	// Returns domain.ErrBlocked when the pet is dead, domain.ErrConflict when
	// a session is already active, domain.ErrDailyLimit when the user already
	// started MaxSessionsPerDay sessions today, domain.ErrInvalidState wrapping
	// domain.ErrUnknownLevel for a level that is locked or has no content, and
	// domain.ErrNothingDue when the deck would be empty.
	OpenSession(ctx context.Context, userID uuid.UUID, level int) (*View, error)

	// SubmitAttempt grades submission against the item under the cursor. The
	// attempt counts as a first try only when the oracle confirms the
	// submission's flag and the item has not been retried in this session.
	//
	// Returns domain.ErrInvalidState unless the session is active in normal
	// mode, domain.ErrBlocked when the pet is dead and domain.ErrTransientIO
	// when the answer cannot be scored. Nothing is written on error.
	SubmitAttempt(ctx context.Context, userID, sessionID uuid.UUID, submission Submission) (*AttemptResult, error)

	// ResolveCare applies a care action and ends the care interlude.
	// Returns domain.ErrNotAwaitingCare outside an interlude.
	ResolveCare(ctx context.Context, userID, sessionID uuid.UUID, kind domain.CareKind) (*CareResult, error)

	// CompleteSession completes an active session whose deck is exhausted.
	CompleteSession(ctx context.Context, userID, sessionID uuid.UUID) (*domain.Session, error)

	// Expire expires the session if its deadline has passed.
	Expire(ctx context.Context, sessionID uuid.UUID) (bool, error)

	// ExpireAt expires the session if it is still open and overdue at now. It
	// reports whether the session was expired by this call.
	ExpireAt(ctx context.Context, sessionID uuid.UUID, now time.Time) (bool, error)

	// ActiveSession returns the user's active session.
	// Returns store.ErrSessionNotFound when there is none.
	ActiveSession(ctx context.Context, userID uuid.UUID) (*View, error)
}
