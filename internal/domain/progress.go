package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ContentID identifies a content item within a level.
type ContentID string

// ContentItem is a prompt/answer pair supplied by the content catalog. The
// engine never stores content, only references to it.
type ContentItem struct {
	Level  int       `json:"level"`
	ID     ContentID `json:"id"`
	Prompt string    `json:"prompt"`
	Answer string    `json:"answer"`
	Hint   string    `json:"hint,omitempty"`
}

// Validation errors for ItemProgress
var (
	ErrEmptyContentID      = errors.New("content ID cannot be empty")
	ErrNegativeReviewStage = errors.New("review stage must be greater than or equal to 0")
	ErrNegativeLearnCount  = errors.New("learn correct count must be greater than or equal to 0")
)

// ItemProgress tracks one user's spaced-repetition state for one content item.
//
// ReviewStage 0 is the learning phase; stages 1 and above index the review
// interval table. A nil NextDueAt means the item has never been scheduled and
// is due.
type ItemProgress struct {
	UserID            uuid.UUID  `json:"user_id" db:"user_id"`
	Level             int        `json:"level" db:"level"`
	ContentID         ContentID  `json:"content_id" db:"content_id"`
	LearnCorrectCount int        `json:"learn_correct_count" db:"learn_correct_count"`
	ReviewStage       int        `json:"review_stage" db:"review_stage"`
	NextDueAt         *time.Time `json:"next_due_at" db:"next_due_at"`
	LastSeenAt        *time.Time `json:"last_seen_at" db:"last_seen_at"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// NewItemProgress creates progress for an item on first exposure.
func NewItemProgress(userID uuid.UUID, level int, contentID ContentID, now time.Time) (*ItemProgress, error) {
	p := &ItemProgress{
		UserID:    userID,
		Level:     level,
		ContentID: contentID,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Validate checks the progress invariants.
func (p *ItemProgress) Validate() error {
	if p.UserID == uuid.Nil {
		return ErrEmptyUserID
	}
	if p.Level < 1 {
		return ErrInvalidLevel
	}
	if p.ContentID == "" {
		return ErrEmptyContentID
	}
	if p.ReviewStage < 0 {
		return ErrNegativeReviewStage
	}
	if p.LearnCorrectCount < 0 {
		return ErrNegativeLearnCount
	}
	return nil
}

// IsDue reports whether the item should be presented at now.
func (p *ItemProgress) IsDue(now time.Time) bool {
	return p.NextDueAt == nil || !p.NextDueAt.After(now)
}

// InReview reports whether the item has graduated out of the learning phase.
func (p *ItemProgress) InReview() bool {
	return p.ReviewStage >= 1
}

// Clone returns a deep copy.
func (p *ItemProgress) Clone() *ItemProgress {
	c := *p
	if p.NextDueAt != nil {
		t := *p.NextDueAt
		c.NextDueAt = &t
	}
	if p.LastSeenAt != nil {
		t := *p.LastSeenAt
		c.LastSeenAt = &t
	}
	return &c
}
