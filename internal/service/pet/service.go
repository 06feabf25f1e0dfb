// Package pet runs the vitality rules against stored pets: calendar-day decay,
// care actions, revival tokens and the reactions to session events.
package pet

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/petdeck/internal/domain"
	"github.com/phrazzld/petdeck/internal/events"
	"github.com/phrazzld/petdeck/internal/store"
)

// Status is the read model of a pet.
type Status struct {
	Pet  *domain.Pet         `json:"pet"`
	Mood string              `json:"mood"`
	Care *domain.CareRequest `json:"care,omitempty"`
}

// ReviveToken is a freshly minted revival token. The plaintext is returned
// exactly once; only its hash is stored.
type ReviveToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Service manages pets.
//
// Methods taking a *store.Stores run inside the caller's transaction and
// assume the caller holds the user's lock. The others take the lock and open
// their own transaction.
type Service interface {
	events.EventHandler

	// ApplyDecay evaluates every full calendar day, in the user's timezone,
	// that ended since the pet was last checked. Calling it again with the same
	// now changes nothing.
	ApplyDecay(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.Pet, error)

	// Status brings decay up to date and returns the pet with its mood.
	Status(ctx context.Context, userID uuid.UUID) (*Status, error)

	// RequestReviveToken mints a revival token for a dead pet, invalidating
	// earlier unused tokens. Returns domain.ErrAlreadyAlive for a living pet.
	RequestReviveToken(ctx context.Context, userID uuid.UUID) (*ReviveToken, error)

	// Redeem revives a dead pet with token. Returns domain.ErrInvalidToken for
	// any token that is not the user's latest unused, unexpired one, including
	// every token presented for a living pet.
	Redeem(ctx context.Context, userID uuid.UUID, token string) (*domain.Pet, error)

	// Load returns the user's pet, creating it on first access.
	Load(ctx context.Context, tx *store.Stores, userID uuid.UUID, now time.Time) (*domain.Pet, error)

	// CareDue reports whether a care interlude should start. A gate forces a
	// request for the lowest vital even when nothing is below the low-water mark.
	CareDue(ctx context.Context, tx *store.Stores, userID uuid.UUID, gate bool, now time.Time) (domain.CareRequest, bool, error)

	// CareAction applies a care action. Returns domain.ErrBlocked for a dead pet.
	CareAction(ctx context.Context, tx *store.Stores, userID uuid.UUID, kind domain.CareKind, now time.Time) (*domain.Pet, error)

	// Mood returns the mood label of pet.
	Mood(pet *domain.Pet) string
}

// Config holds the pet service settings.
type Config struct {
	// TokenTTL is how long a revival token stays redeemable.
	TokenTTL time.Duration

	// Location is the timezone of users without settings. Nil means UTC.
	Location *time.Location

	// BcryptCost is the hashing cost of revival tokens. Zero selects bcrypt.DefaultCost.
	BcryptCost int
}
