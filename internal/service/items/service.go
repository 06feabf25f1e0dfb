// Package items binds the spaced-repetition policy to storage: it records
// graded answers against per-item progress and builds session decks from due
// and unseen items.
package items

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/petdeck/internal/domain"
	"github.com/phrazzld/petdeck/internal/store"
)

// Catalog is the part of the content catalog the deck builder needs.
type Catalog interface {
	// Items returns the level's items in catalog order.
	Items(level int) []domain.ContentItem
}

// Service records item progress and assembles decks.
//
// Every method takes the store bundle to work on, so callers decide whether
// the work runs against the pool or inside their transaction.
type Service interface {
	// RecordAttempt loads the progress row of the item, creating it on first
	// exposure, applies the scheduling policy and saves the result.
	RecordAttempt(
		ctx context.Context,
		stores *store.Stores,
		userID uuid.UUID,
		level int,
		contentID domain.ContentID,
		correct, firstTry bool,
		now time.Time,
	) (*domain.ItemProgress, error)

	// DueItems returns the items due at now ordered by due time then content
	// ID. A limit <= 0 means no limit.
	DueItems(
		ctx context.Context,
		stores *store.Stores,
		userID uuid.UUID,
		level int,
		now time.Time,
		limit int,
	) ([]*domain.ItemProgress, error)

	// NewItems returns catalog items the user has never seen, in catalog
	// order. A limit <= 0 means no limit.
	NewItems(
		ctx context.Context,
		stores *store.Stores,
		userID uuid.UUID,
		level int,
		catalog Catalog,
		limit int,
	) ([]domain.ContentItem, error)

	// BuildDeck returns up to capacity item IDs: due items still present in
	// the catalog first, then unseen items. The order is deterministic for a
	// given user, level and time.
	BuildDeck(
		ctx context.Context,
		stores *store.Stores,
		userID uuid.UUID,
		level int,
		catalog Catalog,
		now time.Time,
		capacity int,
	) (domain.Deck, error)
}
