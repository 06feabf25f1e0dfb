package items

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/petdeck/internal/domain"
	"github.com/phrazzld/petdeck/internal/domain/srs"
	"github.com/phrazzld/petdeck/internal/platform/logger"
	"github.com/phrazzld/petdeck/internal/service"
	"github.com/phrazzld/petdeck/internal/store"
)

type serviceImpl struct {
	policy srs.Service
	logger *slog.Logger
}

// NewService creates the item service. It panics if policy is nil.
func NewService(policy srs.Service, logger *slog.Logger) Service {
	if policy == nil {
		panic("policy cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &serviceImpl{
		policy: policy,
		logger: logger.With(slog.String("component", "item_service")),
	}
}

var _ Service = (*serviceImpl)(nil)

// RecordAttempt implements Service.
func (s *serviceImpl) RecordAttempt(
	ctx context.Context,
	stores *store.Stores,
	userID uuid.UUID,
	level int,
	contentID domain.ContentID,
	correct, firstTry bool,
	now time.Time,
) (*domain.ItemProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	current, err := stores.Progress.Get(ctx, userID, level, contentID)
	if errors.Is(err, store.ErrProgressNotFound) {
		current, err = domain.NewItemProgress(userID, level, contentID, now)
	}
	if err != nil {
		return nil, service.Wrap("record_attempt", "failed to load item progress", err)
	}

	next, err := s.policy.RecordAttempt(current, correct, firstTry, now)
	if err != nil {
		return nil, service.Wrap("record_attempt", "failed to schedule item", err)
	}

	if err := stores.Progress.Upsert(ctx, next); err != nil {
		return nil, service.Wrap("record_attempt", "failed to save item progress", err)
	}

	log.Debug("item progress recorded",
		slog.String("user_id", userID.String()),
		slog.Int("level", level),
		slog.String("content_id", string(contentID)),
		slog.Bool("correct", correct),
		slog.Int("review_stage", next.ReviewStage))

	return next, nil
}

// DueItems implements Service.
func (s *serviceImpl) DueItems(
	ctx context.Context,
	stores *store.Stores,
	userID uuid.UUID,
	level int,
	now time.Time,
	limit int,
) ([]*domain.ItemProgress, error) {
	rows, err := stores.Progress.ListDue(ctx, userID, level, now, 0)
	if err != nil {
		return nil, service.Wrap("due_items", "failed to list due items", err)
	}
	return s.policy.SortDue(rows, now, limit), nil
}

// NewItems implements Service.
func (s *serviceImpl) NewItems(
	ctx context.Context,
	stores *store.Stores,
	userID uuid.UUID,
	level int,
	catalog Catalog,
	limit int,
) ([]domain.ContentItem, error) {
	seenIDs, err := stores.Progress.ListSeen(ctx, userID, level)
	if err != nil {
		return nil, service.Wrap("new_items", "failed to list seen items", err)
	}
	seen := make(map[domain.ContentID]struct{}, len(seenIDs))
	for _, id := range seenIDs {
		seen[id] = struct{}{}
	}

	var out []domain.ContentItem
	for _, item := range catalog.Items(level) {
		if limit > 0 && len(out) >= limit {
			break
		}
		if _, ok := seen[item.ID]; ok {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

// BuildDeck implements Service.
func (s *serviceImpl) BuildDeck(
	ctx context.Context,
	stores *store.Stores,
	userID uuid.UUID,
	level int,
	catalog Catalog,
	now time.Time,
	capacity int,
) (domain.Deck, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: deck capacity must be positive", domain.ErrValidation)
	}

	known := make(map[domain.ContentID]struct{})
	for _, item := range catalog.Items(level) {
		known[item.ID] = struct{}{}
	}

	due, err := s.DueItems(ctx, stores, userID, level, now, 0)
	if err != nil {
		return nil, err
	}

	deck := make(domain.Deck, 0, capacity)
	for _, p := range due {
		if len(deck) >= capacity {
			return deck, nil
		}
		// Progress can outlive a catalog edit.
		if _, ok := known[p.ContentID]; !ok {
			continue
		}
		deck = append(deck, p.ContentID)
	}
	if len(deck) >= capacity {
		return deck, nil
	}

	fresh, err := s.NewItems(ctx, stores, userID, level, catalog, capacity-len(deck))
	if err != nil {
		return nil, err
	}
	for _, item := range fresh {
		deck = append(deck, item.ID)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("deck built",
		slog.String("user_id", userID.String()),
		slog.Int("level", level),
		slog.Int("due", len(deck)-len(fresh)),
		slog.Int("new", len(fresh)))

	return deck, nil
}
