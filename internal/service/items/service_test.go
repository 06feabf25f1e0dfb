package items_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/petdeck/internal/domain"
	"github.com/phrazzld/petdeck/internal/domain/srs"
	"github.com/phrazzld/petdeck/internal/platform/content"
	"github.com/phrazzld/petdeck/internal/platform/logger"
	"github.com/phrazzld/petdeck/internal/service/items"
	"github.com/phrazzld/petdeck/internal/store"
	"github.com/phrazzld/petdeck/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

func setup(t *testing.T) (items.Service, *store.Stores, *content.Catalog, uuid.UUID) {
	t.Helper()
	stores := testdb.Gateway(t).Stores()

	user, err := domain.NewUser(uuid.New(), t0)
	require.NoError(t, err)
	require.NoError(t, stores.Users.Create(context.Background(), user))

	var catalogItems []domain.ContentItem
	for _, id := range []string{"1", "2", "3", "4"} {
		catalogItems = append(catalogItems, domain.ContentItem{
			Level:  1,
			ID:     domain.ContentID(id),
			Prompt: "prompt " + id,
			Answer: "answer " + id,
		})
	}
	catalog, err := content.New(catalogItems)
	require.NoError(t, err)

	return items.NewService(srs.NewDefaultService(), logger.NewDiscard()), stores, catalog, user.ID
}

func TestNewServicePanicsWithoutPolicy(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { items.NewService(nil, nil) })
}

func TestRecordAttempt(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, stores, _, userID := setup(t)

	_, err := stores.Progress.Get(ctx, userID, 1, "1")
	require.ErrorIs(t, err, store.ErrProgressNotFound)

	first, err := svc.RecordAttempt(ctx, stores, userID, 1, "1", true, true, t0)
	require.NoError(t, err)
	assert.Equal(t, 1, first.LearnCorrectCount)
	assert.Equal(t, 0, first.ReviewStage)

	second, err := svc.RecordAttempt(ctx, stores, userID, 1, "1", true, true, t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, second.ReviewStage, "two first-try answers graduate the item")
	require.NotNil(t, second.NextDueAt)
	assert.True(t, second.NextDueAt.Equal(t0.Add(time.Minute).Add(srs.Day)))

	stored, err := stores.Progress.Get(ctx, userID, 1, "1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ReviewStage)
	assert.True(t, stored.NextDueAt.Equal(*second.NextDueAt))
}

func TestNewItems(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, stores, catalog, userID := setup(t)

	_, err := svc.RecordAttempt(ctx, stores, userID, 1, "2", false, true, t0)
	require.NoError(t, err)

	fresh, err := svc.NewItems(ctx, stores, userID, 1, catalog, 0)
	require.NoError(t, err)
	ids := make([]domain.ContentID, 0, len(fresh))
	for _, it := range fresh {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []domain.ContentID{"1", "3", "4"}, ids)

	limited, err := svc.NewItems(ctx, stores, userID, 1, catalog, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	none, err := svc.NewItems(ctx, stores, userID, 9, catalog, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBuildDeck(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, stores, catalog, userID := setup(t)

	// "3" is due before "1"; "4" graduates and is not due for a day.
	_, err := svc.RecordAttempt(ctx, stores, userID, 1, "3", false, true, t0)
	require.NoError(t, err)
	_, err = svc.RecordAttempt(ctx, stores, userID, 1, "1", false, true, t0.Add(time.Minute))
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err = svc.RecordAttempt(ctx, stores, userID, 1, "4", true, true, t0)
		require.NoError(t, err)
	}
	// Progress for an item no longer in the catalog is skipped.
	_, err = svc.RecordAttempt(ctx, stores, userID, 1, "gone", false, true, t0)
	require.NoError(t, err)

	now := t0.Add(2 * time.Minute)

	testCases := []struct {
		name     string
		capacity int
		want     domain.Deck
	}{
		{name: "due then new", capacity: 10, want: domain.Deck{"3", "1", "2"}},
		{name: "capacity cuts new items", capacity: 2, want: domain.Deck{"3", "1"}},
		{name: "capacity cuts due items", capacity: 1, want: domain.Deck{"3"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			deck, err := svc.BuildDeck(ctx, stores, userID, 1, catalog, now, tc.capacity)
			require.NoError(t, err)
			assert.Equal(t, tc.want, deck)
		})
	}

	again, err := svc.BuildDeck(ctx, stores, userID, 1, catalog, now, 10)
	require.NoError(t, err)
	first, err := svc.BuildDeck(ctx, stores, userID, 1, catalog, now, 10)
	require.NoError(t, err)
	assert.Equal(t, first, again, "deck order is deterministic")

	_, err = svc.BuildDeck(ctx, stores, userID, 1, catalog, now, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDueItemsLimit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, stores, _, userID := setup(t)

	for i, id := range []domain.ContentID{"2", "1", "3"} {
		_, err := svc.RecordAttempt(ctx, stores, userID, 1, id, false, true, t0.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
	}

	due, err := svc.DueItems(ctx, stores, userID, 1, t0.Add(time.Minute), 2)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, domain.ContentID("2"), due[0].ContentID)
	assert.Equal(t, domain.ContentID("1"), due[1].ContentID)

	early, err := svc.DueItems(ctx, stores, userID, 1, t0.Add(-time.Minute), 0)
	require.NoError(t, err)
	assert.Empty(t, early)
}
