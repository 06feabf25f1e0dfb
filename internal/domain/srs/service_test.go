package srs

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/petdeck/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultService(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()
	require.NotNil(t, service)
	assert.Equal(t, NewDefaultParams(), service.Params())
}

func TestNewServiceWithParams(t *testing.T) {
	t.Parallel()

	t.Run("nil params fall back to defaults", func(t *testing.T) {
		t.Parallel()
		service, err := NewServiceWithParams(nil)
		require.NoError(t, err)
		assert.Equal(t, NewDefaultParams(), service.Params())
	})

	t.Run("invalid params are rejected", func(t *testing.T) {
		t.Parallel()
		_, err := NewServiceWithParams(&Params{GraduationThreshold: 2, DemoteBy: 2})
		assert.ErrorIs(t, err, ErrNoIntervals)
	})
}

func TestRecordAttempt(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	t.Run("nil progress", func(t *testing.T) {
		t.Parallel()
		_, err := service.RecordAttempt(nil, true, true, now)
		assert.ErrorIs(t, err, ErrNilProgress)
	})

	t.Run("invalid progress", func(t *testing.T) {
		t.Parallel()
		_, err := service.RecordAttempt(&domain.ItemProgress{UserID: uuid.New(), Level: 1}, true, true, now)
		assert.ErrorIs(t, err, domain.ErrEmptyContentID)
	})

	t.Run("two first-try answers graduate", func(t *testing.T) {
		t.Parallel()
		p, err := domain.NewItemProgress(uuid.New(), 1, "x", now)
		require.NoError(t, err)

		p, err = service.RecordAttempt(p, true, true, now)
		require.NoError(t, err)
		p, err = service.RecordAttempt(p, true, true, now)
		require.NoError(t, err)

		assert.Equal(t, 1, p.ReviewStage)
		assert.Equal(t, now.Add(Day), *p.NextDueAt)
	})
}
