package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	now := time.Date(2026, 10, 16, 9, 30, 0, 0, time.FixedZone("EEST", 3*3600))
	payload := SessionPayload{
		SessionID: uuid.New(),
		Level:     2,
		SlotKey:   "2026-10-16T09:00",
		At:        now.UTC(),
	}

	event, err := NewEvent(SessionMissed, userID, payload, now)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, SessionMissed, event.Type)
	assert.Equal(t, userID, event.UserID)
	assert.Equal(t, time.UTC, event.CreatedAt.Location())
	assert.True(t, event.CreatedAt.Equal(now))

	var decoded SessionPayload
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, payload.SessionID, decoded.SessionID)
	assert.Equal(t, payload.SlotKey, decoded.SlotKey)
	assert.True(t, payload.At.Equal(decoded.At))
}

func TestNewEventRejectsUnencodablePayload(t *testing.T) {
	t.Parallel()
	_, err := NewEvent(ReminderDue, uuid.New(), make(chan int), time.Now())
	assert.Error(t, err)
}

func TestHandlerFunc(t *testing.T) {
	t.Parallel()
	want := errors.New("boom")
	var got *Event
	h := HandlerFunc(func(ctx context.Context, event *Event) error {
		got = event
		return want
	})

	event := &Event{ID: uuid.New(), Type: PetDied}
	assert.ErrorIs(t, h.HandleEvent(context.Background(), event), want)
	assert.Same(t, event, got)
}

func TestNopEmitter(t *testing.T) {
	t.Parallel()
	assert.NoError(t, NopEmitter{}.EmitEvent(context.Background(), &Event{}))
}
