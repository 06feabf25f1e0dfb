package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	// SessionCompleted is emitted when a session completes. Payload: SessionPayload.
	SessionCompleted = "session.completed"

	// SessionMissed is emitted when a session expires. Payload: SessionPayload.
	SessionMissed = "session.missed"

	// SessionReward is emitted when a session reaches a reward milestone.
	// Payload: RewardPayload.
	SessionReward = "session.reward"

	// PetDied is emitted when a pet dies after the mercy window. Payload: PetPayload.
	PetDied = "pet.died"

	// ReminderDue is emitted when a session reminder fires. Payload: ReminderPayload.
	ReminderDue = "reminder.due"
)

// Event represents something that happened to one user.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the event type constants
	Type string `json:"type"`

	// UserID is the user the event concerns
	UserID uuid.UUID `json:"user_id"`

	// Payload contains the type-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// SessionPayload describes a session that reached a terminal status.
type SessionPayload struct {
	SessionID uuid.UUID `json:"session_id"`
	Level     int       `json:"level"`
	SlotKey   string    `json:"slot_key,omitempty"`
	At        time.Time `json:"at"`
	Correct   int       `json:"correct,omitempty"`
	DeckSize  int       `json:"deck_size,omitempty"`
}

// RewardPayload describes a reached reward milestone.
type RewardPayload struct {
	SessionID uuid.UUID `json:"session_id"`
	Stage     int       `json:"stage"`
	Streak    int       `json:"streak"`
}

// PetPayload describes a pet state change.
type PetPayload struct {
	At              time.Time `json:"at"`
	ResurrectStreak int       `json:"resurrect_streak"`
}

// ReminderPayload describes a reminder for a scheduled slot.
type ReminderPayload struct {
	SessionID  uuid.UUID `json:"session_id"`
	SlotKey    string    `json:"slot_key"`
	StartsAt   time.Time `json:"starts_at"`
	DeadlineAt time.Time `json:"deadline_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates an event with the specified type, user and payload.
func NewEvent(eventType string, userID uuid.UUID, payload any, now time.Time) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		UserID:    userID,
		Payload:   payloadBytes,
		CreatedAt: now.UTC(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Handlers ignore event types they do not understand.
	HandleEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a function to the EventHandler interface.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *Event) error
}

// NopEmitter discards every event.
type NopEmitter struct{}

// EmitEvent implements EventEmitter.
func (NopEmitter) EmitEvent(context.Context, *Event) error { return nil }
