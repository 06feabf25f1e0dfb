package domain

import "errors"

// Common domain errors used across the application. Callers match them with
// errors.Is; services wrap them with operation context.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrConflict is returned when a user already has an active session.
	ErrConflict = errors.New("an active session already exists")

	// ErrInvalidState is returned when an operation is not valid in the
	// current session status or mode.
	ErrInvalidState = errors.New("operation not valid in current session state")

	// ErrBlocked is returned when the user's pet is dead and the action is refused
	// until a revival token is redeemed.
	ErrBlocked = errors.New("pet is dead, action blocked")

	// ErrNotAwaitingCare is returned when a care action arrives outside a care interlude.
	ErrNotAwaitingCare = errors.New("session is not awaiting care")

	// ErrAlreadyAlive is returned when a revival token is requested for a living pet.
	ErrAlreadyAlive = errors.New("pet is already alive")

	// ErrInvalidToken is returned when a revival token is unknown, used or expired.
	ErrInvalidToken = errors.New("revival token is invalid")

	// ErrTransientIO is returned when the persistence gateway or the similarity
	// oracle is unavailable. A caller-level retry is always safe.
	ErrTransientIO = errors.New("transient I/O failure")

	// ErrNothingDue is returned when a deck would be empty: no due items and no
	// new items left at the requested level.
	ErrNothingDue = errors.New("no items available for a session")

	// ErrDailyLimit is returned when the user already started the maximum
	// number of sessions for their local day.
	ErrDailyLimit = errors.New("daily session limit reached")

	// ErrUnknownLevel is returned when a level has no content or is not yet unlocked.
	ErrUnknownLevel = errors.New("level is not available")

	// ErrInvalidCareKind is returned when a care action is not one of the known kinds.
	ErrInvalidCareKind = errors.New("invalid care kind")
)
