// Package service holds what the engine's use cases share: the ServiceError
// wrapper and the helpers that translate persistence failures.
//
// Each use case lives in its own subpackage:
//
//   - items: per-item spaced-repetition state and deck building
//   - pet: pet vitality, decay, care and revival
//   - session: the session state machine
//   - planner: the periodic tick that expires sessions, plans reminders and decays pets
//   - users: user registration and settings
//   - auth: bearer token validation
//
// Services receive their dependencies through constructor injection, take the
// user's lock before opening a transaction and emit events only after the
// transaction commits and the lock is released.
package service
