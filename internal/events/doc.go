// Package events carries domain events between engine components.
//
// Services emit an Event after their transaction commits and after they have
// released the user's lock; handlers registered on the emitter react to it.
// The session machine announces completions, misses and reward milestones that
// the pet engine folds into the pet; the planner and the pet engine announce
// reminders and deaths that the notification pool hands to the notifier.
//
// The primary components are:
// - Event: a typed, user-scoped domain event with a JSON payload
// - EventHandler: interface for components that can handle events
// - EventEmitter: interface for components that can emit events
package events
