// Package task runs background work on a bounded in-memory queue drained by a
// pool of workers. The engine uses it to hand reminder and pet notifications
// to the external notifier without blocking the planner tick or a request.
package task
