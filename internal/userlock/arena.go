// Package userlock serializes mutating work per user. Locks for different
// users never contend, and idle entries are released so the arena does not
// grow with the number of users ever seen.
package userlock

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type entry struct {
	sem  chan struct{}
	refs int
}

// Arena is a set of per-user mutexes keyed by user ID.
type Arena struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*entry
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{entries: make(map[uuid.UUID]*entry)}
}

// Lock blocks until the user's lock is held or ctx is done. The returned
// function releases the lock and must be called exactly once.
func (a *Arena) Lock(ctx context.Context, userID uuid.UUID) (func(), error) {
	e := a.acquire(userID)

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		a.release(userID, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			a.release(userID, e)
		})
	}, nil
}

// Len returns the number of users with a held or awaited lock.
func (a *Arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}

func (a *Arena) acquire(userID uuid.UUID) *entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := a.entries[userID]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		a.entries[userID] = e
	}
	e.refs++
	return e
}

func (a *Arena) release(userID uuid.UUID, e *entry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(a.entries, userID)
	}
}
