package cart

import (
	"sync"

	"github.com/google/uuid"
)

// keyedMutex serializes operations per customer. Entries are reference
// counted and removed once the last holder releases, so the map does not grow
// with the customer population.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[uuid.UUID]*lockEntry)}
}

// Lock blocks until the per-key mutex is held.
func (k *keyedMutex) Lock(id uuid.UUID) {
	k.mu.Lock()
	entry, ok := k.locks[id]
	if !ok {
		entry = &lockEntry{}
		k.locks[id] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
}

// Unlock releases the per-key mutex.
func (k *keyedMutex) Unlock(id uuid.UUID) {
	k.mu.Lock()
	entry := k.locks[id]
	entry.refs--
	if entry.refs == 0 {
		delete(k.locks, id)
	}
	k.mu.Unlock()

	entry.mu.Unlock()
}
