package utils

import (
	"sync"
)

// KeyMutex serializes mutations per string key. The engine uses one
// instance keyed by unitId and one keyed by emergencyId so that a
// unit's own position updates and command-driven assignment writes
// cannot interleave, while unrelated keys never contend.
type KeyMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func NewKeyMutex() *KeyMutex {
	return &KeyMutex{
		locks: make(map[string]*keyLock),
	}
}

// Lock acquires the exclusive critical section for key.
func (km *KeyMutex) Lock(key string) {
	km.mu.Lock()
	l, ok := km.locks[key]
	if !ok {
		l = &keyLock{}
		km.locks[key] = l
	}
	l.refs++
	km.mu.Unlock()

	l.mu.Lock()
}

// Unlock releases the critical section for key. Entries with no
// waiters are dropped so the map does not grow without bound.
func (km *KeyMutex) Unlock(key string) {
	km.mu.Lock()
	l, ok := km.locks[key]
	if !ok {
		km.mu.Unlock()
		panic("keymutex: unlock of unlocked key " + key)
	}
	l.refs--
	if l.refs == 0 {
		delete(km.locks, key)
	}
	km.mu.Unlock()

	l.mu.Unlock()
}
