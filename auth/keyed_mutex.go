package auth

import "sync"

// keyedMutex provides mutual exclusion scoped to a string key. The refresh
// protocol's lookup-rotate-delete-reinsert sequence must be atomic per
// refresh-token key, otherwise two concurrent calls could both rotate the
// same token. Locks are reference counted so idle keys hold no memory.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{
		locks: make(map[string]*keyLock),
	}
}

// Lock acquires the mutex for key and returns the matching unlock function
func (km *keyedMutex) Lock(key string) (unlock func()) {
	km.mu.Lock()
	lock, ok := km.locks[key]
	if !ok {
		lock = &keyLock{}
		km.locks[key] = lock
	}
	lock.refs++
	km.mu.Unlock()

	lock.mu.Lock()

	return func() {
		lock.mu.Unlock()

		km.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(km.locks, key)
		}
		km.mu.Unlock()
	}
}
