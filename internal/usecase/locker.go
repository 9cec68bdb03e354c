package usecase

import "sync"

// keyedLocker hands out one mutex per key and forgets it once nobody holds or waits for it.
type keyedLocker struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedLocker() *keyedLocker {
	return &keyedLocker{
		locks: make(map[string]*keyedLock),
	}
}

// Lock blocks until key is free and returns the function releasing it.
func (that *keyedLocker) Lock(key string) func() {
	that.mu.Lock()
	lock, ok := that.locks[key]
	if !ok {
		lock = &keyedLock{}
		that.locks[key] = lock
	}
	lock.refs++
	that.mu.Unlock()

	lock.mu.Lock()

	return func() {
		lock.mu.Unlock()

		that.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(that.locks, key)
		}
		that.mu.Unlock()
	}
}

func (that *keyedLocker) size() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.locks)
}
