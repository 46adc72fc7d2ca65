package engine

import "sync"

// keyLock serializes operations per (item, user) key. The algorithm
// read-modify-write is not commutative, so concurrent reviews of the
// same item must be strictly ordered; reviews of different items run in
// parallel.
type keyLock struct {
	mu    sync.Mutex
	locks map[string]*keyLockEntry
}

type keyLockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyLock() *keyLock {
	return &keyLock{locks: make(map[string]*keyLockEntry)}
}

// lock acquires the mutex for key, creating it on first use.
func (k *keyLock) lock(key string) {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &keyLockEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
}

// unlock releases the mutex for key, dropping the entry once nobody
// waits on it.
func (k *keyLock) unlock(key string) {
	k.mu.Lock()
	entry := k.locks[key]
	entry.refs--
	if entry.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()

	entry.mu.Unlock()
}

// scheduleKey builds the serialization key for an (item, user) pair.
func scheduleKey(itemID, userID string) string {
	return itemID + "\x00" + userID
}
