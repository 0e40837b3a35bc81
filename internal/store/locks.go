package store

import "sync"

// LockManager hands out one RWMutex per collection name, guaranteeing
// at-most-one in-flight mutation per collection. Readers share the lock;
// writers exclude everyone, so a read-modify-write cycle can never
// interleave with another mutation.
type LockManager struct {
	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

func NewLockManager() *LockManager {
	return &LockManager{locks: make(map[string]*sync.RWMutex)}
}

func (m *LockManager) get(name string) *sync.RWMutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[name]
	if !ok {
		l = &sync.RWMutex{}
		m.locks[name] = l
	}
	return l
}

// Lock acquires the write lock for a collection and returns its release.
func (m *LockManager) Lock(name string) func() {
	l := m.get(name)
	l.Lock()
	return l.Unlock
}

// RLock acquires the read lock for a collection and returns its release.
func (m *LockManager) RLock(name string) func() {
	l := m.get(name)
	l.RLock()
	return l.RUnlock
}
