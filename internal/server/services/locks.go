package services

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// vaultLocks serializes writers per vault inside one process. Waiting honours
// ctx cancellation.
type vaultLocks struct {
	mu    sync.Mutex
	locks map[string]*vaultLock
}

type vaultLock struct {
	sem  *semaphore.Weighted
	refs int
}

func newVaultLocks() *vaultLocks {
	return &vaultLocks{locks: make(map[string]*vaultLock)}
}

// Lock blocks until the caller holds the lock for key and returns the
// function that releases it.
func (v *vaultLocks) Lock(ctx context.Context, key string) (func(), error) {
	v.mu.Lock()
	l, ok := v.locks[key]
	if !ok {
		l = &vaultLock{sem: semaphore.NewWeighted(1)}
		v.locks[key] = l
	}
	l.refs++
	v.mu.Unlock()

	if err := l.sem.Acquire(ctx, 1); err != nil {
		v.release(key, l)
		return nil, err
	}

	return func() {
		l.sem.Release(1)
		v.release(key, l)
	}, nil
}

func (v *vaultLocks) release(key string, l *vaultLock) {
	v.mu.Lock()
	defer v.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(v.locks, key)
	}
}

func (v *vaultLocks) size() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.locks)
}
