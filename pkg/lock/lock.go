package lock

import (
	"context"
	"sync"
)

// Unlock releases a key taken by Locker.Lock. It is safe to call once.
type Unlock func()

// Locker serializes work per key. Distinct keys never block each other.
type Locker interface {
	Lock(ctx context.Context, key string) (Unlock, error)
}

type entry struct {
	sem  chan struct{}
	refs int
}

type local struct {
	mu    sync.Mutex
	locks map[string]*entry
}

// NewLocal returns an in-process keyed mutex.
func NewLocal() Locker {
	return &local{locks: make(map[string]*entry)}
}

func (l *local) Lock(ctx context.Context, key string) (Unlock, error) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			l.release(key, e)
		})
	}, nil
}

func (l *local) release(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}

// size is used by tests to check that idle keys are dropped.
func (l *local) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
