// Package ctxsync contains synchronization primitives that can be abandoned
// when a context is done.
package ctxsync

import "context"

// Mutex is a mutual exclusion lock whose Lock gives up when its context is
// done. The zero value is not usable; use [NewMutex].
type Mutex struct {
	held chan struct{}
}

// NewMutex returns an unlocked [Mutex].
func NewMutex() *Mutex {
	return &Mutex{held: make(chan struct{}, 1)}
}

// Lock waits until m is unlocked or ctx is done. It returns the context error
// in the latter case, and m is left untouched.
func (m *Mutex) Lock(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case m.held <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryLock locks m if it is unlocked and reports whether it did.
func (m *Mutex) TryLock() bool {
	select {
	case m.held <- struct{}{}:
		return true
	default:
		return false
	}
}

// Unlock unlocks m. It panics if m is not locked.
func (m *Mutex) Unlock() {
	select {
	case <-m.held:
	default:
		panic("ctxsync: unlock of unlocked mutex")
	}
}
