// Package lock provides per-group enrollment serialization. The local
// variant covers single-instance deployments; the redis variant covers
// multi-instance deployments where the race spans processes.
package lock

import (
	"context"
	"sync"
)

// Local serializes enrollment per group inside one process.
type Local struct {
	mu     sync.Mutex
	groups map[string]*sync.Mutex
}

// NewLocal constructs an in-process enrollment lock.
func NewLocal() *Local {
	return &Local{groups: make(map[string]*sync.Mutex)}
}

// Acquire blocks until the group's mutex is held. The ctx parameter is kept
// for interface symmetry; in-process waits are short enough not to warrant
// cancellation plumbing.
func (l *Local) Acquire(_ context.Context, group string) (func(), error) {
	l.mu.Lock()
	m, ok := l.groups[group]
	if !ok {
		m = &sync.Mutex{}
		l.groups[group] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}
