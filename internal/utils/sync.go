package utils

import (
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/projecteru2/labflow/pkg/terrors"
)

// GroupCAS indicates cas locks which are grouped by keys.
type GroupCAS struct {
	sync.Mutex
	locks map[string]struct{}
}

// NewGroupCAS .
func NewGroupCAS() *GroupCAS {
	return &GroupCAS{
		locks: map[string]struct{}{},
	}
}

// Acquire tries to acquire a cas lock.
func (g *GroupCAS) Acquire(key string) (free func(), acquired bool) {
	g.Lock()
	defer g.Unlock()
	if _, ok := g.locks[key]; ok {
		return nil, false
	}

	g.locks[key] = struct{}{}
	free = func() {
		g.Lock()
		defer g.Unlock()
		delete(g.locks, key)
	}

	return free, true
}

// MustAcquire is Acquire failing with ErrOperationInProgress when the key is held.
func (g *GroupCAS) MustAcquire(key string) (func(), error) {
	free, ok := g.Acquire(key)
	if !ok {
		return nil, errors.Wrapf(terrors.ErrOperationInProgress, "%s", key)
	}
	return free, nil
}

// Held .
func (g *GroupCAS) Held(key string) bool {
	g.Lock()
	defer g.Unlock()
	_, ok := g.locks[key]
	return ok
}
