package utils

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
)

// RollbackFunc undoes one step which has already been applied.
type RollbackFunc func(context.Context) error

type rollbackListEntry struct {
	fn  RollbackFunc
	msg string
}

// RollbackList is a stack of undo steps, appended to as a multi-step operation proceeds.
type RollbackList struct {
	mu   sync.Mutex
	List []rollbackListEntry
}

type ctxType string

const (
	rbKey ctxType = "rollbackList"
)

// NewRollbackListContext .
func NewRollbackListContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, rbKey, &RollbackList{})
}

// GetRollbackListFromContext returns nil when ctx carries no list.
func GetRollbackListFromContext(ctx context.Context) *RollbackList {
	v := ctx.Value(rbKey)
	if v != nil {
		return v.(*RollbackList)
	}
	return nil
}

// Append .
func (rl *RollbackList) Append(fn RollbackFunc, msg string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.List = append(rl.List, rollbackListEntry{
		fn:  fn,
		msg: msg,
	})
}

// Pop .
func (rl *RollbackList) Pop() (fn RollbackFunc, msg string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	n := len(rl.List)
	if n > 0 {
		entry := rl.List[n-1]
		fn, msg = entry.fn, entry.msg
		rl.List = rl.List[:n-1]
	}
	return
}

// Len .
func (rl *RollbackList) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.List)
}

// Run pops and runs every step, last appended first, and keeps going on failures.
func (rl *RollbackList) Run(ctx context.Context) (err error) {
	for {
		fn, msg := rl.Pop()
		if fn == nil {
			return
		}
		if e := fn(ctx); e != nil {
			err = errors.CombineErrors(err, errors.Wrapf(e, "rollback %s", msg))
		}
	}
}
