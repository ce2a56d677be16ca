package utils

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollbacklList(t *testing.T) {
	ctx := NewRollbackListContext(context.Background())
	rl := GetRollbackListFromContext(ctx)
	rl.Append(func(context.Context) error { return nil }, "1")
	rl.Append(func(context.Context) error { return nil }, "2")
	rl2 := GetRollbackListFromContext(ctx)
	fn, msg := rl2.Pop()
	assert.Equal(t, msg, "2")
	assert.Nil(t, fn(ctx))
	fn, msg = rl2.Pop()
	assert.Equal(t, msg, "1")
	assert.Nil(t, fn(ctx))

	fn, msg = rl2.Pop()
	assert.Nil(t, fn)
	assert.Empty(t, msg)
}

func TestRollbackListMissing(t *testing.T) {
	assert.Nil(t, GetRollbackListFromContext(context.Background()))
}

func TestRollbackListRun(t *testing.T) {
	ctx := NewRollbackListContext(context.Background())
	rl := GetRollbackListFromContext(ctx)

	var order []string
	rl.Append(func(context.Context) error { order = append(order, "a"); return nil }, "a")
	rl.Append(func(context.Context) error { order = append(order, "b"); return errors.New("boom") }, "b")
	rl.Append(func(context.Context) error { order = append(order, "c"); return nil }, "c")

	err := rl.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rollback b")
	assert.Equal(t, []string{"c", "b", "a"}, order)
	assert.Equal(t, 0, rl.Len())
}
