package models

import (
	"context"
	"testing"

	"github.com/projecteru2/labflow/pkg/store/memory"
	"github.com/projecteru2/labflow/pkg/terrors"
	"github.com/projecteru2/labflow/pkg/test/assert"
)

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(memory.New(), "/labflow/v1")

	conn := NewConnection("20211688_web_ssh", 20211688, "web", "ssh", []string{"S1", "S2"})
	assert.Equal(t, 2, conn.Hops)
	assert.NilErr(t, reg.Create(ctx, conn))

	dup := NewConnection("20211688_web_ssh", 20211688, "web", "ssh", nil)
	assert.True(t, terrors.IsConnectionExistsErr(reg.Create(ctx, dup)))

	assert.NilErr(t, reg.Create(ctx, NewConnection("1_db_psql", 1, "db", "psql", []string{"S1"})))

	got, err := reg.Get(ctx, "20211688_web_ssh")
	assert.NilErr(t, err)
	assert.Equal(t, []string{"S1", "S2"}, got.Switches)

	conns, err := reg.List(ctx)
	assert.NilErr(t, err)
	assert.Equal(t, 2, len(conns))
	assert.Equal(t, "1_db_psql", conns[0].Handler)

	assert.NilErr(t, reg.Remove(ctx, got))
	ok, err := reg.Exists(ctx, "20211688_web_ssh")
	assert.NilErr(t, err)
	assert.False(t, ok)

	_, err = reg.Get(ctx, "20211688_web_ssh")
	assert.True(t, terrors.IsConnectionNotExistsErr(err))

	// the handler is free again
	assert.NilErr(t, reg.Create(ctx, conn))
}

func TestRegistryLock(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(memory.New(), "/p")

	unlock, err := reg.Lock(ctx, "h")
	assert.NilErr(t, err)
	assert.NilErr(t, unlock(ctx))
}
