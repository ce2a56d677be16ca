package memory

import (
	"context"
	"testing"
	"time"

	"github.com/projecteru2/labflow/pkg/terrors"
	"github.com/projecteru2/labflow/pkg/test/assert"
)

type doc struct {
	Name string `json:"name"`
}

func TestCreateGet(t *testing.T) {
	var ctx = context.Background()
	var m = New()

	assert.NilErr(t, m.Create(ctx, map[string]string{"/a": `{"name":"x"}`}))

	var d doc
	ver, err := m.Get(ctx, "/a", &d)
	assert.NilErr(t, err)
	assert.Equal(t, int64(1), ver)
	assert.Equal(t, "x", d.Name)

	err = m.Create(ctx, map[string]string{"/a": `{}`, "/b": `{}`})
	assert.True(t, terrors.IsKeyExistsErr(err))

	// the failed txn must not have written /b
	_, err = m.Get(ctx, "/b", &d)
	assert.True(t, terrors.IsKeyNotExistsErr(err))
}

func TestUpdateDeleteVersion(t *testing.T) {
	var ctx = context.Background()
	var m = New()
	assert.NilErr(t, m.Create(ctx, map[string]string{"/a": `{"name":"x"}`}))

	err := m.Update(ctx, map[string]string{"/a": `{"name":"y"}`}, map[string]int64{"/a": 2})
	assert.Err(t, err)

	assert.NilErr(t, m.Update(ctx, map[string]string{"/a": `{"name":"y"}`}, map[string]int64{"/a": 1}))

	var d doc
	ver, err := m.Get(ctx, "/a", &d)
	assert.NilErr(t, err)
	assert.Equal(t, int64(2), ver)
	assert.Equal(t, "y", d.Name)

	assert.Err(t, m.Delete(ctx, []string{"/a"}, map[string]int64{"/a": 1}))
	assert.NilErr(t, m.Delete(ctx, []string{"/a"}, map[string]int64{"/a": 2}))
	_, err = m.Get(ctx, "/a", &d)
	assert.True(t, terrors.IsKeyNotExistsErr(err))
}

func TestGetPrefix(t *testing.T) {
	var ctx = context.Background()
	var m = New()
	assert.NilErr(t, m.Create(ctx, map[string]string{
		"/c/1": `{}`,
		"/c/2": `{}`,
		"/c/3": `{}`,
		"/d/1": `{}`,
	}))

	data, vers, err := m.GetPrefix(ctx, "/c/", 0)
	assert.NilErr(t, err)
	assert.Equal(t, 3, len(data))
	assert.Equal(t, int64(1), vers["/c/2"])

	data, _, err = m.GetPrefix(ctx, "/c/", 2)
	assert.NilErr(t, err)
	assert.Equal(t, 2, len(data))
	_, ok := data["/c/3"]
	assert.False(t, ok)
}

func TestMutex(t *testing.T) {
	var ctx = context.Background()
	var m = New()

	mu, err := m.NewMutex("/lock")
	assert.NilErr(t, err)
	unlock, err := mu.Lock(ctx)
	assert.NilErr(t, err)

	other, err := m.NewMutex("/lock")
	assert.NilErr(t, err)
	tctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = other.Lock(tctx)
	assert.Err(t, err)

	assert.NilErr(t, unlock(ctx))
}
