package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/projecteru2/labflow/pkg/terrors"
	"github.com/projecteru2/labflow/pkg/test/assert"
)

type doc struct {
	Name string `json:"name"`
}

func newFile(t *testing.T) (*File, string) {
	var fpth = filepath.Join(t.TempDir(), "meta", "kv.json")
	f, err := New(fpth)
	assert.NilErr(t, err)
	return f, fpth
}

func TestCreateGet(t *testing.T) {
	var ctx = context.Background()
	var f, _ = newFile(t)

	var d doc
	_, err := f.Get(ctx, "/a", &d)
	assert.True(t, terrors.IsKeyNotExistsErr(err))

	assert.NilErr(t, f.Create(ctx, map[string]string{"/a": `{"name":"x"}`}))

	ver, err := f.Get(ctx, "/a", &d)
	assert.NilErr(t, err)
	assert.Equal(t, int64(1), ver)
	assert.Equal(t, "x", d.Name)

	err = f.Create(ctx, map[string]string{"/a": `{}`, "/b": `{}`})
	assert.True(t, terrors.IsKeyExistsErr(err))

	// the failed txn must not have written /b
	_, err = f.Get(ctx, "/b", &d)
	assert.True(t, terrors.IsKeyNotExistsErr(err))
}

func TestUpdateDeleteVersion(t *testing.T) {
	var ctx = context.Background()
	var f, _ = newFile(t)
	assert.NilErr(t, f.Create(ctx, map[string]string{"/a": `{"name":"x"}`}))

	err := f.Update(ctx, map[string]string{"/a": `{"name":"y"}`}, map[string]int64{"/a": 2})
	assert.True(t, errors.Is(err, terrors.ErrKeyBadVersion))
	assert.NilErr(t, f.Update(ctx, map[string]string{"/a": `{"name":"y"}`}, map[string]int64{"/a": 1}))

	var d doc
	ver, err := f.Get(ctx, "/a", &d)
	assert.NilErr(t, err)
	assert.Equal(t, int64(2), ver)
	assert.Equal(t, "y", d.Name)

	assert.Err(t, f.Delete(ctx, []string{"/a"}, map[string]int64{"/a": 1}))
	assert.NilErr(t, f.Delete(ctx, []string{"/a"}, map[string]int64{"/a": 2}))
	_, err = f.Get(ctx, "/a", &d)
	assert.True(t, terrors.IsKeyNotExistsErr(err))
}

func TestGetPrefix(t *testing.T) {
	var ctx = context.Background()
	var f, _ = newFile(t)
	assert.NilErr(t, f.Create(ctx, map[string]string{
		"/c/1": `{}`,
		"/c/2": `{}`,
		"/c/3": `{}`,
		"/d/1": `{}`,
	}))

	data, vers, err := f.GetPrefix(ctx, "/c/", 0)
	assert.NilErr(t, err)
	assert.Equal(t, 3, len(data))
	assert.Equal(t, int64(1), vers["/c/2"])

	data, _, err = f.GetPrefix(ctx, "/c/", 2)
	assert.NilErr(t, err)
	assert.Equal(t, 2, len(data))
	_, ok := data["/c/3"]
	assert.False(t, ok)
}

func TestSharedAcrossInstances(t *testing.T) {
	var ctx = context.Background()
	var first, fpth = newFile(t)
	assert.NilErr(t, first.Create(ctx, map[string]string{"/a": `{"name":"x"}`}))
	assert.NilErr(t, first.Close())

	second, err := New(fpth)
	assert.NilErr(t, err)

	var d doc
	ver, err := second.Get(ctx, "/a", &d)
	assert.NilErr(t, err)
	assert.Equal(t, int64(1), ver)
	assert.Equal(t, "x", d.Name)

	err = second.Create(ctx, map[string]string{"/a": `{}`})
	assert.True(t, terrors.IsKeyExistsErr(err))

	info, err := os.Stat(fpth)
	assert.NilErr(t, err)
	assert.Equal(t, perm, info.Mode().Perm())
}

func TestMutexAcrossInstances(t *testing.T) {
	var ctx = context.Background()
	var first, fpth = newFile(t)
	second, err := New(fpth)
	assert.NilErr(t, err)

	mu, err := first.NewMutex("/labflow/locks/connections/h")
	assert.NilErr(t, err)
	unlock, err := mu.Lock(ctx)
	assert.NilErr(t, err)

	other, err := second.NewMutex("/labflow/locks/connections/h")
	assert.NilErr(t, err)
	tctx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = other.Lock(tctx)
	assert.Err(t, err)

	// a different key is independent
	unrelated, err := second.NewMutex("/labflow/locks/connections/g")
	assert.NilErr(t, err)
	release, err := unrelated.Lock(ctx)
	assert.NilErr(t, err)
	assert.NilErr(t, release(ctx))

	assert.NilErr(t, unlock(ctx))
	again, err := other.Lock(ctx)
	assert.NilErr(t, err)
	assert.NilErr(t, again(ctx))
}
