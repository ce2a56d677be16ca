package etcd

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/projecteru2/labflow/configs"
	"github.com/projecteru2/labflow/pkg/terrors"
	"github.com/projecteru2/labflow/pkg/test/assert"
)

func newRealEtcd(t *testing.T) *Etcd {
	cfg := configs.New()
	cfg.Etcd.Endpoints = []string{"127.0.0.1:2379"}
	etcd, err := New(cfg)
	assert.NilErr(t, err)
	t.Cleanup(func() { _ = etcd.Close() })
	return etcd
}

func TestRealEtcdVersions(t *testing.T) {
	if os.Getenv("REAL_TEST") != "1" {
		return
	}

	var etcd = newRealEtcd(t)
	var ctx = context.Background()
	var key = fmt.Sprintf("/labflow-dev/v1/test/versions/%d", time.Now().UnixNano())

	assert.NilErr(t, etcd.Create(ctx, map[string]string{key: `{"n":1}`}))
	assert.True(t, terrors.IsKeyExistsErr(etcd.Create(ctx, map[string]string{key: `{}`})))

	var obj struct{ N int }
	ver, err := etcd.Get(ctx, key, &obj)
	assert.NilErr(t, err)
	assert.Equal(t, int64(1), ver)
	assert.Equal(t, 1, obj.N)

	assert.Err(t, etcd.Delete(ctx, []string{key}, map[string]int64{key: ver + 1}))
	assert.NilErr(t, etcd.Delete(ctx, []string{key}, map[string]int64{key: ver}))

	_, err = etcd.Get(ctx, key, &obj)
	assert.True(t, terrors.IsKeyNotExistsErr(err))
}

func TestRealEtcdMutex(t *testing.T) {
	if os.Getenv("REAL_TEST") != "1" {
		return
	}

	var etcd = newRealEtcd(t)
	var ctx = context.Background()
	var key = fmt.Sprintf("/labflow-dev/v1/test/locks/%d", time.Now().UnixNano())

	mu, err := etcd.NewMutex(key)
	assert.NilErr(t, err)
	unlock, err := mu.Lock(ctx)
	assert.NilErr(t, err)

	other, err := etcd.NewMutex(key)
	assert.NilErr(t, err)
	tctx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	_, err = other.Lock(tctx)
	assert.Err(t, err)

	assert.NilErr(t, unlock(ctx))
}
