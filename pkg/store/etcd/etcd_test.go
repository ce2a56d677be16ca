package etcd

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"go.etcd.io/etcd/api/v3/v3rpc/rpctypes"

	"github.com/projecteru2/labflow/pkg/test/assert"
)

func TestRetryTimedOut(t *testing.T) {
	var ctx = context.Background()

	var calls int
	err := RetryTimedOut(ctx, func() error {
		calls++
		if calls < 3 {
			return rpctypes.ErrTimeout
		}
		return nil
	}, 2)
	assert.NilErr(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = RetryTimedOut(ctx, func() error {
		calls++
		return rpctypes.ErrTimeout
	}, 1)
	assert.True(t, errors.Is(err, rpctypes.ErrTimeout))
	assert.Equal(t, 2, calls)

	calls = 0
	err = RetryTimedOut(ctx, func() error {
		calls++
		return errors.New("boom")
	}, 5)
	assert.Err(t, err)
	assert.Equal(t, 1, calls)
}

func TestDelTxnEventCompares(t *testing.T) {
	var ev = newDelTxnEvent([]string{"/a", "/b"}, map[string]int64{"/a": 3})
	var ops, cmps = ev.generate()
	assert.Equal(t, 2, len(ops))
	assert.Equal(t, 1, len(cmps))
}
