package etcd

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"go.etcd.io/etcd/api/v3/v3rpc/rpctypes"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/projecteru2/labflow/configs"
	"github.com/projecteru2/labflow/pkg/log"
	"github.com/projecteru2/labflow/pkg/terrors"
	"github.com/projecteru2/labflow/pkg/utils"
)

const retryTimes = 2

// Etcd .
type Etcd struct {
	sync.Mutex
	cli *clientv3.Client
}

// New .
func New(cfg *configs.Config) (*Etcd, error) {
	etcdcnf, err := cfg.NewEtcdConfig()
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	cli, err := clientv3.New(etcdcnf)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	return &Etcd{cli: cli}, nil
}

// Create .
func (e *Etcd) Create(ctx context.Context, data map[string]string) error {
	var ev = newTxnEvent()
	ev.data = data
	ev.txnErr = terrors.ErrKeyExists
	ev.vers = map[string]int64{}

	for k := range ev.data {
		ev.vers[k] = 0
	}

	return e.batchPut(ctx, ev)
}

// Update .
func (e *Etcd) Update(ctx context.Context, data map[string]string, vers map[string]int64) error {
	var ev = newTxnEvent()
	ev.data = data
	ev.txnErr = terrors.ErrKeyBadVersion
	ev.vers = vers

	return e.batchPut(ctx, ev)
}

func (e *Etcd) batchPut(ctx context.Context, ev *txnEvent) error {
	var ops, cmps = ev.generate()

	switch succ, err := e.BatchOperate(ctx, ops, cmps...); {
	case err != nil:
		return errors.Wrap(err, "")

	case !succ:
		return errors.Wrap(ev.txnErr, "")
	}

	return nil
}

// Delete .
func (e *Etcd) Delete(ctx context.Context, keys []string, vers map[string]int64) error {
	var ev = newDelTxnEvent(keys, vers)
	var ops, cmps = ev.generate()

	switch succ, err := e.BatchOperate(ctx, ops, cmps...); {
	case err != nil:
		return errors.Wrap(err, "")

	case !succ:
		return errors.Wrap(terrors.ErrKeyBadVersion, "")
	}

	return nil
}

// BatchOperate .
func (e *Etcd) BatchOperate(ctx context.Context, ops []clientv3.Op, cmps ...clientv3.Cmp) (succ bool, err error) {
	e.Lock()
	defer e.Unlock()

	err = RetryTimedOut(ctx, func() error {
		var resp, err = e.cli.Txn(ctx).If(cmps...).Then(ops...).Commit()
		if err != nil {
			return err
		}
		succ = resp.Succeeded
		return nil
	}, retryTimes)

	return succ, errors.Wrap(err, "")
}

// GetPrefix .
func (e *Etcd) GetPrefix(ctx context.Context, prefix string, limit int64) (map[string][]byte, map[string]int64, error) {
	e.Lock()
	defer e.Unlock()

	var resp, err = e.cli.Get(ctx, prefix, clientv3.WithLimit(limit), clientv3.WithPrefix())
	if err != nil {
		return nil, nil, errors.Wrap(err, "")
	}

	var data = map[string][]byte{}
	var vers = map[string]int64{}

	for _, kv := range resp.Kvs {
		var key = string(kv.Key)
		data[key] = kv.Value
		vers[key] = kv.Version
	}

	return data, vers, nil
}

// Get .
func (e *Etcd) Get(ctx context.Context, key string, obj any) (int64, error) {
	e.Lock()
	defer e.Unlock()

	switch resp, err := e.cli.Get(ctx, key); {
	case err != nil:
		return 0, errors.Wrap(err, "")

	case resp.Count != 1:
		return 0, errors.Wrapf(terrors.ErrKeyNotExists, "%s", key)

	default:
		return resp.Kvs[0].Version, decode(resp.Kvs[0].Value, obj)
	}
}

// NewMutex .
func (e *Etcd) NewMutex(key string) (utils.Locker, error) {
	return NewMutex(e.cli, key)
}

// Close .
func (e *Etcd) Close() error {
	e.Lock()
	defer e.Unlock()
	return e.cli.Close()
}

// RetryTimedOut .
func RetryTimedOut(ctx context.Context, fn func() error, retryTimes int) error {
	for retried := 0; ; retried++ {
		if err := fn(); err != nil {
			if retried < retryTimes && errors.Is(err, rpctypes.ErrTimeout) {
				log.Warnf(ctx, "etcdserver: request timed out, retry it")
				continue
			}

			return err
		}

		return nil
	}
}
