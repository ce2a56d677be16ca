package etcd

import (
	"context"

	"github.com/cockroachdb/errors"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.etcd.io/etcd/client/v3/concurrency"

	"github.com/projecteru2/labflow/pkg/utils"
)

// Mutex .
type Mutex struct {
	mutex   *concurrency.Mutex
	session *concurrency.Session
}

// NewMutex .
func NewMutex(cli *clientv3.Client, key string) (utils.Locker, error) {
	var sess, err = concurrency.NewSession(cli)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	return &Mutex{
		mutex:   concurrency.NewMutex(sess, key),
		session: sess,
	}, nil
}

// Lock .
func (m *Mutex) Lock(ctx context.Context) (utils.Unlocker, error) {
	if err := m.mutex.Lock(ctx); err != nil {
		return nil, errors.CombineErrors(errors.Wrap(err, ""), m.session.Close())
	}
	return m.Unlock, nil
}

// Unlock .
func (m *Mutex) Unlock(ctx context.Context) error {
	err := m.mutex.Unlock(ctx)
	return errors.CombineErrors(err, m.session.Close())
}
