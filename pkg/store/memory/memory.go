package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/alphadose/haxmap"
	"github.com/cockroachdb/errors"

	"github.com/projecteru2/labflow/pkg/terrors"
	"github.com/projecteru2/labflow/pkg/utils"
)

type entry struct {
	value []byte
	ver   int64
}

// Memory is an in-process store with etcd-like version semantics.
type Memory struct {
	// txn serializes multi-key writes, reads go straight to the map.
	txn   sync.Mutex
	kv    *haxmap.Map[string, entry]
	locks *haxmap.Map[string, *sync.Mutex]
}

// New .
func New() *Memory {
	return &Memory{
		kv:    haxmap.New[string, entry](),
		locks: haxmap.New[string, *sync.Mutex](),
	}
}

// Create .
func (m *Memory) Create(_ context.Context, data map[string]string) error {
	m.txn.Lock()
	defer m.txn.Unlock()

	for k := range data {
		if _, exists := m.kv.Get(k); exists {
			return errors.Wrapf(terrors.ErrKeyExists, "%s", k)
		}
	}
	for k, v := range data {
		m.kv.Set(k, entry{value: []byte(v), ver: 1})
	}
	return nil
}

// Update .
func (m *Memory) Update(_ context.Context, data map[string]string, vers map[string]int64) error {
	m.txn.Lock()
	defer m.txn.Unlock()

	if err := m.checkVersions(vers); err != nil {
		return err
	}
	for k, v := range data {
		cur, _ := m.kv.Get(k)
		m.kv.Set(k, entry{value: []byte(v), ver: cur.ver + 1})
	}
	return nil
}

// Get .
func (m *Memory) Get(_ context.Context, key string, obj any) (int64, error) {
	var ent, exists = m.kv.Get(key)
	if !exists {
		return 0, errors.Wrapf(terrors.ErrKeyNotExists, "%s", key)
	}
	return ent.ver, errors.Wrap(utils.JSONDecode(ent.value, obj), "")
}

// GetPrefix returns keys in lexical order, at most limit of them when limit > 0.
func (m *Memory) GetPrefix(_ context.Context, prefix string, limit int64) (map[string][]byte, map[string]int64, error) {
	var keys []string
	m.kv.ForEach(func(k string, _ entry) bool {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
		return true
	})
	sort.Strings(keys)
	if limit > 0 && int64(len(keys)) > limit {
		keys = keys[:limit]
	}

	var data = map[string][]byte{}
	var vers = map[string]int64{}
	for _, k := range keys {
		if ent, ok := m.kv.Get(k); ok {
			data[k] = ent.value
			vers[k] = ent.ver
		}
	}
	return data, vers, nil
}

// Delete .
func (m *Memory) Delete(_ context.Context, keys []string, vers map[string]int64) error {
	m.txn.Lock()
	defer m.txn.Unlock()

	if err := m.checkVersions(vers); err != nil {
		return err
	}
	m.kv.Del(keys...)
	return nil
}

func (m *Memory) checkVersions(vers map[string]int64) error {
	for k, want := range vers {
		cur, _ := m.kv.Get(k)
		if cur.ver != want {
			return errors.Wrapf(terrors.ErrKeyBadVersion, "%s: %d != %d", k, cur.ver, want)
		}
	}
	return nil
}

// NewMutex .
func (m *Memory) NewMutex(key string) (utils.Locker, error) {
	var mu, _ = m.locks.GetOrCompute(key, func() *sync.Mutex { return &sync.Mutex{} })
	return &mutex{mu: mu}, nil
}

// Close .
func (m *Memory) Close() error {
	return nil
}

type mutex struct {
	mu *sync.Mutex
}

// Lock blocks until the key is free or ctx is done.
func (l *mutex) Lock(ctx context.Context) (utils.Unlocker, error) {
	var locked = make(chan struct{})
	go func() {
		l.mu.Lock()
		close(locked)
	}()

	select {
	case <-locked:
		return func(context.Context) error {
			l.mu.Unlock()
			return nil
		}, nil
	case <-ctx.Done():
		// Release once the pending acquire lands.
		go func() {
			<-locked
			l.mu.Unlock()
		}()
		return nil, errors.Wrap(ctx.Err(), "")
	}
}
