package etcd

import clientv3 "go.etcd.io/etcd/client/v3"

type delTxnEvent struct {
	*txnEvent
}

func newDelTxnEvent(keys []string, vers map[string]int64) *delTxnEvent {
	var ev = &delTxnEvent{txnEvent: newTxnEvent()}
	ev.vers = vers
	ev.data = map[string]string{}

	for _, k := range keys {
		ev.data[k] = ""
	}

	return ev
}

func (e *delTxnEvent) generate() ([]clientv3.Op, []clientv3.Cmp) {
	for k := range e.data {
		e.operations = append(e.operations, clientv3.OpDelete(k))

		if ver, ok := e.vers[k]; ok {
			e.compares = append(e.compares, clientv3.Compare(clientv3.Version(k), "=", ver))
		}
	}

	return e.operations, e.compares
}

type txnEvent struct {
	data       map[string]string
	vers       map[string]int64
	txnErr     error
	operations []clientv3.Op
	compares   []clientv3.Cmp
}

func newTxnEvent() *txnEvent {
	return &txnEvent{
		operations: []clientv3.Op{},
		compares:   []clientv3.Cmp{},
	}
}

// generate puts every key, guarded by a version compare when one is given.
// A zero version means the key must not exist yet.
func (e *txnEvent) generate() ([]clientv3.Op, []clientv3.Cmp) {
	for k, v := range e.data {
		e.operations = append(e.operations, clientv3.OpPut(k, v))

		if ver, ok := e.vers[k]; ok {
			e.compares = append(e.compares, clientv3.Compare(clientv3.Version(k), "=", ver))
		}
	}

	return e.operations, e.compares
}
