package models

import (
	"context"
	"path"
	"sort"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/projecteru2/labflow/pkg/store"
	"github.com/projecteru2/labflow/pkg/terrors"
	"github.com/projecteru2/labflow/pkg/utils"
)

// Connection is the local memory of a provisioned path. It keeps only what
// teardown needs to rebuild the rule names, never the rules themselves.
type Connection struct {
	Handler     string   `json:"handler"`
	StudentCode int      `json:"student"`
	ServerName  string   `json:"server"`
	ServiceName string   `json:"service"`
	Hops        int      `json:"hops"`
	Switches    []string `json:"switches,omitempty"`
	CreatedTime int64    `json:"create_time"`

	ver int64
}

// NewConnection .
func NewConnection(handler string, student int, server, service string, switches []string) *Connection {
	return &Connection{
		Handler:     handler,
		StudentCode: student,
		ServerName:  server,
		ServiceName: service,
		Hops:        len(switches),
		Switches:    switches,
		CreatedTime: time.Now().Unix(),
	}
}

// Registry keeps connections in the store, keyed by handler.
type Registry struct {
	store  store.Store
	prefix string
}

// NewRegistry .
func NewRegistry(st store.Store, prefix string) *Registry {
	return &Registry{store: st, prefix: prefix}
}

func (r *Registry) key(handler string) string {
	return path.Join(r.prefix, "connections", handler)
}

func (r *Registry) lockKey(handler string) string {
	return path.Join(r.prefix, "locks", "connections", handler)
}

// Lock holds the handler across processes sharing the store.
func (r *Registry) Lock(ctx context.Context, handler string) (utils.Unlocker, error) {
	mu, err := r.store.NewMutex(r.lockKey(handler))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return mu.Lock(ctx)
}

// Create stores conn, failing with ErrConnectionExists when the handler is taken.
func (r *Registry) Create(ctx context.Context, conn *Connection) error {
	buf, err := utils.JSONEncode(conn)
	if err != nil {
		return errors.Wrap(err, "")
	}

	switch err := r.store.Create(ctx, map[string]string{r.key(conn.Handler): string(buf)}); {
	case terrors.IsKeyExistsErr(err):
		return errors.Wrapf(terrors.ErrConnectionExists, "%s", conn.Handler)
	case err != nil:
		return err
	}
	conn.ver = 1
	return nil
}

// Get .
func (r *Registry) Get(ctx context.Context, handler string) (*Connection, error) {
	var conn = &Connection{}
	switch ver, err := r.store.Get(ctx, r.key(handler), conn); {
	case terrors.IsKeyNotExistsErr(err):
		return nil, errors.Wrapf(terrors.ErrConnectionNotExists, "%s", handler)
	case err != nil:
		return nil, err
	default:
		conn.ver = ver
	}
	return conn, nil
}

// Exists .
func (r *Registry) Exists(ctx context.Context, handler string) (bool, error) {
	switch _, err := r.Get(ctx, handler); {
	case terrors.IsConnectionNotExistsErr(err):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

// List returns every connection ordered by handler.
func (r *Registry) List(ctx context.Context) ([]*Connection, error) {
	data, vers, err := r.store.GetPrefix(ctx, r.key("")+"/", 0)
	if err != nil {
		return nil, err
	}

	var conns = make([]*Connection, 0, len(data))
	for key, buf := range data {
		var conn = &Connection{}
		if err := utils.JSONDecode(buf, conn); err != nil {
			return nil, errors.Wrapf(err, "decode %s", key)
		}
		conn.ver = vers[key]
		conns = append(conns, conn)
	}

	sort.Slice(conns, func(i, j int) bool { return conns[i].Handler < conns[j].Handler })
	return conns, nil
}

// Remove deletes conn, as long as nobody changed it since it was read.
func (r *Registry) Remove(ctx context.Context, conn *Connection) error {
	var vers map[string]int64
	if conn.ver > 0 {
		vers = map[string]int64{r.key(conn.Handler): conn.ver}
	}
	return r.store.Delete(ctx, []string{r.key(conn.Handler)}, vers)
}
