package store

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/projecteru2/labflow/configs"
	"github.com/projecteru2/labflow/pkg/store/etcd"
	"github.com/projecteru2/labflow/pkg/store/file"
	"github.com/projecteru2/labflow/pkg/store/memory"
	"github.com/projecteru2/labflow/pkg/terrors"
	"github.com/projecteru2/labflow/pkg/utils"
)

// Store is a versioned key/value store holding JSON encoded values.
type Store interface {
	// Create puts all keys in one transaction, failing with ErrKeyExists if any exists.
	Create(ctx context.Context, data map[string]string) error
	// Update puts all keys when each one is still at the given version.
	Update(ctx context.Context, data map[string]string, vers map[string]int64) error

	// Get decodes the value of key into obj, failing with ErrKeyNotExists.
	Get(ctx context.Context, key string, obj any) (ver int64, err error)
	GetPrefix(ctx context.Context, prefix string, limit int64) (data map[string][]byte, vers map[string]int64, err error)

	// Delete removes keys; a key listed in vers is only removed at that version.
	Delete(ctx context.Context, keys []string, vers map[string]int64) error

	NewMutex(key string) (utils.Locker, error)
	Close() error
}

// New .
func New(cfg *configs.Config) (Store, error) {
	switch cfg.Meta.Type {
	case "memory":
		return memory.New(), nil
	case "file":
		fpth, err := cfg.MetaFile()
		if err != nil {
			return nil, err
		}
		return file.New(fpth)
	case "etcd":
		return etcd.New(cfg)
	default:
		return nil, errors.Wrapf(terrors.ErrUnknownMetaType, "%s", cfg.Meta.Type)
	}
}
