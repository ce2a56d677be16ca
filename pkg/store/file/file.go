package file

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/projecteru2/labflow/pkg/terrors"
	"github.com/projecteru2/labflow/pkg/utils"
)

const perm = os.FileMode(0600)

type entry struct {
	Value string `json:"value"`
	Ver   int64  `json:"ver"`
}

// File keeps the whole key space in one JSON document, so that state
// survives the process and is shared by every process on the host.
// Writes replace the document atomically under an exclusive flock.
type File struct {
	fpth  string
	locks string
	// mut serializes transactions within the process, the flock across processes.
	mut sync.Mutex
}

// New opens the store at fpth, creating its directory.
func New(fpth string) (*File, error) {
	var locks = fpth + ".locks"
	if err := os.MkdirAll(locks, 0700); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return &File{fpth: fpth, locks: locks}, nil
}

// Create .
func (f *File) Create(ctx context.Context, data map[string]string) error {
	return f.txn(ctx, func(kv map[string]entry) error {
		for k := range data {
			if _, exists := kv[k]; exists {
				return errors.Wrapf(terrors.ErrKeyExists, "%s", k)
			}
		}
		for k, v := range data {
			kv[k] = entry{Value: v, Ver: 1}
		}
		return nil
	})
}

// Update .
func (f *File) Update(ctx context.Context, data map[string]string, vers map[string]int64) error {
	return f.txn(ctx, func(kv map[string]entry) error {
		if err := checkVersions(kv, vers); err != nil {
			return err
		}
		for k, v := range data {
			kv[k] = entry{Value: v, Ver: kv[k].Ver + 1}
		}
		return nil
	})
}

// Get .
func (f *File) Get(_ context.Context, key string, obj any) (int64, error) {
	kv, err := f.load()
	if err != nil {
		return 0, err
	}
	var ent, exists = kv[key]
	if !exists {
		return 0, errors.Wrapf(terrors.ErrKeyNotExists, "%s", key)
	}
	return ent.Ver, errors.Wrap(utils.JSONDecode([]byte(ent.Value), obj), "")
}

// GetPrefix returns keys in lexical order, at most limit of them when limit > 0.
func (f *File) GetPrefix(_ context.Context, prefix string, limit int64) (map[string][]byte, map[string]int64, error) {
	kv, err := f.load()
	if err != nil {
		return nil, nil, err
	}

	var keys []string
	for k := range kv {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if limit > 0 && int64(len(keys)) > limit {
		keys = keys[:limit]
	}

	var data = map[string][]byte{}
	var vers = map[string]int64{}
	for _, k := range keys {
		data[k] = []byte(kv[k].Value)
		vers[k] = kv[k].Ver
	}
	return data, vers, nil
}

// Delete .
func (f *File) Delete(ctx context.Context, keys []string, vers map[string]int64) error {
	return f.txn(ctx, func(kv map[string]entry) error {
		if err := checkVersions(kv, vers); err != nil {
			return err
		}
		for _, k := range keys {
			delete(kv, k)
		}
		return nil
	})
}

// NewMutex returns a cross-process lock backed by one lock file per key.
func (f *File) NewMutex(key string) (utils.Locker, error) {
	return &mutex{fpth: filepath.Join(f.locks, url.PathEscape(key)+".lock")}, nil
}

// Close .
func (f *File) Close() error {
	return nil
}

// txn runs fn over the current document and persists it when fn succeeds.
func (f *File) txn(ctx context.Context, fn func(map[string]entry) error) error {
	f.mut.Lock()
	defer f.mut.Unlock()

	var fl = utils.NewFlock(f.fpth + ".lock")
	if err := fl.Lock(ctx); err != nil {
		return errors.Wrap(err, "")
	}
	defer fl.Unlock()

	kv, err := f.load()
	if err != nil {
		return err
	}
	if err := fn(kv); err != nil {
		return err
	}
	return f.save(kv)
}

func (f *File) load() (map[string]entry, error) {
	var kv = map[string]entry{}
	buf, err := os.ReadFile(f.fpth)
	switch {
	case os.IsNotExist(err):
		return kv, nil
	case err != nil:
		return nil, errors.Wrap(err, "")
	case len(buf) == 0:
		return kv, nil
	}
	if err := utils.JSONDecode(buf, &kv); err != nil {
		return nil, errors.Wrapf(err, "decode %s", f.fpth)
	}
	return kv, nil
}

// save writes a sibling temp file and renames it over the document,
// so readers never observe a partial write.
func (f *File) save(kv map[string]entry) error {
	buf, err := utils.JSONEncode(kv, "\t")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.fpth), filepath.Base(f.fpth)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer os.Remove(tmp.Name()) //nolint

	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		return errors.Wrap(err, "")
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return errors.Wrap(err, "")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "")
	}
	return errors.Wrap(os.Rename(tmp.Name(), f.fpth), "")
}

func checkVersions(kv map[string]entry, vers map[string]int64) error {
	for k, want := range vers {
		if cur := kv[k].Ver; cur != want {
			return errors.Wrapf(terrors.ErrKeyBadVersion, "%s: %d != %d", k, cur, want)
		}
	}
	return nil
}

type mutex struct {
	fpth string
}

// Lock blocks until no other holder, in or out of the process, owns the key.
func (l *mutex) Lock(ctx context.Context) (utils.Unlocker, error) {
	var fl = utils.NewFlock(l.fpth)
	if err := fl.Lock(ctx); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return func(context.Context) error {
		fl.Unlock()
		return nil
	}, nil
}
