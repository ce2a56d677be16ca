package utils

import (
	"context"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"

	"github.com/projecteru2/labflow/pkg/log"
	"github.com/projecteru2/labflow/pkg/terrors"
)

const perm = os.FileMode(0600)

// flockPoll is the interval Lock retries a held lock file at.
const flockPoll = 20 * time.Millisecond

// Flock is an exclusive advisory lock on a file, shared by every process
// on the host. A Flock value is owned by one holder at a time.
type Flock struct {
	mut    sync.Mutex
	fpth   string
	file   *os.File
	locked bool
}

// NewFlock .
func NewFlock(fpth string) *Flock {
	return &Flock{fpth: fpth}
}

// Trylock fails with ErrFlockLocked when the file is locked elsewhere.
func (f *Flock) Trylock() error {
	f.mut.Lock()
	defer f.mut.Unlock()

	if f.locked {
		return nil
	}

	if err := f.open(); err != nil {
		return err
	}

	switch err := syscall.Flock(int(f.file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); {
	case err == nil:
		f.locked = true
		return nil
	case errors.Is(err, syscall.EWOULDBLOCK):
		f.close()
		return errors.Wrapf(terrors.ErrFlockLocked, "%s", f.fpth)
	default:
		f.close()
		return errors.Wrapf(err, "flock %s", f.fpth)
	}
}

// Lock polls Trylock until it succeeds or ctx is done.
func (f *Flock) Lock(ctx context.Context) error {
	var policy = backoff.WithContext(backoff.NewConstantBackOff(flockPoll), ctx)
	return backoff.Retry(func() error {
		switch err := f.Trylock(); {
		case err == nil:
			return nil
		case errors.Is(err, terrors.ErrFlockLocked):
			return err
		default:
			return backoff.Permanent(err)
		}
	}, policy)
}

// Unlock .
func (f *Flock) Unlock() {
	f.mut.Lock()
	defer f.mut.Unlock()

	if !f.locked {
		return
	}

	if err := syscall.Flock(int(f.file.Fd()), syscall.LOCK_UN); err != nil {
		log.Errorf(context.TODO(), err, "[flock] unlock %s failed", f.fpth)
	}

	f.locked = false
	f.close()
}

func (f *Flock) open() error {
	if f.file != nil {
		return nil
	}

	var fh, err = os.OpenFile(f.fpth, os.O_CREATE|os.O_RDWR, perm)
	if err != nil {
		return errors.Wrap(err, "")
	}

	f.file = fh

	return nil
}

func (f *Flock) close() {
	if err := f.file.Close(); err != nil {
		log.Warnf(context.TODO(), "[flock] close %s failed", f.fpth)
	}
	f.file = nil
}
