package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
)

// Adapter is the key/value view an engine gets for the duration of one unit of work.
// Absence is reported as found == false from Get, never as an error.
type Adapter interface {
	Get(key []byte) ([]byte, bool, error)
	Set(key []byte, value []byte) error
	Remove(key []byte) error
	Contains(key []byte) (bool, error)
}

// Host stores the durable bytes and runs units of work against them.
// Units run one at a time: a call to Atomic waits until any unit already
// running on the same Host has committed or been discarded.
// Atomic commits every write made through the Adapter if fn returns nil.
// If fn returns an error nothing it wrote is persisted and the error is returned as is.
type Host interface {
	Atomic(ctx context.Context, fn func(Adapter) error) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendPebble = "pebble"
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

// Backends lists every name Open understands.
func Backends() []string {
	return []string{BackendMemory, BackendPebble, BackendBadger, BackendSQLite}
}

// Open creates the Host for the named backend. dir is the directory the
// durable backends keep their files in and is ignored for memory.
func Open(backend string, dir string) (Host, error) {
	switch strings.ToLower(backend) {
	case BackendMemory:
		return NewMemDB(), nil
	case BackendPebble:
		client, err := NewPebbleClient(path.Join(dir, "pebbledb"))
		if err != nil {
			return nil, err
		}
		return NewPebbleDB(client)
	case BackendBadger:
		return NewBadgerDB(path.Join(dir, "badgerdb"))
	case BackendSQLite:
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
		return NewDBSQLite(path.Join(dir, "ledgerstore.db"))
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
}
