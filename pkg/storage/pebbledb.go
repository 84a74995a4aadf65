package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	log "github.com/sirupsen/logrus"
)

// PebbleMinimal is the minimal interface we use from Pebble
// Interface to help swap the DB out for testing.
type PebbleMinimal interface {
	NewIndexedBatch() *pebble.Batch
	Close() error
}

// PebbleDB implements the Host interface using Pebble.
// Each unit of work is an indexed batch, so reads see the unit's own writes.
type PebbleDB struct {
	lock sync.Mutex
	pdb  PebbleMinimal
}

// NewPebbleClient opens (or creates) a pebble DB in dir.
func NewPebbleClient(dir string) (*pebble.DB, error) {
	return NewPebbleClientWithOptions(dir, &pebble.Options{})
}

// NewPebbleClientWithOptions opens a pebble DB with caller supplied options (eg. an in-memory FS).
func NewPebbleClientWithOptions(dir string, opts *pebble.Options) (*pebble.DB, error) {
	db, err := pebble.Open(dir, opts)
	if err != nil {
		log.Errorf("unable to open pebble db %s: %v", dir, err)
		return nil, fmt.Errorf("open pebble: %w", err)
	}

	return db, nil
}

// NewPebbleDB creates new PebbleDB
func NewPebbleDB(pdb PebbleMinimal) (*PebbleDB, error) {
	dbs := PebbleDB{}
	dbs.pdb = pdb
	return &dbs, nil
}

type pebbleTxn struct {
	batch *pebble.Batch
}

func (t *pebbleTxn) Get(key []byte) ([]byte, bool, error) {
	v, closer, err := t.batch.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	valCopy := append([]byte{}, v...)
	if err := closer.Close(); err != nil {
		return nil, false, err
	}
	return valCopy, true, nil
}

func (t *pebbleTxn) Set(key []byte, value []byte) error {
	return t.batch.Set(key, value, nil)
}

func (t *pebbleTxn) Remove(key []byte) error {
	return t.batch.Delete(key, nil)
}

func (t *pebbleTxn) Contains(key []byte) (bool, error) {
	_, ok, err := t.Get(key)
	return ok, err
}

// Atomic applies the batch with pebble.Sync only when fn succeeds.
// Batches do not detect conflicting writes, so units are serialized by db.lock.
func (db *PebbleDB) Atomic(ctx context.Context, fn func(Adapter) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	db.lock.Lock()
	defer db.lock.Unlock()

	batch := db.pdb.NewIndexedBatch()
	defer batch.Close()

	if err := fn(&pebbleTxn{batch: batch}); err != nil {
		return err
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		log.Errorf("unable to commit pebble batch %v", err)
		return fmt.Errorf("commit pebble batch: %w", err)
	}
	return nil
}

func (db *PebbleDB) Close() error {
	return db.pdb.Close()
}
