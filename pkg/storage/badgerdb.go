package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	badger "github.com/dgraph-io/badger/v3"
	log "github.com/sirupsen/logrus"
)

// BadgerDB implements the Host interface using BadgerDB
type BadgerDB struct {
	lock      sync.Mutex
	bdb       *badger.DB
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// NewBadgerDB creates new BadgerDB DB connection
func NewBadgerDB(dir string) (*BadgerDB, error) {
	return NewBadgerDBWithOptions(badger.DefaultOptions(dir).WithLogger(nil))
}

// NewBadgerDBWithOptions opens badger with the supplied options.
func NewBadgerDBWithOptions(opts badger.Options) (*BadgerDB, error) {
	db, err := badger.Open(opts)
	if err != nil {
		log.Errorf("unable to open badger db %s: %v", opts.Dir, err)
		return nil, fmt.Errorf("open badger: %w", err)
	}

	dbs := &BadgerDB{bdb: db, stop: make(chan struct{}), done: make(chan struct{})}
	go dbs.startGC(opts.InMemory)
	return dbs, nil
}

func (db *BadgerDB) startGC(inMemory bool) {
	defer close(db.done)
	if inMemory {
		// value log GC is not available in memory mode.
		<-db.stop
		return
	}

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-db.stop:
			return
		case <-ticker.C:
			log.Debug("GC ticker")
			for db.bdb.RunValueLogGC(0.7) == nil {
			}
		}
	}
}

type badgerTxn struct {
	txn *badger.Txn
}

func (t *badgerTxn) Get(key []byte) ([]byte, bool, error) {
	item, err := t.txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	valCopy, err := item.ValueCopy(nil)
	if err != nil {
		return nil, false, err
	}
	return valCopy, true, nil
}

func (t *badgerTxn) Set(key []byte, value []byte) error {
	return t.txn.Set(key, value)
}

func (t *badgerTxn) Remove(key []byte) error {
	return t.txn.Delete(key)
}

func (t *badgerTxn) Contains(key []byte) (bool, error) {
	_, ok, err := t.Get(key)
	return ok, err
}

// Atomic runs fn inside a read-write badger transaction.
// Badger discards the transaction when fn returns an error.
// Units are serialized by db.lock so overlapping units never hit ErrConflict.
func (db *BadgerDB) Atomic(ctx context.Context, fn func(Adapter) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	db.lock.Lock()
	defer db.lock.Unlock()

	var fnErr error
	err := db.bdb.Update(func(txn *badger.Txn) error {
		fnErr = fn(&badgerTxn{txn: txn})
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		log.Errorf("unable to commit badger txn %v", err)
		return fmt.Errorf("commit badger txn: %w", err)
	}
	return nil
}

// Close stops the GC loop and closes badger. Later calls return the first result.
func (db *BadgerDB) Close() error {
	db.closeOnce.Do(func() {
		close(db.stop)
		<-db.done
		db.closeErr = db.bdb.Close()
	})
	return db.closeErr
}
