package storage

import (
	"context"
	"sync"
)

// MemDB keeps everything in process memory.
// Used for tests and for throwaway runs of the CLI.
type MemDB struct {
	lock sync.Mutex
	data map[string][]byte
}

// NewMemDB creates an empty MemDB
func NewMemDB() *MemDB {
	db := MemDB{}
	db.data = make(map[string][]byte)
	return &db
}

// memTxn buffers writes until the unit of work completes.
type memTxn struct {
	db      *MemDB
	writes  map[string][]byte
	removes map[string]bool
}

func (t *memTxn) Get(key []byte) ([]byte, bool, error) {
	k := string(key)
	if t.removes[k] {
		return nil, false, nil
	}
	if v, ok := t.writes[k]; ok {
		return append([]byte(nil), v...), true, nil
	}
	v, ok := t.db.data[k]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (t *memTxn) Set(key []byte, value []byte) error {
	k := string(key)
	delete(t.removes, k)
	t.writes[k] = append([]byte(nil), value...)
	return nil
}

func (t *memTxn) Remove(key []byte) error {
	k := string(key)
	delete(t.writes, k)
	t.removes[k] = true
	return nil
}

func (t *memTxn) Contains(key []byte) (bool, error) {
	_, ok, err := t.Get(key)
	return ok, err
}

// Atomic runs fn holding the db lock, so units never interleave.
func (db *MemDB) Atomic(ctx context.Context, fn func(Adapter) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	db.lock.Lock()
	defer db.lock.Unlock()

	txn := &memTxn{db: db, writes: make(map[string][]byte), removes: make(map[string]bool)}
	if err := fn(txn); err != nil {
		return err
	}

	for k := range txn.removes {
		delete(db.data, k)
	}
	for k, v := range txn.writes {
		db.data[k] = v
	}
	return nil
}

// Len returns number of keys stored.
func (db *MemDB) Len() int {
	db.lock.Lock()
	defer db.lock.Unlock()
	return len(db.data)
}

// Snapshot copies the stored data. Keys are converted to strings.
func (db *MemDB) Snapshot() map[string][]byte {
	db.lock.Lock()
	defer db.lock.Unlock()

	snap := make(map[string][]byte, len(db.data))
	for k, v := range db.data {
		snap[k] = append([]byte(nil), v...)
	}
	return snap
}

func (db *MemDB) Close() error {
	return nil
}
