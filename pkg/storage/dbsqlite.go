package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// DBSQLite implements the Host interface using SQLite
// All units of work go through a single connection, which also keeps
// ":memory:" databases consistent between calls.
type DBSQLite struct {
	lock sync.Mutex
	db   *sql.DB
	conn *sql.Conn
}

func NewDBSQLite(filename string) (*DBSQLite, error) {
	dbs := DBSQLite{}
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		return nil, fmt.Errorf("new sqlitedb: %w", err)
	}

	ctx := context.Background()
	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("new sqlitedb: %w", err)
	}

	dbs.db = db
	dbs.conn = conn

	if err := createTables(ctx, conn); err != nil {
		dbs.Close()
		return nil, fmt.Errorf("unable to create table: %w", err)
	}
	return &dbs, nil
}

// createTables creates the table storing the key/value slots.
func createTables(ctx context.Context, conn *sql.Conn) error {
	_, err := conn.ExecContext(ctx, `create table if not exists kv (key blob primary key, value blob)`)
	if err != nil {
		log.Errorf("unable to create kv table: %v", err)
		return err
	}
	return nil
}

type sqliteTxn struct {
	ctx context.Context
	tx  *sql.Tx
}

func (t *sqliteTxn) Get(key []byte) ([]byte, bool, error) {
	var value []byte
	err := t.tx.QueryRowContext(t.ctx, `select value from kv where key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (t *sqliteTxn) Set(key []byte, value []byte) error {
	_, err := t.tx.ExecContext(t.ctx,
		`insert into kv (key, value) values (?, ?) on conflict(key) do update set value = excluded.value`,
		key, value)
	return err
}

func (t *sqliteTxn) Remove(key []byte) error {
	_, err := t.tx.ExecContext(t.ctx, `delete from kv where key = ?`, key)
	return err
}

func (t *sqliteTxn) Contains(key []byte) (bool, error) {
	var n int
	err := t.tx.QueryRowContext(t.ctx, `select count(1) from kv where key = ?`, key).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Atomic runs fn in a SQL transaction, rolled back if fn fails.
// The shared connection holds one transaction at a time, so units wait on db.lock.
func (db *DBSQLite) Atomic(ctx context.Context, fn func(Adapter) error) error {
	db.lock.Lock()
	defer db.lock.Unlock()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		log.Errorf("unable to begin sqlite tx %v", err)
		return fmt.Errorf("begin sqlite tx: %w", err)
	}

	if err := fn(&sqliteTxn{ctx: ctx, tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Errorf("unable to rollback sqlite tx %v", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Errorf("unable to commit sqlite tx %v", err)
		return fmt.Errorf("commit sqlite tx: %w", err)
	}
	return nil
}

func (db *DBSQLite) Close() error {
	if db.conn != nil {
		db.conn.Close()
	}
	return db.db.Close()
}
