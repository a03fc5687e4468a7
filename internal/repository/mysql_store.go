package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// InnoDB error numbers that mean another writer got there first.
const (
	errDupEntry = 1062
	errDeadlock = 1213
)

// MySQLStore keeps the ledger as one row of the documents table:
//
//	CREATE TABLE documents (
//	    name       VARCHAR(64) PRIMARY KEY,
//	    body       LONGTEXT NOT NULL,
//	    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
//	);
//
// EnsureSchema creates the table when it does not exist yet.  SaveIf locks
// the row with SELECT ... FOR UPDATE so several instances can share it.
type MySQLStore struct {
	db   *sql.DB
	name string
}

// NewMySQLStore returns a MySQLStore that reads and writes the row with
// the given name.  An empty name falls back to "ledger".
func NewMySQLStore(db *sql.DB, name string) *MySQLStore {
	if name == "" {
		name = "ledger"
	}
	return &MySQLStore{db: db, name: name}
}

// EnsureSchema creates the documents table if needed.
func (s *MySQLStore) EnsureSchema(ctx context.Context) error {
	const q = `CREATE TABLE IF NOT EXISTS documents (
        name VARCHAR(64) PRIMARY KEY,
        body LONGTEXT NOT NULL,
        updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
    )`
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("create documents table: %w", err)
	}
	return nil
}

// Load fetches the document row.  A missing row yields ErrNoDocument.
func (s *MySQLStore) Load(ctx context.Context) (*Snapshot, error) {
	const q = `SELECT body FROM documents WHERE name = ?`
	var body string
	if err := s.db.QueryRowContext(ctx, q, s.name).Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoDocument
		}
		return nil, fmt.Errorf("select document %s: %w", s.name, err)
	}
	return decodeSnapshot([]byte(body))
}

// Save upserts the document row.
func (s *MySQLStore) Save(ctx context.Context, snap *Snapshot) error {
	data, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	const q = `INSERT INTO documents (name, body) VALUES (?, ?) ON DUPLICATE KEY UPDATE body = VALUES(body)`
	if _, err := s.db.ExecContext(ctx, q, s.name, string(data)); err != nil {
		return fmt.Errorf("upsert document %s: %w", s.name, err)
	}
	return nil
}

// SaveIf locks the document row, checks that it still holds version prev
// and writes snap in the same transaction.  Losing the insert race for a
// new row, or a deadlock between two writers, is reported as ErrStale.
func (s *MySQLStore) SaveIf(ctx context.Context, snap *Snapshot, prev int64) (err error) {
	data, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const sel = `SELECT body FROM documents WHERE name = ? FOR UPDATE`
	var body string
	switch err := tx.QueryRowContext(ctx, sel, s.name).Scan(&body); {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return staleOr(fmt.Errorf("lock document %s: %w", s.name, err))
	}
	if storedVersion([]byte(body)) != prev {
		return ErrStale
	}

	const ups = `INSERT INTO documents (name, body) VALUES (?, ?) ON DUPLICATE KEY UPDATE body = VALUES(body)`
	if _, err := tx.ExecContext(ctx, ups, s.name, string(data)); err != nil {
		return staleOr(fmt.Errorf("upsert document %s: %w", s.name, err))
	}
	if err := tx.Commit(); err != nil {
		return staleOr(fmt.Errorf("commit document %s: %w", s.name, err))
	}
	return nil
}

func staleOr(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) && (me.Number == errDupEntry || me.Number == errDeadlock) {
		return ErrStale
	}
	return err
}
