// Package offchain keeps the marketplace and course-progress records that live
// beside the ledger in a local SQLite database. Nothing here is consensus
// state; the chaincode never reads it.
package offchain

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"educhain/sentinel"

	"github.com/hyperledger/fabric/common/flogging"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

var logger = flogging.MustGetLogger("educhain.offchain")

var (
	ErrTransactionNotFound = sentinel.Wrap(sentinel.ErrNotFound, "marketplace transaction not found")
	ErrProgressNotFound    = sentinel.Wrap(sentinel.ErrNotFound, "course progress not found")
	ErrProgressExists      = sentinel.Wrap(sentinel.ErrAlreadyExists, "course progress already tracked for user and course")
	ErrInvalidStatus       = sentinel.Wrap(sentinel.ErrInvalidInput, "invalid transaction status")
	ErrInvalidPurchase     = sentinel.Wrap(sentinel.ErrInvalidInput, "invalid purchase")
	ErrInvalidProgress     = sentinel.Wrap(sentinel.ErrInvalidInput, "progress must be between 0 and 100")
)

// Store is the SQLite-backed off-chain record store.
type Store struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

// Open creates the database at path if needed and applies the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+
		"?_pragma=journal_mode(WAL)"+
		"&_pragma=foreign_keys(ON)"+
		"&_pragma=busy_timeout(5000)"+
		"&_pragma=synchronous(NORMAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	logger.Infof("Off-chain store opened at %s", path)
	return &Store{db: db, dbPath: path, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) DBPath() string {
	return s.dbPath
}

// SetClock replaces the wall clock used for created/updated stamps.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Store) stamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func parseStamp(field, value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		logger.Warningf("failed to parse %s timestamp '%s': %v", field, value, err)
	}
	return t
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// affected turns a zero-row update or delete into notFound.
func affected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func noRows(err, notFound error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
