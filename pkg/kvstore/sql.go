package kvstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	_ "github.com/rqlite/gorqlite/stdlib" // Import the database/sql driver
	"go.uber.org/zap"
)

// namespace scopes rows so the table can be shared with other services on
// the same rqlite cluster.
const namespace = "smart-gateway"

// SQLStore persists keys in a kv_storage table through database/sql. It
// serves both the local sqlite3 driver and the rqlite driver.
type SQLStore struct {
	db     *sql.DB
	driver string
	logger *zap.Logger
}

// NewSQLiteStore opens (creating if needed) a SQLite database file.
func NewSQLiteStore(ctx context.Context, path string, logger *zap.Logger) (*SQLStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path must not be empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// sqlite3 serializes writers anyway
	db.SetMaxOpenConns(1)

	return newSQLStore(ctx, db, "sqlite3", logger)
}

// NewRqliteStore connects to an rqlite node, e.g. "http://localhost:5001".
func NewRqliteStore(ctx context.Context, dsn string, logger *zap.Logger) (*SQLStore, error) {
	db, err := sql.Open("rqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open rqlite connection: %w", err)
	}
	return newSQLStore(ctx, db, "rqlite", logger)
}

func newSQLStore(ctx context.Context, db *sql.DB, driver string, logger *zap.Logger) (*SQLStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SQLStore{db: db, driver: driver, logger: logger}
	if err := s.initTables(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) initTables(ctx context.Context) error {
	createTableSQL := `
		CREATE TABLE IF NOT EXISTS kv_storage (
			namespace TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (namespace, key)
		)
	`
	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create storage table: %w", err)
	}

	s.logger.Debug("Storage table initialized", zap.String("driver", s.driver))
	return nil
}

// Get retrieves a value by key.
func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT value FROM kv_storage WHERE namespace = ? AND key = ?`

	var value string
	err := s.db.QueryRowContext(ctx, query, namespace, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores a key-value pair, replacing any existing value.
func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT OR REPLACE INTO kv_storage (namespace, key, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
	`
	if _, err := s.db.ExecContext(ctx, query, namespace, key, value); err != nil {
		return fmt.Errorf("failed to store key %s: %w", key, err)
	}

	s.logger.Debug("Stored key", zap.String("key", key), zap.String("driver", s.driver))
	return nil
}

// Close closes the underlying database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
