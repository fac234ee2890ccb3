package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	_ "github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a booking id does not exist.
	ErrNotFound = errors.New("booking not found")
)

// DB wraps the SQLite handle holding the booking ledger.
type DB struct {
	db     *sql.DB
	logger *zerolog.Logger
}

// NewDB opens (creating if needed) the ledger database at path and
// ensures the schema exists.
func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("database initialized")
	return &DB{db: db, logger: logger}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS bookings (
            id TEXT PRIMARY KEY,
            customer TEXT NOT NULL,
            phone TEXT NOT NULL,
            address TEXT NOT NULL DEFAULT '',
            group_name TEXT NOT NULL DEFAULT '',
            model TEXT NOT NULL DEFAULT '',
            type TEXT NOT NULL DEFAULT '벽걸이',
            qty INTEGER NOT NULL DEFAULT 1,
            scope TEXT NOT NULL DEFAULT '실내기',
            price_total TEXT NOT NULL DEFAULT '',
            book_date TEXT NOT NULL,
            book_time TEXT NOT NULL DEFAULT '',
            ampm TEXT NOT NULL DEFAULT '오전',
            engineer TEXT NOT NULL DEFAULT '',
            contractor TEXT NOT NULL DEFAULT '',
            commission_rate TEXT NOT NULL DEFAULT '',
            pay_method TEXT NOT NULL DEFAULT '카드',
            paid TEXT NOT NULL DEFAULT '미완료',
            memo TEXT NOT NULL DEFAULT '',
            created_at DATETIME NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_book_date ON bookings(book_date)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_created_at ON bookings(created_at)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("exec schema statement: %w", err)
		}
	}
	return nil
}

// Close closes the underlying handle.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping verifies the connection, for health checks.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}
