package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"formhook/internal/platform/config"
	_ "github.com/mattn/go-sqlite3"
)

// ErrHostMissing means the host form system has not created its tables in
// the shared database, so there is nothing to forward from.
var ErrHostMissing = errors.New("host form system is not installed: the forms table was not found; install and activate the form system first, then start formhook again")

// NewDB opens the database shared with the host form system.
func NewDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	// mattn/go-sqlite3 wants a plain path, so strip the file: scheme
	dsn := strings.TrimPrefix(cfg.URL, "file:")

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.MaxConnections)
	}
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// RequireHost is the activation guard: it fails unless the host form
// system's forms table is present.
func RequireHost(ctx context.Context, db *sql.DB) error {
	var name string
	err := db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'forms'`,
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrHostMissing
	}
	return err
}
