package db

import (
	"database/sql"
	"fmt"
	"net/url"

	_ "modernc.org/sqlite"
)

// DefaultBusyTimeout is the SQLite busy timeout in milliseconds.
const DefaultBusyTimeout = 5000

// Open opens a SQLite database connection and configures pragmas.
//
// Pragmas are passed in the DSN so every pooled connection gets them. The pool
// is capped at one connection: SQLite has a single writer anyway, and an
// in-memory database only exists on the connection that created it.
func Open(path string) (*sql.DB, error) {
	return OpenWithTimeout(path, DefaultBusyTimeout)
}

// OpenWithTimeout is Open with an explicit busy timeout in milliseconds.
func OpenWithTimeout(path string, busyTimeout int) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn(path, busyTimeout))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

func dsn(path string, busyTimeout int) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "synchronous(NORMAL)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeout))
	// Store times as "2006-01-02 15:04:05.999999999-07:00" so UTC values sort lexically.
	q.Set("_time_format", "sqlite")
	q.Set("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode()
}
