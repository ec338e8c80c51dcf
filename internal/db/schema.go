package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'manager', 'user')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS areas (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    type       TEXT,
    capacity   INTEGER CHECK (capacity IS NULL OR capacity >= 0),
    parent_id  INTEGER REFERENCES areas(id),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS pallets (
    id               INTEGER PRIMARY KEY,
    barcode          TEXT NOT NULL,
    type             TEXT,
    size             TEXT,
    condition_status TEXT NOT NULL DEFAULT 'Good'
                     CHECK (condition_status IN ('Good', 'Damaged', 'Lost', 'Stolen', 'Unfit')),
    current_area_id  INTEGER REFERENCES areas(id),
    owner            TEXT,
    created_by       INTEGER NOT NULL REFERENCES users(id),
    created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at       DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_pallets_barcode_active
    ON pallets(barcode COLLATE NOCASE) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS movements (
    id           INTEGER PRIMARY KEY,
    pallet_id    INTEGER NOT NULL REFERENCES pallets(id),
    from_area_id INTEGER REFERENCES areas(id),
    to_area_id   INTEGER NOT NULL REFERENCES areas(id),
    out_by       INTEGER NOT NULL REFERENCES users(id),
    out_at       DATETIME NOT NULL,
    eta          DATETIME,
    in_by        INTEGER REFERENCES users(id),
    in_at        DATETIME,
    status       TEXT NOT NULL DEFAULT 'Pending' CHECK (status IN ('Pending', 'Completed', 'Cancelled')),
    notes        TEXT,
    created_at   DATETIME NOT NULL,
    updated_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_movements_pallet_status ON movements(pallet_id, status);
CREATE INDEX IF NOT EXISTS idx_movements_out_at ON movements(out_at);

CREATE TABLE IF NOT EXISTS audit_log (
    id          INTEGER PRIMARY KEY,
    entity_type TEXT NOT NULL,
    entity_id   TEXT NOT NULL,
    action      TEXT NOT NULL,
    changed_by  INTEGER REFERENCES users(id),
    changed_at  DATETIME NOT NULL,
    before_data TEXT,
    after_data  TEXT
);

CREATE INDEX IF NOT EXISTS idx_audit_log_entity ON audit_log(entity_type, entity_id);
CREATE INDEX IF NOT EXISTS idx_audit_log_changed_at ON audit_log(changed_at);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    user_id    INTEGER NOT NULL REFERENCES users(id),
    revoked_at DATETIME NOT NULL,
    expires_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_revoked_tokens_expires_at ON revoked_tokens(expires_at);
`

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: audit entries are never rewritten.
	`CREATE TRIGGER IF NOT EXISTS audit_log_no_update BEFORE UPDATE ON audit_log
	 BEGIN SELECT RAISE(ABORT, 'audit_log is append-only'); END`,
	`CREATE TRIGGER IF NOT EXISTS audit_log_no_delete BEFORE DELETE ON audit_log
	 BEGIN SELECT RAISE(ABORT, 'audit_log is append-only'); END`,
}

// EnsureSchema creates all tables and indexes if they don't already exist,
// then applies migrations.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}
	return nil
}
