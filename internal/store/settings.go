package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/erazemk/palete/internal/model"
)

// Setting keys.
const (
	SettingJWTSecret = "jwt_secret"
)

// GetSetting returns the value stored under key.
func GetSetting(ctx context.Context, db *sql.DB, key string) (string, error) {
	var value string
	err := conn(ctx, db).QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("setting %q: %w", key, model.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("querying setting %q: %w", key, err)
	}
	return value, nil
}

// EnsureSetting stores value under key unless the key is already set, and
// returns whichever value ends up stored. Two processes starting against the
// same file agree on a single value.
func EnsureSetting(ctx context.Context, db *sql.DB, key, value string) (string, error) {
	_, err := conn(ctx, db).ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`, key, value,
	)
	if err != nil {
		return "", fmt.Errorf("storing setting %q: %w", key, err)
	}
	return GetSetting(ctx, db, key)
}

// GetJWTSecret returns the token signing secret kept in the database,
// generating a random 256-bit one on first use.
func GetJWTSecret(ctx context.Context, db *sql.DB) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	return EnsureSetting(ctx, db, SettingJWTSecret, hex.EncodeToString(buf))
}
