package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/palete/internal/model"
)

// RevokeToken puts a token's JTI on the revocation list until it expires.
// Revoking the same JTI twice is a no-op. Entries that have already expired
// are purged on the way.
func RevokeToken(ctx context.Context, db *sql.DB, jti string, userID int64, expiresAt time.Time) error {
	if jti == "" {
		return fmt.Errorf("revoking token: empty jti: %w", model.ErrInvalidInput)
	}

	now := time.Now()
	_, err := conn(ctx, db).ExecContext(ctx,
		`INSERT OR IGNORE INTO revoked_tokens (jti, user_id, revoked_at, expires_at) VALUES (?, ?, ?, ?)`,
		jti, userID, utc(now), utc(expiresAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("revoking token: user %d: %w", userID, model.ErrNotFound)
		}
		return fmt.Errorf("revoking token: %w", err)
	}

	if _, err := PurgeExpiredTokens(ctx, db, now); err != nil {
		return err
	}
	return nil
}

// PurgeExpiredTokens drops revocations whose token expired before now. An
// expired token fails validation anyway, so its entry is no longer needed.
func PurgeExpiredTokens(ctx context.Context, db *sql.DB, now time.Time) (int64, error) {
	res, err := conn(ctx, db).ExecContext(ctx,
		`DELETE FROM revoked_tokens WHERE expires_at < ?`, utc(now),
	)
	if err != nil {
		return 0, fmt.Errorf("purging revoked tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purging revoked tokens: %w", err)
	}
	return n, nil
}

// IsTokenRevoked reports whether a token's JTI is on the revocation list.
func IsTokenRevoked(ctx context.Context, db *sql.DB, jti string) (bool, error) {
	var revoked bool
	err := conn(ctx, db).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti = ?)`, jti,
	).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("checking token revocation: %w", err)
	}
	return revoked, nil
}
