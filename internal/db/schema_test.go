package db

import (
	"testing"
)

func TestEnsureSchemaIdempotent(t *testing.T) {
	database := NewTestDB(t)

	if err := EnsureSchema(database); err != nil {
		t.Fatalf("second EnsureSchema: %v", err)
	}
}

func TestAuditLogAppendOnly(t *testing.T) {
	database := NewTestDB(t)

	_, err := database.Exec(
		`INSERT INTO audit_log (entity_type, entity_id, action, changed_at) VALUES ('Area', '1', 'CREATE', CURRENT_TIMESTAMP)`,
	)
	if err != nil {
		t.Fatalf("inserting audit entry: %v", err)
	}

	if _, err := database.Exec(`UPDATE audit_log SET action = 'DELETE'`); err == nil {
		t.Error("expected update of audit_log to fail")
	}
	if _, err := database.Exec(`DELETE FROM audit_log`); err == nil {
		t.Error("expected delete from audit_log to fail")
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	database := NewTestDB(t)

	_, err := database.Exec(`INSERT INTO areas (name, parent_id) VALUES ('Orphan', 999)`)
	if err == nil {
		t.Error("expected foreign key violation for unknown parent area")
	}
}

func TestFileDatabaseUsesWAL(t *testing.T) {
	database := NewTestFileDB(t)

	var mode string
	if err := database.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatalf("reading journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("expected wal journal mode, got %q", mode)
	}

	// Revocations must reference an existing user.
	_, err := database.Exec(
		`INSERT INTO revoked_tokens (jti, user_id, revoked_at, expires_at) VALUES ('x', 999, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
	)
	if err == nil {
		t.Error("expected revocation for unknown user to fail")
	}
}
