package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedAssignment(t *testing.T, db *sql.DB) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO templates (id, name, category, tracking_mode, created_at, updated_at)
		VALUES ('t1', 'Handbook', 'signing', 'progress', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO assignment_instances (id, template_id, assigned_by, assigned_at)
		VALUES ('i1', 't1', 'admin', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO assignments (id, template_id, recipient_id, instance_id, created_at, updated_at)
		VALUES ('a1', 't1', 'e1', 'i1', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"templates", "employees", "assignment_instances", "assignments",
		"escalation_fires", "assignment_transitions", "notifications",
	}
	for _, table := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"idx_templates_name",
		"idx_instances_template",
		"idx_assignments_status",
		"idx_assignments_template",
		"idx_assignments_pair",
		"idx_assignments_instance",
		"idx_transitions_assignment",
		"idx_notifications_assignment",
	}
	for _, idx := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrate_ForeignKeysEnabled(t *testing.T) {
	db := openTestDB(t)

	var fk int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestMigrate_AssignmentStatusCheckConstraint(t *testing.T) {
	db := openTestDB(t)
	seedAssignment(t, db)

	_, err := db.Exec(`UPDATE assignments SET status = 'completed' WHERE id = 'a1'`)
	require.Error(t, err, "label strings are not lifecycle states")
}

func TestMigrate_EscalationFiresPrimaryKey(t *testing.T) {
	db := openTestDB(t)
	seedAssignment(t, db)

	insert := `INSERT INTO escalation_fires (assignment_id, cycle, day_offset, action, fired_at)
		VALUES ('a1', 1, 3, 'remind', '2025-01-04T00:00:00Z')`
	_, err := db.Exec(insert)
	require.NoError(t, err)
	_, err = db.Exec(insert)
	require.Error(t, err, "a step fires once per cycle")

	_, err = db.Exec(`INSERT INTO escalation_fires (assignment_id, cycle, day_offset, action, fired_at)
		VALUES ('a1', 2, 3, 'remind', '2025-02-04T00:00:00Z')`)
	require.NoError(t, err, "the next renewal cycle may fire it again")
}

func TestMigrate_LastRejectionReasonColumn(t *testing.T) {
	db := openTestDB(t)
	seedAssignment(t, db)

	var reason string
	require.NoError(t, db.QueryRow(`SELECT last_rejection_reason FROM assignments WHERE id = 'a1'`).Scan(&reason))
	assert.Empty(t, reason)
}

func TestOpenDB_FileUsesWAL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "docket.db")
	db, err := OpenDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var mode string
	require.NoError(t, db.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)

	var fk int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
}
