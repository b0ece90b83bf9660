package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate applies every schema statement. Statements are idempotent, so the
// whole list re-runs on each open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN has no IF NOT EXISTS form.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS templates (
		id                    TEXT PRIMARY KEY,
		name                  TEXT NOT NULL,
		description           TEXT NOT NULL DEFAULT '',
		category              TEXT NOT NULL
		                      CHECK(category IN ('signing','certification','write_up','custom_form')),
		tracking_mode         TEXT NOT NULL
		                      CHECK(tracking_mode IN ('progress','compliance','issuance')),
		escalation_policy     TEXT NOT NULL DEFAULT '[]',
		auto_assign_rules     TEXT NOT NULL DEFAULT '[]',
		permissions           TEXT NOT NULL DEFAULT '{}',
		warn_window_days      INTEGER NOT NULL DEFAULT 30 CHECK(warn_window_days >= 0),
		allow_decline         INTEGER NOT NULL DEFAULT 0,
		requires_verification INTEGER NOT NULL DEFAULT 0,
		archived_at           TEXT,
		created_at            TEXT NOT NULL,
		updated_at            TEXT NOT NULL
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_templates_name ON templates(name COLLATE NOCASE)`,

	`CREATE TABLE IF NOT EXISTS employees (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL DEFAULT '',
		job_title  TEXT NOT NULL DEFAULT '',
		location   TEXT NOT NULL DEFAULT '',
		role       TEXT NOT NULL DEFAULT '',
		manager_id TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS assignment_instances (
		id          TEXT PRIMARY KEY,
		template_id TEXT NOT NULL REFERENCES templates(id),
		assigned_by TEXT NOT NULL,
		assigned_at TEXT NOT NULL,
		source      TEXT NOT NULL DEFAULT 'manual'
		            CHECK(source IN ('manual','auto_assign')),
		trigger_event TEXT NOT NULL DEFAULT '',
		note        TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE INDEX IF NOT EXISTS idx_instances_template ON assignment_instances(template_id)`,

	`CREATE TABLE IF NOT EXISTS assignments (
		id               TEXT PRIMARY KEY,
		template_id      TEXT NOT NULL REFERENCES templates(id),
		recipient_id     TEXT NOT NULL,
		instance_id      TEXT NOT NULL REFERENCES assignment_instances(id),
		status           TEXT NOT NULL DEFAULT 'created'
		                 CHECK(status IN ('created','scheduled','awaiting_action','pending_verification',
		                                  'resolved_positive','resolved_negative','expired_no_response')),
		scheduled_at     TEXT,
		sent_at          TEXT,
		due_at           TEXT,
		valid_until      TEXT,
		reminders_sent   INTEGER NOT NULL DEFAULT 0 CHECK(reminders_sent >= 0),
		last_reminder_at TEXT,
		rejection_count  INTEGER NOT NULL DEFAULT 0,
		cycle            INTEGER NOT NULL DEFAULT 1 CHECK(cycle > 0),
		submission       TEXT,
		resolution       TEXT,
		access_token     TEXT NOT NULL DEFAULT '',
		version          INTEGER NOT NULL DEFAULT 0,
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL
	)`,

	`ALTER TABLE assignments ADD COLUMN last_rejection_reason TEXT NOT NULL DEFAULT ''`,

	`CREATE INDEX IF NOT EXISTS idx_assignments_status ON assignments(status)`,
	`CREATE INDEX IF NOT EXISTS idx_assignments_template ON assignments(template_id)`,
	`CREATE INDEX IF NOT EXISTS idx_assignments_pair ON assignments(template_id, recipient_id)`,
	`CREATE INDEX IF NOT EXISTS idx_assignments_instance ON assignments(instance_id)`,

	`CREATE TABLE IF NOT EXISTS escalation_fires (
		assignment_id TEXT NOT NULL REFERENCES assignments(id),
		cycle         INTEGER NOT NULL,
		day_offset    INTEGER NOT NULL CHECK(day_offset >= 0),
		action        TEXT NOT NULL
		              CHECK(action IN ('remind','notify_manager','notify_hr','mark_refused')),
		fired_at      TEXT NOT NULL,
		PRIMARY KEY (assignment_id, cycle, day_offset, action)
	)`,

	`CREATE TABLE IF NOT EXISTS assignment_transitions (
		id            TEXT PRIMARY KEY,
		assignment_id TEXT NOT NULL REFERENCES assignments(id),
		from_status   TEXT NOT NULL,
		to_status     TEXT NOT NULL,
		event         TEXT NOT NULL,
		actor         TEXT NOT NULL,
		note          TEXT NOT NULL DEFAULT '',
		at            TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_transitions_assignment ON assignment_transitions(assignment_id, at)`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id            TEXT PRIMARY KEY,
		assignment_id TEXT NOT NULL,
		audience      TEXT NOT NULL CHECK(audience IN ('recipient','manager','hr')),
		channels      TEXT NOT NULL DEFAULT '',
		kind          TEXT NOT NULL,
		success       INTEGER NOT NULL,
		error         TEXT NOT NULL DEFAULT '',
		at            TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_notifications_assignment ON notifications(assignment_id, at)`,
}
