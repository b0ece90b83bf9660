package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/docket/internal/db"
	"github.com/alexanderramin/docket/internal/domain"
)

const assignmentColumns = `id, template_id, recipient_id, instance_id, status,
		scheduled_at, sent_at, due_at, valid_until,
		reminders_sent, last_reminder_at, rejection_count, last_rejection_reason,
		cycle, submission, resolution, access_token, version, created_at, updated_at`

// SQLiteAssignmentRepo stores assignments in one row each and their fired
// steps in escalation_fires.
type SQLiteAssignmentRepo struct {
	db db.DBTX
}

func NewSQLiteAssignmentRepo(q db.DBTX) *SQLiteAssignmentRepo {
	return &SQLiteAssignmentRepo{db: q}
}

func (r *SQLiteAssignmentRepo) Create(ctx context.Context, a *domain.Assignment) error {
	submission, err := nullableJSON(a.Submission, "submission")
	if err != nil {
		return err
	}
	resolution, err := nullableJSON(a.Resolution, "resolution")
	if err != nil {
		return err
	}
	query := `INSERT INTO assignments (` + assignmentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		a.ID,
		a.TemplateID,
		a.RecipientID,
		a.InstanceID,
		string(a.Status),
		nullableTimeToString(a.ScheduledAt),
		nullableTimeToString(a.SentAt),
		nullableTimeToString(a.DueAt),
		nullableTimeToString(a.ValidUntil),
		a.RemindersSent,
		nullableTimeToString(a.LastReminderAt),
		a.RejectionCount,
		a.LastRejectionReason,
		a.Cycle,
		submission,
		resolution,
		a.AccessToken,
		a.Version,
		timeToString(a.CreatedAt),
		timeToString(a.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting assignment: %w", err)
	}
	for _, f := range a.FiredSteps {
		if err := r.RecordFire(ctx, a.ID, f); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteAssignmentRepo) GetByID(ctx context.Context, id string) (*domain.Assignment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+assignmentColumns+` FROM assignments WHERE id = ?`, id)
	a, err := scanAssignment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("assignment %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	if err := r.attachFires(ctx, []*domain.Assignment{a}); err != nil {
		return nil, err
	}
	return a, nil
}

// Update writes a only if nobody else updated the row since a was loaded, and
// bumps a.Version on success. Fired steps are written via RecordFire.
func (r *SQLiteAssignmentRepo) Update(ctx context.Context, a *domain.Assignment) error {
	submission, err := nullableJSON(a.Submission, "submission")
	if err != nil {
		return err
	}
	resolution, err := nullableJSON(a.Resolution, "resolution")
	if err != nil {
		return err
	}
	query := `UPDATE assignments SET status = ?,
		scheduled_at = ?, sent_at = ?, due_at = ?, valid_until = ?,
		reminders_sent = ?, last_reminder_at = ?, rejection_count = ?, last_rejection_reason = ?,
		cycle = ?, submission = ?, resolution = ?, access_token = ?,
		version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`
	res, err := r.db.ExecContext(ctx, query,
		string(a.Status),
		nullableTimeToString(a.ScheduledAt),
		nullableTimeToString(a.SentAt),
		nullableTimeToString(a.DueAt),
		nullableTimeToString(a.ValidUntil),
		a.RemindersSent,
		nullableTimeToString(a.LastReminderAt),
		a.RejectionCount,
		a.LastRejectionReason,
		a.Cycle,
		submission,
		resolution,
		a.AccessToken,
		timeToString(a.UpdatedAt),
		a.ID,
		a.Version,
	)
	if err != nil {
		return fmt.Errorf("updating assignment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating assignment: %w", err)
	}
	if n == 0 {
		var exists int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM assignments WHERE id = ?`, a.ID).Scan(&exists); errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("assignment %s: %w", a.ID, ErrNotFound)
		}
		return fmt.Errorf("assignment %s was modified concurrently: %w", a.ID, domain.ErrStateConflict)
	}
	a.Version++
	return nil
}

func (r *SQLiteAssignmentRepo) ListByTemplate(ctx context.Context, templateID string) ([]*domain.Assignment, error) {
	return r.list(ctx, `WHERE template_id = ? ORDER BY created_at, id`, templateID)
}

func (r *SQLiteAssignmentRepo) ListByInstance(ctx context.Context, instanceID string) ([]*domain.Assignment, error) {
	return r.list(ctx, `WHERE instance_id = ? ORDER BY recipient_id`, instanceID)
}

func (r *SQLiteAssignmentRepo) ListByPair(ctx context.Context, templateID, recipientID string) ([]*domain.Assignment, error) {
	return r.list(ctx, `WHERE template_id = ? AND recipient_id = ? ORDER BY created_at, id`, templateID, recipientID)
}

func (r *SQLiteAssignmentRepo) ListByStatus(ctx context.Context, statuses ...domain.Status) ([]*domain.Assignment, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	args := make([]any, len(statuses))
	for i, s := range statuses {
		args[i] = string(s)
	}
	return r.list(ctx, `WHERE status IN (`+placeholders(len(statuses))+`) ORDER BY id`, args...)
}

func (r *SQLiteAssignmentRepo) RecordFire(ctx context.Context, assignmentID string, f domain.FiredStep) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO escalation_fires (assignment_id, cycle, day_offset, action, fired_at)
		VALUES (?, ?, ?, ?, ?)`,
		assignmentID, f.Cycle, f.DayOffset, string(f.Action), timeToString(f.FiredAt),
	)
	if err != nil {
		return fmt.Errorf("recording escalation fire: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("escalation step %s already fired for %s: %w", f.Key(), assignmentID, domain.ErrStateConflict)
	}
	return nil
}

func (r *SQLiteAssignmentRepo) list(ctx context.Context, where string, args ...any) ([]*domain.Assignment, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+assignmentColumns+` FROM assignments `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("listing assignments: %w", err)
	}
	var out []*domain.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating assignments: %w", err)
	}
	// Close before the follow-up query; in-memory databases run on a single
	// connection.
	rows.Close()

	if err := r.attachFires(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// fireBatch bounds the IN list of a fired-steps lookup.
const fireBatch = 200

func (r *SQLiteAssignmentRepo) attachFires(ctx context.Context, as []*domain.Assignment) error {
	byID := make(map[string]*domain.Assignment, len(as))
	for _, a := range as {
		byID[a.ID] = a
		a.FiredSteps = nil
	}
	for start := 0; start < len(as); start += fireBatch {
		end := min(start+fireBatch, len(as))
		args := make([]any, 0, end-start)
		for _, a := range as[start:end] {
			args = append(args, a.ID)
		}
		rows, err := r.db.QueryContext(ctx,
			`SELECT assignment_id, cycle, day_offset, action, fired_at FROM escalation_fires
			WHERE assignment_id IN (`+placeholders(len(args))+`)
			ORDER BY cycle, day_offset, fired_at`, args...)
		if err != nil {
			return fmt.Errorf("loading escalation fires: %w", err)
		}
		for rows.Next() {
			var id, action, firedAt string
			var f domain.FiredStep
			if err := rows.Scan(&id, &f.Cycle, &f.DayOffset, &action, &firedAt); err != nil {
				rows.Close()
				return fmt.Errorf("scanning escalation fire: %w", err)
			}
			f.Action = domain.EscalationAction(action)
			if f.FiredAt, err = parseTime(firedAt, "fired_at"); err != nil {
				rows.Close()
				return err
			}
			if a := byID[id]; a != nil {
				a.FiredSteps = append(a.FiredSteps, f)
			}
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return fmt.Errorf("iterating escalation fires: %w", err)
		}
	}
	return nil
}

func scanAssignment(row rowScanner) (*domain.Assignment, error) {
	var a domain.Assignment
	var status, createdAt, updatedAt string
	var scheduledAt, sentAt, dueAt, validUntil, lastReminderAt sql.NullString
	var submission, resolution sql.NullString

	err := row.Scan(
		&a.ID, &a.TemplateID, &a.RecipientID, &a.InstanceID, &status,
		&scheduledAt, &sentAt, &dueAt, &validUntil,
		&a.RemindersSent, &lastReminderAt, &a.RejectionCount, &a.LastRejectionReason,
		&a.Cycle, &submission, &resolution, &a.AccessToken, &a.Version, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning assignment: %w", err)
	}

	a.Status = domain.Status(status)
	a.ScheduledAt = parseNullableTime(scheduledAt)
	a.SentAt = parseNullableTime(sentAt)
	a.DueAt = parseNullableTime(dueAt)
	a.ValidUntil = parseNullableTime(validUntil)
	a.LastReminderAt = parseNullableTime(lastReminderAt)

	if a.Submission, err = unmarshalNullableJSON[domain.Submission](submission, "submission"); err != nil {
		return nil, err
	}
	if a.Resolution, err = unmarshalNullableJSON[domain.Resolution](resolution, "resolution"); err != nil {
		return nil, err
	}
	if a.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if a.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &a, nil
}
