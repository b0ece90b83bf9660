package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/docket/internal/db"
	"github.com/alexanderramin/docket/internal/domain"
)

type SQLiteTransitionRepo struct {
	db db.DBTX
}

func NewSQLiteTransitionRepo(q db.DBTX) *SQLiteTransitionRepo {
	return &SQLiteTransitionRepo{db: q}
}

func (r *SQLiteTransitionRepo) Append(ctx context.Context, t *domain.Transition) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO assignment_transitions (id, assignment_id, from_status, to_status, event, actor, note, at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.AssignmentID, string(t.From), string(t.To), t.Event, t.Actor, t.Note, timeToString(t.At),
	)
	if err != nil {
		return fmt.Errorf("inserting transition: %w", err)
	}
	return nil
}

// ListByAssignment returns the audit trail oldest first.
func (r *SQLiteTransitionRepo) ListByAssignment(ctx context.Context, assignmentID string) ([]*domain.Transition, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, assignment_id, from_status, to_status, event, actor, note, at
		FROM assignment_transitions WHERE assignment_id = ? ORDER BY at, rowid`, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("listing transitions: %w", err)
	}
	defer rows.Close()

	var out []*domain.Transition
	for rows.Next() {
		var t domain.Transition
		var from, to, at string
		if err := rows.Scan(&t.ID, &t.AssignmentID, &from, &to, &t.Event, &t.Actor, &t.Note, &at); err != nil {
			return nil, fmt.Errorf("scanning transition: %w", err)
		}
		t.From, t.To = domain.Status(from), domain.Status(to)
		if t.At, err = parseTime(at, "at"); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transitions: %w", err)
	}
	return out, nil
}

type SQLiteNotificationRepo struct {
	db db.DBTX
}

func NewSQLiteNotificationRepo(q db.DBTX) *SQLiteNotificationRepo {
	return &SQLiteNotificationRepo{db: q}
}

func (r *SQLiteNotificationRepo) Record(ctx context.Context, n *domain.NotificationRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (id, assignment_id, audience, channels, kind, success, error, at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.AssignmentID, string(n.Audience), joinChannels(n.Channels), n.Kind,
		boolToInt(n.Success), n.Error, timeToString(n.At),
	)
	if err != nil {
		return fmt.Errorf("inserting notification record: %w", err)
	}
	return nil
}

func (r *SQLiteNotificationRepo) ListByAssignment(ctx context.Context, assignmentID string) ([]*domain.NotificationRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, assignment_id, audience, channels, kind, success, error, at
		FROM notifications WHERE assignment_id = ? ORDER BY at, rowid`, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("listing notification records: %w", err)
	}
	defer rows.Close()

	var out []*domain.NotificationRecord
	for rows.Next() {
		var n domain.NotificationRecord
		var audience, channels, at string
		var success int
		if err := rows.Scan(&n.ID, &n.AssignmentID, &audience, &channels, &n.Kind, &success, &n.Error, &at); err != nil {
			return nil, fmt.Errorf("scanning notification record: %w", err)
		}
		n.Audience = domain.Audience(audience)
		n.Channels = splitChannels(channels)
		n.Success = intToBool(success)
		if n.At, err = parseTime(at, "at"); err != nil {
			return nil, err
		}
		out = append(out, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notification records: %w", err)
	}
	return out, nil
}

func joinChannels(cs []domain.Channel) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = string(c)
	}
	return strings.Join(parts, ",")
}

func splitChannels(s string) []domain.Channel {
	if s == "" {
		return nil
	}
	var out []domain.Channel
	for _, p := range strings.Split(s, ",") {
		out = append(out, domain.Channel(p))
	}
	return out
}
