package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/docket/internal/db"
	"github.com/alexanderramin/docket/internal/domain"
)

const instanceColumns = `id, template_id, assigned_by, assigned_at, source, trigger_event, note`

type SQLiteInstanceRepo struct {
	db db.DBTX
}

func NewSQLiteInstanceRepo(q db.DBTX) *SQLiteInstanceRepo {
	return &SQLiteInstanceRepo{db: q}
}

func (r *SQLiteInstanceRepo) Create(ctx context.Context, i *domain.AssignmentInstance) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO assignment_instances (`+instanceColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		i.ID, i.TemplateID, i.AssignedBy, timeToString(i.AssignedAt), string(i.Source), string(i.Trigger), i.Note,
	)
	if err != nil {
		return fmt.Errorf("inserting assignment instance: %w", err)
	}
	return nil
}

func (r *SQLiteInstanceRepo) GetByID(ctx context.Context, id string) (*domain.AssignmentInstance, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+instanceColumns+` FROM assignment_instances WHERE id = ?`, id)
	i, err := scanInstance(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("assignment instance %s: %w", id, ErrNotFound)
	}
	return i, err
}

// ListByTemplate returns a template's send history, newest first.
func (r *SQLiteInstanceRepo) ListByTemplate(ctx context.Context, templateID string) ([]*domain.AssignmentInstance, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+instanceColumns+` FROM assignment_instances WHERE template_id = ? ORDER BY assigned_at DESC, id`,
		templateID)
	if err != nil {
		return nil, fmt.Errorf("listing assignment instances: %w", err)
	}
	defer rows.Close()

	var out []*domain.AssignmentInstance
	for rows.Next() {
		i, err := scanInstance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating assignment instances: %w", err)
	}
	return out, nil
}

func scanInstance(row rowScanner) (*domain.AssignmentInstance, error) {
	var i domain.AssignmentInstance
	var assignedAt, source, trigger string
	if err := row.Scan(&i.ID, &i.TemplateID, &i.AssignedBy, &assignedAt, &source, &trigger, &i.Note); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning assignment instance: %w", err)
	}
	i.Source = domain.InstanceSource(source)
	i.Trigger = domain.Trigger(trigger)
	var err error
	if i.AssignedAt, err = parseTime(assignedAt, "assigned_at"); err != nil {
		return nil, err
	}
	return &i, nil
}
