package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexanderramin/docket/internal/db"
	"github.com/alexanderramin/docket/internal/domain"
)

const templateColumns = `id, name, description, category, tracking_mode,
		escalation_policy, auto_assign_rules, permissions,
		warn_window_days, allow_decline, requires_verification,
		archived_at, created_at, updated_at`

// SQLiteTemplateRepo stores templates with policy, rules and permissions as
// JSON columns.
type SQLiteTemplateRepo struct {
	db db.DBTX
}

func NewSQLiteTemplateRepo(q db.DBTX) *SQLiteTemplateRepo {
	return &SQLiteTemplateRepo{db: q}
}

func (r *SQLiteTemplateRepo) encode(t *domain.Template) (policy, rules, perms string, err error) {
	if policy, err = marshalJSON(nonNilPolicy(t.EscalationPolicy), "escalation_policy"); err != nil {
		return
	}
	if rules, err = marshalJSON(nonNilRules(t.AutoAssignRules), "auto_assign_rules"); err != nil {
		return
	}
	perms, err = marshalJSON(t.Permissions, "permissions")
	return
}

func (r *SQLiteTemplateRepo) Create(ctx context.Context, t *domain.Template) error {
	policy, rules, perms, err := r.encode(t)
	if err != nil {
		return err
	}
	query := `INSERT INTO templates (` + templateColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		t.ID,
		t.Name,
		t.Description,
		string(t.Category),
		string(t.TrackingMode),
		policy,
		rules,
		perms,
		t.WarnWindowDays,
		boolToInt(t.AllowDecline),
		boolToInt(t.RequiresVerification),
		nullableTimeToString(t.ArchivedAt),
		timeToString(t.CreatedAt),
		timeToString(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting template: %w", err)
	}
	return nil
}

func (r *SQLiteTemplateRepo) GetByID(ctx context.Context, id string) (*domain.Template, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM templates WHERE id = ?`, id)
	return r.scanTemplate(row)
}

func (r *SQLiteTemplateRepo) GetByName(ctx context.Context, name string) (*domain.Template, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM templates WHERE name = ? COLLATE NOCASE`, name)
	return r.scanTemplate(row)
}

func (r *SQLiteTemplateRepo) List(ctx context.Context, includeArchived bool) ([]*domain.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates`
	if !includeArchived {
		query += ` WHERE archived_at IS NULL`
	}
	query += ` ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	defer rows.Close()

	var out []*domain.Template
	for rows.Next() {
		t, err := r.scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating templates: %w", err)
	}
	return out, nil
}

func (r *SQLiteTemplateRepo) Update(ctx context.Context, t *domain.Template) error {
	policy, rules, perms, err := r.encode(t)
	if err != nil {
		return err
	}
	query := `UPDATE templates SET name = ?, description = ?, category = ?, tracking_mode = ?,
		escalation_policy = ?, auto_assign_rules = ?, permissions = ?,
		warn_window_days = ?, allow_decline = ?, requires_verification = ?,
		archived_at = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		t.Name,
		t.Description,
		string(t.Category),
		string(t.TrackingMode),
		policy,
		rules,
		perms,
		t.WarnWindowDays,
		boolToInt(t.AllowDecline),
		boolToInt(t.RequiresVerification),
		nullableTimeToString(t.ArchivedAt),
		timeToString(t.UpdatedAt),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("template %s: %w", t.ID, ErrNotFound)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteTemplateRepo) scanTemplate(row rowScanner) (*domain.Template, error) {
	var t domain.Template
	var category, mode, policy, rules, perms, createdAt, updatedAt string
	var allowDecline, requiresVerification int
	var archivedAt sql.NullString

	err := row.Scan(
		&t.ID, &t.Name, &t.Description, &category, &mode,
		&policy, &rules, &perms,
		&t.WarnWindowDays, &allowDecline, &requiresVerification,
		&archivedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("template: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning template: %w", err)
	}

	t.Category = domain.Category(category)
	t.TrackingMode = domain.TrackingMode(mode)
	t.AllowDecline = intToBool(allowDecline)
	t.RequiresVerification = intToBool(requiresVerification)
	t.ArchivedAt = parseNullableTime(archivedAt)

	if err := json.Unmarshal([]byte(policy), &t.EscalationPolicy); err != nil {
		return nil, fmt.Errorf("decoding escalation_policy: %w", err)
	}
	if err := json.Unmarshal([]byte(rules), &t.AutoAssignRules); err != nil {
		return nil, fmt.Errorf("decoding auto_assign_rules: %w", err)
	}
	if err := json.Unmarshal([]byte(perms), &t.Permissions); err != nil {
		return nil, fmt.Errorf("decoding permissions: %w", err)
	}
	if t.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &t, nil
}

func nonNilPolicy(p domain.EscalationPolicy) domain.EscalationPolicy {
	if p == nil {
		return domain.EscalationPolicy{}
	}
	return p
}

func nonNilRules(r []domain.AutoAssignRule) []domain.AutoAssignRule {
	if r == nil {
		return []domain.AutoAssignRule{}
	}
	return r
}
