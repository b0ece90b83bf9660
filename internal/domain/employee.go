package domain

import (
	"strings"
	"time"
)

// Employee is the engine's read model of an employee directory record. The
// directory stays the source of truth; snapshots arrive with events or imports.
type Employee struct {
	ID        string
	Name      string
	JobTitle  string
	Location  string
	Role      string
	ManagerID string
	UpdatedAt time.Time
}

// EmployeeEvent is a lifecycle event emitted by the employee directory.
type EmployeeEvent struct {
	EmployeeID string
	Type       Trigger
	// Snapshot carries the employee's attributes as of the event. When nil the
	// engine falls back to its stored read model.
	Snapshot   *Employee
	OccurredAt time.Time
}

func (e EmployeeEvent) Validate() error {
	if e.EmployeeID == "" {
		return validationf("employee event: employee id is required")
	}
	if !ValidTriggers[e.Type] {
		return validationf("employee event: unknown type %q", e.Type)
	}
	if e.Snapshot != nil && e.Snapshot.ID != "" && e.Snapshot.ID != e.EmployeeID {
		return validationf("employee event: snapshot id %q does not match %q", e.Snapshot.ID, e.EmployeeID)
	}
	return nil
}

// NormalizeKey folds an attribute value for set membership tests: location
// codes, job titles and roles compare trimmed and case-insensitively.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
