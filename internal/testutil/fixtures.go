package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/docket/internal/domain"
	"github.com/google/uuid"
)

// FixtureNow is the creation timestamp stamped on fixtures.
var FixtureNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

var employeeCounter atomic.Int64

// Template options
type TemplateOption func(*domain.Template)

func WithCategory(c domain.Category) TemplateOption {
	return func(t *domain.Template) {
		t.Category = c
		t.TrackingMode = ""
		t.RequiresVerification = false
	}
}

func WithTrackingMode(m domain.TrackingMode) TemplateOption {
	return func(t *domain.Template) {
		t.TrackingMode = m
	}
}

func WithPolicy(steps ...domain.EscalationStep) TemplateOption {
	return func(t *domain.Template) {
		t.EscalationPolicy = domain.EscalationPolicy(steps).Sorted()
	}
}

func WithRules(rules ...domain.AutoAssignRule) TemplateOption {
	return func(t *domain.Template) {
		t.AutoAssignRules = rules
	}
}

func WithPermissions(p domain.Permissions) TemplateOption {
	return func(t *domain.Template) {
		t.Permissions = p
	}
}

func WithAllowDecline() TemplateOption {
	return func(t *domain.Template) {
		t.AllowDecline = true
	}
}

func WithWarnWindow(days int) TemplateOption {
	return func(t *domain.Template) {
		t.WarnWindowDays = days
	}
}

func WithArchivedAt(at time.Time) TemplateOption {
	return func(t *domain.Template) {
		t.ArchivedAt = &at
	}
}

// NewTestTemplate returns a signing template in progress mode unless options
// say otherwise. Category defaults are applied after the options.
func NewTestTemplate(name string, opts ...TemplateOption) *domain.Template {
	t := &domain.Template{
		ID:             uuid.New().String(),
		Name:           name,
		Category:       domain.CategorySigning,
		WarnWindowDays: domain.DefaultWarnWindowDays,
		CreatedAt:      FixtureNow,
		UpdatedAt:      FixtureNow,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.ApplyDefaults()
	return t
}

// Step is shorthand for an enabled escalation step.
func Step(day int, action domain.EscalationAction) domain.EscalationStep {
	return domain.EscalationStep{DayOffset: day, Action: action, Enabled: true}
}

// Rule is shorthand for an enabled auto-assign rule.
func Rule(trigger domain.Trigger, cond domain.RuleConditions) domain.AutoAssignRule {
	return domain.AutoAssignRule{ID: uuid.New().String(), Trigger: trigger, Conditions: cond, Enabled: true}
}

// Employee options
type EmployeeOption func(*domain.Employee)

func WithJobTitle(title string) EmployeeOption {
	return func(e *domain.Employee) {
		e.JobTitle = title
	}
}

func WithLocation(loc string) EmployeeOption {
	return func(e *domain.Employee) {
		e.Location = loc
	}
}

func WithEmployeeRole(role string) EmployeeOption {
	return func(e *domain.Employee) {
		e.Role = role
	}
}

func WithManager(id string) EmployeeOption {
	return func(e *domain.Employee) {
		e.ManagerID = id
	}
}

func NewTestEmployee(name string, opts ...EmployeeOption) *domain.Employee {
	n := employeeCounter.Add(1)
	e := &domain.Employee{
		ID:        fmt.Sprintf("emp-%03d", n),
		Name:      name,
		JobTitle:  "Cook",
		Location:  "Downtown",
		Role:      "staff",
		UpdatedAt: FixtureNow,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewTestInstance returns a manual send instance for templateID.
func NewTestInstance(templateID string) *domain.AssignmentInstance {
	return &domain.AssignmentInstance{
		ID:         uuid.New().String(),
		TemplateID: templateID,
		AssignedBy: "admin",
		AssignedAt: FixtureNow,
		Source:     domain.SourceManual,
	}
}

// Assignment options
type AssignmentOption func(*domain.Assignment)

// WithSentAt marks the assignment sent at the given time.
func WithSentAt(at time.Time) AssignmentOption {
	return func(a *domain.Assignment) {
		a.Status = domain.StatusAwaitingAction
		a.SentAt = &at
	}
}

func WithStatus(s domain.Status) AssignmentOption {
	return func(a *domain.Assignment) {
		a.Status = s
	}
}

func WithDueAt(at time.Time) AssignmentOption {
	return func(a *domain.Assignment) {
		a.DueAt = &at
	}
}

func WithValidUntil(at time.Time) AssignmentOption {
	return func(a *domain.Assignment) {
		a.ValidUntil = &at
	}
}

func WithScheduledAt(at time.Time) AssignmentOption {
	return func(a *domain.Assignment) {
		a.Status = domain.StatusScheduled
		a.ScheduledAt = &at
	}
}

func NewTestAssignment(templateID, recipientID, instanceID string, opts ...AssignmentOption) *domain.Assignment {
	a := domain.NewAssignment(templateID, recipientID, instanceID, FixtureNow)
	for _, opt := range opts {
		opt(a)
	}
	return a
}
