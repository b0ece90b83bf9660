package repository

import (
	"context"

	"github.com/alexanderramin/docket/internal/domain"
)

// ErrNotFound is returned when a lookup matches no row. It is the domain
// sentinel so callers can test for it without importing this package.
var ErrNotFound = domain.ErrNotFound

type TemplateRepo interface {
	Create(ctx context.Context, t *domain.Template) error
	GetByID(ctx context.Context, id string) (*domain.Template, error)
	GetByName(ctx context.Context, name string) (*domain.Template, error)
	List(ctx context.Context, includeArchived bool) ([]*domain.Template, error)
	Update(ctx context.Context, t *domain.Template) error
}

// EmployeeRepo is the engine's read model of the employee directory.
type EmployeeRepo interface {
	Upsert(ctx context.Context, e *domain.Employee) error
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
	List(ctx context.Context) ([]*domain.Employee, error)
}

type InstanceRepo interface {
	Create(ctx context.Context, i *domain.AssignmentInstance) error
	GetByID(ctx context.Context, id string) (*domain.AssignmentInstance, error)
	ListByTemplate(ctx context.Context, templateID string) ([]*domain.AssignmentInstance, error)
}

// AssignmentRepo persists assignments together with their fired-step set.
// Update is optimistic: it fails with domain.ErrStateConflict when the row's
// version moved since the assignment was loaded.
type AssignmentRepo interface {
	Create(ctx context.Context, a *domain.Assignment) error
	GetByID(ctx context.Context, id string) (*domain.Assignment, error)
	Update(ctx context.Context, a *domain.Assignment) error
	ListByTemplate(ctx context.Context, templateID string) ([]*domain.Assignment, error)
	ListByInstance(ctx context.Context, instanceID string) ([]*domain.Assignment, error)
	ListByPair(ctx context.Context, templateID, recipientID string) ([]*domain.Assignment, error)
	ListByStatus(ctx context.Context, statuses ...domain.Status) ([]*domain.Assignment, error)
	// RecordFire stores a fired-step marker. A marker that already exists
	// yields domain.ErrStateConflict.
	RecordFire(ctx context.Context, assignmentID string, f domain.FiredStep) error
}

type TransitionRepo interface {
	Append(ctx context.Context, t *domain.Transition) error
	ListByAssignment(ctx context.Context, assignmentID string) ([]*domain.Transition, error)
}

// NotificationRepo is the delivery log of notifier calls.
type NotificationRepo interface {
	Record(ctx context.Context, n *domain.NotificationRecord) error
	ListByAssignment(ctx context.Context, assignmentID string) ([]*domain.NotificationRecord, error)
}
