package service

import (
	"context"
	"time"

	"github.com/alexanderramin/docket/internal/contract"
	"github.com/alexanderramin/docket/internal/domain"
	"github.com/alexanderramin/docket/internal/importer"
)

type TemplateService interface {
	Create(ctx context.Context, t *domain.Template) error
	GetByID(ctx context.Context, id string) (*domain.Template, error)
	// Resolve accepts a template ID or a case-insensitive name.
	Resolve(ctx context.Context, idOrName string) (*domain.Template, error)
	List(ctx context.Context, includeArchived bool) ([]*domain.Template, error)
	Archive(ctx context.Context, id string) error
	Unarchive(ctx context.Context, id string) error
	EditEscalationPolicy(ctx context.Context, id string, policy domain.EscalationPolicy) (*domain.Template, error)
	EditAutoAssignRules(ctx context.Context, id string, rules []domain.AutoAssignRule) (*domain.Template, error)
	UpsertRule(ctx context.Context, templateID string, rule domain.AutoAssignRule) (domain.AutoAssignRule, error)
	RemoveRule(ctx context.Context, templateID, ruleID string) error
}

type EmployeeService interface {
	Upsert(ctx context.Context, e *domain.Employee) error
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
	List(ctx context.Context) ([]*domain.Employee, error)
}

// AssignmentService issues lifecycle commands. Every command reloads the
// assignment in its own transaction; a concurrent writer surfaces as
// domain.ErrStateConflict.
type AssignmentService interface {
	Create(ctx context.Context, req contract.CreateAssignmentRequest) (*contract.CreateAssignmentResult, error)
	Schedule(ctx context.Context, id string, actor domain.Actor, at time.Time) (*domain.Assignment, error)
	Send(ctx context.Context, id string, actor domain.Actor) (*domain.Assignment, error)
	Submit(ctx context.Context, id string, actor domain.Actor, sub domain.Submission) (*domain.Assignment, error)
	Approve(ctx context.Context, id string, actor domain.Actor, note string) (*domain.Assignment, error)
	Reject(ctx context.Context, id string, actor domain.Actor, reason string) (*domain.Assignment, error)
	Decline(ctx context.Context, id string, actor domain.Actor, reason string) (*domain.Assignment, error)
	Cancel(ctx context.Context, id string, actor domain.Actor, reason string) (*domain.Assignment, error)
	Remind(ctx context.Context, id string, actor domain.Actor, channels []domain.Channel) (*domain.Assignment, error)
}

type EscalationService interface {
	Sweep(ctx context.Context, req contract.SweepRequest) (*contract.SweepReport, error)
}

type AutoAssignService interface {
	HandleEvent(ctx context.Context, ev domain.EmployeeEvent) (*contract.RulePreview, error)
	Preview(ctx context.Context, ev domain.EmployeeEvent) (*contract.RulePreview, error)
	TestRule(ctx context.Context, rule domain.AutoAssignRule) (*contract.RuleTestResult, error)
}

type DirectoryService interface {
	Get(ctx context.Context, assignmentID string) (*contract.AssignmentView, error)
	History(ctx context.Context, assignmentID string) (*contract.AssignmentHistory, error)
	ListAssignments(ctx context.Context, templateID string, filter contract.ListFilter) ([]contract.AssignmentView, error)
	ListInstances(ctx context.Context, templateID string) ([]*domain.AssignmentInstance, error)
	Stats(ctx context.Context, templateID string) (*contract.TemplateStats, error)
	AllStats(ctx context.Context, includeArchived bool) ([]contract.TemplateStats, error)
}

type ImportService interface {
	ImportCatalog(ctx context.Context, filePath string) (*contract.ImportResult, error)
	ImportCatalogFromSchema(ctx context.Context, c *importer.Catalog) (*contract.ImportResult, error)
}
