package app

import (
	"context"

	"github.com/alexanderramin/docket/internal/domain"
	"github.com/alexanderramin/docket/internal/importer"
)

type CreateAssignmentUseCase interface {
	Create(ctx context.Context, req CreateAssignmentRequest) (*CreateAssignmentResult, error)
}

type SweepUseCase interface {
	Sweep(ctx context.Context, req SweepRequest) (*SweepReport, error)
}

type EmployeeEventUseCase interface {
	HandleEvent(ctx context.Context, ev domain.EmployeeEvent) (*RulePreview, error)
	Preview(ctx context.Context, ev domain.EmployeeEvent) (*RulePreview, error)
}

type TemplateStatsUseCase interface {
	Stats(ctx context.Context, templateID string) (*TemplateStats, error)
	AllStats(ctx context.Context, includeArchived bool) ([]TemplateStats, error)
}

type ImportResult struct {
	TemplatesCreated  int
	TemplatesUpdated  int
	EmployeesUpserted int
}

type ImportCatalogUseCase interface {
	ImportCatalog(ctx context.Context, filePath string) (*ImportResult, error)
	ImportCatalogFromSchema(ctx context.Context, c *importer.Catalog) (*ImportResult, error)
}
