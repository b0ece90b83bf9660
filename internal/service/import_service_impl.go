package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/docket/internal/clock"
	"github.com/alexanderramin/docket/internal/contract"
	"github.com/alexanderramin/docket/internal/db"
	"github.com/alexanderramin/docket/internal/domain"
	"github.com/alexanderramin/docket/internal/importer"
)

type importService struct {
	uow      db.UnitOfWork
	clock    clock.Clock
	observer UseCaseObserver
}

func NewImportService(uow db.UnitOfWork, clk clock.Clock, observers ...UseCaseObserver) ImportService {
	return &importService{
		uow:      uow,
		clock:    clk,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *importService) ImportCatalog(ctx context.Context, filePath string) (*contract.ImportResult, error) {
	c, err := importer.LoadCatalog(filePath)
	if err != nil {
		return nil, fmt.Errorf("loading import file: %w", err)
	}
	return s.importCatalog(ctx, c)
}

func (s *importService) ImportCatalogFromSchema(ctx context.Context, c *importer.Catalog) (*contract.ImportResult, error) {
	return s.importCatalog(ctx, c)
}

// importCatalog upserts templates by name and employees by ID in a single
// transaction; any failure leaves the store untouched.
func (s *importService) importCatalog(ctx context.Context, c *importer.Catalog) (res *contract.ImportResult, err error) {
	now := s.clock.Now()
	defer observe(ctx, s.observer, "import-catalog", now, map[string]any{
		"templates": len(c.Templates),
		"employees": len(c.Employees),
	})(&err)

	if errs := importer.ValidateCatalog(c); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}
	converted := importer.Convert(c, now)

	res = &contract.ImportResult{}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := reposFor(tx)
		for _, t := range converted.Templates {
			existing, err := r.templates.GetByName(ctx, t.Name)
			switch {
			case errors.Is(err, domain.ErrNotFound):
				if err := r.templates.Create(ctx, t); err != nil {
					return fmt.Errorf("creating template %q: %w", t.Name, err)
				}
				res.TemplatesCreated++
			case err != nil:
				return err
			default:
				t.ID = existing.ID
				t.CreatedAt = existing.CreatedAt
				t.ArchivedAt = existing.ArchivedAt
				if err := r.templates.Update(ctx, t); err != nil {
					return fmt.Errorf("updating template %q: %w", t.Name, err)
				}
				res.TemplatesUpdated++
			}
		}
		for _, e := range converted.Employees {
			if err := r.employees.Upsert(ctx, e); err != nil {
				return fmt.Errorf("upserting employee %s: %w", e.ID, err)
			}
			res.EmployeesUpserted++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func formatValidationErrors(errs []error) error {
	return fmt.Errorf("%w: import failed with %d errors: %w", domain.ErrValidation, len(errs), errors.Join(errs...))
}
