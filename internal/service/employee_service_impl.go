package service

import (
	"context"
	"strings"

	"github.com/alexanderramin/docket/internal/clock"
	"github.com/alexanderramin/docket/internal/domain"
	"github.com/alexanderramin/docket/internal/repository"
)

type employeeService struct {
	employees repository.EmployeeRepo
	clock     clock.Clock
}

func NewEmployeeService(employees repository.EmployeeRepo, clk clock.Clock) EmployeeService {
	return &employeeService{employees: employees, clock: clk}
}

func (s *employeeService) Upsert(ctx context.Context, e *domain.Employee) error {
	if err := requireID("employee", e.ID); err != nil {
		return err
	}
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		e.Name = e.ID
	}
	e.UpdatedAt = s.clock.Now()
	return s.employees.Upsert(ctx, e)
}

func (s *employeeService) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	return s.employees.GetByID(ctx, id)
}

func (s *employeeService) List(ctx context.Context) ([]*domain.Employee, error) {
	return s.employees.List(ctx)
}
