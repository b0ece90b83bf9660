package cli

import "github.com/alexanderramin/docket/internal/app"

func (a *App) createAssignmentUseCase() app.CreateAssignmentUseCase {
	if a.CreateAssignment != nil {
		return a.CreateAssignment
	}
	return a.Assignments
}

func (a *App) sweepUseCase() app.SweepUseCase {
	if a.Sweep != nil {
		return a.Sweep
	}
	return a.Escalation
}

func (a *App) employeeEventUseCase() app.EmployeeEventUseCase {
	if a.EmployeeEvent != nil {
		return a.EmployeeEvent
	}
	return a.AutoAssign
}

func (a *App) templateStatsUseCase() app.TemplateStatsUseCase {
	if a.TemplateStats != nil {
		return a.TemplateStats
	}
	return a.Directory
}

func (a *App) importCatalogUseCase() app.ImportCatalogUseCase {
	if a.ImportCatalog != nil {
		return a.ImportCatalog
	}
	return a.Import
}
