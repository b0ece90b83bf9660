package app

import (
	"github.com/alexanderramin/docket/internal/autoassign"
	"github.com/alexanderramin/docket/internal/domain"
)

// RulePreview is the auto-assign planner's output for one employee event.
// Created is empty for a dry run.
type RulePreview struct {
	Event     domain.EmployeeEvent
	Employee  *domain.Employee
	Decisions []autoassign.Decision
	Created   []*domain.Assignment
	Applied   bool
}

// RuleTestResult lists the employees a rule selects today.
type RuleTestResult struct {
	Rule    domain.AutoAssignRule
	Matches []*domain.Employee
	Scanned int
}
