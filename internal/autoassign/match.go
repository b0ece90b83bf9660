// Package autoassign evaluates auto-assign rules against employee records.
// Everything here is pure: the service layer loads templates, employees and
// existing assignments, and applies the plan this package produces.
package autoassign

import (
	"slices"

	"github.com/alexanderramin/docket/internal/domain"
)

// Matches reports whether rule applies to e. Empty condition lists match any
// value; values compare trimmed and case-insensitively.
func Matches(rule domain.AutoAssignRule, e *domain.Employee) bool {
	if !rule.Enabled || e == nil {
		return false
	}
	c := rule.Conditions
	return matchesAny(c.JobTitles, e.JobTitle) &&
		matchesAny(c.Locations, e.Location) &&
		matchesAny(c.Roles, e.Role)
}

func matchesAny(allowed []string, v string) bool {
	if len(allowed) == 0 {
		return true
	}
	key := domain.NormalizeKey(v)
	if key == "" {
		return false
	}
	return slices.ContainsFunc(allowed, func(a string) bool {
		return domain.NormalizeKey(a) == key
	})
}

// MatchingEmployees returns the employees a rule would select, in input order.
// The trigger is ignored; this answers "who does this rule cover".
func MatchingEmployees(rule domain.AutoAssignRule, employees []*domain.Employee) []*domain.Employee {
	rule.Enabled = true
	var out []*domain.Employee
	for _, e := range employees {
		if Matches(rule, e) {
			out = append(out, e)
		}
	}
	return out
}
