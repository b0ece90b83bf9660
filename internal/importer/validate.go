package importer

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/docket/internal/domain"
)

// ValidateCatalog checks the catalog for errors before conversion.
// Returns a slice of all validation errors found.
func ValidateCatalog(c *Catalog) []error {
	var errs []error
	errs = append(errs, validateTemplates(c.Templates)...)
	errs = append(errs, validateEmployees(c.Employees)...)
	return errs
}

func validateTemplates(templates []TemplateImport) []error {
	var errs []error
	names := make(map[string]bool)

	for i, t := range templates {
		prefix := fmt.Sprintf("templates[%d]", i)

		name := strings.TrimSpace(t.Name)
		if name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		} else if key := domain.NormalizeKey(name); names[key] {
			errs = append(errs, fmt.Errorf("%s.name: duplicate template %q", prefix, name))
		} else {
			names[key] = true
		}

		if t.Category == "" {
			errs = append(errs, fmt.Errorf("%s.category is required", prefix))
		} else if !domain.ValidCategories[domain.Category(t.Category)] {
			errs = append(errs, fmt.Errorf("%s.category: invalid value %q", prefix, t.Category))
		}
		if t.TrackingMode != "" && !domain.ValidTrackingModes[domain.TrackingMode(t.TrackingMode)] {
			errs = append(errs, fmt.Errorf("%s.tracking_mode: invalid value %q", prefix, t.TrackingMode))
		}
		if t.WarnWindowDays != nil && *t.WarnWindowDays < 0 {
			errs = append(errs, fmt.Errorf("%s.warn_window_days must be >= 0", prefix))
		}

		if t.RefuseAfterDays != nil {
			if len(t.Escalation) > 0 {
				errs = append(errs, fmt.Errorf("%s: refuse_after_days and escalation are mutually exclusive", prefix))
			}
			if *t.RefuseAfterDays < 0 {
				errs = append(errs, fmt.Errorf("%s.refuse_after_days must be >= 0", prefix))
			}
		}
		errs = append(errs, validateSteps(prefix, t.Escalation)...)
		errs = append(errs, validateRules(prefix, t.Rules)...)
	}
	return errs
}

func validateSteps(prefix string, steps []StepImport) []error {
	var errs []error
	seen := make(map[string]bool)
	for j, s := range steps {
		p := fmt.Sprintf("%s.escalation[%d]", prefix, j)
		if s.Day < 0 {
			errs = append(errs, fmt.Errorf("%s.day must be >= 0", p))
		}
		if !domain.ValidEscalationActions[domain.EscalationAction(s.Action)] {
			errs = append(errs, fmt.Errorf("%s.action: invalid value %q", p, s.Action))
		}
		key := fmt.Sprintf("%d:%s", s.Day, s.Action)
		if seen[key] {
			errs = append(errs, fmt.Errorf("%s: duplicate step day %d action %q", p, s.Day, s.Action))
		}
		seen[key] = true
	}
	return errs
}

func validateRules(prefix string, rules []RuleImport) []error {
	var errs []error
	ids := make(map[string]bool)
	for j, r := range rules {
		p := fmt.Sprintf("%s.rules[%d]", prefix, j)
		if !domain.ValidTriggers[domain.Trigger(r.Trigger)] {
			errs = append(errs, fmt.Errorf("%s.trigger: invalid value %q", p, r.Trigger))
		}
		if r.ID != "" {
			if ids[r.ID] {
				errs = append(errs, fmt.Errorf("%s.id: duplicate rule id %q", p, r.ID))
			}
			ids[r.ID] = true
		}
		for field, list := range map[string][]string{"job_titles": r.JobTitles, "locations": r.Locations, "roles": r.Roles} {
			for _, v := range list {
				if strings.TrimSpace(v) == "" {
					errs = append(errs, fmt.Errorf("%s.%s: blank value", p, field))
					break
				}
			}
		}
	}
	return errs
}

func validateEmployees(employees []EmployeeImport) []error {
	var errs []error
	ids := make(map[string]bool)
	for i, e := range employees {
		prefix := fmt.Sprintf("employees[%d]", i)
		if e.ID == "" {
			errs = append(errs, fmt.Errorf("%s.id is required", prefix))
		} else if ids[e.ID] {
			errs = append(errs, fmt.Errorf("%s.id: duplicate id %q", prefix, e.ID))
		} else {
			ids[e.ID] = true
		}
		if strings.TrimSpace(e.Name) == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}
		if e.ManagerID != "" && e.ManagerID == e.ID {
			errs = append(errs, fmt.Errorf("%s.manager_id: employee cannot manage themselves", prefix))
		}
	}
	return errs
}
