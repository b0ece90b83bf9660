package importer

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/docket/internal/domain"
)

// Converted holds the domain objects built from a catalog. Template IDs are
// fresh; the import service swaps in the existing ID when a name matches.
type Converted struct {
	Templates []*domain.Template
	Employees []*domain.Employee
}

// Convert transforms a validated Catalog into domain objects ready for persistence.
// Call ValidateCatalog first; Convert assumes the catalog is valid.
func Convert(c *Catalog, now time.Time) *Converted {
	out := &Converted{
		Templates: make([]*domain.Template, 0, len(c.Templates)),
		Employees: make([]*domain.Employee, 0, len(c.Employees)),
	}

	for _, ti := range c.Templates {
		t := &domain.Template{
			ID:             uuid.New().String(),
			Name:           strings.TrimSpace(ti.Name),
			Description:    ti.Description,
			Category:       domain.Category(ti.Category),
			TrackingMode:   domain.TrackingMode(ti.TrackingMode),
			AllowDecline:   ti.AllowDecline,
			WarnWindowDays: domain.DerefOr(domain.DefaultWarnWindowDays, ti.WarnWindowDays),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		t.ApplyDefaults()
		if ti.RequiresVerification != nil {
			t.RequiresVerification = *ti.RequiresVerification
		}
		if ti.Permissions != nil {
			t.Permissions = domain.Permissions{Locations: ti.Permissions.Locations, Roles: ti.Permissions.Roles}
		}

		if ti.RefuseAfterDays != nil {
			t.EscalationPolicy = domain.DefaultPolicy(*ti.RefuseAfterDays)
		} else {
			policy := make(domain.EscalationPolicy, 0, len(ti.Escalation))
			for _, s := range ti.Escalation {
				policy = append(policy, domain.EscalationStep{
					DayOffset: s.Day,
					Action:    domain.EscalationAction(s.Action),
					Enabled:   domain.DerefOr(true, s.Enabled),
				})
			}
			t.EscalationPolicy = policy.Sorted()
		}

		for _, r := range ti.Rules {
			id := r.ID
			if id == "" {
				id = uuid.New().String()
			}
			t.AutoAssignRules = append(t.AutoAssignRules, domain.AutoAssignRule{
				ID:      id,
				Trigger: domain.Trigger(r.Trigger),
				Conditions: domain.RuleConditions{
					JobTitles: r.JobTitles,
					Locations: r.Locations,
					Roles:     r.Roles,
				},
				Enabled: domain.DerefOr(true, r.Enabled),
			})
		}
		out.Templates = append(out.Templates, t)
	}

	for _, ei := range c.Employees {
		out.Employees = append(out.Employees, &domain.Employee{
			ID:        ei.ID,
			Name:      strings.TrimSpace(ei.Name),
			JobTitle:  ei.JobTitle,
			Location:  ei.Location,
			Role:      ei.Role,
			ManagerID: ei.ManagerID,
			UpdatedAt: now,
		})
	}
	return out
}
