package autoassign

import (
	"sort"
	"time"

	"github.com/alexanderramin/docket/internal/domain"
	"github.com/alexanderramin/docket/internal/scheduler"
)

type DecisionKind string

const (
	// DecisionAssign creates and sends a new assignment.
	DecisionAssign DecisionKind = "assign"
	// DecisionSkipActive leaves an existing active assignment in place.
	DecisionSkipActive DecisionKind = "skip_active"
	// DecisionSkipArchived records that a matching rule belongs to an
	// archived template.
	DecisionSkipArchived DecisionKind = "skip_archived"
)

// Decision is the planner's verdict for one template.
type Decision struct {
	TemplateID   string       `json:"template_id"`
	TemplateName string       `json:"template_name"`
	RuleID       string       `json:"rule_id"`
	EmployeeID   string       `json:"employee_id"`
	Kind         DecisionKind `json:"kind"`
	// ExistingID is the blocking assignment for DecisionSkipActive.
	ExistingID string `json:"existing_id,omitempty"`
}

// Input is everything the planner looks at for one employee event.
type Input struct {
	Trigger   domain.Trigger
	Employee  *domain.Employee
	Templates []*domain.Template
	// Existing holds the employee's assignments keyed by template ID.
	Existing map[string][]*domain.Assignment
	Now      time.Time
}

// Plan returns at most one decision per template whose enabled rules match
// the event, sorted by template name. The first matching rule (in configured
// order) is credited.
func Plan(in Input) []Decision {
	var out []Decision
	for _, t := range in.Templates {
		rule, ok := firstMatch(t.AutoAssignRules, in.Trigger, in.Employee)
		if !ok {
			continue
		}
		d := Decision{
			TemplateID:   t.ID,
			TemplateName: t.Name,
			RuleID:       rule.ID,
			EmployeeID:   in.Employee.ID,
			Kind:         DecisionAssign,
		}
		switch {
		case t.IsArchived():
			d.Kind = DecisionSkipArchived
		default:
			if blocking := Blocking(in.Existing[t.ID], t, in.Now); blocking != nil {
				d.Kind = DecisionSkipActive
				d.ExistingID = blocking.ID
			}
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TemplateName < out[j].TemplateName })
	return out
}

func firstMatch(rules []domain.AutoAssignRule, trigger domain.Trigger, e *domain.Employee) (domain.AutoAssignRule, bool) {
	for _, r := range rules {
		if r.Trigger == trigger && Matches(r, e) {
			return r, true
		}
	}
	return domain.AutoAssignRule{}, false
}

// Blocking returns the assignment that makes a new one for the same template
// and recipient redundant: any open assignment, or for compliance templates a
// completed one whose validity has not yet elapsed.
func Blocking(existing []*domain.Assignment, t *domain.Template, now time.Time) *domain.Assignment {
	for _, a := range existing {
		if !a.IsTerminal() {
			return a
		}
		if t.IsCompliance() && a.Status == domain.StatusResolvedPositive &&
			scheduler.FreshnessOf(a, t.WarnWindowDays, now) != domain.FreshnessExpired {
			return a
		}
	}
	return nil
}

// Assignable filters a plan down to the decisions that create assignments.
func Assignable(plan []Decision) []Decision {
	var out []Decision
	for _, d := range plan {
		if d.Kind == DecisionAssign {
			out = append(out, d)
		}
	}
	return out
}
