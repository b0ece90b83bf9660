package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/docket/internal/autoassign"
	"github.com/alexanderramin/docket/internal/contract"
)

// FormatRulePreview lists the planner's decisions for one employee event.
func FormatRulePreview(p *contract.RulePreview) string {
	var b strings.Builder
	verb := "would assign"
	if p.Applied {
		verb = "assigned"
	}
	fmt.Fprintf(&b, "%s %s for %s\n", Bold(string(p.Event.Type)), Dim("event"), p.Event.EmployeeID)
	if len(p.Decisions) == 0 {
		b.WriteString(Dim("  no rule matches") + "\n")
		return b.String()
	}
	for _, d := range p.Decisions {
		switch d.Kind {
		case autoassign.DecisionAssign:
			fmt.Fprintf(&b, "  %s %s %s\n", StyleGreen.Render("+"), verb, Bold(d.TemplateName))
		case autoassign.DecisionSkipActive:
			fmt.Fprintf(&b, "  %s %s %s\n", Dim("="), d.TemplateName, Dim("already active ("+d.ExistingID+")"))
		case autoassign.DecisionSkipArchived:
			fmt.Fprintf(&b, "  %s %s %s\n", Dim("="), d.TemplateName, Dim("archived"))
		default:
			fmt.Fprintf(&b, "  ? %s %s\n", d.TemplateName, d.Kind)
		}
	}
	return b.String()
}

// FormatRuleTest lists the employees a rule currently selects.
func FormatRuleTest(res *contract.RuleTestResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", FormatRule(res.Rule))
	fmt.Fprintf(&b, "%s\n", Dim(fmt.Sprintf("%d of %d employees match", len(res.Matches), res.Scanned)))
	if len(res.Matches) == 0 {
		return b.String()
	}
	headers := []string{"ID", "NAME", "TITLE", "LOCATION", "ROLE"}
	rows := make([][]string, 0, len(res.Matches))
	for _, e := range res.Matches {
		rows = append(rows, []string{e.ID, e.Name, e.JobTitle, e.Location, e.Role})
	}
	b.WriteString(RenderTable(headers, rows))
	return b.String()
}
