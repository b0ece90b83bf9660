package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/docket/internal/domain"
)

// FormatTemplateList renders templates inside a bordered box.
func FormatTemplateList(templates []*domain.Template) string {
	headers := []string{"NAME", "CATEGORY", "TRACKING", "STEPS", "RULES", "ID"}
	rows := make([][]string, 0, len(templates))

	for _, t := range templates {
		name := Bold(t.Name)
		if t.IsArchived() {
			name = Dim(t.Name + " (archived)")
		}
		rows = append(rows, []string{
			name,
			CategoryBadge(t.Category),
			string(t.TrackingMode),
			fmt.Sprint(enabledSteps(t.EscalationPolicy)),
			fmt.Sprint(len(t.AutoAssignRules)),
			TruncID(t.ID),
		})
	}
	return RenderBox("Templates", RenderTable(headers, rows))
}

// FormatTemplateShow renders a template card with its escalation ladder and
// auto-assign rules.
func FormatTemplateShow(t *domain.Template) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n\n", StyleBold.Render(t.Name), CategoryBadge(t.Category))
	if t.Description != "" {
		fmt.Fprintf(&b, "  %s\n\n", t.Description)
	}
	fmt.Fprintf(&b, "  %s  %s\n", Dim("ID          "), Dim(t.ID))
	fmt.Fprintf(&b, "  %s  %s\n", Dim("TRACKING    "), t.TrackingMode)
	fmt.Fprintf(&b, "  %s  %d days\n", Dim("WARN WINDOW "), t.WarnWindowDays)
	fmt.Fprintf(&b, "  %s  %s\n", Dim("VERIFY      "), yesNo(t.RequiresVerification))
	fmt.Fprintf(&b, "  %s  %s\n", Dim("DECLINE     "), yesNo(t.AllowDecline))
	if !t.Permissions.IsEmpty() {
		fmt.Fprintf(&b, "  %s  %s\n", Dim("ASSIGNABLE  "), describePermissions(t.Permissions))
	}
	if t.IsArchived() {
		fmt.Fprintf(&b, "  %s  %s\n", Dim("ARCHIVED    "), StyleYellow.Render(t.ArchivedAt.Format("2006-01-02")))
	}

	b.WriteString("\n" + Header("Escalation") + "\n")
	b.WriteString(FormatPolicy(t.EscalationPolicy))

	b.WriteString("\n" + Header("Auto-assign rules") + "\n")
	if len(t.AutoAssignRules) == 0 {
		b.WriteString(Dim("  none") + "\n")
	}
	for _, r := range t.AutoAssignRules {
		b.WriteString("  " + FormatRule(r) + "\n")
	}
	return RenderBox("", b.String())
}

// FormatPolicy lists escalation steps in day order; disabled steps are dimmed.
func FormatPolicy(p domain.EscalationPolicy) string {
	if len(p) == 0 {
		return Dim("  no steps") + "\n"
	}
	var b strings.Builder
	for _, s := range p.Sorted() {
		line := fmt.Sprintf("  day %-3d %s", s.DayOffset, actionLabel(s.Action))
		if !s.Enabled {
			line = Dim(line + " (disabled)")
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// FormatRule is a one-line summary like "[a1b2c3d4] on hire: location=Downtown".
func FormatRule(r domain.AutoAssignRule) string {
	var conds []string
	if len(r.Conditions.JobTitles) > 0 {
		conds = append(conds, "title="+strings.Join(r.Conditions.JobTitles, "|"))
	}
	if len(r.Conditions.Locations) > 0 {
		conds = append(conds, "location="+strings.Join(r.Conditions.Locations, "|"))
	}
	if len(r.Conditions.Roles) > 0 {
		conds = append(conds, "role="+strings.Join(r.Conditions.Roles, "|"))
	}
	cond := "everyone"
	if len(conds) > 0 {
		cond = strings.Join(conds, " ")
	}
	line := fmt.Sprintf("[%s] on %s: %s", TruncID(r.ID), r.Trigger, cond)
	if !r.Enabled {
		return Dim(line + " (disabled)")
	}
	return line
}

func enabledSteps(p domain.EscalationPolicy) int {
	n := 0
	for _, s := range p {
		if s.Enabled {
			n++
		}
	}
	return n
}

func actionLabel(a domain.EscalationAction) string {
	switch a {
	case domain.ActionRemind:
		return StyleBlue.Render("remind recipient")
	case domain.ActionNotifyManager:
		return StyleYellow.Render("notify manager")
	case domain.ActionNotifyHR:
		return StyleYellow.Render("notify HR")
	case domain.ActionMarkRefused:
		return StyleRed.Render("mark refused")
	default:
		return string(a)
	}
}

func describePermissions(p domain.Permissions) string {
	var parts []string
	if len(p.Locations) > 0 {
		parts = append(parts, "locations "+strings.Join(p.Locations, ", "))
	}
	if len(p.Roles) > 0 {
		parts = append(parts, "roles "+strings.Join(p.Roles, ", "))
	}
	return strings.Join(parts, "; ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
