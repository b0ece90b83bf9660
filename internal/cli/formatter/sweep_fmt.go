package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/docket/internal/contract"
)

// FormatSweepReport summarises a sweep: counts per action kind, then each
// failure and warning.
func FormatSweepReport(r *contract.SweepReport) string {
	var b strings.Builder

	title := "Sweep"
	if r.DryRun {
		title = "Sweep (dry run)"
	}
	fmt.Fprintf(&b, "%s  %s\n\n", Dim(r.Now.Format("2006-01-02 15:04 MST")), Dim(fmt.Sprintf("%d scanned", r.Scanned)))

	kinds := []contract.SweepActionKind{
		contract.SweepSend, contract.SweepRenew, contract.SweepLapse,
		contract.SweepRemind, contract.SweepNotifyManager, contract.SweepNotifyHR,
		contract.SweepMarkRefused,
	}
	did := false
	for _, k := range kinds {
		if n := r.Count(k); n > 0 {
			fmt.Fprintf(&b, "  %-16s %d\n", k, n)
			did = true
		}
	}
	if !did {
		b.WriteString(Dim("  nothing due") + "\n")
	}

	if len(r.Failures) > 0 {
		b.WriteString("\n")
		for _, f := range r.Failures {
			b.WriteString(StyleRed.Render(fmt.Sprintf("  FAILED %s %s: %s", f.Kind, f.AssignmentID, f.Err)) + "\n")
		}
	}
	if r.NotifyFailures > 0 {
		b.WriteString(StyleYellow.Render(fmt.Sprintf("  %s failed to deliver", Plural(r.NotifyFailures, "notification"))) + "\n")
	}
	for _, w := range r.Warnings {
		b.WriteString(StyleYellow.Render("  WARNING: "+w) + "\n")
	}
	return RenderBox(title, b.String())
}

// FormatSweepActions lists every action of a report, used by --verbose.
func FormatSweepActions(r *contract.SweepReport) string {
	headers := []string{"ASSIGNMENT", "RECIPIENT", "ACTION", "CYCLE", "DAY"}
	rows := make([][]string, 0, len(r.Actions))
	for _, a := range r.Actions {
		day := Dim("--")
		if a.DayOffset > 0 {
			day = fmt.Sprint(a.DayOffset)
		}
		rows = append(rows, []string{TruncID(a.AssignmentID), a.RecipientID, string(a.Kind), fmt.Sprint(a.Cycle), day})
	}
	return RenderTable(headers, rows)
}
