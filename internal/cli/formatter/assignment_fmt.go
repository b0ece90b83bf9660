package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/docket/internal/contract"
	"github.com/alexanderramin/docket/internal/domain"
)

// FormatAssignmentList renders a template's assignments, one row each.
func FormatAssignmentList(views []contract.AssignmentView, now time.Time) string {
	if len(views) == 0 {
		return Dim("No assignments.") + "\n"
	}
	headers := []string{"ID", "RECIPIENT", "STATUS", "SENT", "NEXT STEP", "FRESHNESS"}
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		a := v.Assignment
		sent := Dim("--")
		if a.SentAt != nil {
			sent = RelativeDate(*a.SentAt, now)
		}
		next := Dim("--")
		if v.NextStep != nil {
			next = fmt.Sprintf("%s in %dd", v.NextStep.Action, v.NextStepInDays)
		}
		status := StatusPill(v.Category, a)
		if v.Overdue {
			status += StyleRed.Render(" overdue")
		}
		rows = append(rows, []string{
			TruncID(a.ID),
			v.RecipientName,
			status,
			sent,
			next,
			FreshnessBadge(v.Freshness),
		})
	}
	return RenderTable(headers, rows)
}

// FormatAssignment renders one assignment card.
func FormatAssignment(v *contract.AssignmentView) string {
	a := v.Assignment
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n", StyleBold.Render(v.TemplateName), StatusPill(v.Category, a))
	fmt.Fprintf(&b, "%s\n\n", Dim(a.ID))
	fmt.Fprintf(&b, "  %s  %s (%s)\n", Dim("RECIPIENT "), v.RecipientName, a.RecipientID)
	fmt.Fprintf(&b, "  %s  %s\n", Dim("STATUS    "), a.Status)
	fmt.Fprintf(&b, "  %s  %s\n", Dim("SCHEDULED "), OptionalDate(a.ScheduledAt))
	fmt.Fprintf(&b, "  %s  %s\n", Dim("SENT      "), OptionalDate(a.SentAt))
	fmt.Fprintf(&b, "  %s  %s\n", Dim("DUE       "), OptionalDate(a.DueAt))
	if v.DaysSinceSent != nil {
		fmt.Fprintf(&b, "  %s  %d\n", Dim("DAYS OPEN "), *v.DaysSinceSent)
	}
	fmt.Fprintf(&b, "  %s  %d\n", Dim("CYCLE     "), a.Cycle)
	fmt.Fprintf(&b, "  %s  %s\n", Dim("REMINDERS "), Plural(a.RemindersSent, "reminder"))
	if v.TrackingMode == domain.TrackingCompliance {
		fmt.Fprintf(&b, "  %s  %s %s\n", Dim("VALID TO  "), OptionalDate(a.ValidUntil), FreshnessBadge(v.Freshness))
	}
	if a.RejectionCount > 0 {
		fmt.Fprintf(&b, "  %s  %s: %s\n", Dim("REJECTED  "), Plural(a.RejectionCount, "time"), a.LastRejectionReason)
	}
	if v.Overdue {
		b.WriteString("  " + StyleRed.Render("past due date") + "\n")
	}
	if v.NextStep != nil {
		fmt.Fprintf(&b, "  %s  %s in %dd\n", Dim("NEXT STEP "), actionLabel(v.NextStep.Action), v.NextStepInDays)
	}
	if s := a.Submission; s != nil {
		b.WriteString("\n" + Header("Submission") + "\n")
		if s.DocumentRef != "" {
			fmt.Fprintf(&b, "  document  %s\n", s.DocumentRef)
		}
		if s.Signature != nil {
			fmt.Fprintf(&b, "  signed by %s\n", s.Signature.SignerName)
		}
		for k, val := range s.Values {
			fmt.Fprintf(&b, "  %s = %s\n", k, val)
		}
	}
	if r := a.Resolution; r != nil {
		b.WriteString("\n" + Header("Resolution") + "\n")
		fmt.Fprintf(&b, "  %s by %s on %s\n", r.Outcome, r.DecidedBy, r.DecidedAt.Format("2006-01-02"))
		if r.Note != "" {
			fmt.Fprintf(&b, "  %s\n", Dim(r.Note))
		}
	}
	return RenderBox("", b.String())
}

// FormatHistory renders transitions followed by the notification log.
func FormatHistory(h *contract.AssignmentHistory) string {
	var b strings.Builder
	b.WriteString(Header("Transitions") + "\n")
	for _, t := range h.Transitions {
		fmt.Fprintf(&b, "  %s  %-14s %s → %s  %s",
			Dim(t.At.Format("2006-01-02 15:04")), t.Event, t.From, t.To, Dim("by "+t.Actor))
		if t.Note != "" {
			fmt.Fprintf(&b, "  %s", Dim(t.Note))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n" + Header("Notifications") + "\n")
	if len(h.Notifications) == 0 {
		b.WriteString(Dim("  none") + "\n")
	}
	for _, n := range h.Notifications {
		result := StyleGreen.Render("ok")
		if !n.Success {
			result = StyleRed.Render("failed: " + n.Error)
		}
		channels := make([]string, 0, len(n.Channels))
		for _, c := range n.Channels {
			channels = append(channels, string(c))
		}
		fmt.Fprintf(&b, "  %s  %-12s %-9s %-10s %s\n",
			Dim(n.At.Format("2006-01-02 15:04")), n.Kind, n.Audience, strings.Join(channels, ","), result)
	}
	return b.String()
}
