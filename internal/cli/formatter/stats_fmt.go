package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/docket/internal/contract"
	"github.com/alexanderramin/docket/internal/domain"
)

const statsBarWidth = 12

// FormatStats renders one row per template. The summary column depends on
// the template's tracking mode.
func FormatStats(all []contract.TemplateStats) string {
	if len(all) == 0 {
		return Dim("No templates.") + "\n"
	}
	headers := []string{"TEMPLATE", "MODE", "TOTAL", "OPEN", "OVERDUE", "SUMMARY"}
	rows := make([][]string, 0, len(all))
	for _, s := range all {
		name := Bold(s.TemplateName)
		if s.Archived {
			name = Dim(s.TemplateName + " (archived)")
		}
		overdue := fmt.Sprint(s.Overdue)
		if s.Overdue > 0 {
			overdue = StyleRed.Render(overdue)
		}
		rows = append(rows, []string{
			name,
			string(s.TrackingMode),
			fmt.Sprint(s.Total),
			fmt.Sprint(s.Outstanding),
			overdue,
			StatsSummary(s),
		})
	}
	return RenderBox("Stats", RenderTable(headers, rows))
}

// StatsSummary is the tracking-mode specific figure for one template.
func StatsSummary(s contract.TemplateStats) string {
	switch s.TrackingMode {
	case domain.TrackingCompliance:
		return fmt.Sprintf("%s %s %s %s %s",
			RenderComplianceBar(s.Valid, s.ExpiringSoon, s.Expired, s.Missing, statsBarWidth),
			StyleGreen.Render(fmt.Sprintf("%d valid", s.Valid)),
			StyleYellow.Render(fmt.Sprintf("%d expiring", s.ExpiringSoon)),
			StyleRed.Render(fmt.Sprintf("%d expired", s.Expired)),
			Dim(fmt.Sprintf("%d missing", s.Missing)))
	case domain.TrackingIssuance:
		return fmt.Sprintf("%d issued, %s, %s",
			s.Issued,
			StyleGreen.Render(fmt.Sprintf("%d acknowledged", s.Acknowledged)),
			StyleRed.Render(fmt.Sprintf("%d refused", s.Refused)))
	default:
		return RenderProgress(s.CompletionPct, statsBarWidth)
	}
}

// FormatStatusCounts lists non-zero status counts in lifecycle order.
func FormatStatusCounts(byStatus map[domain.Status]int) string {
	order := []domain.Status{
		domain.StatusCreated, domain.StatusScheduled, domain.StatusAwaitingAction,
		domain.StatusPendingVerification, domain.StatusResolvedPositive,
		domain.StatusResolvedNegative, domain.StatusExpiredNoResponse,
	}
	var parts []string
	for _, st := range order {
		if n := byStatus[st]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", st, n))
		}
	}
	if len(parts) == 0 {
		return Dim("none")
	}
	return strings.Join(parts, ", ")
}
