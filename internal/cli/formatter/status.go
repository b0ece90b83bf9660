package formatter

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/docket/internal/domain"
)

// positiveLabels names a resolved_positive assignment the way each category's
// users talk about it.
var positiveLabels = map[domain.Category]string{
	domain.CategorySigning:       "Signed",
	domain.CategoryCertification: "Active",
	domain.CategoryWriteUp:       "Acknowledged",
	domain.CategoryCustomForm:    "Completed",
}

var outcomeLabels = map[domain.Outcome]string{
	domain.OutcomeRejected:  "Rejected",
	domain.OutcomeDeclined:  "Declined",
	domain.OutcomeRefused:   "Refused",
	domain.OutcomeCancelled: "Cancelled",
}

// StatusLabel is the display name for an assignment. Labels exist only here;
// the engine works on the canonical status.
func StatusLabel(cat domain.Category, a *domain.Assignment) string {
	switch a.Status {
	case domain.StatusCreated:
		return "Draft"
	case domain.StatusScheduled:
		return "Scheduled"
	case domain.StatusAwaitingAction:
		if a.RejectionCount > 0 {
			return "Resubmit"
		}
		if cat == domain.CategoryCertification {
			return "Upload needed"
		}
		return "Awaiting"
	case domain.StatusPendingVerification:
		return "Pending review"
	case domain.StatusResolvedPositive:
		if l, ok := positiveLabels[cat]; ok {
			return l
		}
		return "Completed"
	case domain.StatusResolvedNegative:
		if a.Resolution != nil {
			if l, ok := outcomeLabels[a.Resolution.Outcome]; ok {
				return l
			}
		}
		return "Closed"
	case domain.StatusExpiredNoResponse:
		return "Lapsed"
	default:
		return string(a.Status)
	}
}

func statusStyle(a *domain.Assignment) lipgloss.Style {
	switch a.Status {
	case domain.StatusResolvedPositive:
		return StyleGreen
	case domain.StatusPendingVerification:
		return StyleBlue
	case domain.StatusAwaitingAction:
		return StyleYellow
	case domain.StatusResolvedNegative, domain.StatusExpiredNoResponse:
		if a.Resolution != nil && a.Resolution.Outcome == domain.OutcomeCancelled {
			return StyleDim
		}
		return StyleRed
	default:
		return StyleDim
	}
}

// StatusPill renders the category label with a status colour.
func StatusPill(cat domain.Category, a *domain.Assignment) string {
	return statusStyle(a).Render("● " + StatusLabel(cat, a))
}

// FreshnessBadge renders the expiration monitor's classification. Expiring and
// expired validity override the resolved label on compliance templates.
func FreshnessBadge(f domain.Freshness) string {
	switch f {
	case domain.FreshnessValid:
		return StyleGreen.Render("valid")
	case domain.FreshnessExpiringSoon:
		return StyleYellow.Render("▲ expiring")
	case domain.FreshnessExpired:
		return StyleRed.Render("✖ expired")
	default:
		return StyleDim.Render("--")
	}
}

// CategoryBadge returns a purple label such as "Write-up".
func CategoryBadge(c domain.Category) string {
	label := map[domain.Category]string{
		domain.CategorySigning:       "Signing",
		domain.CategoryCertification: "Certification",
		domain.CategoryWriteUp:       "Write-up",
		domain.CategoryCustomForm:    "Custom form",
	}[c]
	if label == "" {
		return StyleDim.Render("--")
	}
	return StylePurple.Render(label)
}
