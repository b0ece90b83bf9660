package scheduler

import (
	"time"

	"github.com/alexanderramin/docket/internal/domain"
)

const day = 24 * time.Hour

// Classify buckets a validity date relative to now. A date equal to now has
// elapsed and counts as expired; expiring-soon requires validUntil after now
// and no more than warnWindowDays away. Negative windows are treated as zero.
func Classify(validUntil *time.Time, now time.Time, warnWindowDays int) domain.Freshness {
	if validUntil == nil {
		return domain.FreshnessNone
	}
	if !validUntil.After(now) {
		return domain.FreshnessExpired
	}
	if warnWindowDays < 0 {
		warnWindowDays = 0
	}
	if validUntil.Sub(now) <= time.Duration(warnWindowDays)*day {
		return domain.FreshnessExpiringSoon
	}
	return domain.FreshnessValid
}

// FreshnessOf classifies an assignment. Only resolved-positive assignments
// carry a meaningful validity; everything else reports none.
func FreshnessOf(a *domain.Assignment, warnWindowDays int, now time.Time) domain.Freshness {
	if a.Status != domain.StatusResolvedPositive {
		return domain.FreshnessNone
	}
	return Classify(a.ValidUntil, now, warnWindowDays)
}

// NeedsRenewal reports whether a compliance assignment's validity has elapsed
// and it should re-enter the lifecycle.
func NeedsRenewal(a *domain.Assignment, t *domain.Template, now time.Time) bool {
	return t.IsCompliance() && FreshnessOf(a, t.WarnWindowDays, now) == domain.FreshnessExpired
}

// IsOverdue reports an open assignment whose due date has passed.
func IsOverdue(a *domain.Assignment, now time.Time) bool {
	return a.Status == domain.StatusAwaitingAction && a.DueAt != nil && now.After(*a.DueAt)
}
