package scheduler

import (
	"sort"

	"github.com/alexanderramin/docket/internal/domain"
)

// StatusPriority returns a display priority (lower = needs attention sooner).
func StatusPriority(s domain.Status) int {
	switch s {
	case domain.StatusPendingVerification:
		return 0
	case domain.StatusAwaitingAction:
		return 1
	case domain.StatusScheduled:
		return 2
	case domain.StatusCreated:
		return 3
	case domain.StatusExpiredNoResponse:
		return 4
	case domain.StatusResolvedNegative:
		return 5
	default:
		return 6
	}
}

// SweepOrder sorts assignments for deterministic sweep processing:
// 1. Sent at: oldest first (never sent last)
// 2. Assignment ID: lexical ascending
func SweepOrder(as []*domain.Assignment) {
	sort.SliceStable(as, func(i, j int) bool {
		a, b := as[i], as[j]
		if (a.SentAt == nil) != (b.SentAt == nil) {
			return a.SentAt != nil
		}
		if a.SentAt != nil && !a.SentAt.Equal(*b.SentAt) {
			return a.SentAt.Before(*b.SentAt)
		}
		return a.ID < b.ID
	})
}

// DirectoryOrder sorts a template's recipients for display:
// 1. Status priority
// 2. Due date: earliest first (nil last)
// 3. Recipient ID: lexical ascending
func DirectoryOrder(as []*domain.Assignment) {
	sort.SliceStable(as, func(i, j int) bool {
		a, b := as[i], as[j]
		pa, pb := StatusPriority(a.Status), StatusPriority(b.Status)
		if pa != pb {
			return pa < pb
		}
		if (a.DueAt == nil) != (b.DueAt == nil) {
			return a.DueAt != nil
		}
		if a.DueAt != nil && !a.DueAt.Equal(*b.DueAt) {
			return a.DueAt.Before(*b.DueAt)
		}
		return a.RecipientID < b.RecipientID
	})
}
