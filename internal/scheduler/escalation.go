package scheduler

import (
	"time"

	"github.com/alexanderramin/docket/internal/domain"
)

// DueSteps returns the escalation steps that should fire for a now, in firing
// order: enabled, unfired in the current cycle, with a day offset no greater
// than the whole days since the assignment was sent. Assignments that are not
// awaiting action or were never sent get nothing. The plan stops after a
// mark_refused step since it closes the assignment.
func DueSteps(a *domain.Assignment, policy domain.EscalationPolicy, now time.Time) []domain.EscalationStep {
	if a.Status != domain.StatusAwaitingAction {
		return nil
	}
	days, sent := a.DaysSinceSent(now)
	if !sent {
		return nil
	}

	var due []domain.EscalationStep
	for _, step := range policy.Sorted() {
		if step.DayOffset > days {
			break
		}
		if !step.Enabled || a.HasFired(step) {
			continue
		}
		due = append(due, step)
		if step.Action == domain.ActionMarkRefused {
			break
		}
	}
	return due
}

// NextStep returns the first enabled, unfired step that is not yet due, for
// display of "next escalation in N days". ok is false when nothing is pending.
func NextStep(a *domain.Assignment, policy domain.EscalationPolicy, now time.Time) (step domain.EscalationStep, inDays int, ok bool) {
	if a.Status != domain.StatusAwaitingAction {
		return domain.EscalationStep{}, 0, false
	}
	days, sent := a.DaysSinceSent(now)
	if !sent {
		return domain.EscalationStep{}, 0, false
	}
	for _, s := range policy.Sorted() {
		if !s.Enabled || a.HasFired(s) || s.DayOffset <= days {
			continue
		}
		return s, s.DayOffset - days, true
	}
	return domain.EscalationStep{}, 0, false
}
