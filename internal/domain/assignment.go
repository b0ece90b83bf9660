package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Signature records an electronic signature captured by the signing front end.
type Signature struct {
	SignerName string    `json:"signer_name"`
	SignedAt   time.Time `json:"signed_at"`
	IPAddress  string    `json:"ip_address,omitempty"`
}

// Submission is what a recipient handed in. Document bytes live in external
// storage; only the reference is kept.
type Submission struct {
	DocumentRef string            `json:"document_ref,omitempty"`
	Values      map[string]string `json:"values,omitempty"`
	Signature   *Signature        `json:"signature,omitempty"`
	// ValidUntil is the expiry printed on an uploaded certificate, if any.
	ValidUntil  *time.Time `json:"valid_until,omitempty"`
	SubmittedBy string     `json:"submitted_by"`
	SubmittedAt time.Time  `json:"submitted_at"`
}

func (s Submission) isEmpty() bool {
	return strings.TrimSpace(s.DocumentRef) == "" && len(s.Values) == 0 && s.Signature == nil
}

// Resolution is the decision that closed (or last closed) an assignment.
type Resolution struct {
	DecidedBy string    `json:"decided_by"`
	DecidedAt time.Time `json:"decided_at"`
	Outcome   Outcome   `json:"outcome"`
	Note      string    `json:"note,omitempty"`
}

// Assignment is one template delivered to one recipient. All status changes go
// through the guarded methods below; a failed guard leaves the value untouched.
type Assignment struct {
	ID          string
	TemplateID  string
	RecipientID string
	InstanceID  string
	Status      Status

	ScheduledAt *time.Time
	SentAt      *time.Time
	DueAt       *time.Time
	ValidUntil  *time.Time

	RemindersSent       int
	LastReminderAt      *time.Time
	RejectionCount      int
	LastRejectionReason string

	// Cycle counts renewal rounds of a compliance assignment, starting at 1.
	Cycle      int
	Submission *Submission
	Resolution *Resolution
	FiredSteps []FiredStep

	// AccessToken backs the recipient's link; cleared when cancelled.
	AccessToken string
	Version     int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAssignment returns a draft assignment.
func NewAssignment(templateID, recipientID, instanceID string, now time.Time) *Assignment {
	return &Assignment{
		ID:          uuid.New().String(),
		TemplateID:  templateID,
		RecipientID: recipientID,
		InstanceID:  instanceID,
		Status:      StatusCreated,
		Cycle:       1,
		AccessToken: uuid.New().String(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsTerminal reports whether the assignment is closed for reporting purposes.
func (a *Assignment) IsTerminal() bool {
	switch a.Status {
	case StatusResolvedPositive, StatusResolvedNegative, StatusExpiredNoResponse:
		return true
	default:
		return false
	}
}

// IsNegative reports a refused, rejected, declined, cancelled or lapsed assignment.
func (a *Assignment) IsNegative() bool {
	return a.Status == StatusResolvedNegative || a.Status == StatusExpiredNoResponse
}

func (a *Assignment) Schedule(at, now time.Time) error {
	if !at.After(now) {
		return validationf("schedule time %s must be in the future", at.Format(time.RFC3339))
	}
	if a.Status != StatusCreated {
		return conflictf("cannot schedule assignment in status %s", a.Status)
	}
	a.ScheduledAt = &at
	a.Status = StatusScheduled
	a.UpdatedAt = now
	return nil
}

// Send delivers the assignment. A scheduled assignment is only sent once its
// time has come, unless immediate is set.
func (a *Assignment) Send(now time.Time, immediate bool) error {
	switch a.Status {
	case StatusCreated:
	case StatusScheduled:
		if !immediate && a.ScheduledAt != nil && now.Before(*a.ScheduledAt) {
			return conflictf("assignment is scheduled for %s", a.ScheduledAt.Format(time.RFC3339))
		}
	default:
		return conflictf("cannot send assignment in status %s", a.Status)
	}
	a.SentAt = &now
	a.Status = StatusAwaitingAction
	a.UpdatedAt = now
	return nil
}

// Submit records the recipient's response. Templates that require verification
// park the submission for a reviewer; everything else resolves immediately.
func (a *Assignment) Submit(sub Submission, requiresVerification bool, now time.Time) error {
	if sub.isEmpty() {
		return validationf("submission needs a document reference, values or a signature")
	}
	if a.Status != StatusAwaitingAction {
		return conflictf("cannot submit assignment in status %s", a.Status)
	}
	sub.SubmittedAt = now
	a.Submission = &sub
	a.UpdatedAt = now
	if requiresVerification {
		a.Status = StatusPendingVerification
		return nil
	}
	a.Status = StatusResolvedPositive
	a.Resolution = &Resolution{DecidedBy: sub.SubmittedBy, DecidedAt: now, Outcome: OutcomeCompleted}
	if sub.ValidUntil != nil {
		a.ValidUntil = sub.ValidUntil
	}
	return nil
}

func (a *Assignment) Approve(actor Actor, note string, now time.Time) error {
	if !actor.CanReview() {
		return forbiddenf("approving requires the reviewer role")
	}
	if a.Status != StatusPendingVerification {
		return conflictf("cannot approve assignment in status %s", a.Status)
	}
	a.Status = StatusResolvedPositive
	a.Resolution = &Resolution{DecidedBy: actor.ID, DecidedAt: now, Outcome: OutcomeApproved, Note: note}
	if a.Submission != nil && a.Submission.ValidUntil != nil {
		a.ValidUntil = a.Submission.ValidUntil
	}
	a.UpdatedAt = now
	return nil
}

// Reject sends the submission back to the recipient.
func (a *Assignment) Reject(actor Actor, reason string, now time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return validationf("a reason is required to reject a submission")
	}
	if !actor.CanReview() {
		return forbiddenf("rejecting requires the reviewer role")
	}
	if a.Status != StatusPendingVerification {
		return conflictf("cannot reject assignment in status %s", a.Status)
	}
	a.Status = StatusAwaitingAction
	a.Submission = nil
	a.RejectionCount++
	a.LastRejectionReason = reason
	a.UpdatedAt = now
	return nil
}

func (a *Assignment) Decline(actor Actor, reason string, allowDecline bool, now time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return validationf("a reason is required to decline")
	}
	if !allowDecline {
		return conflictf("template does not allow declining")
	}
	if a.Status != StatusAwaitingAction {
		return conflictf("cannot decline assignment in status %s", a.Status)
	}
	a.Status = StatusResolvedNegative
	a.Resolution = &Resolution{DecidedBy: actor.ID, DecidedAt: now, Outcome: OutcomeDeclined, Note: reason}
	a.UpdatedAt = now
	return nil
}

// MarkRefused closes an unanswered assignment on behalf of the system.
func (a *Assignment) MarkRefused(note string, now time.Time) error {
	if a.Status != StatusAwaitingAction {
		return conflictf("cannot mark assignment refused in status %s", a.Status)
	}
	a.Status = StatusResolvedNegative
	a.Resolution = &Resolution{DecidedBy: SystemActor.ID, DecidedAt: now, Outcome: OutcomeRefused, Note: note}
	a.UpdatedAt = now
	return nil
}

// Cancel withdraws an open assignment and invalidates the recipient link.
func (a *Assignment) Cancel(actor Actor, reason string, now time.Time) error {
	if !actor.IsAdmin() {
		return forbiddenf("cancelling requires the admin role")
	}
	if a.IsTerminal() {
		return conflictf("cannot cancel assignment in status %s", a.Status)
	}
	a.Status = StatusResolvedNegative
	a.Resolution = &Resolution{DecidedBy: actor.ID, DecidedAt: now, Outcome: OutcomeCancelled, Note: strings.TrimSpace(reason)}
	a.AccessToken = ""
	a.UpdatedAt = now
	return nil
}

// Renew starts a new cycle for a completed assignment whose validity elapsed.
func (a *Assignment) Renew(now time.Time) error {
	if a.Status != StatusResolvedPositive {
		return conflictf("cannot renew assignment in status %s", a.Status)
	}
	if a.ValidUntil == nil || a.ValidUntil.After(now) {
		return conflictf("assignment validity has not elapsed")
	}
	a.Status = StatusAwaitingAction
	a.Cycle++
	a.SentAt = &now
	a.DueAt = nil
	a.ValidUntil = nil
	a.Submission = nil
	a.Resolution = nil
	a.UpdatedAt = now
	return nil
}

// Lapse closes an unanswered assignment whose due date has passed.
func (a *Assignment) Lapse(now time.Time) error {
	if a.Status != StatusAwaitingAction {
		return conflictf("cannot lapse assignment in status %s", a.Status)
	}
	if a.DueAt == nil || !now.After(*a.DueAt) {
		return conflictf("assignment is not past due")
	}
	a.Status = StatusExpiredNoResponse
	a.UpdatedAt = now
	return nil
}

// RecordReminder counts a reminder sent to the recipient.
func (a *Assignment) RecordReminder(now time.Time) error {
	if a.Status != StatusAwaitingAction {
		return conflictf("cannot remind assignment in status %s", a.Status)
	}
	a.RemindersSent++
	a.LastReminderAt = &now
	a.UpdatedAt = now
	return nil
}

// HasFired reports whether step already fired during the current cycle.
func (a *Assignment) HasFired(step EscalationStep) bool {
	for _, f := range a.FiredSteps {
		if f.Cycle == a.Cycle && f.DayOffset == step.DayOffset && f.Action == step.Action {
			return true
		}
	}
	return false
}

// MarkFired records step as fired for the current cycle.
func (a *Assignment) MarkFired(step EscalationStep, now time.Time) (FiredStep, error) {
	if a.HasFired(step) {
		return FiredStep{}, conflictf("escalation step %s already fired", step.Key())
	}
	f := FiredStep{Cycle: a.Cycle, DayOffset: step.DayOffset, Action: step.Action, FiredAt: now}
	a.FiredSteps = append(a.FiredSteps, f)
	return f, nil
}

// DaysSinceSent returns whole days elapsed since the assignment was sent, and
// false if it was never sent.
func (a *Assignment) DaysSinceSent(now time.Time) (int, bool) {
	if a.SentAt == nil {
		return 0, false
	}
	d := now.Sub(*a.SentAt)
	if d < 0 {
		return 0, true
	}
	return int(d / (24 * time.Hour)), true
}
