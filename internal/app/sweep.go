package app

import (
	"time"

	"github.com/alexanderramin/docket/internal/domain"
)

type SweepRequest struct {
	Now *time.Time
	// TemplateID limits the sweep to one template.
	TemplateID string
	// DryRun reports what the sweep would do without mutating anything.
	DryRun bool
}

func NewSweepRequest() SweepRequest {
	return SweepRequest{}
}

type SweepActionKind string

const (
	SweepSend          SweepActionKind = "send"
	SweepRemind        SweepActionKind = "remind"
	SweepNotifyManager SweepActionKind = "notify_manager"
	SweepNotifyHR      SweepActionKind = "notify_hr"
	SweepMarkRefused   SweepActionKind = "mark_refused"
	SweepLapse         SweepActionKind = "lapse"
	SweepRenew         SweepActionKind = "renew"
)

// SweepActionForStep maps an escalation action onto its sweep action kind.
func SweepActionForStep(a domain.EscalationAction) SweepActionKind {
	return SweepActionKind(a)
}

type SweepAction struct {
	AssignmentID string
	TemplateID   string
	RecipientID  string
	Kind         SweepActionKind
	Cycle        int
	// DayOffset is set for escalation steps.
	DayOffset int
}

type SweepFailure struct {
	AssignmentID string
	Kind         SweepActionKind
	Err          string
}

type SweepReport struct {
	Now            time.Time
	DryRun         bool
	Scanned        int
	Actions        []SweepAction
	Failures       []SweepFailure
	NotifyFailures int
	Warnings       []string
	Duration       time.Duration
}

// Count returns how many actions of kind the sweep performed.
func (r *SweepReport) Count(kind SweepActionKind) int {
	n := 0
	for _, a := range r.Actions {
		if a.Kind == kind {
			n++
		}
	}
	return n
}
