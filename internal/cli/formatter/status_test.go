package formatter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alexanderramin/docket/internal/contract"
	"github.com/alexanderramin/docket/internal/domain"
)

func TestStatusLabel_PerCategory(t *testing.T) {
	resolved := &domain.Assignment{Status: domain.StatusResolvedPositive}
	assert.Equal(t, "Signed", StatusLabel(domain.CategorySigning, resolved))
	assert.Equal(t, "Active", StatusLabel(domain.CategoryCertification, resolved))
	assert.Equal(t, "Acknowledged", StatusLabel(domain.CategoryWriteUp, resolved))
	assert.Equal(t, "Completed", StatusLabel(domain.CategoryCustomForm, resolved))

	waiting := &domain.Assignment{Status: domain.StatusAwaitingAction}
	assert.Equal(t, "Upload needed", StatusLabel(domain.CategoryCertification, waiting))
	assert.Equal(t, "Awaiting", StatusLabel(domain.CategorySigning, waiting))
	waiting.RejectionCount = 1
	assert.Equal(t, "Resubmit", StatusLabel(domain.CategoryCertification, waiting))
}

func TestStatusLabel_NegativeOutcomes(t *testing.T) {
	for outcome, want := range map[domain.Outcome]string{
		domain.OutcomeRefused:   "Refused",
		domain.OutcomeDeclined:  "Declined",
		domain.OutcomeCancelled: "Cancelled",
	} {
		a := &domain.Assignment{Status: domain.StatusResolvedNegative, Resolution: &domain.Resolution{Outcome: outcome}}
		assert.Equal(t, want, StatusLabel(domain.CategoryWriteUp, a))
	}
	assert.Equal(t, "Lapsed", StatusLabel(domain.CategorySigning, &domain.Assignment{Status: domain.StatusExpiredNoResponse}))
}

func TestStatsSummary_ByTrackingMode(t *testing.T) {
	progress := stripANSI(StatsSummary(contract.TemplateStats{TrackingMode: domain.TrackingProgress, CompletionPct: 50}))
	assert.Contains(t, progress, "50%")

	compliance := stripANSI(StatsSummary(contract.TemplateStats{
		TrackingMode: domain.TrackingCompliance, Valid: 3, ExpiringSoon: 1, Expired: 2, Missing: 4,
	}))
	assert.Contains(t, compliance, "3 valid")
	assert.Contains(t, compliance, "1 expiring")
	assert.Contains(t, compliance, "2 expired")
	assert.Contains(t, compliance, "4 missing")

	issuance := stripANSI(StatsSummary(contract.TemplateStats{TrackingMode: domain.TrackingIssuance, Issued: 5, Acknowledged: 3, Refused: 1}))
	assert.Equal(t, "5 issued, 3 acknowledged, 1 refused", issuance)
}

func TestFormatSweepReport(t *testing.T) {
	r := &contract.SweepReport{
		Now:     time.Date(2025, 6, 9, 9, 0, 0, 0, time.UTC),
		DryRun:  true,
		Scanned: 4,
		Actions: []contract.SweepAction{
			{Kind: contract.SweepRemind}, {Kind: contract.SweepRemind}, {Kind: contract.SweepMarkRefused},
		},
		Failures:       []contract.SweepFailure{{AssignmentID: "a-1", Kind: contract.SweepLapse, Err: "boom"}},
		NotifyFailures: 1,
		Warnings:       []string{"template archived"},
	}
	out := stripANSI(FormatSweepReport(r))
	assert.Contains(t, out, "SWEEP (DRY RUN)")
	assert.Contains(t, out, "4 scanned")
	assert.Regexp(t, `remind\s+2`, out)
	assert.Regexp(t, `mark_refused\s+1`, out)
	assert.Contains(t, out, "FAILED lapse a-1: boom")
	assert.Contains(t, out, "1 notification failed to deliver")
	assert.Contains(t, out, "WARNING: template archived")

	empty := stripANSI(FormatSweepReport(&contract.SweepReport{}))
	assert.Contains(t, empty, "nothing due")
}

func TestFormatRule(t *testing.T) {
	r := domain.AutoAssignRule{
		ID:         "rule-123456789",
		Trigger:    domain.TriggerHire,
		Conditions: domain.RuleConditions{Locations: []string{"Downtown"}, JobTitles: []string{"Cook", "Server"}},
		Enabled:    true,
	}
	assert.Equal(t, "[rule-123] on hire: title=Cook|Server location=Downtown", stripANSI(FormatRule(r)))

	r.Conditions = domain.RuleConditions{}
	r.Enabled = false
	assert.Equal(t, "[rule-123] on hire: everyone (disabled)", stripANSI(FormatRule(r)))
}
