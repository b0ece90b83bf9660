package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/docket/internal/contract"
	"github.com/alexanderramin/docket/internal/domain"
	"github.com/alexanderramin/docket/internal/notify"
	"github.com/alexanderramin/docket/internal/testutil"
)

func standardPolicy() testutil.TemplateOption {
	return testutil.WithPolicy(
		testutil.Step(3, domain.ActionRemind),
		testutil.Step(5, domain.ActionNotifyManager),
		testutil.Step(7, domain.ActionMarkRefused),
	)
}

func TestSweep_ThreeFiveSeven(t *testing.T) {
	h := newHarness(t)
	tpl := h.template(t, "Handbook", standardPolicy())
	ana := h.employee(t, "Ana", testutil.WithManager("mgr-1"))
	a := h.assign(t, tpl, ana)

	h.clock.AdvanceDays(2)
	assert.Empty(t, h.sweep(t).Actions, "nothing due on day 2")

	h.clock.AdvanceDays(1)
	rep := h.sweep(t)
	assert.Equal(t, 1, rep.Count(contract.SweepRemind))
	assert.Equal(t, 1, h.reload(t, a.ID).RemindersSent)
	require.Len(t, h.notifier.sent(kindReminder), 1)

	h.clock.AdvanceDays(2)
	rep = h.sweep(t)
	assert.Equal(t, 1, rep.Count(contract.SweepNotifyManager))
	escalations := h.notifier.sent(kindEscalation)
	require.Len(t, escalations, 1)
	assert.Equal(t, domain.AudienceManager, escalations[0].Audience)
	assert.Equal(t, "mgr-1", escalations[0].Context["manager_id"])
	assert.Equal(t, ana.ID, escalations[0].RecipientID)
	assert.Equal(t, domain.StatusAwaitingAction, h.reload(t, a.ID).Status, "notify leaves status alone")

	h.clock.AdvanceDays(2)
	rep = h.sweep(t)
	assert.Equal(t, 1, rep.Count(contract.SweepMarkRefused))
	got := h.reload(t, a.ID)
	assert.Equal(t, domain.StatusResolvedNegative, got.Status)
	assert.Equal(t, domain.OutcomeRefused, got.Resolution.Outcome)
	assert.Equal(t, domain.SystemActor.ID, got.Resolution.DecidedBy)
	assert.Len(t, got.FiredSteps, 3)

	_, err := h.assignments.Submit(context.Background(), a.ID, admin, domain.Submission{DocumentRef: "late.pdf"})
	require.ErrorIs(t, err, domain.ErrStateConflict, "refused is terminal")
}

func TestSweep_Idempotent(t *testing.T) {
	h := newHarness(t)
	tpl := h.template(t, "Handbook", standardPolicy())
	ana := h.employee(t, "Ana")
	a := h.assign(t, tpl, ana)

	h.clock.AdvanceDays(4)
	first := h.sweep(t)
	require.Len(t, first.Actions, 1)

	second := h.sweep(t)
	assert.Empty(t, second.Actions)
	assert.Empty(t, second.Failures)
	assert.Equal(t, 1, h.reload(t, a.ID).RemindersSent)
	assert.Len(t, h.notifier.sent(kindReminder), 1)
}

func TestSweep_CatchUpFiresEveryDueStepOnce(t *testing.T) {
	h := newHarness(t)
	tpl := h.template(t, "Handbook", standardPolicy())
	ana := h.employee(t, "Ana")
	a := h.assign(t, tpl, ana)

	h.clock.AdvanceDays(10)
	rep := h.sweep(t)
	assert.Equal(t, 1, rep.Count(contract.SweepRemind))
	assert.Equal(t, 1, rep.Count(contract.SweepNotifyManager))
	assert.Equal(t, 1, rep.Count(contract.SweepMarkRefused))
	assert.Equal(t, domain.StatusResolvedNegative, h.reload(t, a.ID).Status)

	assert.Empty(t, h.sweep(t).Actions)
}

func TestSweep_DryRunChangesNothing(t *testing.T) {
	h := newHarness(t)
	tpl := h.template(t, "Handbook", standardPolicy())
	ana := h.employee(t, "Ana")
	a := h.assign(t, tpl, ana)
	h.notifier.Calls = nil

	h.clock.AdvanceDays(7)
	req := contract.NewSweepRequest()
	req.DryRun = true
	rep, err := h.escalation.Sweep(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, rep.DryRun)
	assert.Len(t, rep.Actions, 3)

	got := h.reload(t, a.ID)
	assert.Equal(t, domain.StatusAwaitingAction, got.Status)
	assert.Zero(t, got.RemindersSent)
	assert.Empty(t, got.FiredSteps)
	assert.Empty(t, h.notifier.Calls)

	assert.Len(t, h.sweep(t).Actions, 3, "the real sweep still fires everything")
}

func TestSweep_SendsScheduled(t *testing.T) {
	h := newHarness(t)
	tpl := h.template(t, "Handbook")
	ana := h.employee(t, "Ana")

	req := contract.NewCreateAssignmentRequest(tpl.ID, admin, ana.ID)
	at := day0.Add(36 * time.Hour)
	req.ScheduleAt = &at
	res, err := h.assignments.Create(context.Background(), req)
	require.NoError(t, err)
	id := res.Assignments[0].ID

	h.clock.AdvanceDays(1)
	assert.Zero(t, h.sweep(t).Count(contract.SweepSend), "not yet")

	h.clock.AdvanceDays(1)
	rep := h.sweep(t)
	assert.Equal(t, 1, rep.Count(contract.SweepSend))
	got := h.reload(t, id)
	assert.Equal(t, domain.StatusAwaitingAction, got.Status)
	assert.Equal(t, day0.AddDate(0, 0, 2), *got.SentAt)
	assert.Len(t, h.notifier.sent(kindAssigned), 1)
}

func TestSweep_ScheduledOnArchivedTemplateWarns(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	tpl := h.template(t, "Handbook")
	ana := h.employee(t, "Ana")

	req := contract.NewCreateAssignmentRequest(tpl.ID, admin, ana.ID)
	at := day0.Add(time.Hour)
	req.ScheduleAt = &at
	res, err := h.assignments.Create(ctx, req)
	require.NoError(t, err)
	require.NoError(t, h.templates.Archive(ctx, tpl.ID))

	h.clock.AdvanceDays(1)
	rep := h.sweep(t)
	assert.Zero(t, rep.Count(contract.SweepSend))
	require.Len(t, rep.Warnings, 1)
	assert.Contains(t, rep.Warnings[0], "archived")
	assert.Equal(t, domain.StatusScheduled, h.reload(t, res.Assignments[0].ID).Status)
}

func TestSweep_LapsesOverdueBeforeEscalating(t *testing.T) {
	h := newHarness(t)
	tpl := h.template(t, "Handbook", standardPolicy())
	ana := h.employee(t, "Ana")

	req := contract.NewCreateAssignmentRequest(tpl.ID, admin, ana.ID)
	due := day0.AddDate(0, 0, 2)
	req.DueAt = &due
	res, err := h.assignments.Create(context.Background(), req)
	require.NoError(t, err)

	h.clock.AdvanceDays(4)
	rep := h.sweep(t)
	assert.Equal(t, 1, rep.Count(contract.SweepLapse))
	assert.Zero(t, rep.Count(contract.SweepRemind), "a lapsed assignment is not escalated")
	assert.Equal(t, domain.StatusExpiredNoResponse, h.reload(t, res.Assignments[0].ID).Status)
	assert.Len(t, h.notifier.sent(kindLapsed), 1)
}

func TestSweep_ComplianceRenewal(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	tpl := h.template(t, "Food Handler", testutil.WithCategory(domain.CategoryCertification), testutil.WithWarnWindow(30))
	ana := h.employee(t, "Ana")
	a := h.assign(t, tpl, ana)

	until := day0.AddDate(0, 0, 40)
	_, err := h.assignments.Submit(ctx, a.ID, admin, domain.Submission{DocumentRef: "cert.pdf", ValidUntil: &until})
	require.NoError(t, err)
	_, err = h.assignments.Approve(ctx, a.ID, rev, "")
	require.NoError(t, err)

	v, err := h.directory.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FreshnessValid, v.Freshness)

	h.clock.AdvanceDays(10)
	v, err = h.directory.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FreshnessExpiringSoon, v.Freshness)
	assert.Empty(t, h.sweep(t).Actions, "expiring soon is not renewed yet")

	h.clock.AdvanceDays(30)
	rep := h.sweep(t)
	assert.Equal(t, 1, rep.Count(contract.SweepRenew))
	got := h.reload(t, a.ID)
	assert.Equal(t, domain.StatusAwaitingAction, got.Status)
	assert.Equal(t, 2, got.Cycle)
	assert.Nil(t, got.Submission)
	assert.Len(t, h.notifier.sent(kindRenewal), 1)

	assert.Empty(t, h.sweep(t).Actions, "renewed once")
}

func TestSweep_RenewedCycleWithoutExpiryIsNotRenewedAgain(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	tpl := h.template(t, "Food Handler", testutil.WithCategory(domain.CategoryCertification), testutil.WithWarnWindow(30))
	ana := h.employee(t, "Ana")
	a := h.assign(t, tpl, ana)

	until := day0.AddDate(0, 0, 40)
	_, err := h.assignments.Submit(ctx, a.ID, admin, domain.Submission{DocumentRef: "cert.pdf", ValidUntil: &until})
	require.NoError(t, err)
	_, err = h.assignments.Approve(ctx, a.ID, rev, "")
	require.NoError(t, err)

	h.clock.AdvanceDays(41)
	require.Equal(t, 1, h.sweep(t).Count(contract.SweepRenew))
	assert.Nil(t, h.reload(t, a.ID).ValidUntil)

	_, err = h.assignments.Submit(ctx, a.ID, admin, domain.Submission{DocumentRef: "cert2.pdf"})
	require.NoError(t, err)
	_, err = h.assignments.Approve(ctx, a.ID, rev, "")
	require.NoError(t, err)

	v, err := h.directory.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FreshnessNone, v.Freshness)

	h.clock.AdvanceDays(1)
	assert.Zero(t, h.sweep(t).Count(contract.SweepRenew))
	got := h.reload(t, a.ID)
	assert.Equal(t, domain.StatusResolvedPositive, got.Status)
	assert.Equal(t, 2, got.Cycle)
	assert.Len(t, h.notifier.sent(kindRenewal), 1)
}

func TestSweep_TemplateFilter(t *testing.T) {
	h := newHarness(t)
	one := h.template(t, "Handbook", standardPolicy())
	two := h.template(t, "Dress code", standardPolicy())
	ana := h.employee(t, "Ana")
	h.assign(t, one, ana)
	h.assign(t, two, ana)

	h.clock.AdvanceDays(3)
	req := contract.NewSweepRequest()
	req.TemplateID = one.ID
	rep, err := h.escalation.Sweep(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, rep.Actions, 1)
	assert.Equal(t, one.ID, rep.Actions[0].TemplateID)

	req.TemplateID = "missing"
	_, err = h.escalation.Sweep(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSweep_NotifierFailureStillCommits(t *testing.T) {
	h := newHarness(t)
	tpl := h.template(t, "Handbook", standardPolicy())
	ana := h.employee(t, "Ana")
	a := h.assign(t, tpl, ana)
	h.failNotifications(notify.ErrTimeout)

	h.clock.AdvanceDays(3)
	rep := h.sweep(t)
	assert.Equal(t, 1, rep.Count(contract.SweepRemind))
	assert.Equal(t, 1, rep.NotifyFailures)
	assert.Empty(t, rep.Failures)
	assert.Equal(t, 1, h.reload(t, a.ID).RemindersSent)
	assert.Empty(t, h.sweep(t).Actions, "the fired marker survived the failed delivery")
}

func TestSweep_SubmitRacingMarkRefused(t *testing.T) {
	for i := 0; i < 5; i++ {
		h := newHarnessWith(t, testutil.NewFileTestDB(t), nil)
		tpl := h.template(t, "Handbook", testutil.WithPolicy(testutil.Step(7, domain.ActionMarkRefused)))
		ana := h.employee(t, "Ana")
		a := h.assign(t, tpl, ana)
		h.clock.AdvanceDays(7)

		var (
			wg        sync.WaitGroup
			submitErr error
			rep       *contract.SweepReport
			sweepErr  error
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, submitErr = h.assignments.Submit(context.Background(), a.ID, admin, domain.Submission{DocumentRef: "signed.pdf"})
		}()
		go func() {
			defer wg.Done()
			rep, sweepErr = h.escalation.Sweep(context.Background(), contract.NewSweepRequest())
		}()
		wg.Wait()

		require.NoError(t, sweepErr)
		assert.Empty(t, rep.Failures)
		got := h.reload(t, a.ID)
		if submitErr == nil {
			assert.Equal(t, domain.StatusResolvedPositive, got.Status)
			assert.Zero(t, rep.Count(contract.SweepMarkRefused))
		} else {
			require.ErrorIs(t, submitErr, domain.ErrStateConflict)
			assert.Equal(t, domain.StatusResolvedNegative, got.Status)
			assert.Equal(t, 1, rep.Count(contract.SweepMarkRefused))
		}
	}
}
