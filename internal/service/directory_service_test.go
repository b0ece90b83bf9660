package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/docket/internal/contract"
	"github.com/alexanderramin/docket/internal/domain"
	"github.com/alexanderramin/docket/internal/testutil"
)

func resolved(outcome domain.Outcome, status domain.Status) testutil.AssignmentOption {
	return func(a *domain.Assignment) {
		a.Status = status
		a.Resolution = &domain.Resolution{Outcome: outcome, DecidedAt: day0}
	}
}

func TestAggregate_ProgressExcludesCancelled(t *testing.T) {
	tpl := testutil.NewTestTemplate("Handbook")
	as := []*domain.Assignment{
		testutil.NewTestAssignment(tpl.ID, "e1", "i1", resolved(domain.OutcomeCompleted, domain.StatusResolvedPositive)),
		testutil.NewTestAssignment(tpl.ID, "e2", "i1", testutil.WithSentAt(day0)),
		testutil.NewTestAssignment(tpl.ID, "e3", "i1", resolved(domain.OutcomeCancelled, domain.StatusResolvedNegative)),
	}

	st := aggregate(tpl, as, day0)

	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 1, st.Outstanding)
	assert.InDelta(t, 50.0, st.CompletionPct, 0.001, "cancelled is left out of the denominator")
	assert.Equal(t, 1, st.ByStatus[domain.StatusResolvedNegative])
}

func TestAggregate_Compliance(t *testing.T) {
	tpl := testutil.NewTestTemplate("Food Handler", testutil.WithCategory(domain.CategoryCertification), testutil.WithWarnWindow(30))
	positive := func(days int) *domain.Assignment {
		return testutil.NewTestAssignment(tpl.ID, "e", "i",
			resolved(domain.OutcomeApproved, domain.StatusResolvedPositive),
			testutil.WithValidUntil(day0.AddDate(0, 0, days)))
	}
	as := []*domain.Assignment{
		positive(90),
		positive(10),
		positive(-1),
		testutil.NewTestAssignment(tpl.ID, "e", "i", testutil.WithSentAt(day0)),
		testutil.NewTestAssignment(tpl.ID, "e", "i", resolved(domain.OutcomeCancelled, domain.StatusResolvedNegative)),
	}

	st := aggregate(tpl, as, day0)

	assert.Equal(t, 1, st.Valid)
	assert.Equal(t, 1, st.ExpiringSoon)
	assert.Equal(t, 1, st.Expired)
	assert.Equal(t, 1, st.Missing, "cancelled is not missing")
}

func TestAggregate_Issuance(t *testing.T) {
	tpl := testutil.NewTestTemplate("Late arrival", testutil.WithCategory(domain.CategoryWriteUp))
	due := day0.AddDate(0, 0, -1)
	as := []*domain.Assignment{
		testutil.NewTestAssignment(tpl.ID, "e1", "i", testutil.WithSentAt(day0.AddDate(0, 0, -3)), resolved(domain.OutcomeCompleted, domain.StatusResolvedPositive)),
		testutil.NewTestAssignment(tpl.ID, "e2", "i", testutil.WithSentAt(day0.AddDate(0, 0, -9)), resolved(domain.OutcomeRefused, domain.StatusResolvedNegative)),
		testutil.NewTestAssignment(tpl.ID, "e3", "i", testutil.WithSentAt(day0.AddDate(0, 0, -2)), testutil.WithDueAt(due)),
		testutil.NewTestAssignment(tpl.ID, "e4", "i"),
	}

	st := aggregate(tpl, as, day0)

	assert.Equal(t, domain.TrackingIssuance, st.TrackingMode)
	assert.Equal(t, 3, st.Issued)
	assert.Equal(t, 1, st.Acknowledged)
	assert.Equal(t, 1, st.Refused)
	assert.Equal(t, 1, st.Overdue)
	assert.Equal(t, 2, st.Outstanding)
}

func TestListAssignments_OrderAndFilters(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	tpl := h.template(t, "Handbook", standardPolicy())
	zed := h.employee(t, "Zed")
	amy := h.employee(t, "Amy")
	done := h.employee(t, "Bo")

	h.assign(t, tpl, zed)
	h.assign(t, tpl, amy)
	b := h.assign(t, tpl, done)
	_, err := h.assignments.Submit(ctx, b.ID, admin, domain.Submission{DocumentRef: "x"})
	require.NoError(t, err)

	h.clock.AdvanceDays(4)
	h.sweep(t)

	views, err := h.directory.ListAssignments(ctx, tpl.Name, contract.ListFilter{})
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, domain.StatusResolvedPositive, views[2].Assignment.Status, "open items first")
	for _, v := range views[:2] {
		require.NotNil(t, v.DaysSinceSent)
		assert.Equal(t, 4, *v.DaysSinceSent)
		require.NotNil(t, v.NextStep)
		assert.Equal(t, domain.ActionNotifyManager, v.NextStep.Action)
		assert.Equal(t, 1, v.NextStepInDays)
	}

	open, err := h.directory.ListAssignments(ctx, tpl.ID, contract.ListFilter{Statuses: []domain.Status{domain.StatusAwaitingAction}})
	require.NoError(t, err)
	assert.Len(t, open, 2)

	mine, err := h.directory.ListAssignments(ctx, tpl.ID, contract.ListFilter{RecipientID: amy.ID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Amy", mine[0].RecipientName)
}

func TestStats_ThroughService(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	tpl := h.template(t, "Handbook")
	h.template(t, "Retired", testutil.WithArchivedAt(day0))
	ana := h.employee(t, "Ana")
	ben := h.employee(t, "Ben")
	_, err := h.assignments.Create(ctx, contract.NewCreateAssignmentRequest(tpl.ID, admin, ana.ID, ben.ID))
	require.NoError(t, err)

	st, err := h.directory.Stats(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Total)
	assert.Equal(t, 1, st.Instances)
	assert.Equal(t, 2, st.Outstanding)
	assert.Zero(t, st.CompletionPct)

	all, err := h.directory.AllStats(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	all, err = h.directory.AllStats(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGet_UnknownAssignment(t *testing.T) {
	h := newHarness(t)
	_, err := h.directory.Get(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = h.directory.History(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrValidation)
}
