package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/docket/internal/autoassign"
	"github.com/alexanderramin/docket/internal/domain"
	"github.com/alexanderramin/docket/internal/testutil"
)

func hire(e *domain.Employee) domain.EmployeeEvent {
	snap := *e
	return domain.EmployeeEvent{EmployeeID: e.ID, Type: domain.TriggerHire, Snapshot: &snap}
}

func TestHandleEvent_HireTwiceAssignsOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	tpl := h.template(t, "Handbook", testutil.WithRules(testutil.Rule(domain.TriggerHire, domain.RuleConditions{})))
	e := testutil.NewTestEmployee("Ana")

	first, err := h.autoAssign.HandleEvent(ctx, hire(e))
	require.NoError(t, err)
	require.Len(t, first.Created, 1)
	a := first.Created[0]
	assert.Equal(t, domain.StatusAwaitingAction, a.Status)
	assert.Equal(t, e.ID, a.RecipientID)

	second, err := h.autoAssign.HandleEvent(ctx, hire(e))
	require.NoError(t, err)
	assert.Empty(t, second.Created)
	require.Len(t, second.Decisions, 1)
	assert.Equal(t, autoassign.DecisionSkipActive, second.Decisions[0].Kind)
	assert.Equal(t, a.ID, second.Decisions[0].ExistingID)

	as, err := h.assignmentRepo.ListByTemplate(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Len(t, as, 1)

	insts, err := h.directory.ListInstances(ctx, tpl.ID)
	require.NoError(t, err)
	require.Len(t, insts, 1)
	assert.Equal(t, domain.SourceAutoAssign, insts[0].Source)
	assert.Equal(t, domain.TriggerHire, insts[0].Trigger)
	assert.Len(t, h.notifier.sent(kindAssigned), 1)
}

func TestHandleEvent_MatchesLocation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.template(t, "Downtown safety", testutil.WithRules(
		testutil.Rule(domain.TriggerHire, domain.RuleConditions{Locations: []string{"Downtown"}}),
	))

	uptown := testutil.NewTestEmployee("Ben", testutil.WithLocation("Uptown"))
	res, err := h.autoAssign.HandleEvent(ctx, hire(uptown))
	require.NoError(t, err)
	assert.Empty(t, res.Decisions)
	assert.Empty(t, res.Created)

	downtown := testutil.NewTestEmployee("Cleo", testutil.WithLocation("downtown"))
	res, err = h.autoAssign.HandleEvent(ctx, hire(downtown))
	require.NoError(t, err)
	require.Len(t, res.Created, 1)

	stored, err := h.employees.GetByID(ctx, uptown.ID)
	require.NoError(t, err)
	assert.Equal(t, "Uptown", stored.Location, "the snapshot is kept even when nothing matches")
}

func TestHandleEvent_UnknownEmployeeWithoutSnapshot(t *testing.T) {
	h := newHarness(t)
	_, err := h.autoAssign.HandleEvent(context.Background(), domain.EmployeeEvent{EmployeeID: "ghost", Type: domain.TriggerHire})
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = h.autoAssign.HandleEvent(context.Background(), domain.EmployeeEvent{EmployeeID: "e1", Type: "fired"})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestHandleEvent_ArchivedTemplateSkipped(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	tpl := h.template(t, "Old handbook", testutil.WithRules(testutil.Rule(domain.TriggerHire, domain.RuleConditions{})))
	require.NoError(t, h.templates.Archive(ctx, tpl.ID))

	res, err := h.autoAssign.HandleEvent(ctx, hire(testutil.NewTestEmployee("Ana")))
	require.NoError(t, err)
	assert.Empty(t, res.Created)
	require.Len(t, res.Decisions, 1)
	assert.Equal(t, autoassign.DecisionSkipArchived, res.Decisions[0].Kind)
}

func TestPreview_WritesNothing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	tpl := h.template(t, "Handbook", testutil.WithRules(testutil.Rule(domain.TriggerHire, domain.RuleConditions{})))
	e := testutil.NewTestEmployee("Ana")

	res, err := h.autoAssign.Preview(ctx, hire(e))
	require.NoError(t, err)
	assert.False(t, res.Applied)
	require.Len(t, res.Decisions, 1)
	assert.Equal(t, autoassign.DecisionAssign, res.Decisions[0].Kind)
	assert.Equal(t, tpl.ID, res.Decisions[0].TemplateID)

	_, err = h.employees.GetByID(ctx, e.ID)
	require.ErrorIs(t, err, domain.ErrNotFound, "preview does not store the snapshot")
	as, err := h.assignmentRepo.ListByTemplate(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Empty(t, as)
	assert.Empty(t, h.notifier.Calls)
}

func TestTestRule(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.employee(t, "Ana", testutil.WithLocation("Downtown"), testutil.WithJobTitle("Cook"))
	h.employee(t, "Ben", testutil.WithLocation("Uptown"), testutil.WithJobTitle("Cook"))
	h.employee(t, "Cleo", testutil.WithLocation("Downtown"), testutil.WithJobTitle("Server"))

	rule := testutil.Rule(domain.TriggerHire, domain.RuleConditions{Locations: []string{"Downtown"}, JobTitles: []string{"cook"}})
	res, err := h.autoAssign.TestRule(ctx, rule)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Scanned)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, "Ana", res.Matches[0].Name)

	_, err = h.autoAssign.TestRule(ctx, domain.AutoAssignRule{Trigger: "promotion"})
	require.ErrorIs(t, err, domain.ErrRuleConfig)
}
