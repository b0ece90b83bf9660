package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/docket/internal/domain"
	"github.com/alexanderramin/docket/internal/testutil"
)

func TestTemplateCreate_NameUniqueIgnoringCase(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.template(t, "Employee Handbook")

	dup := testutil.NewTestTemplate("  employee HANDBOOK ")
	require.ErrorIs(t, h.templates.Create(ctx, dup), domain.ErrStateConflict)

	got, err := h.templates.Resolve(ctx, "EMPLOYEE handbook")
	require.NoError(t, err)
	assert.Equal(t, "Employee Handbook", got.Name)
}

func TestTemplateCreate_Invalid(t *testing.T) {
	h := newHarness(t)
	bad := testutil.NewTestTemplate("Poster")
	bad.Category = "poster"
	require.ErrorIs(t, h.templates.Create(context.Background(), bad), domain.ErrValidation)

	dupSteps := testutil.NewTestTemplate("Handbook", testutil.WithPolicy(
		testutil.Step(3, domain.ActionRemind),
		testutil.Step(3, domain.ActionRemind),
	))
	require.ErrorIs(t, h.templates.Create(context.Background(), dupSteps), domain.ErrRuleConfig)
}

func TestEditEscalationPolicy_InFlightPickup(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	tpl := h.template(t, "Handbook")
	ana := h.employee(t, "Ana")
	a := h.assign(t, tpl, ana)

	h.clock.AdvanceDays(4)
	assert.Empty(t, h.sweep(t).Actions, "no policy yet")

	updated, err := h.templates.EditEscalationPolicy(ctx, tpl.Name, domain.EscalationPolicy{
		testutil.Step(7, domain.ActionMarkRefused),
		testutil.Step(3, domain.ActionRemind),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.EscalationPolicy[0].DayOffset)

	h.sweep(t)
	assert.Equal(t, 1, h.reload(t, a.ID).RemindersSent, "the new policy applies to the open assignment")
}

func TestRules_UpsertAndRemove(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	tpl := h.template(t, "Handbook")

	rule, err := h.templates.UpsertRule(ctx, tpl.ID, domain.AutoAssignRule{
		Trigger:    domain.TriggerHire,
		Conditions: domain.RuleConditions{Locations: []string{" Downtown "}},
		Enabled:    true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, rule.ID)

	stored, err := h.templates.GetByID(ctx, tpl.ID)
	require.NoError(t, err)
	require.Len(t, stored.AutoAssignRules, 1)

	require.NoError(t, h.templates.RemoveRule(ctx, tpl.ID, rule.ID))
	require.ErrorIs(t, h.templates.RemoveRule(ctx, tpl.ID, rule.ID), domain.ErrNotFound)

	_, err = h.templates.EditAutoAssignRules(ctx, tpl.ID, []domain.AutoAssignRule{{Trigger: "promotion"}})
	require.ErrorIs(t, err, domain.ErrRuleConfig)
}

func TestArchive_HidesFromList(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	tpl := h.template(t, "Handbook")
	require.NoError(t, h.templates.Archive(ctx, tpl.ID))
	require.ErrorIs(t, h.templates.Archive(ctx, tpl.ID), domain.ErrStateConflict)

	active, err := h.templates.List(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, h.templates.Unarchive(ctx, tpl.Name))
	active, err = h.templates.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}
