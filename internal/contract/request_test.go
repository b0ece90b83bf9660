package contract

import (
	"testing"

	"github.com/alexanderramin/docket/internal/domain"
	"github.com/stretchr/testify/assert"
)

// --- CreateAssignmentRequest constructor defaults ---

func TestNewCreateAssignmentRequest_SetsDefaults(t *testing.T) {
	actor := domain.Actor{ID: "adm", Role: domain.RoleAdmin}
	req := NewCreateAssignmentRequest("tpl-1", actor, "emp-1", "emp-2")

	assert.Equal(t, "tpl-1", req.TemplateID)
	assert.Equal(t, []string{"emp-1", "emp-2"}, req.RecipientIDs)
	assert.Equal(t, []domain.Channel{domain.ChannelEmail}, req.Channels)
	assert.Equal(t, actor, req.Actor)
	assert.Nil(t, req.ScheduleAt)
	assert.Nil(t, req.DueAt)
}

func TestNewSweepRequest_SetsDefaults(t *testing.T) {
	req := NewSweepRequest()
	assert.Nil(t, req.Now)
	assert.Empty(t, req.TemplateID)
	assert.False(t, req.DryRun)
}

// --- SweepReport ---

func TestSweepReport_Count(t *testing.T) {
	r := &SweepReport{Actions: []SweepAction{
		{Kind: SweepRemind},
		{Kind: SweepRemind},
		{Kind: SweepMarkRefused},
	}}
	assert.Equal(t, 2, r.Count(SweepRemind))
	assert.Equal(t, 1, r.Count(SweepMarkRefused))
	assert.Zero(t, r.Count(SweepRenew))
}

func TestSweepActionForStep_CoversEveryAction(t *testing.T) {
	for action := range domain.ValidEscalationActions {
		assert.Equal(t, string(action), string(SweepActionForStep(action)))
	}
}

// --- Action kinds are distinct ---

func TestSweepActionKinds_AreDistinct(t *testing.T) {
	kinds := []SweepActionKind{
		SweepSend, SweepRemind, SweepNotifyManager, SweepNotifyHR,
		SweepMarkRefused, SweepLapse, SweepRenew,
	}
	seen := make(map[SweepActionKind]bool)
	for _, k := range kinds {
		assert.False(t, seen[k], "duplicate action kind: %s", k)
		seen[k] = true
	}
}
