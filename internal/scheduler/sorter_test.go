package scheduler

import (
	"testing"
	"time"

	"github.com/alexanderramin/docket/internal/domain"
	"github.com/stretchr/testify/assert"
)

func ids(as []*domain.Assignment) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.ID
	}
	return out
}

func TestSweepOrder(t *testing.T) {
	early := testNow.Add(-48 * time.Hour)
	late := testNow.Add(-time.Hour)
	as := []*domain.Assignment{
		{ID: "c"},
		{ID: "b", SentAt: &late},
		{ID: "z", SentAt: &early},
		{ID: "a", SentAt: &early},
	}
	SweepOrder(as)
	assert.Equal(t, []string{"a", "z", "b", "c"}, ids(as))
}

func TestDirectoryOrder(t *testing.T) {
	due := testNow.Add(24 * time.Hour)
	as := []*domain.Assignment{
		{ID: "1", RecipientID: "r1", Status: domain.StatusResolvedPositive},
		{ID: "2", RecipientID: "r2", Status: domain.StatusAwaitingAction},
		{ID: "3", RecipientID: "r3", Status: domain.StatusAwaitingAction, DueAt: &due},
		{ID: "4", RecipientID: "r4", Status: domain.StatusPendingVerification},
	}
	DirectoryOrder(as)
	assert.Equal(t, []string{"4", "3", "2", "1"}, ids(as))
}
