package scheduler

import (
	"math/rand"
	"testing"
	"time"

	"github.com/alexanderramin/docket/internal/domain"
	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func ptr(t time.Time) *time.Time { return &t }

func TestClassify_Buckets(t *testing.T) {
	cases := []struct {
		name       string
		validUntil *time.Time
		window     int
		want       domain.Freshness
	}{
		{"absent", nil, 30, domain.FreshnessNone},
		{"boundary equals now", ptr(testNow), 30, domain.FreshnessExpired},
		{"past", ptr(testNow.Add(-time.Second)), 30, domain.FreshnessExpired},
		{"just ahead", ptr(testNow.Add(time.Second)), 30, domain.FreshnessExpiringSoon},
		{"ten days", ptr(testNow.AddDate(0, 0, 10)), 30, domain.FreshnessExpiringSoon},
		{"window edge", ptr(testNow.AddDate(0, 0, 30)), 30, domain.FreshnessExpiringSoon},
		{"beyond window", ptr(testNow.AddDate(0, 0, 30).Add(time.Second)), 30, domain.FreshnessValid},
		{"zero window", ptr(testNow.Add(time.Hour)), 0, domain.FreshnessValid},
		{"negative window clamps", ptr(testNow.Add(time.Hour)), -5, domain.FreshnessValid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.validUntil, testNow, tc.window))
		})
	}
}

// TestClassify_Invariants_TotalAndExclusive property-tests that classification
// always yields exactly one known bucket and that expired always means
// validUntil <= now.
func TestClassify_Invariants_TotalAndExclusive(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	known := map[domain.Freshness]bool{
		domain.FreshnessNone: true, domain.FreshnessValid: true,
		domain.FreshnessExpiringSoon: true, domain.FreshnessExpired: true,
	}

	for trial := 0; trial < 500; trial++ {
		offset := time.Duration(rng.Int63n(int64(200*day))) - 100*day
		window := rng.Intn(90) - 10
		until := testNow.Add(offset)

		got := Classify(&until, testNow, window)
		assert.True(t, known[got], "trial %d: unknown bucket %q", trial, got)
		assert.NotEqual(t, domain.FreshnessNone, got, "trial %d: a date is always tracked", trial)

		if got == domain.FreshnessExpired {
			assert.False(t, until.After(testNow), "trial %d: expired requires validUntil <= now", trial)
		}
		if got == domain.FreshnessExpiringSoon {
			assert.True(t, until.After(testNow), "trial %d: expiring-soon requires validUntil > now", trial)
		}
	}
}

func TestFreshnessOf_ComplianceExpiringSoon(t *testing.T) {
	a := &domain.Assignment{Status: domain.StatusResolvedPositive, ValidUntil: ptr(testNow.AddDate(0, 0, 10))}
	assert.Equal(t, domain.FreshnessExpiringSoon, FreshnessOf(a, 30, testNow))

	a.Status = domain.StatusAwaitingAction
	assert.Equal(t, domain.FreshnessNone, FreshnessOf(a, 30, testNow))
}

func TestNeedsRenewal(t *testing.T) {
	tpl := &domain.Template{TrackingMode: domain.TrackingCompliance, WarnWindowDays: 30}
	a := &domain.Assignment{Status: domain.StatusResolvedPositive, ValidUntil: ptr(testNow)}
	assert.True(t, NeedsRenewal(a, tpl, testNow))

	tpl.TrackingMode = domain.TrackingProgress
	assert.False(t, NeedsRenewal(a, tpl, testNow))
}

func TestIsOverdue(t *testing.T) {
	a := &domain.Assignment{Status: domain.StatusAwaitingAction}
	assert.False(t, IsOverdue(a, testNow))
	a.DueAt = ptr(testNow.Add(-time.Minute))
	assert.True(t, IsOverdue(a, testNow))
	a.Status = domain.StatusResolvedPositive
	assert.False(t, IsOverdue(a, testNow))
}
