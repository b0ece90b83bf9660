package domain

import (
	"fmt"
	"sort"
	"time"
)

// EscalationStep is one day-offset action in a template's escalation policy.
type EscalationStep struct {
	DayOffset int              `json:"day_offset" yaml:"day_offset"`
	Action    EscalationAction `json:"action" yaml:"action"`
	Enabled   bool             `json:"enabled" yaml:"enabled"`
}

// Key identifies the step within a policy for fired-step bookkeeping.
func (s EscalationStep) Key() string {
	return fmt.Sprintf("%d:%s", s.DayOffset, s.Action)
}

func (s EscalationStep) Validate() error {
	if s.DayOffset < 0 {
		return ruleConfigf("escalation step: day offset %d must be >= 0", s.DayOffset)
	}
	if !ValidEscalationActions[s.Action] {
		return ruleConfigf("escalation step: unknown action %q", s.Action)
	}
	return nil
}

// EscalationPolicy is an ordered list of escalation steps.
type EscalationPolicy []EscalationStep

// Validate checks every step and rejects duplicate (dayOffset, action) pairs,
// which would otherwise share a fired-step marker.
func (p EscalationPolicy) Validate() error {
	seen := make(map[string]bool, len(p))
	for i, s := range p {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		if seen[s.Key()] {
			return ruleConfigf("step %d: duplicate step %s", i, s.Key())
		}
		seen[s.Key()] = true
	}
	return nil
}

// Sorted returns a copy ordered by ascending day offset. Steps sharing an
// offset keep their configured order.
func (p EscalationPolicy) Sorted() EscalationPolicy {
	out := make(EscalationPolicy, len(p))
	copy(out, p)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DayOffset < out[j].DayOffset
	})
	return out
}

// DefaultPolicy is the single-step convenience view of "refuse after N days".
func DefaultPolicy(days int) EscalationPolicy {
	return EscalationPolicy{{DayOffset: days, Action: ActionMarkRefused, Enabled: true}}
}

// FiredStep records that an escalation step fired for an assignment during a
// given renewal cycle.
type FiredStep struct {
	Cycle     int
	DayOffset int
	Action    EscalationAction
	FiredAt   time.Time
}

func (f FiredStep) Key() string {
	return fmt.Sprintf("%d:%d:%s", f.Cycle, f.DayOffset, f.Action)
}
