package domain

import "github.com/google/uuid"

// RuleConditions restricts which employees an auto-assign rule applies to. An
// empty list means "match any" for that attribute.
type RuleConditions struct {
	JobTitles []string `json:"job_titles,omitempty" yaml:"job_titles,omitempty"`
	Locations []string `json:"locations,omitempty" yaml:"locations,omitempty"`
	Roles     []string `json:"roles,omitempty" yaml:"roles,omitempty"`
}

// AutoAssignRule assigns its template to employees matching Conditions when
// the employee directory emits Trigger.
type AutoAssignRule struct {
	ID         string         `json:"id" yaml:"id"`
	Trigger    Trigger        `json:"trigger" yaml:"trigger"`
	Conditions RuleConditions `json:"conditions" yaml:"conditions"`
	Enabled    bool           `json:"enabled" yaml:"enabled"`
}

func (r AutoAssignRule) Validate() error {
	if !ValidTriggers[r.Trigger] {
		return ruleConfigf("auto-assign rule: unknown trigger %q", r.Trigger)
	}
	for _, list := range [][]string{r.Conditions.JobTitles, r.Conditions.Locations, r.Conditions.Roles} {
		for _, v := range list {
			if NormalizeKey(v) == "" {
				return ruleConfigf("auto-assign rule: blank condition value")
			}
		}
	}
	return nil
}

// NormalizeRules assigns IDs to new rules and validates the set.
func NormalizeRules(rules []AutoAssignRule) ([]AutoAssignRule, error) {
	out := make([]AutoAssignRule, len(rules))
	seen := make(map[string]bool, len(rules))
	for i, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if r.ID == "" {
			r.ID = uuid.New().String()
		}
		if seen[r.ID] {
			return nil, ruleConfigf("auto-assign rule: duplicate id %q", r.ID)
		}
		seen[r.ID] = true
		out[i] = r
	}
	return out, nil
}
