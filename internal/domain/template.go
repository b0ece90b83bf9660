package domain

import (
	"fmt"
	"slices"
	"time"
)

// Permissions optionally restricts who may assign a template. Empty lists
// impose no restriction.
type Permissions struct {
	Locations []string `json:"locations,omitempty" yaml:"locations,omitempty"`
	Roles     []string `json:"roles,omitempty" yaml:"roles,omitempty"`
}

func (p Permissions) IsEmpty() bool {
	return len(p.Locations) == 0 && len(p.Roles) == 0
}

// Allows reports whether the actor may assign the template. Administrators and
// the system are never restricted.
func (p Permissions) Allows(a Actor) bool {
	if a.IsAdmin() {
		return true
	}
	if len(p.Locations) > 0 && !containsKey(p.Locations, a.Location) {
		return false
	}
	if len(p.Roles) > 0 && !containsKey(p.Roles, string(a.Role)) {
		return false
	}
	return true
}

// Template is a reusable document or process definition.
type Template struct {
	ID                   string
	Name                 string
	Description          string
	Category             Category
	TrackingMode         TrackingMode
	EscalationPolicy     EscalationPolicy
	AutoAssignRules      []AutoAssignRule
	Permissions          Permissions
	WarnWindowDays       int
	AllowDecline         bool
	RequiresVerification bool
	ArchivedAt           *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// DefaultTrackingMode returns the tracking mode a category uses when the
// administrator does not choose one.
func DefaultTrackingMode(c Category) TrackingMode {
	switch c {
	case CategoryCertification:
		return TrackingCompliance
	case CategoryWriteUp:
		return TrackingIssuance
	default:
		return TrackingProgress
	}
}

// ApplyDefaults fills mode and verification settings implied by the category.
func (t *Template) ApplyDefaults() {
	if t.TrackingMode == "" {
		t.TrackingMode = DefaultTrackingMode(t.Category)
	}
	if t.Category == CategoryCertification {
		t.RequiresVerification = true
	}
}

func (t *Template) Validate() error {
	if t.Name == "" {
		return validationf("template name is required")
	}
	if !ValidCategories[t.Category] {
		return validationf("template category %q is not one of signing, certification, write_up, custom_form", t.Category)
	}
	if !ValidTrackingModes[t.TrackingMode] {
		return validationf("template tracking mode %q is not one of progress, compliance, issuance", t.TrackingMode)
	}
	if t.WarnWindowDays < 0 {
		return validationf("warn window must be a non-negative number of days, got %d", t.WarnWindowDays)
	}
	if err := t.EscalationPolicy.Validate(); err != nil {
		return err
	}
	for _, r := range t.AutoAssignRules {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (t *Template) IsArchived() bool {
	return t.ArchivedAt != nil
}

func (t *Template) IsCompliance() bool {
	return t.TrackingMode == TrackingCompliance
}

// Archive retires the template. In-flight assignments keep running; the rule
// engine stops creating new ones.
func (t *Template) Archive(now time.Time) error {
	if t.IsArchived() {
		return conflictf("template %s is already archived", t.ID)
	}
	t.ArchivedAt = &now
	t.UpdatedAt = now
	return nil
}

func (t *Template) Unarchive(now time.Time) error {
	if !t.IsArchived() {
		return conflictf("template %s is not archived", t.ID)
	}
	t.ArchivedAt = nil
	t.UpdatedAt = now
	return nil
}

// SetEscalationPolicy replaces the policy after validating it.
func (t *Template) SetEscalationPolicy(p EscalationPolicy, now time.Time) error {
	if err := p.Validate(); err != nil {
		return err
	}
	t.EscalationPolicy = p.Sorted()
	t.UpdatedAt = now
	return nil
}

// SetAutoAssignRules replaces the rule set after validating it.
func (t *Template) SetAutoAssignRules(rules []AutoAssignRule, now time.Time) error {
	normalized, err := NormalizeRules(rules)
	if err != nil {
		return err
	}
	t.AutoAssignRules = normalized
	t.UpdatedAt = now
	return nil
}

// UpsertAutoAssignRule replaces the rule with the same ID, or appends it.
func (t *Template) UpsertAutoAssignRule(rule AutoAssignRule, now time.Time) (AutoAssignRule, error) {
	rules := slices.Clone(t.AutoAssignRules)
	idx := slices.IndexFunc(rules, func(r AutoAssignRule) bool { return rule.ID != "" && r.ID == rule.ID })
	if idx >= 0 {
		rules[idx] = rule
	} else {
		rules = append(rules, rule)
		idx = len(rules) - 1
	}
	if err := t.SetAutoAssignRules(rules, now); err != nil {
		return AutoAssignRule{}, err
	}
	return t.AutoAssignRules[idx], nil
}

// RemoveAutoAssignRule deletes the rule with the given ID.
func (t *Template) RemoveAutoAssignRule(ruleID string, now time.Time) error {
	idx := slices.IndexFunc(t.AutoAssignRules, func(r AutoAssignRule) bool { return r.ID == ruleID })
	if idx < 0 {
		return fmt.Errorf("auto-assign rule %s: %w", ruleID, ErrNotFound)
	}
	t.AutoAssignRules = slices.Delete(slices.Clone(t.AutoAssignRules), idx, idx+1)
	t.UpdatedAt = now
	return nil
}

func containsKey(list []string, v string) bool {
	key := NormalizeKey(v)
	if key == "" {
		return false
	}
	for _, item := range list {
		if NormalizeKey(item) == key {
			return true
		}
	}
	return false
}
