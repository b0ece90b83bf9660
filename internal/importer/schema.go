package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog is the top-level structure of a template and employee catalog file.
// Files ending in .json are parsed as JSON; anything else as YAML.
type Catalog struct {
	Templates []TemplateImport `json:"templates" yaml:"templates"`
	Employees []EmployeeImport `json:"employees" yaml:"employees"`
}

// TemplateImport defines a template in the catalog. Templates are matched to
// existing ones by name.
type TemplateImport struct {
	Name                 string             `json:"name" yaml:"name"`
	Description          string             `json:"description,omitempty" yaml:"description,omitempty"`
	Category             string             `json:"category" yaml:"category"`
	TrackingMode         string             `json:"tracking_mode,omitempty" yaml:"tracking_mode,omitempty"`
	AllowDecline         bool               `json:"allow_decline,omitempty" yaml:"allow_decline,omitempty"`
	RequiresVerification *bool              `json:"requires_verification,omitempty" yaml:"requires_verification,omitempty"`
	WarnWindowDays       *int               `json:"warn_window_days,omitempty" yaml:"warn_window_days,omitempty"`
	RefuseAfterDays      *int               `json:"refuse_after_days,omitempty" yaml:"refuse_after_days,omitempty"`
	Escalation           []StepImport       `json:"escalation,omitempty" yaml:"escalation,omitempty"`
	Rules                []RuleImport       `json:"rules,omitempty" yaml:"rules,omitempty"`
	Permissions          *PermissionsImport `json:"permissions,omitempty" yaml:"permissions,omitempty"`
}

// StepImport defines one escalation step. Steps are enabled unless stated.
type StepImport struct {
	Day     int    `json:"day" yaml:"day"`
	Action  string `json:"action" yaml:"action"`
	Enabled *bool  `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// RuleImport defines one auto-assign rule. Rules are enabled unless stated.
type RuleImport struct {
	ID        string   `json:"id,omitempty" yaml:"id,omitempty"`
	Trigger   string   `json:"trigger" yaml:"trigger"`
	JobTitles []string `json:"job_titles,omitempty" yaml:"job_titles,omitempty"`
	Locations []string `json:"locations,omitempty" yaml:"locations,omitempty"`
	Roles     []string `json:"roles,omitempty" yaml:"roles,omitempty"`
	Enabled   *bool    `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

type PermissionsImport struct {
	Locations []string `json:"locations,omitempty" yaml:"locations,omitempty"`
	Roles     []string `json:"roles,omitempty" yaml:"roles,omitempty"`
}

// EmployeeImport defines an employee directory record.
type EmployeeImport struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	JobTitle  string `json:"job_title,omitempty" yaml:"job_title,omitempty"`
	Location  string `json:"location,omitempty" yaml:"location,omitempty"`
	Role      string `json:"role,omitempty" yaml:"role,omitempty"`
	ManagerID string `json:"manager_id,omitempty" yaml:"manager_id,omitempty"`
}

// LoadCatalog reads and parses a catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCatalog(data, strings.EqualFold(filepath.Ext(path), ".json"))
}

func ParseCatalog(data []byte, isJSON bool) (*Catalog, error) {
	var c Catalog
	if isJSON {
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parsing catalog json: %w", err)
		}
		return &c, nil
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog yaml: %w", err)
	}
	return &c, nil
}
