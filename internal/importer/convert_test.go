package importer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/docket/internal/domain"
)

var importNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

const catalogYAML = `
templates:
  - name: Food Handler
    category: certification
    warn_window_days: 45
    escalation:
      - {day: 7, action: mark_refused}
      - {day: 3, action: remind}
      - {day: 5, action: notify_manager, enabled: false}
    rules:
      - trigger: hire
        job_titles: [Cook]
        locations: [Downtown]
  - name: Late Arrival
    category: write_up
    allow_decline: true
    refuse_after_days: 14
employees:
  - {id: m1, name: Mia, role: manager, location: Downtown}
  - {id: e1, name: Ana, job_title: Cook, location: Downtown, manager_id: m1}
`

func TestParseCatalog_YAML(t *testing.T) {
	c, err := ParseCatalog([]byte(catalogYAML), false)
	require.NoError(t, err)
	require.Len(t, c.Templates, 2)
	require.Len(t, c.Employees, 2)
	assert.Empty(t, ValidateCatalog(c))
	assert.Equal(t, 45, *c.Templates[0].WarnWindowDays)
	assert.False(t, *c.Templates[0].Escalation[2].Enabled)
}

func TestLoadCatalog_JSONByExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	data := `{"templates":[{"name":"Handbook","category":"signing"}],"employees":[{"id":"e1","name":"Ana"}]}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, "Handbook", c.Templates[0].Name)
	assert.Equal(t, "e1", c.Employees[0].ID)
}

func TestLoadCatalog_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("templates: [unclosed"), 0o600))
	_, err := LoadCatalog(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing catalog yaml")
}

func TestConvert(t *testing.T) {
	c, err := ParseCatalog([]byte(catalogYAML), false)
	require.NoError(t, err)

	out := Convert(c, importNow)
	require.Len(t, out.Templates, 2)

	cert := out.Templates[0]
	assert.NotEmpty(t, cert.ID)
	assert.Equal(t, domain.TrackingCompliance, cert.TrackingMode)
	assert.True(t, cert.RequiresVerification)
	assert.Equal(t, 45, cert.WarnWindowDays)
	require.Len(t, cert.EscalationPolicy, 3)
	assert.Equal(t, 3, cert.EscalationPolicy[0].DayOffset, "steps are sorted")
	assert.False(t, cert.EscalationPolicy[1].Enabled)
	require.Len(t, cert.AutoAssignRules, 1)
	assert.NotEmpty(t, cert.AutoAssignRules[0].ID)
	assert.True(t, cert.AutoAssignRules[0].Enabled)
	require.NoError(t, cert.Validate())

	writeUp := out.Templates[1]
	assert.Equal(t, domain.TrackingIssuance, writeUp.TrackingMode)
	assert.Equal(t, domain.DefaultPolicy(14), writeUp.EscalationPolicy)
	assert.Equal(t, domain.DefaultWarnWindowDays, writeUp.WarnWindowDays)
	assert.True(t, writeUp.AllowDecline)

	require.Len(t, out.Employees, 2)
	assert.Equal(t, "m1", out.Employees[1].ManagerID)
	assert.Equal(t, importNow, out.Employees[1].UpdatedAt)
}

func TestConvert_RequiresVerificationOverride(t *testing.T) {
	c := &Catalog{Templates: []TemplateImport{
		{Name: "Self-attested CPR", Category: "certification", RequiresVerification: ptrBool(false)},
	}}
	out := Convert(c, importNow)
	assert.False(t, out.Templates[0].RequiresVerification)
}
