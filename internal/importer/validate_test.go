package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrInt(i int) *int    { return &i }
func ptrBool(b bool) *bool { return &b }

func validMinimalCatalog() *Catalog {
	return &Catalog{
		Templates: []TemplateImport{
			{Name: "Employee Handbook", Category: "signing"},
		},
		Employees: []EmployeeImport{
			{ID: "e1", Name: "Ana"},
		},
	}
}

func errorsContain(errs []error, substr string) bool {
	for _, err := range errs {
		if strings.Contains(err.Error(), substr) {
			return true
		}
	}
	return false
}

func TestValidateCatalog_ValidMinimal(t *testing.T) {
	assert.Empty(t, ValidateCatalog(validMinimalCatalog()))
}

func TestValidateCatalog_ValidFull(t *testing.T) {
	c := &Catalog{
		Templates: []TemplateImport{
			{
				Name:           "Food Handler",
				Category:       "certification",
				WarnWindowDays: ptrInt(45),
				Escalation: []StepImport{
					{Day: 3, Action: "remind"},
					{Day: 5, Action: "notify_manager"},
					{Day: 7, Action: "mark_refused", Enabled: ptrBool(false)},
				},
				Rules: []RuleImport{
					{Trigger: "hire", JobTitles: []string{"Cook"}, Locations: []string{"Downtown"}},
				},
				Permissions: &PermissionsImport{Roles: []string{"manager"}},
			},
			{Name: "Late Arrival", Category: "write_up", AllowDecline: true, RefuseAfterDays: ptrInt(14)},
		},
		Employees: []EmployeeImport{
			{ID: "m1", Name: "Mia", Role: "manager"},
			{ID: "e1", Name: "Ana", ManagerID: "m1"},
		},
	}
	assert.Empty(t, ValidateCatalog(c))
}

func TestValidateCatalog_TemplateErrors(t *testing.T) {
	c := &Catalog{Templates: []TemplateImport{
		{Name: "", Category: "poster"},
		{Name: "Handbook", Category: "signing", TrackingMode: "vibes", WarnWindowDays: ptrInt(-1)},
		{Name: " handbook ", Category: "signing"},
		{
			Name: "Policy", Category: "signing", RefuseAfterDays: ptrInt(7),
			Escalation: []StepImport{{Day: -1, Action: "shout"}, {Day: 3, Action: "remind"}, {Day: 3, Action: "remind"}},
			Rules:      []RuleImport{{Trigger: "promotion"}, {ID: "r", Trigger: "hire", Locations: []string{" "}}, {ID: "r", Trigger: "hire"}},
		},
	}}
	errs := ValidateCatalog(c)

	for _, want := range []string{
		"templates[0].name is required",
		"templates[0].category: invalid value",
		"templates[1].tracking_mode: invalid value",
		"templates[1].warn_window_days must be >= 0",
		"templates[2].name: duplicate template",
		"refuse_after_days and escalation are mutually exclusive",
		"escalation[0].day must be >= 0",
		"escalation[0].action: invalid value",
		"escalation[2]: duplicate step",
		"rules[0].trigger: invalid value",
		"rules[1].locations: blank value",
		"rules[2].id: duplicate rule id",
	} {
		assert.True(t, errorsContain(errs, want), "missing error %q in %v", want, errs)
	}
}

func TestValidateCatalog_EmployeeErrors(t *testing.T) {
	c := &Catalog{Employees: []EmployeeImport{
		{ID: "", Name: "Nobody"},
		{ID: "e1", Name: ""},
		{ID: "e1", Name: "Dup"},
		{ID: "e2", Name: "Self", ManagerID: "e2"},
	}}
	errs := ValidateCatalog(c)
	require.Len(t, errs, 4)
	assert.True(t, errorsContain(errs, "employees[0].id is required"))
	assert.True(t, errorsContain(errs, "employees[1].name is required"))
	assert.True(t, errorsContain(errs, "employees[2].id: duplicate id"))
	assert.True(t, errorsContain(errs, "employees[3].manager_id"))
}
