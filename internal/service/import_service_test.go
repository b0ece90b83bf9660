package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/docket/internal/domain"
	"github.com/alexanderramin/docket/internal/importer"
	"github.com/alexanderramin/docket/internal/testutil"
)

const seedCatalog = `
templates:
  - name: Food Handler
    category: certification
    escalation:
      - {day: 3, action: remind}
      - {day: 7, action: mark_refused}
    rules:
      - trigger: hire
        locations: [Downtown]
  - name: Late Arrival
    category: write_up
    refuse_after_days: 14
employees:
  - {id: m1, name: Mia, role: manager, location: Downtown}
  - {id: e1, name: Ana, job_title: Cook, location: Downtown, manager_id: m1}
`

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestImportCatalog_CreatesThenUpdates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	path := writeCatalog(t, seedCatalog)

	res, err := h.imports.ImportCatalog(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, res.TemplatesCreated)
	assert.Zero(t, res.TemplatesUpdated)
	assert.Equal(t, 2, res.EmployeesUpserted)

	food, err := h.templates.Resolve(ctx, "food handler")
	require.NoError(t, err)
	assert.Equal(t, domain.TrackingCompliance, food.TrackingMode)
	assert.True(t, food.RequiresVerification)
	require.Len(t, food.EscalationPolicy, 2)
	require.Len(t, food.AutoAssignRules, 1)

	late, err := h.templates.Resolve(ctx, "Late Arrival")
	require.NoError(t, err)
	require.Len(t, late.EscalationPolicy, 1)
	assert.Equal(t, domain.ActionMarkRefused, late.EscalationPolicy[0].Action)
	assert.Equal(t, 14, late.EscalationPolicy[0].DayOffset)

	again, err := h.imports.ImportCatalog(ctx, path)
	require.NoError(t, err)
	assert.Zero(t, again.TemplatesCreated)
	assert.Equal(t, 2, again.TemplatesUpdated)

	reimported, err := h.templates.Resolve(ctx, "Food Handler")
	require.NoError(t, err)
	assert.Equal(t, food.ID, reimported.ID, "re-import keeps the template identity")
}

func TestImportCatalog_ValidationErrorsAreJoined(t *testing.T) {
	h := newHarness(t)
	c := &importer.Catalog{
		Templates: []importer.TemplateImport{{Category: "poster"}},
		Employees: []importer.EmployeeImport{{Name: "No ID"}},
	}
	_, err := h.imports.ImportCatalogFromSchema(context.Background(), c)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "templates[0].name is required")

	all, err := h.templates.List(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestImportCatalog_RollsBackOnFailure(t *testing.T) {
	database := testutil.NewTestDB(t)
	injected := errors.New("injected employee failure")
	// Two template inserts, then the first employee upsert fails.
	h := newHarnessWith(t, database, &testutil.FailOnNthExecUoW{DB: database, FailOn: 3, Err: injected})
	ctx := context.Background()

	_, err := h.imports.ImportCatalog(ctx, writeCatalog(t, seedCatalog))
	require.ErrorIs(t, err, injected)

	all, err := h.templates.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, all, "template inserts rolled back")
	emps, err := h.employees.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, emps)
}

func TestImportCatalog_MissingFile(t *testing.T) {
	h := newHarness(t)
	_, err := h.imports.ImportCatalog(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading import file")
}
