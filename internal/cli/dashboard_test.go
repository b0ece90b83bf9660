package cli

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/docket/internal/teatest"
)

func newDashboardDriver(t *testing.T, app *App) *teatest.Driver {
	t.Helper()
	d := teatest.New(t, newDashboard(app, 0), teatest.WithSize(120, 30))
	d.DrainInit()
	return d
}

func TestDashboard_ShowsTemplates(t *testing.T) {
	app, _ := testApp(t)
	seedCertification(t, app)

	d := newDashboardDriver(t, app)
	view := d.View()
	assert.Contains(t, view, "Food Handler")
	assert.Contains(t, view, "compliance")
	assert.NotContains(t, view, "Loading...")
}

func TestDashboard_Empty(t *testing.T) {
	app, _ := testApp(t)
	d := newDashboardDriver(t, app)
	assert.Contains(t, d.View(), "No templates yet.")
}

func TestDashboard_ToggleArchived(t *testing.T) {
	app, _ := testApp(t)
	tpl, _ := seedCertification(t, app)
	require.NoError(t, app.Templates.Archive(context.Background(), tpl.ID))

	d := newDashboardDriver(t, app)
	assert.NotContains(t, d.View(), "Food Handler")

	d.PressKey('a')
	assert.Contains(t, d.View(), "Food Handler (archived)")
	assert.Contains(t, d.View(), "all templates")
}

func TestDashboard_ReloadPicksUpChanges(t *testing.T) {
	app, _ := testApp(t)
	d := newDashboardDriver(t, app)
	assert.Contains(t, d.View(), "No templates yet.")

	seedCertification(t, app)
	d.PressKey('r')
	assert.Contains(t, d.View(), "Food Handler")
}

func TestDashboard_Quit(t *testing.T) {
	app, _ := testApp(t)

	d := newDashboardDriver(t, app)
	d.PressKey('q')
	assert.True(t, d.Quitting)

	d = newDashboardDriver(t, app)
	d.Press(tea.KeyCtrlC)
	assert.True(t, d.Quitting)
}

func TestPlainSummary(t *testing.T) {
	app, _ := testApp(t)
	tpl, emp := seedCertification(t, app)
	_, err := executeCmd(t, app, "assign", "create", tpl.ID, "--to", emp.ID)
	require.NoError(t, err)

	s, err := app.Directory.Stats(context.Background(), tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, "0 valid, 0 expiring, 0 expired, 1 missing", plainSummary(*s))
}
