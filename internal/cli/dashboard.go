package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/docket/internal/cli/formatter"
	"github.com/alexanderramin/docket/internal/contract"
	"github.com/alexanderramin/docket/internal/domain"
)

func newDashboardCmd(app *App) *cobra.Command {
	var refresh time.Duration
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Live per-template status board",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return fmt.Errorf("dashboard needs an interactive terminal; use 'docket stats' instead")
			}
			p := tea.NewProgram(newDashboard(app, refresh), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err := p.Run()
			return err
		},
	}
	cmd.Flags().DurationVar(&refresh, "refresh", 30*time.Second, "Reload interval, 0 to disable")
	return cmd
}

type statsLoadedMsg struct {
	stats []contract.TemplateStats
	at    time.Time
	err   error
}

type refreshTickMsg struct{}

type dashboardKeys struct {
	Quit     key.Binding
	Reload   key.Binding
	Archived key.Binding
}

var dashKeys = dashboardKeys{
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Archived: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "toggle archived")),
}

// dashboard shows AllStats in a table and reloads on an interval.
type dashboard struct {
	app      *App
	refresh  time.Duration
	archived bool

	table    table.Model
	stats    []contract.TemplateStats
	loadedAt time.Time
	loading  bool
	err      error
}

var dashboardColumns = []table.Column{
	{Title: "TEMPLATE", Width: 28},
	{Title: "MODE", Width: 11},
	{Title: "TOTAL", Width: 6},
	{Title: "OPEN", Width: 6},
	{Title: "OVERDUE", Width: 8},
	{Title: "SUMMARY", Width: 40},
}

func newDashboard(app *App, refresh time.Duration) *dashboard {
	t := table.New(
		table.WithColumns(dashboardColumns),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(formatter.ColorHeader).Bold(true)
	styles.Selected = styles.Selected.Foreground(formatter.ColorFg).Background(formatter.ColorDim)
	t.SetStyles(styles)
	return &dashboard{app: app, refresh: refresh, table: t, loading: true}
}

func (d *dashboard) Init() tea.Cmd {
	return tea.Batch(d.load(), d.tick())
}

func (d *dashboard) load() tea.Cmd {
	app, archived := d.app, d.archived
	return func() tea.Msg {
		stats, err := app.templateStatsUseCase().AllStats(context.Background(), archived)
		return statsLoadedMsg{stats: stats, at: app.now(), err: err}
	}
}

func (d *dashboard) tick() tea.Cmd {
	if d.refresh <= 0 {
		return nil
	}
	return tea.Tick(d.refresh, func(time.Time) tea.Msg { return refreshTickMsg{} })
}

func (d *dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		d.table.SetHeight(max(msg.Height-6, 3))
		return d, nil

	case statsLoadedMsg:
		d.loading = false
		d.err = msg.err
		if msg.err == nil {
			d.stats = msg.stats
			d.loadedAt = msg.at
			d.table.SetRows(dashboardRows(msg.stats))
		}
		return d, nil

	case refreshTickMsg:
		return d, tea.Batch(d.load(), d.tick())

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, dashKeys.Quit):
			return d, tea.Quit
		case key.Matches(msg, dashKeys.Reload):
			d.loading = true
			return d, d.load()
		case key.Matches(msg, dashKeys.Archived):
			d.archived = !d.archived
			d.loading = true
			return d, d.load()
		}
	}

	var cmd tea.Cmd
	d.table, cmd = d.table.Update(msg)
	return d, cmd
}

func (d *dashboard) View() string {
	var b strings.Builder
	b.WriteString(formatter.Header("Docket"))
	b.WriteString("\n")
	switch {
	case d.err != nil:
		b.WriteString(formatter.StyleRed.Render("Error: " + d.err.Error()))
	case d.loading && d.stats == nil:
		b.WriteString(formatter.Dim("Loading..."))
	case len(d.stats) == 0:
		b.WriteString(formatter.Dim("No templates yet."))
	default:
		b.WriteString(d.table.View())
	}
	b.WriteString("\n")

	status := "active templates"
	if d.archived {
		status = "all templates"
	}
	if !d.loadedAt.IsZero() {
		status += ", updated " + d.loadedAt.Format("15:04:05")
	}
	help := []string{}
	for _, k := range []key.Binding{dashKeys.Reload, dashKeys.Archived, dashKeys.Quit} {
		h := k.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	b.WriteString(formatter.Dim(status + "  " + strings.Join(help, " • ")))
	return b.String()
}

func dashboardRows(stats []contract.TemplateStats) []table.Row {
	rows := make([]table.Row, 0, len(stats))
	for _, s := range stats {
		name := s.TemplateName
		if s.Archived {
			name += " (archived)"
		}
		rows = append(rows, table.Row{
			name,
			string(s.TrackingMode),
			fmt.Sprint(s.Total),
			fmt.Sprint(s.Outstanding),
			fmt.Sprint(s.Overdue),
			plainSummary(s),
		})
	}
	return rows
}

// plainSummary is StatsSummary without styling; table cells are measured by
// rune width and would be truncated mid escape sequence.
func plainSummary(s contract.TemplateStats) string {
	switch s.TrackingMode {
	case domain.TrackingCompliance:
		return fmt.Sprintf("%d valid, %d expiring, %d expired, %d missing",
			s.Valid, s.ExpiringSoon, s.Expired, s.Missing)
	case domain.TrackingIssuance:
		return fmt.Sprintf("%d issued, %d acknowledged, %d refused", s.Issued, s.Acknowledged, s.Refused)
	default:
		return fmt.Sprintf("%.0f%% complete", s.CompletionPct)
	}
}
