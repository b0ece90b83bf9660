package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/docket/internal/app"
	"github.com/alexanderramin/docket/internal/clock"
	"github.com/alexanderramin/docket/internal/domain"
	"github.com/alexanderramin/docket/internal/metrics"
	"github.com/alexanderramin/docket/internal/service"
)

// App holds references to the services used by CLI commands plus the
// process-wide settings some commands default their flags from.
type App struct {
	Templates   service.TemplateService
	Employees   service.EmployeeService
	Assignments service.AssignmentService
	Escalation  service.EscalationService
	AutoAssign  service.AutoAssignService
	Directory   service.DirectoryService
	Import      service.ImportService

	// Optional use-case overrides; when nil the service above is used.
	CreateAssignment app.CreateAssignmentUseCase
	Sweep            app.SweepUseCase
	EmployeeEvent    app.EmployeeEventUseCase
	TemplateStats    app.TemplateStatsUseCase
	ImportCatalog    app.ImportCatalogUseCase

	Clock   clock.Clock
	Metrics *metrics.Recorder
	Log     zerolog.Logger

	WarnWindowDays int
	SweepInterval  time.Duration
	HTTPAddr       string

	// IsInteractive reports whether stdin is a terminal. Nil means no.
	IsInteractive func() bool
}

func (a *App) now() time.Time {
	if a.Clock == nil {
		return time.Now().UTC()
	}
	return a.Clock.Now()
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// actorFlags are the persistent --actor/--role/--location flags. Commands
// read them through (*actorFlags).actor.
type actorFlags struct {
	id, role, location string
}

func (f *actorFlags) actor() (domain.Actor, error) {
	role := domain.ActorRole(strings.ToLower(strings.TrimSpace(f.role)))
	switch role {
	case domain.RoleAdmin, domain.RoleReviewer, domain.RoleManager, domain.RoleEmployee:
	default:
		return domain.Actor{}, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, f.role)
	}
	id := strings.TrimSpace(f.id)
	if id == "" {
		return domain.Actor{}, fmt.Errorf("%w: --actor is required", domain.ErrValidation)
	}
	return domain.Actor{ID: id, Role: role, Location: strings.TrimSpace(f.location)}, nil
}

// NewRootCmd creates the top-level "docket" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	flags := &actorFlags{}
	root := &cobra.Command{
		Use:           "docket",
		Short:         "Assignment lifecycle and escalation engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.id, "actor", "admin", "ID of the person issuing the command")
	root.PersistentFlags().StringVar(&flags.role, "role", string(domain.RoleAdmin), "Role of the actor: admin, reviewer, manager or employee")
	root.PersistentFlags().StringVar(&flags.location, "location", "", "Location of the actor, checked against template permissions")

	root.AddCommand(
		newTemplateCmd(app),
		newRuleCmd(app),
		newAssignCmd(app, flags),
		newSweepCmd(app),
		newEmployeeCmd(app),
		newEventCmd(app),
		newImportCmd(app),
		newStatsCmd(app),
		newServeCmd(app),
		newDashboardCmd(app),
	)
	return root
}
